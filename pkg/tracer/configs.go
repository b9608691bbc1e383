package tracer

import "os"

type Config struct {
	// ServiceName identifies this service in exported traces.
	ServiceName string

	// AppEnv is the deployment environment tag (e.g. "production").
	AppEnv string

	// EnableExport controls whether spans are exported over OTLP/HTTP.
	// When false the provider is still installed so spans remain cheap
	// no-ops for instrumented code.
	EnableExport bool
}

// NewConfig reads the tracer configuration from the environment.
func NewConfig() Config {
	serviceName := os.Getenv("TRACER_SERVICE_NAME")
	if serviceName == "" {
		serviceName = "gutensearch"
	}
	appEnv := os.Getenv("APP_ENV")
	if appEnv == "" {
		appEnv = "development"
	}
	return Config{
		ServiceName:  serviceName,
		AppEnv:       appEnv,
		EnableExport: os.Getenv("TRACER_ENABLE_EXPORT") == "true",
	}
}

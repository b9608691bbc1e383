// Package tracer configures the OpenTelemetry tracer provider for the
// service. Export over OTLP/HTTP is opt-in via TRACER_ENABLE_EXPORT; with
// export disabled the provider still exists so spans created by the search
// pipeline are cheap no-ops.
package tracer

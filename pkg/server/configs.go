package server

import (
	"os"
	"strconv"
	"time"
)

// Default address for the API server if none is specified.
const DefaultAddress = ":8080"

type Config struct {
	// Address determines the network address where the API listens.
	Address string

	// ReadTimeout and WriteTimeout guard the HTTP connection itself.
	// Handler work (embedding calls, catalog fetches) carries the request
	// context but sets no deadline of its own.
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// NewConfig reads the server configuration from the environment.
func NewConfig() Config {
	address := os.Getenv("SERVER_ADDRESS")
	if address == "" {
		address = DefaultAddress
	}

	writeTimeout := 120
	if v := os.Getenv("SERVER_WRITE_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			writeTimeout = n
		}
	}

	return Config{
		Address:      address,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: time.Duration(writeTimeout) * time.Second,
	}
}

// Package config reads beacon's environment overrides and the optional JSON
// tuning file. Flags win over the environment; the tuning file only touches
// detection parameters and the alignment threshold.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Environment variables.
const (
	EnvSerialPort    = "BEACON_SERIAL_PORT"
	EnvBaud          = "BEACON_BAUD"
	EnvCamera        = "BEACON_CAMERA"
	EnvDashboardPort = "BEACON_DASHBOARD_PORT"
	EnvLogLevel      = "BEACON_LOG_LEVEL"
)

// Env holds the values found in the environment. Empty strings and zero
// mean unset.
type Env struct {
	SerialPort string
	Baud       int
	Camera     string
	Dashboard  string
	LogLevel   string
}

// FromEnv reads the process environment.
func FromEnv() (Env, error) {
	return fromLookup(os.LookupEnv)
}

func fromLookup(lookup func(string) (string, bool)) (Env, error) {
	var e Env
	e.SerialPort, _ = lookup(EnvSerialPort)
	e.Camera, _ = lookup(EnvCamera)
	e.LogLevel, _ = lookup(EnvLogLevel)

	if port, ok := lookup(EnvDashboardPort); ok && port != "" {
		// A bare port number listens on every interface.
		if _, err := strconv.Atoi(port); err == nil {
			port = ":" + port
		}
		e.Dashboard = port
	}

	if v, ok := lookup(EnvBaud); ok && v != "" {
		baud, err := strconv.Atoi(v)
		if err != nil {
			return Env{}, fmt.Errorf("config: %s=%q is not a number", EnvBaud, v)
		}
		e.Baud = baud
	}
	return e, nil
}

// String returns a value or its fallback.
func String(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}

// Int returns a value or its fallback.
func Int(v, fallback int) int {
	if v != 0 {
		return v
	}
	return fallback
}

// Package config parses the server's command-line surface: exactly the
// three protocol flags plus the ambient stack's knobs, each as a
// "-X value" pair. The standard flag package is deliberately not used
// here — it treats a repeated flag as "last one wins" and has no notion
// that the whole argument list must pair off evenly, both of which the
// spec requires to be fatal startup errors — so this hand-rolls the
// pairing and validation the way the original server's flag parser did.
package config

import "fmt"

// Defaults and bounds for the protocol-level flags.
const (
	DefaultPort    = 2022
	DefaultTimeout = 5

	MinPort = 0
	MaxPort = 65535

	MinTimeout = 1
	MaxTimeout = 86400
)

// Config is the fully validated startup configuration.
type Config struct {
	Port        int
	Timeout     int
	CatalogPath string

	MetricsAddr      string
	AuditNATSURL     string
	AuditPostgresDSN string
	LogLevel         string
	LogFormat        string
}

var recognized = map[string]bool{
	"-p":                  true,
	"-t":                  true,
	"-f":                  true,
	"-metrics-addr":       true,
	"-audit-nats-url":     true,
	"-audit-postgres-dsn": true,
	"-log-level":          true,
	"-log-format":         true,
}

// Parse validates args (os.Args[1:]) against the recognized flag set.
// -f is required; everything else defaults per the external interface.
// Any unknown flag, repeated flag, odd token count, or out-of-range
// value is a fatal startup error, returned rather than exited so the
// caller controls the diagnostic and exit code.
func Parse(args []string) (Config, error) {
	if len(args)%2 != 0 {
		return Config{}, fmt.Errorf("odd number of arguments: flags must be \"-X value\" pairs")
	}

	seen := make(map[string]bool, len(args)/2)
	values := make(map[string]string, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		name, value := args[i], args[i+1]
		if !recognized[name] {
			return Config{}, fmt.Errorf("unrecognized flag %q", name)
		}
		if seen[name] {
			return Config{}, fmt.Errorf("flag %q repeated", name)
		}
		seen[name] = true
		values[name] = value
	}

	cfg := Config{
		Port:        DefaultPort,
		Timeout:     DefaultTimeout,
		MetricsAddr: ":9090",
		LogLevel:    "info",
		LogFormat:   "json",
	}

	if v, ok := values["-p"]; ok {
		port, err := parseIntInRange(v, MinPort, MaxPort)
		if err != nil {
			return Config{}, fmt.Errorf("-p: %w", err)
		}
		cfg.Port = port
	}

	if v, ok := values["-t"]; ok {
		timeout, err := parseIntInRange(v, MinTimeout, MaxTimeout)
		if err != nil {
			return Config{}, fmt.Errorf("-t: %w", err)
		}
		cfg.Timeout = timeout
	}

	path, ok := values["-f"]
	if !ok {
		return Config{}, fmt.Errorf("-f (catalog path) is required")
	}
	cfg.CatalogPath = path

	if v, ok := values["-metrics-addr"]; ok {
		cfg.MetricsAddr = v
	}
	if v, ok := values["-audit-nats-url"]; ok {
		cfg.AuditNATSURL = v
	}
	if v, ok := values["-audit-postgres-dsn"]; ok {
		cfg.AuditPostgresDSN = v
	}
	if v, ok := values["-log-level"]; ok {
		cfg.LogLevel = v
	}
	if v, ok := values["-log-format"]; ok {
		cfg.LogFormat = v
	}

	return cfg, nil
}

func parseIntInRange(s string, min, max int) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("empty value")
	}
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("%q is not a non-negative integer", s)
		}
		n = n*10 + int(c-'0')
		if n > max {
			return 0, fmt.Errorf("%q exceeds %d", s, max)
		}
	}
	if n < min {
		return 0, fmt.Errorf("%q out of range [%d,%d]", s, min, max)
	}
	return n, nil
}

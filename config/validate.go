package config

import (
	"fmt"
	"net"
	"strings"

	"github.com/quillhq/quill/crypto"
)

func Validate(cfg *Config) error {
	if err := validateServer(&cfg.Server); err != nil {
		return fmt.Errorf("server config validation failed: %w", err)
	}
	if err := validateJwt(&cfg.Jwt); err != nil {
		return fmt.Errorf("jwt config validation failed: %w", err)
	}
	if err := validateScheduler(&cfg.Scheduler); err != nil {
		return fmt.Errorf("scheduler config validation failed: %w", err)
	}
	if err := validateApi(&cfg.Api); err != nil {
		return fmt.Errorf("api config validation failed: %w", err)
	}
	return nil
}

// validateServer checks the Server configuration section.
// It ensures the Addr field is not empty and contains a valid host:port or :port format.
// If only a port is provided (e.g., ":8080"), it defaults the host to "localhost".
//
// Allowed formats:
//   - "host:port" (e.g., "example.com:8080", "127.0.0.1:8080", "[::1]:8080")
//   - ":port"     (e.g., ":8080" becomes "localhost:8080")
//
// The port part is mandatory.
func validateServer(server *Server) error {
	if server.Addr == "" {
		return fmt.Errorf("server address (Addr) cannot be empty")
	}

	host, port, err := net.SplitHostPort(server.Addr)
	if err != nil {
		// Check if it's just a port (e.g., ":8080")
		if strings.HasPrefix(server.Addr, ":") {
			port = strings.TrimPrefix(server.Addr, ":")
			host = "localhost" // Default host
		} else {
			return fmt.Errorf("invalid server address format '%s': %w", server.Addr, err)
		}
	}

	if port == "" {
		return fmt.Errorf("server address '%s' must include a port", server.Addr)
	}

	server.Addr = net.JoinHostPort(host, port)

	if _, err := net.LookupPort("tcp", port); err != nil {
		return fmt.Errorf("invalid port '%s' in server address '%s': %w", port, server.Addr, err)
	}

	return nil
}

func validateJwt(jwt *Jwt) error {
	if len(jwt.AuthSecret) < crypto.MinKeyLength {
		return fmt.Errorf("auth secret must be at least %d bytes", crypto.MinKeyLength)
	}
	if jwt.AuthTokenDuration.Duration <= 0 {
		return fmt.Errorf("auth token duration must be positive")
	}
	return nil
}

func validateScheduler(s *Scheduler) error {
	if s.Interval.Duration <= 0 {
		return fmt.Errorf("scheduler interval must be positive")
	}
	if s.MaxJobsPerTick < 1 {
		return fmt.Errorf("max jobs per tick must be at least 1")
	}
	if s.ConcurrencyMultiplier < 1 {
		return fmt.Errorf("concurrency multiplier must be at least 1")
	}
	return nil
}

func validateApi(a *Api) error {
	if a.DefaultPageSize < 1 {
		return fmt.Errorf("default page size must be at least 1")
	}
	if a.MaxPageSize < a.DefaultPageSize {
		return fmt.Errorf("max page size must not be smaller than the default page size")
	}
	return nil
}

package config

import "fmt"

// RequireNonEmpty reports a missing required environment variable.
func RequireNonEmpty(value, envName string) error {
	if value == "" {
		return fmt.Errorf("missing required env %s", envName)
	}
	return nil
}

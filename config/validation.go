package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ConfigRequirements defines required configuration for each environment
type ConfigRequirements struct {
	RequiredSecrets []string
}

var requirements = map[Environment]ConfigRequirements{
	Development: {},
	Test:        {},
	CI:          {},
	Production: {
		RequiredSecrets: []string{
			"db_password",
			"jwt_secret",
			"llm_api_key",
		},
	},
}

// ValidateConfig checks if the configuration meets the requirements for the current environment
func ValidateConfig(cfg *Config) error {
	env := GetEnvironment()

	var errs []ValidationError

	if cfg.JWTSecret == "" {
		errs = append(errs, ValidationError{"JWT_SECRET", "is required"})
	}

	switch cfg.DBDriver {
	case "postgres":
		if cfg.DBHost == "" || cfg.DBName == "" {
			errs = append(errs, ValidationError{"DB_HOST/DB_NAME", "are required for postgres"})
		}
		if env == Production && cfg.DBPassword == "" {
			errs = append(errs, ValidationError{"DB_PASSWORD", "is required in production"})
		}
	case "sqlite":
		if env == Production {
			errs = append(errs, ValidationError{"DB_DRIVER", "sqlite is not allowed in production"})
		}
		if cfg.SQLitePath == "" {
			errs = append(errs, ValidationError{"SQLITE_PATH", "is required for sqlite"})
		}
	default:
		errs = append(errs, ValidationError{"DB_DRIVER", fmt.Sprintf("unsupported driver %q", cfg.DBDriver)})
	}

	if env == Production && cfg.LLMAPIKey == "" {
		errs = append(errs, ValidationError{"LLM_API_KEY", "is required in production"})
	}
	if cfg.LLMAPIURL == "" {
		errs = append(errs, ValidationError{"LLM_API_URL", "is required"})
	}
	if cfg.LLMTimeout <= 0 {
		errs = append(errs, ValidationError{"LLM_TIMEOUT", "must be positive"})
	}
	if cfg.LLMMaxRetries < 0 {
		errs = append(errs, ValidationError{"LLM_MAX_RETRIES", "must not be negative"})
	}

	if cfg.QuotaMode != QuotaModeAtomic && cfg.QuotaMode != QuotaModeBaseline {
		errs = append(errs, ValidationError{"QUOTA_MODE", fmt.Sprintf("must be %q or %q", QuotaModeAtomic, QuotaModeBaseline)})
	}
	if cfg.GenerationRatePerHour <= 0 {
		errs = append(errs, ValidationError{"GENERATION_RATE_PER_HOUR", "must be positive"})
	}

	if len(errs) > 0 {
		lines := make([]string, len(errs))
		for i, e := range errs {
			lines[i] = e.Error()
		}
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(lines, "\n"))
	}

	return nil
}

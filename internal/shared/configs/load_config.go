package configs

import (
	"fmt"
	"strings"

	"log-analyzer/internal/shared/validators"

	"github.com/spf13/viper"
)

// defaults are applied before the config file is read, so a file only needs the keys it overrides.
var defaults = map[string]any{
	"log.level": "debug",
	"log.file":  "",

	"source.dir":           "./logs",
	"source.name_template": "nginx-access-ui.log-{date}",
	"source.date_layout":   "20060102",

	"report.dir":                  "./reports",
	"report.name_template":        "report-{date}.html",
	"report.date_layout":          "2006.01.02",
	"report.template":             "./templates/report.html",
	"report.size":                 100,
	"report.accuracy":             2,
	"report.errors_percent_limit": 0,
	"report.key_field":            "url",

	"metrics.textfile_path": "",
}

// LoadConfig reads configuration from file and validates it.
// The file format follows the file extension (yaml, toml, ini, json).
var LoadConfig = func(configPath string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetConfigFile(configPath)

	// Read from file
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", configPath, err)
	}

	// Unmarshal into Config
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate config
	validate := validators.New()
	if err := validate.Struct(&cfg); err != nil {
		var validationErrors []string
		if ve, ok := err.(validators.ValidationErrors); ok {
			for _, e := range ve {
				validationErrors = append(validationErrors, formatValidationError(e))
			}
		}
		return nil, fmt.Errorf("config validation failed: %s", strings.Join(validationErrors, ", "))
	}

	return &cfg, nil
}

// formatValidationError formats a single validation error into a readable string.
func formatValidationError(e validators.FieldError) string {
	field := e.Field()
	tag := e.Tag()

	// Build field path (e.g., "report.size")
	if e.StructNamespace() != "" {
		// Extract nested field path (e.g., "Config.Report.Size" -> "report.size")
		parts := strings.Split(e.StructNamespace(), ".")
		if len(parts) >= 2 {
			// Skip "Config" prefix, convert to lowercase with dots
			fieldPath := strings.ToLower(strings.Join(parts[1:], "."))
			field = fieldPath
		}
	}

	var msg string
	switch tag {
	case "required":
		msg = fmt.Sprintf("%s (required)", field)
	case "min":
		msg = fmt.Sprintf("%s (min=%s)", field, e.Param())
	case "max":
		msg = fmt.Sprintf("%s (max=%s)", field, e.Param())
	case "oneof":
		msg = fmt.Sprintf("%s (oneof=%s)", field, e.Param())
	case validators.TagDateLayout:
		msg = fmt.Sprintf("%s (invalid date layout)", field)
	case "contains":
		msg = fmt.Sprintf("%s (must contain %s)", field, e.Param())
	default:
		msg = fmt.Sprintf("%s (%s)", field, tag)
	}

	return msg
}

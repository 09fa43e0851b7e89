package configs

// Config holds all configuration for the application.
type Config struct {
	Log     LogConfig     `mapstructure:"log" validate:"required"`
	Source  SourceConfig  `mapstructure:"source" validate:"required"`
	Report  ReportConfig  `mapstructure:"report" validate:"required"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required"`
	File  string `mapstructure:"file"` // empty means stdout
}

// SourceConfig describes where access logs live and how their names carry a date.
type SourceConfig struct {
	Dir          string `mapstructure:"dir" validate:"required"`
	NameTemplate string `mapstructure:"name_template" validate:"required,contains={date}"`
	DateLayout   string `mapstructure:"date_layout" validate:"required,datelayout"` // Go time layout
}

// ReportConfig holds report generation settings.
type ReportConfig struct {
	Dir                string  `mapstructure:"dir" validate:"required"`
	NameTemplate       string  `mapstructure:"name_template" validate:"required,contains={date}"`
	DateLayout         string  `mapstructure:"date_layout" validate:"required,datelayout"`
	Template           string  `mapstructure:"template" validate:"required"`
	Size               int     `mapstructure:"size" validate:"min=1"`
	Accuracy           int     `mapstructure:"accuracy" validate:"min=0,max=10"`
	ErrorsPercentLimit float64 `mapstructure:"errors_percent_limit" validate:"min=0,max=100"` // 0 disables the check
	KeyField           string  `mapstructure:"key_field" validate:"required,oneof=url remote_addr"`
}

// MetricsConfig holds metrics export settings.
type MetricsConfig struct {
	TextfilePath string `mapstructure:"textfile_path"` // empty disables the export
}

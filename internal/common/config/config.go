// internal/common/config/config.go
package config

import "time"

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Backend  BackendConfig  `mapstructure:"backend"`
	Database DatabaseConfig `mapstructure:"database"`
	Push     PushConfig     `mapstructure:"push"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// BackendConfig points the client at the companion backend REST API.
type BackendConfig struct {
	BaseURL string `mapstructure:"base_url"` // the client appends /api
	Timeout int    `mapstructure:"timeout"`  // milliseconds

	// Credentials the daemon logs in with on startup. Optional; without
	// them the client runs anonymously and every authenticated push
	// operation fails fast.
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`
}

type DatabaseConfig struct {
	Redis RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// PushConfig holds settings for the notification manager and its heartbeat.
type PushConfig struct {
	HeartbeatInterval int    `mapstructure:"heartbeat_interval"` // milliseconds
	PromptDelay       int    `mapstructure:"prompt_delay"`       // milliseconds
	DefaultIcon       string `mapstructure:"default_icon"`
	DefaultURL        string `mapstructure:"default_url"`
	NotificationTag   string `mapstructure:"notification_tag"`

	// Local platform behavior: whether a permission request is granted.
	// The real decision belongs to the user agent hosting the client.
	AutoGrantPermission bool `mapstructure:"auto_grant_permission"`
}

type MetricsConfig struct {
	ListenAddress string `mapstructure:"listen_address"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// TimeoutDuration returns the backend request timeout as a duration.
func (b BackendConfig) TimeoutDuration() time.Duration {
	return GetDuration(b.Timeout)
}

// HeartbeatIntervalDuration returns the activity ping period as a duration.
func (p PushConfig) HeartbeatIntervalDuration() time.Duration {
	return GetDuration(p.HeartbeatInterval)
}

// PromptDelayDuration returns the enable-notifications prompt delay.
func (p PushConfig) PromptDelayDuration() time.Duration {
	return GetDuration(p.PromptDelay)
}

package config

import "github.com/spf13/viper"

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	// QMIB gateway defaults
	v.SetDefault("qmib.base_url", "")
	v.SetDefault("qmib.verify_ssl", true)
	v.SetDefault("qmib.timeout_seconds", 30.0)
	v.SetDefault("qmib.max_attempts", 3)
	v.SetDefault("qmib.backoff_base_seconds", 1.0) // doubles per attempt
	v.SetDefault("qmib.backoff_max_seconds", 8.0)
	v.SetDefault("qmib.requests_per_minute", 0) // 0 = unthrottled

	// Database defaults
	v.SetDefault("database.path", "ebr.db")

	// Server defaults
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.allowed_origins", []string{"*"})

	// Batch lifecycle defaults
	v.SetDefault("batch.strict_transitions", false)
}

// BindSensitiveEnvVars explicitly binds sensitive configuration to
// environment variables so credentials never need to live in ebr.toml
func BindSensitiveEnvVars(v *viper.Viper) {
	v.BindEnv("qmib.username", "EBR_QMIB_USERNAME")
	v.BindEnv("qmib.password", "EBR_QMIB_PASSWORD")
}

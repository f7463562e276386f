package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       App       `mapstructure:"app"`
	Gemini    Gemini    `mapstructure:"gemini"`
	Fetch     Fetch     `mapstructure:"fetch"`
	Analytics Analytics `mapstructure:"analytics"`
}

// App holds general application configuration
type App struct {
	LogLevel string `mapstructure:"log_level"`
	DataDir  string `mapstructure:"data_dir"`
}

// Gemini holds Google Gemini configuration
type Gemini struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	Timeout string `mapstructure:"timeout"`
}

// Fetch holds page fetching configuration
type Fetch struct {
	Timeout   string `mapstructure:"timeout"`
	UserAgent string `mapstructure:"user_agent"`
}

// Analytics holds trend analytics configuration
type Analytics struct {
	Contamination   float64 `mapstructure:"contamination"`
	HorizonDays     int     `mapstructure:"horizon_days"`
	ChangeThreshold float64 `mapstructure:"change_threshold"`
}

var globalConfig *Config

// Load loads the configuration from the .env file, the config file, and the
// environment, in increasing order of precedence.
func Load(configFile string) (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Printf("Warning: Error loading .env file: %v\n", err)
		}
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".seoscope")
		viper.SetConfigType("yaml")
	}

	setDefaults()
	bindEnvironmentVariables()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	globalConfig = config
	return config, nil
}

// Get returns the global configuration, loading it if necessary
func Get() *Config {
	if globalConfig == nil {
		config, err := Load("")
		if err != nil {
			panic(fmt.Sprintf("Failed to load configuration: %v", err))
		}
		return config
	}
	return globalConfig
}

// Reset clears the cached configuration. Intended for tests.
func Reset() {
	globalConfig = nil
	viper.Reset()
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("app.log_level", "info")
	viper.SetDefault("app.data_dir", ".seoscope")

	viper.SetDefault("gemini.model", "gemini-flash-lite-latest")
	viper.SetDefault("gemini.timeout", "30s")

	viper.SetDefault("fetch.timeout", "10s")

	viper.SetDefault("analytics.contamination", 0.10)
	viper.SetDefault("analytics.horizon_days", 30)
	viper.SetDefault("analytics.change_threshold", 0.20)
}

// bindEnvironmentVariables sets up flexible environment variable binding
func bindEnvironmentVariables() {
	bindEnvKeys("gemini.api_key", []string{
		"GEMINI_API_KEY",
		"GOOGLE_GEMINI_API_KEY",
		"GOOGLE_AI_API_KEY",
	})

	bindEnvKeys("app.log_level", []string{
		"SEOSCOPE_LOG_LEVEL",
	})

	bindEnvKeys("app.data_dir", []string{
		"SEOSCOPE_DATA_DIR",
	})
}

// bindEnvKeys binds the first found environment variable to a viper key
func bindEnvKeys(viperKey string, envKeys []string) {
	for _, envKey := range envKeys {
		if value := os.Getenv(envKey); value != "" {
			viper.Set(viperKey, value)
			return
		}
	}
}

// validateConfig checks the loaded configuration for invalid values
func validateConfig(config *Config) error {
	durations := map[string]string{
		"gemini.timeout": config.Gemini.Timeout,
		"fetch.timeout":  config.Fetch.Timeout,
	}
	for key, duration := range durations {
		if duration != "" {
			if _, err := time.ParseDuration(duration); err != nil {
				return fmt.Errorf("invalid duration for %s: %s", key, duration)
			}
		}
	}

	if config.Analytics.Contamination < 0 || config.Analytics.Contamination > 0.5 {
		return fmt.Errorf("analytics.contamination must be between 0 and 0.5, got %v", config.Analytics.Contamination)
	}
	if config.Analytics.HorizonDays < 0 {
		return fmt.Errorf("analytics.horizon_days must not be negative, got %d", config.Analytics.HorizonDays)
	}
	if config.Analytics.ChangeThreshold < 0 {
		return fmt.Errorf("analytics.change_threshold must not be negative, got %v", config.Analytics.ChangeThreshold)
	}

	return nil
}

// FetchTimeout returns the configured fetch timeout as a duration, falling
// back to the default when unset or invalid.
func (c *Config) FetchTimeout() time.Duration {
	if d, err := time.ParseDuration(c.Fetch.Timeout); err == nil && d > 0 {
		return d
	}
	return 10 * time.Second
}

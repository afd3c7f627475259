package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Server struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

type Generator struct {
	Model     string `mapstructure:"model"`
	APIKeyEnv string `mapstructure:"api_key_env"`
}

type Config struct {
	Server    Server    `mapstructure:"server"`
	Generator Generator `mapstructure:"generator"`
	DBPath    string    `mapstructure:"db_path"`
	Locale    string    `mapstructure:"locale"`
}

// Load reads the config file at path. Missing keys fall back to defaults; a
// missing file is an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", "8080")
	v.SetDefault("generator.model", "gemini-3-flash-preview")
	v.SetDefault("generator.api_key_env", "GEMINI_API_KEY")
	v.SetDefault("db_path", "nutri.db")
	v.SetDefault("locale", "en")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

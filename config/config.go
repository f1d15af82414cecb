package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	JWTToken   string
	BaseURL    string
	StorageDir string

	// Invoice parameters
	AmountUSD  float64
	InvoiceID  string
	Recipient  string
	RedirectTo string
}

var globalConfig *Config

// Load reads configuration from environment variables and config file
func Load() (*Config, error) {
	viper.SetConfigName(".tearpay")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME")
	viper.AddConfigPath(".")

	// Set default values
	viper.SetDefault("base_url", "https://1click.chaindefuser.com")
	viper.SetDefault("amount_usd", 0.99)
	viper.SetDefault("invoice_id", "test")
	viper.SetDefault("recipient", "slimedragon.near")
	viper.SetDefault("redirect_to", "https://example.com")
	viper.SetDefault("storage_dir", defaultStorageDir())

	// Read from environment variables
	viper.SetEnvPrefix("TEARPAY")
	viper.AutomaticEnv()

	// Read config file (optional)
	_ = viper.ReadInConfig()

	cfg := &Config{
		JWTToken:   viper.GetString("jwt_token"),
		BaseURL:    viper.GetString("base_url"),
		StorageDir: viper.GetString("storage_dir"),
		AmountUSD:  viper.GetFloat64("amount_usd"),
		InvoiceID:  viper.GetString("invoice_id"),
		Recipient:  viper.GetString("recipient"),
		RedirectTo: viper.GetString("redirect_to"),
	}

	globalConfig = cfg
	return cfg, nil
}

// Get returns the global configuration
func Get() *Config {
	if globalConfig == nil {
		cfg, _ := Load()
		return cfg
	}
	return globalConfig
}

// Set updates the global configuration
func Set(cfg *Config) {
	globalConfig = cfg
}

func defaultStorageDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".tearpay"
	}
	return filepath.Join(home, ".tearpay")
}

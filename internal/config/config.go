package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Version information - set by GoReleaser during build
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// GetVersionInfo returns a formatted version string
func GetVersionInfo() string {
	return fmt.Sprintf("inbox-cli version %s, commit %s, built at %s", version, commit, date)
}

type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// VerificationPolicy decides which authenticated users must complete
// phone-number verification before reaching the inbox.
type VerificationPolicy string

const (
	// PolicyRequired gates every account until its number is verified.
	PolicyRequired VerificationPolicy = "required"
	// PolicyIfNumberSet only gates accounts that registered a number.
	PolicyIfNumberSet VerificationPolicy = "if_number_set"
)

type APIConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Timeout string `mapstructure:"timeout"`
}

type AuthConfig struct {
	PhoneVerification           VerificationPolicy `mapstructure:"phone_verification"`
	ProviderCredentialsRequired bool               `mapstructure:"provider_credentials_required"`
	TokenFile                   string             `mapstructure:"token_file"`
	CallbackAddr                string             `mapstructure:"callback_addr"`
}

type LoggingConfig struct {
	Level             string `mapstructure:"level"`
	Format            string `mapstructure:"format"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
	OutputPath        string `mapstructure:"output_path"`
	AppendToFile      bool   `mapstructure:"append_to_file"`
	DisableConsole    bool   `mapstructure:"disable_console"`
}

// InitFlags initializes command line flags (without parsing)
func InitFlags() {
	pflag.String("api.base-url", "", "Base URL of the inbox backend API")
	pflag.String("auth.token-file", "", "Path to the persisted session token")
	pflag.String("auth.phone-verification", "", "Verification policy (required|if_number_set)")
	// Note: no pflag.Parse() here as it's called in main.go
}

// DefaultTokenFile is where the session token is persisted when the config
// does not name a location.
func DefaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", ".inbox-cli", "token")
	}
	return filepath.Join(dir, "inbox-cli", "token")
}

func Load() (*Config, error) {
	viper.Reset() // Ensure clean state

	// A local .env is honored before viper reads the environment.
	_ = godotenv.Load()

	viper.SetEnvPrefix("INBOX_CLI")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.BindPFlags(pflag.CommandLine); err != nil {
		return nil, err
	}

	viper.SetDefault("api.timeout", "30s")
	viper.SetDefault("auth.phone_verification", string(PolicyRequired))
	viper.SetDefault("auth.provider_credentials_required", true)
	viper.SetDefault("auth.callback_addr", "127.0.0.1:43117")
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.disable_console", true)

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	if dir, err := os.UserConfigDir(); err == nil {
		viper.AddConfigPath(filepath.Join(dir, "inbox-cli"))
	}

	if err := viper.ReadInConfig(); err != nil {
		// The client runs fine on env/flags alone.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if v := viper.GetString("api.base-url"); v != "" {
		config.API.BaseURL = v
	}
	if v := viper.GetString("auth.token-file"); v != "" {
		config.Auth.TokenFile = v
	}
	if v := viper.GetString("auth.phone-verification"); v != "" {
		config.Auth.PhoneVerification = VerificationPolicy(v)
	}

	if config.API.BaseURL == "" {
		return nil, fmt.Errorf("api base URL is required, please adjust the config or pass --api.base-url or INBOX_CLI_API_BASE_URL environment variable")
	}
	config.API.BaseURL = strings.TrimRight(config.API.BaseURL, "/")

	switch config.Auth.PhoneVerification {
	case PolicyRequired, PolicyIfNumberSet:
	default:
		return nil, fmt.Errorf("unsupported phone_verification policy: %s", config.Auth.PhoneVerification)
	}

	if config.Auth.TokenFile == "" {
		config.Auth.TokenFile = DefaultTokenFile()
	}

	return &config, nil
}

// WriteScaffold writes a commented starter config to path. Used by the
// `config init` subcommand.
func WriteScaffold(path string) error {
	scaffold := map[string]any{
		"api": map[string]any{
			"base_url": "http://localhost:4000/api",
			"timeout":  "30s",
		},
		"auth": map[string]any{
			"phone_verification":            string(PolicyRequired),
			"provider_credentials_required": true,
			"callback_addr":                 "127.0.0.1:43117",
		},
		"logging": map[string]any{
			"level":       "info",
			"format":      "json",
			"output_path": "inbox-cli.log",
		},
	}
	out, err := yaml.Marshal(scaffold)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, out, 0o644)
}

// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"net/url"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	TelegramToken          string  `mapstructure:"telegram_token"`
	PrivateKey             string  `mapstructure:"private_key"`
	RPCURL                 string  `mapstructure:"rpc_url"`
	JupiterURL             string  `mapstructure:"jupiter_url"`
	DexScreenerURL         string  `mapstructure:"dexscreener_url"`
	PriorityLevel          string  `mapstructure:"priority_level"`
	MaxPriorityFeeLamports uint64  `mapstructure:"max_priority_fee_lamports"`
	SkipPreflight          bool    `mapstructure:"skip_preflight"`
	MaxRetries             int     `mapstructure:"max_retries"`
	Commitment             string  `mapstructure:"commitment"`
	ConfirmTimeoutSeconds  int     `mapstructure:"confirm_timeout_seconds"`
	DefaultSlippagePercent float64 `mapstructure:"default_slippage_percent"`
	DebugLogging           bool    `mapstructure:"debug_logging"`
}

const (
	DefaultRPCURL          = "https://api.mainnet-beta.solana.com"
	DefaultJupiterURL      = "https://quote-api.jup.ag"
	DefaultDexScreenerURL  = "https://api.dexscreener.com"
	DefaultPriorityLevel   = "veryHigh"
	DefaultMaxFeeLamports  = 2_000_000
	DefaultMaxRetries      = 2
	DefaultCommitment      = "confirmed"
	DefaultConfirmTimeout  = 60
	DefaultSlippagePercent = 10.0
)

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	defaults := map[string]interface{}{
		"rpc_url":                   DefaultRPCURL,
		"jupiter_url":               DefaultJupiterURL,
		"dexscreener_url":           DefaultDexScreenerURL,
		"priority_level":            DefaultPriorityLevel,
		"max_priority_fee_lamports": DefaultMaxFeeLamports,
		"skip_preflight":            true,
		"max_retries":               DefaultMaxRetries,
		"commitment":                DefaultCommitment,
		"confirm_timeout_seconds":   DefaultConfirmTimeout,
		"default_slippage_percent":  DefaultSlippagePercent,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	loadEnvironmentVariables(v, &cfg)

	return &cfg, validateConfig(&cfg)
}

func validateConfig(cfg *Config) error {
	if cfg.TelegramToken == "" {
		return errors.New("missing telegram_token in configuration")
	}
	if cfg.PrivateKey == "" {
		return errors.New("missing private_key in configuration")
	}
	for _, rawURL := range []string{cfg.RPCURL, cfg.JupiterURL, cfg.DexScreenerURL} {
		if err := validateHTTPURL(rawURL); err != nil {
			return err
		}
	}
	switch cfg.Commitment {
	case "processed", "confirmed", "finalized":
	default:
		return errors.New("commitment must be processed, confirmed or finalized")
	}
	return validateNumericParams(cfg)
}

func validateNumericParams(cfg *Config) error {
	if cfg.MaxRetries < 0 {
		return errors.New("invalid max_retries")
	}
	if cfg.ConfirmTimeoutSeconds <= 0 {
		return errors.New("invalid confirm_timeout_seconds")
	}
	if cfg.DefaultSlippagePercent < 0 || cfg.DefaultSlippagePercent > 100 {
		return errors.New("default_slippage_percent out of range [0, 100]")
	}
	return nil
}

func validateHTTPURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, "http") {
		return errors.New("URL must use http or https")
	}
	return nil
}

// loadEnvironmentVariables overlays secrets and endpoints from the
// environment. The private key and bot token are expected to arrive this way
// in production so they never live in a config file.
func loadEnvironmentVariables(v *viper.Viper, cfg *Config) {
	v.SetEnvPrefix("SOLSWAP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if token := v.GetString("TELEGRAM_TOKEN"); token != "" {
		cfg.TelegramToken = token
	}
	if key := v.GetString("PRIVATE_KEY"); key != "" {
		cfg.PrivateKey = key
	}
	if rpcURL := v.GetString("RPC_URL"); rpcURL != "" {
		cfg.RPCURL = rpcURL
	}
}

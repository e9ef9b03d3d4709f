package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds configuration values loaded from flags, env, or config file.
// PrivateKey is only ever read from the environment (SWAPPER_PRIVATE_KEY).
type Config struct {
	RPCURL      string
	PrivateKey  string
	Pool        string
	Quoter      string
	Router      string
	WETH        string
	TokenIn     string
	Amount      string
	SlippageBps uint64
	Deadline    time.Duration
	Recipient   string
	Out         string
	LogLevel    string
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SWAPPER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("slippage-bps", uint64(50))
	v.SetDefault("deadline", 20*time.Minute)
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		RPCURL:      v.GetString("rpc"),
		PrivateKey:  v.GetString("private-key"),
		Pool:        v.GetString("pool"),
		Quoter:      v.GetString("quoter"),
		Router:      v.GetString("router"),
		WETH:        v.GetString("weth"),
		TokenIn:     v.GetString("token-in"),
		Amount:      v.GetString("amount"),
		SlippageBps: v.GetUint64("slippage-bps"),
		Deadline:    v.GetDuration("deadline"),
		Recipient:   v.GetString("recipient"),
		Out:         v.GetString("out"),
		LogLevel:    v.GetString("log-level"),
	}

	return cfg, nil
}

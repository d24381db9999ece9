package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/viper"
)

type Config interface {
	EnvConfig
	APIConfig
	SessionConfig
	Validate() error
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
	GetDataFolder() string
}

type mainConfig struct {
	EnvVars
	API
	Session
}

var _ Config = mainConfig{}

// New loads configuration from the environment and an optional .env file.
// A missing or unreadable .env file is ignored.
func New() Config {
	cfg, _ := Load("")
	return cfg
}

// Load reads configFile when given (yaml, json, toml or env), otherwise tries
// ./.env. Environment variables always win over file values.
func Load(configFile string) (Config, error) {
	v := viper.New()
	defaults(v)
	v.AutomaticEnv()
	for _, key := range allKeys {
		_ = v.BindEnv(key)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("[config Load] read %s: %w", configFile, err)
		}
	} else {
		v.SetConfigFile(".env")
		v.SetConfigType("env")
		_ = v.ReadInConfig()
	}

	return mainConfig{EnvVars{v: v}, API{v: v}, Session{v: v}}, nil
}

func defaults(v *viper.Viper) *viper.Viper {
	v.SetDefault(appNameVar, "HMS Client")
	v.SetDefault(envVar, "DEV")
	v.SetDefault(logLevelVar, "warn")
	v.SetDefault(dataFolderVar, "./data")
	v.SetDefault(apiURLVar, "http://localhost:8080")
	v.SetDefault(chatbotURLVar, "http://localhost:5000")
	v.SetDefault(httpTimeoutVar, 15*time.Second)
	v.SetDefault(sessionStoreVar, SessionStoreFile)
	v.SetDefault(expiryCheckVar, time.Minute)
	return v
}

func (c mainConfig) Validate() error {
	for name, raw := range map[string]string{apiURLVar: c.GetAPIURL(), chatbotURLVar: c.GetChatbotURL()} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s must be an absolute URL, got %q", name, raw)
		}
	}
	if c.GetHTTPTimeout() <= 0 {
		return fmt.Errorf("%s must be positive", httpTimeoutVar)
	}

	switch c.GetSessionStore() {
	case SessionStoreFile, SessionStoreMemory:
	case SessionStoreRedis:
		if c.GetRedisURL() == "" {
			return fmt.Errorf("%s is required when %s is %q", redisURLVar, sessionStoreVar, SessionStoreRedis)
		}
	default:
		return fmt.Errorf("%s must be %q, %q or %q, got %q", sessionStoreVar,
			SessionStoreFile, SessionStoreRedis, SessionStoreMemory, c.GetSessionStore())
	}

	if c.GetExpiryCheckInterval() <= 0 {
		return fmt.Errorf("%s must be positive", expiryCheckVar)
	}
	return nil
}

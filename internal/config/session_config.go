package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	SessionStoreFile   = "file"
	SessionStoreRedis  = "redis"
	SessionStoreMemory = "memory"
)

type SessionConfig interface {
	GetSessionStore() string
	GetRedisURL() string
	GetExpiryCheckInterval() time.Duration
}

type Session struct {
	v *viper.Viper
}

var _ SessionConfig = Session{}

func (s Session) GetSessionStore() string {
	return strings.ToLower(s.v.GetString(sessionStoreVar))
}

func (s Session) GetRedisURL() string {
	return s.v.GetString(redisURLVar)
}

// GetExpiryCheckInterval is how often an active token's expiry is polled
func (s Session) GetExpiryCheckInterval() time.Duration {
	return s.v.GetDuration(expiryCheckVar)
}

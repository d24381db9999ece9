package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type APIConfig interface {
	GetAPIURL() string
	GetChatbotURL() string
	GetHTTPTimeout() time.Duration
}

type API struct {
	v *viper.Viper
}

var _ APIConfig = API{}

// GetAPIURL returns the backend base URL without a trailing slash
func (a API) GetAPIURL() string {
	return strings.TrimRight(a.v.GetString(apiURLVar), "/")
}

func (a API) GetChatbotURL() string {
	return strings.TrimRight(a.v.GetString(chatbotURLVar), "/")
}

func (a API) GetHTTPTimeout() time.Duration {
	return a.v.GetDuration(httpTimeoutVar)
}

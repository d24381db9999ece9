package config

import (
	"github.com/spf13/viper"
)

const (
	appNameVar      = "HMS_APP_NAME"
	envVar          = "HMS_ENV"
	logLevelVar     = "HMS_LOG_LEVEL"
	dataFolderVar   = "HMS_DATA_FOLDER"
	apiURLVar       = "HMS_API_URL"
	chatbotURLVar   = "HMS_CHATBOT_URL"
	httpTimeoutVar  = "HMS_HTTP_TIMEOUT"
	sessionStoreVar = "HMS_SESSION_STORE"
	redisURLVar     = "HMS_REDIS_URL"
	expiryCheckVar  = "HMS_EXPIRY_CHECK_INTERVAL"
)

var allKeys = []string{
	appNameVar, envVar, logLevelVar, dataFolderVar,
	apiURLVar, chatbotURLVar, httpTimeoutVar,
	sessionStoreVar, redisURLVar, expiryCheckVar,
}

type EnvVars struct {
	v *viper.Viper
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetAppName() string {
	return e.v.GetString(appNameVar)
}

func (e EnvVars) GetEnv() string {
	return e.v.GetString(envVar)
}

func (e EnvVars) GetLogLevel() string {
	return e.v.GetString(logLevelVar)
}

// GetDataFolder is where the file session store keeps session.json
func (e EnvVars) GetDataFolder() string {
	return e.v.GetString(dataFolderVar)
}

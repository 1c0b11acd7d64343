package providers

import (
	"fmt"
	"path/filepath"
	"postit/internal/structures"
	"strings"
	"time"

	"github.com/spf13/viper"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("webServer.host", "0.0.0.0")
	v.SetDefault("webServer.port", 8080)
	v.SetDefault("persistence.filePath", "data/postit.db")
	v.SetDefault("persistence.saveInterval", 30*time.Second)
	v.SetDefault("persistence.compress", true)
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.mode", 0644)
	v.SetDefault("logger.dir", "logs")
	v.SetDefault("feed.viralThreshold", 5)
	v.SetDefault("feed.postOrder", "append")
	v.SetDefault("feed.publicURL", "http://localhost:8080")
	v.SetDefault("session.ttl", 24*time.Hour)
	v.SetDefault("uploads.dir", "uploads")
	v.SetDefault("uploads.maxSize", 10<<20)
	v.SetDefault("cache.ttl", 5*time.Second)
}

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config
	v := viper.New()

	filename := filepath.Base(flags.ConfigPath)
	v.AddConfigPath(filepath.Dir(flags.ConfigPath))
	v.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	v.SetConfigType("yaml")
	setDefaults(v)

	v.BindEnv("logger.level", "POSTIT_LOG_LEVEL")
	v.BindEnv("persistence.saveInterval", "POSTIT_SAVE_INTERVAL")
	v.BindEnv("persistence.filePath", "POSTIT_DATA_FILE")
	v.BindEnv("session.secret", "POSTIT_SESSION_SECRET")
	v.BindEnv("cache.enabled", "POSTIT_CACHE_ENABLED")
	v.BindEnv("cache.size", "POSTIT_CACHE_SIZE")

	err := v.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = v.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	conf.AppName = "PostIt"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	return &conf, nil
}

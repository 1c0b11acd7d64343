package structures

import "time"

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type Persistence struct {
	FilePath     string        `yaml:"filePath" validate:"required"`
	SaveInterval time.Duration `yaml:"saveInterval" validate:"required|min:1"`
	Compress     bool          `yaml:"compress"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required"`
}

type FeedConfig struct {
	ViralThreshold     int      `yaml:"viralThreshold" validate:"required|min:1"`
	PostOrder          string   `yaml:"postOrder" validate:"required|in:append,prepend"`
	AllowGuestComments bool     `yaml:"allowGuestComments"`
	PreComments        []string `yaml:"preComments"`
	PublicURL          string   `yaml:"publicURL" validate:"required"`
}

type SessionConfig struct {
	Secret string        `yaml:"secret" validate:"required|minLen:16"`
	TTL    time.Duration `yaml:"ttl" validate:"required|min:1"`
}

type UploadsConfig struct {
	Dir     string `yaml:"dir" validate:"required"`
	MaxSize int64  `yaml:"maxSize"`
}

type SecurityConfig struct {
	BcryptCost int `yaml:"bcryptCost"`
}

type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Size    int           `yaml:"size"`
	TTL     time.Duration `yaml:"ttl"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName     string
	Debug       bool
	Path        string
	WebServer   Server         `yaml:"webServer"`
	Persistence Persistence    `yaml:"persistence"`
	Logger      LoggerConfig   `yaml:"logger"`
	Feed        FeedConfig     `yaml:"feed"`
	Session     SessionConfig  `yaml:"session"`
	Uploads     UploadsConfig  `yaml:"uploads"`
	Security    SecurityConfig `yaml:"security"`
	Cache       CacheConfig    `yaml:"cache"`
	Metrics     MetricsConfig  `yaml:"metrics"`
}

// Package config defines the system configuration shared by the orchestrator,
// the modules and the adapters.
package config

import (
	"time"
)

// SystemConfig is the root configuration document.
type SystemConfig struct {
	Env           string              `mapstructure:"env" json:"env"`
	Server        ServerConfig        `mapstructure:"server" json:"server"`
	CentralSystem CentralSystemConfig `mapstructure:"centralSystem" json:"centralSystem"`
	Modules       ModulesConfig       `mapstructure:"modules" json:"modules"`
	Util          UtilConfig          `mapstructure:"util" json:"util"`
}

// ServerConfig configures the HTTP listener of the process.
type ServerConfig struct {
	LogLevel        string           `mapstructure:"logLevel" json:"logLevel" default:"info"`
	LogFile         *LogFileConfig   `mapstructure:"logFile" json:"logFile,omitempty"`
	Host            string           `mapstructure:"host" json:"host" default:"0.0.0.0"`
	Port            int              `mapstructure:"port" json:"port" default:"8080" validate:"gte=0,lte=65535"`
	Gzip            bool             `mapstructure:"gzip" json:"gzip"`
	Metrics         bool             `mapstructure:"metrics" json:"metrics"`
	RateLimit       *RateLimitConfig `mapstructure:"rateLimit" json:"rateLimit,omitempty"`
	ShutdownTimeout time.Duration    `mapstructure:"shutdownTimeout" json:"shutdownTimeout"`
}

// LogFileConfig enables rotated file logging.
type LogFileConfig struct {
	Path       string `mapstructure:"path" json:"path" validate:"required"`
	MaxSizeMB  int    `mapstructure:"maxSizeMB" json:"maxSizeMB"`
	MaxBackups int    `mapstructure:"maxBackups" json:"maxBackups"`
	MaxAgeDays int    `mapstructure:"maxAgeDays" json:"maxAgeDays"`
	Compress   bool   `mapstructure:"compress" json:"compress"`
}

// RateLimitConfig enables the per-IP limiter on the listener.
type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requestsPerSecond" json:"requestsPerSecond" validate:"gt=0"`
	Burst             int     `mapstructure:"burst" json:"burst" validate:"gte=1"`
}

// CentralSystemConfig configures the station-facing websocket listener.
type CentralSystemConfig struct {
	Host         string        `mapstructure:"host" json:"host" default:"0.0.0.0"`
	Port         int           `mapstructure:"port" json:"port" default:"8081" validate:"gte=0,lte=65535"`
	PingInterval time.Duration `mapstructure:"pingInterval" json:"pingInterval"`
	// CallTimeout bounds how long a pending CSMS call waits for the station's answer.
	CallTimeout time.Duration `mapstructure:"callTimeout" json:"callTimeout"`
	// Subprotocols accepted during the websocket handshake.
	Subprotocols []string `mapstructure:"subprotocols" json:"subprotocols"`
}

// ModulesConfig holds one optional section per business module.
type ModulesConfig struct {
	Certificates  *ModuleConfig `mapstructure:"certificates" json:"certificates,omitempty"`
	Configuration *ModuleConfig `mapstructure:"configuration" json:"configuration,omitempty"`
	EVDriver      *ModuleConfig `mapstructure:"evdriver" json:"evdriver,omitempty"`
	Monitoring    *ModuleConfig `mapstructure:"monitoring" json:"monitoring,omitempty"`
	Reporting     *ModuleConfig `mapstructure:"reporting" json:"reporting,omitempty"`
	SmartCharging *ModuleConfig `mapstructure:"smartcharging" json:"smartcharging,omitempty"`
	Transactions  *ModuleConfig `mapstructure:"transactions" json:"transactions,omitempty"`
}

// ModuleConfig configures one business module.
type ModuleConfig struct {
	EndpointPrefix string `mapstructure:"endpointPrefix" json:"endpointPrefix"`
	Host           string `mapstructure:"host" json:"host"`
	Port           int    `mapstructure:"port" json:"port" validate:"gte=0,lte=65535"`

	// Configuration module.
	HeartbeatInterval    int    `mapstructure:"heartbeatInterval" json:"heartbeatInterval,omitempty"`
	BootRetryInterval    int    `mapstructure:"bootRetryInterval" json:"bootRetryInterval,omitempty"`
	UnknownChargerStatus string `mapstructure:"unknownChargerStatus" json:"unknownChargerStatus,omitempty" validate:"omitempty,oneof=Accepted Pending Rejected"`

	// EVDriver and Transactions modules.
	AcceptUnknownIdTokens bool `mapstructure:"acceptUnknownIdTokens" json:"acceptUnknownIdTokens,omitempty"`
}

// UtilConfig groups the shared infrastructure settings.
type UtilConfig struct {
	Cache         CacheConfig         `mapstructure:"cache" json:"cache"`
	MessageBroker MessageBrokerConfig `mapstructure:"messageBroker" json:"messageBroker"`
	Swagger       *SwaggerConfig      `mapstructure:"swagger" json:"swagger,omitempty"`
	Validator     ValidatorConfig     `mapstructure:"validator" json:"validator"`
	Database      *DatabaseConfig     `mapstructure:"database" json:"database,omitempty"`
	Callback      CallbackConfig      `mapstructure:"callback" json:"callback"`
}

// CacheConfig selects the cache implementation. Redis wins when present.
type CacheConfig struct {
	Memory *MemoryCacheConfig `mapstructure:"memory" json:"memory,omitempty"`
	Redis  *RedisConfig       `mapstructure:"redis" json:"redis,omitempty"`
}

// MemoryCacheConfig configures the in-process cache.
type MemoryCacheConfig struct {
	// MaxEntries bounds the cache with LRU eviction; zero means unbounded.
	MaxEntries int `mapstructure:"maxEntries" json:"maxEntries" validate:"gte=0"`
}

// RedisConfig configures the distributed cache.
type RedisConfig struct {
	Host     string `mapstructure:"host" json:"host" validate:"required"`
	Port     int    `mapstructure:"port" json:"port" validate:"gt=0,lte=65535"`
	Username string `mapstructure:"username" json:"username,omitempty"`
	Password string `mapstructure:"password" json:"-"`
	DB       int    `mapstructure:"db" json:"db"`
	// KeyPrefix namespaces every key written by this process.
	KeyPrefix string `mapstructure:"keyPrefix" json:"keyPrefix,omitempty"`
}

// MessageBrokerConfig holds the broker settings.
type MessageBrokerConfig struct {
	NATS *NATSConfig `mapstructure:"nats" json:"nats,omitempty"`
}

// NATSConfig configures the NATS sender and receiver.
type NATSConfig struct {
	URL           string         `mapstructure:"url" json:"url" validate:"required"`
	SubjectPrefix string         `mapstructure:"subjectPrefix" json:"subjectPrefix" default:"ocpp"`
	Encoding      string         `mapstructure:"encoding" json:"encoding" validate:"omitempty,oneof=json msgpack"`
	MaxReconnects int            `mapstructure:"maxReconnects" json:"maxReconnects"`
	ReconnectWait time.Duration  `mapstructure:"reconnectWait" json:"reconnectWait"`
	Timeout       time.Duration  `mapstructure:"timeout" json:"timeout"`
	Breaker       *BreakerConfig `mapstructure:"breaker" json:"breaker,omitempty"`
	// Workers handle received messages concurrently; 0 or 1 handles them inline.
	Workers int `mapstructure:"workers" json:"workers" validate:"gte=0"`
}

// BreakerConfig configures a gobreaker circuit breaker.
type BreakerConfig struct {
	MaxRequests         uint32        `mapstructure:"maxRequests" json:"maxRequests"`
	Interval            time.Duration `mapstructure:"interval" json:"interval"`
	Timeout             time.Duration `mapstructure:"timeout" json:"timeout"`
	ConsecutiveFailures uint32        `mapstructure:"consecutiveFailures" json:"consecutiveFailures"`
}

// SwaggerConfig enables the documentation UI and selects the documented routes.
type SwaggerConfig struct {
	Path          string `mapstructure:"path" json:"path" default:"/docs"`
	Title         string `mapstructure:"title" json:"title"`
	ExposeData    bool   `mapstructure:"exposeData" json:"exposeData"`
	ExposeMessage bool   `mapstructure:"exposeMessage" json:"exposeMessage"`
}

// ValidatorConfig configures request schema validation.
type ValidatorConfig struct {
	RemoveAdditional bool   `mapstructure:"removeAdditional" json:"removeAdditional"`
	UseDefaults      bool   `mapstructure:"useDefaults" json:"useDefaults"`
	CoerceTypes      string `mapstructure:"coerceTypes" json:"coerceTypes" validate:"omitempty,oneof=true false array"`
	Strict           bool   `mapstructure:"strict" json:"strict"`
}

// DatabaseConfig configures the persistence sync.
type DatabaseConfig struct {
	URL      string        `mapstructure:"url" json:"-"`
	Host     string        `mapstructure:"host" json:"host"`
	Port     int           `mapstructure:"port" json:"port"`
	Database string        `mapstructure:"database" json:"database"`
	Username string        `mapstructure:"username" json:"username"`
	Password string        `mapstructure:"password" json:"-"`
	SSLMode  string        `mapstructure:"sslMode" json:"sslMode"`
	MaxConns int32         `mapstructure:"maxConns" json:"maxConns"`
	Timeout  time.Duration `mapstructure:"timeout" json:"timeout"`
	// Alter drops and recreates the managed tables on a forced sync.
	Alter bool `mapstructure:"alter" json:"alter"`
}

// CallbackConfig configures delivery of asynchronous results to callback URLs.
type CallbackConfig struct {
	// Client selects the HTTP client: "std" or "fasthttp".
	Client  string         `mapstructure:"client" json:"client" validate:"omitempty,oneof=std fasthttp"`
	Timeout time.Duration  `mapstructure:"timeout" json:"timeout"`
	TTL     time.Duration  `mapstructure:"ttl" json:"ttl"`
	Breaker *BreakerConfig `mapstructure:"breaker" json:"breaker,omitempty"`
}

// CarrySecrets copies the fields that never leave the process (json:"-")
// from prev into c, so a configuration read back over the API can replace prev.
func (c *SystemConfig) CarrySecrets(prev *SystemConfig) {
	if c == nil || prev == nil {
		return
	}
	if c.Util.Cache.Redis != nil && prev.Util.Cache.Redis != nil {
		c.Util.Cache.Redis.Password = prev.Util.Cache.Redis.Password
	}
	if c.Util.Database != nil && prev.Util.Database != nil {
		c.Util.Database.URL = prev.Util.Database.URL
		c.Util.Database.Password = prev.Util.Database.Password
	}
}

package config

import (
	"time"

	"github.com/abhissng/chargehub/utils/constant"
	"github.com/abhissng/chargehub/utils/helpers"
)

// Default returns a configuration that runs every module in one process
// against a local NATS server with an in-memory cache.
func Default() *SystemConfig {
	return &SystemConfig{
		Env: "development",
		Server: ServerConfig{
			LogLevel:        "info",
			Host:            "0.0.0.0",
			Port:            8080,
			Metrics:         true,
			ShutdownTimeout: constant.ForcedExitDelay,
		},
		CentralSystem: CentralSystemConfig{
			Host:         "0.0.0.0",
			Port:         8081,
			PingInterval: 30 * time.Second,
			CallTimeout:  30 * time.Second,
			Subprotocols: []string{"ocpp2.0.1"},
		},
		Modules: ModulesConfig{
			Certificates: &ModuleConfig{EndpointPrefix: "certificates", Port: 8080},
			Configuration: &ModuleConfig{
				EndpointPrefix:       "configuration",
				Port:                 8080,
				HeartbeatInterval:    60,
				BootRetryInterval:    15,
				UnknownChargerStatus: "Accepted",
			},
			EVDriver:      &ModuleConfig{EndpointPrefix: "evdriver", Port: 8080, AcceptUnknownIdTokens: true},
			Monitoring:    &ModuleConfig{EndpointPrefix: "monitoring", Port: 8080},
			Reporting:     &ModuleConfig{EndpointPrefix: "reporting", Port: 8080},
			SmartCharging: &ModuleConfig{EndpointPrefix: "smartcharging", Port: 8080},
			Transactions:  &ModuleConfig{EndpointPrefix: "transactions", Port: 8080, AcceptUnknownIdTokens: true},
		},
		Util: UtilConfig{
			Cache: CacheConfig{Memory: &MemoryCacheConfig{}},
			MessageBroker: MessageBrokerConfig{
				NATS: &NATSConfig{
					URL:           "nats://127.0.0.1:4222",
					SubjectPrefix: "ocpp",
					Encoding:      "json",
					MaxReconnects: 10,
					ReconnectWait: 2 * time.Second,
					Timeout:       5 * time.Second,
					Workers:       8,
				},
			},
			Swagger: &SwaggerConfig{
				Path:          constant.DefaultDocPath,
				Title:         constant.ServiceName,
				ExposeData:    true,
				ExposeMessage: true,
			},
			Validator: ValidatorConfig{
				RemoveAdditional: true,
				UseDefaults:      true,
				CoerceTypes:      "array",
				Strict:           false,
			},
			Callback: CallbackConfig{
				Client:  "std",
				Timeout: 10 * time.Second,
				TTL:     time.Hour,
			},
		},
	}
}

// Section returns the module section for a group name, nil when absent or unknown.
func (c *SystemConfig) Section(group string) *ModuleConfig {
	if c == nil {
		return nil
	}
	switch group {
	case "certificates":
		return c.Modules.Certificates
	case "configuration":
		return c.Modules.Configuration
	case "evdriver":
		return c.Modules.EVDriver
	case "monitoring":
		return c.Modules.Monitoring
	case "reporting":
		return c.Modules.Reporting
	case "smartcharging":
		return c.Modules.SmartCharging
	case "transactions":
		return c.Modules.Transactions
	}
	return nil
}

// IsProd reports whether the configuration targets production.
func (c *SystemConfig) IsProd() bool {
	if c == nil || helpers.IsEmpty(c.Env) {
		return helpers.IsProdEnvironment()
	}
	switch c.Env {
	case "prod", "production":
		return true
	}
	return false
}

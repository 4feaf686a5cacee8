package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"

	"github.com/botlab/robot-access/internal/core/domain"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`
	DeviceKey string `env:"DEVICE_KEY"`

	Session   SessionConfig
	Timeslot  TimeslotConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	Robots    RobotsConfig
	Bootstrap BootstrapConfig
	Gateway   GatewayConfig
}

type SessionConfig struct {
	TTL              time.Duration `env:"SESSION_TTL,                default=30m"`
	EvictOnSupersede bool          `env:"SESSION_EVICT_ON_SUPERSEDE, default=true"`
}

type TimeslotConfig struct {
	RejectOverlap bool `env:"TIMESLOT_REJECT_OVERLAP, default=false"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=robot_access"`
}

type RedisConfig struct {
	Addr          string `env:"REDIS_ADDR,           default=localhost:6379"`
	Password      string `env:"REDIS_PASSWORD"`
	DB            int    `env:"REDIS_DB,             default=0"`
	ChannelPrefix string `env:"RELAY_CHANNEL_PREFIX, default=robot"`
}

type RobotsConfig struct {
	ROSAddr string `env:"ROS_BOT_ADDR, default=localhost:8081"`
	IoTAddr string `env:"IOT_BOT_ADDR, default=localhost:8082"`
}

// Addrs maps each resource to its code-push address.
func (r RobotsConfig) Addrs() map[domain.Resource]string {
	return map[domain.Resource]string{
		domain.ResourceROS: r.ROSAddr,
		domain.ResourceIoT: r.IoTAddr,
	}
}

// BootstrapConfig holds the passwords of the privileged accounts created on
// first start. Empty entries are skipped.
type BootstrapConfig struct {
	RootPassword      string `env:"ROOT_PASSWORD"`
	DeveloperPassword string `env:"DEVELOPER_PASSWORD"`
	AdminPassword     string `env:"ADMIN_PASSWORD"`
}

// Passwords returns the configured password per privileged role.
func (b BootstrapConfig) Passwords() map[domain.Role]string {
	return map[domain.Role]string{
		domain.RoleRoot:      b.RootPassword,
		domain.RoleDeveloper: b.DeveloperPassword,
		domain.RoleAdmin:     b.AdminPassword,
	}
}

type GatewayConfig struct {
	SendBuffer   int `env:"GATEWAY_SEND_BUFFER, default=64"`
	RelayWorkers int `env:"RELAY_WORKERS,       default=4"`
}

// IsDevelopment reports whether pretty console logging should be used.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Validate checks settings envconfig cannot express.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.Session.TTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	return nil
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadWith(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadWith reads configuration through lookuper and validates it.
func LoadWith(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

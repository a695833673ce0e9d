package config

import (
	"flag"
	"fmt"
	"net/netip"
	"strings"
	"time"

	"github.com/Temutjin2k/kekelink/pkg/configparser"
)

// Flags
var (
	configPath = flag.String("config-path", "config.yaml", "path to the YAML config file")
	helpFlag   = flag.Bool("help", false, "print usage and exit")
)

// Config contains all configuration variables of the application
type (
	Config struct {
		Server    ServerConfig
		WebSocket WebSocketConfig
		Database  DatabaseConfig
		RabbitMQ  RabbitMQConfig
		Redis     RedisConfig
		Scoring   ScoringConfig
		Auth      AuthConfig
		Log       LogConfig
	}

	ServerConfig struct {
		Host            string        `env:"SERVER_HOST" default:"0.0.0.0"`
		Port            string        `env:"SERVER_PORT" default:"3000"`
		ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
		WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"15s"`
		ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"5s"`
		TrustedProxies  string        `env:"SERVER_TRUSTED_PROXIES"` // comma separated IPs or CIDRs allowed to set X-Forwarded-For
	}

	WebSocketConfig struct {
		SendBuffer     int           `env:"WEBSOCKET_SEND_BUFFER" default:"64"`
		ReadLimit      int64         `env:"WEBSOCKET_READ_LIMIT" default:"65536"`
		PingPeriod     time.Duration `env:"WEBSOCKET_PING_PERIOD" default:"54s"`
		PongWait       time.Duration `env:"WEBSOCKET_PONG_WAIT" default:"60s"`
		WriteWait      time.Duration `env:"WEBSOCKET_WRITE_WAIT" default:"10s"`
		AllowedOrigins string        `env:"WEBSOCKET_ALLOWED_ORIGINS"` // comma separated, empty allows any
	}

	DatabaseConfig struct {
		Enabled  bool   `env:"DATABASE_ENABLED" default:"true"`
		Host     string `env:"DATABASE_HOST" default:"localhost"`
		Port     string `env:"DATABASE_PORT" default:"5432"`
		User     string `env:"DATABASE_USER" default:"kekelink"`
		Password string `env:"DATABASE_PASSWORD" default:"kekelink"`
		Database string `env:"DATABASE_DATABASE" default:"kekelink"`

		MaxConns       int32         `env:"DATABASE_MAXCONNS" default:"20"`
		ConnectTimeout time.Duration `env:"DATABASE_CONNECT_TIMEOUT" default:"5s"`
		Seed           bool          `env:"DATABASE_SEED" default:"false"`
	}

	RabbitMQConfig struct {
		Enabled  bool   `env:"RABBITMQ_ENABLED" default:"true"`
		Host     string `env:"RABBITMQ_HOST" default:"localhost"`
		Port     string `env:"RABBITMQ_PORT" default:"5672"`
		User     string `env:"RABBITMQ_USER" default:"guest"`
		Password string `env:"RABBITMQ_PASSWORD" default:"guest"`
	}

	RedisConfig struct {
		Enabled     bool          `env:"REDIS_ENABLED" default:"true"`
		Addr        string        `env:"REDIS_ADDR" default:"localhost:6379"`
		Password    string        `env:"REDIS_PASSWORD"`
		DB          int           `env:"REDIS_DB" default:"0"`
		DialTimeout time.Duration `env:"REDIS_DIAL_TIMEOUT" default:"3s"`
		KeyPrefix   string        `env:"REDIS_KEY_PREFIX"`

		RateLimit       int           `env:"REDIS_RATE_LIMIT" default:"30"`
		RateLimitWindow time.Duration `env:"REDIS_RATE_LIMIT_WINDOW" default:"1m"`
	}

	ScoringConfig struct {
		Enabled bool          `env:"SCORING_ENABLED" default:"false"`
		BaseURL string        `env:"SCORING_BASE_URL" default:"http://localhost:8090"`
		APIKey  string        `env:"SCORING_API_KEY"`
		Timeout time.Duration `env:"SCORING_TIMEOUT" default:"5s"`
	}

	AuthConfig struct {
		JWTSecret      string        `env:"AUTH_JWT_SECRET" default:"supersecretkey"`
		AccessTokenTTL time.Duration `env:"AUTH_ACCESS_TOKEN_TTL" default:"12h"`
	}

	LogConfig struct {
		Level       string `env:"LOG_LEVEL" default:"INFO"`
		ServiceName string `env:"LOG_SERVICE_NAME" default:"kekelink"`
	}
)

func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// Proxies parses TrustedProxies. A bare IP becomes a single-address prefix.
func (c ServerConfig) Proxies() ([]netip.Prefix, error) {
	var out []netip.Prefix
	for _, raw := range strings.Split(c.TrustedProxies, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if strings.Contains(raw, "/") {
			p, err := netip.ParsePrefix(raw)
			if err != nil {
				return nil, fmt.Errorf("trusted proxy %q: %w", raw, err)
			}
			out = append(out, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(raw)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", raw, err)
		}
		addr = addr.Unmap()
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return out, nil
}

// Origins splits AllowedOrigins into its non-empty entries.
func (c WebSocketConfig) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func (c DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

func (c DatabaseConfig) GetMaxConns() int32 {
	return c.MaxConns
}

func (c DatabaseConfig) GetConnectTimeout() time.Duration {
	return c.ConnectTimeout
}

func (c RabbitMQConfig) GetDSN() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s/",
		c.User,
		c.Password,
		c.Host,
		c.Port,
	)
}

// NewConfig loads the YAML file at path into the environment and parses the
// result. An empty path falls back to the -config-path flag.
func NewConfig(path string) (*Config, error) {
	if path == "" {
		path = *configPath
	}

	cfg := &Config{}
	if err := configparser.LoadAndParseYaml(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to load and parse config: %w", err)
	}

	return cfg, nil
}

// HelpRequested reports whether -help was passed. flag.Parse must have run.
func HelpRequested() bool {
	return helpFlag != nil && *helpFlag
}

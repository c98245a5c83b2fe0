package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
	"gopkg.in/yaml.v3"
)

// FileName: имя файла конфигурации внутри CONFIG_DIR
const FileName = "userdir.yaml"

// Config: полная конфигурация сервиса пользователей
type Config struct {
	Server   ServerConfig `yaml:"server"`
	Database DBConfig     `yaml:"database"`
	RabbitMQ MQConfig     `yaml:"rabbitmq"`
	JWT      JWTConfig    `yaml:"jwt"`
	Redis    RedisConfig  `yaml:"redis"`
	Ops      OpsConfig    `yaml:"ops"`
	Log      LogConfig    `yaml:"log"`
}

type ServerConfig struct {
	Host            string        `yaml:"host"              env:"USER_SERVICE_HOST, overwrite, default=0.0.0.0"`
	Port            int           `yaml:"port"              env:"USER_SERVICE_PORT, overwrite, default=5001"`
	ReadTimeout     time.Duration `yaml:"read_timeout"      env:"USER_SERVICE_READ_TIMEOUT, overwrite, default=30s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"     env:"USER_SERVICE_WRITE_TIMEOUT, overwrite, default=10s"`
	MaxMessageBytes int           `yaml:"max_message_bytes" env:"USER_SERVICE_MAX_MESSAGE_BYTES, overwrite, default=1048576"`
	MaxConnections  int64         `yaml:"max_connections"   env:"USER_SERVICE_MAX_CONNECTIONS, overwrite, default=256"`
}

type DBConfig struct {
	URL      string `yaml:"url"      env:"DATABASE_URL, overwrite"`
	Host     string `yaml:"host"     env:"DB_HOST, overwrite, default=localhost"`
	Port     int    `yaml:"port"     env:"DB_PORT, overwrite, default=5432"`
	User     string `yaml:"user"     env:"DB_USER, overwrite, default=user"`
	Password string `yaml:"password" env:"DB_PASSWORD, overwrite, default=password"`
	Database string `yaml:"database" env:"DB_NAME, overwrite, default=medical_system"`
	SSLMode  string `yaml:"sslmode"  env:"DB_SSLMODE, overwrite, default=disable"`

	MaxConns         int32         `yaml:"max_conns"          env:"DB_MAX_CONNS, overwrite, default=20"`
	MinConns         int32         `yaml:"min_conns"          env:"DB_MIN_CONNS, overwrite, default=2"`
	MaxConnLifetime  time.Duration `yaml:"max_conn_lifetime"  env:"DB_MAX_CONN_LIFETIME, overwrite, default=1h"`
	MaxConnIdleTime  time.Duration `yaml:"max_conn_idle_time" env:"DB_MAX_CONN_IDLE_TIME, overwrite, default=30m"`
	ConnectTimeout   time.Duration `yaml:"connect_timeout"    env:"DB_CONNECT_TIMEOUT, overwrite, default=5s"`
	StatementTimeout time.Duration `yaml:"statement_timeout"  env:"DB_STATEMENT_TIMEOUT, overwrite, default=30s"` // 0: без ограничения
}

type MQConfig struct {
	Host            string        `yaml:"host"             env:"RABBITMQ_HOST, overwrite, default=localhost"`
	Port            int           `yaml:"port"             env:"RABBITMQ_PORT, overwrite, default=5672"`
	User            string        `yaml:"user"             env:"RABBITMQ_USER, overwrite, default=admin"`
	Password        string        `yaml:"password"         env:"RABBITMQ_PASSWORD, overwrite, default=admin"`
	VHost           string        `yaml:"vhost"            env:"RABBITMQ_VHOST, overwrite, default=/"`
	Exchange        string        `yaml:"exchange"         env:"RABBITMQ_EXCHANGE, overwrite, default=notificacoes_exchange"`
	RoutingKey      string        `yaml:"routing_key"      env:"RABBITMQ_ROUTING_KEY, overwrite, default=sd/notificacoes"`
	ConnectAttempts int           `yaml:"connect_attempts" env:"RABBITMQ_CONNECT_ATTEMPTS, overwrite, default=5"`
	RetryDelay      time.Duration `yaml:"retry_delay"      env:"RABBITMQ_RETRY_DELAY, overwrite, default=5s"`
	PublishTimeout  time.Duration `yaml:"publish_timeout"  env:"RABBITMQ_PUBLISH_TIMEOUT, overwrite, default=5s"`
	QueueSize       int           `yaml:"queue_size"       env:"NOTIFICATION_QUEUE_SIZE, overwrite, default=256"`
}

type JWTConfig struct {
	Secret string        `yaml:"secret" env:"JWT_SECRET, overwrite, default=dev_secret"`
	TTL    time.Duration `yaml:"ttl"    env:"JWT_TTL, overwrite, default=24h"`
}

type RedisConfig struct {
	// Addr пустой: спул уведомлений отключен
	Addr           string        `yaml:"addr"            env:"REDIS_ADDR, overwrite"`
	DB             int           `yaml:"db"              env:"REDIS_DB, overwrite"`
	ReplayInterval time.Duration `yaml:"replay_interval" env:"REDIS_REPLAY_INTERVAL, overwrite, default=30s"`
}

type OpsConfig struct {
	// Port 0: ops endpoint отключен
	Port int `yaml:"port" env:"OPS_PORT, overwrite, default=9101"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL, overwrite, default=info"`
}

// Load: загрузка из configDir/userdir.yaml (по умолчанию CONFIG_DIR или ./config),
// затем ENV перекрывает. Отсутствующий файл: не ошибка.
func Load(configDir string) (Config, error) {
	if configDir == "" {
		configDir = getEnv("CONFIG_DIR", "./config")
	}

	cfg := Config{}

	path := filepath.Join(configDir, FileName)
	raw, err := os.ReadFile(filepath.Clean(path))
	switch {
	case err == nil:
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
		// только умолчания и ENV
	default:
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}

	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		return Config{}, fmt.Errorf("apply env overrides: %w", err)
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// Addr возвращает host:port TCP сервера
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DSN возвращает строку подключения к БД. DATABASE_URL имеет приоритет.
func (c DBConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// AMQPURL возвращает URL подключения к RabbitMQ
func (c MQConfig) AMQPURL() string {
	u := url.URL{
		Scheme: "amqp",
		User:   url.UserPassword(c.User, c.Password),
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   c.VHost,
	}
	return u.String()
}

// Package config loads the settings shared by the register API and the terminal client.
// Keys are flat environment names (SERVER_PORT, REGISTER_TIMEZONE, ...) read from a
// .env file under ./configs and overridden by the process environment.
package config

import (
	"fmt"
	"strings"
	"time"
)

type Config struct {
	Application ApplicationConfig `mapstructure:",squash"`
	Logging     LoggingConfig     `mapstructure:",squash"`
	Server      ServerConfig      `mapstructure:",squash"`
	Kafka       KafkaConfig       `mapstructure:",squash"`
	Postgres    PostgresConfig    `mapstructure:",squash"`
	MongoDB     MongoDBConfig     `mapstructure:",squash"`
	Redis       RedisConfig       `mapstructure:",squash"`
	Outbox      OutboxConfig      `mapstructure:",squash"`
	WorkerPool  WorkerPoolConfig  `mapstructure:",squash"`
	Register    RegisterConfig    `mapstructure:",squash"`
}

type ApplicationConfig struct {
	Env  string `mapstructure:"APP_ENV"`
	Name string `mapstructure:"APP_NAME"`
}

type LoggingConfig struct {
	Level string `mapstructure:"LOG_LEVEL"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port            int           `mapstructure:"SERVER_PORT"`
	ShutdownTimeout time.Duration `mapstructure:"SERVER_SHUTDOWN_TIMEOUT"`
	ReadTimeout     time.Duration `mapstructure:"SERVER_READ_TIMEOUT"`
	WriteTimeout    time.Duration `mapstructure:"SERVER_WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `mapstructure:"SERVER_IDLE_TIMEOUT"`
}

// KafkaConfig configures the change feed shared by every register instance.
type KafkaConfig struct {
	Brokers           string `mapstructure:"KAFKA_BROKERS"`
	ChangeTopic       string `mapstructure:"KAFKA_CHANGE_TOPIC"`
	NumPartitions     int    `mapstructure:"KAFKA_NUM_PARTITIONS"`
	ReplicationFactor int    `mapstructure:"KAFKA_REPLICATION_FACTOR"`
	// ConsumerGroup is a prefix; each instance consumes in its own group.
	ConsumerGroup string        `mapstructure:"KAFKA_CONSUMER_GROUP"`
	MinBytes      int           `mapstructure:"KAFKA_CONSUMER_MIN_BYTES"`
	MaxBytes      int           `mapstructure:"KAFKA_CONSUMER_MAX_BYTES"`
	MaxWait       time.Duration `mapstructure:"KAFKA_CONSUMER_MAX_WAIT"`
	DLQTopic      string        `mapstructure:"KAFKA_DLQ_TOPIC"`
}

// BrokerList splits the comma separated KAFKA_BROKERS value.
func (k KafkaConfig) BrokerList() []string {
	var brokers []string
	for _, b := range strings.Split(k.Brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

type PostgresConfig struct {
	URL             string        `mapstructure:"POSTGRES_URL"`
	MaxConns        int32         `mapstructure:"POSTGRES_MAX_CONNS"`
	MinConns        int32         `mapstructure:"POSTGRES_MIN_CONNS"`
	ConnMaxLifetime time.Duration `mapstructure:"POSTGRES_MAX_CONN_LIFETIME"`
	ConnMaxIdleTime time.Duration `mapstructure:"POSTGRES_MAX_CONN_IDLE_TIME"`
	MigrationsPath  string        `mapstructure:"POSTGRES_MIGRATIONS_PATH"`
}

// MongoDBConfig configures the cash movement journal.
type MongoDBConfig struct {
	URI             string        `mapstructure:"MONGO_URI"`
	Database        string        `mapstructure:"MONGO_DATABASE"`
	Timeout         time.Duration `mapstructure:"MONGO_TIMEOUT"`
	MaxPoolSize     uint64        `mapstructure:"MONGO_MAX_POOL_SIZE"`
	MinPoolSize     uint64        `mapstructure:"MONGO_MIN_POOL_SIZE"`
	MaxConnIdleTime time.Duration `mapstructure:"MONGO_MAX_CONN_IDLE_TIME"`
}

// RedisConfig configures the daily sales cache. An empty Addr disables it.
type RedisConfig struct {
	Addr     string        `mapstructure:"REDIS_ADDR"`
	Password string        `mapstructure:"REDIS_PASSWORD"`
	DB       int           `mapstructure:"REDIS_DB"`
	SalesTTL time.Duration `mapstructure:"REDIS_SALES_TTL"`
}

type OutboxConfig struct {
	PollingInterval  time.Duration `mapstructure:"OUTBOX_POLLING_INTERVAL"`
	BatchSize        int           `mapstructure:"OUTBOX_BATCH_SIZE"`
	MaxRetryAttempts int           `mapstructure:"OUTBOX_MAX_RETRY_ATTEMPTS"`
}

type WorkerPoolConfig struct {
	Size int `mapstructure:"WORKER_POOL_SIZE"`
}

type RegisterConfig struct {
	// Timezone is the IANA zone that decides which day a sale belongs to.
	Timezone   string `mapstructure:"REGISTER_TIMEZONE"`
	DateLayout string `mapstructure:"REGISTER_DATE_LAYOUT"`
	// InstanceID names this register on the change feed. Generated when empty.
	InstanceID string `mapstructure:"REGISTER_INSTANCE_ID"`

	Location *time.Location `mapstructure:"-"`
}

type rule struct {
	ok  bool
	msg string
}

func (c *Config) rules() []rule {
	redisOn := c.Redis.Addr != ""
	_, zoneErr := time.LoadLocation(c.Register.Timezone)

	return []rule{
		{c.Server.Port > 0, "SERVER_PORT must be greater than 0"},
		{c.Server.ShutdownTimeout > 0, "SERVER_SHUTDOWN_TIMEOUT must be greater than 0"},
		{c.Server.ReadTimeout > 0, "SERVER_READ_TIMEOUT must be greater than 0"},
		{c.Server.WriteTimeout > 0, "SERVER_WRITE_TIMEOUT must be greater than 0"},
		{c.Server.IdleTimeout > 0, "SERVER_IDLE_TIMEOUT must be greater than 0"},

		{len(c.Kafka.BrokerList()) > 0, "KAFKA_BROKERS is required"},
		{c.Kafka.ChangeTopic != "", "KAFKA_CHANGE_TOPIC is required"},
		{c.Kafka.DLQTopic != c.Kafka.ChangeTopic, "KAFKA_DLQ_TOPIC must differ from KAFKA_CHANGE_TOPIC"},
		{c.Kafka.ConsumerGroup != "", "KAFKA_CONSUMER_GROUP is required"},
		{c.Kafka.MinBytes > 0, "KAFKA_CONSUMER_MIN_BYTES must be greater than 0"},
		{c.Kafka.MaxBytes >= c.Kafka.MinBytes, "KAFKA_CONSUMER_MAX_BYTES must not be below KAFKA_CONSUMER_MIN_BYTES"},
		{c.Kafka.MaxWait > 0, "KAFKA_CONSUMER_MAX_WAIT must be greater than 0"},

		{c.Postgres.URL != "", "POSTGRES_URL is required"},
		{c.Postgres.MinConns > 0, "POSTGRES_MIN_CONNS must be greater than 0"},
		{c.Postgres.MaxConns >= c.Postgres.MinConns, "POSTGRES_MAX_CONNS must not be below POSTGRES_MIN_CONNS"},
		{c.Postgres.ConnMaxLifetime > 0, "POSTGRES_MAX_CONN_LIFETIME must be greater than 0"},
		{c.Postgres.ConnMaxIdleTime > 0, "POSTGRES_MAX_CONN_IDLE_TIME must be greater than 0"},

		{c.MongoDB.URI != "", "MONGO_URI is required"},
		{c.MongoDB.Database != "", "MONGO_DATABASE is required"},
		{c.MongoDB.Timeout > 0, "MONGO_TIMEOUT must be greater than 0"},
		{c.MongoDB.MaxPoolSize > 0, "MONGO_MAX_POOL_SIZE must be greater than 0"},
		{c.MongoDB.MaxConnIdleTime > 0, "MONGO_MAX_CONN_IDLE_TIME must be greater than 0"},

		{!redisOn || c.Redis.SalesTTL > 0, "REDIS_SALES_TTL must be greater than 0 when REDIS_ADDR is set"},
		{c.Redis.DB >= 0, "REDIS_DB must not be negative"},

		{c.Outbox.PollingInterval > 0, "OUTBOX_POLLING_INTERVAL must be greater than 0"},
		{c.Outbox.BatchSize > 0, "OUTBOX_BATCH_SIZE must be greater than 0"},
		{c.Outbox.MaxRetryAttempts > 0, "OUTBOX_MAX_RETRY_ATTEMPTS must be greater than 0"},

		{c.WorkerPool.Size > 0, "WORKER_POOL_SIZE must be greater than 0"},

		{c.Register.Timezone != "", "REGISTER_TIMEZONE is required"},
		{c.Register.Timezone == "" || zoneErr == nil, "REGISTER_TIMEZONE is not a known time zone: " + c.Register.Timezone},
		{c.Register.DateLayout != "", "REGISTER_DATE_LAYOUT is required"},
	}
}

// validate reports every broken rule at once.
func (c *Config) validate() error {
	var broken []string
	for _, r := range c.rules() {
		if !r.ok {
			broken = append(broken, r.msg)
		}
	}
	if len(broken) > 0 {
		return fmt.Errorf("%s", strings.Join(broken, ", "))
	}
	return nil
}

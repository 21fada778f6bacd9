// Package config provides configuration structures and validation for the billing services.
// It covers the HTTP server, the PostgreSQL store, the event pipeline (Kafka, MongoDB,
// outbox) and the engine parameters for accounts, idempotency and archiving.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Idempotency key formats accepted on the Idempotency-key header.
const (
	KeyFormatNumeric = "numeric"
	KeyFormatOpaque  = "opaque"
)

// Config holds the complete application configuration. Both binaries load the same
// structure and use the sections they need.
type Config struct {
	Application ApplicationConfig
	Logging     LoggingConfig
	Server      ServerConfig
	Kafka       KafkaConfig
	Postgres    PostgresConfig
	MongoDB     MongoDBConfig
	Outbox      OutboxConfig
	WorkerPool  WorkerPoolConfig
	Accounts    AccountsConfig
	Idempotency IdempotencyConfig
	Archive     ArchiveConfig
}

// ApplicationConfig contains general application configuration
type ApplicationConfig struct {
	Env  string
	Name string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string
}

// ServerConfig contains HTTP server configuration settings
type ServerConfig struct {
	Port            int           // Port to listen on
	ShutdownTimeout time.Duration // Grace period for server shutdown
	ReadTimeout     time.Duration // Maximum duration for reading entire request
	WriteTimeout    time.Duration // Maximum duration for writing response
	IdleTimeout     time.Duration // Maximum duration to wait for next request
}

// KafkaConfig contains Kafka configuration
type KafkaConfig struct {
	Brokers             string
	TransferEventsTopic string
	NumPartitions       int // Number of partitions for topics
	ReplicationFactor   int // Replication factor for topics
	ConsumerGroup       string
	MinBytes            int
	MaxBytes            int
	MaxWait             time.Duration
	StartOffset         int64
	DLQTopic            string // Topic for Dead Letter Queue
}

// PostgresConfig contains PostgreSQL configuration
type PostgresConfig struct {
	URL             string        // Database connection string
	MaxConns        int32         // Maximum number of open connections
	MinConns        int32         // Maximum number of idle connections
	ConnMaxLifetime time.Duration // Maximum lifetime of a connection
	ConnMaxIdleTime time.Duration // Maximum idle time of a connection
	MigrationsPath  string        // Path to migration files
}

// MongoDBConfig contains MongoDB configuration
type MongoDBConfig struct {
	URI             string
	Database        string
	Timeout         time.Duration
	MaxPoolSize     uint64
	MinPoolSize     uint64
	MaxConnIdleTime time.Duration
}

// OutboxConfig contains outbox pattern configuration
type OutboxConfig struct {
	PollingInterval  time.Duration
	BatchSize        int
	MaxRetryAttempts int // Maximum number of retry attempts for outbox messages
}

// WorkerPoolConfig contains worker pool configuration
type WorkerPoolConfig struct {
	Size int // Maximum number of workers in the pool
}

// AccountsConfig contains account lifecycle parameters
type AccountsConfig struct {
	InitialBalance    decimal.Decimal // Bonus credited to every new account
	DefaultMaxAllowed int             // Used when a customer is created without a limit
	OperationTimeout  time.Duration   // Upper bound for one lifecycle transition
}

// IdempotencyConfig contains idempotency guard parameters
type IdempotencyConfig struct {
	KeyFormat     string        // numeric or opaque
	LockShards    int           // Number of shards in the in-process key lock table
	KeyBlockSize  int64         // Keys reserved per round trip by the key issuer
	Retention     time.Duration // Age after which stored responses are purged; 0 keeps them forever
	PurgeInterval time.Duration
}

// ArchiveConfig contains the deleted-account archive settings
type ArchiveConfig struct {
	Path        string
	OpenTimeout time.Duration
}

// validate performs comprehensive validation of all configuration values,
// ensuring they meet minimum requirements and logical constraints
func (c *Config) validate() error {
	var validationErrors []string

	// Validate Server config
	if c.Server.Port <= 0 {
		validationErrors = append(validationErrors, "SERVER_PORT must be greater than 0")
	}
	if c.Server.ShutdownTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_SHUTDOWN_TIMEOUT must be greater than 0")
	}
	if c.Server.ReadTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_READ_TIMEOUT must be greater than 0")
	}
	if c.Server.WriteTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_WRITE_TIMEOUT must be greater than 0")
	}
	if c.Server.IdleTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_IDLE_TIMEOUT must be greater than 0")
	}

	// Validate Kafka config
	if len(c.Kafka.Brokers) == 0 {
		validationErrors = append(validationErrors, "KAFKA_BROKERS is required")
	}
	if c.Kafka.TransferEventsTopic == "" {
		validationErrors = append(validationErrors, "KAFKA_TRANSFER_EVENTS_TOPIC is required")
	}
	if c.Kafka.ConsumerGroup == "" {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_GROUP is required")
	}
	if c.Kafka.MinBytes <= 0 {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_MIN_BYTES must be greater than 0")
	}
	if c.Kafka.MaxBytes <= 0 {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_MAX_BYTES must be greater than 0")
	}
	if c.Kafka.MaxWait <= 0 {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_MAX_WAIT must be greater than 0")
	}
	if c.Kafka.DLQTopic == "" {
		validationErrors = append(validationErrors, "KAFKA_DLQ_TOPIC is required")
	}

	// Validate PostgreSQL config
	if c.Postgres.URL == "" {
		validationErrors = append(validationErrors, "POSTGRES_URL is required")
	}
	if c.Postgres.MaxConns <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONNS must be greater than 0")
	}
	if c.Postgres.MinConns <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MIN_CONNS must be greater than 0")
	}
	if c.Postgres.ConnMaxLifetime <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONN_LIFETIME must be greater than 0")
	}
	if c.Postgres.ConnMaxIdleTime <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONN_IDLE_TIME must be greater than 0")
	}

	// Validate MongoDB config
	if c.MongoDB.URI == "" {
		validationErrors = append(validationErrors, "MONGO_URI is required")
	}
	if c.MongoDB.Database == "" {
		validationErrors = append(validationErrors, "MONGO_DATABASE is required")
	}
	if c.MongoDB.Timeout <= 0 {
		validationErrors = append(validationErrors, "MONGO_TIMEOUT must be greater than 0")
	}
	if c.MongoDB.MaxPoolSize <= 0 {
		validationErrors = append(validationErrors, "MONGO_MAX_POOL_SIZE must be greater than 0")
	}
	if c.MongoDB.MinPoolSize <= 0 {
		validationErrors = append(validationErrors, "MONGO_MIN_POOL_SIZE must be greater than 0")
	}
	if c.MongoDB.MaxConnIdleTime <= 0 {
		validationErrors = append(validationErrors, "MONGO_MAX_CONN_IDLE_TIME must be greater than 0")
	}

	// Validate Outbox config
	if c.Outbox.PollingInterval <= 0 {
		validationErrors = append(validationErrors, "OUTBOX_POLLING_INTERVAL must be greater than 0")
	}
	if c.Outbox.BatchSize <= 0 {
		validationErrors = append(validationErrors, "OUTBOX_BATCH_SIZE must be greater than 0")
	}
	if c.Outbox.MaxRetryAttempts <= 0 {
		validationErrors = append(validationErrors, "OUTBOX_MAX_RETRY_ATTEMPTS must be greater than 0")
	}

	// Validate WorkerPool config
	if c.WorkerPool.Size <= 0 {
		validationErrors = append(validationErrors, "WORKER_POOL_SIZE must be greater than 0")
	}

	// Validate Accounts config
	if c.Accounts.InitialBalance.IsNegative() {
		validationErrors = append(validationErrors, "ACCOUNT_INITIAL_BALANCE must not be negative")
	}
	if c.Accounts.DefaultMaxAllowed <= 0 {
		validationErrors = append(validationErrors, "ACCOUNT_DEFAULT_MAX_ALLOWED must be greater than 0")
	}
	if c.Accounts.OperationTimeout <= 0 {
		validationErrors = append(validationErrors, "ACCOUNT_OPERATION_TIMEOUT must be greater than 0")
	}

	// Validate Idempotency config
	if c.Idempotency.KeyFormat != KeyFormatNumeric && c.Idempotency.KeyFormat != KeyFormatOpaque {
		validationErrors = append(validationErrors, "IDEMPOTENCY_KEY_FORMAT must be one of: numeric, opaque")
	}
	if c.Idempotency.LockShards <= 0 {
		validationErrors = append(validationErrors, "IDEMPOTENCY_LOCK_SHARDS must be greater than 0")
	}
	if c.Idempotency.KeyBlockSize <= 0 {
		validationErrors = append(validationErrors, "IDEMPOTENCY_KEY_BLOCK_SIZE must be greater than 0")
	}
	if c.Idempotency.Retention < 0 {
		validationErrors = append(validationErrors, "IDEMPOTENCY_RETENTION must not be negative")
	}
	if c.Idempotency.Retention > 0 && c.Idempotency.PurgeInterval <= 0 {
		validationErrors = append(validationErrors, "IDEMPOTENCY_PURGE_INTERVAL must be greater than 0 when retention is enabled")
	}

	// Validate Archive config
	if c.Archive.Path == "" {
		validationErrors = append(validationErrors, "ARCHIVE_PATH is required")
	}
	if c.Archive.OpenTimeout <= 0 {
		validationErrors = append(validationErrors, "ARCHIVE_OPEN_TIMEOUT must be greater than 0")
	}

	if len(validationErrors) > 0 {
		return errors.New(strings.Join(validationErrors, ", "))
	}

	return nil
}

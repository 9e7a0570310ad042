package config

import "time"

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Store     StoreConfig     `yaml:"store"`
	SQLite    SQLiteConfig    `yaml:"sqlite"`
	Database  DatabaseConfig  `yaml:"database"`
	Inventory InventoryConfig `yaml:"inventory"`
	Log       LogConfig       `yaml:"log"`
	CORS      CORSConfig      `yaml:"cors"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// Supported ledger store backends.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// StoreConfig selects the ledger store backend.
type StoreConfig struct {
	Backend string `yaml:"backend" env:"STORE_BACKEND" env-default:"sqlite"`
}

// SQLiteConfig holds embedded database settings.
type SQLiteConfig struct {
	Path string `yaml:"path" env:"SQLITE_PATH" env-default:"./stockroom.db"`
}

// DatabaseConfig holds PostgreSQL connection settings for the hosted backend.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"10"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"2"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// InventoryConfig holds inventory behavior settings.
type InventoryConfig struct {
	TransactionLogLimit int `yaml:"transaction_log_limit" env:"INVENTORY_TRANSACTION_LOG_LIMIT" env-default:"200"`
	ExportTxnLimit      int `yaml:"export_txn_limit"      env:"INVENTORY_EXPORT_TXN_LIMIT"      env-default:"1000"`
	SellStep            int `yaml:"sell_step"             env:"INVENTORY_SELL_STEP"             env-default:"1"`
	RestockStep         int `yaml:"restock_step"          env:"INVENTORY_RESTOCK_STEP"          env-default:"5"`
	SimulationEvents    int `yaml:"simulation_events"     env:"INVENTORY_SIMULATION_EVENTS"     env-default:"10"`
	SimulationMaxSale   int `yaml:"simulation_max_sale"   env:"INVENTORY_SIMULATION_MAX_SALE"   env-default:"3"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// CORSConfig holds CORS settings for the browser UI.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,DELETE,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Content-Type"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"false"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}

// Package database provides relational database configuration options.
package database

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"
)

// Driver identifies the database driver.
type Driver string

const (
	// DriverPostgres uses PostgreSQL as the backing store.
	DriverPostgres Driver = "postgres"
	// DriverSQLite uses an embedded SQLite database. Intended for local
	// development and tests.
	DriverSQLite Driver = "sqlite"
)

// Options defines configuration options for the relational database.
type Options struct {
	Driver                Driver        `json:"driver" mapstructure:"driver"`
	Host                  string        `json:"host" mapstructure:"host"`
	Port                  int           `json:"port" mapstructure:"port"`
	Username              string        `json:"username" mapstructure:"username"`
	Password              string        `json:"-" mapstructure:"password"`
	Database              string        `json:"database" mapstructure:"database"`
	SSLMode               string        `json:"ssl-mode" mapstructure:"ssl-mode"`
	Path                  string        `json:"path" mapstructure:"path"`
	MaxIdleConnections    int           `json:"max-idle-connections" mapstructure:"max-idle-connections"`
	MaxOpenConnections    int           `json:"max-open-connections" mapstructure:"max-open-connections"`
	MaxConnectionLifeTime time.Duration `json:"max-connection-life-time" mapstructure:"max-connection-life-time"`
	LogLevel              int           `json:"log-level" mapstructure:"log-level"`
}

// NewOptions creates a new Options object with default values.
func NewOptions() *Options {
	return &Options{
		Driver:                DriverPostgres,
		Host:                  "127.0.0.1",
		Port:                  5432,
		Username:              "postgres",
		Password:              "",
		Database:              "docqa",
		SSLMode:               "disable",
		Path:                  "docqa.db",
		MaxIdleConnections:    10,
		MaxOpenConnections:    100,
		MaxConnectionLifeTime: 10 * time.Second,
		LogLevel:              1, // Silent
	}
}

// DSN builds the driver-specific data source name.
func (o *Options) DSN() string {
	if o.Driver == DriverSQLite {
		return o.Path
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		o.Host, o.Port, o.Username, o.Password, o.Database, o.SSLMode)
}

// Validate checks if the options are valid.
func (o *Options) Validate() error {
	if o.Password == "" {
		o.Password = os.Getenv("DB_PASSWORD")
	}

	// 如果密码非空但环境变量为空，说明密码是通过 CLI 传递的
	if o.Password != "" && os.Getenv("DB_PASSWORD") == "" {
		fmt.Fprintf(os.Stderr, "WARNING: Passing database password via CLI is insecure. Use DB_PASSWORD environment variable instead.\n")
	}

	switch o.Driver {
	case DriverPostgres:
		if o.Database == "" {
			return fmt.Errorf("database.database cannot be empty")
		}
	case DriverSQLite:
		if o.Path == "" {
			return fmt.Errorf("database.path cannot be empty")
		}
	default:
		return fmt.Errorf("database.driver must be 'postgres' or 'sqlite', got %q", o.Driver)
	}
	return nil
}

// AddFlags adds flags for database options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar((*string)(&o.Driver), "database.driver", string(o.Driver), "Database driver (postgres, sqlite)")
	fs.StringVar(&o.Host, "database.host", o.Host, "Database host")
	fs.IntVar(&o.Port, "database.port", o.Port, "Database port")
	fs.StringVar(&o.Username, "database.username", o.Username, "Database username")
	fs.StringVar(&o.Password, "database.password", o.Password, "Database password (DEPRECATED: use DB_PASSWORD env var instead)")
	fs.StringVar(&o.Database, "database.database", o.Database, "Database name")
	fs.StringVar(&o.SSLMode, "database.ssl-mode", o.SSLMode, "PostgreSQL SSL mode")
	fs.StringVar(&o.Path, "database.path", o.Path, "SQLite database file path")
	fs.IntVar(&o.MaxIdleConnections, "database.max-idle-connections", o.MaxIdleConnections, "Database max idle connections")
	fs.IntVar(&o.MaxOpenConnections, "database.max-open-connections", o.MaxOpenConnections, "Database max open connections")
	fs.DurationVar(&o.MaxConnectionLifeTime, "database.max-connection-life-time", o.MaxConnectionLifeTime, "Database max connection life time")
	fs.IntVar(&o.LogLevel, "database.log-level", o.LogLevel, "GORM log level (1=Silent, 2=Error, 3=Warn, 4=Info)")
}

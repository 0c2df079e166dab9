// Package configpkg provides parsing functionality for environment variables.
package configpkg

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/go-petr/pet-ledger/pkg/currencypkg"
)

// Supported store backends.
const (
	BackendPostgres = "postgres"
	BackendDynamoDB = "dynamodb"
	BackendMemory   = "memory"
)

// Config stores all configuration of the application.
//
// The values are read by viper from a config file or environment variables.
type Config struct {
	Environment   string `mapstructure:"GO_ENV"`
	ServerAddress string `mapstructure:"SERVER_ADDRESS"`
	StoreBackend  string `mapstructure:"STORE_BACKEND"`

	DBDriver     string `mapstructure:"DB_DRIVER"`
	DBSource     string `mapstructure:"DB_SOURCE"`
	MigrationURL string `mapstructure:"MIGRATION_URL"`

	RedisAddress  string `mapstructure:"REDIS_ADDRESS"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	DynamoDBEndpoint       string `mapstructure:"DYNAMODB_ENDPOINT"`
	DynamoDBAccountsTable  string `mapstructure:"DYNAMODB_ACCOUNTS_TABLE"`
	DynamoDBTransfersTable string `mapstructure:"DYNAMODB_TRANSFERS_TABLE"`

	TokenType            string        `mapstructure:"TOKEN_TYPE"`
	TokenSymmetricKey    string        `mapstructure:"TOKEN_SYMMETRIC_KEY"`
	AccessTokenDuration  time.Duration `mapstructure:"ACCESS_TOKEN_DURATION"`
	RefreshTokenDuration time.Duration `mapstructure:"REFRESH_TOKEN_DURATION"`

	DefaultCurrency string        `mapstructure:"DEFAULT_CURRENCY"`
	StoreTimeout    time.Duration `mapstructure:"STORE_TIMEOUT"`
	LookupRetries   int           `mapstructure:"LOOKUP_RETRIES"`
	RetryBaseDelay  time.Duration `mapstructure:"RETRY_BASE_DELAY"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("GO_ENV", "production")
	v.SetDefault("SERVER_ADDRESS", "0.0.0.0:8080")
	v.SetDefault("STORE_BACKEND", BackendPostgres)
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_SOURCE", "")
	v.SetDefault("MIGRATION_URL", "")
	v.SetDefault("REDIS_ADDRESS", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("DYNAMODB_ENDPOINT", "")
	v.SetDefault("DYNAMODB_ACCOUNTS_TABLE", "accounts")
	v.SetDefault("DYNAMODB_TRANSFERS_TABLE", "transfers")
	v.SetDefault("TOKEN_TYPE", "paseto")
	v.SetDefault("TOKEN_SYMMETRIC_KEY", "")
	v.SetDefault("ACCESS_TOKEN_DURATION", 15*time.Minute)
	v.SetDefault("REFRESH_TOKEN_DURATION", 7*24*time.Hour)
	v.SetDefault("DEFAULT_CURRENCY", "NGN")
	v.SetDefault("STORE_TIMEOUT", 5*time.Second)
	v.SetDefault("LOOKUP_RETRIES", 3)
	v.SetDefault("RETRY_BASE_DELAY", 50*time.Millisecond)
}

// Load reads configuration from file or environment variables.
func Load(path string) (Config, error) {
	var c Config

	v := viper.New()

	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")

	setDefaults(v)
	v.AutomaticEnv()

	err := v.ReadInConfig()
	if err != nil {
		return c, err
	}

	err = v.Unmarshal(&c)
	if err != nil {
		return c, err
	}

	c.DefaultCurrency, err = currencypkg.Parse(c.DefaultCurrency)
	if err != nil {
		return c, fmt.Errorf("DEFAULT_CURRENCY: %w", err)
	}

	return c, nil
}

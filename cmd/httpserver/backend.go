package httpserver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/go-petr/pet-ledger/internal/accountrepo"
	"github.com/go-petr/pet-ledger/internal/accountservice"
	"github.com/go-petr/pet-ledger/internal/dynamorepo"
	"github.com/go-petr/pet-ledger/internal/memrepo"
	"github.com/go-petr/pet-ledger/internal/sessionrepo"
	"github.com/go-petr/pet-ledger/internal/sessionservice"
	"github.com/go-petr/pet-ledger/internal/transferrepo"
	"github.com/go-petr/pet-ledger/internal/transferservice"
	"github.com/go-petr/pet-ledger/internal/userrepo"
	"github.com/go-petr/pet-ledger/internal/userservice"
	"github.com/go-petr/pet-ledger/pkg/configpkg"
	"github.com/go-petr/pet-ledger/pkg/dbpkg"
)

// AccountStore is the account store used by both the account and the transfer services.
type AccountStore interface {
	accountservice.Repo
	transferservice.AccountRepo
}

// Backend holds the stores the server runs on.
type Backend struct {
	Users     userservice.Repo
	Accounts  AccountStore
	Transfers transferservice.Repo
	// Settler is nil when the store cannot settle a transfer in one transaction.
	Settler  transferservice.Settler
	Sessions sessionservice.Repo
	// DB is the Postgres connection, if one was opened.
	DB *sql.DB

	closers []func() error
	pingers []func(context.Context) error
}

// Ping checks every connection opened for the backend. The memory backend is always reachable.
func (b *Backend) Ping(ctx context.Context) error {
	var errs []error

	for _, p := range b.pingers {
		if err := p(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Close releases the connections opened by OpenBackend.
func (b *Backend) Close() error {
	var errs []error

	for _, c := range b.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// MemoryBackend returns a backend that keeps everything in process memory.
func MemoryBackend() *Backend {
	store := memrepo.New()

	return &Backend{
		Users:     store.Users(),
		Accounts:  store,
		Transfers: store.Transfers(),
		Settler:   store.Transfers(),
		Sessions:  store.Sessions(),
	}
}

// PostgresBackend returns a backend that keeps users, accounts and transfers in Postgres.
// Refresh tokens are kept in memory.
func PostgresBackend(db *sql.DB) *Backend {
	b := MemoryBackend()
	transfers := transferrepo.NewRepoPGS(db)

	b.Users = userrepo.NewRepoPGS(db)
	b.Accounts = accountrepo.NewRepoPGS(db)
	b.Transfers = transfers
	b.Settler = transfers
	b.DB = db
	b.pingers = append(b.pingers, db.PingContext)

	return b
}

// OpenBackend connects to the stores selected by config.StoreBackend.
//
// DynamoDB holds accounts and transfers only, users stay in Postgres when
// DB_SOURCE is set. Refresh tokens go to Redis when REDIS_ADDRESS is set.
func OpenBackend(ctx context.Context, config configpkg.Config) (*Backend, error) {
	b := MemoryBackend()

	openDB := func() (*sql.DB, error) {
		db, err := dbpkg.Setup(config.DBDriver, config.DBSource)
		if err != nil {
			return nil, fmt.Errorf("cannot connect to database: %w", err)
		}

		return db, nil
	}

	switch config.StoreBackend {
	case configpkg.BackendPostgres:
		db, err := openDB()
		if err != nil {
			return nil, err
		}

		b = PostgresBackend(db)
		b.closers = append(b.closers, db.Close)
	case configpkg.BackendDynamoDB:
		client, err := dynamorepo.NewClient(ctx, config.DynamoDBEndpoint)
		if err != nil {
			return nil, fmt.Errorf("cannot create dynamodb client: %w", err)
		}

		store := dynamorepo.New(client, config.DynamoDBAccountsTable, config.DynamoDBTransfersTable)

		b.Accounts = store
		b.Transfers = store.Transfers()
		b.Settler = nil
		b.pingers = append(b.pingers, store.Ping)

		if config.DBSource != "" {
			db, err := openDB()
			if err != nil {
				return nil, err
			}

			b.Users = userrepo.NewRepoPGS(db)
			b.DB = db
			b.closers = append(b.closers, db.Close)
			b.pingers = append(b.pingers, db.PingContext)
		}
	case configpkg.BackendMemory:
	default:
		return nil, fmt.Errorf("unknown store backend %q", config.StoreBackend)
	}

	if config.RedisAddress != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     config.RedisAddress,
			Password: config.RedisPassword,
			DB:       config.RedisDB,
		})

		if err := client.Ping(ctx).Err(); err != nil {
			_ = b.Close()
			_ = client.Close()

			return nil, fmt.Errorf("cannot connect to redis: %w", err)
		}

		b.Sessions = sessionrepo.NewRepoRedis(client)
		b.closers = append(b.closers, client.Close)
		b.pingers = append(b.pingers, func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
	}

	return b, nil
}

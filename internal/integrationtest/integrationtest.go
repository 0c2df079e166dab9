// Package integrationtest provides Postgres helpers used in integration tests.
package integrationtest

import (
	"database/sql"
	"path/filepath"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-ledger/cmd/httpserver"
	"github.com/go-petr/pet-ledger/internal/middleware"
	"github.com/go-petr/pet-ledger/pkg/configpkg"
	"github.com/go-petr/pet-ledger/pkg/dbpkg"
)

// ledgerTables are truncated between tests, children last.
const ledgerTables = "transfers, accounts, users"

var migrateOnce sync.Once

// Migrate applies the schema found under configPath once per test binary.
func Migrate(t *testing.T, configPath, source string) {
	t.Helper()

	var err error

	migrateOnce.Do(func() {
		dir, absErr := filepath.Abs(filepath.Join(configPath, "db", "migration"))
		if absErr != nil {
			err = absErr
			return
		}

		err = dbpkg.Migrate("file://"+dir, source)
	})

	if err != nil {
		t.Fatalf("db migration failed: %v", err)
	}
}

// SetupServer returns a Postgres backed test server. The database is migrated
// before the test and truncated after it. configPath is relative to the test package.
func SetupServer(t *testing.T, configPath string) *httpserver.Server {
	t.Helper()

	config, err := configpkg.Load(configPath)
	if err != nil {
		t.Fatalf(`configpkg.Load(%q) returned error: %v`, configPath, err)
	}

	config.StoreBackend = configpkg.BackendPostgres

	zerolog.SetGlobalLevel(zerolog.FatalLevel)
	gin.SetMode(gin.ReleaseMode)

	Migrate(t, configPath, config.DBSource)

	db := SetupDB(t, config.DBDriver, config.DBSource)

	server, err := httpserver.New(httpserver.PostgresBackend(db), middleware.CreateLogger(config), config)
	if err != nil {
		t.Fatalf(`httpserver.New(backend, logger, config) returned error: %v`, err)
	}

	return server
}

// Flush removes all ledger rows keeping the schema.
func Flush(t *testing.T, db *sql.DB) {
	t.Helper()

	if _, err := db.Exec(`TRUNCATE TABLE ` + ledgerTables + ` CASCADE`); err != nil {
		t.Fatalf("db cleanup failed. err: %v", err)
	}
}

// SetupDB connects to the database and flushes it once the test is done.
func SetupDB(t *testing.T, driver, source string) *sql.DB {
	t.Helper()

	db, err := dbpkg.Setup(driver, source)
	if err != nil {
		t.Fatalf("db initialization failed. err: %v", err)
	}

	t.Cleanup(func() {
		Flush(t, db)

		if err := db.Close(); err != nil {
			t.Errorf("db.Close() failed: %v", err)
		}
	})

	return db
}

// SetupTX opens a transaction that is rolled back once the test is done,
// so the test leaves no rows behind.
func SetupTX(t *testing.T, driver, source string) *sql.Tx {
	t.Helper()

	db, err := dbpkg.Setup(driver, source)
	if err != nil {
		t.Fatalf("db initialization failed. err: %v", err)
	}

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("db.Begin() failed: %v", err)
	}

	t.Cleanup(func() {
		if err := tx.Rollback(); err != nil {
			t.Errorf("tx.Rollback() failed: %v", err)
		}

		if err := db.Close(); err != nil {
			t.Errorf("db.Close() failed: %v", err)
		}
	})

	return tx
}

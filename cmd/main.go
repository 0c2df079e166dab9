// Package main starts the ledger API to manage users, accounts and money transfers.
package main

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/go-petr/pet-ledger/cmd/httpserver"
	"github.com/go-petr/pet-ledger/internal/middleware"
	"github.com/go-petr/pet-ledger/pkg/configpkg"
	"github.com/go-petr/pet-ledger/pkg/dbpkg"

	_ "github.com/lib/pq"
)

func main() {
	config, err := configpkg.Load("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	logger := middleware.CreateLogger(config)

	if config.MigrationURL != "" && config.DBSource != "" {
		if err := dbpkg.Migrate(config.MigrationURL, config.DBSource); err != nil {
			logger.Fatal().Err(err).Msg("cannot run db migrations")
		}

		logger.Info().Str("url", config.MigrationURL).Msg("db migrated")
	}

	backend, err := httpserver.OpenBackend(context.Background(), config)
	if err != nil {
		logger.Fatal().Err(err).Str("backend", config.StoreBackend).Msg("cannot open store backend")
	}
	defer backend.Close()

	server, err := httpserver.New(backend, logger, config)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot create server")
	}

	logger.Info().Str("backend", config.StoreBackend).Msg("LEDGER API SERVER HAS STARTED")

	err = server.Engine.Run(config.ServerAddress)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot start server")
	}
}

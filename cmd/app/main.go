// @title           Todo API
// @version         1.0
// @description     CRUD service for todo items with soft delete.
// @BasePath        /
package main

import (
	"todoapi/config"
	"todoapi/di"
	_ "todoapi/docs"
	"todoapi/helper"
	"todoapi/shared/logger"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg := config.Get()

	logger.InitLogger(cfg)

	logger.SetLogLevel(cfg)

	if cfg.DB.Postgres.AutoMigrate {
		if err := helper.Up(cfg); err != nil {
			log.Fatal().Err(err).Msg("Failed to run database migrations")
		}
	}

	http := di.InitializeService()
	http.Serve()
}

package helper

//nolint:revive
import (
	"errors"
	"fmt"
	"net/url"

	"todoapi/config"
	"todoapi/infras/postgres"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog/log"
)

const (
	ActionUp     = "up"
	ActionDown   = "down"
	ActionStepUp = "step-up"
	ActionDrop   = "drop"
)

var ErrInvalidAction = errors.New("invalid migration direction, use 'up', 'down', 'drop' or 'step-up'")

// migrations maps every action to the migrate call it runs and the message logged on success.
var migrations = map[string]struct {
	run     func(mig *migrate.Migrate) error
	message string
}{
	ActionUp:     {run: (*migrate.Migrate).Up, message: "Database migrations completed successfully"},
	ActionDown:   {run: func(mig *migrate.Migrate) error { return mig.Steps(-1) }, message: "Database migrations rolled back successfully"},
	ActionStepUp: {run: func(mig *migrate.Migrate) error { return mig.Steps(1) }, message: "Database migrations completed successfully"},
	ActionDrop:   {run: (*migrate.Migrate).Down, message: "Database migrations rolled back successfully"},
}

// DatabaseURL returns the primary database URL with the migration table set.
func DatabaseURL(config *config.Config) string {
	write := config.DB.Postgres.Write

	dsn, err := url.Parse(postgres.DSN(
		write.Username,
		write.Password,
		write.Host,
		write.Port,
		config.DB.Postgres.Prefix+write.Name,
		write.SSLMode,
		"",
	))
	if err != nil {
		return ""
	}

	query := dsn.Query()
	if config.DB.Postgres.MigrationTable != "" {
		query.Set("x-migrations-table", config.DB.Postgres.MigrationTable)
	}

	dsn.RawQuery = query.Encode()

	return dsn.String()
}

func getConnection(config *config.Config) (*migrate.Migrate, error) {
	mig, err := migrate.New(config.DB.Postgres.MigrationPath, DatabaseURL(config))
	if err != nil {
		return nil, fmt.Errorf("error creating migrate instance: %w", err)
	}

	return mig, nil
}

func Runner(config *config.Config, action string) error {
	migration, ok := migrations[action]
	if !ok {
		return ErrInvalidAction
	}

	mig, err := getConnection(config)
	if err != nil {
		return err
	}

	defer mig.Close()

	if err := migration.run(mig); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("error running %s migration: %w", action, err)
	}

	log.Info().Str("action", action).Msg(migration.message)

	return nil
}

func Up(config *config.Config) error {
	return Runner(config, ActionUp)
}

func StepUp(config *config.Config) error {
	return Runner(config, ActionStepUp)
}

func Down(config *config.Config) error {
	return Runner(config, ActionDown)
}

func Drop(config *config.Config) error {
	return Runner(config, ActionDrop)
}

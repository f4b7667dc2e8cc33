package migrate

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/mlutzke/raceday/log"
	"github.com/mlutzke/raceday/pkg/config"
	"github.com/mlutzke/raceday/pkg/db/migrate"
	"github.com/mlutzke/raceday/pkg/utils"
)

func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "performs database migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return startMigration()
		},
	}
	return cmd
}

func startMigration() error {
	// wait for database
	timeout, err := time.ParseDuration(config.WaitForServices)
	if err != nil {
		log.Warn("Invalid duration value. Setting default 60s", log.ErrorField(err))
		timeout = 60 * time.Second
	}
	postgresAddr := utils.ExtractFromDBURL(config.DB)
	if err = utils.WaitForTCP(postgresAddr, timeout); err != nil {
		log.Fatal("database not ready", log.ErrorField(err))
	}

	log.Info("Running migrations")
	if err := migrate.MigrateDb(config.DB); err != nil {
		log.Fatal("Could not migrate database", log.ErrorField(err))
	}
	log.Info("Migrations done")
	return nil
}

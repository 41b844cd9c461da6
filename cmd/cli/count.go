package cli

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/acolella/linkshort/cmd"
	"github.com/acolella/linkshort/internal/config"
	"github.com/acolella/linkshort/internal/repository"
)

// CountCmd prints the total number of registered links.
var CountCmd = &cobra.Command{
	Use:   "count",
	Short: "Show the total number of registered links",
	Run: func(cobraCmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load configuration")
		}

		db, err := gorm.Open(sqlite.Open(cfg.Database.Name), &gorm.Config{})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		sqlDB, err := db.DB()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to get underlying SQL database")
		}
		defer sqlDB.Close()

		count, err := repository.NewLinkRepository(db).CountLinks()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to count links")
		}
		fmt.Printf("Registered links: %d\n", count)
	},
}

func init() {
	cmd.RootCmd.AddCommand(CountCmd)
}

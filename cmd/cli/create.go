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
	"github.com/acolella/linkshort/internal/services"
	"github.com/acolella/linkshort/internal/slug"
)

var (
	destinationFlag string
	slugFlag        string
)

// CreateCmd shortens one URL from the command line.
var CreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a short link for a destination URL",
	Long: `Shortens the given destination URL and prints the allocated slug.

Example:
  linkshort create --url="https://www.example.com/some/long/path"
  linkshort create --url="example.com" --slug="promo"`,
	Run: func(cobraCmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load configuration")
		}

		db, err := gorm.Open(sqlite.Open(cfg.Database.Name), &gorm.Config{TranslateError: true})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		sqlDB, err := db.DB()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to get underlying SQL database")
		}
		defer sqlDB.Close()

		linkRepo := repository.NewLinkRepository(db)
		generator := slug.NewGenerator(cfg.Slug.AutoMinLength, cfg.Slug.AutoMaxLength)
		linkService := services.NewLinkService(linkRepo, generator, nil, cfg.Slug.MinLength, cfg.Slug.MaxLength)

		link, err := linkService.CreateLink(destinationFlag, slugFlag)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create short link")
		}

		fmt.Printf("Short link created:\n")
		fmt.Printf("Slug: %s\n", link.Slug)
		fmt.Printf("Destination: %s\n", link.Destination)
		fmt.Printf("Link: %s/%s\n", cfg.Server.BaseURL, link.Slug)
	},
}

func init() {
	CreateCmd.Flags().StringVar(&destinationFlag, "url", "", "The destination URL to shorten")
	CreateCmd.Flags().StringVar(&slugFlag, "slug", "", "Optional custom slug (a-z0-9)")
	CreateCmd.MarkFlagRequired("url")

	cmd.RootCmd.AddCommand(CreateCmd)
}

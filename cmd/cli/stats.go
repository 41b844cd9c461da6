package cli

import (
	"fmt"
	"os"
	"sort"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/acolella/linkshort/cmd"
	"github.com/acolella/linkshort/internal/config"
	"github.com/acolella/linkshort/internal/repository"
	"github.com/acolella/linkshort/internal/services"
)

// StatsCmd prints the click statistics for one slug.
var StatsCmd = &cobra.Command{
	Use:   "stats [slug]",
	Short: "Show click statistics for a slug",
	Long:  `Prints views plus browser, OS, country and referrer breakdowns.`,
	Args:  cobra.ExactArgs(1),
	Run:   runStats,
}

func init() {
	cmd.RootCmd.AddCommand(StatsCmd)
}

func runStats(cobraCmd *cobra.Command, args []string) {
	theSlug := args[0]

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
	clickRepo := repository.NewClickRepository(db)
	statsService := services.NewStatsService(linkRepo, clickRepo)

	link, totalClicks, err := statsService.GetLinkStats(theSlug)
	if err != nil {
		fmt.Printf("Error retrieving statistics: %v\n", err)
		os.Exit(1)
	}
	stats, err := statsService.Aggregate(theSlug)
	if err != nil {
		fmt.Printf("Error aggregating clicks: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Statistics for slug: %s\n", link.Slug)
	fmt.Printf("Destination: %s\n", link.Destination)
	fmt.Printf("Views: %d\n", link.Views)
	fmt.Printf("Recorded clicks: %d\n", totalClicks)
	fmt.Printf("Created: %s\n", link.CreatedAt.Format("2006-01-02 15:04:05"))

	printBreakdown("Browsers", stats.Browsers)
	printBreakdown("Operating systems", stats.OperatingSystems)
	printBreakdown("Countries", stats.Countries)
	printBreakdown("Referrers", stats.Referrers)
}

func printBreakdown(title string, counts map[string]int) {
	fmt.Printf("\n%s:\n", title)
	if len(counts) == 0 {
		fmt.Println("  (no data)")
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("  %-30s %d\n", k, counts[k])
	}
}

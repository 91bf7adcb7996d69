package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"apartment-tracker-backend/internal/model"
	"apartment-tracker-backend/internal/scraper"
	"apartment-tracker-backend/internal/store"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Run a single scrape cycle and exit",
	Long: `Scrapes every enabled source once, reconciles the result with the database
and records a scrape log. Exits non-zero when every source failed.

Price alerts are not sent from this command.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, appStore, err := setup()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		result := scraper.NewService(cfg, appStore, nil, logger.Named("scraper")).ScrapeOnce(ctx)
		fmt.Fprintf(cmd.OutOrStdout(), "run %s: %s, %d units (%d new, %d price changes, %d marked stale)\n",
			result.RunID, result.Status, result.UnitsFound, result.NewUnits, result.PriceChanges, result.MarkedStale)
		for _, e := range result.Errors {
			fmt.Fprintf(cmd.OutOrStdout(), "  error: %s\n", e)
		}

		if result.Status == model.ScrapeStatusFailed {
			return errors.New("scrape failed")
		}
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file.json>",
	Short: "Import hand-collected units from a JSON file",
	Long: `Reads either {"units": [...]} or a bare array of units and reconciles them
exactly like the import endpoint does.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		units, err := readImportFile(args[0])
		if err != nil {
			return err
		}
		if len(units) == 0 {
			return fmt.Errorf("%s: no units", args[0])
		}

		_, _, appStore, err := setup()
		if err != nil {
			return err
		}

		results := appStore.ImportUnits(cmd.Context(), time.Now().UTC(), units)
		logger.Info("import complete",
			zap.Int("received", results.Received),
			zap.Int("apartments_upserted", results.ApartmentsUpserted),
			zap.Int("floor_plans_created", results.FloorPlansCreated),
			zap.Int("price_points_added", results.PricePointsAdded))

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return err
		}
		if len(results.Errors) > 0 {
			return fmt.Errorf("%d units failed: %s", len(results.Errors), strings.Join(results.Errors, "; "))
		}
		return nil
	},
}

func readImportFile(path string) ([]store.ImportUnit, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var body struct {
		Units []store.ImportUnit `json:"units"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		return body.Units, nil
	}

	var units []store.ImportUnit
	if err := json.Unmarshal(raw, &units); err != nil {
		return nil, fmt.Errorf("%s: expected {\"units\": [...]} or an array of units: %w", path, err)
	}
	return units, nil
}

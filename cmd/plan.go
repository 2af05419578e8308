package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pverdier/tripsched/app"
	"github.com/pverdier/tripsched/config"
	"github.com/pverdier/tripsched/core/calendar"
	"github.com/pverdier/tripsched/core/model"
	"github.com/pverdier/tripsched/core/planner"
	"github.com/pverdier/tripsched/core/search"
	"github.com/pverdier/tripsched/infra/logger"
	"github.com/pverdier/tripsched/internal/eventbus"
	"github.com/pverdier/tripsched/pkg/export"
)

var planFlags struct {
	origin      string
	destination string
	nights      int
	budget      float64
	currency    string
	maxPTO      int
	months      int
	cabin       string
	minRating   float64
	blackout    []string
	top         int
	format      string
	dryRun      bool
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Rank trip options for a request",
	RunE:  runPlan,
}

func init() {
	planCmd.Flags().StringVar(&planFlags.origin, "origin", "", "departure location code")
	planCmd.Flags().StringVar(&planFlags.destination, "destination", "", "target location code")
	planCmd.Flags().IntVar(&planFlags.nights, "nights", 4, "stay length in nights")
	planCmd.Flags().Float64Var(&planFlags.budget, "budget", 0, "total budget ceiling")
	planCmd.Flags().StringVar(&planFlags.currency, "currency", "EUR", "budget currency")
	planCmd.Flags().IntVar(&planFlags.maxPTO, "pto", 5, "maximum weekdays off")
	planCmd.Flags().IntVar(&planFlags.months, "months", 3, "search horizon in months")
	planCmd.Flags().StringVar(&planFlags.cabin, "cabin", "", "preferred cabin class")
	planCmd.Flags().Float64Var(&planFlags.minRating, "min-rating", 0, "minimum lodging rating")
	planCmd.Flags().StringSliceVar(&planFlags.blackout, "blackout", nil, "dates (YYYY-MM-DD) excluded from all windows")
	planCmd.Flags().IntVar(&planFlags.top, "top", 5, "number of options to print")
	planCmd.Flags().StringVar(&planFlags.format, "format", "table", "output format: table, json or csv")
	planCmd.Flags().BoolVar(&planFlags.dryRun, "dry-run", false, "use built-in fake providers instead of live ones")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	req, err := buildRequest()
	if err != nil {
		return err
	}

	p, bus, closer, err := buildPlanner(ctx)
	if err != nil {
		return err
	}
	defer closer()

	stopProgress := watchProgress(bus, os.Stderr)
	res, err := p.Plan(ctx, req)
	stopProgress()
	if err != nil {
		return err
	}
	if !res.Feasible() {
		fmt.Printf("run %s: no feasible plan (%d windows generated, %d available, %d bundles over budget)\n",
			res.RunID, res.Generated, len(res.Available), res.Stats.Discarded)
		return nil
	}

	n := planFlags.top
	if n > len(res.Ranked) {
		n = len(res.Ranked)
	}
	top := res.Ranked[:n]
	switch planFlags.format {
	case "json":
		return export.WriteJSON(os.Stdout, top)
	case "csv":
		return export.WriteCSV(os.Stdout, top)
	case "table":
		fmt.Printf("run %s: %d options (mean score %.3f)\n", res.RunID, len(res.Ranked), res.Stats.Mean)
		for i, rb := range top {
			b := rb.Bundle
			fmt.Printf("%2d. %-28s flight %-10s lodging %-14s total %-12s pto %d  score %.3f\n",
				i+1, b.Window, b.Flight.ProviderRef, b.Lodging.ProviderRef, b.TotalCost(), b.PTO, rb.Score)
		}
		return nil
	default:
		return fmt.Errorf("unknown format %q", planFlags.format)
	}
}

func buildRequest() (model.TripRequest, error) {
	req := model.TripRequest{
		Origin:      planFlags.origin,
		Destination: planFlags.destination,
		Nights:      planFlags.nights,
		Budget:      model.Money{Amount: planFlags.budget, Currency: planFlags.currency},
		MaxPTODays:  planFlags.maxPTO,
		MonthsAhead: planFlags.months,
		Today:       time.Now(),
		Cabin:       planFlags.cabin,
		MinRating:   planFlags.minRating,
	}
	for _, s := range planFlags.blackout {
		d, err := time.Parse("2006-01-02", s)
		if err != nil {
			return model.TripRequest{}, fmt.Errorf("blackout date %q: %w", s, err)
		}
		req.Blackout = append(req.Blackout, d)
	}
	return req, nil
}

// buildPlanner returns either a planner wired from the configuration or, in
// dry-run mode, one backed by fake providers so the pipeline can be exercised
// without credentials. The bus carries the run's stage events for the
// progress printer.
func buildPlanner(ctx context.Context) (*planner.Planner, eventbus.EventBus, func(), error) {
	if planFlags.dryRun {
		bus := eventbus.New()
		p, err := dryRunPlanner(bus)
		return p, bus, bus.Close, err
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}
	svc, err := app.New(ctx, cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	closer := func() {
		if err := svc.Close(); err != nil {
			logger.New("plan-command").Errorf("service close: %v", err)
		}
	}
	return svc.Planner, svc.Bus, closer, nil
}

func dryRunPlanner(bus eventbus.EventBus) (*planner.Planner, error) {
	cur := planFlags.currency
	flights := &search.StaticFlights{Offers: []model.FlightOffer{
		{ProviderRef: "FAKE-FL-1", Price: model.Money{Amount: 180, Currency: cur}, Origin: planFlags.origin, Destination: planFlags.destination},
		{ProviderRef: "FAKE-FL-2", Price: model.Money{Amount: 260, Currency: cur}, Origin: planFlags.origin, Destination: planFlags.destination, Cabin: "premium"},
	}}
	lodging := &search.StaticLodging{Offers: []model.LodgingOffer{
		{ProviderRef: "FAKE-HO-1", Property: "Sample Hotel", Price: model.Money{Amount: 90, Currency: cur}, Rating: 4.2},
	}}
	return planner.New(&calendar.FakePort{}, flights, lodging, planner.Config{}, logger.New("dry-run"),
		planner.WithBus(bus))
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pverdier/tripsched/core/planner"
)

var bookOption int

var bookCmd = &cobra.Command{
	Use:   "book",
	Short: "Plan a trip and commit one of the ranked options",
	RunE:  runBook,
}

func init() {
	bookCmd.Flags().AddFlagSet(planCmd.Flags())
	bookCmd.Flags().IntVar(&bookOption, "option", 1, "rank of the option to book (1 is best)")
	rootCmd.AddCommand(bookCmd)
}

func runBook(cmd *cobra.Command, args []string) error {
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
	defer stopProgress()
	res, err := p.Plan(ctx, req)
	if err != nil {
		return err
	}
	if !res.Feasible() {
		return fmt.Errorf("no feasible plan for %s", req.Destination)
	}
	if bookOption < 1 || bookOption > len(res.Ranked) {
		return fmt.Errorf("option %d out of range, %d available", bookOption, len(res.Ranked))
	}

	chosen := res.Ranked[bookOption-1].Bundle
	r, err := p.Book(ctx, res.RunID, chosen)
	if err != nil {
		if errors.Is(err, planner.ErrBookingConflict) {
			return fmt.Errorf("window %s no longer free, re-run plan: %w", chosen.Window, err)
		}
		return err
	}
	fmt.Printf("booked %s for %s, reservation %s\n", chosen.Window, chosen.TotalCost(), r.ProviderRef)
	return nil
}

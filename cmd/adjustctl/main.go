package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/tutoring-scheduler/internal/models"
	"github.com/noah-isme/tutoring-scheduler/internal/rosterfile"
	"github.com/noah-isme/tutoring-scheduler/internal/service"
	"github.com/noah-isme/tutoring-scheduler/pkg/config"
)

// App holds what every command needs once flags are parsed.
type App struct {
	roster  *models.Roster
	matcher *service.MatchingService
	cfg     config.SchedulerConfig
	logger  *zap.Logger
}

type rootOptions struct {
	rosterPath string
	verbose    bool
	json       bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	app := &App{}

	rootCmd := &cobra.Command{
		Use:           "adjustctl",
		Short:         "Run tutoring matching passes over a roster file",
		Long:          "adjustctl matches students to teachers, rooms and time windows offline and explains every conflict.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.init(opts)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app.logger != nil {
				_ = app.logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.rosterPath, "roster", "r", "roster.yaml", "Roster YAML file")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log matching internals to stderr")
	rootCmd.PersistentFlags().BoolVar(&opts.json, "json", false, "Print JSON instead of tables")

	rootCmd.AddCommand(matchCmd(app, opts))
	rootCmd.AddCommand(suggestCmd(app, opts))
	rootCmd.AddCommand(reportCmd(app))
	return rootCmd
}

func (a *App) init(opts *rootOptions) error {
	var err error
	if opts.verbose {
		a.logger, err = zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("failed to init logger: %w", err)
		}
	} else {
		a.logger = zap.NewNop()
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	a.cfg = cfg.Scheduler

	a.roster, err = rosterfile.Load(opts.rosterPath)
	if err != nil {
		return err
	}

	a.matcher = service.NewMatchingService(service.MatchingConfig{
		MinCapacity: a.cfg.MinCapacity,
		Weights: service.ScoringWeights{
			Earliness:  a.cfg.EarlinessWeight,
			Weekday:    a.cfg.WeekdayBonus,
			Lunch:      a.cfg.LunchPenalty,
			Congestion: a.cfg.CongestionPenalty,
		},
	}, nil, a.logger)
	return nil
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"

	"Halcon/internal/di"
	"Halcon/internal/domain/models"
	"Halcon/internal/handler/api"
	"Halcon/internal/usecase"
	"Halcon/pkg/config"
	"Halcon/pkg/server"
)

var (
	configPath string
	colorOut   bool

	symbolsFlag  string
	topFlag      int
	refreshFlag  bool
	daysFlag     int
	pathsFlag    int
	horizonFlag  int
	seedFlag     int64
	priceFlag    float64
	volFlag      float64
	discountFlag float64
	growthFlag   float64
	divGrowFlag  float64
	exitMultFlag float64

	rootCmd = &cobra.Command{
		Use:          "halcon",
		Short:        "Financial radar: mean-reversion screens, valuations and price bands",
		SilenceUsage: true,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API until interrupted",
		RunE:  runServe,
	}

	screenCmd = &cobra.Command{
		Use:   "screen",
		Short: "Rank instruments by composite mean-reversion score",
		RunE:  runScreen,
	}

	valueCmd = &cobra.Command{
		Use:   "value SYMBOL",
		Short: "Run the valuation models for one company",
		Args:  cobra.ExactArgs(1),
		RunE:  runValue,
	}

	simulateCmd = &cobra.Command{
		Use:   "simulate [SYMBOL]",
		Short: "Project a p10/p50/p90 price band",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulate,
	}

	backfillCmd = &cobra.Command{
		Use:   "backfill",
		Short: "Archive live bars into ClickHouse",
		RunE:  runBackfill,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config/config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVar(&colorOut, "color", false, "colorize JSON output")

	screenCmd.Flags().StringVarP(&symbolsFlag, "symbols", "s", "", "comma separated symbols (default: screener.symbols)")
	screenCmd.Flags().IntVarP(&topFlag, "top", "n", 0, "keep only the top N results")
	screenCmd.Flags().BoolVar(&refreshFlag, "refresh", false, "clear memoized data first")

	valueCmd.Flags().Float64Var(&discountFlag, "discount-rate", 0, "override valuation.discount_rate")
	valueCmd.Flags().Float64Var(&growthFlag, "growth-rate", 0, "override valuation.growth_rate")
	valueCmd.Flags().Float64Var(&divGrowFlag, "dividend-growth-rate", 0, "override valuation.dividend_growth_rate")
	valueCmd.Flags().Float64Var(&exitMultFlag, "exit-multiple", 0, "override valuation.exit_multiple")

	simulateCmd.Flags().IntVar(&pathsFlag, "paths", 0, "number of paths (default: simulation.paths)")
	simulateCmd.Flags().IntVar(&horizonFlag, "horizon", 0, "steps to project (default: simulation.horizon)")
	simulateCmd.Flags().Int64Var(&seedFlag, "seed", 0, "random seed (0 = configured)")
	simulateCmd.Flags().Float64Var(&priceFlag, "price", 0, "start price override")
	simulateCmd.Flags().Float64Var(&volFlag, "volatility", 0, "per-step volatility override")

	backfillCmd.Flags().StringVarP(&symbolsFlag, "symbols", "s", "", "comma separated symbols (default: screener.symbols)")
	backfillCmd.Flags().IntVar(&daysFlag, "days", 0, "lookback in days (default: provider.lookback_days)")

	rootCmd.AddCommand(serveCmd, screenCmd, valueCmd, simulateCmd, backfillCmd)
}

func loadConfig(quiet bool) (*config.Config, error) {
	cfg, err := config.LoadWithEnv(configPath)
	if err != nil {
		return nil, fmt.Errorf("config load failed: %w", err)
	}
	// keep stdout clean for the JSON result
	if quiet && (cfg.Logger.Output == "" || cfg.Logger.Output == "stdout") {
		cfg.Logger.Output = "stderr"
	}
	return cfg, nil
}

// withApp wires the application for a one-shot command and closes it after.
func withApp(fn func(ctx context.Context, app *server.App) error) error {
	cfg, err := loadConfig(true)
	if err != nil {
		return err
	}
	app, err := di.InitializeApp(cfg)
	if err != nil {
		return fmt.Errorf("app initialization failed: %w", err)
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return fn(ctx, app)
}

func printJSON(v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	b = pretty.Pretty(b)
	if colorOut {
		b = pretty.Color(b, nil)
	}
	_, err = os.Stdout.Write(b)
	return err
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig(false)
	if err != nil {
		return err
	}
	app, err := di.InitializeApp(cfg)
	if err != nil {
		return fmt.Errorf("app initialization failed: %w", err)
	}
	return app.Run()
}

func runScreen(_ *cobra.Command, _ []string) error {
	return withApp(func(ctx context.Context, app *server.App) error {
		if refreshFlag {
			if err := app.Data().Clear(ctx); err != nil {
				return err
			}
		}
		screen, err := app.Screener().Screen(ctx, models.SplitSymbols(symbolsFlag))
		if err != nil {
			return err
		}
		return printJSON(api.PresentScreen(screen, topFlag))
	})
}

func runValue(cmd *cobra.Command, args []string) error {
	return withApp(func(ctx context.Context, app *server.App) error {
		a := app.Valuator().Defaults()
		flags := cmd.Flags()
		if flags.Changed("discount-rate") {
			a.DiscountRate = discountFlag
		}
		if flags.Changed("growth-rate") {
			a.GrowthRate = growthFlag
		}
		if flags.Changed("dividend-growth-rate") {
			a.DividendGrowthRate = divGrowFlag
		}
		if flags.Changed("exit-multiple") {
			a.ExitMultiple = exitMultFlag
		}
		v, err := app.Valuator().Value(ctx, args[0], a)
		if err != nil {
			return err
		}
		return printJSON(api.PresentValuation(v))
	})
}

func runSimulate(cmd *cobra.Command, args []string) error {
	return withApp(func(ctx context.Context, app *server.App) error {
		flags := cmd.Flags()
		symbol := ""
		if len(args) == 1 {
			symbol = args[0]
		} else if !flags.Changed("price") || !flags.Changed("volatility") {
			return fmt.Errorf("--price and --volatility are required without a symbol")
		}

		o := usecase.SimOptions{Paths: pathsFlag, Horizon: horizonFlag, Seed: seedFlag}
		if flags.Changed("price") {
			o.Price = &priceFlag
		}
		if flags.Changed("volatility") {
			o.Volatility = &volFlag
		}
		// with both overrides set no series is fetched
		band, err := app.Simulator().Simulate(ctx, symbol, o)
		if err != nil {
			return err
		}
		return printJSON(api.PresentSimulation(band))
	})
}

func runBackfill(_ *cobra.Command, _ []string) error {
	return withApp(func(ctx context.Context, app *server.App) error {
		b := app.Backfiller()
		if b == nil {
			return fmt.Errorf("backfill needs clickhouse.host")
		}
		cfg := app.Config()
		symbols := models.SplitSymbols(symbolsFlag)
		if len(symbols) == 0 {
			symbols = cfg.Screener.Symbols
		}
		days := cfg.Provider.LookbackDays
		if daysFlag > 0 {
			days = daysFlag
		}
		results, err := b.Run(ctx, symbols, days, cfg.Provider.Interval)
		if err != nil {
			return err
		}
		return printJSON(results)
	})
}

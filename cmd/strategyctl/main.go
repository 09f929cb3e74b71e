package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/wyfcoding/optionstrategy/internal/strategy/application"
	"github.com/wyfcoding/optionstrategy/internal/strategy/infrastructure/marketdata"
	"github.com/wyfcoding/optionstrategy/internal/strategy/infrastructure/pricing"
	"github.com/wyfcoding/optionstrategy/pkg/config"
	"github.com/wyfcoding/optionstrategy/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:           "strategyctl",
	Short:         "Evaluate multi-leg option strategies and query the market data bridge",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		level, _ := cmd.Flags().GetString("log-level")
		logger.SetOutput(os.Stderr, logger.Config{Level: level, Format: "text"})
		return nil
	},
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Price, classify and adjust a strategy described in a YAML file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		file, _ := cmd.Flags().GetString("file")
		steps, _ := cmd.Flags().GetInt("steps")
		req, err := loadRequest(file)
		if err != nil {
			return err
		}
		svc := application.NewStrategyService(pricing.NewEngine(steps), application.WithTimeout(30*time.Second))
		report, err := svc.Evaluate(cmd.Context(), *req)
		if err != nil {
			return err
		}
		return renderReport(cmd.OutOrStdout(), report)
	},
}

var strikesCmd = &cobra.Command{
	Use:   "strikes TICKER",
	Short: "List option chain instruments whose identifier contains --filter",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, _ := cmd.Flags().GetString("filter")
		ids, err := marketService(cmd).Strikes(cmd.Context(), args[0], filter)
		if err != nil {
			return err
		}
		for _, id := range ids {
			fmt.Fprintln(cmd.OutOrStdout(), id)
		}
		return nil
	},
}

var quotesCmd = &cobra.Command{
	Use:   "quotes TICKER INSTRUMENT...",
	Short: "Refresh spot and BID/ASK/IVOL_MID for the given instruments",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := marketService(cmd).Quotes(cmd.Context(), application.QuotesCommand{Ticker: args[0], Instruments: args[1:]})
		if err != nil {
			return err
		}
		return renderQuotes(cmd.OutOrStdout(), snap)
	},
}

var rateCmd = &cobra.Command{
	Use:   "rate TICKER MATURITY",
	Short: "Pick the swap tenor rate closest to MATURITY (YYYY-MM-DD)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		maturity, err := time.Parse("2006-01-02", args[1])
		if err != nil {
			return err
		}
		rate, err := marketService(cmd).DiscountRate(cmd.Context(), args[0], time.Now().UTC(), maturity)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%d days): %s%% -> %g\n", rate.Currency, rate.Tenor.Label, rate.Days,
			formatFloat(rate.Tenor.Rate, 4), rate.Rate)
		return nil
	},
}

func marketService(cmd *cobra.Command) *application.MarketService {
	url, _ := cmd.Flags().GetString("market-url")
	if url == "" {
		url = config.GetEnv("APP_MARKET_DATA_BASE_URL", "http://localhost:8194")
	}
	cfg := config.MarketDataConfig{BaseURL: url, TimeoutMs: 5000, MaxRetries: 2}
	return application.NewMarketService(marketdata.NewHTTPProvider(cfg), nil)
}

// loadRequest 解析 YAML 请求，未知字段直接报错
func loadRequest(path string) (*application.EvaluateCommand, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var req application.EvaluateCommand
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&req); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &req, nil
}

func main() {
	rootCmd.PersistentFlags().String("log-level", "warn", "log level: debug, info, warn, error")

	evaluateCmd.Flags().StringP("file", "f", "", "strategy request in YAML. This flag is required.")
	evaluateCmd.Flags().Int("steps", pricing.DefaultBinomialSteps, "binomial tree steps for American legs")
	_ = evaluateCmd.MarkFlagRequired("file")

	for _, c := range []*cobra.Command{strikesCmd, quotesCmd, rateCmd} {
		c.Flags().String("market-url", "", "market data bridge base URL, defaults to $APP_MARKET_DATA_BASE_URL")
	}
	strikesCmd.Flags().String("filter", "", "substring to match, e.g. a strike or expiry")

	rootCmd.AddCommand(evaluateCmd, strikesCmd, quotesCmd, rateCmd)
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

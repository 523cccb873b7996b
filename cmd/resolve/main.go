package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"stock-ticker-be/internal/bootstrap"
	"stock-ticker-be/internal/config"
	"stock-ticker-be/internal/pkg/logger"
	"stock-ticker-be/pkg/database"
	"stock-ticker-be/pkg/ticker"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	market   string
	language string
	asJSON   bool
)

func main() {
	root := &cobra.Command{
		Use:          "resolve [query]",
		Short:        "Resolve a free-text query to catalog stocks and print every pipeline step",
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), strings.Join(args, " "))
		},
	}
	root.Flags().StringVarP(&market, "market", "m", "US", "preferred market (US, HK, CN, GLOBAL)")
	root.Flags().StringVarP(&language, "language", "l", "en", "preferred language")
	root.Flags().BoolVar(&asJSON, "json", false, "print the final result as JSON")

	if err := root.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, query string) error {
	m, err := ticker.ParseMarket(market)
	if err != nil {
		return err
	}

	cfg := config.Load()
	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, false)
	if err != nil {
		return err
	}
	defer database.Close(db)

	container, err := bootstrap.NewContainer(db, cfg, bootstrap.Options{
		Observer: printState,
		Logger:   logger.NewIsolatedLogger(cfg.App.LogFilePath),
	})
	if err != nil {
		return err
	}
	defer container.Close()

	color.Cyan("Resolving %q (market %s, language %s)\n", query, m, language)
	res, err := container.Pipeline.Run(ctx, ticker.QueryContext{Query: query, Market: m, Language: language})
	if err != nil {
		color.Red("Failed: %v", err)
		return err
	}

	if asJSON {
		out, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	switch {
	case res.TimedOut:
		color.Yellow("\nTimed out after %d cycle(s); best answer so far:", res.Cycles)
	case res.LowConfidence:
		color.Yellow("\nLow confidence after %d cycle(s):", res.Cycles)
	default:
		color.Green("\nPassed after %d cycle(s):", res.Cycles)
	}
	for _, r := range res.Answer {
		fmt.Printf("  %-12s %-40s %-8s %s\n", r.Symbol, r.Name, r.ExchangeShortName, r.Country)
	}
	if len(res.Answer) == 0 {
		fmt.Println("  (no stocks)")
	}
	return nil
}

func printState(s ticker.PipelineState) {
	header := color.New(color.FgYellow, color.Bold).SprintfFunc()
	fmt.Println(header("[cycle %d] %s", s.Cycle, s.Stage))

	switch s.Stage {
	case ticker.StageExtracting:
		fmt.Printf("  query: %s\n", s.Context.Query)
	case ticker.StageResolving:
		for _, c := range s.Candidates {
			fmt.Printf("  candidate: %s\n", c)
		}
	case ticker.StageGrading, ticker.StageRewriting, ticker.StageTerminated:
		symbols := make([]string, 0, len(s.Answer))
		for _, r := range s.Answer {
			symbols = append(symbols, r.Symbol)
		}
		fmt.Printf("  answer: [%s]\n", strings.Join(symbols, ", "))
		if s.Verdict != "" {
			verdict := color.RedString(string(s.Verdict))
			if s.Verdict == ticker.VerdictPass {
				verdict = color.GreenString(string(s.Verdict))
			}
			fmt.Printf("  verdict: %s\n", verdict)
		}
	}
	for _, d := range s.Degraded {
		color.Red("  degraded %s lookup for %s: %s", d.Lookup, d.Candidate, d.Error)
	}
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"macro-picks/internal/experts"
	"macro-picks/internal/llm/schema"
	"macro-picks/internal/logger"
	"macro-picks/internal/store"
)

const defaultConfigPath = "config.yaml"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd creates the root command
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "picks",
		Short: "Macro news to investment picks",
		Long: `picks turns a macro-news narrative into five structured investment picks,
each matched to investor-persona experts, and prints the updated pipeline state.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newExpertsCmd())
	rootCmd.AddCommand(newSchemaCmd())

	rootCmd.PersistentFlags().String("config", defaultConfigPath, "Configuration file path")

	return rootCmd
}

// newRunCmd creates the run command
func newRunCmd() *cobra.Command {
	var (
		in     stateInput
		scrape bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Synthesize picks and print the merged state",
		Long: `Run the pick synthesizer once. The input state comes from --state (optional)
with --context/--context-file and --date layered on top.
Example: picks run --context-file news.txt --date 2026-01-22 --show-reasoning`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			return runPicks(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), configPath, cmd.Flags().Changed("config"), in, scrape)
		},
	}

	cmd.Flags().StringVar(&in.StateFile, "state", "", "State JSON file to start from")
	cmd.Flags().StringVar(&in.Context, "context", "", "Macro news narrative")
	cmd.Flags().StringVar(&in.ContextFile, "context-file", "", "File containing the macro news narrative")
	cmd.Flags().StringVar(&in.Date, "date", "", "Context date, e.g. 2026-01-22")
	cmd.Flags().BoolVar(&in.ShowReasoning, "show-reasoning", false, "Print the agent's reasoning")
	cmd.Flags().BoolVar(&scrape, "scrape", false, "Scrape configured news sources when no narrative is given")
	cmd.MarkFlagsMutuallyExclusive("context", "context-file")

	return cmd
}

// newExpertsCmd creates the experts command
func newExpertsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "experts",
		Short: "List the expert labels picks may reference",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, p := range experts.Profiles() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-24s %s\n", p.ID, p.Label())
			}
		},
	}
}

// newSchemaCmd creates the schema command
func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema generators must satisfy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeJSON(cmd.OutOrStdout(), schema.Picks())
		},
	}
}

// runPicks executes one synthesis and writes the merged state to out.
// Reasoning, when shown, goes to errOut.
func runPicks(parent context.Context, out, errOut io.Writer, configPath string, explicitConfig bool, in stateInput, scrape bool) error {
	if err := initializeSystem(); err != nil {
		return err
	}
	defer shutdownSystem()

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(ctx, configPath, explicitConfig)
	if err != nil {
		return err
	}
	if cfg.Agent.ShowReasoning {
		in.ShowReasoning = true
	}

	secrets, err := store.LoadSecrets()
	if err != nil {
		return err
	}

	state, err := buildState(in)
	if err != nil {
		return err
	}

	if scrape {
		svc := initializeNews(cfg)
		defer svc.Close()
		state = scrapeNarrative(ctx, svc, state, cfg.Agent.ID)
	}

	gen, err := initializeGenerator(ctx, cfg, secrets)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to initialize generator", err)
		return err
	}
	sink, closeSink := initializeSink(cfg, errOut)
	defer closeSink()

	synth := initializeSynthesizer(cfg, gen, sink)
	patch, err := synth.Run(ctx, state)
	if err != nil {
		return err
	}

	return writeJSON(out, state.Apply(patch))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/hyeonlab/casefactory/internal/agent"
	"github.com/hyeonlab/casefactory/internal/batch"
	"github.com/hyeonlab/casefactory/internal/config"
	"github.com/hyeonlab/casefactory/internal/database"
	"github.com/hyeonlab/casefactory/internal/llm"
	"github.com/hyeonlab/casefactory/internal/metrics"
	"github.com/hyeonlab/casefactory/internal/planner"
	"github.com/hyeonlab/casefactory/internal/render"
	"github.com/hyeonlab/casefactory/internal/safety"
	"github.com/hyeonlab/casefactory/internal/server"
	"github.com/hyeonlab/casefactory/internal/writer"
	"github.com/spf13/cobra"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "casefactory",
	Short:   "Programmatic landing-page factory for unpaid-debt cases",
	Long:    "casefactory plans debt-recovery case scenarios, drafts Korean landing pages with an LLM, gates them through safety, uniqueness, and quality review, and publishes the survivors.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}

		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(serveCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("casefactory", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/casefactory/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to configure the LLM provider, thresholds, and batch volume.")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show database and production status",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.GetStats()
		if err != nil {
			return fmt.Errorf("getting stats: %w", err)
		}

		fmt.Println("Cases:")
		fmt.Printf("  Total: %d\n", stats.Total)
		fmt.Printf("  Todo: %d\n", stats.Todo)
		fmt.Printf("  Published: %d\n", stats.Published)
		fmt.Printf("  Discarded: %d\n", stats.Discarded)
		fmt.Printf("\nDatabase: %s\n", db.Path())
		fmt.Printf("Pages: %s\n", cfg.Output.PublicDir)
		return nil
	},
}

// --- plan command ---

var planLimit int

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Plan new cases from the seed scenarios into the todo queue",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		p := planner.New(db, "", 0)
		cases, err := p.Suggest(cfg.Batch.DomainType, planLimit)
		if err != nil {
			return fmt.Errorf("planning cases: %w", err)
		}
		if len(cases) == 0 {
			fmt.Println("No new cases could be planned (seed pool exhausted or band caps reached).")
			return nil
		}

		for i := range cases {
			if err := db.UpsertCase(&cases[i]); err != nil {
				return fmt.Errorf("saving case %s: %w", cases[i].CaseID, err)
			}
			fmt.Printf("Planned %s: %s [%s]\n", cases[i].CaseID, cases[i].Title, cases[i].StructureType)
		}
		fmt.Printf("\n%d case(s) added to the queue.\n", len(cases))
		return nil
	},
}

func init() {
	planCmd.Flags().IntVar(&planLimit, "limit", 5, "Maximum number of cases to plan")
}

// --- run command ---

var runTest bool

var runCmd = &cobra.Command{
	Use:   "run [case-id]",
	Short: "Run the production loop for a single case",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		caseID := ""
		if len(args) > 0 {
			caseID = args[0]
		}
		if runTest {
			if err := db.InsertTestCase(); err != nil {
				return fmt.Errorf("seeding test case: %w", err)
			}
			caseID = database.TestCaseID
		}
		if caseID == "" {
			return fmt.Errorf("case ID required (or use --test)")
		}

		a := buildAgent(db)
		outcome, err := a.Run(context.Background(), caseID, agent.AttemptCeiling)
		if err != nil {
			return err
		}

		fmt.Printf("Case %s: %s (attempt %d)\n", caseID, outcome.Status, outcome.Attempts)
		if outcome.Status == agent.StatusPublished {
			fmt.Printf("  Page: %s\n", outcome.HTMLPath)
		} else {
			fmt.Printf("  Reason: %s\n", outcome.Reason)
		}
		return nil
	},
}

func init() {
	runCmd.Flags().BoolVar(&runTest, "test", false, "Seed and run the built-in safe test case")
}

// --- batch command ---

var (
	batchDryRun      bool
	batchIgnoreLimit bool
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Run a daily production batch toward the publish target",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		if deleted, err := db.CleanupNullCases(); err != nil {
			return fmt.Errorf("cleaning up broken rows: %w", err)
		} else if deleted > 0 {
			fmt.Printf("Removed %d broken case row(s).\n", deleted)
		}

		b := batch.New(db, buildAgent(db), planner.New(db, "", 0), batch.Options{
			TargetPerDay:       cfg.Batch.TargetPerDay,
			MaxRefillLoops:     cfg.Batch.MaxRefillLoops,
			DomainType:         cfg.Batch.DomainType,
			InitialLaunchLimit: cfg.Batch.InitialLaunchLimit,
			IgnoreInitialLimit: batchIgnoreLimit,
			DryRun:             batchDryRun,
		})

		result, err := b.Run(context.Background())
		if err != nil {
			return err
		}

		fmt.Println("\nBatch complete:")
		fmt.Printf("  Published: %d\n", len(result.Published))
		fmt.Printf("  Discarded: %d\n", len(result.Discarded))
		fmt.Printf("  Newly planned: %d\n", result.Planned)
		if result.LimitReached {
			fmt.Println("  Initial launch limit reached; stopped early.")
		}
		for _, id := range result.Published {
			fmt.Printf("    + %s\n", id)
		}
		return nil
	},
}

func init() {
	batchCmd.Flags().BoolVar(&batchDryRun, "dry-run", false, "Show what would be produced without calling the LLM")
	batchCmd.Flags().BoolVar(&batchIgnoreLimit, "ignore-initial-limit", false, "Keep publishing past the initial launch limit")
}

// --- serve command ---

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local dashboard and page server",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		if servePort == 0 {
			servePort = cfg.Server.Port
		}
		fmt.Printf("Starting server at http://localhost:%d\n", servePort)
		fmt.Println("Press Ctrl+C to stop")
		return server.Serve(db, cfg.Output.PublicDir, servePort)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to run server on (default from config)")
}

// buildAgent wires the production loop from configuration: drafting LLM,
// layered safety reviewer, renderer, and metrics log.
func buildAgent(db *database.DB) *agent.Agent {
	provider := llm.CreateProvider(cfg.Writer.Provider, cfg.Writer.Model, cfg.Writer.OllamaURL, cfg.Writer.OpenAIModel, cfg.Writer.APIKeyEnv)
	w := writer.New(provider, cfg.Writer.MaxTokens)

	var safetyProvider llm.Provider
	if cfg.Safety.Enabled {
		safetyProvider = llm.CreateProvider(cfg.Safety.Provider, cfg.Safety.Model, cfg.Safety.OllamaURL, cfg.Safety.OpenAIModel, cfg.Safety.APIKeyEnv)
	}
	reviewer := safety.NewReviewer(safetyProvider)

	return agent.New(db, w, reviewer, render.New(cfg.Output.PublicDir), metrics.NewLogger(cfg.MetricsPath()), agent.Config{
		SimilarityThreshold: cfg.Pipeline.SimilarityThreshold,
		MinPUIScore:         cfg.Pipeline.MinPUIScore,
		CorpusLimit:         cfg.Pipeline.CorpusLimit,
		DomainType:          cfg.Batch.DomainType,
	})
}

func openDB() (*database.DB, error) {
	dataDir := cfg.GetDataDir()
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return database.Open(cfg.DBPath())
}

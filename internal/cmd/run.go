package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/atikulmunna/canlens/internal/config"
	"github.com/atikulmunna/canlens/internal/model"
	"github.com/atikulmunna/canlens/internal/pipeline"
	"github.com/atikulmunna/canlens/internal/report"
)

var (
	directory    string
	outputPrefix string
	rulesPath    string
	createRules  bool
	forceCreate  bool
	noZip        bool
	workers      int
	previewLines int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Classify the log files in a directory",
	Long: `Scan a directory for .log files (and .zip archives bundling them),
classify every line against the rule file, and write <prefix>.txt and
<prefix>.html reports.

Examples:
  canlens run -d ./traces
  canlens run -d ./traces -o flash-session -r rules.json
  canlens run --create-config -r rules.json`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&directory, "directory", "d", ".", "directory containing .log and .zip files")
	runCmd.Flags().StringVarP(&outputPrefix, "output-prefix", "o", "canlens-results", "prefix for the output artifacts")
	runCmd.Flags().StringVarP(&rulesPath, "rules", "r", "canlens-rules.json", "rule file path")
	runCmd.Flags().BoolVar(&createRules, "create-config", false, "write a default rule file and exit")
	runCmd.Flags().BoolVar(&forceCreate, "force", false, "overwrite an existing rule file with --create-config")
	runCmd.Flags().BoolVar(&noZip, "no-zip", false, "skip ZIP archives")
	runCmd.Flags().IntVarP(&workers, "workers", "j", runtime.NumCPU(), "concurrent classification workers")
	runCmd.Flags().IntVar(&previewLines, "preview", 10, "classified lines to echo to the terminal (0 disables)")

	_ = viper.BindPFlag("directory", runCmd.Flags().Lookup("directory"))
	_ = viper.BindPFlag("output-prefix", runCmd.Flags().Lookup("output-prefix"))
	_ = viper.BindPFlag("rules", runCmd.Flags().Lookup("rules"))
}

// resolveOptions reads the viper-bound settings back so values from
// the config file and CANLENS_* env vars take effect; an explicitly
// set flag still wins over both.
func resolveOptions() {
	directory = viper.GetString("directory")
	outputPrefix = viper.GetString("output-prefix")
	rulesPath = viper.GetString("rules")
}

func runRun(cmd *cobra.Command, args []string) error {
	resolveOptions()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			fmt.Fprintln(os.Stderr, "canlens: interrupted, cleaning up...")
			cancel()
		case <-ctx.Done():
		}
	}()

	if createRules {
		if _, err := config.CreateDefault(rulesPath, forceCreate); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Default rule file created at %s\n", rulesPath)
		return nil
	}

	rules, err := loadRules(rulesPath)
	if err != nil {
		return err
	}

	textPath := outputPrefix + ".txt"
	htmlPath := outputPrefix + ".html"
	textBuilder := report.NewTextBuilder(textPath)
	htmlBuilder := report.NewHTMLBuilder(htmlPath, "CAN Log Classification")

	orch := pipeline.New(pipeline.Options{
		Dir:             directory,
		Rules:           rules,
		Builders:        []report.Builder{textBuilder, htmlBuilder},
		IncludeArchives: !noZip,
		Workers:         workers,
	})

	summary, err := orch.Run(ctx)
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	printSummary(summary, textPath, htmlPath)

	if previewLines > 0 {
		report.Preview(os.Stdout, textBuilder.Records(), previewLines)
	}
	return nil
}

// loadRules loads the rule file, creating the default set first when
// the file does not exist yet.
func loadRules(path string) (model.Configuration, error) {
	rules, err := config.Load(path)
	if errors.Is(err, config.ErrNotFound) {
		fmt.Fprintf(os.Stderr, "Rule file not found, creating default at %s\n", path)
		return config.CreateDefault(path, false)
	}
	return rules, err
}

func printSummary(s model.RunSummary, textPath, htmlPath string) {
	fmt.Fprintf(os.Stderr, "Classified %d lines across %d file(s): %d match, %d mismatch\n",
		s.Lines, s.Files, s.Match, s.Mismatch)
	for _, w := range s.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	fmt.Fprintf(os.Stderr, "Results saved to %s and %s\n", textPath, htmlPath)
}

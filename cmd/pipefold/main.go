// Package main is the entry point for the pipefold CLI and server.
package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/serjsysoev/pipefold"
	"github.com/serjsysoev/pipefold/pkg/api"
	"github.com/serjsysoev/pipefold/pkg/logging"
	"github.com/serjsysoev/pipefold/pkg/store"
	"github.com/serjsysoev/pipefold/web"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "pipefold [chain]",
	Short: "Rewrite map/filter call chains into canonical two-call form",
	Long: `pipefold parses a map/filter call chain, folds every map into a single
polynomial and every filter into a single predicate, and prints the
canonical filter-then-map form.

The chain is taken from the first argument, or from one stdin line when
no argument is given. Rejected chains print SYNTAX ERROR or TYPE ERROR.`,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE:         runRewrite,
}

var runCmd = &cobra.Command{
	Use:   "run [chain]",
	Short: "Apply a chain to one element and print the result",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runApply,
}

var batchCmd = &cobra.Command{
	Use:   "batch <corpus.yaml>",
	Short: "Rewrite every chain in a YAML corpus and emit a report",
	Args:  cobra.ExactArgs(1),
	RunE:  runBatch,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the rewriter as a REST API with an embedded web UI",
	RunE:  runServe,
}

func init() {
	rootCmd.Version = version + " (commit=" + commit + ", built=" + date + ")"
	rootCmd.SetVersionTemplate("pipefold version {{.Version}}\n")

	runCmd.Flags().Int("element", 0, "Integer element to feed the chain")

	batchCmd.Flags().StringP("output", "o", "", "Report file (default stdout)")

	serveCmd.Flags().Int("port", 0, "HTTP server port (default 8787, env PORT)")
	serveCmd.Flags().String("host", "", "Bind address (default 0.0.0.0, env HOST)")
	serveCmd.Flags().String("load", "", "Directory of .chain files to register at startup (env PIPELINES_DIR)")
	serveCmd.Flags().String("log-file", "", "Mirror logs into this rotated file")
	serveCmd.Flags().Int("log-max-size", 0, "Rotated log size limit in MB (default 50)")
	serveCmd.Flags().Int("log-max-age", 0, "Rotated log retention in days (default 28)")
	serveCmd.Flags().Int("log-max-backups", 0, "Rotated log files kept (default 3)")
	serveCmd.Flags().String("log-level", "", "Log level: debug, info, warn, error (default info)")
	serveCmd.Flags().Bool("quiet", false, "Only log warnings and errors")

	rootCmd.AddCommand(runCmd, batchCmd, serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// readChain returns the chain from args, or one line of stdin.
func readChain(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 128*1024), 128*1024)
	if scanner.Scan() {
		return scanner.Text()
	}
	return ""
}

// verdict maps the two user-facing rejection kinds onto their stdout
// verdict strings. Any other failure is not a verdict and escalates.
func verdict(err error) (string, bool) {
	switch {
	case pipefold.IsSyntaxError(err):
		return "SYNTAX ERROR", true
	case pipefold.IsTypeError(err):
		return "TYPE ERROR", true
	default:
		return "", false
	}
}

func runRewrite(cmd *cobra.Command, args []string) error {
	canonical, err := pipefold.Optimize(readChain(args))
	if err != nil {
		if v, ok := verdict(err); ok {
			fmt.Println(v)
			return nil
		}
		return err
	}

	fmt.Println(canonical)
	return nil
}

func runApply(cmd *cobra.Command, args []string) error {
	element, _ := cmd.Flags().GetInt("element")

	value, kept, err := pipefold.Apply(readChain(args), element)
	if err != nil {
		if v, ok := verdict(err); ok {
			fmt.Println(v)
			return nil
		}
		return err
	}

	if !kept {
		fmt.Println("filtered")
		return nil
	}
	fmt.Println(value)
	return nil
}

type corpus struct {
	Chains []string `yaml:"chains"`
}

type batchResult struct {
	Chain     string `yaml:"chain"`
	Canonical string `yaml:"canonical,omitempty"`
	Error     string `yaml:"error,omitempty"`
}

type batchReport struct {
	Results []batchResult `yaml:"results"`
}

func runBatch(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading corpus: %w", err)
	}

	var c corpus
	if err := yaml.Unmarshal(data, &c); err != nil {
		return fmt.Errorf("parsing corpus: %w", err)
	}

	report := batchReport{Results: make([]batchResult, 0, len(c.Chains))}
	for _, chain := range c.Chains {
		result := batchResult{Chain: chain}
		canonical, err := pipefold.Optimize(chain)
		switch {
		case err == nil:
			result.Canonical = canonical
		default:
			if v, ok := verdict(err); ok {
				result.Error = v
			} else {
				result.Error = err.Error()
			}
		}
		report.Results = append(report.Results, result)
	}

	out, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}

	if path, _ := cmd.Flags().GetString("output"); path != "" {
		return os.WriteFile(path, out, 0o644)
	}
	_, err = os.Stdout.Write(out)
	return err
}

func runServe(cmd *cobra.Command, args []string) error {
	port := envOrDefault("PORT", "8787")
	if v, _ := cmd.Flags().GetInt("port"); v != 0 {
		port = fmt.Sprintf("%d", v)
	}

	host := envOrDefault("HOST", "0.0.0.0")
	if v, _ := cmd.Flags().GetString("host"); v != "" {
		host = v
	}

	loadDir := os.Getenv("PIPELINES_DIR")
	if v, _ := cmd.Flags().GetString("load"); v != "" {
		loadDir = v
	}

	level, _ := cmd.Flags().GetString("log-level")
	if quiet, _ := cmd.Flags().GetBool("quiet"); quiet {
		level = "warn"
	}
	logFile, _ := cmd.Flags().GetString("log-file")
	maxSize, _ := cmd.Flags().GetInt("log-max-size")
	maxAge, _ := cmd.Flags().GetInt("log-max-age")
	maxBackups, _ := cmd.Flags().GetInt("log-max-backups")
	logging.Init(logging.Options{
		Level:      level,
		Filename:   logFile,
		MaxSizeMB:  maxSize,
		MaxAgeDays: maxAge,
		MaxBackups: maxBackups,
	})

	addr := fmt.Sprintf("%s:%s", host, port)

	s := store.New()
	server := api.New(s)

	// Load pipelines from directory if specified
	if loadDir != "" {
		if err := server.LoadDir(loadDir); err != nil {
			slog.Warn("failed to load pipelines directory", "dir", loadDir, "error", err)
		}
	}

	// Register the web UI (non-fatal if template parsing fails)
	func() {
		defer func() {
			if r := recover(); r != nil {
				slog.Warn("web UI disabled due to template error", "error", r)
			}
		}()
		ui := web.New(s)
		ui.Register(server.App())
	}()

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		slog.Info("shutting down")
		if err := server.Shutdown(); err != nil {
			slog.Error("error during shutdown", "error", err)
		}
	}()

	slog.Info("pipefold listening", "addr", addr, "version", version)
	return server.Listen(addr)
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

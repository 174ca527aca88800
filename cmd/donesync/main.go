package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"donesync/internal/blocks"
	"donesync/internal/config"
	"donesync/internal/logging"
	"donesync/internal/notion"
	"donesync/internal/pipeline"
	"donesync/internal/render"
	"donesync/internal/source"
	"donesync/internal/storage"

	goerrors "github.com/goliatone/go-errors"
	"github.com/spf13/cobra"
)

type options struct {
	configPath string
	logLevel   string

	title     string
	filePath  string
	dryRun    bool
	noHistory bool

	previewFormat string
	previewWidth  int

	historyLimit int
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit code. Only page URLs
// and previews go to stdout; progress and diagnostics go to stderr.
func run(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stderr)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", diagnostic(err))
		return 1
	}
	return 0
}

// diagnostic renders err for the user without go-errors' category tags.
func diagnostic(err error) string {
	var partial *notion.PartialPublishError
	if errors.As(err, &partial) {
		return partial.Error()
	}
	var apiErr *notion.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Error()
	}
	var gerr *goerrors.Error
	if errors.As(err, &gerr) {
		if gerr.Source != nil {
			return gerr.Message + ": " + gerr.Source.Error()
		}
		return gerr.Message
	}
	return err.Error()
}

func newRootCmd(progress io.Writer) *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "donesync",
		Short:         "Publish markdown session summaries as Notion pages",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to config file (default ~/.claude-done/config.json)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	root.AddCommand(newSyncCmd(opts, progress))
	root.AddCommand(newPreviewCmd(opts))
	root.AddCommand(newHistoryCmd(opts))
	return root
}

// loadConfig loads the config store and applies the --log-level flag.
// Credentials are only checked when the command will reach the host.
func loadConfig(opts *options, needCredentials bool) (*config.Config, error) {
	load := config.LoadConfig
	if !needCredentials {
		load = config.Read
	}
	cfg, err := load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, progress io.Writer, name string) logging.Logger {
	logger, err := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}, name)
	if err != nil {
		fmt.Fprintf(progress, "⚠️  Logging disabled: %v\n", err)
		return logging.NoOp()
	}
	return logger
}

func newSyncCmd(opts *options, progress io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Convert a markdown summary and publish it as a child page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			// 1. Configuration
			cfg, err := loadConfig(opts, !opts.dryRun)
			if err != nil {
				return err
			}
			logger := newLogger(cfg, progress, "donesync")

			// 2. Client & Publisher
			client := notion.NewClient(cfg.NotionToken,
				notion.WithBaseURL(cfg.NotionAPIURL),
				notion.WithVersion(cfg.NotionVersion),
				notion.WithTimeout(cfg.Timeout()),
			)

			s := &pipeline.Sync{
				Publisher: notion.NewPublisher(client, logger.WithFields(map[string]any{"component": "notion"})),
				Logger:    logger,
				Progress:  progress,
				ParentID:  cfg.NotionPageID,
				DryRun:    opts.dryRun,
			}

			// 3. History ledger (optional)
			if !opts.noHistory && !opts.dryRun {
				store, err := storage.NewSQLiteStore(cfg.HistoryDB)
				if err != nil {
					fmt.Fprintf(progress, "⚠️  History disabled: %v\n", err)
				} else {
					defer store.Close()
					s.History = store
				}
			}

			// 4. Run
			out, err := s.Run(ctx, opts.filePath, opts.title)
			if err != nil {
				return err
			}
			if out.Result != nil {
				fmt.Fprintln(cmd.OutOrStdout(), out.Result.URL)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&opts.title, "title", "t", "", "Page title (default: front matter title, first # heading, or file name)")
	cmd.Flags().StringVarP(&opts.filePath, "file", "f", "", "Path to markdown file")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Convert and plan the requests without calling Notion (no token or page id needed)")
	cmd.Flags().BoolVar(&opts.noHistory, "no-history", false, "Do not record this publish in the history database")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newPreviewCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Show the converted document without publishing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := source.Load(opts.filePath, opts.title)
			if err != nil {
				return err
			}
			doc := blocks.Convert(summary.Body)

			out, err := render.Render(opts.previewFormat, summary.Title, doc, opts.previewWidth)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&opts.title, "title", "t", "", "Page title")
	cmd.Flags().StringVarP(&opts.filePath, "file", "f", "", "Path to markdown file")
	cmd.Flags().StringVar(&opts.previewFormat, "format", render.FormatTerminal, "Output format: markdown, terminal, html, json")
	cmd.Flags().IntVar(&opts.previewWidth, "width", 80, "Wrap width for terminal output")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newHistoryCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent publish attempts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts, false)
			if err != nil {
				return err
			}

			store, err := storage.NewSQLiteStore(cfg.HistoryDB)
			if err != nil {
				return fmt.Errorf("failed to open history: %w", err)
			}
			defer store.Close()

			entries, err := store.Recent(cmd.Context(), opts.historyLimit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No publishes recorded yet.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "WHEN\tSTATUS\tBLOCKS\tTITLE\tURL")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\t%d/%d\t%s\t%s\n",
					e.CreatedAt.Local().Format("2006-01-02 15:04"), e.Status, e.Delivered, e.Total, e.Title, e.URL)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVarP(&opts.historyLimit, "limit", "n", 20, "Number of entries to show")
	return cmd
}

// autotranslate runs the AI translation sync engine as a standalone service.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	autotranslate "github.com/goliatone/go-cms-autotranslate"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
)

var configPath string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "autotranslate",
		Short: "Dispatch CMS documents to an AI workflow and merge the translations back",
		Long: `autotranslate sends the translatable fields of a source-locale document to an
external workflow engine, tracks the streamed progress and merges each locale's
result back through the callback route.

Commands:
  serve       Run the HTTP API (translate, callback, progress, settings)
  translate   Dispatch one document and follow its progress
  settings    Inspect the effective settings`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file")

	root.AddCommand(
		newServeCmd(),
		newTranslateCmd(),
		newSettingsCmd(),
		newVersionCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() (autotranslate.Config, error) {
	if strings.TrimSpace(configPath) == "" {
		return autotranslate.DefaultConfig(), nil
	}
	return autotranslate.LoadConfig(configPath)
}

func newModule() (*autotranslate.Module, autotranslate.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, cfg, err
	}
	module, err := autotranslate.New(cfg)
	if err != nil {
		return nil, cfg, err
	}
	return module, cfg, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "autotranslate version %s (%s)\n", version, commit)
		},
	}
}

// ---------------------------------------------------------------------------
// serve
// ---------------------------------------------------------------------------

func newServeCmd() *cobra.Command {
	var addr string
	var shutdownTimeout time.Duration

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			module, cfg, err := newModule()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.HTTP.Addr
			}
			return runServe(cmd.Context(), module, addr, shutdownTimeout)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (defaults to http.addr)")
	cmd.Flags().DurationVar(&shutdownTimeout, "shutdown-timeout", 30*time.Second, "Grace period for in-flight dispatches")
	return cmd
}

func runServe(parent context.Context, module *autotranslate.Module, addr string, grace time.Duration) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	mux := http.NewServeMux()
	if err := module.Register(mux); err != nil {
		return err
	}
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		module.Container().Logger().Info("server.listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			_ = module.Shutdown(context.Background())
			return err
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	serverErr := server.Shutdown(shutdownCtx)
	return errors.Join(serverErr, module.Shutdown(shutdownCtx))
}

// ---------------------------------------------------------------------------
// translate
// ---------------------------------------------------------------------------

func newTranslateCmd() *cobra.Command {
	var (
		documentID  string
		contentType string
		locales     []string
		interval    time.Duration
		timeout     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "translate",
		Short: "Dispatch one document and follow its progress",
		Long: `Dispatch the source-locale version of a document to the workflow engine and
print progress events until the job completes or fails. Translations arrive
through the callback route of a running "serve" instance.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			module, _, err := newModule()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			defer shutdownModule(module, shutdownGrace)

			result, err := module.Translate(ctx, autotranslate.TranslateRequest{
				DocumentID:    documentID,
				ContentType:   contentType,
				TargetLocales: locales,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (job %s)\n", result.Message, result.JobID)
			return followProgress(ctx, cmd, module, result.JobID, interval, timeout)
		},
	}

	cmd.Flags().StringVar(&documentID, "document", "", "Document id")
	cmd.Flags().StringVar(&contentType, "type", "", "Content type uid (for example api::article.article)")
	cmd.Flags().StringSliceVar(&locales, "locale", nil, "Target locale (repeatable, defaults to all registry locales)")
	cmd.Flags().DurationVar(&interval, "interval", 500*time.Millisecond, "Progress poll interval")
	cmd.Flags().DurationVar(&timeout, "timeout", defaultFollowTimeout, "Give up waiting for a terminal progress event after this long (0 waits forever)")
	_ = cmd.MarkFlagRequired("document")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

const defaultFollowTimeout = 5 * time.Minute

// shutdownGrace bounds how long a one-shot command waits for its background
// dispatch after it stops following progress.
var shutdownGrace = 5 * time.Second

func shutdownModule(module *autotranslate.Module, grace time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	_ = module.Shutdown(ctx)
}

func followProgress(ctx context.Context, cmd *cobra.Command, module *autotranslate.Module, jobID string, interval, timeout time.Duration) error {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	since := 0
	for {
		for _, evt := range module.Progress(ctx, jobID, since).Events {
			since = evt.Index + 1
			printEvent(cmd, evt)
			switch evt.Kind {
			case "completed":
				return nil
			case "error":
				return fmt.Errorf("translation job %s failed: %s", jobID, evt.Message)
			}
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("translation job %s: no terminal progress event: %w", jobID, ctx.Err())
		case <-ticker.C:
		}
	}
}

func printEvent(cmd *cobra.Command, evt autotranslate.ProgressEvent) {
	line := fmt.Sprintf("[%s] %s", evt.Kind, evt.Message)
	if evt.Current != nil && evt.Total != nil {
		line += fmt.Sprintf(" %d/%d", *evt.Current, *evt.Total)
	}
	fmt.Fprintln(cmd.OutOrStdout(), line)
}

// ---------------------------------------------------------------------------
// settings
// ---------------------------------------------------------------------------

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Inspect runtime settings",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective settings with the API key masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			module, _, err := newModule()
			if err != nil {
				return err
			}
			defer shutdownModule(module, shutdownGrace)

			current, err := module.EffectiveSettings(context.Background())
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(current.Masked())
		},
	})
	return cmd
}

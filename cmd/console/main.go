package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
	"github.com/taskflow/backend/internal/app"
	"github.com/taskflow/backend/internal/client"
	"github.com/taskflow/backend/internal/config"
	"github.com/taskflow/backend/internal/console"
	"github.com/taskflow/backend/internal/infrastructure/logger"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		configPath string
		apiURL     string
		token      string
		timeout    time.Duration
	)

	cmd := &cobra.Command{
		Use:          "taskflow-console",
		Short:        "Interactive terminal client for the task API",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("api") {
				cfg.Client.BaseURL = apiURL
			}
			if cmd.Flags().Changed("token") {
				cfg.Client.Token = token
			}
			if cmd.Flags().Changed("timeout") {
				cfg.Client.Timeout = timeout
			}
			return run(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", config.DefaultPath(), "path to config file")
	cmd.Flags().StringVar(&apiURL, "api", "", "task API base URL (overrides client.base_url)")
	cmd.Flags().StringVar(&token, "token", "", "bearer token for the task API")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "per-request timeout")
	return cmd
}

func run(parent context.Context, cfg *config.Config) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGTERM)
	defer stop()

	// Console output owns stdout, so logs go to a file or nowhere.
	log := logger.Nop()
	if path := os.Getenv("TASKFLOW_CONSOLE_LOG"); path != "" {
		lcfg := cfg.Logger
		lcfg.Encoding = "json"
		lcfg.OutputPaths = []string{path}
		lcfg.ErrorOutputPaths = []string{path}
		if l, err := logger.New(lcfg); err == nil {
			log = l
			defer log.Sync()
		}
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "tasks> ",
		HistoryFile:     historyFile(),
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		return fmt.Errorf("failed to start readline: %w", err)
	}
	defer rl.Close()

	api := client.NewClient(client.ClientConfig{
		BaseURL: cfg.Client.BaseURL,
		Token:   cfg.Client.Token,
		Timeout: cfg.Client.Timeout,
		Logger:  log.Named("client"),
	})

	var con *console.Console
	shell := app.New(app.Config{
		API:    api,
		Logger: log.Named("shell"),
		OnChange: func(s app.Snapshot) {
			con.OnChange(s)
		},
	})
	con = console.New(console.Config{
		Shell:  shell,
		Reader: rl,
		Out:    rl.Stdout(),
		Logger: log.Named("console"),
	})

	shellCtx, stopShell := context.WithCancel(ctx)
	defer stopShell()
	go func() { _ = shell.Run(shellCtx) }()

	fmt.Fprintf(rl.Stdout(), "Connected to %s. Type 'help' for commands.\n", cfg.Client.BaseURL)
	return con.Run(ctx)
}

func historyFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return dir + string(os.PathSeparator) + "taskflow_console_history"
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/frankonly/upstamp/client"
	"github.com/frankonly/upstamp/config"
	"github.com/frankonly/upstamp/data"
	"github.com/frankonly/upstamp/log"
	"github.com/frankonly/upstamp/proof"
	"github.com/frankonly/upstamp/storage"
)

// Exit statuses
const (
	ExitOK       = 0
	ExitFailure  = 1
	ExitMismatch = 2
	ExitPending  = 3
)

const receiptsDB = "receipts"

var rootCmd *cobra.Command

// app carries the state shared by every subcommand of one invocation
type app struct {
	envFile  string
	endpoint string
	home     string
	timeout  time.Duration
	retries  int
	verbose  bool

	cfg    *config.Config
	logger *zap.SugaredLogger
	client *client.Client
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "upstamp",
		Short: "Upstamp stamps files on a timestamping server and verifies their Merkle inclusion proofs",

		SilenceErrors: true,
		SilenceUsage:  true,

		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.envFile, "env-file", "", "read UPSTAMP_* settings from this file (default .env when present)")
	flags.StringVar(&a.endpoint, "endpoint", config.DefaultEndpoint, "stamping server endpoint")
	flags.StringVar(&a.home, "home", data.DefaultHome(), "directory holding the receipt database")
	flags.DurationVar(&a.timeout, "timeout", config.DefaultTimeout, "timeout of a single request")
	flags.IntVar(&a.retries, "retries", config.DefaultRetries, "attempts per request")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "log debug output to stderr")

	cmd.AddCommand(newVerifyCmd(a))
	cmd.AddCommand(newStampCmd(a))
	cmd.AddCommand(newHashCmd())
	cmd.AddCommand(newReceiptsCmd(a))

	return cmd
}

// setup loads the configuration, command line flags win over the environment
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.envFile)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("endpoint") {
		cfg.Endpoint = a.endpoint
	}
	if flags.Changed("home") {
		cfg.Home = a.home
	}
	if flags.Changed("timeout") {
		cfg.Timeout = a.timeout
	}
	if flags.Changed("retries") {
		cfg.Retries = a.retries
	}
	if flags.Changed("verbose") {
		cfg.Verbose = a.verbose
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	log.Configure(log.Config{Debug: cfg.Verbose, File: cfg.LogFile})
	data.SetBase(cfg.Home)

	a.cfg = cfg
	a.logger = log.New()
	a.logger.Debugw("configuration loaded", "endpoint", cfg.Endpoint, "home", cfg.Home,
		"timeout", cfg.Timeout, "retries", cfg.Retries)
	return nil
}

// Client news or returns the stamping server client
func (a *app) Client() (*client.Client, error) {
	if a.client == nil {
		retry := client.DefaultRetryConfig
		retry.MaxAttempts = a.cfg.Retries

		c, err := client.New(client.Config{
			Endpoint:  a.cfg.Endpoint,
			Timeout:   a.cfg.Timeout,
			Retry:     retry,
			RateLimit: a.cfg.RateLimit,
			Burst:     a.cfg.Concurrency,
			Logger:    a.logger,
		})
		if err != nil {
			return nil, err
		}
		a.client = c
	}

	return a.client, nil
}

func (a *app) openStore() (*storage.ReceiptStore, error) {
	if err := data.Ensure(); err != nil {
		return nil, fmt.Errorf("failed to create home directory %s: %w", data.Base(), err)
	}

	return storage.OpenReceiptStore(data.Path(receiptsDB))
}

// Init initiates commands
func Init() error {
	rootCmd = newRootCmd()
	return nil
}

// Execute executes command and exits with its status
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, rootCmd, os.Args[1:], os.Stdout, os.Stderr)
	stop()

	os.Exit(code)
}

// Run executes upstamp with args on a fresh command tree and returns the exit status
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	return run(ctx, newRootCmd(), args, stdout, stderr)
}

func run(ctx context.Context, cmd *cobra.Command, args []string, stdout, stderr io.Writer) int {
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintf(stderr, "upstamp: %s\n", err)
		return exitCode(err)
	}

	return ExitOK
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, proof.ErrRootMismatch):
		return ExitMismatch
	case errors.Is(err, client.ErrPending):
		return ExitPending
	default:
		return ExitFailure
	}
}

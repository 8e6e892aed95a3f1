package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/frankonly/upstamp/client"
	"github.com/frankonly/upstamp/source"
	"github.com/frankonly/upstamp/storage"
)

type stampOptions struct {
	concurrency int
	noStore     bool
}

func newStampCmd(a *app) *cobra.Command {
	opts := &stampOptions{}

	cmd := &cobra.Command{
		Use:   "stamp FILE|HASH...",
		Short: "Submit files or hashes to the stamping server",
		Long: `Submit files or hashes to the stamping server.

Prints "<hash> <proof url>" per input, in argument order. Every input is
attempted, the command fails when any of them failed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.stamp(cmd, args, opts)
		},
	}

	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 0, "inputs submitted in parallel (default from config)")
	cmd.Flags().BoolVar(&opts.noStore, "no-store", false, "do not record receipts")

	return cmd
}

func (a *app) stamp(cmd *cobra.Command, args []string, opts *stampOptions) error {
	concurrency := a.cfg.Concurrency
	if opts.concurrency > 0 {
		concurrency = opts.concurrency
	}

	c, err := a.Client()
	if err != nil {
		return err
	}

	var store *storage.ReceiptStore
	if !opts.noStore {
		store, err = a.openStore()
		if err != nil {
			return err
		}
		defer store.Close()
	}

	lines := make([]string, len(args))
	errs := make([]error, len(args))

	g := new(errgroup.Group)
	g.SetLimit(concurrency)
	for i, arg := range args {
		g.Go(func() error {
			line, err := a.stampOne(cmd.Context(), c, store, arg)
			lines[i], errs[i] = line, err
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for i, arg := range args {
		if errs[i] != nil {
			failed++
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "upstamp: %s: %s\n", arg, errs[i])
			continue
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), lines[i])
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d inputs failed", failed, len(args))
	}
	return nil
}

// stampOne hashes, submits and records a single input
func (a *app) stampOne(ctx context.Context, c *client.Client, store *storage.ReceiptStore, arg string) (string, error) {
	leaf, err := source.Leaf(arg)
	if err != nil {
		return "", err
	}

	res, err := c.Stamp(ctx, leaf)
	if err != nil {
		return "", err
	}

	if store != nil {
		receipt := &storage.Receipt{Hash: leaf, URL: res.URL}
		if !source.IsDigest(arg) {
			if abs, err := filepath.Abs(arg); err == nil {
				receipt.Source = abs
			} else {
				receipt.Source = arg
			}
		}
		if err := store.Put(receipt); err != nil {
			return "", fmt.Errorf("stamped as %s but failed to record receipt: %w", res.URL, err)
		}
	}

	a.logger.Debugw("stamped", "input", arg, "hash", leaf.Hex(), "url", res.URL)
	return leaf.Hex() + " " + res.URL, nil
}

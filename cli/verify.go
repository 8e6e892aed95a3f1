package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/frankonly/upstamp/crypto"
	"github.com/frankonly/upstamp/proof"
	"github.com/frankonly/upstamp/source"
	"github.com/frankonly/upstamp/storage"
)

const formatAll = "all"

type verifyOptions struct {
	root    string
	format  string
	offline bool
}

func newVerifyCmd(a *app) *cobra.Command {
	opts := &verifyOptions{}

	cmd := &cobra.Command{
		Use:   "verify HASH|FILE [PROOF-FILE|PROOF-URL]",
		Short: "Derive the root a proof commits a hash or file to, and check it against an anchored root",
		Long: `Derive the root a proof commits a hash or file to, and check it against an anchored root.

Without a proof argument the receipt recorded by "upstamp stamp" is used:
its cached proof, or else the proof published at its URL, which is cached.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.verify(cmd, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.root, "root", "", "anchored root to check the derived root against, in hex")
	cmd.Flags().StringVar(&opts.format, "format", string(crypto.FormatHex), "root rendering: hex, dec, bin or all")
	cmd.Flags().BoolVar(&opts.offline, "offline", false, "never contact the stamping server")

	return cmd
}

func (a *app) verify(cmd *cobra.Command, args []string, opts *verifyOptions) error {
	formats, err := parseFormats(opts.format)
	if err != nil {
		return err
	}

	var expected *crypto.Digest
	if opts.root != "" {
		d, err := crypto.FromHex(opts.root)
		if err != nil {
			return fmt.Errorf("invalid --root: %w", err)
		}
		expected = &d
	}

	leaf, err := source.Leaf(args[0])
	if err != nil {
		return err
	}

	p, err := a.loadProof(cmd.Context(), leaf, args[1:], opts.offline)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	root := p.Derive(leaf)
	printField(out, "leaf", leaf.Hex())
	printField(out, "operations", fmt.Sprint(p.Len()))
	for _, f := range formats {
		label := "root"
		if len(formats) > 1 {
			label += "." + string(f)
		}
		value, err := crypto.Render(root, f)
		if err != nil {
			return err
		}
		printField(out, label, value)
	}

	if expected == nil {
		printField(out, "status", "derived")
		return nil
	}

	result := proof.Verify(leaf, p, *expected)
	if !result.Included {
		printField(out, "status", "mismatch")
		return result.Err()
	}

	printField(out, "status", "included")
	a.logger.Debugw("proof verified", "leaf", leaf.Hex(), "root", root.Hex())
	return nil
}

// loadProof reads the proof named on the command line, or the stored one
func (a *app) loadProof(ctx context.Context, leaf crypto.Digest, args []string, offline bool) (*proof.Proof, error) {
	if len(args) > 0 {
		arg := args[0]
		var fetcher source.Fetcher
		if source.IsURL(arg) {
			if offline {
				return nil, fmt.Errorf("cannot fetch %s with --offline", arg)
			}
			c, err := a.Client()
			if err != nil {
				return nil, err
			}
			fetcher = c
		}

		p, _, err := source.Proof(ctx, arg, fetcher)
		return p, err
	}

	store, err := a.openStore()
	if err != nil {
		return nil, err
	}
	defer store.Close()

	receipt, err := store.Get(leaf)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("no proof given and no receipt stored for %s", leaf.Hex())
	}
	if err != nil {
		return nil, err
	}

	if receipt.Proof != nil {
		p, err := proof.Parse(receipt.Proof)
		if err != nil {
			return nil, fmt.Errorf("cached proof of %s: %w", leaf.Hex(), err)
		}
		return p, nil
	}

	if offline {
		return nil, fmt.Errorf("proof of %s has not been fetched yet, run without --offline", leaf.Hex())
	}

	c, err := a.Client()
	if err != nil {
		return nil, err
	}
	p, raw, err := source.Proof(ctx, receipt.URL, c)
	if err != nil {
		return nil, err
	}

	if err := store.AttachProof(leaf, raw); err != nil {
		a.logger.Warnw("failed to cache proof", "leaf", leaf.Hex(), "error", err)
	}

	return p, nil
}

func parseFormats(s string) ([]crypto.Format, error) {
	if strings.EqualFold(s, formatAll) {
		return crypto.Formats, nil
	}

	f, err := crypto.ParseFormat(s)
	if err != nil {
		return nil, err
	}
	return []crypto.Format{f}, nil
}

func printField(w io.Writer, label, value string) {
	_, _ = fmt.Fprintf(w, "%-10s %s\n", label, value)
}

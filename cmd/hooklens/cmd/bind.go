package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/apex/log"
	"github.com/spf13/cobra"

	"github.com/tender-barbarian/hooklens/internal/binder"
	"github.com/tender-barbarian/hooklens/internal/indexer"
	"github.com/tender-barbarian/hooklens/internal/reflector"
)

func init() {
	rootCmd.AddCommand(bindCmd)
}

var bindCmd = &cobra.Command{
	Use:   "bind <source.js>",
	Short: "Check the hook table against the identifiers a host build defines",
	Long: `Replays the hook table into a registrar that knows only the classes and
enums declared in <source.js>. Cached hooks are used when present, so this
reports which entries went stale after the host was rebuilt.`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		src, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", args[0], err)
		}
		cat, err := indexer.New().Index(cmd.Context(), src)
		if err != nil {
			return fmt.Errorf("failed to index %s: %w", args[0], err)
		}

		p, err := e.refl.Load(cmd.Context(), reflector.SourceFunc(func(context.Context) ([]byte, error) {
			return src, nil
		}), false)
		if err != nil {
			return err
		}

		classes, enums := p.Bind(binder.NewManifest(cat.Names()...))
		failed := len(classes.Failed) + len(enums.Failed)
		fmt.Printf("bound %d hooks, %d failed\n", len(classes.Bound)+len(enums.Bound), failed)
		if failed > 0 {
			log.Warn("stale hooks found, re-run `hooklens reflect --force`")
			return fmt.Errorf("%d hooks failed to bind", failed)
		}
		return nil
	},
}

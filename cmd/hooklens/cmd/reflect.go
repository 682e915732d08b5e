package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/apex/log"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tender-barbarian/hooklens/internal/reflector"
)

func init() {
	rootCmd.AddCommand(reflectCmd)

	reflectCmd.Flags().BoolP("force", "f", false, "Re-derive hooks from source even if some are cached")
	reflectCmd.Flags().BoolP("watch", "w", false, "Re-derive hooks whenever the source file changes")
	viper.BindPFlag("reflect.force", reflectCmd.Flags().Lookup("force"))
	viper.BindPFlag("reflect.watch", reflectCmd.Flags().Lookup("watch"))
}

var reflectCmd = &cobra.Command{
	Use:           "reflect <source.js>",
	Short:         "Resolve and cache the hook table of a host source file",
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		path := filepath.Clean(args[0])

		p, err := e.refl.Load(cmd.Context(), reflector.FileSource(path), viper.GetBool("reflect.force"))
		if err != nil {
			return err
		}
		report(e.refl, p)

		if !viper.GetBool("reflect.watch") {
			return nil
		}
		return watchSource(cmd.Context(), e.refl, path)
	},
}

// report prints the pass summary and logs every unresolved registry entry.
func report(r *reflector.Reflector, p *reflector.Pass) {
	missing := r.Missing(p)
	for _, name := range missing {
		log.WithField("logical", name).Warn("unresolved")
	}
	source := "source"
	if p.Warm {
		source = "cache"
	}
	fmt.Printf("resolved %d class and %d enum hooks from %s (%d unresolved)\n",
		p.Hooks.Classes.Len(), p.Hooks.Enums.Len(), source, len(missing))
}

// watchSource runs a cold pass every time path is written until interrupted.
// The parent directory is watched so editors that replace the file are seen.
func watchSource(parent context.Context, r *reflector.Reflector, path string) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}
	log.WithField("path", path).Info("watching for changes")

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path || !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
				continue
			}
			log.Debugf("event: %s", event.String())
			p, err := r.Load(ctx, reflector.FileSource(path), true)
			if err != nil {
				log.WithError(err).Error("reflection failed, keeping cached hooks")
				continue
			}
			report(r, p)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.WithError(err).Error("watcher error")
		}
	}
}

package cmd

import (
	"fmt"

	"github.com/apex/log"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tender-barbarian/hooklens/internal/tools"
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("cache-size", 8, "Number of indexed sources kept in memory")
	viper.BindPFlag("cache-size", serveCmd.Flags().Lookup("cache-size"))
}

var serveCmd = &cobra.Command{
	Use:           "serve",
	Short:         "Serve the hooklens tools over MCP on stdio",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		sess, err := tools.NewSession(e.refl, e.cfg.CacheSize)
		if err != nil {
			return err
		}

		version := AppVersion
		if version == "" {
			version = "dev"
		}
		s := server.NewMCPServer("hooklens", version)
		tools.Register(s, sess)

		log.Info("serving MCP on stdio")
		if err := server.ServeStdio(s); err != nil {
			return fmt.Errorf("serving MCP: %w", err)
		}
		return nil
	},
}

package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/tender-barbarian/hooklens/internal/config"
)

func init() {
	rootCmd.AddCommand(signaturesCmd)

	signaturesCmd.Flags().BoolP("json", "j", false, "Output as JSON")
	viper.BindPFlag("signatures.json", signaturesCmd.Flags().Lookup("json"))
}

var signaturesCmd = &cobra.Command{
	Use:           "signatures",
	Aliases:       []string{"sigs"},
	Short:         "Print the signature registry",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(viper.GetViper())
		if err != nil {
			return err
		}
		reg, err := cfg.LoadRegistry()
		if err != nil {
			return err
		}

		var out []byte
		if viper.GetBool("signatures.json") {
			out, err = json.MarshalIndent(reg, "", "  ")
		} else {
			out, err = yaml.Marshal(reg)
		}
		if err != nil {
			return fmt.Errorf("failed to marshal registry: %w", err)
		}
		fmt.Print(string(out))
		return nil
	},
}

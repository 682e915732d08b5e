package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tender-barbarian/hooklens/internal/hooktab"
)

func init() {
	rootCmd.AddCommand(hooksCmd)

	hooksCmd.Flags().BoolP("json", "j", false, "Output as JSON")
	viper.BindPFlag("hooks.json", hooksCmd.Flags().Lookup("json"))
}

var hooksCmd = &cobra.Command{
	Use:           "hooks",
	Short:         "Print the cached hook table",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		t := e.refl.LoadFromStore(cmd.Context()).Hooks

		if viper.GetBool("hooks.json") {
			out, err := json.MarshalIndent(t, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal hooks: %w", err)
			}
			fmt.Println(string(out))
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		printEntries(w, "class", t.Classes.Entries())
		printEntries(w, "enum", t.Enums.Entries())
		return w.Flush()
	},
}

func printEntries(w *tabwriter.Writer, kind string, entries []hooktab.Entry) {
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\n", kind, e.Logical(), e.Obfuscated())
	}
}

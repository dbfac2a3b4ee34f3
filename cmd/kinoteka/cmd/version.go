package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/kinoteka/internal/version"
)

var versionOutput string

// versionCmd represents the version command.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  "Print the version, commit, and build date of kinoteka.",
	// version must work without a valid config
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	RunE: func(cmd *cobra.Command, _ []string) error {
		if versionOutput == "" || versionOutput == outputTable {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version.String())
			return err
		}
		return writeStructured(cmd.OutOrStdout(), versionOutput, version.GetInfo())
	},
}

func init() {
	versionCmd.Flags().StringVarP(&versionOutput, "output", "o", "", "output format (json, yaml)")
	rootCmd.AddCommand(versionCmd)
}

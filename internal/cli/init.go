package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newInitCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize todos configuration and storage",
		Long:  "Write a default config.yaml if none exists, then create the data directory and database.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			written, err := writeConfigIfMissing(rt.dirs.Config, rt.flags.dataDir)
			if err != nil {
				return fmt.Errorf("write config: %w", err)
			}

			backend, err := rt.openSQLite()
			if err != nil {
				return err
			}
			if err := backend.Close(); err != nil {
				return fmt.Errorf("finalize storage: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "todos initialized successfully")
			if written {
				fmt.Fprintln(out, "  wrote config.yaml")
			}
			fmt.Fprintln(out, "  config:", rt.dirs.Config)
			fmt.Fprintln(out, "  data:  ", rt.dirs.Data)
			return nil
		},
	}
}

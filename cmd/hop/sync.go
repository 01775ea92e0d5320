package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// syncCmd runs one synchronization round with the remote copy
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Merge the local links with the remote copy",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		core, err := openCore(cmd.Context(), cmd, true)
		if err != nil {
			return err
		}
		defer core.Close()

		res, err := core.SyncNow(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if res.Report.IsZero() {
			fmt.Fprintln(out, "✅ Already in sync")
			return nil
		}
		r := res.Report
		fmt.Fprintf(out, "✅ Synced: %d new local, %d new remote, %d local dropped, %d remote dropped\n",
			r.NewLocal, r.NewRemote, r.DroppedLocal, r.DroppedRemote)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

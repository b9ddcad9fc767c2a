package cmd

import (
	"fmt"

	"github.com/kiosk404/warp/pkg/cli/genericclioptions"
	"github.com/kiosk404/warp/pkg/utils/json"
	"github.com/kiosk404/warp/pkg/version"
	"github.com/spf13/cobra"
)

func newCmdVersion(ioStreams genericclioptions.IOStreams) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.Get()
			if !asJSON {
				fmt.Fprintf(ioStreams.Out, "wrp %s (commit %s, built %s, %s %s)\n",
					info.GitVersion, info.GitCommit, info.BuildDate, info.GoVersion, info.Platform)
				return nil
			}
			data, err := json.MarshalIndent(info, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(ioStreams.Out, string(data))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}

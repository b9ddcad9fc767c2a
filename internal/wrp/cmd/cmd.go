package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/kiosk404/warp/internal/wrp/cmd/chat"
	"github.com/kiosk404/warp/internal/wrp/cmd/history"
	"github.com/kiosk404/warp/internal/wrp/cmd/tools"
	cmdutil "github.com/kiosk404/warp/internal/wrp/cmd/util"
	"github.com/kiosk404/warp/internal/wrp/options"
	"github.com/kiosk404/warp/pkg/cli/genericclioptions"
	"github.com/kiosk404/warp/pkg/utils/cliflag"
	"github.com/spf13/cobra"
)

// NewDefaultWrpCommand creates the `wrp` command with default arguments.
func NewDefaultWrpCommand() *cobra.Command {
	return NewWrpCommand(os.Stdin, os.Stdout, os.Stderr)
}

func NewWrpCommand(in io.Reader, out, err io.Writer) *cobra.Command {
	// Parent command to which all subcommands are added.
	cmds := &cobra.Command{
		Use:   "wrp",
		Short: "wrp connects a chat model to MCP tool servers",
		Long: Banner() + "\n" + cmdutil.LongDesc(`
		wrp is a universal MCP client. It starts the tool servers named in the
		configuration, offers their tools to the configured model and runs the
		tool calls the model asks for.

		Every option can be set in the --conf YAML file or overridden by the
		flag of the same name.`),
		Run:          runHelp,
		SilenceUsage: true,
	}
	cmds.SetIn(in)
	cmds.SetOut(out)
	cmds.SetErr(err)

	// Every option section is a persistent flag set, so each subcommand can
	// override the file.
	fss := options.NewOptions().Flags()
	addGlobalFlags(fss.FlagSet("global"))
	flags := cmds.PersistentFlags()
	fss.AddTo(flags)

	// From this point and forward we get warnings on flags that contain "_" separators
	cmds.SetGlobalNormalizationFunc(cliflag.WarnWordSepNormalizeFunc)

	ioStreams := genericclioptions.IOStreams{In: in, Out: out, ErrOut: err}
	f := cmdutil.NewFactory(GetConfigPath, flags)

	cmds.AddCommand(
		chat.NewCmdChat(f, ioStreams),
		tools.NewCmdTools(f, ioStreams),
		history.NewCmdHistory(f, ioStreams),
		newCmdVersion(ioStreams),
	)

	cmds.SetUsageFunc(func(cmd *cobra.Command) error {
		w := cmd.OutOrStderr()
		fmt.Fprintf(w, "Usage:\n  %s\n", cmd.UseLine())
		if cmd.HasAvailableSubCommands() {
			fmt.Fprint(w, "\nAvailable Commands:\n")
			for _, c := range cmd.Commands() {
				if c.IsAvailableCommand() {
					fmt.Fprintf(w, "  %-10s %s\n", c.Name(), c.Short)
				}
			}
		}
		if cmd.HasAvailableLocalFlags() && cmd != cmds {
			fmt.Fprintf(w, "\nFlags:\n%s", cmd.LocalNonPersistentFlags().FlagUsages())
		}
		cliflag.PrintSections(w, fss, 0)
		return nil
	})

	return cmds
}

func runHelp(cmd *cobra.Command, args []string) {
	_ = cmd.Help()
}

package history

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/gosuri/uitable"
	"github.com/kiosk404/warp/internal/wrp/cmd/util"
	"github.com/kiosk404/warp/internal/wrp/service/agents"
	"github.com/kiosk404/warp/internal/wrp/service/agents/domain/entity"
	"github.com/kiosk404/warp/internal/wrp/service/agents/domain/repo"
	"github.com/kiosk404/warp/pkg/cli/genericclioptions"
	"github.com/mitchellh/go-wordwrap"
	"github.com/spf13/cobra"
)

var historyExample = util.Examples(`
		# List stored sessions (requires store.type: boltdb)
		wrp history --conf wrp.yaml

		# Print one transcript
		wrp history --conf wrp.yaml 6f1c2a7e-3d0b-4c1e-9a55-2b1f0f5d9c11

		# Delete a transcript
		wrp history --conf wrp.yaml --delete 6f1c2a7e-3d0b-4c1e-9a55-2b1f0f5d9c11`)

type HistoryOptions struct {
	Delete bool

	factory util.Factory
	genericclioptions.IOStreams
}

func NewCmdHistory(f util.Factory, ioStreams genericclioptions.IOStreams) *cobra.Command {
	o := &HistoryOptions{factory: f, IOStreams: ioStreams}

	cmd := &cobra.Command{
		Use:                   "history [session-id]",
		DisableFlagsInUseLine: true,
		Short:                 "Show stored chat transcripts",
		Long: util.LongDesc(`
		List the sessions kept by the transcript store, or print one of them.

		Transcripts survive the process only with store.type set to boltdb.`),
		Example: historyExample,
		Args:    cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			util.CheckErr(o.Run(cmd.Context(), args))
		},
	}
	cmd.Flags().BoolVar(&o.Delete, "delete", o.Delete, "Delete the given session instead of printing it.")
	return cmd
}

func (o *HistoryOptions) Run(ctx context.Context, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	defer o.factory.Close()

	opts, err := o.factory.Options()
	if err != nil {
		return err
	}
	if opts.StoreOptions.Type != agents.StoreBoltDB {
		fmt.Fprintf(o.ErrOut, "store.type is %q, transcripts are not kept between runs\n", opts.StoreOptions.Type)
	}
	m, err := o.factory.Agents(ctx)
	if err != nil {
		return err
	}

	switch {
	case len(args) == 0:
		if o.Delete {
			return fmt.Errorf("--delete needs a session id")
		}
		return ListSessions(ctx, m.Sessions, o.Out)
	case o.Delete:
		if err := m.Sessions.Delete(ctx, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(o.Out, "session %s deleted\n", args[0])
		return nil
	default:
		s, err := m.Sessions.Get(ctx, args[0])
		if err != nil {
			return err
		}
		PrintTranscript(o.Out, s)
		return nil
	}
}

// ListSessions prints one row per stored session, newest first.
func ListSessions(ctx context.Context, sessions repo.SessionRepository, w io.Writer) error {
	list, err := sessions.List(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(w, "No sessions found.")
		return nil
	}

	table := uitable.New()
	table.AddRow("ID", "SERVER", "PROVIDER", "MESSAGES", "UPDATED")
	for _, s := range list {
		table.AddRow(s.ID, s.Server, s.Provider, len(s.Messages), s.UpdatedAt.Local().Format(time.DateTime))
	}
	fmt.Fprintln(w, table)
	return nil
}

// PrintTranscript prints a session's messages in order.
func PrintTranscript(w io.Writer, s *entity.Session) {
	fmt.Fprintf(w, "Session %s (server %s, provider %s)\n", s.ID, s.Server, s.Provider)
	for _, msg := range s.Messages {
		label := "you"
		if msg.Role == entity.RoleAssistant {
			label = "assistant"
		}
		fmt.Fprintf(w, "\n%s [%s]:\n%s\n", label, msg.CreatedAt.Local().Format(time.TimeOnly), wordwrap.WrapString(msg.Content, 100))
	}
	if u := s.Usage; u != nil && u.TotalTokens > 0 {
		fmt.Fprintf(w, "\ntokens: %d prompt, %d completion, %d total\n", u.PromptTokens, u.CompletionTokens, u.TotalTokens)
	}
}

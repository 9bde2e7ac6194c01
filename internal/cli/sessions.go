package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/todos/pkg/types"
)

func newSessionsCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "List stored sessions, most recently used first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := rt.openDurableStore("sessions")
			if err != nil {
				return err
			}
			defer store.Close()

			infos, err := store.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("list sessions: %w", err)
			}
			if rt.flags.jsonMode {
				return writeJSON(cmd.OutOrStdout(), infos)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "SESSION\tLISTS\tUPDATED")
			for _, info := range infos {
				fmt.Fprintf(tw, "%s\t%d\t%s\n", info.SessionID, info.Lists, info.UpdatedAt.Format(time.RFC3339))
			}
			return tw.Flush()
		},
	}
}

func newShowCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "show <session-id>",
		Short: "Display the lists and pending messages of a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := rt.openDurableStore("show")
			if err != nil {
				return err
			}
			defer store.Close()

			sess, err := store.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if rt.flags.jsonMode {
				return writeJSON(cmd.OutOrStdout(), sess.Record())
			}
			printSession(cmd.OutOrStdout(), sess)
			return nil
		},
	}
}

func printSession(w io.Writer, sess *types.Session) {
	fmt.Fprintf(w, "session %s (updated %s)\n", sess.ID, sess.UpdatedAt.Format(time.RFC3339))
	for _, list := range sess.Lists() {
		state := "open"
		if list.IsDone() {
			state = "done"
		}
		fmt.Fprintf(w, "\n#%d %s [%s, %d/%d]\n", list.ID, list.Name, state, len(list.AllDone()), list.Size())
		for todo := range list.Todos() {
			fmt.Fprintf(w, "  %d. %s\n", todo.ID, todo)
		}
	}
	for _, msg := range sess.Messages() {
		fmt.Fprintf(w, "\npending %s: %s\n", msg.Kind, msg.Text)
	}
}

func newPruneCmd(rt *runtime) *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete sessions idle longer than the session TTL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ttl := rt.settings.SessionTTL
			if cmd.Flags().Changed("older-than") {
				ttl = olderThan
			}
			if ttl <= 0 {
				return fmt.Errorf("%w: prune needs a positive TTL", errUsage)
			}

			store, err := rt.openDurableStore("prune")
			if err != nil {
				return err
			}
			defer store.Close()

			n, err := pruneSessions(cmd.Context(), store, ttl, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "pruned %d session(s)\n", n)
			return nil
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 0, "idle age to prune (default: session_ttl)")
	return cmd
}

func pruneSessions(ctx context.Context, store types.SessionStore, ttl time.Duration, now time.Time) (int, error) {
	n, err := store.Prune(ctx, now.Add(-ttl))
	if err != nil {
		return 0, fmt.Errorf("prune sessions: %w", err)
	}
	return n, nil
}

func newExportCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file.jsonl>",
		Short: "Write every stored session to a JSONL file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := rt.openSQLite()
			if err != nil {
				return err
			}
			defer backend.Close()

			n, err := backend.ExportJSONL(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d session(s) to %s\n", n, args[0])
			return nil
		},
	}
}

func newImportCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.jsonl>",
		Short: "Load sessions from a JSONL file, replacing sessions with the same id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := rt.openSQLite()
			if err != nil {
				return err
			}
			defer backend.Close()

			n, err := backend.ImportJSONL(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("import: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d session(s) from %s\n", n, args[0])
			return nil
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

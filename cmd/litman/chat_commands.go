package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"litman/internal/library"
	"litman/internal/session"
	"litman/internal/textutil"
	"litman/internal/workflow"
)

func newAskCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <id> <question>...",
		Short: "Ask a question about an item",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseItemID(args[0])
			if err != nil {
				return err
			}
			question := strings.Join(args[1:], " ")
			return ctx.converse(cmd, id, func(runCtx context.Context, s *session.Session) error {
				if err := s.Manager().SetActive(runCtx, id); err != nil {
					return err
				}
				return s.Manager().Submit(runCtx, workflow.ChatRequest(0, question))
			})
		},
	}
}

func newTranslateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "translate <id> <text>...",
		Short: "Translate a passage, logged against an item",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseItemID(args[0])
			if err != nil {
				return err
			}
			passage := strings.Join(args[1:], " ")
			return ctx.converse(cmd, id, func(runCtx context.Context, s *session.Session) error {
				return s.Manager().Submit(runCtx, workflow.TranslateRequest(id, passage))
			})
		},
	}
}

// converse runs a conversation submission and prints the entry it appended.
func (c *commandContext) converse(cmd *cobra.Command, id int64, submit func(context.Context, *session.Session) error) error {
	report, err := c.withSession(cmd, submit)
	if err != nil {
		return err
	}
	if err := c.withStore(func(store *library.Store) error {
		log, err := store.LoadChat(cmd.Context(), id)
		if err != nil {
			return err
		}
		if len(log) == 0 {
			return nil
		}
		last := log[len(log)-1]
		if last.Role == library.RoleUser {
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), strings.TrimSpace(last.Content))
		return nil
	}); err != nil {
		return err
	}
	return report.err()
}

func newChatLogCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	var full bool
	cmd := &cobra.Command{
		Use:   "chat-log <id>",
		Short: "Show the conversation log of an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseItemID(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *library.Store) error {
				if _, err := lookupItem(cmd.Context(), store, id); err != nil {
					return err
				}
				log, err := store.LoadChat(cmd.Context(), id)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, log)
				}
				out := cmd.OutOrStdout()
				if len(log) == 0 {
					fmt.Fprintf(out, "No conversation for item %d\n", id)
					return nil
				}
				if full {
					for _, entry := range log {
						fmt.Fprintf(out, "[%s] %s (%s)\n%s\n\n", entry.CreatedAt.Local().Format("2006-01-02 15:04:05"), entry.Role, entry.Tag, entry.Content)
					}
					return nil
				}
				rows := make([][]string, 0, len(log))
				for _, entry := range log {
					rows = append(rows, []string{
						entry.CreatedAt.Local().Format("01-02 15:04"),
						entry.Role,
						entry.Tag,
						textutil.Snippet(strings.Join(strings.Fields(entry.Content), " "), 120),
					})
				}
				fmt.Fprintln(out, renderTable([]column{
					{header: "Time"},
					{header: "Role"},
					{header: "Tag"},
					{header: "Content", maxWidth: 60},
				}, rows))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&full, "full", false, "Print every entry in full instead of a table")
	return cmd
}

func newClearChatCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-chat <id>",
		Short: "Empty the conversation log of an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseItemID(args[0])
			if err != nil {
				return err
			}
			if _, err := ctx.withSession(cmd, func(runCtx context.Context, s *session.Session) error {
				return s.Manager().ClearChat(runCtx, id)
			}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared conversation for item %d\n", id)
			return nil
		},
	}
}

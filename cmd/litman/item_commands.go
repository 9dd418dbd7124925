package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"litman/internal/config"
	"litman/internal/extract"
	"litman/internal/library"
	"litman/internal/services"
	"litman/internal/session"
	"litman/internal/workflow"
)

func newAddCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "add <path>...",
		Short: "Ingest documents and analyze them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			report, err := ctx.withSession(cmd, func(runCtx context.Context, s *session.Session) error {
				accepted := 0
				for _, arg := range args {
					path, err := config.ExpandPath(arg)
					if err != nil {
						return err
					}
					if !extract.Supported(path) {
						fmt.Fprintf(out, "Skipped %s (unsupported file type)\n", arg)
						continue
					}
					err = s.Manager().Submit(runCtx, workflow.IngestRequest(path))
					switch {
					case errors.Is(err, services.ErrDuplicate):
						fmt.Fprintf(out, "Skipped %s (already in the library or queued)\n", arg)
					case err != nil:
						return err
					default:
						accepted++
						fmt.Fprintf(out, "Queued %s\n", path)
					}
				}
				if accepted == 0 {
					return errNothingToDo
				}
				return nil
			})
			if errors.Is(err, errNothingToDo) {
				return nil
			}
			if err != nil {
				return err
			}
			return report.err()
		},
	}
}

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <id>",
		Short: "Regenerate the analysis of an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseItemID(args[0])
			if err != nil {
				return err
			}
			report, err := ctx.withSession(cmd, func(runCtx context.Context, s *session.Session) error {
				return s.Manager().Submit(runCtx, workflow.AnalysisRequest(id))
			})
			if err != nil {
				return err
			}
			if err := report.err(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Analysis updated for item %d (see: litman show %d)\n", id, id)
			return nil
		},
	}
}

// itemView is the JSON shape of an item.
type itemView struct {
	ID             int64  `json:"id"`
	Title          string `json:"title"`
	SourcePath     string `json:"source_path"`
	ContentRefined bool   `json:"content_refined"`
	HasAnalysis    bool   `json:"has_analysis"`
	AnalyzedAt     string `json:"analyzed_at,omitempty"`
	CreatedAt      string `json:"created_at"`
	Analysis       string `json:"analysis,omitempty"`
	Notes          int    `json:"notes"`
}

func newItemView(item *library.Item) itemView {
	view := itemView{
		ID:             item.ID,
		Title:          displayTitle(item.DisplayName),
		SourcePath:     item.SourcePath,
		ContentRefined: item.ContentRefined,
		HasAnalysis:    item.HasAnalysis(),
		CreatedAt:      item.CreatedAt.Format(time.RFC3339),
	}
	if item.HasAnalysis() {
		view.AnalyzedAt = item.AnalyzedAt.Format(time.RFC3339)
	}
	return view
}

func newListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List library items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *library.Store) error {
				items, err := store.List(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					views := make([]itemView, 0, len(items))
					for _, item := range items {
						views = append(views, newItemView(item))
					}
					return writeJSON(cmd, views)
				}
				out := cmd.OutOrStdout()
				if len(items) == 0 {
					fmt.Fprintln(out, "Library is empty (add documents with: litman add <path>)")
					return nil
				}
				rows := make([][]string, 0, len(items))
				for _, item := range items {
					rows = append(rows, []string{
						strconv.FormatInt(item.ID, 10),
						displayTitle(item.DisplayName),
						yesNo(item.ContentRefined),
						yesNo(item.HasAnalysis()),
						item.CreatedAt.Local().Format("2006-01-02 15:04"),
					})
				}
				fmt.Fprintln(out, renderTable([]column{
					{header: "ID", align: alignRight},
					{header: "Title", maxWidth: 48},
					{header: "Refined"},
					{header: "Analyzed"},
					{header: "Added"},
				}, rows))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	var showContent bool
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show an item and its analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseItemID(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *library.Store) error {
				runCtx := cmd.Context()
				item, err := lookupItem(runCtx, store, id)
				if err != nil {
					return err
				}
				analysis, hasAnalysis, err := store.LoadAnalysis(runCtx, id)
				if err != nil {
					return err
				}
				notes, err := store.LoadNotes(runCtx, id)
				if err != nil {
					return err
				}

				view := newItemView(item)
				view.Analysis = analysis
				view.Notes = len(notes)
				if asJSON {
					return writeJSON(cmd, view)
				}

				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				for _, line := range renderSectionHeader(view.Title, colorize) {
					fmt.Fprintln(out, line)
				}
				fmt.Fprintf(out, "ID:        %d\n", item.ID)
				fmt.Fprintf(out, "Source:    %s\n", item.SourcePath)
				fmt.Fprintf(out, "Added:     %s\n", item.CreatedAt.Local().Format("2006-01-02 15:04"))
				fmt.Fprintf(out, "Refined:   %s\n", yesNo(item.ContentRefined))
				if len(notes) > 0 {
					fmt.Fprintf(out, "Notes:     %d\n", len(notes))
				}
				fmt.Fprintln(out)
				if hasAnalysis {
					fmt.Fprintln(out, strings.TrimSpace(analysis))
				} else {
					fmt.Fprintf(out, "No analysis yet (run: litman analyze %d)\n", item.ID)
				}
				if showContent {
					content, err := store.LoadContent(runCtx, id)
					if err != nil {
						return err
					}
					fmt.Fprintln(out)
					for _, line := range renderSectionHeader("Content", colorize) {
						fmt.Fprintln(out, line)
					}
					fmt.Fprintln(out, content)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&showContent, "content", false, "Also print the stored content")
	return cmd
}

func newRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Delete an item and its artifacts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseItemID(args[0])
			if err != nil {
				return err
			}
			if _, err := ctx.withSession(cmd, func(runCtx context.Context, s *session.Session) error {
				return s.Manager().RemoveItem(runCtx, id)
			}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed item %d\n", id)
			return nil
		},
	}
}

var titleCaser = cases.Title(language.English, cases.NoLower)

// displayTitle turns a file name into a title-cased label.
func displayTitle(name string) string {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	stem = strings.NewReplacer("_", " ", "-", " ").Replace(stem)
	stem = strings.Join(strings.Fields(stem), " ")
	if stem == "" {
		return name
	}
	return titleCaser.String(stem)
}

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sandeepkv93/tasklist/internal/commands"
	"github.com/sandeepkv93/tasklist/internal/model"
	"github.com/sandeepkv93/tasklist/internal/store"
	"github.com/sandeepkv93/tasklist/internal/views"
	"github.com/spf13/cobra"
)

func (a *app) newAddCmd() *cobra.Command {
	var category, priority, due string
	cmd := &cobra.Command{
		Use:   "add <title>[;<title>...]",
		Short: "Add one or more items",
		Long: `Adds one item per title. Several titles may be given in one argument
separated by the configured delimiter (";" by default); all of them share
the category, priority and due date flags.

Example:
  tasklist add "Buy milk; Walk dog" --category home --priority 2 --due 2026-05-01`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.loadStore(cmd.Context())
			if err != nil {
				return err
			}
			var prio model.Priority
			if strings.TrimSpace(priority) != "" {
				if prio, err = model.ParsePriority(priority); err != nil {
					return err
				}
			}
			res, err := s.Add(cmd.Context(), strings.Join(args, " "), store.AddOptions{
				Category: category,
				Priority: prio,
				Due:      due,
			})
			if err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "%s\n", commands.Describe("added", res))
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "category for the new items")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "priority 1-4 or urgent/high/medium/low")
	cmd.Flags().StringVarP(&due, "due", "d", "", "due date YYYY-MM-DD")
	return cmd
}

func (a *app) newListCmd() *cobra.Command {
	var plain bool
	cmd := &cobra.Command{
		Use:     "list [keyword]",
		Aliases: []string{"ls", "find"},
		Short:   "List items, optionally only those matching a keyword",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.loadStore(cmd.Context())
			if err != nil {
				return err
			}
			keyword := ""
			if len(args) == 1 {
				keyword = args[0]
			}
			entries := s.List(keyword)
			out := cmd.OutOrStdout()
			if plain {
				writePlain(out, entries)
				return nil
			}
			printf(out, "%s\n", views.RenderItemTable(entries))
			return nil
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "tab-separated output without borders")
	return cmd
}

func writePlain(w io.Writer, entries []store.Entry) {
	for _, e := range entries {
		printf(w, "%s\n", strings.Join(views.ItemRow(e), "\t"))
	}
}

func (a *app) newDoneCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "done <selector>",
		Aliases: []string{"complete"},
		Short:   "Mark items done, e.g. 1,3,5-7",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.loadStore(cmd.Context())
			if err != nil {
				return err
			}
			res, err := s.Complete(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "%s\n", commands.Describe("completed", res))
			return nil
		},
	}
}

func (a *app) newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <selector>",
		Aliases: []string{"rm"},
		Short:   "Delete items, e.g. 2-4",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.loadStore(cmd.Context())
			if err != nil {
				return err
			}
			res, err := s.Delete(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "%s\n", commands.Describe("deleted", res))
			return nil
		},
	}
}

func (a *app) newUpdateCmd() *cobra.Command {
	var category, priority, due string
	cmd := &cobra.Command{
		Use:   "update <selector>",
		Short: "Change category, priority or due date of the selected items",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			attrs := commands.Attrs{Category: category, Priority: priority, Due: due}
			if attrs.IsEmpty() {
				return fmt.Errorf("nothing to update: pass --category, --priority or --due")
			}
			patch, err := commands.PatchFromAttrs(attrs)
			if err != nil {
				return err
			}
			s, err := a.loadStore(cmd.Context())
			if err != nil {
				return err
			}
			res, err := s.Update(cmd.Context(), strings.Join(args, " "), patch)
			if err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "%s\n", commands.Describe("updated", res))
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "new category")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "new priority 1-4")
	cmd.Flags().StringVarP(&due, "due", "d", "", "new due date YYYY-MM-DD")
	return cmd
}

func (a *app) newSortCmd() *cobra.Command {
	modes := make([]string, 0, len(store.SortModes()))
	for _, m := range store.SortModes() {
		modes = append(modes, string(m))
	}
	return &cobra.Command{
		Use:       "sort [mode]",
		Short:     "Sort and save the list: " + strings.Join(modes, ", "),
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: modes,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.loadStore(cmd.Context())
			if err != nil {
				return err
			}
			mode := store.SortPriorityThenDue
			if len(args) == 1 {
				if mode, err = store.ParseSortMode(args[0]); err != nil {
					return err
				}
			}
			if err := s.Sort(cmd.Context(), mode); err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "sorted by %s\n", mode)
			return nil
		},
	}
}

func (a *app) newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file|->",
		Short: "Append items from CSV lines: title,category,priority,due",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("open import file: %w", err)
				}
				defer f.Close()
				r = f
			}
			s, err := a.loadStore(cmd.Context())
			if err != nil {
				return err
			}
			res, err := s.Import(cmd.Context(), r)
			if err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "%s\n", commands.Describe("imported", res))
			return nil
		},
	}
}

func (a *app) newExecCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exec <command line>",
		Short: "Run one palette command, e.g. exec \"update 1-3 prio:1\"",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := commands.Parse(strings.Join(args, " "))
			if err != nil {
				return err
			}
			s, err := a.loadStore(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			var filter *string
			res, err := commands.Execute(parsed, commands.StoreHandlers(cmd.Context(), s, func(keyword string) {
				filter = &keyword
			}))
			if err != nil {
				return err
			}
			printf(out, "%s\n", res.Message)
			if filter != nil && *filter != "" {
				writePlain(out, s.List(*filter))
			}
			return nil
		},
	}
}

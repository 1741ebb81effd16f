package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tmarshall/daybook"
)

var (
	dbPath     string
	configPath string
)

func newEngine() (*daybook.Engine, error) {
	return daybook.NewEngine(daybook.Options{
		DBPath:     dbPath,
		ConfigPath: configPath,
	})
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "daybook",
		Short: "Local-first personal feed and record store",
		Long: `Daybook keeps a personal content feed (RSS, market news, a daily quote,
a generated note) and your tasks, habits, notes, and goals in one local
SQLite database. Everything works offline; refresh pulls in new items
when you have a connection.`,
	}

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "./daybook.db", "path to the SQLite database")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "./daybook.yaml", "path to the settings file")

	rootCmd.AddCommand(
		refreshCmd(),
		feedCmd(),
		itemsCmd(),
		addCmd(),
		doneCmd(),
		rmCmd(),
		rolloverCmd(),
		purgeCmd(),
		exportCmd(),
		importCmd(),
		wipeCmd(),
		daemonCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func refreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Pull new items from all configured sources",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := newEngine()
			if err != nil {
				return err
			}
			defer eng.Close()

			result, err := eng.Refresh(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Added %d new items\n", len(result.New))
			for _, srcErr := range result.Errors {
				fmt.Fprintf(os.Stderr, "Warning: %v\n", srcErr)
			}
			return nil
		},
	}
}

func feedCmd() *cobra.Command {
	var unreadOnly bool
	var limit int

	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Show the content feed, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := newEngine()
			if err != nil {
				return err
			}
			defer eng.Close()

			items, err := eng.Feed(cmd.Context())
			if err != nil {
				return err
			}
			shown := 0
			for _, item := range items {
				if unreadOnly && item.IsRead {
					continue
				}
				if limit > 0 && shown >= limit {
					break
				}
				marker := " "
				if !item.IsRead {
					marker = "*"
				}
				fmt.Printf("%s [%s] %s  (%s, %s)\n", marker, item.Kind, item.Title,
					item.Source, item.CreatedAt.Format("2006-01-02"))
				fmt.Printf("    id: %s\n", item.ID)
				shown++
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&unreadOnly, "unread", "u", false, "only show unread items")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum items to show (0 = all)")
	return cmd
}

func itemsCmd() *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "items",
		Short: "Show personal items (tasks, habits, notes, goals)",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := newEngine()
			if err != nil {
				return err
			}
			defer eng.Close()

			items, err := eng.PersonalItems(cmd.Context())
			if err != nil {
				return err
			}
			for _, item := range items {
				if kind != "" && string(item.Kind) != kind {
					continue
				}
				status := " "
				if item.IsCompleted {
					status = "x"
				}
				line := fmt.Sprintf("[%s] %s %s", item.Kind, status, item.Title)
				if item.DueDate != nil {
					line += " (due " + item.DueDate.Format("2006-01-02") + ")"
				}
				fmt.Println(line)
				fmt.Printf("    id: %s\n", item.ID)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&kind, "kind", "k", "", "filter by kind (task, habit, note, goal)")
	return cmd
}

func addCmd() *cobra.Command {
	var kind, content, due string

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a personal item, or a spark with --kind spark",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := newEngine()
			if err != nil {
				return err
			}
			defer eng.Close()

			title := strings.Join(args, " ")
			ctx := cmd.Context()

			if kind == "spark" {
				item, err := eng.AddSpark(ctx, title, content)
				if err != nil {
					return err
				}
				fmt.Printf("Added spark %s\n", item.ID)
				return nil
			}

			item := daybook.PersonalItem{
				Kind:    daybook.PersonalKind(kind),
				Title:   title,
				Content: content,
			}
			if due != "" {
				d, err := time.ParseInLocation("2006-01-02", due, time.Local)
				if err != nil {
					return fmt.Errorf("invalid due date %q (want YYYY-MM-DD): %w", due, err)
				}
				item.DueDate = &d
			}
			created, err := eng.CreatePersonal(ctx, item)
			if err != nil {
				return err
			}
			fmt.Printf("Added %s %s\n", created.Kind, created.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&kind, "kind", "k", "task", "item kind (task, habit, note, goal, spark)")
	cmd.Flags().StringVar(&content, "content", "", "item body text")
	cmd.Flags().StringVar(&due, "due", "", "due date for tasks (YYYY-MM-DD)")
	return cmd
}

func doneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Complete a task or record a habit completion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := newEngine()
			if err != nil {
				return err
			}
			defer eng.Close()

			item, err := eng.Complete(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Completed %s: %s\n", item.Kind, item.Title)
			return nil
		},
	}
}

func rmCmd() *cobra.Command {
	var personal bool

	cmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a feed item, or a personal item with --personal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := newEngine()
			if err != nil {
				return err
			}
			defer eng.Close()

			if personal {
				return eng.DeletePersonal(cmd.Context(), args[0])
			}
			return eng.DeleteFeedItem(cmd.Context(), args[0])
		},
	}

	cmd.Flags().BoolVarP(&personal, "personal", "p", false, "delete from the personal collection")
	return cmd
}

func rolloverCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rollover",
		Short: "Move overdue incomplete tasks to today",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := newEngine()
			if err != nil {
				return err
			}
			defer eng.Close()

			changes, err := eng.Rollover(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Rolled over %d tasks\n", len(changes))
			return nil
		},
	}
}

func purgeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Delete completed tasks past their retention window",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := newEngine()
			if err != nil {
				return err
			}
			defer eng.Close()

			deleted, err := eng.PurgeCompleted(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Purged %d tasks\n", len(deleted))
			return nil
		},
	}
}

func exportCmd() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all collections and settings to a snapshot file",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := newEngine()
			if err != nil {
				return err
			}
			defer eng.Close()

			data, err := eng.Export(cmd.Context())
			if err != nil {
				return err
			}
			if outPath == "" || outPath == "-" {
				fmt.Println(string(data))
				return nil
			}
			if err := os.WriteFile(outPath, data, 0o644); err != nil {
				return fmt.Errorf("write snapshot: %w", err)
			}
			fmt.Printf("Exported snapshot to %s\n", outPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")
	return cmd
}

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Restore a snapshot, replacing all local data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read snapshot: %w", err)
			}

			eng, err := newEngine()
			if err != nil {
				return err
			}
			defer eng.Close()

			if err := eng.Import(cmd.Context(), data); err != nil {
				return err
			}
			fmt.Println("Snapshot imported")
			return nil
		},
	}
}

func wipeCmd() *cobra.Command {
	var resetSettings, yes bool

	cmd := &cobra.Command{
		Use:   "wipe",
		Short: "Delete all local data (factory reset with --reset-settings)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("wipe deletes everything; re-run with --yes to confirm")
			}
			eng, err := newEngine()
			if err != nil {
				return err
			}
			defer eng.Close()

			if err := eng.Wipe(cmd.Context(), resetSettings); err != nil {
				return err
			}
			fmt.Println("All collections cleared")
			return nil
		},
	}

	cmd.Flags().BoolVar(&resetSettings, "reset-settings", false, "also reset settings to defaults")
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the wipe")
	return cmd
}

// doRefresh is the daemon's per-cycle body.
func doRefresh(ctx context.Context) error {
	eng, err := newEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	if _, err := eng.Rollover(ctx); err != nil {
		return err
	}
	if _, err := eng.PurgeCompleted(ctx); err != nil {
		return err
	}
	result, err := eng.Refresh(ctx)
	if err != nil {
		return err
	}
	for _, srcErr := range result.Errors {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", srcErr)
	}
	return nil
}

package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/swingbot/journal"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Inspect the action journal",
	Long: `Dump recorded trading actions from a sqlite journal.

Examples:
  swingbot journal --db ./swingbot.sqlite today
  swingbot journal --db ./swingbot.sqlite day 2026-08-29
  swingbot journal --db ./swingbot.sqlite action 01J...`,
}

var journalTodayCmd = &cobra.Command{
	Use:   "today",
	Short: "List today's actions",
	RunE: func(cmd *cobra.Command, args []string) error {
		start := time.Now().Truncate(24 * time.Hour)
		return listActions(start, start.Add(24*time.Hour))
	},
}

var journalDayCmd = &cobra.Command{
	Use:   "day YYYY-MM-DD",
	Short: "List actions for a given day",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		start, err := time.Parse("2006-01-02", args[0])
		if err != nil {
			return fmt.Errorf("bad date %q: %w", args[0], err)
		}
		return listActions(start, start.Add(24*time.Hour))
	},
}

var journalActionCmd = &cobra.Command{
	Use:   "action ID",
	Short: "Show a single action record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		j, err := journal.NewSQLite(journalDBPath)
		if err != nil {
			return err
		}
		defer j.Close()

		rec, err := j.GetAction(args[0])
		if err != nil {
			return err
		}
		printAction(rec)
		return nil
	},
}

var journalDBPath string

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalTodayCmd)
	journalCmd.AddCommand(journalDayCmd)
	journalCmd.AddCommand(journalActionCmd)

	journalCmd.PersistentFlags().StringVar(&journalDBPath, "db", "./swingbot.sqlite", "path to sqlite journal")
}

func listActions(start, end time.Time) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return err
	}
	defer j.Close()

	actions, err := j.ListActionsBetween(start, end)
	if err != nil {
		return err
	}
	if len(actions) == 0 {
		fmt.Println("no actions recorded")
		return nil
	}
	for _, a := range actions {
		printAction(a)
	}
	return nil
}

func printAction(a journal.ActionRecord) {
	fmt.Printf("%s  %-7s %-5s %s  %.4f @ %.2f", a.Time.Format("15:04:05"), a.Action, a.Side, a.Symbol, a.Size, a.Price)
	if a.Action == "close" {
		fmt.Printf("  pnl %.2f%%", a.PnLPct)
	}
	if a.Rule != "" {
		fmt.Printf("  [%s]", a.Rule)
	}
	fmt.Printf("  %s\n", a.Reason)
}

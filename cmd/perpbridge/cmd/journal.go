package cmd

import (
	"fmt"

	"github.com/perpkit/bridge/journal"
	"github.com/spf13/cobra"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query the order journal",
	Long: `Query and display journaled order submissions from the SQLite journal.

Subcommands:
  recent - List the most recent orders
  trade  - List every order placed for a signal trade id

Examples:
  perpbridge journal recent
  perpbridge journal trade sig-20260830-btc`,
}

var journalRecentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List the most recent orders",
	Args:  cobra.NoArgs,
	RunE:  runJournalRecent,
}

var journalTradeCmd = &cobra.Command{
	Use:   "trade <trade-id>",
	Short: "List orders placed for a trade id",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalTrade,
}

var (
	journalDBPath string
	journalLimit  int
)

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalRecentCmd)
	journalCmd.AddCommand(journalTradeCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "./perpbridge.sqlite", "path to SQLite journal DB")
	journalRecentCmd.Flags().IntVarP(&journalLimit, "limit", "n", 20, "maximum orders to list")
}

func runJournalRecent(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	recs, err := j.ListRecent(journalLimit)
	if err != nil {
		return fmt.Errorf("query orders: %w", err)
	}

	printOrders(recs)
	return nil
}

func runJournalTrade(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	recs, err := j.ListByTradeID(args[0])
	if err != nil {
		return fmt.Errorf("query orders: %w", err)
	}

	printOrders(recs)
	return nil
}

func printOrders(recs []journal.OrderRecord) {
	if len(recs) == 0 {
		fmt.Println("no orders found")
		return
	}
	for _, r := range recs {
		line := fmt.Sprintf("%s  %-9s %-4s %-11s price=%s size=%s status=%s mode=%s",
			r.Time.Format("2006-01-02 15:04:05"),
			r.Market, r.Side, r.Type, r.Price, r.Size, r.Status, r.Mode)
		if r.TriggerPrice.Sign() > 0 {
			line += fmt.Sprintf(" trigger=%s", r.TriggerPrice)
		}
		fmt.Println(line)
	}
}

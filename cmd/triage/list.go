package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mixelka/emailtriage/internal/triage"
)

var (
	listView    string
	listDrafts  bool
	listSearch  string
	listWindow  string
	listThreads bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List messages by priority",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show mailbox analytics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	listCmd.Flags().StringVar(&listView, "view", "needs-reply", "View: all, needs-reply, urgent, high, medium, low")
	listCmd.Flags().BoolVar(&listDrafts, "drafts", false, "List drafts")
	listCmd.Flags().StringVar(&listSearch, "search", "", "Match subject or sender")
	listCmd.Flags().StringVar(&listWindow, "date", "", "Date window: today, week, month")
	listCmd.Flags().BoolVar(&listThreads, "threads", false, "Group by thread")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(statsCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	view, err := triage.ParseView(listView)
	if err != nil {
		return err
	}
	window, err := triage.ParseWindow(listWindow)
	if err != nil {
		return err
	}
	filter := triage.Filter{View: view, Drafts: listDrafts, Search: listSearch, Window: window}

	svc, st, err := openService(cmd.Context())
	if err != nil {
		return err
	}
	defer st.Close()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	if listThreads {
		rows, err := svc.ListThreads(cmd.Context(), filter)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(rows)
		}
		fmt.Fprintln(w, "PRIORITY\tTHREAD\tMESSAGES\tFROM\tSUBJECT")
		for _, row := range rows {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", row.Priority, row.ThreadID, row.Total, row.Latest.From, row.Latest.Subject)
		}
		return w.Flush()
	}

	msgs, err := svc.List(cmd.Context(), filter)
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(msgs)
	}
	fmt.Fprintln(w, "PRIORITY\tID\tRECEIVED\tFROM\tSUBJECT")
	for _, msg := range msgs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", msg.ReplyPriority, msg.ID, msg.ReceivedAt.Format("2006-01-02 15:04"), msg.From, msg.Subject)
	}
	return w.Flush()
}

func runStats(cmd *cobra.Command, args []string) error {
	svc, st, err := openService(cmd.Context())
	if err != nil {
		return err
	}
	defer st.Close()

	stats, err := svc.Stats(cmd.Context())
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(stats)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Processed\t%d\n", stats.Processed)
	fmt.Fprintf(w, "Needs reply\t%d\n", stats.NeedsReply)
	fmt.Fprintf(w, "Urgent\t%d\n", stats.Urgent)
	fmt.Fprintf(w, "Unread\t%d\n", stats.Unread)
	fmt.Fprintf(w, "Threads\t%d\n", stats.Threads)
	fmt.Fprintf(w, "Drafts\t%d\n", stats.Drafts)
	fmt.Fprintf(w, "Pending reply minutes\t%d\n", stats.PendingReplyMinutes)
	categories := make([]string, 0, len(stats.ByCategory))
	for category := range stats.ByCategory {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	for _, category := range categories {
		fmt.Fprintf(w, "Category %s\t%d\n", category, stats.ByCategory[category])
	}
	return w.Flush()
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"julferiin-ops/internal/branch"
	"julferiin-ops/internal/logging"
	"julferiin-ops/internal/notify"
)

var (
	notifyJSON     bool
	notifyTitle    string
	notifyMessage  string
	notifyType     string
	notifyBranches string
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Inspect and edit the notification centre",
	Long:  "notify operates on the persisted notification collection used by the simulator and the dashboard.",
}

var notifyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List notifications, newest first",
	Args:  cobra.NoArgs,
	RunE: withStore(func(cmd *cobra.Command, args []string, store *notify.Store) error {
		return printRecords(cmd.OutOrStdout(), store.Notifications())
	}),
}

var notifyToastsCmd = &cobra.Command{
	Use:   "toasts",
	Short: "List the currently visible toasts",
	Args:  cobra.NoArgs,
	RunE: withStore(func(cmd *cobra.Command, args []string, store *notify.Store) error {
		return printRecords(cmd.OutOrStdout(), store.Toasts())
	}),
}

var notifyAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a notification",
	Args:  cobra.NoArgs,
	RunE: withStore(func(cmd *cobra.Command, args []string, store *notify.Store) error {
		kind, err := notify.ParseKind(notifyType)
		if err != nil {
			return err
		}
		return printRecord(cmd.OutOrStdout(), store.Add(notifyTitle, notifyMessage, kind))
	}),
}

var notifyReadCmd = &cobra.Command{
	Use:   "read <id>",
	Short: "Mark a notification as read",
	Args:  cobra.ExactArgs(1),
	RunE: withStore(func(cmd *cobra.Command, args []string, store *notify.Store) error {
		if !store.MarkRead(args[0]) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: unchanged\n", args[0])
		}
		fmt.Fprintf(cmd.OutOrStdout(), "unread: %d\n", store.Unread())
		return nil
	}),
}

var notifyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every notification",
	Args:  cobra.NoArgs,
	RunE: withStore(func(cmd *cobra.Command, args []string, store *notify.Store) error {
		store.ClearAll()
		return nil
	}),
}

var notifyPermissionCmd = &cobra.Command{
	Use:   "permission",
	Short: "Request desktop notification permission",
	Args:  cobra.NoArgs,
	RunE: withStore(func(cmd *cobra.Command, args []string, store *notify.Store) error {
		fmt.Fprintf(cmd.OutOrStdout(), "granted: %t\n", store.RequestPermission(cmd.Context()))
		return nil
	}),
}

var notifyAlertCmd = &cobra.Command{
	Use:   "alert <branch-id>",
	Short: "Send a critical alert to a branch",
	Args:  cobra.ExactArgs(1),
	RunE: withDirector(func(cmd *cobra.Command, d *branch.Director, b branch.Branch) error {
		return printRecord(cmd.OutOrStdout(), d.Alert(b, notifyMessage))
	}),
}

var notifyVerifyCmd = &cobra.Command{
	Use:   "verify <branch-id>",
	Short: "Ask a branch for a compliance verification",
	Args:  cobra.ExactArgs(1),
	RunE: withDirector(func(cmd *cobra.Command, d *branch.Director, b branch.Branch) error {
		return printRecord(cmd.OutOrStdout(), d.Verify(b, notifyMessage))
	}),
}

var notifyReportCmd = &cobra.Command{
	Use:   "report <branch-id>",
	Short: "Record a consolidated report for a branch",
	Args:  cobra.ExactArgs(1),
	RunE: withDirector(func(cmd *cobra.Command, d *branch.Director, b branch.Branch) error {
		return printRecord(cmd.OutOrStdout(), d.Report(b))
	}),
}

func init() {
	notifyCmd.PersistentFlags().BoolVar(&notifyJSON, "json", false, "Print records as JSON")
	notifyAddCmd.Flags().StringVar(&notifyTitle, "title", "", "Notification title")
	notifyAddCmd.Flags().StringVar(&notifyMessage, "message", "", "Notification message")
	notifyAddCmd.Flags().StringVar(&notifyType, "type", string(notify.KindInfo), "Notification type (info, success, warning, error)")
	notifyAddCmd.MarkFlagRequired("title")
	for _, c := range []*cobra.Command{notifyAlertCmd, notifyVerifyCmd, notifyReportCmd} {
		c.Flags().StringVar(&notifyBranches, "branches", "", "Branch directory YAML (defaults to the configured branches)")
	}
	notifyAlertCmd.Flags().StringVar(&notifyMessage, "message", "", "Alert message")
	notifyVerifyCmd.Flags().StringVar(&notifyMessage, "message", "", "Verification message")

	notifyCmd.AddCommand(notifyListCmd, notifyToastsCmd, notifyAddCmd, notifyReadCmd, notifyClearCmd,
		notifyPermissionCmd, notifyAlertCmd, notifyVerifyCmd, notifyReportCmd)
}

type storeRunE func(cmd *cobra.Command, args []string, store *notify.Store) error

// withStore opens the configured store for the duration of one command.
func withStore(fn storeRunE) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		log := logging.New()
		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()
		ctx = logging.NewContext(ctx, log)
		cmd.SetContext(ctx)

		store, cleanup, err := newStore(ctx, cfg.Notifications, newHost(cfg.Notifications), log)
		if err != nil {
			return err
		}
		defer cleanup()
		return fn(cmd, args, store)
	}
}

// withDirector resolves the branch argument and hands over a director bound to the store.
func withDirector(fn func(cmd *cobra.Command, d *branch.Director, b branch.Branch) error) func(*cobra.Command, []string) error {
	return withStore(func(cmd *cobra.Command, args []string, store *notify.Store) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid branch id %q", args[0])
		}
		dir, err := loadBranches(cmd)
		if err != nil {
			return err
		}
		b, ok := dir.Find(id)
		if !ok {
			return fmt.Errorf("branch %d not found", id)
		}
		return fn(cmd, branch.NewDirector(store), b)
	})
}

func loadBranches(cmd *cobra.Command) (*branch.Directory, error) {
	if notifyBranches != "" {
		return branch.Load(notifyBranches)
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return branch.FromConfig(cfg)
}

func printRecords(w io.Writer, recs []notify.Record) error {
	if notifyJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(recs)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tREAD\tCREATED\tTITLE\tMESSAGE")
	for _, r := range recs {
		fmt.Fprintf(tw, "%s\t%s\t%t\t%s\t%s\t%s\n", r.ID, r.Kind, r.Read, r.CreatedAt.Format(time.RFC3339), r.Title, r.Message)
	}
	return tw.Flush()
}

func printRecord(w io.Writer, rec notify.Record) error {
	return printRecords(w, []notify.Record{rec})
}

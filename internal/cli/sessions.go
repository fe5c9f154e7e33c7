package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/docdex/harvest/internal/session"
	"github.com/docdex/harvest/internal/ui"
)

// sessionsCmd represents the sessions command
var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage saved cookie sessions",
	Long: `List, view, and delete saved cookie sessions.

Sessions are stored in the OS keyring where available (file fallback
otherwise) and are reloaded into the browser with --session on the next run.`,
	Example: `  # List all saved sessions
  harvest sessions list

  # View one session
  harvest sessions view doctors

  # Delete a session
  harvest sessions delete doctors`,
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all saved sessions",
	RunE:  runSessionsList,
}

var sessionsViewCmd = &cobra.Command{
	Use:   "view <name>",
	Short: "View details of a saved session",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsView,
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a saved session",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsDelete,
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsViewCmd)
	sessionsCmd.AddCommand(sessionsDeleteCmd)
}

func runSessionsList(cmd *cobra.Command, args []string) error {
	names, err := session.List()
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	if len(names) == 0 {
		fmt.Println("\nNo saved sessions found.")
		fmt.Println("\nA session is saved automatically when a crawl runs with --session=<name>.")
		fmt.Println()
		return nil
	}

	fmt.Printf("\n%s\n\n", ui.Bold(fmt.Sprintf("Saved sessions (%d)", len(names))))
	for _, name := range names {
		data, err := session.Load(name)
		if err != nil {
			fmt.Printf("  %s  %s\n", name, ui.Error("unreadable: "+err.Error()))
			continue
		}
		fmt.Printf("  %s  %s  %d cookies  updated %s\n",
			ui.Bold(name), data.SiteURL, len(data.Cookies),
			data.UpdatedAt.Format(time.RFC822))
	}
	fmt.Println()
	return nil
}

func runSessionsView(cmd *cobra.Command, args []string) error {
	name := args[0]
	data, err := session.Load(name)
	if err != nil {
		return fmt.Errorf("failed to load session %q: %w", name, err)
	}

	fmt.Printf("\n%s\n\n", ui.Bold("Session: "+name))
	fmt.Printf("  Site:    %s\n", data.SiteURL)
	fmt.Printf("  Created: %s\n", data.CreatedAt.Format(time.RFC1123))
	fmt.Printf("  Updated: %s\n", data.UpdatedAt.Format(time.RFC1123))
	fmt.Printf("  Cookies: %d\n", len(data.Cookies))
	for _, c := range data.Cookies {
		expiry := "session"
		if c.Expires > 0 {
			expiry = time.Unix(int64(c.Expires), 0).Format("2006-01-02")
		}
		fmt.Printf("    %s  (domain=%s, expires=%s)\n", c.Name, c.Domain, expiry)
	}
	fmt.Println()
	return nil
}

func runSessionsDelete(cmd *cobra.Command, args []string) error {
	name := args[0]
	if err := session.Delete(name); err != nil {
		return fmt.Errorf("failed to delete session %q: %w", name, err)
	}
	fmt.Printf("%s\n", ui.Success("Deleted session "+name))
	return nil
}

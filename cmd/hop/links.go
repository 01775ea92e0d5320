package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/hop/internal/domain"
	"github.com/MrSnakeDoc/hop/internal/sources"
)

var listCmd = &cobra.Command{
	Use:   "list [query...]",
	Short: "List links matching every query term, most recently used first",
	RunE: func(cmd *cobra.Command, args []string) error {
		core, err := openCore(cmd.Context(), cmd, false)
		if err != nil {
			return err
		}
		defer core.Close()

		limit, err := cmd.Flags().GetInt("limit")
		if err != nil {
			return fmt.Errorf("failed to read --limit: %w", err)
		}

		visible := core.Links.List(strings.Join(args, " "))
		if limit > 0 && len(visible) > limit {
			visible = visible[:limit]
		}

		return printLinks(cmd.OutOrStdout(), visible)
	},
}

// printLinks writes one aligned row per link
func printLinks(w io.Writer, links []domain.Link) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, l := range links {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", l.ID, l.URL, l.Description, lastUsed(l))
	}
	return tw.Flush()
}

var goCmd = &cobra.Command{
	Use:   "go <query...>",
	Short: "Print the link a query names and record the access",
	Long: `Prints the URL when exactly one link matches and records the access.
When several links match, they are listed and nothing is recorded.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		core, err := openCore(cmd.Context(), cmd, false)
		if err != nil {
			return err
		}
		defer core.Close()

		query := strings.Join(args, " ")
		res, err := core.Links.Jump(cmd.Context(), query)
		switch {
		case len(res.Candidates) == 0:
			return fmt.Errorf("no link matches %q", query)
		case !res.Followed:
			_ = printLinks(cmd.OutOrStdout(), res.Candidates)
			return fmt.Errorf("%d links match %q, narrow the query", len(res.Candidates), query)
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), res.Link.URL)
		return nil
	},
}

var addCmd = &cobra.Command{
	Use:   "add <url> [description...]",
	Short: "Add a link",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		core, err := openCore(cmd.Context(), cmd, false)
		if err != nil {
			return err
		}
		defer core.Close()

		link, err := core.Links.Create(cmd.Context(), args[0], strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ Added %s %s\n", link.ID, link.URL)
		return nil
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a link (kept as a tombstone so the deletion syncs)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		core, err := openCore(cmd.Context(), cmd, false)
		if err != nil {
			return err
		}
		defer core.Close()

		if err := core.Links.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ Deleted %s\n", args[0])
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import links from a homepage bookmarks/services yaml or a json export",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		links, err := sources.Load(args[0])
		if err != nil {
			return err
		}

		core, err := openCore(cmd.Context(), cmd, false)
		if err != nil {
			return err
		}
		defer core.Close()

		added, err := core.Links.Import(cmd.Context(), links)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ Imported %d of %d links\n", added, len(links))
		return nil
	},
}

func lastUsed(l domain.Link) string {
	if l.LastAccessedAt == nil {
		return "never"
	}
	return l.LastAccessedAt.Local().Format("2006-01-02 15:04")
}

func init() {
	listCmd.Flags().IntP("limit", "n", 0, "Show at most n links (0 = all)")
	rootCmd.AddCommand(listCmd, goCmd, addCmd, rmCmd, importCmd)
}

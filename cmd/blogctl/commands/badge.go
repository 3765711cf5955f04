package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/oksasatya/go-blog-graph/internal/application"
)

var badgeFilter string

var badgeCmd = &cobra.Command{
	Use:   "badge",
	Short: "Manage the badge catalogue",
}

var badgeCreateCmd = &cobra.Command{
	Use:   "create NAME...",
	Short: "Create one or more badges",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAdmin(cmd.Context(), func(ctx context.Context, admin *application.AdminService) error {
			for _, name := range args {
				b, err := admin.CreateBadge(ctx, name)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created badge %s (id %d)\n", b.Name, b.ID)
			}
			return nil
		})
	},
}

var badgeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List badges",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAdmin(cmd.Context(), func(ctx context.Context, admin *application.AdminService) error {
			badges, err := admin.ListBadges(ctx, badgeFilter)
			if err != nil {
				return err
			}
			if jsonOutput {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(badges)
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME")
			for _, b := range badges {
				fmt.Fprintf(w, "%d\t%s\n", b.ID, b.Name)
			}
			return w.Flush()
		})
	},
}

var badgeDeleteCmd = &cobra.Command{
	Use:   "delete NAME",
	Short: "Delete a badge and untag its posts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAdmin(cmd.Context(), func(ctx context.Context, admin *application.AdminService) error {
			if err := admin.DeleteBadge(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted badge %s\n", args[0])
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(badgeCmd)
	badgeCmd.AddCommand(badgeCreateCmd, badgeListCmd, badgeDeleteCmd)

	badgeListCmd.Flags().StringVar(&badgeFilter, "name", "", "Only badges whose name contains this")
}

package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oksasatya/go-blog-graph/internal/application"
)

var (
	userFirstName string
	userLastName  string
	userPassword  string
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage user accounts",
}

var userCreateCmd = &cobra.Command{
	Use:   "create USERNAME",
	Short: "Create a user and its author profile",
	Long: `Create a user and its author profile.

Examples:
  blogctl user create ana --password 's3cretpass' --first-name Ana
  BLOGCTL_PASSWORD='s3cretpass' blogctl user create ana`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password := userPassword
		if password == "" {
			password = os.Getenv("BLOGCTL_PASSWORD")
		}
		return withAdmin(cmd.Context(), func(ctx context.Context, admin *application.AdminService) error {
			a, err := admin.CreateUser(ctx, application.CreateUserInput{
				Username:  args[0],
				Password:  password,
				FirstName: userFirstName,
				LastName:  userLastName,
			})
			if err != nil {
				return err
			}
			if jsonOutput {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
					"user_id":   a.UserID,
					"author_id": a.ID,
					"username":  a.User.Username,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created user %s (user id %d, author id %d)\n", a.User.Username, a.UserID, a.ID)
			return nil
		})
	},
}

var userDeleteCmd = &cobra.Command{
	Use:   "delete USERNAME",
	Short: "Delete a user",
	Long:  `Delete a user. This is refused while the user still has an author profile.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAdmin(cmd.Context(), func(ctx context.Context, admin *application.AdminService) error {
			if err := admin.DeleteUser(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted user %s\n", args[0])
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userCreateCmd, userDeleteCmd)

	userCreateCmd.Flags().StringVar(&userPassword, "password", "", "Password (or BLOGCTL_PASSWORD)")
	userCreateCmd.Flags().StringVar(&userFirstName, "first-name", "", "First name")
	userCreateCmd.Flags().StringVar(&userLastName, "last-name", "", "Last name")
}

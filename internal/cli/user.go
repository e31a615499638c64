package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Profile management commands",
	}

	cmd.AddCommand(newUserGetCmd())
	cmd.AddCommand(newUserRegisterCmd())
	cmd.AddCommand(newUserStatsCmd())
	cmd.AddCommand(newUserAvatarCmd())

	return cmd
}

func newUserGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <email>",
		Short: "Look up a profile by email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result User
			if err := client.Get("/users/"+url.PathEscape(args[0]), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newUserRegisterCmd() *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "register <email>",
		Short: "Create or update a profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"email": args[0]}
			if username != "" {
				req["username"] = username
			}

			var result User
			if err := client.Post("/users", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Username (defaults to the email's local part)")

	return cmd
}

func newUserStatsCmd() *cobra.Command {
	var won, lost bool

	cmd := &cobra.Command{
		Use:   "stats <email>",
		Short: "Record a win or loss",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if won == lost {
				return fmt.Errorf("exactly one of --won or --lost is required")
			}

			req := map[string]bool{"won": won}
			var result User
			if err := client.Patch("/users/"+url.PathEscape(args[0])+"/stats", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&won, "won", false, "Record a win")
	cmd.Flags().BoolVar(&lost, "lost", false, "Record a loss")

	return cmd
}

func newUserAvatarCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "avatar <email> <image-file>",
		Short: "Upload a profile picture",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields := map[string]string{"email": args[0]}

			var result User
			if err := client.PostFile("/users/profile", fields, "image", args[1], &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

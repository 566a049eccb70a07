package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MartinPJB/BLOG-CMS/models"
)

func newUserCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}
	cmd.AddCommand(newUserCreateCmd(root))
	return cmd
}

type userCreateOptions struct {
	username string
	email    string
	password string
	admin    bool
}

func newUserCreateCmd(root *rootOptions) *cobra.Command {
	opts := userCreateOptions{}
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			e, err := root.setup(ctx)
			if err != nil {
				return err
			}
			defer e.db.Close()

			role := models.RoleMember
			if opts.admin {
				role = models.RoleAdmin
			}
			users := models.NewUsers(e.db, models.WithBcryptCost(e.cfg.Site.BcryptCost))
			u, err := users.Create(ctx, models.UserInput{
				Username: opts.username,
				Email:    opts.email,
				Password: opts.password,
				Role:     role,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created user %d (%s, %s)\n", u.ID, u.Email, u.Role)
			return nil
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&opts.username, "username", "", "display name")
	fs.StringVar(&opts.email, "email", "", "login email")
	fs.StringVar(&opts.password, "password", "", "password (8 to 72 characters)")
	fs.BoolVar(&opts.admin, "admin", false, "grant the admin role")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

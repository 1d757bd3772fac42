package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRegisterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			username, err := a.flagOrPrompt(cmd, "username", "Username:")
			if err != nil {
				return err
			}
			email, _ := cmd.Flags().GetString("email")
			password, err := a.secretFlagOrPrompt(cmd, "password", "Password:")
			if err != nil {
				return err
			}

			if err := a.session.Register(cmd.Context(), username, email, password); err != nil {
				return err
			}
			a.logger.Info("registered", zap.String("username", username))
			a.println(titleStyle.Render(fmt.Sprintf("Welcome, %s! You are signed in.", a.session.User().Username)))
			return nil
		},
	}
	cmd.Flags().String("username", "", "Username")
	cmd.Flags().String("email", "", "Email (optional)")
	cmd.Flags().String("password", "", "Password (prompted when omitted)")
	return cmd
}

func newLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			username, err := a.flagOrPrompt(cmd, "username", "Username:")
			if err != nil {
				return err
			}
			password, err := a.secretFlagOrPrompt(cmd, "password", "Password:")
			if err != nil {
				return err
			}

			if err := a.session.Login(cmd.Context(), username, password); err != nil {
				return err
			}
			a.logger.Info("logged in", zap.String("username", username))
			a.println(titleStyle.Render(fmt.Sprintf("Signed in as %s.", a.session.User().Username)))
			return nil
		},
	}
	cmd.Flags().String("username", "", "Username")
	cmd.Flags().String("password", "", "Password (prompted when omitted)")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored token",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			if err := a.session.Logout(cmd.Context()); err != nil {
				return err
			}
			a.println(bodyStyle.Render("Signed out."))
			return nil
		},
	}
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in player and their stats",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			if err := a.session.Restore(cmd.Context()); err != nil {
				return err
			}
			a.println(renderUser(a.session.User()))
			return nil
		},
	}
}

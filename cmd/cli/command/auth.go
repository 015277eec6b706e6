package command

import (
	"errors"
	"fmt"

	"booksync/cmd/cli/authentication"
	"booksync/cmd/cli/command/client"
	"booksync/cmd/cli/dto"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// authCmd represents the auth command for authentication related subcommands
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authentication commands",
	Long:  `Authenticate with the booksync API server. Supports register, login and logout.`,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a new booksync account",
	RunE: func(cmd *cobra.Command, args []string) error {
		var req dto.RegisterRequest
		req.Username, _ = cmd.Flags().GetString("username")
		req.Password, _ = cmd.Flags().GetString("password")
		req.Email, _ = cmd.Flags().GetString("email")

		ctx, cancel := commandContext(cmd)
		defer cancel()

		response, err := client.NewHTTPClient(apiURL).Register(ctx, &req)
		if err != nil {
			return fmt.Errorf("registration failed: %w", err)
		}

		color.Green("✓ Registration successful! Please login to continue.")
		fmt.Printf("UserID: %s\n", response.UserID)
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Login to your booksync account",
	RunE: func(cmd *cobra.Command, args []string) error {
		var req dto.LoginRequest
		req.Email, _ = cmd.Flags().GetString("email")
		req.Password, _ = cmd.Flags().GetString("password")

		ctx, cancel := commandContext(cmd)
		defer cancel()

		response, err := client.NewHTTPClient(apiURL).Login(ctx, &req)
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}

		err = authentication.StoreTokens(&authentication.StoredCredentials{
			AccessToken:  response.AccessToken,
			RefreshToken: response.RefreshToken,
			Username:     response.Username,
			ExpiresAt:    expiresAt(response.ExpiresIn),
		})
		if err != nil {
			return fmt.Errorf("could not save credentials: %w", err)
		}

		color.Green("✓ Logged in as %s", response.Username)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Logout from your booksync account",
	RunE: func(cmd *cobra.Command, args []string) error {
		creds, err := authentication.GetTokens()
		if errors.Is(err, authentication.ErrNotLoggedIn) {
			fmt.Println("Not logged in.")
			return nil
		}
		if err != nil {
			return err
		}

		if creds.RefreshToken != "" {
			ctx, cancel := commandContext(cmd)
			defer cancel()
			// Local credentials are removed even if the server is unreachable.
			if err := client.NewHTTPClient(apiURL).Logout(ctx, creds.RefreshToken); err != nil {
				color.Yellow("warning: could not revoke session on server: %v", err)
			}
		}

		if err := authentication.DeleteTokens(); err != nil {
			return fmt.Errorf("could not clear credentials: %w", err)
		}
		color.Green("✓ Successfully logged out.")
		return nil
	},
}

func init() {
	authCmd.AddCommand(registerCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)

	registerCmd.Flags().StringP("username", "u", "", "Username for the new account")
	registerCmd.Flags().StringP("password", "p", "", "Password for the new account")
	registerCmd.Flags().StringP("email", "e", "", "Email address for the new account")
	registerCmd.MarkFlagRequired("username")
	registerCmd.MarkFlagRequired("password")
	registerCmd.MarkFlagRequired("email")

	loginCmd.Flags().StringP("email", "e", "", "Email address of the account")
	loginCmd.Flags().StringP("password", "p", "", "Password for the account")
	loginCmd.MarkFlagRequired("email")
	loginCmd.MarkFlagRequired("password")
}

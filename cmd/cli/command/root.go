package command

// root.go defines the root command and the helpers shared by subcommands.

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"booksync/cmd/cli/authentication"
	"booksync/cmd/cli/command/client"

	"github.com/spf13/cobra"
)

var (
	apiURL  string        // Global flag for API server URL
	timeout time.Duration // per-command request timeout
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "booksync",
	Short: "booksync - personal book tracking from the terminal",
	Long: `booksync is a command line client for the booksync API. Use it to:
- Search Google Books
- Rate and comment on the books you read
- Track whether you are still reading ("lendo") or finished ("lido")

Use "booksync [command] --help" to see all available commands.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	defaultAPI := os.Getenv("BOOKSYNC_API")
	if defaultAPI == "" {
		defaultAPI = "http://localhost:8080"
	}

	// Global persistent flags = available to all subcommands
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", defaultAPI, "API server URL (env BOOKSYNC_API)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "request timeout")

	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(booksCmd)
	rootCmd.AddCommand(reviewCmd)
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, timeout)
}

// GetAuthenticatedClient returns a client carrying the stored access token,
// refreshing it first when it has expired.
func GetAuthenticatedClient(ctx context.Context) (*client.HTTPClient, error) {
	creds, err := authentication.GetTokens()
	if err != nil {
		return nil, err
	}

	httpClient := client.NewHTTPClient(apiURL)
	if creds.Expired(time.Now()) {
		if creds.RefreshToken == "" {
			return nil, authentication.ErrNotLoggedIn
		}
		refreshed, err := httpClient.RefreshToken(ctx, creds.RefreshToken)
		if err != nil {
			var apiErr *client.APIError
			if errors.As(err, &apiErr) {
				_ = authentication.DeleteTokens()
				return nil, authentication.ErrNotLoggedIn
			}
			return nil, fmt.Errorf("refresh session: %w", err)
		}
		creds.AccessToken = refreshed.AccessToken
		creds.ExpiresAt = expiresAt(refreshed.ExpiresIn)
		if err := authentication.StoreTokens(creds); err != nil {
			return nil, fmt.Errorf("save refreshed token: %w", err)
		}
	}

	httpClient.SetToken(creds.AccessToken)
	return httpClient, nil
}

func expiresAt(expiresIn int64) int64 {
	if expiresIn <= 0 {
		return 0
	}
	return time.Now().Add(time.Duration(expiresIn) * time.Second).Unix()
}

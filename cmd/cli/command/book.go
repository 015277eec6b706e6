package command

import (
	"encoding/json"
	"fmt"
	"strings"

	"booksync/cmd/cli/command/client"
	"booksync/cmd/cli/dto"

	"github.com/spf13/cobra"
)

var booksCmd = &cobra.Command{
	Use:   "books",
	Short: "Catalog commands",
	Long:  `Look up books in Google Books. The external id printed here is what review commands expect.`,
}

var searchBooksCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search Google Books",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")
		raw, _ := cmd.Flags().GetBool("raw")

		ctx, cancel := commandContext(cmd)
		defer cancel()

		body, err := client.NewHTTPClient(apiURL).SearchBooks(ctx, query)
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}

		if raw {
			fmt.Println(string(body))
			return nil
		}

		var result dto.SearchResult
		if err := json.Unmarshal(body, &result); err != nil {
			return fmt.Errorf("unexpected catalog response: %w", err)
		}
		if len(result.Items) == 0 {
			fmt.Println("No books found.")
			return nil
		}

		fmt.Printf("%-14s  %-45s  %s\n", "ID", "TITLE", "AUTHORS")
		for _, item := range result.Items {
			fmt.Printf("%-14s  %-45s  %s\n",
				item.ID,
				truncate(item.VolumeInfo.Title, 45),
				strings.Join(item.VolumeInfo.Authors, ", "))
		}
		return nil
	},
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func init() {
	booksCmd.AddCommand(searchBooksCmd)
	searchBooksCmd.Flags().Bool("raw", false, "print the catalog JSON unchanged")
}

package command

import (
	"fmt"

	"booksync/cmd/cli/dto"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Review management commands",
	Long:  `Rate, comment on and track the reading status of books, by Google Books id.`,
}

var addReviewCmd = &cobra.Command{
	Use:   "add [external-id]",
	Short: "Review a book for the first time",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := reviewRequestFromFlags(cmd)
		if err != nil {
			return err
		}

		ctx, cancel := commandContext(cmd)
		defer cancel()

		httpClient, err := GetAuthenticatedClient(ctx)
		if err != nil {
			return err
		}
		result, err := httpClient.CreateReview(ctx, args[0], req)
		if err != nil {
			return fmt.Errorf("failed to add review: %w", err)
		}
		printReview(result)
		return nil
	},
}

var updateReviewCmd = &cobra.Command{
	Use:   "update [external-id]",
	Short: "Create or overwrite your review of a book",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := reviewRequestFromFlags(cmd)
		if err != nil {
			return err
		}

		ctx, cancel := commandContext(cmd)
		defer cancel()

		httpClient, err := GetAuthenticatedClient(ctx)
		if err != nil {
			return err
		}
		result, err := httpClient.UpsertReview(ctx, args[0], req)
		if err != nil {
			return fmt.Errorf("failed to update review: %w", err)
		}
		printReview(result)
		return nil
	},
}

var statusReviewCmd = &cobra.Command{
	Use:   "status [external-id] [lendo|lido]",
	Short: "Change the reading status of a reviewed book",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkStatus(args[1]); err != nil {
			return err
		}

		ctx, cancel := commandContext(cmd)
		defer cancel()

		httpClient, err := GetAuthenticatedClient(ctx)
		if err != nil {
			return err
		}
		result, err := httpClient.UpdateStatus(ctx, args[0], args[1])
		if err != nil {
			return fmt.Errorf("failed to update status: %w", err)
		}
		color.Green("✓ %s", result.Message)
		return nil
	},
}

var deleteReviewCmd = &cobra.Command{
	Use:   "delete [external-id]",
	Short: "Remove your review of a book",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		httpClient, err := GetAuthenticatedClient(ctx)
		if err != nil {
			return err
		}
		result, err := httpClient.DeleteReview(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to delete review: %w", err)
		}
		color.Green("✓ %s", result.Message)
		return nil
	},
}

var listReviewCmd = &cobra.Command{
	Use:   "list",
	Short: "List the books you have reviewed",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		httpClient, err := GetAuthenticatedClient(ctx)
		if err != nil {
			return err
		}
		books, err := httpClient.ListReviews(ctx)
		if err != nil {
			return fmt.Errorf("failed to list reviews: %w", err)
		}
		if len(books) == 0 {
			fmt.Println("You have not reviewed any books yet.")
			return nil
		}

		fmt.Printf("%-14s  %-35s  %-25s  %-6s  %s\n", "ID", "TITLE", "AUTHOR", "RATING", "STATUS")
		for _, b := range books {
			fmt.Printf("%-14s  %-35s  %-25s  %-6d  %s\n",
				b.ExternalID, truncate(b.Title, 35), truncate(b.Author, 25), b.Rating, b.Status)
		}
		return nil
	},
}

func reviewRequestFromFlags(cmd *cobra.Command) (*dto.ReviewRequest, error) {
	rating, _ := cmd.Flags().GetInt("rating")
	comment, _ := cmd.Flags().GetString("comment")
	status, _ := cmd.Flags().GetString("status")

	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("rating must be between 1 and 5")
	}
	if status != "" {
		if err := checkStatus(status); err != nil {
			return nil, err
		}
	}
	return &dto.ReviewRequest{Rating: rating, Comment: comment, Status: status}, nil
}

func checkStatus(status string) error {
	if status != "lendo" && status != "lido" {
		return fmt.Errorf("status must be 'lendo' or 'lido', got %q", status)
	}
	return nil
}

func printReview(env *dto.ReviewEnvelope) {
	color.Green("✓ %s", env.Message)
	if env.Review == nil {
		return
	}
	r := env.Review
	fmt.Printf("Book:    %s (%s)\n", r.Title, r.ExternalID)
	fmt.Printf("Author:  %s\n", r.Author)
	fmt.Printf("Rating:  %d/5\n", r.Rating)
	fmt.Printf("Status:  %s\n", r.Status)
	if r.Comment != "" {
		fmt.Printf("Comment: %s\n", r.Comment)
	}
}

func init() {
	reviewCmd.AddCommand(addReviewCmd)
	reviewCmd.AddCommand(updateReviewCmd)
	reviewCmd.AddCommand(statusReviewCmd)
	reviewCmd.AddCommand(deleteReviewCmd)
	reviewCmd.AddCommand(listReviewCmd)

	for _, c := range []*cobra.Command{addReviewCmd, updateReviewCmd} {
		c.Flags().IntP("rating", "r", 0, "Rating from 1 to 5")
		c.Flags().StringP("comment", "c", "", "Free-text comment")
		c.Flags().StringP("status", "s", "", "Reading status: lendo or lido (default lendo)")
		c.MarkFlagRequired("rating")
	}
}

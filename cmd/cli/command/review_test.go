package command

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReviewFlagsCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().IntP("rating", "r", 0, "")
	cmd.Flags().StringP("comment", "c", "", "")
	cmd.Flags().StringP("status", "s", "", "")
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func TestReviewRequestFromFlags(t *testing.T) {
	req, err := reviewRequestFromFlags(newReviewFlagsCmd(t, "-r", "5", "-c", "Great", "-s", "lido"))
	require.NoError(t, err)
	assert.Equal(t, 5, req.Rating)
	assert.Equal(t, "Great", req.Comment)
	assert.Equal(t, "lido", req.Status)

	req, err = reviewRequestFromFlags(newReviewFlagsCmd(t, "-r", "3"))
	require.NoError(t, err)
	assert.Empty(t, req.Status, "server applies the default status")
}

func TestReviewRequestFromFlags_Rejects(t *testing.T) {
	_, err := reviewRequestFromFlags(newReviewFlagsCmd(t, "-r", "6"))
	assert.ErrorContains(t, err, "between 1 and 5")

	_, err = reviewRequestFromFlags(newReviewFlagsCmd(t, "-r", "0"))
	assert.Error(t, err)

	_, err = reviewRequestFromFlags(newReviewFlagsCmd(t, "-r", "4", "-s", "bogus"))
	assert.ErrorContains(t, err, "bogus")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "Título d…", truncate("Título desconhecido", 9))
}

// Package catalog defines the external book catalog the API resolves volumes against.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
)

var (
	// ErrNotFound means the catalog answered and has no volume for the id.
	ErrNotFound = errors.New("catalog: volume not found")
	// ErrUnavailable means the catalog could not be reached or kept failing.
	ErrUnavailable = errors.New("catalog: lookup unavailable")
)

const (
	UnknownTitle  = "Título desconhecido"
	UnknownAuthor = "Autor desconhecido"
)

// Volume is the subset of catalog metadata persisted for a book.
type Volume struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Authors  []string `json:"authors"`
	ImageURL string   `json:"image_url,omitempty"`
}

// DisplayTitle returns the title, or a placeholder when the catalog has none.
func (v *Volume) DisplayTitle() string {
	if strings.TrimSpace(v.Title) == "" {
		return UnknownTitle
	}
	return v.Title
}

// DisplayAuthor joins the authors with ", ", or returns a placeholder when there are none.
func (v *Volume) DisplayAuthor() string {
	authors := make([]string, 0, len(v.Authors))
	for _, a := range v.Authors {
		if a = strings.TrimSpace(a); a != "" {
			authors = append(authors, a)
		}
	}
	if len(authors) == 0 {
		return UnknownAuthor
	}
	return strings.Join(authors, ", ")
}

// Lookup resolves catalog ids and free-text searches.
type Lookup interface {
	LookupByID(ctx context.Context, id string) (*Volume, error)
	// Search returns the catalog's response body untouched.
	Search(ctx context.Context, query string) (json.RawMessage, error)
}

package service

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"

	"github.com/kevinaaaquil/bookstore/utils"
)

const DefaultGoogleBooksURL = "https://www.googleapis.com/books/v1/volumes"

var (
	// ErrISBNNotFound is returned when the catalogue has no volume for an ISBN.
	ErrISBNNotFound = errors.New("no volume found for isbn")
	ErrInvalidISBN  = errors.New("isbn must have 10 or 13 digits")
)

type volumesResponse struct {
	TotalItems int `json:"totalItems"`
	Items      []struct {
		VolumeInfo struct {
			Title               string   `json:"title"`
			Subtitle            string   `json:"subtitle"`
			Authors             []string `json:"authors"`
			Publisher           string   `json:"publisher"`
			PublishedDate       string   `json:"publishedDate"`
			Description         string   `json:"description"`
			Categories          []string `json:"categories"`
			IndustryIdentifiers []struct {
				Type       string `json:"type"`
				Identifier string `json:"identifier"`
			} `json:"industryIdentifiers"`
		} `json:"volumeInfo"`
	} `json:"items"`
}

// BookDraft is catalogue metadata shaped like a book create request, so an
// admin can review it and post it to /books.
type BookDraft struct {
	Title           string `json:"title"`
	Author          string `json:"author"`
	Publisher       string `json:"publisher"`
	PublicationDate string `json:"publication_date,omitempty"`
	ISBN            string `json:"isbn"`
	Summary         string `json:"summary"`
	Category        string `json:"category,omitempty"`
	CoverURL        string `json:"cover_url,omitempty"`
}

// ISBNLookup queries the Google Books volumes API.
type ISBNLookup struct {
	baseURL string
	client  *http.Client
}

func NewISBNLookup(baseURL string) *ISBNLookup {
	if baseURL == "" {
		baseURL = DefaultGoogleBooksURL
	}
	return &ISBNLookup{baseURL: baseURL, client: &http.Client{Timeout: 15 * time.Second}}
}

// Lookup fetches metadata for isbn. Hyphens and spaces are ignored.
func (l *ISBNLookup) Lookup(ctx context.Context, isbn string) (*BookDraft, error) {
	isbn = utils.SanitizeISBN(isbn)
	if !utils.ValidISBN(isbn) {
		return nil, ErrInvalidISBN
	}
	q := url.Values{}
	q.Set("q", "isbn:"+isbn)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "build google books request")
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "query google books")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("google books returned %d", resp.StatusCode)
	}

	var data volumesResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, errors.Wrap(err, "decode google books response")
	}
	if data.TotalItems == 0 || len(data.Items) == 0 {
		return nil, errors.Wrap(ErrISBNNotFound, isbn)
	}

	vi := data.Items[0].VolumeInfo
	draft := &BookDraft{
		Title:     vi.Title,
		Author:    strings.Join(vi.Authors, ", "),
		Publisher: vi.Publisher,
		ISBN:      isbn,
		Summary:   strings.TrimSpace(vi.Description),
	}
	if vi.Subtitle != "" {
		draft.Title += ": " + vi.Subtitle
	}
	for _, id := range vi.IndustryIdentifiers {
		if id.Type == "ISBN_13" {
			draft.ISBN = id.Identifier
			break
		}
	}
	if len(vi.Categories) > 0 {
		draft.Category = strings.ToLower(vi.Categories[0])
	}
	if t, ok := parsePublishedDate(vi.PublishedDate); ok {
		draft.PublicationDate = t.Format(time.RFC3339)
	}
	draft.CoverURL = openLibraryCoverURL(draft.ISBN)
	return draft, nil
}


// parsePublishedDate accepts the full, month and year forms Google returns.
func parsePublishedDate(v string) (time.Time, bool) {
	for _, layout := range []string{"2006-01-02", "2006-01", "2006"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func openLibraryCoverURL(isbn string) string {
	if isbn == "" {
		return ""
	}
	return "https://covers.openlibrary.org/b/isbn/" + url.PathEscape(isbn) + "-L.jpg"
}

package versions

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// DefaultIndexURL is the package index JSON endpoint for the mojo package.
const DefaultIndexURL = "https://pypi.org/pypi/mojo/json"

// ExtraIndexURL is the Modular package index pip consults for mojo wheels.
const ExtraIndexURL = "https://modular.gateway.scarf.sh/simple/"

// Index queries the package index for published Mojo releases.
type Index struct {
	URL    string
	Client *http.Client
}

// NewIndex returns an Index pointed at DefaultIndexURL with a 10 second
// request timeout.
func NewIndex() *Index {
	return &Index{
		URL:    DefaultIndexURL,
		Client: &http.Client{Timeout: 10 * time.Second},
	}
}

type indexDocument struct {
	Info struct {
		Version string `json:"version"`
	} `json:"info"`
	Releases map[string][]json.RawMessage `json:"releases"`
}

// Latest returns the newest release the index reports.
func (ix *Index) Latest(ctx context.Context) (string, error) {
	doc, err := ix.fetch(ctx)
	if err != nil {
		return "", err
	}
	if doc.Info.Version == "" {
		return "", fmt.Errorf("package index response has no version")
	}
	return doc.Info.Version, nil
}

// Published returns every release that has at least one uploaded file,
// newest first.
func (ix *Index) Published(ctx context.Context) ([]string, error) {
	doc, err := ix.fetch(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(doc.Releases))
	for v, files := range doc.Releases {
		if len(files) > 0 {
			out = append(out, v)
		}
	}
	SortDesc(out)
	return out, nil
}

func (ix *Index) fetch(ctx context.Context) (*indexDocument, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ix.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("building index request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	client := ix.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("querying package index: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("querying package index: unexpected status %s", resp.Status)
	}

	var doc indexDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding package index response: %w", err)
	}
	return &doc, nil
}

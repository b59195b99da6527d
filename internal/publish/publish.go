// Package publish uploads result and report files to Azure Blob Storage.
package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blockblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/container"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds parallel uploads.
const DefaultConcurrency = 4

// ErrNoContainer is returned when no container URL is configured.
var ErrNoContainer = errors.New("no container URL configured (set publish.container_url or pass --container-url)")

// Uploader stores one blob.
type Uploader interface {
	Upload(ctx context.Context, name string, data []byte, contentType string) error
}

// AzureUploader writes block blobs into one container.
type AzureUploader struct {
	client *container.Client
}

// NewAzureUploader connects to containerURL. A URL carrying a SAS token is
// used as-is; otherwise DefaultAzureCredential supplies a token.
func NewAzureUploader(containerURL string) (*AzureUploader, error) {
	if containerURL == "" {
		return nil, ErrNoContainer
	}
	u, err := url.Parse(containerURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid container URL %q", containerURL)
	}

	if HasSAS(u) {
		client, err := container.NewClientWithNoCredential(containerURL, nil)
		if err != nil {
			return nil, fmt.Errorf("creating container client: %w", err)
		}
		return &AzureUploader{client: client}, nil
	}

	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("creating Azure credential: %w", err)
	}
	return newWithCredential(containerURL, cred)
}

func newWithCredential(containerURL string, cred azcore.TokenCredential) (*AzureUploader, error) {
	client, err := container.NewClient(containerURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("creating container client: %w", err)
	}
	return &AzureUploader{client: client}, nil
}

// HasSAS reports whether u carries a shared access signature.
func HasSAS(u *url.URL) bool {
	return u.Query().Get("sig") != ""
}

// Upload writes data to the named block blob, replacing any existing blob.
func (a *AzureUploader) Upload(ctx context.Context, name string, data []byte, contentType string) error {
	_, err := a.client.NewBlockBlobClient(name).UploadBuffer(ctx, data, &blockblob.UploadBufferOptions{
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: to.Ptr(contentType)},
	})
	if err != nil {
		var respErr *azcore.ResponseError
		if errors.As(err, &respErr) {
			return fmt.Errorf("uploading %s: %s (HTTP %d)", name, respErr.ErrorCode, respErr.StatusCode)
		}
		return fmt.Errorf("uploading %s: %w", name, err)
	}
	return nil
}

// File is one local file to publish under a folder such as "results".
type File struct {
	Path   string
	Folder string
}

// Publisher uploads files beneath a common prefix.
type Publisher struct {
	up          Uploader
	prefix      string
	concurrency int
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithConcurrency sets the number of parallel uploads.
func WithConcurrency(n int) Option {
	return func(p *Publisher) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// New returns a Publisher writing through up.
func New(up Uploader, prefix string, opts ...Option) *Publisher {
	p := &Publisher{up: up, prefix: strings.Trim(prefix, "/"), concurrency: DefaultConcurrency}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// BlobName returns the blob a file is stored as: "<prefix>/<folder>/<base>".
func (p *Publisher) BlobName(f File) string {
	return path.Join(p.prefix, f.Folder, filepath.Base(f.Path))
}

// Publish uploads files in parallel and returns the blob names in input
// order. The first failure cancels the remaining uploads.
func (p *Publisher) Publish(ctx context.Context, files []File) ([]string, error) {
	names := make([]string, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for i, f := range files {
		name := p.BlobName(f)
		names[i] = name
		g.Go(func() error {
			data, err := os.ReadFile(f.Path)
			if err != nil {
				return fmt.Errorf("reading %s: %w", f.Path, err)
			}
			slog.Debug("Uploading", "file", f.Path, "blob", name, "bytes", len(data))
			return p.up.Upload(ctx, name, data, ContentType(f.Path))
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return names, nil
}

// ContentType picks the blob content type from a file name.
func ContentType(name string) string {
	switch {
	case strings.HasSuffix(name, ".json.zst"), strings.HasSuffix(name, ".zst"):
		return "application/zstd"
	case strings.HasSuffix(name, ".json"):
		return "application/json"
	case strings.HasSuffix(name, ".md"):
		return "text/markdown; charset=utf-8"
	case strings.HasSuffix(name, ".html"):
		return "text/html; charset=utf-8"
	case strings.HasSuffix(name, ".xml"):
		return "application/xml"
	case strings.HasSuffix(name, ".csv"):
		return "text/csv; charset=utf-8"
	}
	return "application/octet-stream"
}

package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/vncsmyrnk/salesvote/internal/core/ports"
)

// maxDatasetBytes bounds how much of a remote dataset is read.
const maxDatasetBytes = 256 << 20

var ErrTooLarge = errors.New("dataset exceeds size limit")

// Loader reads the sales dataset from a fixed location: a local file path,
// or an http(s) URL.
type Loader struct {
	location string
	client   *http.Client
	maxBytes int64
}

func NewLoader(location string, client *http.Client) *Loader {
	if client == nil {
		client = http.DefaultClient
	}
	return &Loader{location: location, client: client, maxBytes: maxDatasetBytes}
}

func (l *Loader) Location() string {
	return l.location
}

func (l *Loader) Load(ctx context.Context) (string, error) {
	var (
		raw []byte
		err error
	)
	if isRemote(l.location) {
		raw, err = l.fetch(ctx)
	} else {
		raw, err = os.ReadFile(l.location)
	}
	if err != nil {
		return "", err
	}
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("dataset %s is not valid UTF-8", l.location)
	}
	return string(raw), nil
}

func (l *Loader) fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.location, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch dataset %s: unexpected status %s", l.location, resp.Status)
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, l.maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(raw)) > l.maxBytes {
		return nil, fmt.Errorf("fetch dataset %s: %w (%d bytes)", l.location, ErrTooLarge, l.maxBytes)
	}
	return raw, nil
}

func isRemote(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

var _ ports.DatasetLoader = (*Loader)(nil)

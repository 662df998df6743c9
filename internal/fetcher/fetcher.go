// Package fetcher downloads the BAAC source files over HTTP or FTP and
// provides the decoding helpers (Latin-1 CSV, ZIP) the loader needs.
package fetcher

import (
	"context"
	"io"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"
)

// Fetcher defines the interface for downloading remote data.
type Fetcher interface {
	// Download fetches the URL and returns the response body.
	Download(ctx context.Context, url string) (io.ReadCloser, error)

	// DownloadToFile fetches the URL and writes it to the given path. Returns bytes written.
	DownloadToFile(ctx context.Context, url string, path string) (int64, error)
}

// ForURL returns a fetcher appropriate for the URL scheme.
func ForURL(rawURL string) (Fetcher, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: parse url %q", rawURL)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return NewHTTPFetcher(HTTPOptions{}), nil
	case "ftp":
		return NewFTPFetcher(FTPOptions{}), nil
	default:
		return nil, eris.Errorf("fetcher: unsupported scheme %q", u.Scheme)
	}
}

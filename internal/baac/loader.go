package baac

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/velodata/baacviz/internal/fetcher"
)

// ErrDataUnavailable means no cached copy exists and every download attempt
// failed. Fatal at startup.
var ErrDataUnavailable = eris.New("baac: dataset unavailable")

// SourceFile is one remote dataset file and its local cache name.
type SourceFile struct {
	URL    string
	Mirror string // optional fallback URL (http(s) or ftp)
	Name   string // filename inside the cache directory
}

// LoaderOptions configures the dataset loader.
type LoaderOptions struct {
	CacheDir  string
	Encoding  string // "utf8" or "latin1"
	Delimiter rune   // default ','
	Files     []SourceFile

	// Fetch resolves a fetcher for a URL. Tests override it; defaults to
	// fetcher.ForURL.
	Fetch func(url string) (fetcher.Fetcher, error)
}

// Loader downloads the BAAC files into a local cache and parses them into a
// raw table. A cached file is reused as-is; there is no freshness check.
type Loader struct {
	opts LoaderOptions
}

// NewLoader creates a Loader.
func NewLoader(opts LoaderOptions) *Loader {
	if opts.Delimiter == 0 {
		opts.Delimiter = ','
	}
	if opts.Fetch == nil {
		opts.Fetch = fetcher.ForURL
	}
	return &Loader{opts: opts}
}

// RawTable is the parsed but uncleaned dataset.
type RawTable struct {
	Header []string
	Rows   [][]string
}

// EnsureLocal returns the local paths of all configured files, downloading
// any that are missing from the cache. Missing files are fetched
// concurrently. ZIP archives are extracted and the inner CSV path returned.
func (l *Loader) EnsureLocal(ctx context.Context) ([]string, error) {
	if len(l.opts.Files) == 0 {
		return nil, eris.New("baac: no source files configured")
	}
	if err := os.MkdirAll(l.opts.CacheDir, 0o755); err != nil {
		return nil, eris.Wrap(err, "baac: create cache dir")
	}

	paths := make([]string, len(l.opts.Files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for i, sf := range l.opts.Files {
		path := filepath.Join(l.opts.CacheDir, sf.Name)
		paths[i] = path
		if fileExists(path) {
			zap.L().Debug("baac: using cached file", zap.String("path", path))
			continue
		}
		g.Go(func() error {
			return l.download(gctx, sf, path)
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Resolve archives to their inner CSV.
	for i, path := range paths {
		if !strings.HasSuffix(strings.ToLower(path), ".zip") {
			continue
		}
		csvPath, err := fetcher.ExtractZIPMatch(path, ".csv", l.opts.CacheDir)
		if err != nil {
			return nil, eris.Wrapf(err, "baac: extract %s", path)
		}
		paths[i] = csvPath
	}

	return paths, nil
}

func (l *Loader) download(ctx context.Context, sf SourceFile, path string) error {
	urls := []string{sf.URL}
	if sf.Mirror != "" {
		urls = append(urls, sf.Mirror)
	}

	var lastErr error
	for _, u := range urls {
		f, err := l.opts.Fetch(u)
		if err != nil {
			lastErr = err
			continue
		}

		zap.L().Info("baac: downloading dataset",
			zap.String("url", u),
			zap.String("path", path),
		)

		// Download to a temp name so a failed transfer never poisons the cache.
		part := path + ".part"
		n, err := f.DownloadToFile(ctx, u, part)
		if err != nil {
			_ = os.Remove(part)
			lastErr = err
			zap.L().Warn("baac: download failed",
				zap.String("url", u),
				zap.Error(err),
			)
			continue
		}
		if err := os.Rename(part, path); err != nil {
			return eris.Wrap(err, "baac: finalize download")
		}

		zap.L().Info("baac: download complete",
			zap.String("path", path),
			zap.Int64("bytes", n),
		)
		return nil
	}

	return eris.Wrapf(ErrDataUnavailable, "no cached copy at %s and download failed: %v", path, lastErr)
}

// Load ensures all files are local and parses them into one raw table.
// Every file must share the header of the first.
func (l *Loader) Load(ctx context.Context) (*RawTable, error) {
	paths, err := l.EnsureLocal(ctx)
	if err != nil {
		return nil, err
	}

	var raw *RawTable
	for _, path := range paths {
		file, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrapf(err, "baac: open %s", path)
		}

		header, rows, err := fetcher.ReadCSV(ctx, file, fetcher.CSVOptions{
			Delimiter: l.opts.Delimiter,
			Encoding:  l.opts.Encoding,
		})
		file.Close() //nolint:errcheck
		if err != nil {
			return nil, eris.Wrapf(err, "baac: parse %s", path)
		}

		if raw == nil {
			raw = &RawTable{Header: header, Rows: rows}
			continue
		}
		if !equalHeaders(raw.Header, header) {
			return nil, eris.Errorf("baac: header mismatch in %s", path)
		}
		raw.Rows = append(raw.Rows, rows...)
	}

	zap.L().Info("baac: dataset loaded",
		zap.Int("files", len(paths)),
		zap.Int("rows", len(raw.Rows)),
	)
	return raw, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func equalHeaders(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

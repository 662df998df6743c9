package main

import (
	"context"

	"github.com/velodata/baacviz/internal/baac"
	"github.com/velodata/baacviz/internal/config"
)

func newLoader(c *config.Config) *baac.Loader {
	delimiter := ','
	if c.Data.Delimiter != "" {
		delimiter = rune(c.Data.Delimiter[0])
	}
	return baac.NewLoader(baac.LoaderOptions{
		CacheDir:  c.Data.CacheDir,
		Encoding:  c.Data.Encoding,
		Delimiter: delimiter,
		Files: []baac.SourceFile{{
			URL:    c.Data.URL,
			Mirror: c.Data.MirrorURL,
			Name:   c.Data.Filename,
		}},
	})
}

func prepareOptions(c *config.Config) baac.PrepareOptions {
	return baac.PrepareOptions{
		RequiredFields: c.Data.RequiredFields,
		MinYear:        c.Data.MinYear,
		MaxYear:        c.Data.MaxYear,
	}
}

// loadPrepared runs the full download-cache-clean pipeline.
func loadPrepared(ctx context.Context, c *config.Config) (*baac.Table, *baac.ExclusionReport, error) {
	raw, err := newLoader(c).Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	return baac.Prepare(raw, prepareOptions(c))
}

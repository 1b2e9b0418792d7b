package cli

import (
	"context"

	"github.com/intentflow/intentflow/pkg/backend"
	"github.com/intentflow/intentflow/pkg/httputil"
	"github.com/intentflow/intentflow/pkg/session"
)

// newBackendClient builds a backend client from the loaded config, reusing a
// stored session token when one exists. With refresh set, cached conversation
// reads are bypassed.
func newBackendClient(ctx context.Context, cfg Config, refresh bool) (*backend.Client, error) {
	var cache *httputil.Cache
	if dir, err := cacheDir(); err == nil {
		if c, err := httputil.NewCache(dir, cfg.Backend.CacheTTL.Duration); err == nil {
			cache = c.Namespace("backend")
		}
	}

	client := backend.New(backend.Config{
		BaseURL: cfg.Backend.BaseURL,
		Cache:   cache,
		Refresh: refresh,
	})

	sessions, err := session.NewFileStore("")
	if err != nil {
		return client, nil
	}
	if sess, err := sessions.Get(ctx); err == nil && sess != nil {
		client.SetToken(sess.Token)
	}
	return client, nil
}

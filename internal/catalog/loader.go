package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/kaikyoudou/storefront/internal/domain"
	"go.uber.org/zap"
)

var ErrCatalogUnavailable = errors.New("catalog unavailable")

type LoaderConfig struct {
	// Source is a path to a JSON file or an http(s) URL serving the
	// same document: an array of product records.
	Source       string
	FetchTimeout time.Duration
	MaxRetries   uint64
}

// Load reads the catalog from its configured source. Any failure is
// reported as ErrCatalogUnavailable so callers can distinguish "store
// has no products" from "catalog could not be loaded".
func Load(ctx context.Context, cfg LoaderConfig, logger *zap.Logger) (*Catalog, error) {
	var (
		data []byte
		err  error
	)

	if strings.HasPrefix(cfg.Source, "http://") || strings.HasPrefix(cfg.Source, "https://") {
		data, err = fetch(ctx, cfg, logger)
	} else {
		data, err = os.ReadFile(cfg.Source)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrCatalogUnavailable, cfg.Source, err)
	}

	var products []domain.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", ErrCatalogUnavailable, cfg.Source, err)
	}

	cat, err := New(products)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}

	logger.Info("catalog loaded",
		zap.String("source", cfg.Source),
		zap.Int("products", cat.Len()),
	)

	return cat, nil
}

// fetch retries a bounded number of times and then reports. Loading
// must never loop indefinitely: the caller surfaces the failure to the
// user instead.
func fetch(ctx context.Context, cfg LoaderConfig, logger *zap.Logger) ([]byte, error) {
	client := &http.Client{Timeout: cfg.FetchTimeout}

	operation := func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, cfg.Source, nil)
		if err != nil {
			return nil, backoff.Permanent(err)
		}

		resp, err := client.Do(req)
		if err != nil {
			logger.Warn("catalog fetch failed", zap.String("source", cfg.Source), zap.Error(err))
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			err := fmt.Errorf("unexpected status %d", resp.StatusCode)
			logger.Warn("catalog fetch failed", zap.String("source", cfg.Source), zap.Error(err))
			return nil, err
		}

		return io.ReadAll(resp.Body)
	}

	bo := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), cfg.MaxRetries),
		ctx,
	)

	return backoff.RetryWithData(operation, bo)
}

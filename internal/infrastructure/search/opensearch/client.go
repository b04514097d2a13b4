// Package opensearch provides full-text search over scored patents: an index
// writer fed by the analysis pipeline and a query side used by the API.
package opensearch

import (
	"context"

	"github.com/opensearch-project/opensearch-go/v2"

	"github.com/patentminer/patentminer/internal/config"
	"github.com/patentminer/patentminer/internal/infrastructure/monitoring/logging"
	"github.com/patentminer/patentminer/pkg/errors"
)

// Client wraps the opensearch-go client with the configured patent index.
type Client struct {
	client *opensearch.Client
	index  string
	logger logging.Logger
}

// NewClient connects and pings the configured cluster.
func NewClient(cfg config.OpenSearchConfig, log logging.Logger) (*Client, error) {
	if len(cfg.Addresses) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "opensearch addresses required")
	}
	if cfg.PatentIndex == "" {
		return nil, errors.New(errors.ErrCodeValidation, "opensearch patent index required")
	}

	osClient, err := opensearch.NewClient(opensearch.Config{
		Addresses:     cfg.Addresses,
		Username:      cfg.Username,
		Password:      cfg.Password,
		RetryOnStatus: []int{502, 503, 504, 429},
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to create opensearch client")
	}

	c := &Client{client: osClient, index: cfg.PatentIndex, logger: log.Named("opensearch")}
	if err := c.Ping(context.Background()); err != nil {
		return nil, err
	}

	log.Info("OpenSearch client connected", logging.String("index", cfg.PatentIndex))
	return c, nil
}

// Ping verifies cluster reachability.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.client.Ping(c.client.Ping.WithContext(ctx))
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeServiceUnavailable, "opensearch unreachable")
	}
	defer resp.Body.Close()
	if resp.IsError() {
		return errors.Newf(errors.ErrCodeServiceUnavailable, "opensearch ping returned %s", resp.Status())
	}
	return nil
}

// Index returns the configured patent index name.
func (c *Client) Index() string {
	return c.index
}

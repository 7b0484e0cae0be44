// internal/common/database/elasticsearch.go
package database

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Kathan1010/LoanAdviser/internal/common/config"
	apperrors "github.com/Kathan1010/LoanAdviser/internal/common/errors"

	"github.com/elastic/go-elasticsearch/v8"
)

// AuditElasticsearch is the cluster conversation turns are indexed into.
type AuditElasticsearch struct {
	Client *elasticsearch.Client
}

func NewAuditElasticsearch(cfg config.ElasticsearchConfig) (*AuditElasticsearch, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:     cfg.Addresses,
		Username:      cfg.Username,
		Password:      cfg.Password,
		MaxRetries:    cfg.MaxRetries,
		RetryOnStatus: []int{http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout, http.StatusTooManyRequests},
	})
	if err != nil {
		return nil, apperrors.NewElasticsearchConnectionFailedError(err)
	}
	return &AuditElasticsearch{Client: es}, nil
}

func (e *AuditElasticsearch) Ping(ctx context.Context) error {
	res, err := e.Client.Ping(e.Client.Ping.WithContext(ctx))
	if err != nil {
		return apperrors.NewElasticsearchConnectionFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return apperrors.NewElasticsearchConnectionFailedError(fmt.Errorf("ping: %s", res.Status()))
	}
	return nil
}

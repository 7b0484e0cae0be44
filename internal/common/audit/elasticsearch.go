// internal/common/audit/elasticsearch.go
package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	apperrors "github.com/Kathan1010/LoanAdviser/internal/common/errors"

	"github.com/elastic/go-elasticsearch/v8"
)

// ElasticsearchSink indexes turn records so conversations can be searched and aggregated.
type ElasticsearchSink struct {
	client *elasticsearch.Client
	index  string
}

func NewElasticsearchSink(client *elasticsearch.Client, index string) *ElasticsearchSink {
	return &ElasticsearchSink{client: client, index: index}
}

// IndexMapping keeps free text searchable and the slot, intent and stage
// fields aggregatable.
const IndexMapping = `{
  "mappings": {
    "properties": {
      "session_id":      {"type": "keyword"},
      "utterance":       {"type": "text"},
      "normalized_text": {"type": "text"},
      "language":        {"type": "keyword"},
      "intent":          {"type": "keyword"},
      "next_slot":       {"type": "keyword"},
      "missing":         {"type": "keyword"},
      "response_text":   {"type": "text"},
      "duration_ms":     {"type": "float"},
      "created_at":      {"type": "date"},
      "extracted":       {"type": "object", "enabled": false},
      "stages": {
        "properties": {
          "stage":  {"type": "keyword"},
          "status": {"type": "keyword"}
        }
      },
      "eligibility": {
        "properties": {
          "loan_type":       {"type": "keyword"},
          "is_eligible":     {"type": "boolean"},
          "eligible_amount": {"type": "double"},
          "dti_ratio":       {"type": "double"}
        }
      }
    }
  }
}`

// EnsureIndex creates the index with IndexMapping unless it already exists.
func (s *ElasticsearchSink) EnsureIndex(ctx context.Context) error {
	exists, err := s.client.Indices.Exists([]string{s.index}, s.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return apperrors.NewElasticsearchConnectionFailedError(err)
	}
	exists.Body.Close()
	if exists.StatusCode == http.StatusOK {
		return nil
	}

	res, err := s.client.Indices.Create(s.index,
		s.client.Indices.Create.WithBody(strings.NewReader(IndexMapping)),
		s.client.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return apperrors.NewElasticsearchConnectionFailedError(err)
	}
	defer res.Body.Close()

	// Another replica may have won the race.
	if res.IsError() && res.StatusCode != http.StatusBadRequest {
		return apperrors.NewElasticsearchConnectionFailedError(fmt.Errorf("create index %s: %s", s.index, res.Status()))
	}
	return nil
}

func (s *ElasticsearchSink) Record(ctx context.Context, rec TurnRecord) error {
	doc, err := json.Marshal(rec)
	if err != nil {
		return apperrors.NewAuditWriteFailedError("elasticsearch", err)
	}

	res, err := s.client.Index(
		s.index,
		bytes.NewReader(doc),
		s.client.Index.WithDocumentID(rec.ID),
		s.client.Index.WithContext(ctx),
	)
	if err != nil {
		return apperrors.NewAuditWriteFailedError("elasticsearch", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return apperrors.NewAuditWriteFailedError("elasticsearch", fmt.Errorf("index %s: %s", s.index, res.Status()))
	}
	return nil
}

package uploader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dispatchly/courier-tracking/module/core/domain"
)

var _ Sender = (*HTTPSender)(nil)

// HTTPSender posts batches as JSON to the telemetry backend. Any 2xx
// response is an acknowledgment; everything else is a retryable failure.
type HTTPSender struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

func NewHTTPSender(endpoint, apiKey string, timeout time.Duration) *HTTPSender {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPSender{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: timeout},
	}
}

type batchRequest struct {
	SessionID string              `json:"session_id"`
	Locations []domain.Coordinate `json:"locations"`
	Metadata  *Metadata           `json:"metadata"`
}

func (s *HTTPSender) Send(ctx context.Context, batch *Batch, meta *Metadata) error {
	body, err := json.Marshal(batchRequest{
		SessionID: batch.SessionID,
		Locations: batch.Locations,
		Metadata:  meta,
	})
	if err != nil {
		return fmt.Errorf("marshal batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("backend responded %d", resp.StatusCode)
	}
	return nil
}

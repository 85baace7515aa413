package tabular

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// HTTPSource downloads a CSV document.
type HTTPSource struct {
	url        string
	httpClient *resty.Client
	logger     *zap.Logger
}

// NewHTTPSource builds a resty-backed CSV download source.
func NewHTTPSource(url string, logger *zap.Logger) *HTTPSource {
	if logger == nil {
		logger = zap.NewNop()
	}

	client := resty.New().
		SetHeader("Accept", "text/csv, text/plain;q=0.9, */*;q=0.5").
		SetTimeout(30 * time.Second)

	return &HTTPSource{url: url, httpClient: client, logger: logger}
}

// Read fetches the document and parses it as CSV.
func (s *HTTPSource) Read(ctx context.Context) (*Table, error) {
	resp, err := s.httpClient.R().
		SetContext(ctx).
		Get(s.url)
	if err != nil {
		return nil, fmt.Errorf("download csv %s: %w", s.url, err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return nil, fmt.Errorf("download csv %s: status %d", s.url, resp.StatusCode())
	}

	table, err := ReadCSV(bytes.NewReader(resp.Body()))
	if err != nil {
		return nil, fmt.Errorf("parse csv %s: %w", s.url, err)
	}

	s.logger.Debug("csv downloaded", zap.String("url", s.url), zap.Int("bytes", len(resp.Body())), zap.Int("rows", table.Len()))
	return table, nil
}

// Package cloudlog implements the HTTP client for the Cloudlog QSO API.
package cloudlog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/adifpush/adifpush/internal/qso"
	"github.com/adifpush/adifpush/pkg/logger"
)

// qsoEndpoint is the Cloudlog API path for single-record uploads.
const qsoEndpoint = "/index.php/api/qso"

// TransportError reports a failed delivery attempt: either a transport
// failure or a non-success response from Cloudlog.
type TransportError struct {
	StatusCode int // 0 when the request never completed
	Reason     string
}

func (e *TransportError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("delivery failed: %s", e.Reason)
	}
	return fmt.Sprintf("delivery failed: status %d: %s", e.StatusCode, e.Reason)
}

// uploadRequest is the JSON body Cloudlog expects for type=adif uploads.
type uploadRequest struct {
	Key              string `json:"key"`
	StationProfileID string `json:"station_profile_id"`
	Type             string `json:"type"`
	String           string `json:"string"`
}

// Client delivers one record per request to a Cloudlog instance. It never
// retries; retry policy belongs to the caller so that per-attempt
// accounting stays accurate.
type Client struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	stationID  string
	logger     *logger.Logger
}

// NewClient creates a Cloudlog client for the given base URL and
// credentials. timeout bounds each individual delivery attempt.
func NewClient(baseURL, apiKey, stationID string, timeout time.Duration, log *logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   strings.TrimRight(baseURL, "/") + qsoEndpoint,
		apiKey:     apiKey,
		stationID:  stationID,
		logger:     log.Named("cloudlog"),
	}
}

// Endpoint returns the resolved upload URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Send uploads one record. It returns nil on acknowledgment (HTTP 200 or
// 201) and a *TransportError for anything else.
func (c *Client) Send(ctx context.Context, rec *qso.Record) error {
	body, err := json.Marshal(uploadRequest{
		Key:              c.apiKey,
		StationProfileID: c.stationID,
		Type:             "adif",
		String:           rec.Text,
	})
	if err != nil {
		return fmt.Errorf("failed to encode upload request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("Uploading record",
		logger.String("call", rec.Call),
		logger.String("url", c.endpoint),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Reason: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated {
		return nil
	}

	// Keep a short slice of the body as the failure reason; Cloudlog
	// reports rejection details there.
	preview, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
	return &TransportError{
		StatusCode: resp.StatusCode,
		Reason:     strings.TrimSpace(string(preview)),
	}
}

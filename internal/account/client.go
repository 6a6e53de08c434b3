// Package account is the REST client for the member account service.
// The service owns member records and point counters; the bot only ever
// talks to it through this client.
package account

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	domerrors "github.com/chiaheng/health-linebot-go/internal/errors"
	"github.com/chiaheng/health-linebot-go/internal/logger"
	"github.com/chiaheng/health-linebot-go/internal/metrics"
)

// Sentinel causes carried inside *domerrors.AccountError.
var (
	// ErrUnavailable means the request never produced an HTTP response
	// (connection failure, timeout, canceled context).
	ErrUnavailable = errors.New("account service unavailable")

	// ErrUnexpectedStatus means the service answered with a non-200 status.
	ErrUnexpectedStatus = errors.New("unexpected account service status")

	// ErrMalformedResponse means a 200 answer whose body could not be parsed.
	ErrMalformedResponse = errors.New("malformed account service response")
)

// Client calls the member account service.
type Client struct {
	baseURL string
	httpc   *http.Client
	log     *logger.Logger
	metrics *metrics.Metrics
}

// NewClient creates a client for the service at baseURL.
// metrics may be nil when request accounting is not wanted (tests).
func NewClient(baseURL string, timeout time.Duration, log *logger.Logger, m *metrics.Metrics) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: timeout},
		log:     log.WithModule("account"),
		metrics: m,
	}
}

// SearchMember checks whether a member record exists for the national ID.
// A nil return means the member exists.
func (c *Client) SearchMember(ctx context.Context, nationalID string) error {
	body := map[string]string{"idNumber": nationalID}
	_, err := c.do(ctx, "search", http.MethodGet, "/search/", body)
	return err
}

// LinkUser binds a LINE user ID to the member with the national ID.
func (c *Client) LinkUser(ctx context.Context, nationalID, lineID string) error {
	body := map[string]string{"idNumber": nationalID, "lineId": lineID}
	_, err := c.do(ctx, "link", http.MethodPost, "/linkLineID/", body)
	return err
}

// RegisterMember creates a new member record.
func (c *Client) RegisterMember(ctx context.Context, name, nationalID, phone string) error {
	body := map[string]string{"name": name, "idNumber": nationalID, "tel": phone}
	_, err := c.do(ctx, "register", http.MethodPost, "/add_user/", body)
	return err
}

// AddPoint increments the given counter for the linked LINE user and returns
// the updated value the service echoes back.
func (c *Client) AddPoint(ctx context.Context, counter Counter, lineID string) (int, error) {
	body := map[string]string{"lineId": lineID}
	payload, err := c.do(ctx, "add_point", http.MethodPut, "/add/"+counter.Field, body)
	if err != nil {
		return 0, err
	}

	var parsed map[string]int
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return 0, domerrors.NewAccountError("add_point", 0, "", fmt.Errorf("%w: %w", ErrMalformedResponse, err))
	}
	value, ok := parsed[counter.Field]
	if !ok {
		return 0, domerrors.NewAccountError("add_point", 0, "",
			fmt.Errorf("%w: missing %q field", ErrMalformedResponse, counter.Field))
	}
	return value, nil
}

// Logout unbinds the LINE user ID from its member record.
func (c *Client) Logout(ctx context.Context, lineID string) error {
	body := map[string]string{"lineId": lineID}
	_, err := c.do(ctx, "logout", http.MethodDelete, "/logout/", body)
	return err
}

// Ping checks whether the service is reachable at all. Any HTTP
// response counts; only transport failures are errors.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL+"/", http.NoBody)
	if err != nil {
		return err
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	_ = resp.Body.Close()
	return nil
}

// do performs one JSON request and returns the response body on HTTP 200.
// Every other outcome becomes a *domerrors.AccountError whose cause is one of
// the sentinels above.
func (c *Client) do(ctx context.Context, operation, method, path string, body any) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, domerrors.NewAccountError(operation, 0, "", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, domerrors.NewAccountError(operation, 0, "", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpc.Do(req)
	duration := time.Since(start).Seconds()
	if err != nil {
		c.record(operation, "network_error", duration)
		c.log.WithError(err).WithField("operation", operation).Warn("account service request failed")
		return nil, domerrors.NewAccountError(operation, 0, "", fmt.Errorf("%w: %w", ErrUnavailable, err))
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.record(operation, "network_error", duration)
		return nil, domerrors.NewAccountError(operation, 0, "", fmt.Errorf("%w: %w", ErrUnavailable, err))
	}

	if resp.StatusCode != http.StatusOK {
		c.record(operation, fmt.Sprintf("status_%d", resp.StatusCode), duration)
		detail := extractDetail(data)
		c.log.WithFields(map[string]any{
			"operation": operation,
			"status":    resp.StatusCode,
			"detail":    detail,
		}).Warn("account service rejected request")
		return nil, domerrors.NewAccountError(operation, resp.StatusCode, detail, ErrUnexpectedStatus)
	}

	c.record(operation, "success", duration)
	return data, nil
}

func (c *Client) record(operation, status string, duration float64) {
	if c.metrics != nil {
		c.metrics.RecordAccountRequest(operation, status, duration)
	}
}

// extractDetail pulls the service's human-readable "detail" field out of an
// error body, if present.
func extractDetail(data []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return ""
	}
	return parsed.Detail
}

// IsUnavailable reports whether err represents a network-level failure.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

// StatusCode returns the HTTP status carried by err, or 0 for network and
// parse failures.
func StatusCode(err error) int {
	var accErr *domerrors.AccountError
	if errors.As(err, &accErr) {
		return accErr.StatusCode
	}
	return 0
}

// Detail returns the service-supplied detail string carried by err.
func Detail(err error) string {
	var accErr *domerrors.AccountError
	if errors.As(err, &accErr) {
		return accErr.Detail
	}
	return ""
}

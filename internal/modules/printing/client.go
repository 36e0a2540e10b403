package printing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/georgemunganga/lensworks-backend/internal/apperr"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

// Job is the body the print server accepts.
type Job struct {
	Type    string `json:"type"`
	Content string `json:"content"`
	OrderNo string `json:"order_no"`
}

// Printer sends a job to a printer.
type Printer interface {
	Print(ctx context.Context, job Job) error
}

// Client talks to the local print server over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
}

// NewClient posts jobs to baseURL/print. After three consecutive failures
// the breaker fails fast for 30 seconds.
func NewClient(baseURL string, timeout time.Duration, logger log.FieldLogger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "print-server",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= 3
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.WithFields(log.Fields{"breaker": name, "from": from.String(), "to": to.String()}).Warn("print breaker state changed")
			},
		}),
	}
}

// Print delivers job; any non-2xx answer is a failure.
func (c *Client) Print(ctx context.Context, job Job) error {
	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.post(ctx, job)
	})
	if err != nil {
		return apperr.ErrPrintUnavailable.Wrap(err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, job Job) error {
	body, err := json.Marshal(job)
	if err != nil {
		return errors.Wrap(err, "encode print job")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/print", bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "build print request")
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "post print job")
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("print server answered %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}

/*
Copyright 2024-2025 the Unikorn Authors.
Copyright 2026 Nscale.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

//go:generate mockgen -source=api_client.go -destination=mock/requester.go -package=mock Requester

package api

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const mimeJSON = "application/json"

// Requester is the transport contract the resource services are built on.
type Requester interface {
	Get(ctx context.Context, path string) (*Response, error)
	Post(ctx context.Context, path string, body any) (*Response, error)
	Put(ctx context.Context, path string, body any) (*Response, error)
	Delete(ctx context.Context, path string) (*Response, error)
}

// APIClient issues JSON requests against a single base URL.  Non-2xx
// statuses are returned as responses; only transport failures are errors.
type APIClient struct {
	baseURL string
	client  *http.Client
	config  *TestConfig
	logger  *logrus.Entry
	limiter *rate.Limiter
	metrics *Metrics
}

var _ Requester = (*APIClient)(nil)

// NewAPIClientWithConfig returns a client bound to config.BaseURL.
func NewAPIClientWithConfig(config *TestConfig) *APIClient {
	return newAPIClientWithConfig(config, &http.Client{
		Timeout: config.RequestTimeout,
	})
}

// NewAPIClientWithHTTPClient allows the transport to be replaced, e.g. with
// one returned by httptest.Server.Client().
func NewAPIClientWithHTTPClient(config *TestConfig, client *http.Client) *APIClient {
	return newAPIClientWithConfig(config, client)
}

// common constructor logic.
func newAPIClientWithConfig(config *TestConfig, client *http.Client) *APIClient {
	c := &APIClient{
		baseURL: strings.TrimSuffix(config.BaseURL, "/"),
		client:  client,
		config:  config,
		logger:  newLogger(config),
		metrics: NewMetrics(),
	}

	if config.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(config.RequestsPerSecond), 1)
	}

	return c
}

// newLogger writes through GinkgoWriter so request logs are only emitted for
// failing specs, or always when running verbosely.
func newLogger(config *TestConfig) *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(ginkgo.GinkgoWriter)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05.000",
		DisableColors:   true,
	})

	logger.SetLevel(logrus.InfoLevel)

	if config.DebugLogging || config.LogRequests || config.LogResponses {
		logger.SetLevel(logrus.DebugLevel)
	}

	return logrus.NewEntry(logger).WithField("component", "api-client")
}

// BaseURL returns the upstream root the client is bound to.
func (c *APIClient) BaseURL() string {
	return c.baseURL
}

// Metrics returns the per-client request metrics.
func (c *APIClient) Metrics() *Metrics {
	return c.metrics
}

// Get issues a GET.
func (c *APIClient) Get(ctx context.Context, path string) (*Response, error) {
	return c.doRequest(ctx, http.MethodGet, path, nil)
}

// Post issues a POST with a JSON encoded body.
func (c *APIClient) Post(ctx context.Context, path string, body any) (*Response, error) {
	return c.doJSON(ctx, http.MethodPost, path, body)
}

// Put issues a PUT with a JSON encoded body.
func (c *APIClient) Put(ctx context.Context, path string, body any) (*Response, error) {
	return c.doJSON(ctx, http.MethodPut, path, body)
}

// Delete issues a DELETE.
func (c *APIClient) Delete(ctx context.Context, path string) (*Response, error) {
	return c.doRequest(ctx, http.MethodDelete, path, nil)
}

func (c *APIClient) doJSON(ctx context.Context, method, path string, body any) (*Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, &SerializationError{Method: method, Path: path, Err: err}
	}

	return c.doRequest(ctx, method, path, data)
}

// logError logs a transport error with trace context.
func (c *APIClient) logError(method, path string, duration time.Duration, traceParent string, err error, context string) {
	c.logger.WithFields(logrus.Fields{
		"method":      method,
		"path":        path,
		"duration":    duration.String(),
		"traceparent": traceParent,
		"trace_id":    extractTraceID(traceParent),
	}).WithError(err).Error(context)
}

// generateTraceID creates a new W3C trace ID.
// A fresh ID per request means a failure can be found in the upstream logs.
func generateTraceID() string {
	bytes := make([]byte, 16)
	_, _ = rand.Read(bytes)

	return hex.EncodeToString(bytes)
}

// generateSpanID creates a new W3C span ID.
func generateSpanID() string {
	bytes := make([]byte, 8)
	_, _ = rand.Read(bytes)

	return hex.EncodeToString(bytes)
}

// createTraceParent creates a W3C traceparent header value.
func createTraceParent() string {
	return fmt.Sprintf("00-%s-%s-01", generateTraceID(), generateSpanID())
}

// extractTraceID extracts the trace ID from a traceparent header value.
func extractTraceID(traceParent string) string {
	parts := strings.Split(traceParent, "-")
	if len(parts) >= 2 {
		return parts[1]
	}

	return traceParent
}

func (c *APIClient) doRequest(ctx context.Context, method, path string, body []byte) (*Response, error) {
	fullURL := c.baseURL + path
	traceParent := createTraceParent()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &TransportError{Method: method, Path: path, TraceID: extractTraceID(traceParent), Err: err}
		}
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return nil, &TransportError{Method: method, Path: path, TraceID: extractTraceID(traceParent), Err: fmt.Errorf("creating request: %w", err)}
	}

	// Add W3C Trace Context headers
	req.Header.Set("Traceparent", traceParent)
	req.Header.Set("Tracestate", "test-automation=ginkgo")
	req.Header.Set("Accept", mimeJSON)
	req.Header.Set("Content-Type", mimeJSON)

	start := time.Now()
	resp, err := c.client.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.metrics.observe(method, path, 0, duration)
		c.logError(method, path, duration, traceParent, err, "http request failed")

		return nil, &TransportError{Method: method, Path: path, TraceID: extractTraceID(traceParent), Err: err}
	}

	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.observe(method, path, 0, duration)
		c.logError(method, path, duration, traceParent, err, "reading response body")

		return nil, &TransportError{Method: method, Path: path, TraceID: extractTraceID(traceParent), Err: fmt.Errorf("reading response body: %w", err)}
	}

	c.metrics.observe(method, path, resp.StatusCode, duration)

	fields := c.logger.WithFields(logrus.Fields{
		"method":      method,
		"path":        path,
		"status":      resp.StatusCode,
		"duration":    duration.String(),
		"traceparent": traceParent,
	})

	if c.config.LogRequests {
		fields.Debug("request completed")
	}

	if c.config.LogResponses && len(respBody) > 0 {
		fields.WithField("body", string(respBody)).Debug("response body")
	}

	return &Response{
		Method:     method,
		Path:       path,
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
		Body:       respBody,
		TraceID:    extractTraceID(traceParent),
	}, nil
}

/*
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

package api

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records request outcomes for one client.  Each client owns its
// registry so parallel workers never share collectors.
type Metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bookstore_contract_requests_total",
			Help: "Requests issued against the bookstore API by method, resource and status class",
		}, []string{"method", "resource", "class"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bookstore_contract_request_duration_seconds",
			Help:    "Duration of requests against the bookstore API",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "resource"}),
	}

	m.registry.MustRegister(m.requests, m.duration)

	return m
}

// Registry exposes the collectors, e.g. for testutil or a push gateway.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Requests returns the counter for a label combination.
func (m *Metrics) Requests(method, resource, class string) prometheus.Counter {
	return m.requests.WithLabelValues(method, resource, class)
}

func (m *Metrics) observe(method, path string, status int, duration time.Duration) {
	resource := resourceOf(path)

	m.requests.WithLabelValues(method, resource, StatusClass(status)).Inc()
	m.duration.WithLabelValues(method, resource).Observe(duration.Seconds())
}

// StatusClass buckets a status code, "error" being a transport failure.
func StatusClass(status int) string {
	if status < 100 {
		return "error"
	}

	return fmt.Sprintf("%dxx", status/100)
}

// resourceOf maps "/api/v1/Books/12" to "Books".
func resourceOf(path string) string {
	trimmed := strings.TrimPrefix(path, APIRoot)
	trimmed = strings.TrimPrefix(trimmed, "/")

	if i := strings.IndexAny(trimmed, "/?"); i >= 0 {
		trimmed = trimmed[:i]
	}

	if trimmed == "" {
		return "unknown"
	}

	return trimmed
}

// WriteSummary prints the request counters, one line per series.
func (m *Metrics) WriteSummary(w io.Writer) error {
	families, err := m.registry.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}

	var lines []string

	for _, family := range families {
		if family.GetName() != "bookstore_contract_requests_total" {
			continue
		}

		for _, metric := range family.GetMetric() {
			labels := make([]string, 0, len(metric.GetLabel()))
			for _, label := range metric.GetLabel() {
				labels = append(labels, label.GetName()+"="+label.GetValue())
			}

			lines = append(lines, fmt.Sprintf("%s %.0f", strings.Join(labels, ","), metric.GetCounter().GetValue()))
		}
	}

	sort.Strings(lines)

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	return nil
}

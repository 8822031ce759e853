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

package api

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownKind is returned by the generator for an unsupported entity kind.
var ErrUnknownKind = errors.New("unknown entity kind")

// TransportError is returned when no HTTP exchange completed: the network
// was unreachable, DNS or TLS failed, or the context expired.
type TransportError struct {
	Method  string
	Path    string
	TraceID string
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: transport failure (trace ID: %s): %v", e.Method, e.Path, e.TraceID, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// SerializationError is returned when a request body cannot be encoded.
type SerializationError struct {
	Method string
	Path   string
	Err    error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("%s %s: encoding request body: %v", e.Method, e.Path, e.Err)
}

func (e *SerializationError) Unwrap() error {
	return e.Err
}

// DecodeError is returned when a successful response body does not match the
// shape of the entity it should carry.
type DecodeError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
	Err        error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s %s: decoding %d response: %v, body: %s", e.Method, e.Path, e.StatusCode, e.Err, e.Body)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// UnexpectedStatusError is the ordinary assertion failure: the observed status
// is neither expected nor a documented deviation.
type UnexpectedStatusError struct {
	Scenario  string
	Method    string
	Path      string
	Expected  []int
	Actual    int
	Deviation *Deviation
}

func (e *UnexpectedStatusError) Error() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s: %s %s: unexpected status code: expected one of %v, got %d", e.Scenario, e.Method, e.Path, e.Expected, e.Actual)

	if e.Deviation != nil {
		fmt.Fprintf(&b, " (known deviation %s observes %v)", e.Deviation.ID, e.Deviation.Observed)
	}

	return b.String()
}

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
	"encoding/json"
	"net/http"
)

// Book is the Books resource shape.  The service does not distinguish
// server assigned from client supplied ids.
type Book struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	PageCount   int    `json:"pageCount"`
	Excerpt     string `json:"excerpt"`
	PublishDate string `json:"publishDate"`
}

// Author is the Authors resource shape.  IDBook is a soft reference that
// nothing enforces.
type Author struct {
	ID        int64  `json:"id"`
	IDBook    int64  `json:"idBook"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// BookRequest is sent on create and update.
type BookRequest = Book

// AuthorRequest is sent on create and update.
type AuthorRequest = Author

// Response is the handle produced by every completed exchange.
type Response struct {
	Method     string
	Path       string
	StatusCode int
	Header     http.Header
	Body       []byte
	TraceID    string
}

// IsSuccess reports a 2xx status.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Problem is an RFC 7807 error body, as returned by the service on 4xx.
type Problem struct {
	Type    string              `json:"type,omitempty"`
	Title   string              `json:"title,omitempty"`
	Status  int                 `json:"status,omitempty"`
	TraceID string              `json:"traceId,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

// Problem decodes the body as problem details, returning nil when it is
// something else.
func (r *Response) Problem() *Problem {
	if r.IsSuccess() || len(r.Body) == 0 {
		return nil
	}

	var problem Problem
	if err := json.Unmarshal(r.Body, &problem); err != nil {
		return nil
	}

	if problem.Status == 0 && problem.Title == "" {
		return nil
	}

	return &problem
}

// Result carries the response and the entity decoded from it.  Data is only
// populated for 2xx responses.
type Result[T any] struct {
	Response *Response
	Data     T
}

// ListResult is the result of a list call; the service returns bare arrays.
type ListResult[T any] struct {
	Response *Response
	Data     []T
}

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
	"context"
	"encoding/json"
	"fmt"
)

// ResourceService binds a transport to one resource root and decodes the
// bodies it returns into T.
type ResourceService[T any] struct {
	requester Requester
	schemas   *SchemaValidator
	root      string
	item      func(id int64) string
	schema    string
}

// NewResourceService returns a service for an arbitrary root and schema.
// item builds the path of a single entity.
func NewResourceService[T any](requester Requester, schemas *SchemaValidator, root string, item func(id int64) string, schema string) *ResourceService[T] {
	return &ResourceService[T]{
		requester: requester,
		schemas:   schemas,
		root:      root,
		item:      item,
		schema:    schema,
	}
}

// BooksService handles /api/v1/Books.
type BooksService struct {
	*ResourceService[Book]
}

// NewBooksService returns a books service using the embedded schemas.
func NewBooksService(requester Requester) *BooksService {
	return NewBooksServiceWithSchemas(requester, MustLoadSchemas())
}

func NewBooksServiceWithSchemas(requester Requester, schemas *SchemaValidator) *BooksService {
	endpoints := NewEndpoints()

	return &BooksService{
		ResourceService: NewResourceService[Book](requester, schemas, endpoints.Books(), endpoints.Book, SchemaBook),
	}
}

// AuthorsService handles /api/v1/Authors.
type AuthorsService struct {
	*ResourceService[Author]

	endpoints *Endpoints
}

// NewAuthorsService returns an authors service using the embedded schemas.
func NewAuthorsService(requester Requester) *AuthorsService {
	return NewAuthorsServiceWithSchemas(requester, MustLoadSchemas())
}

func NewAuthorsServiceWithSchemas(requester Requester, schemas *SchemaValidator) *AuthorsService {
	endpoints := NewEndpoints()

	return &AuthorsService{
		ResourceService: NewResourceService[Author](requester, schemas, endpoints.Authors(), endpoints.Author, SchemaAuthor),
		endpoints:       endpoints,
	}
}

// ListByBook returns the authors whose idBook matches.
func (s *AuthorsService) ListByBook(ctx context.Context, idBook int64) (*ListResult[Author], error) {
	return s.list(ctx, s.endpoints.AuthorsByBook(idBook))
}

// Root returns the endpoint root the service is bound to.
func (s *ResourceService[T]) Root() string {
	return s.root
}

// List issues GET on the root.
func (s *ResourceService[T]) List(ctx context.Context) (*ListResult[T], error) {
	return s.list(ctx, s.root)
}

func (s *ResourceService[T]) list(ctx context.Context, path string) (*ListResult[T], error) {
	resp, err := s.requester.Get(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", path, err)
	}

	result := &ListResult[T]{
		Response: resp,
	}

	if !resp.IsSuccess() {
		return result, nil
	}

	if err := s.decode(resp, true, &result.Data); err != nil {
		return result, err
	}

	return result, nil
}

// GetByID issues GET on root/{id}.  The id is passed through as is,
// including negative values and values the server cannot represent.
func (s *ResourceService[T]) GetByID(ctx context.Context, id int64) (*Result[T], error) {
	resp, err := s.requester.Get(ctx, s.item(id))
	if err != nil {
		return nil, fmt.Errorf("getting %s: %w", s.item(id), err)
	}

	return s.result(resp)
}

// Create issues POST on the root.  body is usually a T, but any value is
// accepted so that invalid payloads can be submitted.
func (s *ResourceService[T]) Create(ctx context.Context, body any) (*Result[T], error) {
	resp, err := s.requester.Post(ctx, s.root, body)
	if err != nil {
		return nil, fmt.Errorf("creating in %s: %w", s.root, err)
	}

	return s.result(resp)
}

// Update issues PUT on root/{id}.  The id in the path and any id in the body
// are independent and not reconciled.
func (s *ResourceService[T]) Update(ctx context.Context, id int64, body any) (*Result[T], error) {
	resp, err := s.requester.Put(ctx, s.item(id), body)
	if err != nil {
		return nil, fmt.Errorf("updating %s: %w", s.item(id), err)
	}

	return s.result(resp)
}

// Delete issues DELETE on root/{id}.  The body is not decoded.
func (s *ResourceService[T]) Delete(ctx context.Context, id int64) (*Response, error) {
	resp, err := s.requester.Delete(ctx, s.item(id))
	if err != nil {
		return nil, fmt.Errorf("deleting %s: %w", s.item(id), err)
	}

	return resp, nil
}

func (s *ResourceService[T]) result(resp *Response) (*Result[T], error) {
	result := &Result[T]{
		Response: resp,
	}

	if !resp.IsSuccess() {
		return result, nil
	}

	if err := s.decode(resp, false, &result.Data); err != nil {
		return result, err
	}

	return result, nil
}

// decode validates the body against the entity schema before unmarshalling,
// so a body of the wrong shape is an error rather than a zero valued T.
func (s *ResourceService[T]) decode(resp *Response, list bool, target any) error {
	if err := s.schemas.ValidateBytes(s.schema, resp.Body, list); err != nil {
		return &DecodeError{Method: resp.Method, Path: resp.Path, StatusCode: resp.StatusCode, Body: string(resp.Body), Err: err}
	}

	if err := json.Unmarshal(resp.Body, target); err != nil {
		return &DecodeError{Method: resp.Method, Path: resp.Path, StatusCode: resp.StatusCode, Body: string(resp.Body), Err: err}
	}

	return nil
}

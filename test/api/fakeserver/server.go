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

// Package fakeserver is an in-process stand in for the demo bookstore API.
//
// It reproduces the behavior the public deployment is observed to have:
// writes are echoed but not stored, payloads are only rejected when they
// cannot be parsed, and path ids must fit in 32 bits.  Setting Persist makes
// writes visible to later reads, which is what the service documents.
package fakeserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/unikorn-cloud/bookstore/test/api"
)

const (
	DefaultBooks          = 200
	DefaultAuthorsPerBook = 2
)

// zeroDate is what the service returns for a missing publish date.
const zeroDate = "0001-01-01T00:00:00Z"

// seedEpoch anchors seeded publish dates so the dataset is stable.
var seedEpoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

var errEmptyBody = errors.New("a non-empty request body is required")

// Options control the fake's behavior.
type Options struct {
	// Persist stores writes so later reads observe them.
	Persist bool
	// Books is the size of the seeded book collection.
	Books int
	// AuthorsPerBook is the number of seeded authors per book.
	AuthorsPerBook int
}

// bookRecord mirrors the service's Book type; strings are nullable.
type bookRecord struct {
	ID          int32   `json:"id"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	PageCount   int32   `json:"pageCount"`
	Excerpt     *string `json:"excerpt"`
	PublishDate string  `json:"publishDate"`
}

type authorRecord struct {
	ID        int32   `json:"id"`
	IDBook    int32   `json:"idBook"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
}

// bookInput is what the service accepts; publishDate must parse as a date.
type bookInput struct {
	ID          int32   `json:"id"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	PageCount   int32   `json:"pageCount"`
	Excerpt     *string `json:"excerpt"`
	PublishDate *string `json:"publishDate"`
}

// Server serves the Books and Authors resources.
type Server struct {
	options Options
	books   *collection[bookRecord]
	authors *collection[authorRecord]
	router  chi.Router
}

// New returns a seeded server.
func New(options Options) *Server {
	if options.Books <= 0 {
		options.Books = DefaultBooks
	}

	if options.AuthorsPerBook <= 0 {
		options.AuthorsPerBook = DefaultAuthorsPerBook
	}

	s := &Server{
		options: options,
		books:   newCollection[bookRecord](),
		authors: newCollection[authorRecord](),
	}

	s.seed()
	s.router = s.routes()

	return s
}

func ptr(s string) *string {
	return &s
}

func (s *Server) seed() {
	for i := 1; i <= s.options.Books; i++ {
		id := int32(i) //nolint:gosec // bounded by options

		s.books.put(id, bookRecord{
			ID:          id,
			Title:       ptr(fmt.Sprintf("Book %d", i)),
			Description: ptr(fmt.Sprintf("Description of book %d", i)),
			PageCount:   id * 100,
			Excerpt:     ptr(fmt.Sprintf("Excerpt of book %d", i)),
			PublishDate: seedEpoch.AddDate(0, 0, -i).Format(time.RFC3339),
		})

		for j := 0; j < s.options.AuthorsPerBook; j++ {
			authorID := int32((i-1)*s.options.AuthorsPerBook + j + 1) //nolint:gosec // bounded by options

			s.authors.put(authorID, authorRecord{
				ID:        authorID,
				IDBook:    id,
				FirstName: ptr(fmt.Sprintf("First Name %d", authorID)),
				LastName:  ptr(fmt.Sprintf("Last Name %d", authorID)),
			})
		}
	}
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.NoCache)

	r.Route(api.BooksRoot, func(r chi.Router) {
		r.Get("/", s.listBooks)
		r.Post("/", s.createBook)
		r.Get("/{id}", s.getBook)
		r.Put("/{id}", s.updateBook)
		r.Delete("/{id}", s.deleteBook)
	})

	r.Route(api.AuthorsRoot, func(r chi.Router) {
		r.Get("/", s.listAuthors)
		r.Post("/", s.createAuthor)
		r.Get("/authors/books/{idBook}", s.listAuthorsByBook)
		r.Get("/{id}", s.getAuthor)
		r.Put("/{id}", s.updateAuthor)
		r.Delete("/{id}", s.deleteAuthor)
	})

	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// BookCount returns the number of stored books.
func (s *Server) BookCount() int {
	return s.books.len()
}

// AuthorCount returns the number of stored authors.
func (s *Server) AuthorCount() int {
	return s.authors.len()
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(body)
}

func writeProblem(w http.ResponseWriter, r *http.Request, status int, title string, errs map[string][]string) {
	problem := api.Problem{
		Type:    fmt.Sprintf("https://tools.ietf.org/html/rfc9110#section-15.%d", status),
		Title:   title,
		Status:  status,
		TraceID: traceID(r),
		Errors:  errs,
	}

	w.Header().Set("Content-Type", "application/problem+json; charset=utf-8")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(problem)
}

func traceID(r *http.Request) string {
	parts := strings.Split(r.Header.Get("Traceparent"), "-")
	if len(parts) >= 2 {
		return parts[1]
	}

	return middleware.GetReqID(r.Context())
}

func notFound(w http.ResponseWriter, r *http.Request) {
	writeProblem(w, r, http.StatusNotFound, "Not Found", nil)
}

func badRequest(w http.ResponseWriter, r *http.Request, field string, err error) {
	writeProblem(w, r, http.StatusBadRequest, "One or more validation errors occurred.", map[string][]string{
		field: {err.Error()},
	})
}

// pathID parses a path parameter the way the service does, as a 32 bit
// integer.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int32, bool) {
	raw := chi.URLParam(r, name)

	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		badRequest(w, r, name, fmt.Errorf("the value '%s' is not valid", raw))
		return 0, false
	}

	return int32(id), true
}

func decodeBody(w http.ResponseWriter, r *http.Request, target any) bool {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		badRequest(w, r, "$", err)
		return false
	}

	if len(strings.TrimSpace(string(data))) == 0 {
		badRequest(w, r, "", errEmptyBody)
		return false
	}

	if err := json.Unmarshal(data, target); err != nil {
		badRequest(w, r, "$", err)
		return false
	}

	return true
}

func (s *Server) listBooks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.books.list(nil))
}

func (s *Server) getBook(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	book, ok := s.books.get(id)
	if !ok {
		notFound(w, r)
		return
	}

	writeJSON(w, http.StatusOK, book)
}

// readBook decodes and normalizes a book body.
func readBook(w http.ResponseWriter, r *http.Request) (bookRecord, bool) {
	var in bookInput
	if !decodeBody(w, r, &in) {
		return bookRecord{}, false
	}

	book := bookRecord{
		ID:          in.ID,
		Title:       in.Title,
		Description: in.Description,
		PageCount:   in.PageCount,
		Excerpt:     in.Excerpt,
		PublishDate: zeroDate,
	}

	if in.PublishDate != nil {
		t, err := time.Parse(time.RFC3339Nano, *in.PublishDate)
		if err != nil {
			badRequest(w, r, "$.publishDate", fmt.Errorf("the JSON value could not be converted to a date: %w", err))
			return bookRecord{}, false
		}

		book.PublishDate = t.UTC().Format(time.RFC3339Nano)
	}

	return book, true
}

func (s *Server) createBook(w http.ResponseWriter, r *http.Request) {
	book, ok := readBook(w, r)
	if !ok {
		return
	}

	if s.options.Persist {
		s.books.put(book.ID, book)
	}

	writeJSON(w, http.StatusOK, book)
}

// updateBook is an upsert addressed by the path id.  The body is echoed as
// sent; only the stored copy takes the path id.
func (s *Server) updateBook(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	book, ok := readBook(w, r)
	if !ok {
		return
	}

	if s.options.Persist {
		stored := book
		stored.ID = id
		s.books.put(id, stored)
	}

	writeJSON(w, http.StatusOK, book)
}

func (s *Server) deleteBook(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if s.options.Persist {
		s.books.delete(id)
	}

	w.WriteHeader(http.StatusOK)
}

func (s *Server) listAuthors(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.authors.list(nil))
}

func (s *Server) listAuthorsByBook(w http.ResponseWriter, r *http.Request) {
	idBook, ok := pathID(w, r, "idBook")
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, s.authors.list(func(a authorRecord) bool {
		return a.IDBook == idBook
	}))
}

func (s *Server) getAuthor(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	author, ok := s.authors.get(id)
	if !ok {
		notFound(w, r)
		return
	}

	writeJSON(w, http.StatusOK, author)
}

func (s *Server) createAuthor(w http.ResponseWriter, r *http.Request) {
	var author authorRecord
	if !decodeBody(w, r, &author) {
		return
	}

	if s.options.Persist {
		s.authors.put(author.ID, author)
	}

	writeJSON(w, http.StatusOK, author)
}

func (s *Server) updateAuthor(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var author authorRecord
	if !decodeBody(w, r, &author) {
		return
	}

	if s.options.Persist {
		stored := author
		stored.ID = id
		s.authors.put(id, stored)
	}

	writeJSON(w, http.StatusOK, author)
}

func (s *Server) deleteAuthor(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if s.options.Persist {
		s.authors.delete(id)
	}

	w.WriteHeader(http.StatusOK)
}

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

//nolint:revive,staticcheck // dot imports are standard for Ginkgo/Gomega test code
package api

import (
	"context"
	"math"
	"slices"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spjmurray/go-util/pkg/set"
)

// MaxSafeInteger is the largest integer a JSON number carries exactly.  The
// service stores ids as 32 bit integers, so it cannot parse this one.
const MaxSafeInteger int64 = 1<<53 - 1

// MissingID is an id outside both the seeded and the generated ranges.
const MissingID int64 = math.MaxInt32 - 1

// Harness bundles what a scenario needs.  Each spec builds its own.
type Harness struct {
	Client       *APIClient
	Books        *BooksService
	Authors      *AuthorsService
	Generator    *Generator
	Expectations *Expectations
	Config       *TestConfig
}

// NewHarness builds a client and both services for config.
func NewHarness(config *TestConfig, schemas *SchemaValidator, expectations *Expectations) *Harness {
	client := NewAPIClientWithConfig(config)

	return &Harness{
		Client:       client,
		Books:        NewBooksServiceWithSchemas(client, schemas),
		Authors:      NewAuthorsServiceWithSchemas(client, schemas),
		Generator:    NewGenerator(),
		Expectations: expectations,
		Config:       config,
	}
}

// CreateBookWithCleanup creates a book, checks it against the contract and
// schedules its deletion.  Cleanup runs whether the test passes or fails.
func CreateBookWithCleanup(h *Harness, ctx context.Context, book Book) *Result[Book] {
	GinkgoHelper()

	result, err := h.Books.Create(ctx, book)
	Expect(err).NotTo(HaveOccurred())
	ExpectStatus(h.Expectations, "books.create.valid", result.Response)

	GinkgoWriter.Printf("Created book with ID: %d\n", book.ID)

	DeferCleanup(func(ctx context.Context) {
		GinkgoWriter.Printf("Cleaning up book: %d\n", book.ID)

		resp, deleteErr := h.Books.Delete(ctx, book.ID)
		if deleteErr != nil {
			GinkgoWriter.Printf("Warning: Failed to delete book %d: %v\n", book.ID, deleteErr)
			return
		}

		GinkgoWriter.Printf("Deleted book %d with status %d\n", book.ID, resp.StatusCode)
	})

	return result
}

// CreateAuthorWithCleanup is the author equivalent of CreateBookWithCleanup.
func CreateAuthorWithCleanup(h *Harness, ctx context.Context, author Author) *Result[Author] {
	GinkgoHelper()

	result, err := h.Authors.Create(ctx, author)
	Expect(err).NotTo(HaveOccurred())
	ExpectStatus(h.Expectations, "authors.create.valid", result.Response)

	GinkgoWriter.Printf("Created author with ID: %d\n", author.ID)

	DeferCleanup(func(ctx context.Context) {
		resp, deleteErr := h.Authors.Delete(ctx, author.ID)
		if deleteErr != nil {
			GinkgoWriter.Printf("Warning: Failed to delete author %d: %v\n", author.ID, deleteErr)
			return
		}

		GinkgoWriter.Printf("Deleted author %d with status %d\n", author.ID, resp.StatusCode)
	})

	return result
}

// DeferBookDeletion schedules deletion of a book the scenario may have
// stored without creating it explicitly, e.g. an accepted invalid payload.
func DeferBookDeletion(h *Harness, id int64) {
	DeferCleanup(func(ctx context.Context) {
		_, _ = h.Books.Delete(ctx, id)
	})
}

// DeferAuthorDeletion is the author equivalent of DeferBookDeletion.
func DeferAuthorDeletion(h *Harness, id int64) {
	DeferCleanup(func(ctx context.Context) {
		_, _ = h.Authors.Delete(ctx, id)
	})
}

// IsSeededID reports whether id lies in the pre-populated range.  Scenarios
// only write there to update a record in place, never to create one.
func IsSeededID(id int64) bool {
	return id > 0 && id < ScenarioID
}

func firstSeeded[T any](items []T, id func(T) int64) (T, bool) {
	for _, item := range items {
		if IsSeededID(id(item)) {
			return item, true
		}
	}

	var zero T

	return zero, false
}

// FirstSeededBook returns the first listed book from the seeded range.
func FirstSeededBook(books []Book) (Book, bool) {
	return firstSeeded(books, func(b Book) int64 { return b.ID })
}

// FirstSeededAuthor returns the first listed author from the seeded range.
func FirstSeededAuthor(authors []Author) (Author, bool) {
	return firstSeeded(authors, func(a Author) int64 { return a.ID })
}

// SeededBook returns a book of the pre-populated collection.  Records other
// scenarios stored fall outside the seeded range and are skipped.
func SeededBook(h *Harness, ctx context.Context) Book {
	GinkgoHelper()

	result, err := h.Books.List(ctx)
	Expect(err).NotTo(HaveOccurred())
	ExpectStatus(h.Expectations, "books.list", result.Response)

	book, ok := FirstSeededBook(result.Data)
	Expect(ok).To(BeTrue(), "the demo dataset should be seeded")

	return book
}

// SeededAuthor returns an author of the pre-populated collection.
func SeededAuthor(h *Harness, ctx context.Context) Author {
	GinkgoHelper()

	result, err := h.Authors.List(ctx)
	Expect(err).NotTo(HaveOccurred())
	ExpectStatus(h.Expectations, "authors.list", result.Response)

	author, ok := FirstSeededAuthor(result.Data)
	Expect(ok).To(BeTrue(), "the demo dataset should be seeded")

	return author
}

// VerifyBookEcho verifies the fields a client supplies came back unchanged.
func VerifyBookEcho(got, want Book) {
	GinkgoHelper()

	Expect(got.ID).To(Equal(want.ID))
	Expect(got.Title).To(Equal(want.Title))
	Expect(got.Description).To(Equal(want.Description))
	Expect(got.PageCount).To(Equal(want.PageCount))
	Expect(got.Excerpt).To(Equal(want.Excerpt))
}

// VerifyAuthorEcho verifies the fields a client supplies came back unchanged.
func VerifyAuthorEcho(got, want Author) {
	GinkgoHelper()

	Expect(got.ID).To(Equal(want.ID))
	Expect(got.IDBook).To(Equal(want.IDBook))
	Expect(got.FirstName).To(Equal(want.FirstName))
	Expect(got.LastName).To(Equal(want.LastName))
}

// VerifyBookPresence verifies that books are present in the list.
func VerifyBookPresence(books []Book, expectedIDs []int64) {
	GinkgoHelper()

	VerifyPresence(extractBookIDs(books), expectedIDs)
}

// VerifyPresence verifies every expected id appears in ids.
func VerifyPresence(ids, expectedIDs []int64) {
	GinkgoHelper()

	missing := set.New[int64](expectedIDs...).Difference(set.New[int64](ids...))
	Expect(slices.Sorted(missing.All())).To(BeEmpty(), "expected ids missing from the list")
}

// VerifyUniqueIDs verifies a list carries no duplicate ids.
func VerifyUniqueIDs(ids []int64) {
	GinkgoHelper()

	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		Expect(seen).NotTo(HaveKey(id), "duplicate id %d", id)
		seen[id] = struct{}{}
	}
}

func extractBookIDs(books []Book) []int64 {
	ids := make([]int64, len(books))

	for i, book := range books {
		ids[i] = book.ID
	}

	return ids
}

// BookIDs extracts ids from a list of books.
func BookIDs(books []Book) []int64 {
	return extractBookIDs(books)
}

// AuthorIDs extracts ids from a list of authors.
func AuthorIDs(authors []Author) []int64 {
	ids := make([]int64, len(authors))

	for i, author := range authors {
		ids[i] = author.ID
	}

	return ids
}

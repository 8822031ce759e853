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
	"fmt"
	mathrand "math/rand/v2"
	"sync"
	"sync/atomic"
	"time"
)

// ScenarioID is the fixed id of the default payloads.  Generated ids are
// drawn from the range above it, which also sits above the demo service's
// seeded collections.
const (
	ScenarioID     = 1000
	MinGeneratedID = ScenarioID + 1
	MaxGeneratedID = 9999
)

// Ids the invalid payloads are stored under by a service that accepts them.
const (
	InvalidBookID   int64 = -1
	InvalidAuthorID int64 = 0
)

// Kind names an entity type for the generic generator entry points.
type Kind string

const (
	KindBook   Kind = "book"
	KindAuthor Kind = "author"
)

// counter makes generated strings unique within a process even when two
// calls land on the same clock tick.
var counter atomic.Uint64

// Generator produces valid and deliberately invalid entities.  It is safe for
// concurrent use.
type Generator struct {
	lock sync.Mutex
	rng  *mathrand.Rand
	now  func() time.Time
}

// NewGenerator returns a generator seeded from the clock.
func NewGenerator() *Generator {
	seed := uint64(time.Now().UnixNano()) //nolint:gosec // not a security boundary

	return NewGeneratorWithSeed(seed)
}

// NewGeneratorWithSeed returns a generator with a reproducible id sequence.
func NewGeneratorWithSeed(seed uint64) *Generator {
	return &Generator{
		rng: mathrand.New(mathrand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		now: time.Now,
	}
}

func (g *Generator) randomID() int64 {
	g.lock.Lock()
	defer g.lock.Unlock()

	return MinGeneratedID + g.rng.Int64N(MaxGeneratedID-MinGeneratedID+1)
}

func (g *Generator) randomInt(lo, hi int) int {
	g.lock.Lock()
	defer g.lock.Unlock()

	return lo + g.rng.IntN(hi-lo+1)
}

// suffix is unique per call within the process.
func (g *Generator) suffix() string {
	return fmt.Sprintf("%s-%d", g.now().UTC().Format("20060102-150405.000"), counter.Add(1))
}

func (g *Generator) pickID(id []int64) int64 {
	if len(id) > 0 {
		return id[0]
	}

	return g.randomID()
}

// ValidBook returns a book with every field populated.  When id is supplied
// it is used verbatim, otherwise one is drawn at random.
func (g *Generator) ValidBook(id ...int64) Book {
	suffix := g.suffix()

	return NewBookPayload().
		WithID(g.pickID(id)).
		WithTitle("Book " + suffix).
		WithDescription("Description for book " + suffix).
		WithPageCount(g.randomInt(50, 1200)).
		WithExcerpt("Excerpt from book " + suffix).
		WithPublishDate(g.now().UTC().AddDate(0, 0, -g.randomInt(0, 3650)).Truncate(time.Second)).
		Build()
}

// ValidAuthor returns an author referencing a book in the seeded range.
func (g *Generator) ValidAuthor(id ...int64) Author {
	suffix := g.suffix()

	return NewAuthorPayload().
		WithID(g.pickID(id)).
		WithIDBook(int64(g.randomInt(1, 200))).
		WithFirstName("First " + suffix).
		WithLastName("Last " + suffix).
		Build()
}

// InvalidBook returns a partial book: negative id and page count, an empty
// title, and no description, excerpt or publish date.
func (g *Generator) InvalidBook() map[string]any {
	return map[string]any{
		"id":        -1,
		"title":     "",
		"pageCount": -1,
	}
}

// InvalidAuthor returns an author with a negative book reference and empty
// names.  The id is omitted.
func (g *Generator) InvalidAuthor() map[string]any {
	return map[string]any{
		"idBook":    -1,
		"firstName": "",
		"lastName":  "",
	}
}

// GenerateValid dispatches on kind.  A nil id selects a random one.
func (g *Generator) GenerateValid(kind Kind, id *int64) (any, error) {
	var ids []int64
	if id != nil {
		ids = append(ids, *id)
	}

	switch kind {
	case KindBook:
		return g.ValidBook(ids...), nil
	case KindAuthor:
		return g.ValidAuthor(ids...), nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
}

// GenerateInvalid dispatches on kind.
func (g *Generator) GenerateInvalid(kind Kind) (map[string]any, error) {
	switch kind {
	case KindBook:
		return g.InvalidBook(), nil
	case KindAuthor:
		return g.InvalidAuthor(), nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
}

// BookPayloadBuilder builds book payloads for testing.
type BookPayloadBuilder struct {
	payload Book
}

// NewBookPayload creates a book builder with fixed, valid defaults.
func NewBookPayload() *BookPayloadBuilder {
	return &BookPayloadBuilder{
		payload: Book{
			ID:          ScenarioID,
			Title:       "T",
			Description: "D",
			PageCount:   150,
			Excerpt:     "E",
			PublishDate: "2024-01-01T00:00:00Z",
		},
	}
}

func (b *BookPayloadBuilder) WithID(id int64) *BookPayloadBuilder {
	b.payload.ID = id
	return b
}

func (b *BookPayloadBuilder) WithTitle(title string) *BookPayloadBuilder {
	b.payload.Title = title
	return b
}

func (b *BookPayloadBuilder) WithDescription(description string) *BookPayloadBuilder {
	b.payload.Description = description
	return b
}

func (b *BookPayloadBuilder) WithPageCount(pageCount int) *BookPayloadBuilder {
	b.payload.PageCount = pageCount
	return b
}

func (b *BookPayloadBuilder) WithExcerpt(excerpt string) *BookPayloadBuilder {
	b.payload.Excerpt = excerpt
	return b
}

// WithPublishDate formats t as RFC 3339.
func (b *BookPayloadBuilder) WithPublishDate(t time.Time) *BookPayloadBuilder {
	b.payload.PublishDate = t.Format(time.RFC3339)
	return b
}

// Build returns the completed book payload.
func (b *BookPayloadBuilder) Build() Book {
	return b.payload
}

// AuthorPayloadBuilder builds author payloads for testing.
type AuthorPayloadBuilder struct {
	payload Author
}

// NewAuthorPayload creates an author builder with fixed, valid defaults.
func NewAuthorPayload() *AuthorPayloadBuilder {
	return &AuthorPayloadBuilder{
		payload: Author{
			ID:        ScenarioID,
			IDBook:    1,
			FirstName: "F",
			LastName:  "L",
		},
	}
}

func (b *AuthorPayloadBuilder) WithID(id int64) *AuthorPayloadBuilder {
	b.payload.ID = id
	return b
}

func (b *AuthorPayloadBuilder) WithIDBook(idBook int64) *AuthorPayloadBuilder {
	b.payload.IDBook = idBook
	return b
}

func (b *AuthorPayloadBuilder) WithFirstName(name string) *AuthorPayloadBuilder {
	b.payload.FirstName = name
	return b
}

func (b *AuthorPayloadBuilder) WithLastName(name string) *AuthorPayloadBuilder {
	b.payload.LastName = name
	return b
}

// Build returns the completed author payload.
func (b *AuthorPayloadBuilder) Build() Author {
	return b.payload
}

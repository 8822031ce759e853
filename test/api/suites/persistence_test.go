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

//nolint:testpackage,revive // test package in suites is standard for these tests, dot imports standard for Ginkgo
package suites

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/unikorn-cloud/bookstore/test/api"
)

// These specs run the multi-step scenarios against a store that keeps
// writes, so every read-after-write comparison is exercised.
var _ = Describe("Persistent store", Label("persistent-store"), func() {
	var p *api.Harness

	BeforeEach(func() {
		if persistentConfig == nil {
			Skip("a persisting store is only available with the in-process fake")
		}

		p = api.NewHarness(persistentConfig, schemas, expectations)
	})

	Context("When writes are stored", func() {
		It("should return created records with equal identifying fields", Label(api.LabelHappyPath), func() {
			_, outcome := createThenGetBook(p, p.Generator.ValidBook())
			Expect(outcome).To(Equal(api.OutcomeMatched))

			Expect(createThenGetAuthor(p, p.Generator.ValidAuthor())).To(Equal(api.OutcomeMatched))
		})

		It("should address the records named by the path", Label(api.LabelEdgeCase), func() {
			updateBookWithMismatchedID(p)
			updateAuthorWithMismatchedID(p)
		})

		It("should keep accepted invalid payloads out of the seeded selection", Label(api.LabelEdgeCase), func() {
			api.DeferBookDeletion(p, api.InvalidBookID)
			api.DeferAuthorDeletion(p, api.InvalidAuthorID)

			book, err := p.Books.Create(ctx, p.Generator.InvalidBook())
			Expect(err).NotTo(HaveOccurred())
			api.ExpectStatus(expectations, "books.create.invalid", book.Response)

			author, err := p.Authors.Create(ctx, p.Generator.InvalidAuthor())
			Expect(err).NotTo(HaveOccurred())
			api.ExpectStatus(expectations, "authors.create.invalid", author.Response)

			seededBook := api.SeededBook(p, ctx)
			Expect(api.IsSeededID(seededBook.ID)).To(BeTrue())

			byBook, err := p.Authors.ListByBook(ctx, seededBook.ID)
			Expect(err).NotTo(HaveOccurred())
			api.ExpectStatus(expectations, "authors.list-by-book", byBook.Response)
			Expect(byBook.Data).NotTo(BeEmpty())

			Expect(api.IsSeededID(api.SeededAuthor(p, ctx).ID)).To(BeTrue())
		})
	})

	Context("When running a full lifecycle", func() {
		BeforeEach(skipIntegration)

		It("should create, read, update and delete each resource", Label(api.LabelIntegration), func() {
			bookLifecycle(p)
			authorLifecycle(p)
		})

		It("should list an attached author under its book", Label(api.LabelIntegration), func() {
			attachAuthorToSeededBook(p)
		})
	})
})

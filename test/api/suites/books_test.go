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

var _ = Describe("Books", func() {
	Context("When reading books", func() {
		Describe("Given the seeded collection", func() {
			It("should list every book with a valid shape", api.ScenarioLabels(expectations, api.LabelHappyPath, "books.list"), func() {
				result, err := h.Books.List(ctx)
				Expect(err).NotTo(HaveOccurred())
				api.ExpectStatus(expectations, "books.list", result.Response)

				Expect(result.Data).NotTo(BeEmpty())
				api.VerifyUniqueIDs(api.BookIDs(result.Data))
				api.VerifyBookPresence(result.Data, []int64{api.SeededBook(h, ctx).ID})
			})

			It("should return an existing book", api.ScenarioLabels(expectations, api.LabelHappyPath, "books.get.existing"), func() {
				seeded := api.SeededBook(h, ctx)

				result, err := h.Books.GetByID(ctx, seeded.ID)
				Expect(err).NotTo(HaveOccurred())
				api.ExpectStatus(expectations, "books.get.existing", result.Response)
				Expect(result.Data.ID).To(Equal(seeded.ID))
			})
		})

		Describe("Given ids that do not exist", func() {
			It("should return not found for an unknown id", api.ScenarioLabels(expectations, api.LabelEdgeCase, "books.get.missing"), func() {
				result, err := h.Books.GetByID(ctx, api.MissingID)
				Expect(err).NotTo(HaveOccurred())
				api.ExpectStatus(expectations, "books.get.missing", result.Response)
			})

			It("should return not found for a negative id", api.ScenarioLabels(expectations, api.LabelEdgeCase, "books.get.negative"), func() {
				result, err := h.Books.GetByID(ctx, -1)
				Expect(err).NotTo(HaveOccurred())
				api.ExpectStatus(expectations, "books.get.negative", result.Response)
			})

			It("should reject an id wider than 32 bits", api.ScenarioLabels(expectations, api.LabelEdgeCase, "books.get.max-int"), func() {
				result, err := h.Books.GetByID(ctx, api.MaxSafeInteger)
				Expect(err).NotTo(HaveOccurred())
				api.ExpectStatus(expectations, "books.get.max-int", result.Response)
				Expect(result.Response.Problem()).NotTo(BeNil())
			})
		})
	})

	Context("When creating a book", func() {
		Describe("Given a valid payload", func() {
			It("should echo the book and report whether it was stored",
				api.ScenarioLabels(expectations, api.LabelHappyPath, "books.create.valid", "books.get.after-create"), func() {
					created, _ := createThenGetBook(h, api.NewBookPayload().Build())
					Expect(created.Data.Title).To(Equal("T"))
				})
		})

		Describe("Given an invalid payload", func() {
			It("should reject empty strings and negative numbers", api.ScenarioLabels(expectations, api.LabelEdgeCase, "books.create.invalid"), func() {
				api.DeferBookDeletion(h, api.InvalidBookID)

				result, err := h.Books.Create(ctx, h.Generator.InvalidBook())
				Expect(err).NotTo(HaveOccurred())
				api.ExpectStatus(expectations, "books.create.invalid", result.Response)
			})

			It("should reject a field of the wrong type", api.ScenarioLabels(expectations, api.LabelEdgeCase, "books.create.wrong-type"), func() {
				result, err := h.Books.Create(ctx, map[string]any{
					"id":        "not-a-number",
					"pageCount": "many",
				})
				Expect(err).NotTo(HaveOccurred())
				api.ExpectStatus(expectations, "books.create.wrong-type", result.Response)

				problem := result.Response.Problem()
				Expect(problem).NotTo(BeNil())
				Expect(problem.Errors).NotTo(BeEmpty())
			})
		})
	})

	Context("When updating a book", func() {
		Describe("Given an existing book", func() {
			It("should echo the updated fields", api.ScenarioLabels(expectations, api.LabelHappyPath, "books.update.existing"), func() {
				seeded := api.SeededBook(h, ctx)
				update := h.Generator.ValidBook(seeded.ID)

				result, err := h.Books.Update(ctx, seeded.ID, update)
				Expect(err).NotTo(HaveOccurred())
				api.ExpectStatus(expectations, "books.update.existing", result.Response)
				api.VerifyBookEcho(result.Data, update)
			})
		})

		Describe("Given unusual ids", func() {
			It("should upsert a missing id", api.ScenarioLabels(expectations, api.LabelEdgeCase, "books.update.missing"), func() {
				id := api.MissingID - 1
				api.DeferBookDeletion(h, id)

				result, err := h.Books.Update(ctx, id, h.Generator.ValidBook(id))
				Expect(err).NotTo(HaveOccurred())
				api.ExpectStatus(expectations, "books.update.missing", result.Response)
			})

			It("should address the book named by the path when the body id differs",
				api.ScenarioLabels(expectations, api.LabelEdgeCase,
					"books.create.valid", "books.get.after-create", "books.update.id-mismatch", "books.get.existing", "books.get.missing"), func() {
					updateBookWithMismatchedID(h)
				})

			It("should reject an id wider than 32 bits", api.ScenarioLabels(expectations, api.LabelEdgeCase, "books.update.max-int"), func() {
				result, err := h.Books.Update(ctx, api.MaxSafeInteger, h.Generator.ValidBook())
				Expect(err).NotTo(HaveOccurred())
				api.ExpectStatus(expectations, "books.update.max-int", result.Response)
			})
		})

		Describe("Given an invalid payload", func() {
			It("should reject empty strings and negative numbers", api.ScenarioLabels(expectations, api.LabelEdgeCase, "books.create.valid", "books.update.invalid"), func() {
				book := h.Generator.ValidBook()
				api.CreateBookWithCleanup(h, ctx, book)

				result, err := h.Books.Update(ctx, book.ID, h.Generator.InvalidBook())
				Expect(err).NotTo(HaveOccurred())
				api.ExpectStatus(expectations, "books.update.invalid", result.Response)
			})
		})
	})

	Context("When deleting a book", func() {
		Describe("Given a book created by the test", func() {
			It("should succeed, and succeed again", api.ScenarioLabels(expectations, api.LabelHappyPath, "books.delete.existing", "books.delete.missing"), func() {
				book := h.Generator.ValidBook()
				api.CreateBookWithCleanup(h, ctx, book)

				resp, err := h.Books.Delete(ctx, book.ID)
				Expect(err).NotTo(HaveOccurred())
				api.ExpectStatus(expectations, "books.delete.existing", resp)

				resp, err = h.Books.Delete(ctx, book.ID)
				Expect(err).NotTo(HaveOccurred())
				api.ExpectStatus(expectations, "books.delete.missing", resp)
			})
		})

		Describe("Given unusual ids", func() {
			It("should succeed for an unknown id", api.ScenarioLabels(expectations, api.LabelEdgeCase, "books.delete.missing"), func() {
				resp, err := h.Books.Delete(ctx, api.MissingID)
				Expect(err).NotTo(HaveOccurred())
				api.ExpectStatus(expectations, "books.delete.missing", resp)
			})

			It("should reject an id wider than 32 bits", api.ScenarioLabels(expectations, api.LabelEdgeCase, "books.delete.max-int"), func() {
				resp, err := h.Books.Delete(ctx, api.MaxSafeInteger)
				Expect(err).NotTo(HaveOccurred())
				api.ExpectStatus(expectations, "books.delete.max-int", resp)
			})
		})
	})

	Context("When running a full lifecycle", func() {
		BeforeEach(skipIntegration)

		It("should create, read, update and delete a book",
			api.ScenarioLabels(expectations, api.LabelIntegration,
				"books.create.valid", "books.get.after-create", "books.update.existing", "books.get.existing", "books.delete.existing", "books.get.after-delete"), func() {
				bookLifecycle(h)
			})

		It("should update a seeded book, then create and delete another",
			api.ScenarioLabels(expectations, api.LabelIntegration,
				"books.list", "books.get.existing", "books.update.existing", "books.create.valid", "books.delete.existing", "books.get.after-delete"), func() {
				seeded := api.SeededBook(h, ctx)

				existing, err := h.Books.GetByID(ctx, seeded.ID)
				Expect(err).NotTo(HaveOccurred())
				api.ExpectStatus(expectations, "books.get.existing", existing.Response)

				update := existing.Data
				update.PageCount++

				updated, err := h.Books.Update(ctx, seeded.ID, update)
				Expect(err).NotTo(HaveOccurred())
				api.ExpectStatus(expectations, "books.update.existing", updated.Response)
				Expect(updated.Data.PageCount).To(Equal(update.PageCount))

				book := h.Generator.ValidBook()
				api.CreateBookWithCleanup(h, ctx, book)

				resp, err := h.Books.Delete(ctx, book.ID)
				Expect(err).NotTo(HaveOccurred())
				api.ExpectStatus(expectations, "books.delete.existing", resp)

				fetched, err := h.Books.GetByID(ctx, book.ID)
				Expect(err).NotTo(HaveOccurred())
				api.ExpectStatus(expectations, "books.get.after-delete", fetched.Response)
			})
	})
})

// createThenGetBook creates book and reads it back.  The read is only
// compared when the service stored the write.
func createThenGetBook(harness *api.Harness, book api.Book) (*api.Result[api.Book], api.Outcome) {
	GinkgoHelper()

	created := api.CreateBookWithCleanup(harness, ctx, book)
	api.VerifyBookEcho(created.Data, book)

	fetched, err := harness.Books.GetByID(ctx, book.ID)
	Expect(err).NotTo(HaveOccurred())

	outcome := api.ExpectStatus(expectations, "books.get.after-create", fetched.Response)
	if outcome == api.OutcomeMatched {
		api.VerifyBookEcho(fetched.Data, book)
	}

	return created, outcome
}

// updateBookWithMismatchedID records which id the service answers with and,
// when writes are stored, checks the path id was the one addressed.
func updateBookWithMismatchedID(harness *api.Harness) {
	GinkgoHelper()

	target := harness.Generator.ValidBook()
	_, outcome := createThenGetBook(harness, target)

	update := harness.Generator.ValidBook()
	Expect(update.ID).NotTo(Equal(target.ID))

	api.DeferBookDeletion(harness, update.ID)

	result, err := harness.Books.Update(ctx, target.ID, update)
	Expect(err).NotTo(HaveOccurred())
	api.ExpectStatus(expectations, "books.update.id-mismatch", result.Response)
	api.RecordIdentity("books.update.id-mismatch", target.ID, update.ID, result)

	if outcome != api.OutcomeMatched {
		return
	}

	addressed, err := harness.Books.GetByID(ctx, target.ID)
	Expect(err).NotTo(HaveOccurred())
	api.ExpectStatus(expectations, "books.get.existing", addressed.Response)
	Expect(addressed.Data.ID).To(Equal(target.ID))
	Expect(addressed.Data.Title).To(Equal(update.Title))

	other, err := harness.Books.GetByID(ctx, update.ID)
	Expect(err).NotTo(HaveOccurred())
	api.ExpectStatus(expectations, "books.get.missing", other.Response)
}

// bookLifecycle creates, reads, updates and deletes one book.
func bookLifecycle(harness *api.Harness) {
	GinkgoHelper()

	book := harness.Generator.ValidBook()
	_, outcome := createThenGetBook(harness, book)

	update := harness.Generator.ValidBook(book.ID)

	updated, err := harness.Books.Update(ctx, book.ID, update)
	Expect(err).NotTo(HaveOccurred())
	api.ExpectStatus(expectations, "books.update.existing", updated.Response)
	api.VerifyBookEcho(updated.Data, update)

	if outcome == api.OutcomeMatched {
		stored, err := harness.Books.GetByID(ctx, book.ID)
		Expect(err).NotTo(HaveOccurred())
		api.ExpectStatus(expectations, "books.get.existing", stored.Response)
		api.VerifyBookEcho(stored.Data, update)
	}

	resp, err := harness.Books.Delete(ctx, book.ID)
	Expect(err).NotTo(HaveOccurred())
	api.ExpectStatus(expectations, "books.delete.existing", resp)

	fetched, err := harness.Books.GetByID(ctx, book.ID)
	Expect(err).NotTo(HaveOccurred())
	api.ExpectStatus(expectations, "books.get.after-delete", fetched.Response)
}

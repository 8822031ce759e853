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
	"strconv"
)

// APIRoot is the versioned prefix of every resource.
const APIRoot = "/api/v1"

const (
	BooksRoot   = APIRoot + "/Books"
	AuthorsRoot = APIRoot + "/Authors"
)

// Endpoints contains all API endpoint patterns.  Ids are formatted as
// decimal and never validated; range checking is the server's job.
type Endpoints struct{}

// NewEndpoints creates a new Endpoints instance.
func NewEndpoints() *Endpoints {
	return &Endpoints{}
}

// Book endpoints.
func (e *Endpoints) Books() string {
	return BooksRoot
}

func (e *Endpoints) Book(id int64) string {
	return BooksRoot + "/" + strconv.FormatInt(id, 10)
}

// Author endpoints.
func (e *Endpoints) Authors() string {
	return AuthorsRoot
}

func (e *Endpoints) Author(id int64) string {
	return AuthorsRoot + "/" + strconv.FormatInt(id, 10)
}

func (e *Endpoints) AuthorsByBook(idBook int64) string {
	return AuthorsRoot + "/authors/books/" + strconv.FormatInt(idBook, 10)
}

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
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

// Schema names in the embedded document.
const (
	SchemaBook   = "Book"
	SchemaAuthor = "Author"
)

var (
	//go:embed schemas/bookstore.yaml
	bookstoreSchema []byte

	ErrUnknownSchema = errors.New("unknown schema")
)

// SchemaValidator checks decoded JSON against the entity schemas.
type SchemaValidator struct {
	doc *openapi3.T
}

// LoadSchemas parses and validates the embedded entity document.
func LoadSchemas(ctx context.Context) (*SchemaValidator, error) {
	loader := openapi3.NewLoader()

	doc, err := loader.LoadFromData(bookstoreSchema)
	if err != nil {
		return nil, fmt.Errorf("loading entity schemas: %w", err)
	}

	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("validating entity schemas: %w", err)
	}

	return &SchemaValidator{doc: doc}, nil
}

// MustLoadSchemas panics if the embedded document is broken, which is a
// build defect rather than a runtime condition.
func MustLoadSchemas() *SchemaValidator {
	v, err := LoadSchemas(context.Background())
	if err != nil {
		panic(err)
	}

	return v
}

func (v *SchemaValidator) schema(name string) (*openapi3.Schema, error) {
	ref, ok := v.doc.Components.Schemas[name]
	if !ok || ref.Value == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSchema, name)
	}

	return ref.Value, nil
}

// Validate checks a single generic JSON value against the named schema.
func (v *SchemaValidator) Validate(name string, value any) error {
	schema, err := v.schema(name)
	if err != nil {
		return err
	}

	if err := schema.VisitJSON(value, openapi3.MultiErrors()); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	return nil
}

// ValidateList checks that value is an array whose elements all satisfy the
// named schema.
func (v *SchemaValidator) ValidateList(name string, value any) error {
	items, ok := value.([]any)
	if !ok {
		return fmt.Errorf("%s list: expected a JSON array, got %T", name, value)
	}

	for i, item := range items {
		if err := v.Validate(name, item); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}

	return nil
}

// ValidateBytes parses body and validates it as a single entity, or as a
// list when list is set.
func (v *SchemaValidator) ValidateBytes(name string, body []byte, list bool) error {
	var value any
	if err := json.Unmarshal(body, &value); err != nil {
		return fmt.Errorf("parsing JSON: %w", err)
	}

	if list {
		return v.ValidateList(name, value)
	}

	return v.Validate(name, value)
}

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

// Package api provides contract test utilities for the bookstore demo API.
//
// # Layers
//
// The package is split into a thin transport (APIClient), typed resource
// services (Books and Authors) that validate bodies against the published
// entity schemas before decoding, a test data generator producing valid and
// deliberately invalid payloads, and an expectation table that the Ginkgo
// suites consult for every status code assertion.
//
// # Separate Client Implementation
//
// The upstream service publishes a Swagger document, but this package
// intentionally keeps a hand written client. The test client must be able to
// send payloads the generated types cannot express (missing fields, negative
// counts, ids out of range) and must expose status codes and raw bodies for
// every exchange, including the ones the document says cannot happen.
//
// # Deviations
//
// The demo service is a best-effort mock: it does not persist writes and
// accepts payloads its documentation says it rejects. Rather than encode the
// observed behavior as the expectation, each scenario looks up its documented
// expectation and any known deviation in the table. A response matching the
// deviation passes, is logged, and is attached to the Ginkgo report so the
// suite summary lists every place where the service disagrees with its
// contract.
package api

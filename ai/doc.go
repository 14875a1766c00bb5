// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package ai provides the abstraction for the embedding provider used by ivesna.
//
// The retrieval engine and the ingestion pipeline depend only on the Embedder
// interface defined here; the provider handle is constructed explicitly and
// injected at wiring time, never reached through a package-level singleton.
// This keeps both consumers testable against a substitutable fake.
//
// # Implementation Packages
//
//   - ai/openai: production implementation over OpenAI-compatible APIs
//   - ai/mock: test doubles for unit testing without external dependencies
//
// Public constructors (openai.NewEmbedder) return the Embedder INTERFACE to
// enforce abstraction. Test constructors (mock.NewMockEmbedder) return the
// CONCRETE type so tests can inject behavior and assert call counts.
package ai

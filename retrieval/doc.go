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


// Package retrieval provides hybrid lexical and semantic ranking over
// ingested page chunks.
//
// The Retriever type implements a multi-stage pipeline that combines:
//   - Cosine similarity between the query embedding and chunk embeddings
//   - Pool-relative BM25 keyword scoring over the preselected candidates
//   - A structural page prior derived from URL and title heuristics
//
// The three signals are fused with fixed weights, the best chunk per
// document is kept, results sharing a URL are collapsed to the higher
// score, and the top k survivors are returned.
package retrieval

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


package retrieval

import "math"

// BM25Scores scores every token sequence in pool against the query
// tokens using Okapi BM25. Document frequencies and the average length
// are computed over the pool itself, not the whole corpus, so the
// scores are relative to the candidate set being ranked.
func BM25Scores(queryTokens []string, pool [][]string, k1, b float64) []float64 {
	n := len(pool)
	if n == 0 {
		return nil
	}

	var totalLen int
	df := make(map[string]int)
	for _, doc := range pool {
		totalLen += len(doc)
		seen := make(map[string]struct{}, len(doc))
		for _, t := range doc {
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			df[t]++
		}
	}
	avgLen := float64(totalLen) / float64(n)
	if avgLen == 0 {
		avgLen = 1
	}

	idf := make(map[string]float64, len(df))
	for t, f := range df {
		idf[t] = math.Log(1 + (float64(n)-float64(f)+0.5)/(float64(f)+0.5))
	}

	scores := make([]float64, n)
	for i, doc := range pool {
		tf := make(map[string]int, len(doc))
		for _, t := range doc {
			tf[t]++
		}
		docLen := float64(len(doc))
		var s float64
		for _, q := range queryTokens {
			f, ok := tf[q]
			if !ok {
				continue
			}
			freq := float64(f)
			s += idf[q] * (freq * (k1 + 1)) / (freq + k1*(1-b+b*docLen/avgLen))
		}
		scores[i] = s
	}
	return scores
}

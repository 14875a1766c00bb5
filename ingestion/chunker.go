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


package ingestion

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	// DefaultChunkSize is the window size in words.
	DefaultChunkSize = 900

	// DefaultChunkOverlap is how many words consecutive windows share,
	// so sentences near a boundary stay intact in at least one chunk.
	DefaultChunkOverlap = 120
)

var wordPattern = regexp.MustCompile(`\S+`)

// Chunker splits page text into overlapping word windows sized for
// embedding.
type Chunker struct {
	size    int
	overlap int
}

// NewChunker creates a chunker with the given window size and overlap,
// both counted in words.
func NewChunker(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: size %d", ErrInvalidChunking, size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("%w: overlap %d for size %d", ErrInvalidChunking, overlap, size)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// DefaultChunker returns a chunker with the default window and overlap.
func DefaultChunker() *Chunker {
	c, err := NewChunker(DefaultChunkSize, DefaultChunkOverlap)
	if err != nil {
		panic(err) // defaults are valid
	}
	return c
}

// Split breaks text into overlapping windows. Whitespace-only input
// yields no chunks. Text shorter than one window is returned whole.
func (c *Chunker) Split(text string) []string {
	words := wordPattern.FindAllString(text, -1)
	if len(words) == 0 {
		return nil
	}

	step := c.size - c.overlap
	var chunks []string
	for start := 0; start < len(words); start += step {
		end := start + c.size
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
		if end == len(words) {
			break
		}
	}
	return chunks
}

package core

import (
	"errors"
	"testing"
)

func TestValidateDocument(t *testing.T) {
	tests := []struct {
		name    string
		doc     *Document
		wantErr error
	}{
		{
			name: "valid document",
			doc: &Document{
				Id:     1,
				Tenant: "slsp",
				URL:    "https://www.slsp.sk/sk/ludia/ucty",
				Title:  "Účty",
				Lang:   "sk",
			},
			wantErr: nil,
		},
		{
			name: "valid document without title",
			doc: &Document{
				Tenant: "slsp",
				URL:    "https://www.slsp.sk/sk/ludia",
			},
			wantErr: nil,
		},
		{
			name:    "nil document",
			doc:     nil,
			wantErr: ErrInvalidDocument,
		},
		{
			name: "missing tenant",
			doc: &Document{
				URL: "https://www.slsp.sk/sk/ludia/ucty",
			},
			wantErr: ErrEmptyTenant,
		},
		{
			name: "missing url",
			doc: &Document{
				Tenant: "slsp",
			},
			wantErr: ErrEmptyURL,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDocument(tt.doc)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateDocument() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateDocument() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateChunk(t *testing.T) {
	tests := []struct {
		name    string
		chunk   *Chunk
		wantErr error
	}{
		{
			name: "valid chunk",
			chunk: &Chunk{
				Id:         1,
				DocumentId: 1,
				Tenant:     "slsp",
				Ordinal:    0,
				Text:       "Osobný účet so všetkými službami.",
			},
			wantErr: nil,
		},
		{
			name: "valid chunk without embedding",
			chunk: &Chunk{
				DocumentId: 2,
				Tenant:     "slsp",
				Ordinal:    3,
				Text:       "Podmienky vedenia účtu.",
				Embedding:  nil,
			},
			wantErr: nil,
		},
		{
			name:    "nil chunk",
			chunk:   nil,
			wantErr: ErrInvalidChunk,
		},
		{
			name: "missing tenant",
			chunk: &Chunk{
				DocumentId: 1,
				Text:       "text",
			},
			wantErr: ErrEmptyTenant,
		},
		{
			name: "missing document id",
			chunk: &Chunk{
				Tenant: "slsp",
				Text:   "text",
			},
			wantErr: ErrMissingDocumentId,
		},
		{
			name: "empty text",
			chunk: &Chunk{
				DocumentId: 1,
				Tenant:     "slsp",
			},
			wantErr: ErrEmptyText,
		},
		{
			name: "negative ordinal",
			chunk: &Chunk{
				DocumentId: 1,
				Tenant:     "slsp",
				Text:       "text",
				Ordinal:    -1,
			},
			wantErr: ErrNegativeOrdinal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateChunk(tt.chunk)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateChunk() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateChunk() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

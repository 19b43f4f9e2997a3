// Package kb maintains the per-organization knowledge base: document text is
// chunked, embedded, and stored for cosine-similarity retrieval by the
// assistant.
package kb

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/openfund/grantdesk/internal/ai"
	"github.com/openfund/grantdesk/internal/db"
)

// chunkSize is the target character length per chunk. Chunks break on
// paragraph boundaries where possible so passages stay coherent.
const chunkSize = 1000

type Service struct {
	store    *db.Store
	embedder ai.Embedder
}

func NewService(store *db.Store, embedder ai.Embedder) *Service {
	return &Service{store: store, embedder: embedder}
}

// IndexDocument replaces the stored chunks for a document with freshly
// embedded ones. An empty text simply clears the old chunks.
func (s *Service) IndexDocument(ctx context.Context, orgID, docID uuid.UUID, text string) error {
	if err := s.store.DeleteKBChunksForDocument(ctx, docID); err != nil {
		return fmt.Errorf("clearing old chunks: %w", err)
	}

	chunks := SplitText(text, chunkSize)
	for i, chunk := range chunks {
		emb, err := s.embedder.GenerateEmbedding(ctx, chunk)
		if err != nil {
			return fmt.Errorf("embedding chunk %d: %w", i, err)
		}
		if err := s.store.InsertKBChunk(ctx, orgID, &docID, i, chunk, emb); err != nil {
			return fmt.Errorf("storing chunk %d: %w", i, err)
		}
	}
	return nil
}

// Search embeds the query and returns the closest chunks for the organization.
func (s *Service) Search(ctx context.Context, orgID uuid.UUID, query string, limit int) ([]db.KBChunk, error) {
	emb, err := s.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	return s.store.SearchKBChunks(ctx, orgID, emb, limit)
}

// SplitText breaks text into chunks of roughly size characters, preferring
// paragraph breaks, then sentence breaks, then hard cuts.
func SplitText(text string, size int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if size <= 0 {
		size = chunkSize
	}

	var chunks []string
	paragraphs := strings.Split(text, "\n\n")
	var buf strings.Builder

	flush := func() {
		if s := strings.TrimSpace(buf.String()); s != "" {
			chunks = append(chunks, s)
		}
		buf.Reset()
	}

	for _, para := range paragraphs {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if buf.Len() > 0 && buf.Len()+len(para)+2 > size {
			flush()
		}
		if len(para) > size {
			flush()
			for _, piece := range splitLong(para, size) {
				chunks = append(chunks, piece)
			}
			continue
		}
		if buf.Len() > 0 {
			buf.WriteString("\n\n")
		}
		buf.WriteString(para)
	}
	flush()
	return chunks
}

// splitLong cuts an oversized paragraph at sentence ends, falling back to a
// hard cut when a single sentence exceeds the chunk size.
func splitLong(text string, size int) []string {
	var out []string
	for len(text) > size {
		cut := strings.LastIndex(text[:size], ". ")
		if cut < size/2 {
			cut = size
		} else {
			cut += 2
		}
		out = append(out, strings.TrimSpace(text[:cut]))
		text = strings.TrimSpace(text[cut:])
	}
	if text != "" {
		out = append(out, text)
	}
	return out
}

package services

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/docquery-inc/docquery-engine/pkg/models"
	"github.com/docquery-inc/docquery-engine/pkg/vectorstore"
)

const maxColumnHints = 6

// ColumnHinter surfaces the columns most relevant to a question, to steer
// the plan drafter toward them.
type ColumnHinter interface {
	// Hints returns up to 6 header names ordered by relevance. Hints are
	// advisory; they never fail the pipeline.
	Hints(ctx context.Context, question string, ref models.TableRef, headers []string) []string
}

type columnHinter struct {
	store  vectorstore.Store
	logger *zap.Logger
}

// NewColumnHinter creates a hinter over column_schema embeddings with a
// lexical fallback.
func NewColumnHinter(store vectorstore.Store, logger *zap.Logger) ColumnHinter {
	return &columnHinter{
		store:  store,
		logger: logger.Named("column_hinter"),
	}
}

var _ ColumnHinter = (*columnHinter)(nil)

func (h *columnHinter) Hints(ctx context.Context, question string, ref models.TableRef, headers []string) []string {
	var hints []string
	seen := make(map[string]bool)
	known := make(map[string]bool, len(headers))
	for _, name := range headers {
		known[name] = true
	}

	k := maxColumnHints
	if len(headers) < k {
		k = len(headers)
	}
	filter := map[string]any{
		"type":        "column_schema",
		"file_key":    ref.FileKey,
		"table_index": ref.TableIndex,
	}
	results, err := h.store.SimilaritySearch(ctx, question, k, filter)
	if err != nil {
		// Embedding hints are best effort; fall through to lexical scoring.
		h.logger.Debug("Column embedding search failed", zap.Error(err))
	}
	for _, result := range results {
		name := metadataString(result.Metadata, "column_name")
		// Ingestion may predate a re-upload; drop hints for headers the
		// current table no longer has.
		if name == "" || !known[name] || seen[name] {
			continue
		}
		hints = append(hints, name)
		seen[name] = true
	}

	if len(hints) < maxColumnHints {
		var remaining []string
		for _, name := range headers {
			if !seen[name] {
				remaining = append(remaining, name)
			}
		}
		hints = append(hints, lexicalCandidates(question, remaining, maxColumnHints-len(hints))...)
	}

	if len(hints) > maxColumnHints {
		hints = hints[:maxColumnHints]
	}
	return hints
}

// lexicalCandidates ranks headers by Jaccard token overlap with the question
// and returns the topk with a non-zero score.
func lexicalCandidates(question string, headers []string, topk int) []string {
	qtok := tokenSet(question)

	type scored struct {
		score  float64
		header string
	}
	candidates := make([]scored, 0, len(headers))
	for _, header := range headers {
		htok := tokenSet(header)
		inter := 0
		union := len(qtok)
		for tok := range htok {
			if qtok[tok] {
				inter++
			} else {
				union++
			}
		}
		if union < 1 {
			union = 1
		}
		candidates = append(candidates, scored{
			score:  float64(inter) / float64(union),
			header: header,
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].header > candidates[j].header
	})

	var out []string
	for _, c := range candidates {
		if len(out) == topk {
			break
		}
		if c.score > 0 {
			out = append(out, c.header)
		}
	}
	return out
}

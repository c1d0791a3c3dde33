package services

import (
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/custodia-labs/ingest-core/internal/core/domain"
)

const (
	// titleWeight scales token hits found in a title relative to content hits
	titleWeight = 0.5
	// recencyBoost is added to scoring items created within recencyWindow
	recencyBoost  = 0.1
	recencyWindow = 24 * time.Hour
)

// heuristicDoc is one entry of the keyword-scoring corpus
type heuristicDoc struct {
	ID         string
	SourceType domain.SourceType
	Title      string
	Content    string
	Metadata   map[string]string
	CreatedAt  time.Time
}

// rankHeuristic scores docs by token containment and returns the top K.
// When nothing scores above zero the K most recent docs are returned with
// zero similarity so retrieval never comes back empty for a non-empty corpus.
func rankHeuristic(query string, docs []heuristicDoc, topK int, now time.Time) []*domain.VectorMatch {
	if len(docs) == 0 || topK <= 0 {
		return nil
	}

	tokens := tokenize(query)
	type scored struct {
		doc   heuristicDoc
		score float64
	}
	var hits []scored
	for _, doc := range docs {
		if s := keywordScore(tokens, doc, now); s > 0 {
			hits = append(hits, scored{doc: doc, score: s})
		}
	}

	if len(hits) == 0 {
		recent := append([]heuristicDoc(nil), docs...)
		sort.SliceStable(recent, func(i, j int) bool {
			return recent[i].CreatedAt.After(recent[j].CreatedAt)
		})
		if len(recent) > topK {
			recent = recent[:topK]
		}
		matches := make([]*domain.VectorMatch, len(recent))
		for i, doc := range recent {
			matches[i] = doc.toMatch(0)
		}
		return matches
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].doc.CreatedAt.After(hits[j].doc.CreatedAt)
	})
	if len(hits) > topK {
		hits = hits[:topK]
	}
	matches := make([]*domain.VectorMatch, len(hits))
	for i, h := range hits {
		matches[i] = h.doc.toMatch(h.score)
	}
	return matches
}

// keywordScore is the share of query tokens contained in the content, plus a
// weighted share for the title, plus a recency boost for scoring documents.
func keywordScore(tokens []string, doc heuristicDoc, now time.Time) float64 {
	if len(tokens) == 0 {
		return 0
	}
	content := strings.ToLower(doc.Content)
	title := strings.ToLower(doc.Title)

	var inContent, inTitle int
	for _, tok := range tokens {
		if strings.Contains(content, tok) {
			inContent++
		}
		if title != "" && strings.Contains(title, tok) {
			inTitle++
		}
	}
	if inContent == 0 && inTitle == 0 {
		return 0
	}

	n := float64(len(tokens))
	score := float64(inContent)/n + titleWeight*float64(inTitle)/n
	if !doc.CreatedAt.IsZero() && now.Sub(doc.CreatedAt) < recencyWindow {
		score += recencyBoost
	}
	return score
}

// tokenize lowercases text and returns its distinct words of two or more runes
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	seen := make(map[string]bool, len(fields))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len([]rune(f)) < 2 || seen[f] {
			continue
		}
		seen[f] = true
		tokens = append(tokens, f)
	}
	return tokens
}

func (d heuristicDoc) toMatch(score float64) *domain.VectorMatch {
	return &domain.VectorMatch{
		ID:         d.ID,
		SourceID:   d.ID,
		SourceType: d.SourceType,
		Content:    d.Content,
		Metadata:   d.Metadata,
		Similarity: score,
		CreatedAt:  d.CreatedAt,
	}
}

func artifactDocs(artifacts []*domain.Artifact) []heuristicDoc {
	docs := make([]heuristicDoc, len(artifacts))
	for i, a := range artifacts {
		docs[i] = heuristicDoc{
			ID:         a.ID,
			SourceType: domain.SourceTypeArtifact,
			Title:      a.Title,
			Content:    a.OriginalContent,
			Metadata:   artifactMetadata(a),
			CreatedAt:  a.CreatedAt,
		}
	}
	return docs
}

func recordDocs(items []*domain.SuggestionItem) []heuristicDoc {
	docs := make([]heuristicDoc, len(items))
	for i, it := range items {
		docs[i] = heuristicDoc{
			ID:         it.ID,
			SourceType: domain.SourceTypeRecord,
			Title:      it.Title,
			Content:    it.Description,
			Metadata:   recordMetadata(it),
			CreatedAt:  it.CreatedAt,
		}
	}
	return docs
}

func artifactMetadata(a *domain.Artifact) map[string]string {
	meta := map[string]string{
		"title":        a.Title,
		"content_type": a.ContentType,
	}
	for k, v := range a.Meta {
		if _, taken := meta[k]; !taken {
			meta[k] = v
		}
	}
	return meta
}

func recordMetadata(it *domain.SuggestionItem) map[string]string {
	return map[string]string{
		"title":       it.Title,
		"description": truncateRunes(it.Description, candidateDescriptionLimit),
		"type":        string(it.Type),
		"status":      string(it.Status),
	}
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

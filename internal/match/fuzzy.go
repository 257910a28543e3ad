// Package match scores extracted names against catalog records using
// token containment rather than edit distance, so word order and extra
// qualifiers degrade the score gracefully instead of zeroing it.
package match

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/mvandervelden/invoice-engine/internal/invoice"
)

// Record is one catalog entry eligible for matching.
type Record struct {
	ID   string
	Name string
}

// Matcher ranks records against a query. Candidate lists are capped so a
// large catalog cannot flood downstream consumers.
type Matcher struct {
	maxCandidates int
	logger        *slog.Logger
}

func NewMatcher(maxCandidates int, logger *slog.Logger) *Matcher {
	if maxCandidates <= 0 {
		maxCandidates = 5
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Matcher{maxCandidates: maxCandidates, logger: logger}
}

// Score computes token containment between query and name in [0, 1]. A
// query token counts when it is a substring of some name token or vice
// versa; the count is divided by the larger token count. Comparison is
// case-insensitive.
func Score(query, name string) float64 {
	queryTokens := tokenize(query)
	nameTokens := tokenize(name)
	if len(queryTokens) == 0 || len(nameTokens) == 0 {
		return 0
	}

	matched := 0
	for _, qt := range queryTokens {
		if anyContains(nameTokens, qt) {
			matched++
		}
	}

	max := len(queryTokens)
	if len(nameTokens) > max {
		max = len(nameTokens)
	}
	return float64(matched) / float64(max)
}

// Rank scores query against every record and returns the best candidates
// in descending score order. Ties keep catalog order. Zero-score records
// are dropped.
func (m *Matcher) Rank(query string, records []Record) []invoice.MatchCandidate {
	if strings.TrimSpace(query) == "" || len(records) == 0 {
		return nil
	}

	candidates := make([]invoice.MatchCandidate, 0, len(records))
	for _, rec := range records {
		score := Score(query, rec.Name)
		if score <= 0 {
			continue
		}
		candidates = append(candidates, invoice.MatchCandidate{
			ID:         rec.ID,
			Name:       rec.Name,
			MatchScore: score,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].MatchScore > candidates[j].MatchScore
	})
	if len(candidates) > m.maxCandidates {
		candidates = candidates[:m.maxCandidates]
	}
	return candidates
}

// Best returns the top candidate when it clears the threshold.
func (m *Matcher) Best(query string, records []Record, threshold float64) *invoice.MatchCandidate {
	ranked := m.Rank(query, records)
	if len(ranked) == 0 || ranked[0].MatchScore < threshold {
		return nil
	}
	top := ranked[0]
	return &top
}

func tokenize(s string) []string {
	return strings.Fields(strings.ToLower(strings.TrimSpace(s)))
}

func anyContains(tokens []string, tok string) bool {
	for _, t := range tokens {
		if strings.Contains(t, tok) || strings.Contains(tok, t) {
			return true
		}
	}
	return false
}

// Package specialty matches differently-spelled specialty labels from
// independent survey publishers onto one canonical taxonomy. Matching runs in
// strict priority order: exact, learned override, synonym table, fuzzy
// similarity. The matcher is pure computation; persistence of corrections
// lives with the callers.
package specialty

import (
	"log/slog"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"surveybench/pkg/contracts/domain"
)

const (
	// synonymConfidence is the base score for a synonym-table match.
	synonymConfidence = 0.8
	// crossTermConfidence is the score for domain-override pairs that name
	// the same practice without sharing tokens.
	crossTermConfidence = 0.95

	jaccardThreshold = 0.6
	overlapThreshold = 0.8
)

// crossTermPairs are specialty label pairs treated as equivalent even though
// plain token matching would miss them.
var crossTermPairs = [][2]string{
	{"critical care", "intensivist"},
	{"intensive care", "intensivist"},
}

// Match is a resolved specialty with the stage and confidence that produced it.
type Match struct {
	MappingID        string             `json:"mapping_id"`
	StandardizedName string             `json:"standardized_name"`
	Confidence       float64            `json:"confidence"`
	Method           domain.MatchMethod `json:"method"`
}

// ResolveConfig gates match acceptance.
type ResolveConfig struct {
	ConfidenceThreshold float64
	UseFuzzyMatching    bool
}

// Matcher resolves raw specialty names against a mapping set.
type Matcher struct {
	synonyms SynonymTable
	logger   *slog.Logger
}

// NewMatcher creates a matcher with the given synonym table. A nil table
// falls back to the built-in dictionary.
func NewMatcher(synonyms SynonymTable, logger *slog.Logger) *Matcher {
	if synonyms == nil {
		synonyms = DefaultSynonyms()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Matcher{synonyms: synonyms, logger: logger}
}

// Resolve finds the best mapping for rawName from surveySource. Mappings are
// candidates in insertion order; the first qualifying mapping wins ties.
// Blank names never match. A returned match always satisfies
// Confidence >= cfg.ConfidenceThreshold.
func (m *Matcher) Resolve(rawName, surveySource string, mappings []domain.SpecialtyMapping, learned domain.LearnedMappings, cfg ResolveConfig) (Match, bool) {
	rawNorm := NormalizeName(rawName)
	if rawNorm == "" {
		return Match{}, false
	}

	// Stage 1: exact match against standardized names, or against source
	// specialties recorded for the same survey source.
	for i := range mappings {
		mp := &mappings[i]
		if NormalizeName(mp.StandardizedName) == rawNorm {
			return m.accepted(Match{mp.ID, mp.StandardizedName, 1.0, domain.MatchExact}, cfg)
		}
		for _, src := range mp.SourceSpecialties {
			if strings.EqualFold(src.SurveySource, surveySource) && NormalizeName(src.Specialty) == rawNorm {
				return m.accepted(Match{mp.ID, mp.StandardizedName, 1.0, domain.MatchExact}, cfg)
			}
		}
	}

	// Stage 2: learned override, survey-source independent.
	if corrected, ok := learned.Lookup(rawName); ok {
		correctedNorm := NormalizeName(corrected)
		for i := range mappings {
			if NormalizeName(mappings[i].StandardizedName) == correctedNorm {
				return m.accepted(Match{mappings[i].ID, mappings[i].StandardizedName, 1.0, domain.MatchLearned}, cfg)
			}
		}
		m.logger.Debug("learned mapping points at missing standardized name",
			"raw_name", rawName, "corrected", corrected)
	}

	// Stage 3: synonym table.
	if match, ok := m.bestByScore(rawNorm, mappings, domain.MatchSynonym, m.synonymScore); ok && match.Confidence >= cfg.ConfidenceThreshold {
		return match, true
	}

	// Stage 4: fuzzy similarity.
	if cfg.UseFuzzyMatching {
		if match, ok := m.bestByScore(rawNorm, mappings, domain.MatchFuzzy, fuzzyScore); ok && match.Confidence >= cfg.ConfidenceThreshold {
			return match, true
		}
	}

	return Match{}, false
}

// accepted applies the confidence gate to an already-built match.
func (m *Matcher) accepted(match Match, cfg ResolveConfig) (Match, bool) {
	if match.Confidence < cfg.ConfidenceThreshold {
		return Match{}, false
	}
	return match, true
}

// bestByScore scores rawNorm against every name a mapping carries and keeps
// the highest-scoring mapping. Strict comparison preserves first-wins on ties.
func (m *Matcher) bestByScore(rawNorm string, mappings []domain.SpecialtyMapping, method domain.MatchMethod, score func(raw, cand string) float64) (Match, bool) {
	var best Match
	for i := range mappings {
		mp := &mappings[i]
		for _, cand := range mp.SourceSpecialtyNames() {
			if s := score(rawNorm, NormalizeName(cand)); s > best.Confidence {
				best = Match{mp.ID, mp.StandardizedName, s, method}
			}
		}
	}
	return best, best.Confidence > 0
}

// synonymScore matches when rawNorm and the candidate both contain a term
// from the same synonym group, with domain overrides scored higher.
func (m *Matcher) synonymScore(rawNorm, candNorm string) float64 {
	for _, pair := range crossTermPairs {
		if (strings.Contains(rawNorm, pair[0]) && strings.Contains(candNorm, pair[1])) ||
			(strings.Contains(rawNorm, pair[1]) && strings.Contains(candNorm, pair[0])) {
			return crossTermConfidence
		}
	}
	for _, key := range m.synonyms.keys() {
		terms := m.synonyms.terms(key)
		if containsAnyTerm(rawNorm, terms) && containsAnyTerm(candNorm, terms) {
			return synonymConfidence
		}
	}
	return 0
}

func containsAnyTerm(name string, terms []string) bool {
	for _, t := range terms {
		if t != "" && strings.Contains(name, t) {
			return true
		}
	}
	return false
}

// fuzzyScore is the higher of normalized Levenshtein similarity and the
// token-level Jaccard/overlap score.
func fuzzyScore(rawNorm, candNorm string) float64 {
	score := levenshteinSimilarity(rawNorm, candNorm)
	if ts := tokenScore(rawNorm, candNorm); ts > score {
		score = ts
	}
	return score
}

func levenshteinSimilarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	longest := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > longest {
		longest = n
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1.0 - float64(dist)/float64(longest)
}

// tokenScore compares significant tokens (length > 2). It qualifies when
// Jaccard >= 0.6 or the overlap of the smaller token set >= 0.8, and scores
// the higher of the two; otherwise zero.
func tokenScore(a, b string) float64 {
	ta, tb := significantTokens(a), significantTokens(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	inter := 0
	for tok := range ta {
		if _, ok := tb[tok]; ok {
			inter++
		}
	}
	if inter == 0 {
		return 0
	}
	union := len(ta) + len(tb) - inter
	jaccard := float64(inter) / float64(union)
	smaller := len(ta)
	if len(tb) < smaller {
		smaller = len(tb)
	}
	overlap := float64(inter) / float64(smaller)
	if jaccard >= jaccardThreshold || overlap >= overlapThreshold {
		return math.Max(jaccard, overlap)
	}
	return 0
}

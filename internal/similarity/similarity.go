// Package similarity provides deterministic text-similarity metrics for
// topic comparison, behind a pluggable Metric interface.
package similarity

import (
	"strings"
	"unicode"
)

// Metric scores how similar two topic strings are, in [0,1].
// Implementations must be pure: the same inputs always produce the same
// score, with no locale-dependent behavior.
type Metric interface {
	Score(a, b string) float64
	Name() string
}

// stopWords are excluded from token sets before scoring. The set is fixed:
// English articles, conjunctions, and a handful of glue prepositions.
var stopWords = map[string]bool{
	"a": true, "an": true, "the": true,
	"and": true, "but": true, "or": true, "nor": true,
	"for": true, "so": true, "yet": true,
	"of": true, "in": true, "on": true, "to": true, "at": true,
	"by": true, "with": true,
	"is": true, "are": true, "was": true, "were": true,
}

// Normalize lower-cases, trims, and collapses internal whitespace.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Tokenize splits normalized text on non-alphanumeric boundaries and drops
// stop words. Returns the token set.
func Tokenize(s string) map[string]bool {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	set := make(map[string]bool, len(fields))
	for _, f := range fields {
		if stopWords[f] {
			continue
		}
		set[f] = true
	}
	return set
}

// Jaccard scores topics by |intersection| / |union| of their token sets.
// An empty union (both sides entirely stop words) scores 0.
type Jaccard struct{}

func (Jaccard) Name() string { return "jaccard" }

func (Jaccard) Score(a, b string) float64 {
	ta, tb := Tokenize(a), Tokenize(b)
	inter := 0
	for t := range ta {
		if tb[t] {
			inter++
		}
	}
	union := len(ta) + len(tb) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// Overlap scores topics by |intersection| / max(|a|, |b|). A looser ratio
// than Jaccard; kept as an alternative strategy for callers that want
// shared-keyword recall over strict set similarity.
type Overlap struct{}

func (Overlap) Name() string { return "overlap" }

func (Overlap) Score(a, b string) float64 {
	ta, tb := Tokenize(a), Tokenize(b)
	larger := len(ta)
	if len(tb) > larger {
		larger = len(tb)
	}
	if larger == 0 {
		return 0
	}
	inter := 0
	for t := range ta {
		if tb[t] {
			inter++
		}
	}
	return float64(inter) / float64(larger)
}

// ByName returns the metric for a name, defaulting to Jaccard for
// unrecognized names.
func ByName(name string) Metric {
	if name == "overlap" {
		return Overlap{}
	}
	return Jaccard{}
}

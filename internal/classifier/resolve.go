package classifier

import (
	"strings"

	"newscurator/internal/domain"
	"newscurator/pkg/utils"
)

// MatchKind records how confidently a model-returned category slug was mapped
// onto a live category. Callers can treat MatchDefault as a data-quality
// signal: the model named a category the table does not have.
type MatchKind int

const (
	MatchExact MatchKind = iota
	MatchNormalized
	MatchFuzzy
	MatchDefault
)

func (k MatchKind) String() string {
	switch k {
	case MatchExact:
		return "exact"
	case MatchNormalized:
		return "normalized"
	case MatchFuzzy:
		return "fuzzy"
	default:
		return "default"
	}
}

type Resolution struct {
	Kind     MatchKind
	Category domain.Category
}

// ResolveCategory maps a slug onto the live category table. Precedence:
// exact slug match, then match after normalizing the input to slug form,
// then substring/word-overlap fuzzy match, then the fallback category.
func ResolveCategory(slug string, categories []domain.Category, fallback domain.Category) Resolution {
	for _, c := range categories {
		if c.Slug == slug {
			return Resolution{Kind: MatchExact, Category: c}
		}
	}

	normalized := utils.Slugify(slug)
	if normalized != "" {
		for _, c := range categories {
			if c.Slug == normalized {
				return Resolution{Kind: MatchNormalized, Category: c}
			}
		}

		best := -1
		bestScore := 0
		for i, c := range categories {
			score := fuzzyScore(normalized, c.Slug)
			if score > bestScore {
				best = i
				bestScore = score
			}
		}
		if best >= 0 {
			return Resolution{Kind: MatchFuzzy, Category: categories[best]}
		}
	}

	return Resolution{Kind: MatchDefault, Category: fallback}
}

// fuzzyScore ranks candidate categories. Substring containment outranks any
// word overlap; among overlaps, more shared words wins. Zero means no match.
func fuzzyScore(slug, candidate string) int {
	if slug == "" || candidate == "" {
		return 0
	}
	if strings.Contains(candidate, slug) || strings.Contains(slug, candidate) {
		return 100
	}

	words := strings.Split(slug, "-")
	shared := 0
	for _, w := range words {
		if w == "" {
			continue
		}
		for _, cw := range strings.Split(candidate, "-") {
			if w == cw {
				shared++
				break
			}
		}
	}
	return shared
}

package innovation

import (
	"math"
	"strings"

	"github.com/swarmboard/swarmboard/internal/store"
)

// Scoring keyword tables. These are fixed: the score function must stay
// deterministic across releases for already-stored scores to stay comparable.
var (
	breakthroughKeywords = []string{
		"breakthrough", "revolutionary", "novel", "unprecedented",
		"groundbreaking", "innovative", "disruptive", "quantum",
	}

	technicalKeywords = []string{
		"algorithm", "architecture", "system", "framework", "pipeline",
		"optimization", "machine learning", "ai", "distributed", "scalable",
		"real-time", "microservices", "neural", "quantum", "blockchain",
	}

	highImpactCategories = []string{
		"ai", "machine-learning", "automation", "security", "healthcare",
		"education", "climate", "energy", "transportation",
	}

	impactKeywords = []string{
		"solve", "improve", "optimize", "automate", "transform",
		"revolutionize", "enhance", "accelerate", "scale", "efficiency",
	}

	scopeKeywords = []string{"platform", "system", "ecosystem", "network", "global"}
)

// Components breaks a WOW score into its capped additive factors.
type Components struct {
	Novelty       float64 `json:"novelty"`
	Complexity    float64 `json:"complexity"`
	Impact        float64 `json:"impact"`
	Collaboration float64 `json:"collaboration"`
}

// Score computes the WOW score for a candidate innovation against the rest
// of the platform. It is pure: identical inputs always yield the identical
// score, and nothing is mutated. The result is the component sum rounded to
// the nearest integer, capped at 10.
func Score(candidate *store.Innovation, all []*store.Innovation) (int, Components) {
	comp := Components{
		Novelty:       assessNovelty(candidate, all),
		Complexity:    assessComplexity(candidate),
		Impact:        assessImpact(candidate),
		Collaboration: assessCollaboration(candidate),
	}
	total := comp.Novelty + comp.Complexity + comp.Impact + comp.Collaboration
	score := int(math.Round(total))
	if score > 10 {
		score = 10
	}
	return score, comp
}

// assessNovelty starts at 2.0 and rewards uniqueness: +1.0 with no similar
// innovation on the platform, +0.5 with exactly one, +0.5 for a breakthrough
// keyword in the title or description. Capped at 3.0.
func assessNovelty(candidate *store.Innovation, all []*store.Innovation) float64 {
	score := 2.0

	title := strings.ToLower(candidate.Title)
	category := strings.ToLower(candidate.Category)
	words := titleWords(title)

	similar := 0
	for _, other := range all {
		if other.ID == candidate.ID {
			continue
		}
		otherCategory := strings.ToLower(other.Category)
		categoryMatch := category != "" && otherCategory != "" && category == otherCategory

		common := 0
		for w := range titleWords(strings.ToLower(other.Title)) {
			if _, ok := words[w]; ok {
				common++
			}
		}
		if common > 1 || categoryMatch {
			similar++
		}
	}

	switch similar {
	case 0:
		score += 1.0
	case 1:
		score += 0.5
	}

	if containsAny(title, breakthroughKeywords) ||
		containsAny(strings.ToLower(candidate.Description), breakthroughKeywords) {
		score += 0.5
	}
	return math.Min(score, 3)
}

// assessComplexity starts at 1.0: +0.5 for a description over 500 characters,
// +0.2 per distinct technical keyword (that contribution capped at 0.5), +0.3
// for an output payload with more than 5 top-level fields. Capped at 2.0.
func assessComplexity(candidate *store.Innovation) float64 {
	score := 1.0
	description := strings.ToLower(candidate.Description)

	if len(candidate.Description) > 500 {
		score += 0.5
	}

	depth := 0
	for _, kw := range technicalKeywords {
		if strings.Contains(description, kw) {
			depth++
		}
	}
	score += math.Min(float64(depth)*0.2, 0.5)

	if len(candidate.OutputData) > 5 {
		score += 0.3
	}
	return math.Min(score, 2)
}

// assessImpact starts at 1.5: +0.5 for a high-impact category (substring
// match), +0.5 for an impact keyword in title or description, +0.5 for a
// scope keyword. Capped at 3.0.
func assessImpact(candidate *store.Innovation) float64 {
	score := 1.5
	title := strings.ToLower(candidate.Title)
	description := strings.ToLower(candidate.Description)
	category := strings.ToLower(candidate.Category)

	for _, cat := range highImpactCategories {
		if strings.Contains(category, cat) {
			score += 0.5
			break
		}
	}
	if containsAny(title, impactKeywords) || containsAny(description, impactKeywords) {
		score += 0.5
	}
	if containsAny(title, scopeKeywords) || containsAny(description, scopeKeywords) {
		score += 0.5
	}
	return math.Min(score, 3)
}

// assessCollaboration starts at 0.5 and rewards distinct involved agents:
// +0.5 at two, +0.5 more at three, +0.5 more at five. Capped at 2.0.
func assessCollaboration(candidate *store.Innovation) float64 {
	score := 0.5

	distinct := map[int64]struct{}{}
	for _, id := range candidate.AgentsInvolved {
		distinct[id] = struct{}{}
	}
	n := len(distinct)

	if n >= 2 {
		score += 0.5
	}
	if n >= 3 {
		score += 0.5
	}
	if n >= 5 {
		score += 0.5
	}
	return math.Min(score, 2)
}

// titleWords returns the distinct words longer than 3 characters.
func titleWords(title string) map[string]struct{} {
	words := map[string]struct{}{}
	for _, w := range strings.Fields(title) {
		if len(w) > 3 {
			words[w] = struct{}{}
		}
	}
	return words
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// StarRating renders a score as repeated star glyphs, at most ten.
func StarRating(score int) string {
	if score < 0 {
		score = 0
	}
	if score > 10 {
		score = 10
	}
	return strings.Repeat("⭐", score)
}

// Level maps a score to its qualitative tier.
func Level(score int) string {
	switch {
	case score >= 9:
		return "🚀 LEGENDARY"
	case score >= 7:
		return "✨ AMAZING"
	case score >= 5:
		return "👍 IMPRESSIVE"
	case score >= 3:
		return "👌 GOOD"
	default:
		return "🌱 PROMISING"
	}
}

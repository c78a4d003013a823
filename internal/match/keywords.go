// Package match implements the two-stage relevance-matching pipeline:
// a recall-oriented keyword pre-filter over the regulation store, followed
// by an LLM relevance decision that narrows the candidate set.
package match

import (
	"strings"

	"github.com/regwatchhq/regwatch/internal/profile"
)

// minKeywordLen discards short, low-signal tokens ("the", "and", "of").
const minKeywordLen = 4

// Keywords derives the deduplicated keyword set for the store query:
// lowercased distinct tokens from the industry, the business category, and
// the whitespace-split tokens of each service string. Tokens shorter than
// minKeywordLen are dropped. First-seen order is preserved so the top-N
// regex slice is deterministic.
func Keywords(p profile.CompanyProfile) []string {
	seen := make(map[string]struct{})
	var out []string

	add := func(token string) {
		token = strings.ToLower(token)
		if len(token) < minKeywordLen {
			return
		}
		if _, ok := seen[token]; ok {
			return
		}
		seen[token] = struct{}{}
		out = append(out, token)
	}

	if p.Industry != "" {
		add(p.Industry)
	}
	if p.BusinessCategory != "" {
		add(p.BusinessCategory)
	}
	for _, service := range p.Services {
		for _, token := range strings.Fields(service) {
			add(token)
		}
	}

	return out
}

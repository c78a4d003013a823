package match

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/regwatchhq/regwatch/internal/llm"
	"github.com/regwatchhq/regwatch/internal/profile"
	"github.com/regwatchhq/regwatch/internal/store"
)

const (
	classifierSystemPrompt = "You are a regulatory compliance expert. Respond only with comma-separated numbers."

	classifierTemperature = 0.2
	classifierMaxTokens   = 200

	// noneToken is the literal reply meaning "no candidate is relevant".
	noneToken = "NONE"

	summaryLimit = 200 // characters of summary shown per candidate
	maxEntities  = 5
	maxTags      = 10
)

// Classifier is the LLM relevance decision over a candidate batch.
type Classifier struct {
	completer llm.Completer
	logger    *zap.Logger
}

// NewClassifier creates a Classifier.
func NewClassifier(completer llm.Completer, logger *zap.Logger) *Classifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Classifier{completer: completer, logger: logger}
}

// Classify narrows candidates to the ones the model deems relevant to the
// profile. An empty candidate batch returns immediately without a network
// call. On a failed completion call the classifier fails open and returns
// the entire candidate slice unfiltered: when the classifier is down we
// over-include rather than silently hide potentially relevant regulations.
//
// The result is always a by-identity subset of candidates; the model picks
// indices, so it can narrow but never invent records. Indices come back in
// reply order and are not deduplicated; a repeated index repeats the entry.
func (c *Classifier) Classify(ctx context.Context, p profile.CompanyProfile, candidates []store.Regulation) []store.Regulation {
	if len(candidates) == 0 {
		return nil
	}

	reply, err := c.completer.Complete(ctx, llm.Request{
		System:      classifierSystemPrompt,
		User:        classifierPrompt(p, candidates),
		Temperature: llm.Temperature(classifierTemperature),
		MaxTokens:   classifierMaxTokens,
	})
	if err != nil {
		c.logger.Warn("relevance classification failed open, returning all candidates",
			zap.String("company", p.Name),
			zap.Int("candidates", len(candidates)),
			zap.Error(err),
		)
		return candidates
	}

	return selectCandidates(reply, candidates)
}

// selectCandidates materializes a comma-separated 1-based index reply back
// into candidate records. A case-insensitive NONE means no candidate is
// relevant. Tokens that do not parse as integers and indices outside the
// candidate range are dropped.
func selectCandidates(reply string, candidates []store.Regulation) []store.Regulation {
	if strings.EqualFold(strings.TrimSpace(reply), noneToken) {
		return nil
	}

	var selected []store.Regulation
	for _, token := range strings.Split(reply, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(token))
		if err != nil {
			continue
		}
		idx := n - 1
		if idx < 0 || idx >= len(candidates) {
			continue
		}
		selected = append(selected, candidates[idx])
	}
	return selected
}

func classifierPrompt(p profile.CompanyProfile, candidates []store.Regulation) string {
	return fmt.Sprintf(`You are a Nigerian regulatory compliance expert. Analyze which circulars are relevant to this company.

Company Profile:
- Name: %s
- Industry: %s
- Business Category: %s
- Services: %s
- Description: %s

Circulars to Analyze:
%s
Instructions:
1. Determine which circulars are DIRECTLY relevant to this company's operations
2. Consider the company's industry, services, and business activities
3. Return ONLY the numbers of relevant circulars as a comma-separated list (e.g., "1, 3, 5, 7")
4. If none are relevant, return "NONE"
5. Do not include explanations

Response (comma-separated numbers only):`,
		p.Name,
		p.Industry,
		p.BusinessCategory,
		strings.Join(p.Services, ", "),
		truncate(p.Description, summaryLimit),
		renderCandidates(candidates),
	)
}

// renderCandidates produces the fixed-width summary block per candidate:
// 1-based index, title, truncated summary, leading affected entities and
// tags.
func renderCandidates(candidates []store.Regulation) string {
	var b strings.Builder
	for i, candidate := range candidates {
		fmt.Fprintf(&b, "\n%d. Title: %s\n", i+1, orNA(candidate.Title()))
		fmt.Fprintf(&b, "   Summary: %s...\n", truncate(orNA(candidate.Summary()), summaryLimit))
		fmt.Fprintf(&b, "   Affected Entities: %s\n", strings.Join(head(candidate.AffectedEntities(), maxEntities), ", "))
		fmt.Fprintf(&b, "   Tags: %s\n", strings.Join(head(candidate.Tags(), maxTags), ", "))
	}
	return b.String()
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// truncate limits s to n characters, counting runes so a multi-byte
// character is never split.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func head(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[:n]
}

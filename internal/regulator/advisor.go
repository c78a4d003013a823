package regulator

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/regwatchhq/regwatch/internal/llm"
	"github.com/regwatchhq/regwatch/internal/profile"
)

const (
	advisorSystemPrompt = "You are a Nigerian regulatory compliance expert. Respond only with comma-separated regulator codes."

	// Low temperature and a small token cap: the reply is a short code
	// list and we want it as deterministic as the provider allows.
	advisorTemperature = 0.3
	advisorMaxTokens   = 100
)

// Advisor suggests relevant regulators for a company profile through one
// completion call.
type Advisor struct {
	completer llm.Completer
	logger    *zap.Logger
}

// NewAdvisor creates an Advisor.
func NewAdvisor(completer llm.Completer, logger *zap.Logger) *Advisor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Advisor{completer: completer, logger: logger}
}

// Suggest returns the regulator codes relevant to the profile. The reply is
// split on commas and filtered against the fixed table; codes the model
// invents are silently dropped. A failed call or a reply that parses to
// nothing degrades to an empty slice, never an error. One outbound call,
// no retry.
func (a *Advisor) Suggest(ctx context.Context, p profile.CompanyProfile) []string {
	reply, err := a.completer.Complete(ctx, llm.Request{
		System:      advisorSystemPrompt,
		User:        advisorPrompt(p),
		Temperature: llm.Temperature(advisorTemperature),
		MaxTokens:   advisorMaxTokens,
	})
	if err != nil {
		a.logger.Warn("regulator suggestion degraded to empty set",
			zap.String("company", p.Name),
			zap.Error(err),
		)
		return nil
	}

	return parseCodes(reply)
}

// parseCodes extracts known regulator codes from a comma-separated reply,
// preserving reply order.
func parseCodes(reply string) []string {
	var codes []string
	for _, token := range strings.Split(reply, ",") {
		code := strings.TrimSpace(token)
		if IsKnown(code) {
			codes = append(codes, code)
		}
	}
	return codes
}

func advisorPrompt(p profile.CompanyProfile) string {
	return fmt.Sprintf(`You are a Nigerian regulatory compliance expert. Based on the company profile below, suggest which regulators are relevant.

Company Profile:
- Industry: %s
- Business Category: %s
- Business Sub-Category: %s
- Services: %s
- Description: %s
- Country: %s

Available Regulators:
%s

Instructions:
1. Analyze the company's industry, services, and business activities
2. Suggest ONLY the regulators that are directly relevant to this company
3. Return ONLY the regulator codes as a comma-separated list (e.g., "CBN, NDPC, FCCPC")
4. Do not include explanations or additional text
5. If the company operates in Nigeria and handles financial services, CBN is likely relevant
6. If they handle customer data, NDPC is relevant
7. If they take deposits, NDIC is relevant
8. If they deal with securities/investments, SEC is relevant
9. If they provide insurance, NAICOM is relevant

Response (comma-separated regulator codes only):`,
		p.Industry,
		p.BusinessCategory,
		p.BusinessSubCategory,
		strings.Join(p.Services, ", "),
		p.Description,
		p.Country,
		promptTable(),
	)
}

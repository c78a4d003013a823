package match

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/regwatchhq/regwatch/internal/profile"
	"github.com/regwatchhq/regwatch/internal/store"
)

// Advisor suggests regulator codes for a company profile.
type Advisor interface {
	Suggest(ctx context.Context, p profile.CompanyProfile) []string
}

// RelevanceClassifier narrows a candidate batch to the relevant subset.
type RelevanceClassifier interface {
	Classify(ctx context.Context, p profile.CompanyProfile, candidates []store.Regulation) []store.Regulation
}

// Result is the outcome of one match run. TotalRelevantCirculars always
// equals len(Circulars), and Circulars is a subset of the keyword-filter
// candidate set in classifier reply order.
type Result struct {
	CompanyName            string
	TotalRelevantCirculars int
	Circulars              []store.Regulation
}

// Suggestion is the outcome of a standalone regulator-suggestion run.
type Suggestion struct {
	CompanyName         string
	SuggestedRegulators []string
}

// Pipeline orchestrates one match request: company lookup, profile build,
// regulator suggestion, keyword pre-filter, relevance classification,
// response assembly. It holds no per-request state; the collections and
// clients it wraps are long-lived and shared.
type Pipeline struct {
	companies       store.Collection
	regulations     store.Collection
	advisor         Advisor
	classifier      RelevanceClassifier
	logger          *zap.Logger
	fallbackCountry string
}

// NewPipeline creates a Pipeline.
func NewPipeline(
	companies store.Collection,
	regulations store.Collection,
	advisor Advisor,
	classifier RelevanceClassifier,
	logger *zap.Logger,
	fallbackCountry string,
) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		companies:       companies,
		regulations:     regulations,
		advisor:         advisor,
		classifier:      classifier,
		logger:          logger,
		fallbackCountry: fallbackCountry,
	}
}

// Match runs the full pipeline for one company. A missing company aborts
// with store.ErrNotFound before any completion call is made; after the
// lookup succeeds, upstream completion failures only degrade the result
// (empty suggestions, unfiltered candidates), they never fail the request.
// The stages run strictly sequentially; each one consumes the previous
// stage's output.
func (p *Pipeline) Match(ctx context.Context, companyID string) (Result, error) {
	doc, err := p.fetchCompany(ctx, companyID)
	if err != nil {
		return Result{}, err
	}

	prof := profile.Build(doc, p.fallbackCountry)
	prof = prof.WithRegulators(p.advisor.Suggest(ctx, prof))

	keywords := Keywords(prof)
	candidateDocs, err := p.regulations.Find(ctx, CandidateQuery(prof.SuggestedRegulators, keywords))
	if err != nil {
		return Result{}, fmt.Errorf("querying candidate regulations: %w", err)
	}
	candidates := store.AsRegulations(candidateDocs)

	p.logger.Debug("keyword pre-filter complete",
		zap.String("company", prof.Name),
		zap.Strings("keywords", keywords),
		zap.Strings("suggested_regulators", prof.SuggestedRegulators),
		zap.Int("candidates", len(candidates)),
	)

	relevant := p.classifier.Classify(ctx, prof, candidates)

	p.logger.Info("match complete",
		zap.String("company", prof.Name),
		zap.Int("candidates", len(candidates)),
		zap.Int("relevant", len(relevant)),
	)

	return Result{
		CompanyName:            prof.Name,
		TotalRelevantCirculars: len(relevant),
		Circulars:              relevant,
	}, nil
}

// SuggestRegulators runs only the lookup and advisor stages.
func (p *Pipeline) SuggestRegulators(ctx context.Context, companyID string) (Suggestion, error) {
	doc, err := p.fetchCompany(ctx, companyID)
	if err != nil {
		return Suggestion{}, err
	}

	prof := profile.Build(doc, p.fallbackCountry)
	codes := p.advisor.Suggest(ctx, prof)

	return Suggestion{
		CompanyName:         prof.Name,
		SuggestedRegulators: codes,
	}, nil
}

func (p *Pipeline) fetchCompany(ctx context.Context, companyID string) (store.Document, error) {
	doc, err := p.companies.FindOne(ctx, store.ParseDocumentID(companyID).Filter())
	if err != nil {
		return nil, fmt.Errorf("fetching company %s: %w", companyID, err)
	}
	return doc, nil
}

package match

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/regwatchhq/regwatch/internal/profile"
	"github.com/regwatchhq/regwatch/internal/store"
)

// fakeCollection is an in-memory Collection. FindOne matches on _id
// equality; Find evaluates the candidate-query operators ($or, $in,
// $regex, $exists) against the stored documents in insertion order.
type fakeCollection struct {
	docs      []store.Document
	findCalls int
}

func (f *fakeCollection) FindOne(_ context.Context, filter any) (store.Document, error) {
	id := filter.(bson.M)["_id"]
	for _, doc := range f.docs {
		if doc["_id"] == id {
			return doc, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeCollection) Find(_ context.Context, filter any) ([]store.Document, error) {
	f.findCalls++
	var out []store.Document
	for _, doc := range f.docs {
		if matchesQuery(doc, filter.(bson.M)) {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (f *fakeCollection) InsertOne(_ context.Context, doc any) (string, error) {
	f.docs = append(f.docs, doc.(store.Document))
	return "inserted", nil
}

func matchesQuery(doc store.Document, query bson.M) bool {
	clauses, ok := query["$or"].(bson.A)
	if !ok {
		return false
	}
	for _, clause := range clauses {
		if matchesClause(doc, clause.(bson.M)) {
			return true
		}
	}
	return false
}

func matchesClause(doc store.Document, clause bson.M) bool {
	for field, cond := range clause {
		ops := cond.(bson.M)

		var values []string
		switch field {
		case "regulator.code":
			values = []string{store.Regulation(doc).RegulatorCode()}
		case "tags":
			values = doc.StringSlice("tags")
		case "affected_entities":
			if _, exists := ops["$exists"]; exists {
				_, present := doc["affected_entities"]
				return present
			}
			values = doc.StringSlice("affected_entities")
		}

		if in, ok := ops["$in"].([]string); ok {
			for _, v := range values {
				for _, want := range in {
					if v == want {
						return true
					}
				}
			}
			return false
		}
		if pattern, ok := ops["$regex"].(string); ok {
			re := regexp.MustCompile("(?i)" + pattern)
			for _, v := range values {
				if re.MatchString(v) {
					return true
				}
			}
			return false
		}
	}
	return false
}

// fixedAdvisor returns a canned suggestion without any completion call.
type fixedAdvisor struct {
	codes []string
	calls int
}

func (a *fixedAdvisor) Suggest(context.Context, profile.CompanyProfile) []string {
	a.calls++
	return a.codes
}

func bankingCompany() store.Document {
	return store.Document{
		"_id":      "co-1",
		"name":     "Lendwave",
		"industry": "banking",
		"services": []any{"retail lending"},
	}
}

// bankingCandidates is the three-document scenario: one matches by tag,
// one by suggested regulator code, one matches neither.
func bankingCandidates() []store.Document {
	return []store.Document{
		{
			"_id":               "reg-tagged",
			"title":             "Banking Tagged Circular",
			"tags":              []any{"banking"},
			"affected_entities": []any{"commercial banks"},
		},
		{
			"_id":       "reg-cbn",
			"title":     "CBN Circular",
			"regulator": bson.M{"code": "CBN"},
		},
		{
			"_id":       "reg-other",
			"title":     "Unrelated Insurance Circular",
			"regulator": bson.M{"code": "NAICOM"},
			"tags":      []any{"insurance"},
		},
	}
}

func newTestPipeline(companies, regulations *fakeCollection, advisor Advisor, completer *stubCompleter) *Pipeline {
	return NewPipeline(
		companies,
		regulations,
		advisor,
		NewClassifier(completer, zap.NewNop()),
		zap.NewNop(),
		"Nigeria",
	)
}

func TestMatch_BankingScenario(t *testing.T) {
	companies := &fakeCollection{docs: []store.Document{bankingCompany()}}
	regulations := &fakeCollection{docs: bankingCandidates()}
	advisor := &fixedAdvisor{codes: []string{"CBN"}}
	completer := &stubCompleter{reply: "1"}

	result, err := newTestPipeline(companies, regulations, advisor, completer).
		Match(context.Background(), "co-1")
	require.NoError(t, err)

	assert.Equal(t, "Lendwave", result.CompanyName)
	// The pre-filter keeps the tagged and the CBN documents; the classifier
	// reply "1" then narrows to the first, in store order.
	require.Equal(t, 1, result.TotalRelevantCirculars)
	require.Len(t, result.Circulars, 1)
	assert.Equal(t, "reg-tagged", result.Circulars[0].ID())

	// The classifier saw exactly the two pre-filter matches.
	require.Len(t, completer.requests, 1)
	assert.Contains(t, completer.requests[0].User, "1. Title: Banking Tagged Circular")
	assert.Contains(t, completer.requests[0].User, "2. Title: CBN Circular")
	assert.NotContains(t, completer.requests[0].User, "Unrelated Insurance Circular")
}

func TestMatch_NoneReply(t *testing.T) {
	companies := &fakeCollection{docs: []store.Document{bankingCompany()}}
	regulations := &fakeCollection{docs: bankingCandidates()}
	completer := &stubCompleter{reply: "NONE"}

	result, err := newTestPipeline(companies, regulations, &fixedAdvisor{codes: []string{"CBN"}}, completer).
		Match(context.Background(), "co-1")
	require.NoError(t, err)

	assert.Equal(t, 0, result.TotalRelevantCirculars)
	assert.Empty(t, result.Circulars)
}

func TestMatch_ClassifierFailureFailsOpen(t *testing.T) {
	companies := &fakeCollection{docs: []store.Document{bankingCompany()}}
	regulations := &fakeCollection{docs: bankingCandidates()}
	completer := &stubCompleter{err: errors.New("completion service down")}

	result, err := newTestPipeline(companies, regulations, &fixedAdvisor{codes: []string{"CBN"}}, completer).
		Match(context.Background(), "co-1")
	require.NoError(t, err)

	// Full keyword-filter candidate set, order preserved.
	require.Equal(t, 2, result.TotalRelevantCirculars)
	assert.Equal(t, "reg-tagged", result.Circulars[0].ID())
	assert.Equal(t, "reg-cbn", result.Circulars[1].ID())
}

func TestMatch_CompanyNotFound(t *testing.T) {
	companies := &fakeCollection{}
	regulations := &fakeCollection{docs: bankingCandidates()}
	advisor := &fixedAdvisor{codes: []string{"CBN"}}
	completer := &stubCompleter{reply: "1"}

	_, err := newTestPipeline(companies, regulations, advisor, completer).
		Match(context.Background(), "missing")

	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrNotFound)
	// The pipeline aborts before the advisor or classifier runs.
	assert.Zero(t, advisor.calls)
	assert.Empty(t, completer.requests)
	assert.Zero(t, regulations.findCalls)
}

func TestMatch_Idempotent(t *testing.T) {
	companies := &fakeCollection{docs: []store.Document{bankingCompany()}}
	regulations := &fakeCollection{docs: bankingCandidates()}
	pipeline := newTestPipeline(companies, regulations, &fixedAdvisor{codes: []string{"CBN"}}, &stubCompleter{reply: "2"})

	first, err := pipeline.Match(context.Background(), "co-1")
	require.NoError(t, err)
	second, err := pipeline.Match(context.Background(), "co-1")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestSuggestRegulators(t *testing.T) {
	companies := &fakeCollection{docs: []store.Document{bankingCompany()}}
	advisor := &fixedAdvisor{codes: []string{"CBN", "NDPC"}}
	pipeline := newTestPipeline(companies, &fakeCollection{}, advisor, &stubCompleter{})

	suggestion, err := pipeline.SuggestRegulators(context.Background(), "co-1")
	require.NoError(t, err)
	assert.Equal(t, "Lendwave", suggestion.CompanyName)
	assert.Equal(t, []string{"CBN", "NDPC"}, suggestion.SuggestedRegulators)

	_, err = pipeline.SuggestRegulators(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

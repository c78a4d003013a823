package match

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/regwatchhq/regwatch/internal/llm"
	"github.com/regwatchhq/regwatch/internal/profile"
	"github.com/regwatchhq/regwatch/internal/store"
)

// stubCompleter records requests and returns a canned reply or error.
type stubCompleter struct {
	reply    string
	err      error
	requests []llm.Request
}

func (s *stubCompleter) Complete(_ context.Context, req llm.Request) (string, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func testCandidates() []store.Regulation {
	return []store.Regulation{
		{
			"_id":   "reg-1",
			"title": "AML Circular",
			"description": bson.M{
				"summary": "Anti-money laundering requirements for banks",
			},
			"affected_entities": []any{"banks"},
			"tags":              []any{"banking", "aml"},
		},
		{"_id": "reg-2", "title": "Insurance Circular"},
		{"_id": "reg-3", "title": "Capital Markets Circular"},
	}
}

func testProfile() profile.CompanyProfile {
	return profile.CompanyProfile{
		Name:     "Lendwave",
		Industry: "Banking",
		Services: []string{"retail lending"},
	}
}

func TestClassify(t *testing.T) {
	t.Run("empty candidates skips the completion call", func(t *testing.T) {
		stub := &stubCompleter{reply: "1"}
		classifier := NewClassifier(stub, zap.NewNop())

		got := classifier.Classify(context.Background(), testProfile(), nil)
		assert.Empty(t, got)
		assert.Empty(t, stub.requests, "no outbound call expected for empty candidates")
	})

	t.Run("materializes selected indices in reply order", func(t *testing.T) {
		stub := &stubCompleter{reply: "3, 1"}
		classifier := NewClassifier(stub, zap.NewNop())

		got := classifier.Classify(context.Background(), testProfile(), testCandidates())
		require.Len(t, got, 2)
		assert.Equal(t, "reg-3", got[0].ID())
		assert.Equal(t, "reg-1", got[1].ID())
	})

	t.Run("NONE means empty, case-insensitively", func(t *testing.T) {
		for _, reply := range []string{"NONE", "none", " None \n"} {
			stub := &stubCompleter{reply: reply}
			classifier := NewClassifier(stub, zap.NewNop())
			got := classifier.Classify(context.Background(), testProfile(), testCandidates())
			assert.Empty(t, got, "reply %q", reply)
		}
	})

	t.Run("drops non-integer tokens and out-of-range indices", func(t *testing.T) {
		stub := &stubCompleter{reply: "0, 2, four, 99, -1"}
		classifier := NewClassifier(stub, zap.NewNop())

		got := classifier.Classify(context.Background(), testProfile(), testCandidates())
		require.Len(t, got, 1)
		assert.Equal(t, "reg-2", got[0].ID())
	})

	t.Run("repeated index repeats the candidate", func(t *testing.T) {
		stub := &stubCompleter{reply: "1, 1"}
		classifier := NewClassifier(stub, zap.NewNop())

		got := classifier.Classify(context.Background(), testProfile(), testCandidates())
		require.Len(t, got, 2)
		assert.Equal(t, got[0].ID(), got[1].ID())
	})

	t.Run("fails open on completion error", func(t *testing.T) {
		candidates := testCandidates()
		stub := &stubCompleter{err: errors.New("upstream unavailable")}
		classifier := NewClassifier(stub, zap.NewNop())

		got := classifier.Classify(context.Background(), testProfile(), candidates)
		require.Len(t, got, len(candidates))
		for i := range candidates {
			assert.Equal(t, candidates[i].ID(), got[i].ID(), "order must be preserved")
		}
	})

	t.Run("prompt renders numbered candidate blocks", func(t *testing.T) {
		stub := &stubCompleter{reply: "NONE"}
		classifier := NewClassifier(stub, zap.NewNop())
		classifier.Classify(context.Background(), testProfile(), testCandidates())

		require.Len(t, stub.requests, 1)
		req := stub.requests[0]
		assert.Contains(t, req.User, "1. Title: AML Circular")
		assert.Contains(t, req.User, "2. Title: Insurance Circular")
		assert.Contains(t, req.User, "Anti-money laundering requirements")
		assert.Contains(t, req.User, "Name: Lendwave")
		require.NotNil(t, req.Temperature)
		assert.InDelta(t, 0.2, *req.Temperature, 0.001)
		assert.Equal(t, 200, req.MaxTokens)
	})

	t.Run("summaries are truncated to the limit", func(t *testing.T) {
		long := strings.Repeat("x", 500)
		candidates := []store.Regulation{{
			"title":       "Long One",
			"description": bson.M{"summary": long},
		}}
		stub := &stubCompleter{reply: "NONE"}
		classifier := NewClassifier(stub, zap.NewNop())
		classifier.Classify(context.Background(), testProfile(), candidates)

		require.Len(t, stub.requests, 1)
		assert.Contains(t, stub.requests[0].User, strings.Repeat("x", summaryLimit)+"...")
		assert.NotContains(t, stub.requests[0].User, strings.Repeat("x", summaryLimit+1))
	})
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab", truncate("abcd", 2))
	// Rune-safe: multi-byte characters are not split.
	assert.Equal(t, "hé", truncate("héllo", 2))
}

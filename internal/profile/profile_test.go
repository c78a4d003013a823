package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/regwatchhq/regwatch/internal/store"
)

func TestBuild(t *testing.T) {
	doc := store.Document{
		"name":                "Lendwave",
		"industry":            "Banking",
		"businessCategory":    "Fintech",
		"businessSubCategory": "Digital Lending",
		"services":            primitive.A{"retail lending", "savings"},
		"description":         "Digital lender",
		"country":             bson.M{"name": "Ghana", "code": "GH"},
	}

	p := Build(doc, "Nigeria")

	assert.Equal(t, "Lendwave", p.Name)
	assert.Equal(t, "Banking", p.Industry)
	assert.Equal(t, "Fintech", p.BusinessCategory)
	assert.Equal(t, "Digital Lending", p.BusinessSubCategory)
	assert.Equal(t, []string{"retail lending", "savings"}, p.Services)
	assert.Equal(t, "Digital lender", p.Description)
	assert.Equal(t, "Ghana", p.Country)
	assert.Empty(t, p.SuggestedRegulators)
}

func TestBuild_PartialInput(t *testing.T) {
	t.Run("empty document", func(t *testing.T) {
		p := Build(store.Document{}, "Nigeria")

		assert.Equal(t, "Unknown Company", p.Name)
		assert.Equal(t, "", p.Industry)
		assert.Empty(t, p.Services)
		assert.Equal(t, "Nigeria", p.Country)
	})

	t.Run("nil document", func(t *testing.T) {
		p := Build(nil, "Nigeria")
		assert.Equal(t, "Unknown Company", p.Name)
		assert.Equal(t, "Nigeria", p.Country)
	})

	t.Run("mistyped fields", func(t *testing.T) {
		doc := store.Document{
			"industry": 42,
			"services": "not a list",
			"country":  "not a document",
		}
		p := Build(doc, "Nigeria")
		assert.Equal(t, "", p.Industry)
		assert.Empty(t, p.Services)
		assert.Equal(t, "Nigeria", p.Country)
	})
}

func TestWithRegulators(t *testing.T) {
	p := Build(store.Document{"name": "Lendwave"}, "Nigeria")
	withRegs := p.WithRegulators([]string{"CBN", "NDPC"})

	assert.Equal(t, []string{"CBN", "NDPC"}, withRegs.SuggestedRegulators)
	// The original profile is untouched.
	assert.Empty(t, p.SuggestedRegulators)
}

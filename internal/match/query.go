package match

import (
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

// maxRegexKeywords caps the regex alternation over affected_entities.
const maxRegexKeywords = 5

// CandidateQuery builds the recall-oriented store filter: a logical OR of
// regulator-code membership, tag membership, and a case-insensitive regex
// of the top keywords against affected_entities. When the keyword set is
// empty the regex alternative is replaced by an existence check so the OR
// never degenerates into a match-nothing clause.
//
// The query intentionally over-selects; it bounds the input of the LLM
// classification stage and is never the final relevance decision.
func CandidateQuery(suggested []string, keywords []string) bson.M {
	if suggested == nil {
		suggested = []string{}
	}

	entityClause := bson.M{"affected_entities": bson.M{"$exists": true}}
	if len(keywords) > 0 {
		top := keywords
		if len(top) > maxRegexKeywords {
			top = top[:maxRegexKeywords]
		}
		quoted := make([]string, len(top))
		for i, kw := range top {
			quoted[i] = regexp.QuoteMeta(kw)
		}
		entityClause = bson.M{"affected_entities": bson.M{
			"$regex":   strings.Join(quoted, "|"),
			"$options": "i",
		}}
	}

	tagKeywords := keywords
	if tagKeywords == nil {
		tagKeywords = []string{}
	}

	return bson.M{
		"$or": bson.A{
			bson.M{"regulator.code": bson.M{"$in": suggested}},
			bson.M{"tags": bson.M{"$in": tagKeywords}},
			entityClause,
		},
	}
}

// Package assessment generates pre-assessment compliance questionnaires
// from regulatory circulars.
package assessment

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/regwatchhq/regwatch/internal/llm"
	"github.com/regwatchhq/regwatch/internal/store"
)

const (
	generatorSystemPrompt = "You are a financial regulatory compliance expert specializing in Central Bank of Nigeria (CBN) regulations. Generate compliance questions in valid JSON format only."

	// maxCircularText bounds the prompt size for long circulars.
	maxCircularText = 15000

	questionCount = 6
)

// Question is one yes/no pre-assessment question. Answer stays empty until
// the respondent fills it in.
type Question struct {
	QuestionID   string `json:"question_id" bson:"question_id"`
	QuestionText string `json:"question_text" bson:"question_text"`
	Answer       string `json:"answer" bson:"answer"`
}

// Fenced JSON extraction: models wrap JSON replies in markdown code blocks
// often enough that stripping them is part of the parse.
var (
	jsonFence = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")
	anyFence  = regexp.MustCompile("(?s)```\\s*(.*?)\\s*```")
)

// Generator produces pre-assessment questions through one completion call.
type Generator struct {
	completer llm.Completer
	logger    *zap.Logger
}

// NewGenerator creates a Generator.
func NewGenerator(completer llm.Completer, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{completer: completer, logger: logger}
}

// Generate returns exactly questionCount questions for the regulation.
// Provider sampling defaults apply; the reply is structured JSON and the
// deployed models handle that better without a forced temperature. Any
// call or parse failure degrades to the static fallback questionnaire;
// Generate never returns an error.
func (g *Generator) Generate(ctx context.Context, reg store.Regulation) []Question {
	reply, err := g.completer.Complete(ctx, llm.Request{
		System: generatorSystemPrompt,
		User:   generatorPrompt(reg),
	})
	if err != nil {
		g.logger.Warn("question generation degraded to fallback",
			zap.String("regulation", reg.Title()),
			zap.Error(err),
		)
		return fallbackQuestions(reg.Title())
	}

	questions, err := parseQuestions(reply)
	if err != nil {
		g.logger.Warn("question reply unparsable, using fallback",
			zap.String("regulation", reg.Title()),
			zap.Error(err),
		)
		return fallbackQuestions(reg.Title())
	}
	return questions
}

// parseQuestions decodes the JSON-array reply, tolerating markdown fences.
func parseQuestions(reply string) ([]Question, error) {
	body := reply
	if m := jsonFence.FindStringSubmatch(reply); m != nil {
		body = m[1]
	} else if m := anyFence.FindStringSubmatch(reply); m != nil {
		body = m[1]
	}

	var questions []Question
	if err := json.Unmarshal([]byte(strings.TrimSpace(body)), &questions); err != nil {
		return nil, fmt.Errorf("decoding question array: %w", err)
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("no questions generated")
	}
	for _, q := range questions {
		if q.QuestionID == "" || q.QuestionText == "" {
			return nil, fmt.Errorf("question missing required fields")
		}
	}
	return questions, nil
}

// fallbackQuestions is the static questionnaire used when generation fails.
func fallbackQuestions(title string) []Question {
	return []Question{
		{QuestionID: "Q1", QuestionText: fmt.Sprintf("Does your company comply with all requirements outlined in: %s?", title)},
		{QuestionID: "Q2", QuestionText: "Have you reviewed this circular and assessed its applicability to your operations?"},
		{QuestionID: "Q3", QuestionText: "Do you have documented policies and procedures to ensure compliance with this circular?"},
		{QuestionID: "Q4", QuestionText: "Have relevant staff been trained on the requirements of this circular?"},
		{QuestionID: "Q5", QuestionText: "Do you have a monitoring system to track ongoing compliance with this circular?"},
		{QuestionID: "Q6", QuestionText: "Are compliance records maintained and accessible for regulatory inspection?"},
	}
}

func generatorPrompt(reg store.Regulation) string {
	circularText := reg.ExtractedText()
	if len(circularText) > maxCircularText {
		circularText = circularText[:maxCircularText] + "\n\n[Text truncated]"
	}

	return fmt.Sprintf(`You are a regulatory compliance expert specializing in financial services. Create %d clear, personalized compliance questions based on this regulatory circular.

**CIRCULAR INFORMATION:**

Title: %s

Summary: %s

Circular Text:
%s

**INSTRUCTIONS:**

1. **Base questions ONLY on explicit requirements in the circular**
   - Do NOT add questions from general knowledge
   - Focus on what the circular actually requires

2. **Make questions personalized and direct**
   - Use "you" and "your organization" to make questions feel personal
   - Frame questions as if speaking directly to the compliance officer
   - Each question should be answerable with Yes/No
   - Focus on specific, measurable requirements

3. **Cover these areas (if mentioned in circular):**
   - Reporting requirements (what to report, when, to whom)
   - Calculations or ratios to maintain
   - Limits or thresholds
   - Deadlines and timelines
   - Documentation requirements
   - Governance requirements (appointments, committees, etc.)

4. **Question format:**
   - Direct and conversational
   - Use second person ("Have you...", "Does your organization...", "Do you...")
   - No ambiguous language
   - Focus on "what" and "when"

**EXAMPLES OF GOOD PERSONALIZED QUESTIONS:**
- "Have you appointed a Chief Compliance Officer for your organization?"
- "Does your organization submit quarterly returns to CBN within 7 days after quarter-end?"
- "Is your Capital Adequacy Ratio maintained at or above 10%%?"
- "Do you maintain customer records for at least 5 years?"
- "Has your Board of Directors approved the AML/CFT policy within the last 12 months?"
- "Have all your customer-facing staff received compliance training in the last year?"

**OUTPUT FORMAT:**
Return ONLY a JSON array:
[
  {
    "question_id": "Q1",
    "question_text": "Clear, personalized question using 'you' or 'your organization'"
  },
  {
    "question_id": "Q2",
    "question_text": "Another personalized question"
  }
]

Generate exactly %d questions. Return ONLY the JSON array, no other text.`,
		questionCount,
		reg.Title(),
		reg.Summary(),
		circularText,
		questionCount,
	)
}

// Package tasks generates compliance task breakdowns from regulatory
// circulars and forwards them to the RegComply platform.
package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/regwatchhq/regwatch/internal/llm"
	"github.com/regwatchhq/regwatch/internal/profile"
	"github.com/regwatchhq/regwatch/internal/store"
)

const generatorSystemPrompt = "You are a Nigerian regulatory compliance expert. Generate specific, actionable compliance tasks with step-by-step instructions. Respond only with valid JSON."

// Instruction is one step of a compliance task.
type Instruction struct {
	Step        string  `json:"step"`
	Description string  `json:"description"`
	IsCompleted bool    `json:"isCompleted"`
	CompletedAt *string `json:"completedAt"`
}

// Task is one actionable compliance task.
type Task struct {
	Description  string        `json:"description"`
	Risk         string        `json:"risk"`
	Instructions []Instruction `json:"instructions"`
}

// Generator produces compliance tasks through one completion call.
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

// Generate returns 5-8 compliance tasks for the regulation. Provider
// sampling defaults apply. Any call or parse failure degrades to a single
// generic review task; Generate never returns an error.
func (g *Generator) Generate(ctx context.Context, reg store.Regulation, p profile.CompanyProfile) []Task {
	reply, err := g.completer.Complete(ctx, llm.Request{
		System: generatorSystemPrompt,
		User:   generatorPrompt(reg, p),
	})
	if err != nil {
		g.logger.Warn("task generation degraded to fallback",
			zap.String("regulation", reg.Title()),
			zap.Error(err),
		)
		return fallbackTasks(reg.Title())
	}

	var parsed []Task
	if err := json.Unmarshal([]byte(reply), &parsed); err != nil || len(parsed) == 0 {
		g.logger.Warn("task reply unparsable, using fallback",
			zap.String("regulation", reg.Title()),
			zap.Error(err),
		)
		return fallbackTasks(reg.Title())
	}
	return parsed
}

// fallbackTasks is the generic review task used when generation fails.
func fallbackTasks(title string) []Task {
	return []Task{{
		Description: fmt.Sprintf("Review and implement all requirements outlined in: %s", title),
		Risk:        "high",
		Instructions: []Instruction{
			{Step: "1", Description: "Conduct comprehensive review of circular requirements"},
			{Step: "2", Description: "Identify gaps in current compliance status"},
			{Step: "3", Description: "Develop implementation plan with timelines"},
			{Step: "4", Description: "Execute compliance activities and document progress"},
		},
	}}
}

func generatorPrompt(reg store.Regulation, p profile.CompanyProfile) string {
	return fmt.Sprintf(`You are a Nigerian regulatory compliance expert. Analyze this circular and generate 5-8 specific compliance tasks that a company must complete to achieve full compliance.

Circular Title: %s

Summary: %s

Complete Circular Text:
%s

Company Profile:
- Name: %s
- Industry: %s
- Business Category: %s
- Services: %s

CRITICAL INSTRUCTIONS:
1. Generate 5-8 specific, actionable compliance tasks
2. Each task should address a major requirement from the circular
3. Prioritize tasks by risk level: "high", "medium", or "low"
4. Break down each task into 3-5 step-by-step instructions
5. Make instructions concrete and implementable
6. Include specific deadlines, thresholds, or requirements mentioned in the circular
7. Focus on what the company must DO to comply

TASK STRUCTURE:
- description: Clear description of what needs to be done
- risk: "high", "medium", or "low" based on regulatory importance
- instructions: Array of 3-5 steps with step number and description

EXAMPLES OF GOOD TASKS:

Task 1:
- description: "Appoint a Chief Compliance Officer with at least 5 years of AML/CFT experience"
- risk: "high"
- instructions:
  1. Review internal candidates or initiate external recruitment for CCO position
  2. Verify candidate has minimum 5 years AML/CFT experience and relevant certifications
  3. Obtain Board approval for CCO appointment
  4. Submit CCO appointment notification to CBN within 7 days
  5. Ensure CCO has direct reporting line to Board of Directors

Task 2:
- description: "Implement real-time transaction monitoring system to flag suspicious activities"
- risk: "high"
- instructions:
  1. Procure transaction monitoring software that meets CBN technical specifications
  2. Configure system to flag transactions above N5,000,000 for individuals
  3. Set up automated alerts for suspicious patterns (structuring, rapid movement)
  4. Train compliance team on system usage and alert investigation
  5. Conduct system testing and obtain CBN approval before go-live

Format your response as a JSON array:
[
  {
    "description": "Task description here",
    "risk": "high",
    "instructions": [
      {
        "step": "1",
        "description": "First step description"
      },
      {
        "step": "2",
        "description": "Second step description"
      }
    ]
  }
]

Return ONLY the JSON array, no additional text.`,
		reg.Title(),
		reg.Summary(),
		reg.ExtractedText(),
		p.Name,
		p.Industry,
		p.BusinessCategory,
		strings.Join(p.Services, ", "),
	)
}

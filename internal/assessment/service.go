package assessment

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/regwatchhq/regwatch/internal/store"
)

// Assessment is a generated, persisted pre-assessment questionnaire. The
// score stays empty until answers are collected and graded.
type Assessment struct {
	AssessmentID    string     `json:"assessment_id"`
	RegulationTitle string     `json:"regulation_title"`
	AssessmentDate  string     `json:"assessment_date"`
	TotalQuestions  int        `json:"total_questions"`
	Questions       []Question `json:"questions"`
	AssessmentScore string     `json:"assessment_score"`
}

// QuestionGenerator produces questions for a regulation.
type QuestionGenerator interface {
	Generate(ctx context.Context, reg store.Regulation) []Question
}

// Service generates pre-assessment questionnaires and persists them.
type Service struct {
	regulations store.Collection
	assessments store.Collection
	generator   QuestionGenerator
	logger      *zap.Logger
	now         func() time.Time
}

// NewService creates a Service.
func NewService(regulations, assessments store.Collection, generator QuestionGenerator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		regulations: regulations,
		assessments: assessments,
		generator:   generator,
		logger:      logger,
		now:         time.Now,
	}
}

// Generate builds a questionnaire for the regulation, saves it with empty
// answers and score, and returns it with the inserted id. A missing
// regulation surfaces store.ErrNotFound.
func (s *Service) Generate(ctx context.Context, regulationID string) (Assessment, error) {
	doc, err := s.regulations.FindOne(ctx, store.ParseDocumentID(regulationID).Filter())
	if err != nil {
		return Assessment{}, fmt.Errorf("fetching regulation %s: %w", regulationID, err)
	}
	reg := store.Regulation(doc)

	questions := s.generator.Generate(ctx, reg)
	for i := range questions {
		questions[i].Answer = ""
	}

	assessmentDate := s.now().UTC().Format(time.RFC3339)
	record := store.Document{
		"regulation_title": reg.Title(),
		"assessment_date":  assessmentDate,
		"questions":        questions,
		"assessment_score": "",
	}

	id, err := s.assessments.InsertOne(ctx, record)
	if err != nil {
		return Assessment{}, fmt.Errorf("saving assessment: %w", err)
	}

	s.logger.Info("assessment generated",
		zap.String("regulation", reg.Title()),
		zap.String("assessment_id", id),
		zap.Int("questions", len(questions)),
	)

	return Assessment{
		AssessmentID:    id,
		RegulationTitle: reg.Title(),
		AssessmentDate:  assessmentDate,
		TotalQuestions:  len(questions),
		Questions:       questions,
		AssessmentScore: "",
	}, nil
}

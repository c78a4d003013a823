package tasks

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/regwatchhq/regwatch/internal/profile"
	"github.com/regwatchhq/regwatch/internal/store"
)

// defaultDeadlineOffset applies when a regulation has no compliance deadline.
const defaultDeadlineOffset = 90 * 24 * time.Hour

const defaultRisk = "medium"

// Request identifies the regulation and the RegComply organization the
// tasks belong to. Risk comes from the caller, not the model.
type Request struct {
	OrganizationID string
	Risk           string
	RegulationID   string
}

// Breakdown is the result of one task-generation run.
type Breakdown struct {
	CompanyName          string `json:"company_name"`
	CircularTitle        string `json:"circular_title"`
	TotalTasks           int    `json:"total_tasks"`
	TasksSentToRegComply bool   `json:"tasks_sent_to_regcomply"`
	Tasks                []Task `json:"tasks"`
}

// TaskGenerator produces compliance tasks for a regulation.
type TaskGenerator interface {
	Generate(ctx context.Context, reg store.Regulation, p profile.CompanyProfile) []Task
}

// Service generates compliance tasks for a regulation and forwards them
// to RegComply.
type Service struct {
	regulations store.Collection
	generator   TaskGenerator
	forwarder   *Forwarder
	logger      *zap.Logger
	now         func() time.Time
}

// NewService creates a Service.
func NewService(regulations store.Collection, generator TaskGenerator, forwarder *Forwarder, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		regulations: regulations,
		generator:   generator,
		forwarder:   forwarder,
		logger:      logger,
		now:         time.Now,
	}
}

// Generate builds the task breakdown for one regulation. Task descriptions
// and instructions come from the model; risk comes from the request and the
// due date and standards from the regulation record. Each task is delivered
// to RegComply individually; delivery failures are logged, not surfaced.
func (s *Service) Generate(ctx context.Context, req Request) (Breakdown, error) {
	if req.Risk == "" {
		req.Risk = defaultRisk
	}

	id := store.ParseDocumentID(req.RegulationID)
	doc, err := s.regulations.FindOne(ctx, id.Filter())
	if err != nil {
		return Breakdown{}, fmt.Errorf("fetch regulation %s: %w", req.RegulationID, err)
	}
	reg := store.Regulation(doc)

	dueDate := s.dueDate(reg)
	standards := reg.Standards()
	if standards == nil {
		standards = []string{}
	}

	// Task generation runs without company data, so the model sees a
	// generic regulated-entity profile.
	generated := s.generator.Generate(ctx, reg, profile.CompanyProfile{
		Name:             "Financial Institution",
		Industry:         "Financial Services",
		BusinessCategory: "Regulated Entity",
		Services:         []string{},
	})

	tasks := make([]Task, 0, len(generated))
	sent := false
	for _, t := range generated {
		instructions := make([]Instruction, 0, len(t.Instructions))
		for _, inst := range t.Instructions {
			instructions = append(instructions, Instruction{
				Step:        inst.Step,
				Description: inst.Description,
			})
		}

		tasks = append(tasks, Task{
			Description:  t.Description,
			Risk:         req.Risk,
			Instructions: instructions,
		})

		if !s.forwarder.Enabled() {
			continue
		}
		err := s.forwarder.Send(ctx, RegComplyTask{
			Organization: req.OrganizationID,
			Title:        reg.Title(),
			Description:  t.Description,
			Status:       "pending",
			Risk:         req.Risk,
			DueDate:      dueDate,
			Standards:    standards,
			RegulationID: reg.ID(),
			Instructions: instructions,
		})
		if err != nil {
			s.logger.Warn("regcomply delivery failed",
				zap.String("regulation_id", reg.ID()),
				zap.Error(err),
			)
			continue
		}
		sent = true
	}

	s.logger.Info("compliance tasks generated",
		zap.String("regulation_id", reg.ID()),
		zap.Int("tasks", len(tasks)),
		zap.Bool("sent_to_regcomply", sent),
	)

	return Breakdown{
		CompanyName:          "Financial Institution",
		CircularTitle:        reg.Title(),
		TotalTasks:           len(tasks),
		TasksSentToRegComply: sent,
		Tasks:                tasks,
	}, nil
}

// dueDate returns the regulation's compliance deadline, or 90 days from
// now when the record carries none.
func (s *Service) dueDate(reg store.Regulation) string {
	if deadline, ok := reg.ComplianceDeadline(); ok {
		return deadline.UTC().Format(time.RFC3339)
	}
	return s.now().UTC().Add(defaultDeadlineOffset).Format(time.RFC3339)
}

// Package http provides the HTTP API for regwatchd.
package http

import (
	"github.com/regwatchhq/regwatch/internal/assessment"
	"github.com/regwatchhq/regwatch/internal/tasks"
	"github.com/regwatchhq/regwatch/internal/webhook"
)

// CompanyIDRequest identifies an ecosystem company.
type CompanyIDRequest struct {
	CompanyID string `json:"company_id"`
}

// RegulationIDRequest identifies a regulation record.
type RegulationIDRequest struct {
	RegulationID string `json:"regulation_id"`
}

// TaskGenerationRequest is the body for POST /api/v1/tasks/generate.
// OrganizationID and Risk come from the upstream RegComply webhook.
type TaskGenerationRequest struct {
	OrganizationID string `json:"organization_id"`
	Risk           string `json:"risk"`
	RegulationID   string `json:"regulation_id"`
}

// PreassessmentWebhookPayload is the body for POST /webhook/preassessment.
type PreassessmentWebhookPayload struct {
	OrganizationID  string `json:"organization_id"`
	PreassessmentID string `json:"preassessment_id"`
	RegulationID    string `json:"regulation_id"`
}

// CircularMatchResponse is the response body for POST /api/v1/circulars/match.
// Circulars are full regulation documents in JSON-serializable form.
type CircularMatchResponse struct {
	CompanyName            string `json:"company_name"`
	TotalRelevantCirculars int    `json:"total_relevant_circulars"`
	Circulars              []any  `json:"circulars"`
}

// RegulatorSuggestionResponse is the response body for
// POST /api/v1/regulators/suggest.
type RegulatorSuggestionResponse struct {
	CompanyName         string   `json:"company_name"`
	SuggestedRegulators []string `json:"suggested_regulators"`
}

// PreAssessmentResponse aliases the assessment result shape.
type PreAssessmentResponse = assessment.Assessment

// TaskBreakdownResponse aliases the task generation result shape.
type TaskBreakdownResponse = tasks.Breakdown

// WebhookReceiptResponse confirms receipt of a pre-assessment webhook.
type WebhookReceiptResponse struct {
	Status     string                      `json:"status"`
	Message    string                      `json:"message"`
	ReceivedAt string                      `json:"received_at"`
	Payload    PreassessmentWebhookPayload `json:"payload"`
}

// ReceivedWebhooksResponse lists the logged pre-assessment webhooks.
type ReceivedWebhooksResponse struct {
	TotalReceived int                `json:"total_received"`
	Webhooks      []webhook.Received `json:"webhooks"`
}

// ClearWebhooksResponse reports how many webhook entries were removed.
type ClearWebhooksResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status    string            `json:"status"`
	Databases map[string]string `json:"databases"`
}

// IndexResponse is the response body for GET /.
type IndexResponse struct {
	Message   string            `json:"message"`
	Status    string            `json:"status"`
	Endpoints map[string]string `json:"endpoints"`
}

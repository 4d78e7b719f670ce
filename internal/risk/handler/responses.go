package handler

import (
	"time"

	"lekha/internal/risk"
)

// RiskResponse is the HTTP representation of a compliance risk.
type RiskResponse struct {
	ID          string         `json:"id"`
	FirmID      string         `json:"firm_id"`
	Type        string         `json:"type"`
	Severity    string         `json:"severity"`
	Description string         `json:"description"`
	TaskID      string         `json:"task_id,omitempty"`
	Details     map[string]any `json:"details,omitempty"`
	Action      ActionResponse `json:"recommended_action"`
	Status      string         `json:"status"`
	DetectedAt  time.Time      `json:"detected_at"`
	ResolvedAt  *time.Time     `json:"resolved_at,omitempty"`
}

// ActionResponse is the recommended-action portion of the response.
type ActionResponse struct {
	Description      string  `json:"description"`
	Priority         string  `json:"priority"`
	EstimatedPenalty float64 `json:"estimated_penalty,omitempty"`
}

// EvaluationResponse is the HTTP response for the evaluate endpoints.
type EvaluationResponse struct {
	Detected bool          `json:"detected"`
	Risk     *RiskResponse `json:"risk,omitempty"`
}

// ScanResponse is the HTTP response for POST /risks/scan.
type ScanResponse struct {
	RisksDetected int             `json:"risks_detected"`
	Risks         []*RiskResponse `json:"risks"`
}

// FromRisk converts a domain risk to an HTTP response.
func FromRisk(r *risk.ComplianceRisk) *RiskResponse {
	resp := &RiskResponse{
		ID:          r.ID.String(),
		FirmID:      r.FirmID.String(),
		Type:        r.Type.String(),
		Severity:    r.Severity.String(),
		Description: r.Description,
		Details:     r.Details,
		Action: ActionResponse{
			Description:      r.Action.Description,
			Priority:         r.Action.Priority.String(),
			EstimatedPenalty: r.Action.EstimatedPenalty,
		},
		Status:     string(r.Status),
		DetectedAt: r.DetectedAt,
		ResolvedAt: r.ResolvedAt,
	}
	if !r.TaskID.IsNil() {
		resp.TaskID = r.TaskID.String()
	}
	return resp
}

// FromRisks converts a list of risks.
func FromRisks(list []*risk.ComplianceRisk) []*RiskResponse {
	out := make([]*RiskResponse, 0, len(list))
	for _, r := range list {
		out = append(out, FromRisk(r))
	}
	return out
}

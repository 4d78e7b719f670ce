package handler

import (
	"time"

	"lekha/internal/eligibility"
)

// RecommendationResponse is the HTTP representation of a recommendation.
type RecommendationResponse struct {
	ID        string         `json:"id"`
	FirmID    string         `json:"firm_id"`
	Type      string         `json:"type"`
	Reason    string         `json:"reason"`
	Details   map[string]any `json:"details,omitempty"`
	Status    string         `json:"status"`
	CreatedAt time.Time      `json:"created_at"`
}

// CheckResponse is the HTTP response for POST /eligibility/check.
type CheckResponse struct {
	RecommendationsPresented int                       `json:"recommendations_presented"`
	Recommendations          []*RecommendationResponse `json:"recommendations"`
}

// FromRecommendation converts a domain recommendation to an HTTP response.
func FromRecommendation(rec *eligibility.PlanRecommendation) *RecommendationResponse {
	return &RecommendationResponse{
		ID:        rec.ID.String(),
		FirmID:    rec.FirmID.String(),
		Type:      rec.Type.String(),
		Reason:    rec.Reason,
		Details:   rec.Details,
		Status:    string(rec.Status),
		CreatedAt: rec.CreatedAt,
	}
}

// FromRecommendations converts a list of recommendations.
func FromRecommendations(list []*eligibility.PlanRecommendation) []*RecommendationResponse {
	out := make([]*RecommendationResponse, 0, len(list))
	for _, rec := range list {
		out = append(out, FromRecommendation(rec))
	}
	return out
}

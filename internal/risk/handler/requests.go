package handler

import (
	"strings"

	dErrors "lekha/pkg/domain-errors"
)

// EvaluateGSTRRequest is the HTTP request body for POST /risks/evaluate/gstr.
type EvaluateGSTRRequest struct {
	Period      string  `json:"period"`
	GSTR1Total  float64 `json:"gstr1_total"`
	GSTR3BTotal float64 `json:"gstr3b_total"`
}

// Validate validates the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *EvaluateGSTRRequest) Validate() error {
	r.Period = strings.TrimSpace(r.Period)
	if r.Period == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "period is required")
	}
	if r.GSTR1Total < 0 || r.GSTR3BTotal < 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "turnover figures cannot be negative")
	}
	return nil
}

// EvaluateITCRequest is the HTTP request body for POST /risks/evaluate/itc.
type EvaluateITCRequest struct {
	Period       string  `json:"period"`
	ITCClaimed   float64 `json:"itc_claimed"`
	ITCAvailable float64 `json:"itc_available"`
}

// Validate validates the request.
func (r *EvaluateITCRequest) Validate() error {
	r.Period = strings.TrimSpace(r.Period)
	if r.Period == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "period is required")
	}
	if r.ITCClaimed < 0 || r.ITCAvailable < 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "credit figures cannot be negative")
	}
	return nil
}

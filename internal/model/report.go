package model

import (
	"github.com/safestudy/safestudy-go/internal/breach"
	"github.com/safestudy/safestudy-go/internal/strength"
)

// CheckRequest is the body of /analyze and /check.
type CheckRequest struct {
	Password string `json:"password" validate:"required,max=256"`
}

// BreachReport is the breach part of a SecurityReport.
type BreachReport struct {
	breach.Result
	Status breach.Status `json:"status"`
	Common bool          `json:"common"`
}

// NewBreachReport flattens a breach.Result for the API.
func NewBreachReport(r breach.Result) *BreachReport {
	return &BreachReport{Result: r, Status: r.Status(), Common: r.Common()}
}

// SecurityReport combines strength, improvement hints, stronger variants and
// (optionally) breach status for one password.
type SecurityReport struct {
	Strength     strength.Report `json:"strength"`
	Alternatives []string        `json:"alternatives"`
	Breach       *BreachReport   `json:"breach,omitempty"`
}

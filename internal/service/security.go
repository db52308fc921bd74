package service

import (
	"context"

	"github.com/safestudy/safestudy-go/internal/model"
	"github.com/safestudy/safestudy-go/internal/strength"
)

// SecurityService builds combined password reports.
type SecurityService struct {
	checker BreachChecker
}

// NewSecurityService creates a new SecurityService.
func NewSecurityService(checker BreachChecker) *SecurityService {
	return &SecurityService{checker: checker}
}

// Analyze scores the password and proposes alternatives without any
// network access.
func (s *SecurityService) Analyze(req model.CheckRequest) (model.SecurityReport, error) {
	if err := validateStruct(req); err != nil {
		return model.SecurityReport{}, err
	}
	return analyzeReport(req.Password), nil
}

// Check is Analyze plus a breach lookup. A failed lookup is reported as
// undetermined; the strength part is always filled in.
func (s *SecurityService) Check(ctx context.Context, req model.CheckRequest) (model.SecurityReport, error) {
	if err := validateStruct(req); err != nil {
		return model.SecurityReport{}, err
	}

	report := analyzeReport(req.Password)
	report.Breach = model.NewBreachReport(s.checker.Check(ctx, req.Password))
	return report, nil
}

// CheckMany runs Check over a batch of passwords with up to concurrency
// lookups in flight. Reports are returned in input order.
func (s *SecurityService) CheckMany(ctx context.Context, passwords []string, concurrency int) ([]model.SecurityReport, error) {
	for _, pw := range passwords {
		if err := validateStruct(model.CheckRequest{Password: pw}); err != nil {
			return nil, err
		}
	}

	results := s.checker.CheckMany(ctx, passwords, concurrency)
	reports := make([]model.SecurityReport, len(passwords))
	for i, pw := range passwords {
		reports[i] = analyzeReport(pw)
		reports[i].Breach = model.NewBreachReport(results[i])
	}
	return reports, nil
}

func analyzeReport(password string) model.SecurityReport {
	return model.SecurityReport{
		Strength:     strength.Analyze(password),
		Alternatives: strength.SuggestAlternativesNow(password),
	}
}

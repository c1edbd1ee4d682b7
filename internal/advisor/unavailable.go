package advisor

import (
	"context"

	"hg-go/internal/hg"
)

// Unavailable stands in when no credential is configured. Every call fails
// with hg.ErrCredentialMissing.
type Unavailable struct{}

var _ hg.Advisor = Unavailable{}

func (Unavailable) Available() bool { return false }

func (Unavailable) AnalyzeImage(context.Context, []byte, string) ([]hg.AnalyzedFood, error) {
	return nil, hg.ErrCredentialMissing
}

func (Unavailable) GeneratePlan(context.Context, hg.UserProfile) (*hg.DietPlan, error) {
	return nil, hg.ErrCredentialMissing
}

package testutil

import (
	"context"
	"sync"

	"hg-go/internal/hg"
)

// FakeAdvisor returns canned results and counts calls.
type FakeAdvisor struct {
	mu sync.Mutex

	Items []hg.AnalyzedFood
	Plan  *hg.DietPlan
	Err   error
	Off   bool

	AnalyzeCalls int
	PlanCalls    int
	LastProfile  hg.UserProfile
}

var _ hg.Advisor = (*FakeAdvisor)(nil)

func (a *FakeAdvisor) Available() bool { return !a.Off }

func (a *FakeAdvisor) AnalyzeImage(ctx context.Context, image []byte, mimeType string) ([]hg.AnalyzedFood, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.AnalyzeCalls++
	if a.Err != nil {
		return nil, a.Err
	}
	return append([]hg.AnalyzedFood(nil), a.Items...), nil
}

func (a *FakeAdvisor) GeneratePlan(ctx context.Context, profile hg.UserProfile) (*hg.DietPlan, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.PlanCalls++
	a.LastProfile = profile
	if a.Err != nil {
		return nil, a.Err
	}
	return a.Plan, nil
}

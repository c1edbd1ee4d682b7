package hg

import "context"

// Advisor is the AI collaborator. Implementations are network-bound and
// fallible; they must return ErrCredentialMissing (possibly wrapped) when no
// API key is configured rather than failing at construction.
type Advisor interface {
	// AnalyzeImage recognizes the foods in an image.
	AnalyzeImage(ctx context.Context, image []byte, mimeType string) ([]AnalyzedFood, error)

	// GeneratePlan produces a daily diet plan for profile.
	GeneratePlan(ctx context.Context, profile UserProfile) (*DietPlan, error)

	// Available reports whether a credential is configured.
	Available() bool
}

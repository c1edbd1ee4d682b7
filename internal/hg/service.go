package hg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"
)

// HGService is the orchestration layer behind the CLI. It ties the user
// registry, the session and the collaborators together; everything it needs
// is injected.
type HGService struct {
	gateway  *Gateway
	registry *UserRegistry
	session  *SessionManager
	advisor  Advisor
	vault    Vault
	sealer   Sealer
	goals    Goals
	logger   Logger
	recorder Recorder
	clock    Clock
	idgen    IDGenerator
}

// ServiceDeps bundles HGService's collaborators. Advisor, Vault and Sealer may
// be nil; the features that need them then report an error.
type ServiceDeps struct {
	Gateway  *Gateway
	Advisor  Advisor
	Vault    Vault
	Sealer   Sealer
	Goals    Goals
	Logger   Logger
	Recorder Recorder
	Clock    Clock
	IDGen    IDGenerator
}

// NewHGService wires a service. The session starts in NoUser; call Restore.
func NewHGService(deps ServiceDeps) *HGService {
	if deps.Logger == nil {
		deps.Logger = NewNopLogger()
	}
	if deps.Recorder == nil {
		deps.Recorder = NopRecorder{}
	}
	if deps.Clock == nil {
		deps.Clock = LocalClock{}
	}
	if deps.IDGen == nil {
		deps.IDGen = UUIDGenerator{}
	}
	return &HGService{
		gateway:  deps.Gateway,
		registry: NewUserRegistry(deps.Gateway, deps.IDGen, deps.Logger),
		session:  NewSessionManager(deps.Gateway, deps.IDGen, deps.Clock, deps.Logger, deps.Recorder),
		advisor:  deps.Advisor,
		vault:    deps.Vault,
		sealer:   deps.Sealer,
		goals:    deps.Goals,
		logger:   deps.Logger,
		recorder: deps.Recorder,
		clock:    deps.Clock,
		idgen:    deps.IDGen,
	}
}

// Session exposes the session manager for data mutations.
func (s *HGService) Session() *SessionManager { return s.session }

// Restore resumes the persisted session, if any.
func (s *HGService) Restore() error {
	return s.session.Restore()
}

// Signup registers a user and logs them in.
func (s *HGService) Signup(email, name string) (User, error) {
	user, err := s.registry.Signup(email, name)
	if err != nil {
		return User{}, err
	}
	if err := s.session.Login(user); err != nil {
		return User{}, fmt.Errorf("logging in: %w", err)
	}
	return user, nil
}

// Login logs in the user registered with email.
func (s *HGService) Login(email string) (User, error) {
	user, err := s.registry.Find(email)
	if err != nil {
		return User{}, err
	}
	if err := s.session.Login(user); err != nil {
		return User{}, fmt.Errorf("logging in: %w", err)
	}
	return user, nil
}

// Logout ends the session.
func (s *HGService) Logout() {
	s.session.Logout()
}

// CurrentUser returns the logged-in user or ErrNoUser.
func (s *HGService) CurrentUser() (User, error) {
	u, ok := s.session.CurrentUser()
	if !ok {
		return User{}, ErrNoUser
	}
	return u, nil
}

// Users lists every registered user.
func (s *HGService) Users() []User {
	return s.registry.List()
}

// UserOverview is a registered user with the collections stored for them.
type UserOverview struct {
	User   User
	Stored []Collection
}

// UserOverviews lists every registered user with their stored collections.
// A user whose keys cannot be listed is reported with Stored nil.
func (s *HGService) UserOverviews() []UserOverview {
	users := s.registry.List()
	out := make([]UserOverview, len(users))
	for i, u := range users {
		out[i].User = u
		stored, err := s.gateway.StoredCollections(u.ID)
		if err != nil {
			s.logger.Warn("listing stored collections failed", "user_id", u.ID, "error", err)
			continue
		}
		out[i].Stored = stored
	}
	return out
}

// Dashboard aggregates the current user's data as of ref.
func (s *HGService) Dashboard(ref time.Time) (Dashboard, error) {
	data, err := s.session.Snapshot()
	if err != nil {
		return Dashboard{}, err
	}
	return Summarize(data, ref, s.goals), nil
}

// AIAvailable reports whether AI features can be used.
func (s *HGService) AIAvailable() bool {
	return s.advisor != nil && s.advisor.Available()
}

// ScanFood analyzes an image and logs every recognized food. Nothing is
// logged if analysis fails.
func (s *HGService) ScanFood(ctx context.Context, image []byte, mimeType string) ([]FoodItem, error) {
	if _, err := s.session.Snapshot(); err != nil {
		return nil, err
	}
	if !s.AIAvailable() {
		s.recorder.AdvisorCall("analyze", "unavailable")
		return nil, ErrCredentialMissing
	}

	analyzed, err := s.advisor.AnalyzeImage(ctx, image, mimeType)
	if err != nil {
		s.recorder.AdvisorCall("analyze", "error")
		s.logger.Error("food analysis failed", "error", err)
		if errors.Is(err, ErrCredentialMissing) {
			return nil, err
		}
		var aerr *AnalysisError
		if !errors.As(err, &aerr) {
			err = &AnalysisError{Err: err}
		}
		return nil, err
	}
	s.recorder.AdvisorCall("analyze", "ok")

	items := make([]FoodItem, len(analyzed))
	for i, a := range analyzed {
		items[i] = FoodItem{
			ID:       s.idgen.New(),
			Name:     a.Name,
			Calories: nonNegative(a.Calories),
			Protein:  nonNegative(a.Protein),
			Carbs:    nonNegative(a.Carbs),
			Fats:     nonNegative(a.Fats),
			Portion:  a.Portion,
		}
	}
	return s.session.AddFoods(items...)
}

// GeneratePlan asks the advisor for a diet plan for the current profile.
func (s *HGService) GeneratePlan(ctx context.Context) (*DietPlan, error) {
	data, err := s.session.Snapshot()
	if err != nil {
		return nil, err
	}
	if !s.AIAvailable() {
		s.recorder.AdvisorCall("plan", "unavailable")
		return nil, ErrCredentialMissing
	}

	plan, err := s.advisor.GeneratePlan(ctx, data.Profile)
	if err != nil {
		s.recorder.AdvisorCall("plan", "error")
		s.logger.Error("diet plan generation failed", "error", err)
		if errors.Is(err, ErrCredentialMissing) {
			return nil, err
		}
		var perr *PlanGenerationError
		if !errors.As(err, &perr) {
			err = &PlanGenerationError{Err: err}
		}
		return nil, err
	}
	s.recorder.AdvisorCall("plan", "ok")
	return plan, nil
}

// SetupBackup creates the backup key pair.
func (s *HGService) SetupBackup(passphrase string) error {
	if s.sealer == nil {
		return errors.New("no backup encryption configured")
	}
	if s.sealer.IsConfigured() {
		return errors.New("backup keys already exist")
	}
	return s.sealer.Setup(passphrase)
}

// PushBackup seals the current user's data and stores it in the vault.
// It returns the stored version.
func (s *HGService) PushBackup(ctx context.Context) (int64, error) {
	if s.vault == nil || s.sealer == nil {
		return 0, errors.New("no backup vault configured")
	}
	user, err := s.CurrentUser()
	if err != nil {
		return 0, err
	}
	data, err := s.session.Snapshot()
	if err != nil {
		return 0, err
	}

	now := s.clock.Now()
	var plain bytes.Buffer
	if err := EncodeSnapshot(&plain, NewSnapshot(user, data, now)); err != nil {
		return 0, err
	}
	var sealed bytes.Buffer
	if err := s.sealer.Seal(&plain, &sealed); err != nil {
		return 0, fmt.Errorf("sealing snapshot: %w", err)
	}

	version := now.Unix()
	if err := s.vault.PutSnapshot(ctx, user.ID, &sealed, int64(sealed.Len()), version); err != nil {
		return 0, fmt.Errorf("storing snapshot: %w", err)
	}
	s.logger.Info("backup pushed", "user_id", user.ID, "version", version)
	return version, nil
}

// PullBackup restores the current user's data from the vault, replacing
// everything stored locally for that user.
func (s *HGService) PullBackup(ctx context.Context, passphrase string) (*Snapshot, error) {
	if s.vault == nil || s.sealer == nil {
		return nil, errors.New("no backup vault configured")
	}
	user, err := s.CurrentUser()
	if err != nil {
		return nil, err
	}
	if _, err := s.session.Snapshot(); err != nil {
		return nil, err
	}

	version, err := s.vault.SnapshotVersion(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("checking snapshot version: %w", err)
	}
	if version == 0 {
		return nil, fmt.Errorf("no backup stored for %s", user.Email)
	}

	opener, err := s.sealer.Unlock(passphrase)
	if err != nil {
		return nil, fmt.Errorf("unlocking backup key: %w", err)
	}
	var sealed bytes.Buffer
	if err := s.vault.GetSnapshot(ctx, user.ID, &sealed); err != nil {
		return nil, fmt.Errorf("fetching snapshot: %w", err)
	}
	var plain bytes.Buffer
	if err := opener.Open(&sealed, &plain); err != nil {
		return nil, fmt.Errorf("opening snapshot: %w", err)
	}
	snap, err := DecodeSnapshot(&plain)
	if err != nil {
		return nil, err
	}
	if snap.User.ID != user.ID {
		return nil, fmt.Errorf("snapshot belongs to another user")
	}

	if err := s.session.Overwrite(snap.UserData()); err != nil {
		return nil, fmt.Errorf("applying snapshot: %w", err)
	}
	s.logger.Info("backup pulled", "user_id", user.ID, "version", version)
	return snap, nil
}

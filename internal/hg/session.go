package hg

import (
	"fmt"
	"slices"
	"sync"
	"time"
)

// SessionState is the lifecycle state of a SessionManager.
type SessionState int

const (
	StateNoUser SessionState = iota
	StateLoading
	StateReady
)

func (s SessionState) String() string {
	switch s {
	case StateNoUser:
		return "no-user"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	default:
		return fmt.Sprintf("SessionState(%d)", int(s))
	}
}

// SessionManager owns the logged-in user and that user's in-memory data.
//
// Data is only written back while the manager is Ready, and only under the
// key of the user whose data was loaded. Every login and logout bumps a
// generation counter; a load that started under an older generation is
// discarded when it tries to apply.
type SessionManager struct {
	mu         sync.Mutex
	gateway    *Gateway
	idgen      IDGenerator
	clock      Clock
	logger     Logger
	recorder   Recorder
	state      SessionState
	user       *User
	data       *UserData
	generation uint64
}

// NewSessionManager creates a manager in the NoUser state. Call Restore to
// pick up a persisted session.
func NewSessionManager(gateway *Gateway, idgen IDGenerator, clock Clock, logger Logger, recorder Recorder) *SessionManager {
	if logger == nil {
		logger = NewNopLogger()
	}
	if recorder == nil {
		recorder = NopRecorder{}
	}
	return &SessionManager{
		gateway:  gateway,
		idgen:    idgen,
		clock:    clock,
		logger:   logger,
		recorder: recorder,
		state:    StateNoUser,
	}
}

// State returns the current lifecycle state.
func (m *SessionManager) State() SessionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// CurrentUser returns the logged-in user, if any. The user is set as soon as
// a login begins, before its data is Ready.
func (m *SessionManager) CurrentUser() (User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return User{}, false
	}
	return *m.user, true
}

// Restore logs back in as the persisted session user. Without one (or with
// an unreadable one) the manager stays in NoUser.
func (m *SessionManager) Restore() error {
	var u User
	if !m.gateway.loadKey(m.gateway.SessionKey(), "session", &u) || u.ID == "" {
		return nil
	}
	m.logger.Debug("restoring session", "user_id", u.ID)
	return m.Login(u)
}

// Login switches to user and loads all of their collections.
func (m *SessionManager) Login(user User) error {
	p := m.BeginLogin(user)
	p.Load()
	return p.Apply()
}

// BeginLogin persists user as the session identity, drops any in-memory data
// and enters Loading. Nothing is saved for the user until the returned load
// is applied.
func (m *SessionManager) BeginLogin(user User) *PendingLoad {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.generation++
	m.user = &user
	m.data = nil
	m.state = StateLoading
	_ = m.gateway.saveKey(m.gateway.SessionKey(), "session", user)

	m.logger.Info("session started", "user_id", user.ID)
	return &PendingLoad{m: m, user: user, generation: m.generation}
}

// Logout clears the persisted session and discards all in-memory data.
// Valid from any state.
func (m *SessionManager) Logout() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.generation++
	if m.user != nil {
		m.logger.Info("session ended", "user_id", m.user.ID)
	}
	m.user = nil
	m.data = nil
	m.state = StateNoUser
	m.gateway.deleteKey(m.gateway.SessionKey())
}

// Snapshot returns a deep copy of the loaded data.
func (m *SessionManager) Snapshot() (*UserData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.readyLocked(); err != nil {
		return nil, err
	}
	return m.data.clone(), nil
}

// PendingLoad is a load started by BeginLogin. Load does the reads without
// touching session state; Apply commits the result if no other login or
// logout happened in between.
type PendingLoad struct {
	m          *SessionManager
	user       User
	generation uint64
	data       *UserData
}

// User returns the user being loaded.
func (p *PendingLoad) User() User { return p.user }

// Load reads the user's four collections. Missing or unreadable collections
// fall back to their defaults.
func (p *PendingLoad) Load() {
	p.data = p.m.readUserData(p.user)
}

// Apply makes the loaded data current and enters Ready. It returns
// ErrStaleLoad, leaving the session untouched, if the load was superseded.
func (p *PendingLoad) Apply() error {
	if p.data == nil {
		p.Load()
	}

	m := p.m
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.generation != p.generation || m.state != StateLoading {
		m.recorder.LoadDiscarded()
		m.logger.Warn("discarding superseded load", "user_id", p.user.ID)
		return ErrStaleLoad
	}
	m.data = p.data
	m.state = StateReady
	m.logger.Debug("user data loaded", "user_id", p.user.ID,
		"foods", len(p.data.Foods), "exercises", len(p.data.Exercises), "water_days", len(p.data.Water))
	return nil
}

func (m *SessionManager) readUserData(user User) *UserData {
	data := emptyUserData(user.Name)

	var profile UserProfile
	if m.gateway.Load(user.ID, CollectionProfile, &profile) {
		data.Profile = normalizeProfile(profile, user.Name)
	}
	var foods []FoodItem
	if m.gateway.Load(user.ID, CollectionFoods, &foods) {
		data.Foods = normalizeFoods(foods, m.idgen)
	}
	var exercises []ExerciseItem
	if m.gateway.Load(user.ID, CollectionExercises, &exercises) {
		data.Exercises = normalizeExercises(exercises, m.idgen)
	}
	var water WaterLog
	if m.gateway.Load(user.ID, CollectionWater, &water) {
		data.Water = normalizeWater(water)
	}
	return data
}

func (m *SessionManager) readyLocked() error {
	switch {
	case m.user == nil:
		return ErrNoUser
	case m.state != StateReady || m.data == nil:
		return ErrNotReady
	}
	return nil
}

// mutate applies fn to the loaded data and, if fn reports a change, writes
// collection c back under the current user's key. The lock is held across
// both so no login can slip in between the change and its save.
func (m *SessionManager) mutate(c Collection, fn func(d *UserData) (bool, error)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.readyLocked(); err != nil {
		return err
	}
	changed, err := fn(m.data)
	if err != nil || !changed {
		return err
	}
	m.persistLocked(c)
	return nil
}

// persistLocked saves one collection. Write failures are logged by the
// gateway and otherwise ignored.
func (m *SessionManager) persistLocked(c Collection) {
	var value any
	switch c {
	case CollectionProfile:
		value = m.data.Profile
	case CollectionFoods:
		value = m.data.Foods
	case CollectionExercises:
		value = m.data.Exercises
	case CollectionWater:
		value = m.data.Water
	}
	_ = m.gateway.Save(m.user.ID, c, value)
}

// UpdateProfile replaces the profile. Invalid profiles are rejected.
func (m *SessionManager) UpdateProfile(p UserProfile) error {
	if err := ValidateProfile(p); err != nil {
		return err
	}
	return m.mutate(CollectionProfile, func(d *UserData) (bool, error) {
		d.Profile = p
		return true, nil
	})
}

// AddFoods appends items in order. Items without an ID, or whose ID is
// already used by this user, get a fresh one. Either all items are added or,
// on a validation error, none are.
func (m *SessionManager) AddFoods(items ...FoodItem) ([]FoodItem, error) {
	var added []FoodItem
	err := m.mutate(CollectionFoods, func(d *UserData) (bool, error) {
		used := make(map[string]bool, len(d.Foods)+len(items))
		for _, f := range d.Foods {
			used[f.ID] = true
		}
		now := m.clock.Now()
		batch := make([]FoodItem, 0, len(items))
		for _, f := range items {
			if f.ID == "" || used[f.ID] {
				f.ID = m.idgen.New()
			}
			used[f.ID] = true
			if f.LoggedAt.IsZero() {
				f.LoggedAt = now
			}
			if err := validateFood(f); err != nil {
				return false, err
			}
			batch = append(batch, f)
		}
		if len(batch) == 0 {
			return false, nil
		}
		d.Foods = append(d.Foods, batch...)
		added = batch
		return true, nil
	})
	return added, err
}

// UpdateFood replaces the food with item.ID. A missing ID is silently
// ignored: edits are only ever offered for listed entries.
func (m *SessionManager) UpdateFood(item FoodItem) error {
	return m.mutate(CollectionFoods, func(d *UserData) (bool, error) {
		i := slices.IndexFunc(d.Foods, func(f FoodItem) bool { return f.ID == item.ID })
		if i < 0 {
			return false, nil
		}
		if item.LoggedAt.IsZero() {
			item.LoggedAt = d.Foods[i].LoggedAt
		}
		if err := validateFood(item); err != nil {
			return false, err
		}
		d.Foods[i] = item
		return true, nil
	})
}

// DeleteFood removes the food with id. Missing IDs are a no-op.
func (m *SessionManager) DeleteFood(id string) error {
	return m.mutate(CollectionFoods, func(d *UserData) (bool, error) {
		n := len(d.Foods)
		d.Foods = slices.DeleteFunc(d.Foods, func(f FoodItem) bool { return f.ID == id })
		return len(d.Foods) != n, nil
	})
}

// AddExercise appends an exercise with a fresh ID.
func (m *SessionManager) AddExercise(item ExerciseItem) (ExerciseItem, error) {
	err := m.mutate(CollectionExercises, func(d *UserData) (bool, error) {
		item.ID = m.idgen.New()
		if item.LoggedAt.IsZero() {
			item.LoggedAt = m.clock.Now()
		}
		if err := validateExercise(item); err != nil {
			return false, err
		}
		d.Exercises = append(d.Exercises, item)
		return true, nil
	})
	return item, err
}

// DeleteExercise removes the exercise with id. Missing IDs are a no-op.
func (m *SessionManager) DeleteExercise(id string) error {
	return m.mutate(CollectionExercises, func(d *UserData) (bool, error) {
		n := len(d.Exercises)
		d.Exercises = slices.DeleteFunc(d.Exercises, func(e ExerciseItem) bool { return e.ID == id })
		return len(d.Exercises) != n, nil
	})
}

// AdjustWater adds delta milliliters to date's total, never going below zero,
// and returns the new total.
func (m *SessionManager) AdjustWater(delta int, date time.Time) (int, error) {
	key := DateKey(date)
	var total int
	err := m.mutate(CollectionWater, func(d *UserData) (bool, error) {
		total = max(0, d.Water[key]+delta)
		d.Water[key] = total
		return true, nil
	})
	return total, err
}

// Overwrite replaces all four collections of the current user with data,
// writes them, and reloads the user from storage.
func (m *SessionManager) Overwrite(data *UserData) error {
	m.mu.Lock()
	if err := m.readyLocked(); err != nil {
		m.mu.Unlock()
		return err
	}
	user := *m.user
	m.data = &UserData{
		Profile:   normalizeProfile(data.Profile, user.Name),
		Foods:     normalizeFoods(data.Foods, m.idgen),
		Exercises: normalizeExercises(data.Exercises, m.idgen),
		Water:     normalizeWater(data.Water),
	}
	for _, c := range Collections {
		m.persistLocked(c)
	}
	m.mu.Unlock()

	return m.Login(user)
}

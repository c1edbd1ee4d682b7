package hg

import (
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"
)

// snapshotFormat is bumped when the Snapshot layout changes incompatibly.
const snapshotFormat = 1

// Snapshot is the exported form of one user's data.
type Snapshot struct {
	Format     int            `yaml:"format"`
	ExportedAt time.Time      `yaml:"exported_at"`
	User       User           `yaml:"user"`
	Profile    UserProfile    `yaml:"profile"`
	Foods      []FoodItem     `yaml:"foods"`
	Exercises  []ExerciseItem `yaml:"exercises"`
	Water      WaterLog       `yaml:"water"`
}

// NewSnapshot captures data for user at t.
func NewSnapshot(user User, data *UserData, t time.Time) *Snapshot {
	return &Snapshot{
		Format:     snapshotFormat,
		ExportedAt: t.UTC(),
		User:       user,
		Profile:    data.Profile,
		Foods:      data.Foods,
		Exercises:  data.Exercises,
		Water:      data.Water,
	}
}

// UserData returns the snapshot's collections.
func (s *Snapshot) UserData() *UserData {
	return &UserData{
		Profile:   s.Profile,
		Foods:     s.Foods,
		Exercises: s.Exercises,
		Water:     s.Water,
	}
}

// EncodeSnapshot writes s as YAML.
func EncodeSnapshot(w io.Writer, s *Snapshot) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	return enc.Close()
}

// DecodeSnapshot reads a YAML snapshot and checks its format.
func DecodeSnapshot(r io.Reader) (*Snapshot, error) {
	var s Snapshot
	if err := yaml.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	if s.Format != snapshotFormat {
		return nil, fmt.Errorf("unsupported snapshot format %d", s.Format)
	}
	if s.User.ID == "" {
		return nil, fmt.Errorf("snapshot has no user")
	}
	return &s, nil
}

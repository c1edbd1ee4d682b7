package hg

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidItem wraps validation failures for foods and exercises.
var ErrInvalidItem = errors.New("invalid item")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// JSON cannot encode NaN or Inf.
	if err := v.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
		f := fl.Field().Float()
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	}); err != nil {
		panic(err)
	}
	return v
}

// ValidateProfile checks a profile before it replaces the stored one.
func ValidateProfile(p UserProfile) error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidProfile, describe(err))
	}
	return nil
}

func validateFood(f FoodItem) error {
	if err := validate.Struct(f); err != nil {
		return fmt.Errorf("%w: food %q: %s", ErrInvalidItem, f.Name, describe(err))
	}
	return nil
}

func validateExercise(e ExerciseItem) error {
	if err := validate.Struct(e); err != nil {
		return fmt.Errorf("%w: exercise %q: %s", ErrInvalidItem, e.Type, describe(err))
	}
	return nil
}

// describe turns validator errors into "field failed tag" phrases.
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			parts = append(parts, fmt.Sprintf("%s must satisfy %s", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(parts, ", ")
}

// normalizeProfile resets every field that fails validation to its default.
// An empty name falls back to the user's display name.
func normalizeProfile(p UserProfile, name string) UserProfile {
	def := DefaultProfile(name)
	if strings.TrimSpace(p.Name) == "" {
		p.Name = name
	}

	var verrs validator.ValidationErrors
	if !errors.As(validate.Struct(p), &verrs) {
		return p
	}
	for _, fe := range verrs {
		switch fe.StructField() {
		case "Age":
			p.Age = def.Age
		case "Gender":
			p.Gender = def.Gender
		case "Weight":
			p.Weight = def.Weight
		case "Height":
			p.Height = def.Height
		case "ActivityLevel":
			p.ActivityLevel = def.ActivityLevel
		case "TargetWeight":
			p.TargetWeight = def.TargetWeight
		}
	}
	return p
}

// normalizeFoods repairs stored foods: IDs are filled in and made unique,
// negative amounts clamp to zero. Order is preserved.
func normalizeFoods(items []FoodItem, idgen IDGenerator) []FoodItem {
	out := make([]FoodItem, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, f := range items {
		if f.ID == "" || seen[f.ID] {
			f.ID = idgen.New()
		}
		seen[f.ID] = true
		f.Calories = nonNegative(f.Calories)
		f.Protein = nonNegative(f.Protein)
		f.Carbs = nonNegative(f.Carbs)
		f.Fats = nonNegative(f.Fats)
		out = append(out, f)
	}
	return out
}

// normalizeExercises is normalizeFoods for exercises.
func normalizeExercises(items []ExerciseItem, idgen IDGenerator) []ExerciseItem {
	out := make([]ExerciseItem, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, e := range items {
		if e.ID == "" || seen[e.ID] {
			e.ID = idgen.New()
		}
		seen[e.ID] = true
		e.Duration = nonNegative(e.Duration)
		e.CaloriesBurned = nonNegative(e.CaloriesBurned)
		out = append(out, e)
	}
	return out
}

// normalizeWater drops entries whose key is not a date and clamps negatives.
func normalizeWater(log WaterLog) WaterLog {
	out := make(WaterLog, len(log))
	for date, ml := range log {
		if _, err := time.Parse(DateLayout, date); err != nil {
			continue
		}
		out[date] = max(ml, 0)
	}
	return out
}

func nonNegative(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

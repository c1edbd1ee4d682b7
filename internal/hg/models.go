package hg

import "time"

// Gender is the profile gender. Values match the stored JSON.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// ActivityLevel describes how active the user is on a typical week.
type ActivityLevel string

const (
	ActivitySedentary ActivityLevel = "sedentary"
	ActivityModerate  ActivityLevel = "moderate"
	ActivityActive    ActivityLevel = "active"
)

// Collection names one of the four per-user data sets.
type Collection string

const (
	CollectionProfile   Collection = "profile"
	CollectionFoods     Collection = "foods"
	CollectionExercises Collection = "exercises"
	CollectionWater     Collection = "water_logs"
)

// Collections lists every per-user collection in load order.
var Collections = []Collection{CollectionProfile, CollectionFoods, CollectionExercises, CollectionWater}

// User is a registered account. Created at signup, never mutated.
type User struct {
	ID    string `json:"id" yaml:"id" validate:"required"`
	Email string `json:"email" yaml:"email" validate:"required"`
	Name  string `json:"name" yaml:"name"`
}

// UserProfile holds the body metrics used for plans and BMI.
// Weight and TargetWeight are kilograms, Height is centimeters.
type UserProfile struct {
	Name          string        `json:"name" yaml:"name"`
	Age           int           `json:"age" yaml:"age" validate:"gt=0,lt=150"`
	Gender        Gender        `json:"gender" yaml:"gender" validate:"oneof=male female other"`
	Weight        float64       `json:"weight" yaml:"weight" validate:"finite,gt=0"`
	Height        float64       `json:"height" yaml:"height" validate:"finite,gt=0"`
	ActivityLevel ActivityLevel `json:"activityLevel" yaml:"activity_level" validate:"oneof=sedentary moderate active"`
	TargetWeight  float64       `json:"targetWeight" yaml:"target_weight" validate:"finite,gt=0"`
}

// DefaultProfile returns the profile a user gets before editing anything.
func DefaultProfile(name string) UserProfile {
	return UserProfile{
		Name:          name,
		Age:           25,
		Gender:        GenderMale,
		Weight:        70,
		Height:        170,
		ActivityLevel: ActivityModerate,
		TargetWeight:  65,
	}
}

// FoodItem is one logged food entry. Macros are grams.
type FoodItem struct {
	ID       string    `json:"id" yaml:"id" validate:"required"`
	Name     string    `json:"name" yaml:"name"`
	Calories float64   `json:"calories" yaml:"calories" validate:"finite,gte=0"`
	Protein  float64   `json:"protein" yaml:"protein" validate:"finite,gte=0"`
	Carbs    float64   `json:"carbs" yaml:"carbs" validate:"finite,gte=0"`
	Fats     float64   `json:"fats" yaml:"fats" validate:"finite,gte=0"`
	Portion  string    `json:"portion" yaml:"portion"`
	LoggedAt time.Time `json:"loggedAt,omitzero" yaml:"logged_at,omitempty"`
}

// ExerciseItem is one logged workout. Duration is minutes.
type ExerciseItem struct {
	ID             string    `json:"id" yaml:"id" validate:"required"`
	Type           string    `json:"type" yaml:"type"`
	Duration       float64   `json:"duration" yaml:"duration" validate:"finite,gte=0"`
	CaloriesBurned float64   `json:"caloriesBurned" yaml:"calories_burned" validate:"finite,gte=0"`
	LoggedAt       time.Time `json:"loggedAt,omitzero" yaml:"logged_at,omitempty"`
}

// WaterLog maps a local calendar date (YYYY-MM-DD) to milliliters drunk that day.
type WaterLog map[string]int

// DateLayout is the key format of WaterLog.
const DateLayout = "2006-01-02"

// DateKey returns the WaterLog key for t in t's location.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// AnalyzedFood is a food recognized by the advisor. It has no ID until the
// caller accepts it into the log.
type AnalyzedFood struct {
	Name     string  `json:"name"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fats     float64 `json:"fats"`
	Portion  string  `json:"portion"`
}

// PlannedMeal is one meal slot of a DietPlan.
type PlannedMeal struct {
	Time           string   `json:"time"`
	Label          string   `json:"label"`
	Suggestions    []string `json:"suggestions"`
	ApproxCalories float64  `json:"approxCalories"`
}

// DietPlan is the advisor's daily plan for a profile.
type DietPlan struct {
	DailyCalories float64       `json:"dailyCalories"`
	Meals         []PlannedMeal `json:"meals"`
	Advice        []string      `json:"advice"`
}

// UserData is everything stored for one user.
type UserData struct {
	Profile   UserProfile
	Foods     []FoodItem
	Exercises []ExerciseItem
	Water     WaterLog
}

// clone returns a deep copy so callers can't reach into session state.
func (d *UserData) clone() *UserData {
	out := &UserData{
		Profile:   d.Profile,
		Foods:     append([]FoodItem(nil), d.Foods...),
		Exercises: append([]ExerciseItem(nil), d.Exercises...),
		Water:     make(WaterLog, len(d.Water)),
	}
	for k, v := range d.Water {
		out.Water[k] = v
	}
	return out
}

// emptyUserData returns the defaults used when nothing is stored.
func emptyUserData(name string) *UserData {
	return &UserData{
		Profile:   DefaultProfile(name),
		Foods:     []FoodItem{},
		Exercises: []ExerciseItem{},
		Water:     WaterLog{},
	}
}

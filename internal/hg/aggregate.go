package hg

import (
	"errors"
	"time"
)

const (
	// DefaultCalorieTarget is the daily intake goal in kcal.
	DefaultCalorieTarget = 2000.0
	// DefaultWaterGoal is the daily water goal in ml.
	DefaultWaterGoal = 2500
	// DefaultHistoryDays is the length of the water history window.
	DefaultHistoryDays = 7
)

// TodayLabel labels the last entry of a water history.
const TodayLabel = "Today"

// Macros are summed grams of protein, carbs and fats.
type Macros struct {
	Protein float64
	Carbs   float64
	Fats    float64
}

// WaterDay is one bar of the water history.
type WaterDay struct {
	Label  string
	Date   string
	Amount int
}

// TotalCaloriesIn sums calories over foods.
func TotalCaloriesIn(foods []FoodItem) float64 {
	var total float64
	for _, f := range foods {
		total += f.Calories
	}
	return total
}

// TotalCaloriesOut sums calories burned over exercises.
func TotalCaloriesOut(exercises []ExerciseItem) float64 {
	var total float64
	for _, e := range exercises {
		total += e.CaloriesBurned
	}
	return total
}

// NetCalories is intake minus burn.
func NetCalories(foods []FoodItem, exercises []ExerciseItem) float64 {
	return TotalCaloriesIn(foods) - TotalCaloriesOut(exercises)
}

// MacroTotals sums each macro over foods.
func MacroTotals(foods []FoodItem) Macros {
	var m Macros
	for _, f := range foods {
		m.Protein += f.Protein
		m.Carbs += f.Carbs
		m.Fats += f.Fats
	}
	return m
}

// CalorieProgress is totalIn as a percentage of target, capped at 100.
func CalorieProgress(totalIn, target float64) float64 {
	return percentOf(totalIn, target)
}

// WaterProgress is amount as a percentage of goal, capped at 100.
func WaterProgress(amount, goal int) float64 {
	return percentOf(float64(amount), float64(goal))
}

func percentOf(v, target float64) float64 {
	if target <= 0 {
		return 0
	}
	return min(v/target*100, 100)
}

// WaterOn returns the amount logged for the day containing t.
func WaterOn(log WaterLog, t time.Time) int {
	return log[DateKey(t)]
}

// WaterHistory returns exactly days entries for the trailing window ending
// at ref (inclusive), oldest first. Labels are short weekday names except the
// last, which is "Today". Missing days read as zero.
func WaterHistory(log WaterLog, ref time.Time, days int) []WaterDay {
	if days <= 0 {
		return []WaterDay{}
	}
	history := make([]WaterDay, 0, days)
	for i := days - 1; i >= 0; i-- {
		d := ref.AddDate(0, 0, -i)
		label := d.Format("Mon")
		if i == 0 {
			label = TodayLabel
		}
		key := DateKey(d)
		history = append(history, WaterDay{Label: label, Date: key, Amount: log[key]})
	}
	return history
}

// BMI computes body-mass index from height in cm and weight in kg.
func BMI(heightCm, weightKg float64) (float64, error) {
	if heightCm <= 0 || weightKg <= 0 {
		return 0, errors.New("height and weight must be positive")
	}
	if heightCm < 50 || heightCm > 250 || weightKg < 10 || weightKg > 400 {
		return 0, errors.New("height/weight out of plausible range")
	}
	h := heightCm / 100.0
	return weightKg / (h * h), nil
}

// BMICategory names the WHO range bmi falls into.
func BMICategory(bmi float64) string {
	switch {
	case bmi < 18.5:
		return "Underweight"
	case bmi < 25.0:
		return "Normal weight"
	case bmi < 30.0:
		return "Overweight"
	case bmi < 35.0:
		return "Obesity class I"
	case bmi < 40.0:
		return "Obesity class II"
	default:
		return "Obesity class III"
	}
}

// Goals are the targets a dashboard measures progress against.
type Goals struct {
	CalorieTarget float64
	WaterGoal     int
	HistoryDays   int
}

// DefaultGoals returns the built-in targets.
func DefaultGoals() Goals {
	return Goals{
		CalorieTarget: DefaultCalorieTarget,
		WaterGoal:     DefaultWaterGoal,
		HistoryDays:   DefaultHistoryDays,
	}
}

// Dashboard is every aggregate shown on the main screen.
type Dashboard struct {
	Profile         UserProfile
	Foods           []FoodItem
	Exercises       []ExerciseItem
	CaloriesIn      float64
	CaloriesOut     float64
	NetCalories     float64
	CalorieTarget   float64
	CalorieProgress float64
	Macros          Macros
	WaterToday      int
	WaterGoal       int
	WaterProgress   float64
	WaterHistory    []WaterDay
	BMI             float64 // zero when the profile has no plausible height/weight
	BMICategory     string
}

// Summarize derives a Dashboard from a data snapshot as of ref.
// Zero-valued goals fall back to the defaults.
func Summarize(data *UserData, ref time.Time, goals Goals) Dashboard {
	def := DefaultGoals()
	if goals.CalorieTarget <= 0 {
		goals.CalorieTarget = def.CalorieTarget
	}
	if goals.WaterGoal <= 0 {
		goals.WaterGoal = def.WaterGoal
	}
	if goals.HistoryDays <= 0 {
		goals.HistoryDays = def.HistoryDays
	}

	in := TotalCaloriesIn(data.Foods)
	out := TotalCaloriesOut(data.Exercises)
	today := WaterOn(data.Water, ref)

	d := Dashboard{
		Profile:         data.Profile,
		Foods:           data.Foods,
		Exercises:       data.Exercises,
		CaloriesIn:      in,
		CaloriesOut:     out,
		NetCalories:     in - out,
		CalorieTarget:   goals.CalorieTarget,
		CalorieProgress: CalorieProgress(in, goals.CalorieTarget),
		Macros:          MacroTotals(data.Foods),
		WaterToday:      today,
		WaterGoal:       goals.WaterGoal,
		WaterProgress:   WaterProgress(today, goals.WaterGoal),
		WaterHistory:    WaterHistory(data.Water, ref, goals.HistoryDays),
	}
	if bmi, err := BMI(data.Profile.Height, data.Profile.Weight); err == nil {
		d.BMI = bmi
		d.BMICategory = BMICategory(bmi)
	}
	return d
}

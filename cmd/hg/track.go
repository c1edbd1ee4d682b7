package main

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strconv"

	"hg-go/internal/app"
	"hg-go/internal/hg"

	"github.com/spf13/cobra"
)

// profile command
var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "View or edit your profile",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show your profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "ShowProfile", func(_ context.Context, a *app.HGApp) error {
			data, err := a.Session().Snapshot()
			if err != nil {
				return err
			}
			p := data.Profile
			fmt.Printf("Name:     %s\n", p.Name)
			fmt.Printf("Age:      %d\n", p.Age)
			fmt.Printf("Gender:   %s\n", p.Gender)
			fmt.Printf("Weight:   %g kg\n", p.Weight)
			fmt.Printf("Height:   %g cm\n", p.Height)
			fmt.Printf("Target:   %g kg\n", p.TargetWeight)
			fmt.Printf("Activity: %s\n", p.ActivityLevel)
			return nil
		})
	},
}

var profileSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update profile fields",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "UpdateProfile", func(_ context.Context, a *app.HGApp) error {
			data, err := a.Session().Snapshot()
			if err != nil {
				return err
			}
			p := data.Profile
			f := cmd.Flags()
			if f.Changed("name") {
				p.Name, _ = f.GetString("name")
			}
			if f.Changed("age") {
				p.Age, _ = f.GetInt("age")
			}
			if f.Changed("gender") {
				g, _ := f.GetString("gender")
				p.Gender = hg.Gender(g)
			}
			if f.Changed("weight") {
				p.Weight, _ = f.GetFloat64("weight")
			}
			if f.Changed("height") {
				p.Height, _ = f.GetFloat64("height")
			}
			if f.Changed("target") {
				p.TargetWeight, _ = f.GetFloat64("target")
			}
			if f.Changed("activity") {
				l, _ := f.GetString("activity")
				p.ActivityLevel = hg.ActivityLevel(l)
			}
			if err := a.Session().UpdateProfile(p); err != nil {
				return err
			}
			fmt.Println("Profile updated.")
			return nil
		})
	},
}

// food command
var foodCmd = &cobra.Command{
	Use:   "food",
	Short: "Manage logged food",
}

var foodAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Log a food",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "AddFood", func(_ context.Context, a *app.HGApp) error {
			item := hg.FoodItem{Name: args[0]}
			applyFoodFlags(cmd, &item)
			added, err := a.Session().AddFoods(item)
			if err != nil {
				return err
			}
			for _, f := range added {
				fmt.Printf("Logged %s (%g kcal)  %s\n", f.Name, f.Calories, f.ID)
			}
			return nil
		})
	},
}

var foodEditCmd = &cobra.Command{
	Use:   "edit ID",
	Short: "Edit a logged food",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "EditFood", func(_ context.Context, a *app.HGApp) error {
			data, err := a.Session().Snapshot()
			if err != nil {
				return err
			}
			i := slices.IndexFunc(data.Foods, func(f hg.FoodItem) bool { return f.ID == args[0] })
			if i < 0 {
				return fmt.Errorf("no food with id %s", args[0])
			}
			item := data.Foods[i]
			if cmd.Flags().Changed("name") {
				item.Name, _ = cmd.Flags().GetString("name")
			}
			applyFoodFlags(cmd, &item)
			if err := a.Session().UpdateFood(item); err != nil {
				return err
			}
			fmt.Printf("Updated %s\n", item.Name)
			return nil
		})
	},
}

var foodRmCmd = &cobra.Command{
	Use:   "rm ID",
	Short: "Remove a logged food",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "DeleteFood", func(_ context.Context, a *app.HGApp) error {
			return a.Session().DeleteFood(args[0])
		})
	},
}

var foodLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List logged food",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "ListFood", func(_ context.Context, a *app.HGApp) error {
			data, err := a.Session().Snapshot()
			if err != nil {
				return err
			}
			if len(data.Foods) == 0 {
				fmt.Println("No food logged.")
				return nil
			}
			for _, f := range data.Foods {
				fmt.Printf("%s  %-24s %6g kcal  P%g C%g F%g  %s\n",
					f.ID, f.Name, f.Calories, f.Protein, f.Carbs, f.Fats, f.Portion)
			}
			return nil
		})
	},
}

func applyFoodFlags(cmd *cobra.Command, item *hg.FoodItem) {
	f := cmd.Flags()
	if f.Changed("calories") {
		item.Calories, _ = f.GetFloat64("calories")
	}
	if f.Changed("protein") {
		item.Protein, _ = f.GetFloat64("protein")
	}
	if f.Changed("carbs") {
		item.Carbs, _ = f.GetFloat64("carbs")
	}
	if f.Changed("fats") {
		item.Fats, _ = f.GetFloat64("fats")
	}
	if f.Changed("portion") {
		item.Portion, _ = f.GetString("portion")
	}
}

func addFoodFlags(cmd *cobra.Command) {
	cmd.Flags().Float64("calories", 0, "Calories (kcal)")
	cmd.Flags().Float64("protein", 0, "Protein (g)")
	cmd.Flags().Float64("carbs", 0, "Carbohydrates (g)")
	cmd.Flags().Float64("fats", 0, "Fats (g)")
	cmd.Flags().String("portion", "", "Portion description")
}

// exercise command
var exerciseCmd = &cobra.Command{
	Use:   "exercise",
	Short: "Manage logged exercise",
}

var exerciseAddCmd = &cobra.Command{
	Use:   "add TYPE",
	Short: "Log an exercise",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		duration, _ := cmd.Flags().GetFloat64("duration")
		calories, _ := cmd.Flags().GetFloat64("calories")
		return withApp(cmd, "AddExercise", func(_ context.Context, a *app.HGApp) error {
			e, err := a.Session().AddExercise(hg.ExerciseItem{
				Type:           args[0],
				Duration:       duration,
				CaloriesBurned: calories,
			})
			if err != nil {
				return err
			}
			fmt.Printf("Logged %s (%g min, %g kcal)  %s\n", e.Type, e.Duration, e.CaloriesBurned, e.ID)
			return nil
		})
	},
}

var exerciseRmCmd = &cobra.Command{
	Use:   "rm ID",
	Short: "Remove a logged exercise",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "DeleteExercise", func(_ context.Context, a *app.HGApp) error {
			return a.Session().DeleteExercise(args[0])
		})
	},
}

// water command
var waterCmd = &cobra.Command{
	Use:   "water",
	Short: "Track water intake for today",
}

var waterAddCmd = &cobra.Command{
	Use:   "add ML",
	Short: "Add water (ml)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ml, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid amount %q: %w", args[0], err)
		}
		return withApp(cmd, "AddWater", func(_ context.Context, a *app.HGApp) error {
			total, err := a.AddWater(ml)
			if err != nil {
				return err
			}
			fmt.Printf("Water today: %d ml\n", total)
			return nil
		})
	},
}

var waterRemoveCmd = &cobra.Command{
	Use:   "remove ML",
	Short: "Remove water (ml)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ml, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid amount %q: %w", args[0], err)
		}
		return withApp(cmd, "RemoveWater", func(_ context.Context, a *app.HGApp) error {
			total, err := a.RemoveWater(ml)
			if err != nil {
				return err
			}
			fmt.Printf("Water today: %d ml\n", total)
			return nil
		})
	},
}

// dashboard command
var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show today's summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "Dashboard", func(_ context.Context, a *app.HGApp) error {
			user, err := a.Service().CurrentUser()
			if err != nil {
				return err
			}
			d, err := a.Dashboard()
			if err != nil {
				return err
			}
			r := newRenderer(os.Stdout)
			r.Dashboard(user, d)
			return nil
		})
	},
}

// scan command
var scanCmd = &cobra.Command{
	Use:   "scan IMAGE",
	Short: "Recognize food in a photo and log it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "ScanFood", func(ctx context.Context, a *app.HGApp) error {
			items, err := a.ScanImage(ctx, args[0])
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Println("No food recognized.")
				return nil
			}
			for _, f := range items {
				fmt.Printf("Logged %s (%g kcal, %s)  %s\n", f.Name, f.Calories, f.Portion, f.ID)
			}
			return nil
		})
	},
}

// plan command
var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Generate a diet plan for your profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "GeneratePlan", func(ctx context.Context, a *app.HGApp) error {
			plan, err := a.Service().GeneratePlan(ctx)
			if err != nil {
				return err
			}
			newRenderer(os.Stdout).Plan(plan)
			return nil
		})
	},
}

func init() {
	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileSetCmd)
	profileSetCmd.Flags().String("name", "", "Display name")
	profileSetCmd.Flags().Int("age", 0, "Age in years")
	profileSetCmd.Flags().String("gender", "", "male, female or other")
	profileSetCmd.Flags().Float64("weight", 0, "Weight (kg)")
	profileSetCmd.Flags().Float64("height", 0, "Height (cm)")
	profileSetCmd.Flags().Float64("target", 0, "Target weight (kg)")
	profileSetCmd.Flags().String("activity", "", "sedentary, moderate or active")

	foodCmd.AddCommand(foodAddCmd)
	foodCmd.AddCommand(foodEditCmd)
	foodCmd.AddCommand(foodRmCmd)
	foodCmd.AddCommand(foodLsCmd)
	addFoodFlags(foodAddCmd)
	addFoodFlags(foodEditCmd)
	foodEditCmd.Flags().String("name", "", "Food name")

	exerciseCmd.AddCommand(exerciseAddCmd)
	exerciseCmd.AddCommand(exerciseRmCmd)
	exerciseAddCmd.Flags().Float64("duration", 0, "Duration (minutes)")
	exerciseAddCmd.Flags().Float64("calories", 0, "Calories burned (kcal)")

	waterCmd.AddCommand(waterAddCmd)
	waterCmd.AddCommand(waterRemoveCmd)

	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(foodCmd)
	rootCmd.AddCommand(exerciseCmd)
	rootCmd.AddCommand(waterCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(planCmd)
}

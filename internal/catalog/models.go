// Package catalog manages the exercise library backing workouts and suggestions.
package catalog

// Exercise is a single exercise type, e.g. Squat, Bench Press, etc.
type Exercise struct {
	ID                    int      `json:"id"`
	Name                  string   `json:"name"`
	MuscleGroup           string   `json:"muscle_group"`
	SecondaryMuscleGroups []string `json:"secondary_muscle_groups"`
	DescriptionMarkdown   string   `json:"description_markdown"`
	Public                bool     `json:"public"`
}

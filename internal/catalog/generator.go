package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// exerciseGenerator fills in exercise details using the OpenAI API.
type exerciseGenerator struct {
	client       openai.Client
	muscleGroups []string
}

func newExerciseGenerator(openaiAPIKey string, muscleGroups []string) *exerciseGenerator {
	client := openai.NewClient(option.WithAPIKey(openaiAPIKey))
	return &exerciseGenerator{
		client:       client,
		muscleGroups: muscleGroups,
	}
}

// generatedExercise is the JSON shape the model is asked to produce.
type generatedExercise struct {
	Name                  string   `json:"name"`
	MuscleGroup           string   `json:"muscle_group"`
	SecondaryMuscleGroups []string `json:"secondary_muscle_groups"`
	DescriptionMarkdown   string   `json:"description_markdown"`
}

// Generate produces a described exercise for the given name.
func (eg *exerciseGenerator) Generate(ctx context.Context, name string) (Exercise, error) {
	if name == "" {
		return Exercise{}, errors.New("exercise name cannot be empty")
	}

	prompt := fmt.Sprintf(`Generate a detailed exercise description for "%s".

Respond with a single JSON object and nothing else, using this shape:
{
  "name": "...",
  "muscle_group": "...",
  "secondary_muscle_groups": ["..."],
  "description_markdown": "..."
}

The muscle_group and every secondary muscle group must be one of: %s.

The markdown description follows this exact structure:

## Instructions
[Provide 3-5 numbered steps explaining how to perform the exercise correctly]

## Common Mistakes
[List 3-4 common form errors as bullet points]

Important guidelines:
- Instructions should be clear, concise, and focus on proper form
- Use simple, direct language that beginners can understand
- Highlight safety considerations where relevant

The description should be comprehensive yet concise, totaling around 150-200 words.`,
		name, strings.Join(eg.muscleGroups, ", "))

	chat, err := eg.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{ //nolint:exhaustruct // only need to set a few fields.
		Model: openai.ChatModelGPT4o,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return Exercise{}, fmt.Errorf("chat completion: %w", err)
	}
	if len(chat.Choices) == 0 {
		return Exercise{}, errors.New("chat completion returned no choices")
	}

	var generated generatedExercise
	content := strings.TrimSpace(chat.Choices[0].Message.Content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	if err = json.Unmarshal([]byte(content), &generated); err != nil {
		return Exercise{}, fmt.Errorf("parse exercise response: %w", err)
	}

	if generated.Name == "" || generated.MuscleGroup == "" || generated.DescriptionMarkdown == "" {
		return Exercise{}, errors.New("generated exercise is missing required fields")
	}
	groups := slices.Concat([]string{generated.MuscleGroup}, generated.SecondaryMuscleGroups)
	if err = eg.validateMuscleGroups(groups); err != nil {
		return Exercise{}, fmt.Errorf("validate muscle groups: %w", err)
	}

	return Exercise{
		ID:                    0,
		Name:                  generated.Name,
		MuscleGroup:           generated.MuscleGroup,
		SecondaryMuscleGroups: generated.SecondaryMuscleGroups,
		DescriptionMarkdown:   generated.DescriptionMarkdown,
		Public:                false,
	}, nil
}

// validateMuscleGroups checks that all groups are in the allowed list.
func (eg *exerciseGenerator) validateMuscleGroups(groups []string) error {
	for _, group := range groups {
		if !slices.Contains(eg.muscleGroups, group) {
			return fmt.Errorf("invalid muscle group %q", group)
		}
	}
	return nil
}

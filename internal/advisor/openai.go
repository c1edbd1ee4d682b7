package advisor

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"hg-go/internal/hg"
)

// DefaultModel is used when the config names no model.
const DefaultModel = "gpt-4o-mini"

const analyzePrompt = "Analyze this food image. Return a JSON object with an \"items\" array of food items. " +
	"Each item has name (string), calories, protein, carbs and fats (numbers, grams for macros) and portion (string). " +
	"Focus on South Asian/Bengali food if detected."

const planSystemPrompt = "You are a nutrition assistant. Reply with a JSON object with dailyCalories (number), " +
	"meals (array of objects with time, label, suggestions (array of strings) and approxCalories) " +
	"and advice (array of strings)."

// OpenAIAdvisor implements hg.Advisor with an OpenAI-compatible chat API.
type OpenAIAdvisor struct {
	client *openai.Client
	model  string
	logger hg.Logger
}

var _ hg.Advisor = (*OpenAIAdvisor)(nil)

// NewOpenAIAdvisor creates an advisor. baseURL may be empty for the public API.
func NewOpenAIAdvisor(apiKey, model, baseURL string, logger hg.Logger) *OpenAIAdvisor {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = DefaultModel
	}
	if logger == nil {
		logger = hg.NewNopLogger()
	}
	return &OpenAIAdvisor{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		logger: logger,
	}
}

func (a *OpenAIAdvisor) Available() bool { return true }

// AnalyzeImage sends the image inline as a data URL and parses the items.
func (a *OpenAIAdvisor) AnalyzeImage(ctx context.Context, image []byte, mimeType string) ([]hg.AnalyzedFood, error) {
	if len(image) == 0 {
		return nil, &hg.AnalysisError{Err: errors.New("image is empty")}
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	dataURL := "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(image)

	content, err := a.complete(ctx, []openai.ChatCompletionMessage{
		{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{URL: dataURL, Detail: openai.ImageURLDetailAuto}},
				{Type: openai.ChatMessagePartTypeText, Text: analyzePrompt},
			},
		},
	})
	if err != nil {
		return nil, &hg.AnalysisError{Err: err}
	}

	items, err := parseAnalyzed(content)
	if err != nil {
		return nil, &hg.AnalysisError{Err: err}
	}
	a.logger.Debug("image analyzed", "model", a.model, "items", len(items))
	return items, nil
}

// GeneratePlan asks for a weight-loss plan tailored to profile.
func (a *OpenAIAdvisor) GeneratePlan(ctx context.Context, profile hg.UserProfile) (*hg.DietPlan, error) {
	content, err := a.complete(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: planSystemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: planPrompt(profile)},
	})
	if err != nil {
		return nil, &hg.PlanGenerationError{Err: err}
	}

	var plan hg.DietPlan
	if err := json.Unmarshal([]byte(content), &plan); err != nil {
		return nil, &hg.PlanGenerationError{Err: fmt.Errorf("decoding plan: %w", err)}
	}
	if plan.DailyCalories <= 0 && len(plan.Meals) == 0 {
		return nil, &hg.PlanGenerationError{Err: errors.New("model returned an empty plan")}
	}
	return &plan, nil
}

func (a *OpenAIAdvisor) complete(ctx context.Context, messages []openai.ChatCompletionMessage) (string, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    a.model,
		Messages: messages,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == 401 {
			return "", fmt.Errorf("%w: %s", hg.ErrCredentialMissing, apiErr.Message)
		}
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("model returned no choices")
	}
	a.logger.Debug("chat completion", "model", a.model, "finish_reason", resp.Choices[0].FinishReason)
	return resp.Choices[0].Message.Content, nil
}

func planPrompt(p hg.UserProfile) string {
	return fmt.Sprintf("Generate a weight loss diet plan for a %dy/o %s, weight: %gkg, target: %gkg, activity: %s.",
		p.Age, p.Gender, p.Weight, p.TargetWeight, p.ActivityLevel)
}

// parseAnalyzed accepts {"items":[...]} or a bare array. Items without a
// name are dropped.
func parseAnalyzed(content string) ([]hg.AnalyzedFood, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return []hg.AnalyzedFood{}, nil
	}

	var items []hg.AnalyzedFood
	if strings.HasPrefix(content, "[") {
		if err := json.Unmarshal([]byte(content), &items); err != nil {
			return nil, fmt.Errorf("decoding items: %w", err)
		}
	} else {
		var wrapped struct {
			Items []hg.AnalyzedFood `json:"items"`
		}
		if err := json.Unmarshal([]byte(content), &wrapped); err != nil {
			return nil, fmt.Errorf("decoding items: %w", err)
		}
		items = wrapped.Items
	}

	out := make([]hg.AnalyzedFood, 0, len(items))
	for _, it := range items {
		if strings.TrimSpace(it.Name) == "" {
			continue
		}
		out = append(out, it)
	}
	return out, nil
}

package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

type AIService struct {
	client *openai.Client
}

type GeneratedTask struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	MachineID   string `json:"machine_id"`
	Area        string `json:"area"`
}

func NewAIService(apiKey string) *AIService {
	return &AIService{
		client: openai.NewClient(apiKey),
	}
}

// GenerateWorkOrders drafts work orders for a reported problem using OpenAI GPT
func (s *AIService) GenerateWorkOrders(ctx context.Context, machineID, area, problem string) ([]GeneratedTask, error) {
	if s.client == nil {
		return nil, fmt.Errorf("OpenAI client not initialized")
	}

	prompt := fmt.Sprintf(`You are a maintenance planning assistant. Draft the work orders needed to resolve the reported problem.

Machine: %s
Area: %s
Problem:
%s

Return a JSON array of work orders in this exact shape:
[
  {
    "title": "short work order title",
    "description": "what needs to be done and why",
    "machine_id": "machine identifier, reuse the one above unless the work targets another machine",
    "area": "plant area, reuse the one above unless the work happens elsewhere"
  }
]

Rules:
- Return an empty array [] when the problem describes no actionable work
- Keep titles under 80 characters
- Return only the JSON array, no explanations`, machineID, area, problem)

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: openai.GPT4o,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: 0.3,
		},
	)

	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	content := resp.Choices[0].Message.Content

	var tasks []GeneratedTask
	if err := json.Unmarshal([]byte(content), &tasks); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w (response: %s)", err, content)
	}

	return tasks, nil
}

package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/laimis/stock-analysis-sub000/internal/service/commentary"
	"github.com/laimis/stock-analysis-sub000/internal/service/monitoring"
)

type Service struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

type Option func(service *Service)

func WithTemperature(temp float32) Option {
	return func(service *Service) {
		service.model.SetTemperature(temp)
	}
}

func WithModel(name string) Option {
	return func(service *Service) {
		service.model = service.client.GenerativeModel(name)
	}
}

func NewService(client *genai.Client, opts ...Option) commentary.Commentator {
	svc := &Service{
		client: client,
		model:  client.GenerativeModel("gemini-2.0-flash"),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

func (s *Service) Comment(ctx context.Context, alerts []monitoring.TriggeredAlert) (string, error) {
	resp, err := s.model.GenerateContent(ctx, genai.Text(buildPrompt(alerts)))
	if err != nil {
		return "", fmt.Errorf("generate commentary: %w", err)
	}
	return parseResponse(resp), nil
}

func buildPrompt(alerts []monitoring.TriggeredAlert) string {
	var sb strings.Builder
	sb.WriteString("You are a terse trading assistant. In at most three sentences, summarize what these alerts mean for the holder. No advice, no disclaimers.\n\n")
	for _, a := range alerts {
		sb.WriteString(fmt.Sprintf("- %s %s: %s\n", a.Ticker, a.Source.Title(), a.Description))
	}
	return sb.String()
}

func parseResponse(resp *genai.GenerateContentResponse) string {
	var resStr strings.Builder
	if resp.Candidates != nil && len(resp.Candidates) > 0 {
		for i, part := range resp.Candidates[0].Content.Parts {
			if part == nil {
				continue
			}
			if text, ok := part.(genai.Text); ok {
				if i > 0 {
					resStr.WriteString("\n")
				}
				resStr.WriteString(string(text))
			} else {
				return ""
			}
		}
	}
	return strings.TrimSpace(resStr.String())
}

package content

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// LLMConfig configures the OpenAI-compatible backend.
type LLMConfig struct {
	Endpoint string
	APIKey   string
	Model    string
	Timeout  time.Duration
}

// LLMGenerator implements Generator against an OpenAI-compatible chat
// completions API that returns strict JSON.
type LLMGenerator struct {
	config LLMConfig
	client *http.Client
	logger *zap.Logger
}

// NewLLMGenerator creates an LLM-backed generator.
func NewLLMGenerator(cfg LLMConfig, logger *zap.Logger) *LLMGenerator {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = "https://api.openai.com/v1"
	}
	return &LLMGenerator{
		config: cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// NextDailyMission implements Generator.
func (g *LLMGenerator) NextDailyMission(ctx context.Context, in MissionInput) (*GeneratedMission, error) {
	prompt := fmt.Sprintf(
		"Gere a próxima missão diária para a missão épica %q (rank %s, jogador nível %d) da meta %q. Última missão concluída: %q.",
		in.MissionName, in.Rank, in.PlayerLevel, in.GoalName, in.LastDailyName,
	)
	return g.generate(ctx, prompt)
}

// AdjustDailyMission implements Generator.
func (g *LLMGenerator) AdjustDailyMission(ctx context.Context, in AdjustInput) (*GeneratedMission, error) {
	encoded, err := json.Marshal(in.Mission)
	if err != nil {
		return nil, fmt.Errorf("encode mission: %w", err)
	}
	prompt := fmt.Sprintf(
		"Ajuste esta missão diária com base no feedback do jogador.\nMissão: %s\nFeedback: %q",
		encoded, in.Feedback,
	)
	return g.generate(ctx, prompt)
}

const systemPrompt = `Você é o mestre de jogo do Sistema de Vida. Responda SOMENTE com um objeto JSON no formato:
{"nextMissionName": string, "nextMissionDescription": string, "xp": int, "fragments": int, "learningResources": [string], "subTasks": [{"name": string, "target": number, "unit": string}]}`

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (g *LLMGenerator) generate(ctx context.Context, prompt string) (*GeneratedMission, error) {
	body, err := json.Marshal(chatRequest{
		Model: g.config.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.7,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		g.config.Endpoint+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.config.APIKey)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API error %d: %s", resp.StatusCode, string(respBody))
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(chat.Choices) == 0 {
		return nil, fmt.Errorf("empty response from provider")
	}

	return parseMission(chat.Choices[0].Message.Content)
}

// parseMission extracts the JSON object from the model output, tolerating
// markdown fences.
func parseMission(content string) (*GeneratedMission, error) {
	content = strings.TrimSpace(content)
	if start := strings.Index(content, "{"); start >= 0 {
		if end := strings.LastIndex(content, "}"); end > start {
			content = content[start : end+1]
		}
	}

	var m GeneratedMission
	if err := json.Unmarshal([]byte(content), &m); err != nil {
		return nil, fmt.Errorf("parse generated mission: %w", err)
	}
	if m.Name == "" || m.XP <= 0 {
		return nil, fmt.Errorf("generated mission missing required fields")
	}
	return &m, nil
}

package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/kickon/kickon/internal/config"
	"github.com/kickon/kickon/internal/domain"
	"github.com/kickon/kickon/internal/logger"
	"github.com/kickon/kickon/internal/prompts"
)

// ClassifierService turns article summaries into transfer probabilities via
// an LLM. Output is unreliable by nature, so extraction runs a bounded retry
// loop and degrades to "no signal" instead of failing the request.
type ClassifierService struct {
	client      *resty.Client
	model       string
	endpoint    string
	maxAttempts int
	baseTokens  int
	logger      *logger.Logger
}

// NewClassifierService creates a classifier service.
func NewClassifierService(cfg *config.LLMConfig, log *logger.Logger) *ClassifierService {
	if log == nil {
		log = logger.GetDefault()
	}

	client := resty.New()
	client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	client.SetHeader("Content-Type", "application/json")
	client.SetTimeout(60 * time.Second)

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}

	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	baseTokens := cfg.BaseTokens
	if baseTokens <= 0 {
		baseTokens = 256
	}

	return &ClassifierService{
		client:      client,
		model:       cfg.Model,
		endpoint:    baseURL + "/chat/completions",
		maxAttempts: maxAttempts,
		baseTokens:  baseTokens,
		logger:      log,
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float32       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// classifierOutput is the JSON contract the prompt demands. Pointers
// distinguish an absent field from a legitimate zero.
type classifierOutput struct {
	PerArticle *[]float64 `json:"per_article"`
	Overall    *float64   `json:"overall_probability"`
}

// Classify scores the articles and returns the combined signal. The token
// budget doubles on every retry so a truncated answer gets room to finish.
// When all attempts fail the zero bundle comes back; the ensemble treats
// that as no AI signal rather than an error.
func (s *ClassifierService) Classify(ctx context.Context, playerName string, articles []domain.Article) domain.ScoreBundle {
	if len(articles) == 0 {
		return domain.ScoreBundle{}
	}

	summaries := make([]string, len(articles))
	for i, a := range articles {
		summaries[i] = a.Summary
	}
	userPrompt := prompts.BuildClassifierPrompt(summaries)

	tokens := s.baseTokens
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		bundle, retryable := s.attempt(ctx, userPrompt, tokens, attempt)
		if bundle != nil {
			return *bundle
		}
		if !retryable {
			break
		}
		tokens *= 2
	}

	s.logger.WithFields(logger.Fields{
		logger.FieldPlayer: playerName,
		logger.FieldCount:  len(articles),
	}).Warn("Classifier exhausted all attempts, treating as no signal")
	return domain.ScoreBundle{}
}

// attempt runs one LLM call. It returns a bundle on success, or nil plus
// whether another attempt is worth making.
func (s *ClassifierService) attempt(ctx context.Context, userPrompt string, tokens, attempt int) (*domain.ScoreBundle, bool) {
	log := s.logger.WithFields(logger.Fields{
		logger.FieldAttempt: attempt,
		"max_tokens":        tokens,
	})

	req := chatRequest{
		Model: s.model,
		Messages: []chatMessage{
			{Role: "system", Content: prompts.ClassifierSystemPrompt},
			{Role: "user", Content: userPrompt},
		},
		MaxTokens:   tokens,
		Temperature: 0,
	}

	var resp chatResponse
	httpResp, err := s.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&resp).
		Post(s.endpoint)
	if err != nil {
		log.WithError(err).Warn("Classifier request failed")
		return nil, true
	}
	if httpResp.StatusCode() < 200 || httpResp.StatusCode() >= 300 {
		log.WithField("status", httpResp.StatusCode()).Warn("Classifier returned non-2xx status")
		return nil, true
	}
	if resp.Error != nil {
		log.WithField("api_error", resp.Error.Message).Warn("Classifier API error")
		return nil, true
	}
	if len(resp.Choices) == 0 {
		log.Warn("Classifier returned no choices")
		return nil, true
	}

	choice := resp.Choices[0]
	if choice.FinishReason != "stop" {
		// Usually "length": the answer was cut off, retry with more room.
		log.WithField("finish_reason", choice.FinishReason).Warn("Classifier answer did not finish naturally")
		return nil, true
	}

	var out classifierOutput
	if err := json.Unmarshal([]byte(strings.TrimSpace(choice.Message.Content)), &out); err != nil {
		log.WithError(err).Warn("Classifier answer is not valid JSON")
		return nil, true
	}
	if out.PerArticle == nil || out.Overall == nil {
		log.Warn("Classifier answer is missing required fields")
		return nil, true
	}

	perArticle := make([]float64, len(*out.PerArticle))
	for i, p := range *out.PerArticle {
		perArticle[i] = p / 100.0
	}

	return &domain.ScoreBundle{
		PerArticle: perArticle,
		Overall:    *out.Overall / 100.0,
	}, false
}

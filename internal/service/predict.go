package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kickon/kickon/internal/domain"
	"github.com/kickon/kickon/internal/logger"
	"github.com/kickon/kickon/internal/repository"
)

// ProfileLookup resolves a player by name.
type ProfileLookup interface {
	LookupProfile(ctx context.Context, playerName string) (domain.Profile, error)
}

// ModelScorer returns the base probability for one CSV feature row.
type ModelScorer interface {
	Score(ctx context.Context, featureCSV string) (float64, error)
}

// NewsSource returns recent article summaries about a player.
type NewsSource interface {
	FetchSummaries(ctx context.Context, playerName string) ([]domain.Article, error)
}

// ArticleClassifier scores article summaries into transfer probabilities.
type ArticleClassifier interface {
	Classify(ctx context.Context, playerName string, articles []domain.Article) domain.ScoreBundle
}

// Prediction is one scored request.
type Prediction struct {
	PlayerName string
	Chance     float64
	BaseProb   float64
	AIScore    float64
	PerArticle []float64
}

// PredictService resolves a player's profile and scores it through the
// shared ensemble. Profile and model failures propagate; a missing or
// failed news side only degrades the AI term to zero.
type PredictService struct {
	profiles ProfileLookup
	ensemble ensemble
	logs     *repository.PredictionRepository
	logger   *logger.Logger
}

// NewPredictService creates an ensemble scorer. weight is the coefficient w
// in w*base + (1-w)*ai. The prediction repository is optional.
func NewPredictService(
	profiles ProfileLookup,
	model ModelScorer,
	news NewsSource,
	classifier ArticleClassifier,
	weight float64,
	logs *repository.PredictionRepository,
	log *logger.Logger,
) *PredictService {
	if log == nil {
		log = logger.GetDefault()
	}
	return &PredictService{
		profiles: profiles,
		ensemble: ensemble{
			model:      model,
			news:       news,
			classifier: classifier,
			weight:     weight,
			logger:     log,
		},
		logs:   logs,
		logger: log,
	}
}

// Score produces the fused transfer probability for one player.
func (s *PredictService) Score(ctx context.Context, playerName string) (*Prediction, error) {
	start := time.Now()

	profile, err := s.profiles.LookupProfile(ctx, playerName)
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", playerName, err)
	}

	features := domain.FeatureVectorFromProfile(profile)
	chance, base, bundle, err := s.ensemble.score(ctx, playerName, features.CSV())
	if err != nil {
		return nil, fmt.Errorf("model score for %s: %w", playerName, err)
	}

	logger.With(logger.Fields{
		logger.FieldDurationMs: time.Since(start).Milliseconds(),
		logger.FieldPlayer:     playerName,
		"base_prob":            base,
		"ai_score":             bundle.Overall,
		"chance":               chance,
	}).Info(ctx, "Prediction scored")

	s.record(ctx, playerName, base, bundle.Overall, chance)

	return &Prediction{
		PlayerName: playerName,
		Chance:     chance,
		BaseProb:   base,
		AIScore:    bundle.Overall,
		PerArticle: bundle.PerArticle,
	}, nil
}

func (s *PredictService) record(ctx context.Context, playerName string, base, ai, chance float64) {
	if s.logs == nil {
		return
	}
	entry := &domain.PredictionLog{
		ID:         uuid.New().String(),
		PlayerName: playerName,
		BaseProb:   base,
		AIScore:    ai,
		Chance:     chance,
	}
	if err := s.logs.Create(ctx, entry); err != nil {
		s.logger.WithError(err).Warn("Failed to persist prediction log")
	}
}

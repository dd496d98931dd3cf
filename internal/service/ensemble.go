package service

import (
	"context"

	"github.com/kickon/kickon/internal/domain"
	"github.com/kickon/kickon/internal/logger"
)

// ensemble is the shared scoring core: the model's base probability fused
// with the news classifier's signal as w*base + (1-w)*ai. PredictService
// and BacktestService are thin callers that differ only in where the
// feature row comes from and in the configured weight.
type ensemble struct {
	model      ModelScorer
	news       NewsSource
	classifier ArticleClassifier
	weight     float64
	logger     *logger.Logger
}

// score fuses the two signals for one player. Model failures propagate; a
// failed or absent news side only zeroes the AI term.
func (e *ensemble) score(ctx context.Context, playerName, featureCSV string) (chance, base float64, bundle domain.ScoreBundle, err error) {
	base, err = e.model.Score(ctx, featureCSV)
	if err != nil {
		return 0, 0, domain.ScoreBundle{}, err
	}

	var articles []domain.Article
	if e.news != nil {
		articles, err = e.news.FetchSummaries(ctx, playerName)
		if err != nil {
			// News is an enrichment, not a dependency.
			e.logger.WithError(err).WithField(logger.FieldPlayer, playerName).Warn("News fetch failed, scoring without AI signal")
			articles = nil
		}
	}

	if e.classifier != nil {
		bundle = e.classifier.Classify(ctx, playerName, articles)
	}

	chance = e.weight*base + (1-e.weight)*bundle.Overall
	return chance, base, bundle, nil
}

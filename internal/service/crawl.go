package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kickon/kickon/internal/checkpoint"
	"github.com/kickon/kickon/internal/dataset"
	"github.com/kickon/kickon/internal/domain"
	"github.com/kickon/kickon/internal/fetcher"
	"github.com/kickon/kickon/internal/logger"
	"github.com/kickon/kickon/internal/repository"
)

// TeamSource enumerates the competition's teams and their squads.
type TeamSource interface {
	FetchTeams(ctx context.Context) ([]fetcher.Team, error)
	FetchSquad(ctx context.Context, teamURL string) ([]string, error)
	FetchPlayer(ctx context.Context, playerURL string) (domain.Profile, error)
}

// CrawlConfig holds the orchestrator's domain settings.
type CrawlConfig struct {
	BaseSeason   string
	TeamRankings map[string]int
}

// CrawlService walks one team per invocation, appending player rows to the
// team's dataset partition. Progress lives in the checkpoint store so a
// terminated run resumes exactly where it stopped. Every side effect lands
// before the checkpoint that acknowledges it; a crash can repeat work but
// never skip it.
type CrawlService struct {
	source     TeamSource
	checkpoint *checkpoint.Store
	writer     *dataset.Writer
	runs       *repository.RunRepository
	cfg        CrawlConfig
	logger     *logger.Logger
}

// NewCrawlService creates a crawl orchestrator. The run repository is
// optional; without one, run history is simply not recorded.
func NewCrawlService(
	source TeamSource,
	cpStore *checkpoint.Store,
	writer *dataset.Writer,
	runs *repository.RunRepository,
	cfg CrawlConfig,
	log *logger.Logger,
) *CrawlService {
	if log == nil {
		log = logger.GetDefault()
	}
	return &CrawlService{
		source:     source,
		checkpoint: cpStore,
		writer:     writer,
		runs:       runs,
		cfg:        cfg,
		logger:     log,
	}
}

// ErrCrawlDone reports that every team has already been processed.
var ErrCrawlDone = fmt.Errorf("all teams processed")

// CrawlResult summarizes one bounded invocation.
type CrawlResult struct {
	TeamIdx          int
	TeamName         string
	PlayersProcessed int
	Done             bool
}

// Run processes the checkpointed team and advances the checkpoint to the
// next one. It returns ErrCrawlDone when the team index has moved past the
// last team. Any player failure saves the current position and returns an
// error naming the failed squad index.
func (s *CrawlService) Run(ctx context.Context) (*CrawlResult, error) {
	start := time.Now()

	cp, err := s.checkpoint.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load checkpoint: %w", err)
	}

	teams, err := s.source.FetchTeams(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch teams: %w", err)
	}

	if cp.TeamIdx >= len(teams) {
		s.logger.WithField(logger.FieldCount, len(teams)).Info("All teams processed, nothing to do")
		return &CrawlResult{TeamIdx: cp.TeamIdx, Done: true}, ErrCrawlDone
	}

	team := teams[cp.TeamIdx]
	run := s.startRun(ctx, cp.TeamIdx, team.Name)
	log := s.logger.WithFields(logger.Fields{
		logger.FieldTeam: team.Name,
		"team_idx":       cp.TeamIdx,
	})
	log.Info("Crawling team")

	players, err := s.source.FetchSquad(ctx, team.URL)
	if err != nil {
		s.finishRun(ctx, run, domain.RunStatusFailed, 0, err.Error())
		return nil, fmt.Errorf("fetch squad for %s: %w", team.Name, err)
	}

	teamRank := s.cfg.TeamRankings[team.Name]
	processed := 0

	for idx, playerURL := range players {
		// Resume point: everything below player_idx is already written.
		if idx < cp.PlayerIdx {
			continue
		}

		profile, err := s.source.FetchPlayer(ctx, playerURL)
		if err == nil {
			rec := domain.NewPlayerRecord(profile, teamRank, s.cfg.BaseSeason)
			err = s.writer.AppendRecord(ctx, cp.TeamIdx, team.Name, rec)
		}
		if err != nil {
			// Keep the position so the next run retries this player.
			if saveErr := s.checkpoint.Save(ctx, domain.Checkpoint{TeamIdx: cp.TeamIdx, PlayerIdx: idx}); saveErr != nil {
				log.WithError(saveErr).Error("Failed to save checkpoint after player failure")
			}
			s.finishRun(ctx, run, domain.RunStatusFailed, processed, err.Error())
			return nil, fmt.Errorf("player %d of %s: %w", idx, team.Name, err)
		}

		if err := s.checkpoint.Save(ctx, domain.Checkpoint{TeamIdx: cp.TeamIdx, PlayerIdx: idx + 1}); err != nil {
			s.finishRun(ctx, run, domain.RunStatusFailed, processed, err.Error())
			return nil, fmt.Errorf("save checkpoint: %w", err)
		}
		processed++
		log.WithField(logger.FieldPlayer, profile.Name).Debug("Player row appended")
	}

	// Team finished, including the empty-squad case.
	if err := s.checkpoint.Save(ctx, domain.Checkpoint{TeamIdx: cp.TeamIdx + 1, PlayerIdx: 0}); err != nil {
		s.finishRun(ctx, run, domain.RunStatusFailed, processed, err.Error())
		return nil, fmt.Errorf("save checkpoint: %w", err)
	}

	done := cp.TeamIdx+1 >= len(teams)
	status := domain.RunStatusCompleted
	if done {
		status = domain.RunStatusDone
	}
	s.finishRun(ctx, run, status, processed, "")

	logger.With(logger.Fields{
		logger.FieldDurationMs: time.Since(start).Milliseconds(),
		logger.FieldCount:      processed,
		logger.FieldStatus:     string(status),
	}).Info(ctx, "Team crawl finished: %s", team.Name)

	return &CrawlResult{
		TeamIdx:          cp.TeamIdx,
		TeamName:         team.Name,
		PlayersProcessed: processed,
		Done:             done,
	}, nil
}

// Reset clears crawl progress back to the first team.
func (s *CrawlService) Reset(ctx context.Context) error {
	return s.checkpoint.Reset(ctx)
}

func (s *CrawlService) startRun(ctx context.Context, teamIdx int, teamName string) *domain.CrawlRun {
	if s.runs == nil {
		return nil
	}
	now := time.Now()
	run := &domain.CrawlRun{
		ID:        uuid.New().String(),
		TeamIdx:   teamIdx,
		TeamName:  teamName,
		Status:    domain.RunStatusRunning,
		StartedAt: &now,
	}
	if err := s.runs.Create(ctx, run); err != nil {
		s.logger.WithError(err).Warn("Failed to record crawl run start")
		return nil
	}
	return run
}

func (s *CrawlService) finishRun(ctx context.Context, run *domain.CrawlRun, status domain.RunStatus, processed int, errorLog string) {
	if s.runs == nil || run == nil {
		return
	}
	run.PlayersProcessed = processed
	if err := s.runs.Finish(ctx, run, status, errorLog); err != nil {
		s.logger.WithError(err).Warn("Failed to record crawl run finish")
	}
}

package domain

import "time"

// RunStatus represents the outcome of a crawl run.
// Values include RunStatusRunning, RunStatusCompleted, RunStatusDone, and RunStatusFailed.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed" // one team finished
	RunStatusDone      RunStatus = "done"      // all teams exhausted
	RunStatusFailed    RunStatus = "failed"
)

// CrawlRun records one bounded crawler invocation and its progress metadata.
type CrawlRun struct {
	ID               string     `gorm:"type:text;primaryKey" json:"id"`
	TeamIdx          int        `gorm:"default:0" json:"team_idx"`
	TeamName         string     `gorm:"type:text" json:"team_name"`
	PlayersProcessed int        `gorm:"default:0" json:"players_processed"`
	Status           RunStatus  `gorm:"default:running" json:"status"`
	ErrorLog         string     `json:"error_log,omitempty"`
	StartedAt        *time.Time `json:"started_at,omitempty"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// TableName returns the database table name for CrawlRun.
func (CrawlRun) TableName() string {
	return "crawl_runs"
}

// PredictionLog records one scored prediction request.
type PredictionLog struct {
	ID         string    `gorm:"type:text;primaryKey" json:"id"`
	PlayerName string    `gorm:"type:text;not null;index" json:"player_name"`
	BaseProb   float64   `json:"base_prob"`
	AIScore    float64   `json:"ai_score"`
	Chance     float64   `json:"chance"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName returns the database table name for PredictionLog.
func (PredictionLog) TableName() string {
	return "prediction_logs"
}

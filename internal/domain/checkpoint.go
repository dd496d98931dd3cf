package domain

// Checkpoint is the crawl resume position: the next unit of work to
// attempt. TeamIdx indexes the enumerated team list, PlayerIdx the squad of
// that team. The zero value is a fresh crawl.
type Checkpoint struct {
	TeamIdx   int `json:"team_idx"`
	PlayerIdx int `json:"player_idx"`
}

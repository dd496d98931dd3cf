package domain

// Article is one short news summary about a player, as returned by the
// news feed.
type Article struct {
	URL       string
	Summary   string
	Published string
}

// ScoreBundle maps a batch of articles 1:1 to per-article transfer
// probabilities plus one overall probability, all in [0,1]. The zero value
// means "no signal", not "no transfer".
type ScoreBundle struct {
	PerArticle []float64
	Overall    float64
}

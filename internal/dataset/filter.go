package dataset

import (
	"strconv"
	"strings"
	"time"
)

// FilterRowsJoinedBefore keeps only data rows whose joined_ts falls before
// the cutoff. Rows with a missing join date (joined_ts 0) are dropped, the
// header row is kept. Used to exclude players who arrived after the label
// reference window.
func FilterRowsJoinedBefore(rows [][]string, cutoff time.Time) [][]string {
	if len(rows) == 0 {
		return rows
	}

	joinedIdx := -1
	for i, col := range rows[0] {
		if strings.EqualFold(col, "joined_ts") {
			joinedIdx = i
			break
		}
	}
	if joinedIdx < 0 {
		return rows
	}

	out := [][]string{rows[0]}
	limit := cutoff.Unix()
	for _, row := range rows[1:] {
		if joinedIdx >= len(row) {
			continue
		}
		ts, err := strconv.ParseInt(row[joinedIdx], 10, 64)
		if err != nil || ts == 0 || ts >= limit {
			continue
		}
		out = append(out, row)
	}
	return out
}

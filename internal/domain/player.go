package domain

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// profileDateFormat is the date layout used on player profile pages
// (e.g. "Jan 20, 2025").
const profileDateFormat = "Jan 2, 2006"

// PositionUnknown is the sentinel for position labels outside the fixed
// enumeration. It is a valid model input, not an error.
const PositionUnknown = -1

// positionMapping maps broad position groups to the integers the model was
// trained on. Matching is by substring so "Centre-Forward - Attack" and
// "Attack" both resolve to the same code.
var positionMapping = []struct {
	label string
	code  int
}{
	{"goalkeeper", 0},
	{"defender", 1},
	{"midfield", 2},
	{"attack", 3},
}

// MapPosition resolves a raw position label to its model code.
// Unmapped or empty labels return PositionUnknown.
func MapPosition(label string) int {
	ls := strings.ToLower(label)
	for _, m := range positionMapping {
		if strings.Contains(ls, m.label) {
			return m.code
		}
	}
	return PositionUnknown
}

var marketValueExpr = regexp.MustCompile(`[^\d.]`)

// ParseMarketValue extracts the numeric part of a market value string such
// as "€25.00m". Empty or non-numeric input yields 0.
func ParseMarketValue(raw string) float64 {
	cleaned := marketValueExpr.ReplaceAllString(raw, "")
	if cleaned == "" {
		return 0
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return v
}

// TimestampSafe parses a profile date into a Unix timestamp. A missing
// value ("" or "-") or an unparsable date yields 0; absent dates are a
// normal branch, never an error.
func TimestampSafe(dateStr string) int64 {
	s := strings.TrimSpace(dateStr)
	if s == "" || s == "-" {
		return 0
	}
	t, err := time.Parse(profileDateFormat, s)
	if err != nil {
		return 0
	}
	return t.Unix()
}

// TransferLabel derives the binary training label: 1 when the player joined
// their current club after the end of the base season (June 30 of the
// season's closing year), 0 otherwise. baseSeason uses the "2023/24" form.
func TransferLabel(joined string, baseSeason string) int {
	joinedAt := TimestampSafe(joined)
	if joinedAt == 0 {
		return 0
	}
	end, ok := seasonEnd(baseSeason)
	if !ok {
		return 0
	}
	if joinedAt > end.Unix() {
		return 1
	}
	return 0
}

// seasonEnd resolves "2023/24" to June 30 of the closing year (2024-06-30).
func seasonEnd(baseSeason string) (time.Time, bool) {
	parts := strings.Split(baseSeason, "/")
	if len(parts) != 2 {
		return time.Time{}, false
	}
	yy, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(2000+yy, time.June, 30, 0, 0, 0, 0, time.UTC), true
}

// Profile holds the attributes extracted from one player profile page,
// before defaulting. String fields keep the page's raw text; numeric
// performance totals default to zero when the performance page is missing.
type Profile struct {
	Name            string
	Age             int
	Position        string
	MarketValue     string
	Joined          string
	ContractExpires string
	Appearances     int
	Goals           int
	Assists         int
	Rank            int
}

// PlayerRecord is one immutable row of the training dataset. All defaulting
// happens here, at construction; consumers never re-derive missing values.
type PlayerRecord struct {
	Transfer    int
	Name        string
	Age         int
	MarketValue float64
	Position    int
	JoinedTS    int64
	ExpiresTS   int64
	Appearances int
	Goals       int
	Assists     int
	TeamRank    int
}

// NewPlayerRecord builds a record from an extracted profile. teamRank is 0
// for teams outside the configured ranking table.
func NewPlayerRecord(p Profile, teamRank int, baseSeason string) PlayerRecord {
	return PlayerRecord{
		Transfer:    TransferLabel(p.Joined, baseSeason),
		Name:        p.Name,
		Age:         p.Age,
		MarketValue: ParseMarketValue(p.MarketValue),
		Position:    MapPosition(p.Position),
		JoinedTS:    TimestampSafe(p.Joined),
		ExpiresTS:   TimestampSafe(p.ContractExpires),
		Appearances: p.Appearances,
		Goals:       p.Goals,
		Assists:     p.Assists,
		TeamRank:    teamRank,
	}
}

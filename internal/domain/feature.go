package domain

import (
	"strconv"
	"strings"
)

// FeatureVector is the fixed 9-field input of the numeric transfer model.
// Field order matters: the model consumes the CSV encoding positionally.
type FeatureVector struct {
	Age         int
	MarketValue float64
	JoinedTS    int64
	ExpiresTS   int64
	Appearances int
	Goals       int
	Assists     int
	Rank        int
	Position    int
}

// FeatureVectorFromProfile builds the model input from a profile, applying
// the standard defaults (zero, PositionUnknown for unmapped positions).
func FeatureVectorFromProfile(p Profile) FeatureVector {
	return FeatureVector{
		Age:         p.Age,
		MarketValue: ParseMarketValue(p.MarketValue),
		JoinedTS:    TimestampSafe(p.Joined),
		ExpiresTS:   TimestampSafe(p.ContractExpires),
		Appearances: p.Appearances,
		Goals:       p.Goals,
		Assists:     p.Assists,
		Rank:        p.Rank,
		Position:    MapPosition(p.Position),
	}
}

// CSV encodes the vector in the model's wire order:
// age,market_value,joined_ts,expires_ts,appearances,goals,assists,rank,position.
func (v FeatureVector) CSV() string {
	fields := []string{
		strconv.Itoa(v.Age),
		strconv.FormatFloat(v.MarketValue, 'f', -1, 64),
		strconv.FormatInt(v.JoinedTS, 10),
		strconv.FormatInt(v.ExpiresTS, 10),
		strconv.Itoa(v.Appearances),
		strconv.Itoa(v.Goals),
		strconv.Itoa(v.Assists),
		strconv.Itoa(v.Rank),
		strconv.Itoa(v.Position),
	}
	return strings.Join(fields, ",")
}

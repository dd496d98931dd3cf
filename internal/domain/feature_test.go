package domain

import "testing"

func TestFeatureVectorCSV(t *testing.T) {
	v := FeatureVector{
		Age:         27,
		MarketValue: 25.5,
		JoinedTS:    1577836800,
		ExpiresTS:   1719705600,
		Appearances: 30,
		Goals:       12,
		Assists:     7,
		Rank:        4,
		Position:    3,
	}

	want := "27,25.5,1577836800,1719705600,30,12,7,4,3"
	if got := v.CSV(); got != want {
		t.Errorf("CSV() = %q, want %q", got, want)
	}
}

func TestFeatureVectorCSVZeroValue(t *testing.T) {
	var v FeatureVector
	want := "0,0,0,0,0,0,0,0,0"
	if got := v.CSV(); got != want {
		t.Errorf("CSV() = %q, want %q", got, want)
	}
}

func TestFeatureVectorFromProfile(t *testing.T) {
	p := Profile{
		Name:            "A. Player",
		Age:             24,
		Position:        "Defender - Left-Back",
		MarketValue:     "€10.00m",
		Joined:          "Jan 1, 2020",
		ContractExpires: "-",
		Appearances:     20,
		Goals:           1,
		Assists:         3,
		Rank:            9,
	}

	v := FeatureVectorFromProfile(p)
	if v.Position != 1 {
		t.Errorf("Position = %d, want 1", v.Position)
	}
	if v.MarketValue != 10.00 {
		t.Errorf("MarketValue = %v, want 10", v.MarketValue)
	}
	if v.ExpiresTS != 0 {
		t.Errorf("ExpiresTS = %d, want 0 for missing date", v.ExpiresTS)
	}
	if v.JoinedTS == 0 {
		t.Error("JoinedTS should be non-zero for a valid date")
	}
	if v.Rank != 9 {
		t.Errorf("Rank = %d, want 9", v.Rank)
	}
}

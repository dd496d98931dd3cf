package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

const teamTableHTML = `<html><body><table>
<tr><td class="hauptlink no-border-links"><a href="/fc-example/startseite/verein/1" title="FC Example">FC Example</a></td></tr>
<tr><td class="hauptlink no-border-links"><a href="/sc-sample/startseite/verein/2" title="SC Sample">SC Sample</a></td></tr>
</table></body></html>`

const squadHTML = `<html><body><table class="inline-table">
<tr><td class="hauptlink"><a href="/alice/profil/spieler/10">Alice</a></td></tr>
<tr><td class="hauptlink"><a href="/alice/profil/spieler/10">Alice again</a></td></tr>
<tr><td class="hauptlink"><a href="/bob/profil/spieler/20">Bob</a></td></tr>
<tr><td class="hauptlink"><a href="/fc-example/kader/verein/1">not a player</a></td></tr>
</table></body></html>`

const profileHTML = `<html><body>
<header class="data-header"><strong>Alice Example</strong></header>
<a class="data-header__market-value-wrapper">&euro;25.50m<p class="data-header__last-update">Last update: Jun 1, 2024</p></a>
<div class="info-table">
<span class="info-table__content">Date of birth/Age:</span>
<span class="info-table__content">Mar 5, 1997 (27)</span>
<span class="info-table__content">Position:</span>
<span class="info-table__content">Central Midfield</span>
<span class="info-table__content">Joined:</span>
<span class="info-table__content">Jul 1, 2021</span>
<span class="info-table__content">Contract expires:</span>
<span class="info-table__content">Jun 30, 2026</span>
</div>
</body></html>`

const performanceHTML = `<html><body><table class="items">
<tfoot><tr>
<td class="zentriert">30</td>
<td class="zentriert">12</td>
<td class="zentriert">7</td>
<td class="zentriert">-</td>
</tr></tfoot>
</table></body></html>`

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return doc
}

func TestParseProfile(t *testing.T) {
	p := parseProfile(mustDoc(t, profileHTML))

	if p.Name != "Alice Example" {
		t.Errorf("Name = %q, want %q", p.Name, "Alice Example")
	}
	if p.Age != 27 {
		t.Errorf("Age = %d, want 27", p.Age)
	}
	if p.Position != "Central Midfield" {
		t.Errorf("Position = %q, want %q", p.Position, "Central Midfield")
	}
	if p.MarketValue != "25.50" {
		t.Errorf("MarketValue = %q, want %q", p.MarketValue, "25.50")
	}
	if p.Joined != "Jul 1, 2021" {
		t.Errorf("Joined = %q", p.Joined)
	}
	if p.ContractExpires != "Jun 30, 2026" {
		t.Errorf("ContractExpires = %q", p.ContractExpires)
	}
}

func TestParseProfileEmptyPage(t *testing.T) {
	p := parseProfile(mustDoc(t, "<html><body></body></html>"))

	if p.Name != "" || p.Age != 0 || p.MarketValue != "" {
		t.Errorf("expected zero profile, got %+v", p)
	}
}

func TestParsePerformance(t *testing.T) {
	apps, goals, assists := parsePerformance(mustDoc(t, performanceHTML))

	if apps != 30 || goals != 12 || assists != 7 {
		t.Errorf("got (%d, %d, %d), want (30, 12, 7)", apps, goals, assists)
	}
}

func TestParsePerformanceEmptyFooter(t *testing.T) {
	apps, goals, assists := parsePerformance(mustDoc(t, "<html><table class=\"items\"></table></html>"))

	if apps != 0 || goals != 0 || assists != 0 {
		t.Errorf("got (%d, %d, %d), want zeros", apps, goals, assists)
	}
}

func TestBuildPerfURL(t *testing.T) {
	got := buildPerfURL("https://example.com/alice/profil/spieler/10", "GB1", "2023")
	want := "https://example.com/alice/leistungsdatendetails/spieler/10/wettbewerb/GB1/saison/2023"

	if got != want {
		t.Errorf("buildPerfURL = %q, want %q", got, want)
	}
}

func newTestClient(srv *httptest.Server) *Client {
	return NewClient(&Config{
		BaseURL:     srv.URL,
		StartURL:    srv.URL + "/competition",
		UserAgent:   "test-agent",
		Competition: "GB1",
		Season:      "2023",
	}, nil)
}

func TestFetchTeams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(teamTableHTML))
	}))
	defer srv.Close()

	teams, err := newTestClient(srv).FetchTeams(context.Background())
	if err != nil {
		t.Fatalf("FetchTeams: %v", err)
	}

	if len(teams) != 2 {
		t.Fatalf("got %d teams, want 2", len(teams))
	}
	if teams[0].Name != "FC Example" {
		t.Errorf("teams[0].Name = %q", teams[0].Name)
	}
	if teams[1].URL != srv.URL+"/sc-sample/startseite/verein/2" {
		t.Errorf("teams[1].URL = %q", teams[1].URL)
	}
}

func TestFetchSquadDeduplicates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(squadHTML))
	}))
	defer srv.Close()

	links, err := newTestClient(srv).FetchSquad(context.Background(), srv.URL+"/team")
	if err != nil {
		t.Fatalf("FetchSquad: %v", err)
	}

	want := []string{
		srv.URL + "/alice/profil/spieler/10",
		srv.URL + "/bob/profil/spieler/20",
	}
	if len(links) != len(want) {
		t.Fatalf("got %d links, want %d: %v", len(links), len(want), links)
	}
	for i := range want {
		if links[i] != want[i] {
			t.Errorf("links[%d] = %q, want %q", i, links[i], want[i])
		}
	}
}

func TestFetchPlayerPerformanceFailureKeepsZeroTotals(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/leistungsdatendetails/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(profileHTML))
	}))
	defer srv.Close()

	p, err := newTestClient(srv).FetchPlayer(context.Background(), srv.URL+"/alice/profil/spieler/10")
	if err != nil {
		t.Fatalf("FetchPlayer: %v", err)
	}

	if p.Name != "Alice Example" {
		t.Errorf("Name = %q", p.Name)
	}
	if p.Appearances != 0 || p.Goals != 0 || p.Assists != 0 {
		t.Errorf("totals = (%d, %d, %d), want zeros", p.Appearances, p.Goals, p.Assists)
	}
}

func TestFetchPlayerWithPerformance(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/leistungsdatendetails/") {
			w.Write([]byte(performanceHTML))
			return
		}
		w.Write([]byte(profileHTML))
	}))
	defer srv.Close()

	p, err := newTestClient(srv).FetchPlayer(context.Background(), srv.URL+"/alice/profil/spieler/10")
	if err != nil {
		t.Fatalf("FetchPlayer: %v", err)
	}

	if p.Appearances != 30 || p.Goals != 12 || p.Assists != 7 {
		t.Errorf("totals = (%d, %d, %d), want (30, 12, 7)", p.Appearances, p.Goals, p.Assists)
	}
}

func TestFetchPlayerProfileFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	if _, err := newTestClient(srv).FetchPlayer(context.Background(), srv.URL+"/alice/profil/spieler/10"); err == nil {
		t.Fatal("expected error for failing profile page")
	}
}

func TestLookupProfile(t *testing.T) {
	searchHTML := `<html><body><table class="items"><tbody>
<tr><td>img</td><td><a href="/alice/profil/spieler/10">Alice Example</a></td></tr>
</tbody></table></body></html>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/schnellsuche/") {
			w.Write([]byte(searchHTML))
			return
		}
		w.Write([]byte(profileHTML))
	}))
	defer srv.Close()

	p, err := newTestClient(srv).LookupProfile(context.Background(), "Alice")
	if err != nil {
		t.Fatalf("LookupProfile: %v", err)
	}

	if p.Name != "Alice" {
		t.Errorf("Name = %q, want the searched name", p.Name)
	}
	if p.Age != 27 {
		t.Errorf("Age = %d, want 27", p.Age)
	}
}

func TestLookupProfileNoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><table class="items"><tbody></tbody></table></body></html>`))
	}))
	defer srv.Close()

	if _, err := newTestClient(srv).LookupProfile(context.Background(), "Nobody"); err == nil {
		t.Fatal("expected error when search returns nothing")
	}
}

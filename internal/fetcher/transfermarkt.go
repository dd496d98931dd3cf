// Package fetcher talks to the external data sources: the transfermarkt
// pages the crawler walks and the news feed the scorer reads.
package fetcher

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"github.com/kickon/kickon/internal/domain"
	"github.com/kickon/kickon/internal/logger"
)

// Team is one entry of the competition's team table.
type Team struct {
	Name string
	URL  string
}

// Config holds the scraping client configuration.
type Config struct {
	BaseURL        string
	StartURL       string
	UserAgent      string
	Competition    string
	Season         string
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
}

// Client scrapes team, squad, and player pages. Every fetch is bounded by a
// short connect timeout and a longer overall timeout; slow detail pages are
// the norm, hanging connections are not.
type Client struct {
	http        *resty.Client
	baseURL     string
	startURL    string
	competition string
	season      string
	logger      *logger.Logger
}

// NewClient creates a scraping client.
func NewClient(cfg *Config, log *logger.Logger) *Client {
	if log == nil {
		log = logger.GetDefault()
	}

	connectTimeout := cfg.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 5 * time.Second
	}
	readTimeout := cfg.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = 30 * time.Second
	}

	client := resty.New()
	client.SetHeader("User-Agent", cfg.UserAgent)
	client.SetHeader("Accept-Language", "en-US,en;q=0.9")
	client.SetTimeout(readTimeout)
	client.SetTransport(&http.Transport{
		DialContext: (&net.Dialer{Timeout: connectTimeout}).DialContext,
	})

	return &Client{
		http:        client,
		baseURL:     cfg.BaseURL,
		startURL:    cfg.StartURL,
		competition: cfg.Competition,
		season:      cfg.Season,
		logger:      log,
	}
}

// getDocument fetches a page and parses it.
func (c *Client) getDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	resp, err := c.http.R().SetContext(ctx).Get(pageURL)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", pageURL, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%s returned HTTP %d", pageURL, resp.StatusCode())
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body()))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", pageURL, err)
	}
	return doc, nil
}

// FetchTeams enumerates the competition's teams in page order.
func (c *Client) FetchTeams(ctx context.Context) ([]Team, error) {
	doc, err := c.getDocument(ctx, c.startURL)
	if err != nil {
		return nil, err
	}

	var teams []Team
	doc.Find("td.hauptlink.no-border-links a").Each(func(_ int, sel *goquery.Selection) {
		name, ok := sel.Attr("title")
		if !ok || name == "" {
			name = strings.TrimSpace(sel.Text())
		}
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		teams = append(teams, Team{Name: name, URL: c.baseURL + href})
	})

	return teams, nil
}

// FetchSquad returns the profile URLs of a team's players, in page order
// with duplicates removed.
func (c *Client) FetchSquad(ctx context.Context, teamURL string) ([]string, error) {
	doc, err := c.getDocument(ctx, teamURL)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var links []string
	doc.Find("table.inline-table td.hauptlink a").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok || !strings.Contains(href, "/profil/spieler") {
			return
		}
		full := c.baseURL + href
		if _, dup := seen[full]; dup {
			return
		}
		seen[full] = struct{}{}
		links = append(links, full)
	})

	return links, nil
}

// FetchPlayer extracts a player's profile plus season performance totals.
// A failing performance page leaves the totals at zero; the profile page
// itself must succeed.
func (c *Client) FetchPlayer(ctx context.Context, playerURL string) (domain.Profile, error) {
	doc, err := c.getDocument(ctx, playerURL)
	if err != nil {
		return domain.Profile{}, err
	}

	p := parseProfile(doc)

	perfURL := buildPerfURL(playerURL, c.competition, c.season)
	perfDoc, err := c.getDocument(ctx, perfURL)
	if err != nil {
		c.logger.WithError(err).WithField("url", perfURL).Warn("Performance page unavailable, keeping zero totals")
		return p, nil
	}
	p.Appearances, p.Goals, p.Assists = parsePerformance(perfDoc)

	return p, nil
}

// LookupProfile resolves a player by name through the quick search and
// returns their profile. Performance totals and rank stay zero; the live
// scorer does not need them filled.
func (c *Client) LookupProfile(ctx context.Context, playerName string) (domain.Profile, error) {
	searchURL := fmt.Sprintf("%s/schnellsuche/ergebnis/schnellsuche?query=%s",
		c.baseURL, url.QueryEscape(playerName))
	doc, err := c.getDocument(ctx, searchURL)
	if err != nil {
		return domain.Profile{}, err
	}

	first := doc.Find("table.items tbody tr td:nth-of-type(2) a").First()
	href, ok := first.Attr("href")
	if !ok {
		return domain.Profile{}, fmt.Errorf("no search results for %q", playerName)
	}

	profDoc, err := c.getDocument(ctx, c.baseURL+href)
	if err != nil {
		return domain.Profile{}, err
	}

	p := parseProfile(profDoc)
	p.Name = playerName
	return p, nil
}

var (
	ageExpr         = regexp.MustCompile(`\((\d+)\)`)
	marketValueTail = regexp.MustCompile(`[\d.,]+`)
)

// parseProfile pulls the profile attributes out of a player page. A missing
// selector leaves the field at its zero value; absence is a normal branch
// here, not a fetch failure.
func parseProfile(doc *goquery.Document) domain.Profile {
	var p domain.Profile

	p.Name = strings.TrimSpace(doc.Find("header.data-header strong").First().Text())

	if wrapper := doc.Find("a.data-header__market-value-wrapper").First(); wrapper.Length() > 0 {
		clone := wrapper.Clone()
		clone.Find("p.data-header__last-update").Remove()
		if m := marketValueTail.FindString(clone.Text()); m != "" {
			p.MarketValue = m
		}
	}

	spans := doc.Find("div.info-table span.info-table__content")
	for i := 0; i+1 < spans.Length(); i += 2 {
		label := strings.TrimSuffix(strings.TrimSpace(spans.Eq(i).Text()), ":")
		value := strings.TrimSpace(spans.Eq(i + 1).Text())

		switch label {
		case "Date of birth/Age":
			if m := ageExpr.FindStringSubmatch(value); m != nil {
				if age, err := strconv.Atoi(m[1]); err == nil {
					p.Age = age
				}
			}
		case "Position":
			p.Position = value
		case "Market value":
			p.MarketValue = value
		case "Joined":
			p.Joined = value
		case "Contract expires":
			p.ContractExpires = value
		}
	}

	return p
}

// parsePerformance reads season totals from the performance table footer.
func parsePerformance(doc *goquery.Document) (appearances, goals, assists int) {
	tds := doc.Find("table.items tfoot tr td.zentriert")
	parse := func(i int) int {
		txt := strings.TrimSpace(tds.Eq(i).Text())
		n, err := strconv.Atoi(txt)
		if err != nil {
			return 0
		}
		return n
	}

	if tds.Length() > 0 {
		appearances = parse(0)
	}
	if tds.Length() > 1 {
		goals = parse(1)
	}
	if tds.Length() > 2 {
		assists = parse(2)
	}
	return appearances, goals, assists
}

// buildPerfURL maps a profile URL to its per-competition performance page.
func buildPerfURL(playerURL, competition, season string) string {
	perfURL := strings.Replace(playerURL, "/profil/", "/leistungsdatendetails/", 1)
	return fmt.Sprintf("%s/wettbewerb/%s/saison/%s", perfURL, competition, season)
}

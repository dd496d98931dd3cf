package fetcher

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"github.com/kickon/kickon/internal/domain"
)

// NewsConfig holds the news feed client configuration. FeedURL carries a
// single %s verb for the URL-escaped query.
type NewsConfig struct {
	FeedURL     string
	MaxArticles int
	Timeout     time.Duration
}

// NewsClient pulls recent transfer coverage for a player from an RSS feed.
type NewsClient struct {
	http        *resty.Client
	feedURL     string
	maxArticles int
}

// NewNewsClient creates a news feed client.
func NewNewsClient(cfg *NewsConfig) *NewsClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	maxArticles := cfg.MaxArticles
	if maxArticles <= 0 {
		maxArticles = 5
	}

	client := resty.New()
	client.SetTimeout(timeout)

	return &NewsClient{
		http:        client,
		feedURL:     cfg.FeedURL,
		maxArticles: maxArticles,
	}
}

type rssFeed struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
}

// FetchSummaries returns up to MaxArticles plain-text article summaries for
// the player, newest first in feed order.
func (n *NewsClient) FetchSummaries(ctx context.Context, playerName string) ([]domain.Article, error) {
	query := url.QueryEscape(playerName + " transfer rumors")
	feedURL := fmt.Sprintf(n.feedURL, query)

	resp, err := n.http.R().SetContext(ctx).Get(feedURL)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("feed returned HTTP %d", resp.StatusCode())
	}

	var feed rssFeed
	if err := xml.Unmarshal(resp.Body(), &feed); err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	items := feed.Channel.Items
	if len(items) > n.maxArticles {
		items = items[:n.maxArticles]
	}

	articles := make([]domain.Article, 0, len(items))
	for _, item := range items {
		summary := stripHTML(item.Description)
		if summary == "" {
			summary = stripHTML(item.Title)
		}
		articles = append(articles, domain.Article{
			URL:       item.Link,
			Summary:   summary,
			Published: item.PubDate,
		})
	}

	return articles, nil
}

// stripHTML flattens feed markup to whitespace-normalized text.
func stripHTML(fragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.TrimSpace(fragment)
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

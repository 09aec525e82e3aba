package sources

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/kjannette/tariff-monitor/internal/config"
	"github.com/kjannette/tariff-monitor/internal/fallback"
	"github.com/kjannette/tariff-monitor/internal/httputil"
	"github.com/kjannette/tariff-monitor/internal/models"
)

const maxECHeadlines = 3

// ECNews scrapes headlines from the European Commission trade policy news
// page: every <h3> holding a link becomes one item.
type ECNews struct {
	base
}

func NewECNews(sc config.SourceConfig, opts Options) *ECNews {
	return &ECNews{base: newBase(sc.Name, sc.URL, opts)}
}

func (e *ECNews) FetchNews(ctx context.Context) []models.NewsItem {
	body, err := e.get(ctx, e.url, httputil.AcceptHTML)
	if err != nil {
		return nil
	}

	links, err := extractHeadlines(body, e.url, maxECHeadlines)
	if err != nil {
		e.log.Warn().Err(err).Msg("parse failed")
		return nil
	}
	if len(links) == 0 {
		e.log.Info().Msg("no headlines on page")
		return nil
	}

	out := make([]models.NewsItem, len(links))
	for i, l := range links {
		out[i] = models.NewsItem{
			ID:      fmt.Sprintf("ec-%d", i+1),
			Title:   l.title,
			Summary: "European Commission trade policy update",
			Time:    fallback.HoursAgo(1 + e.opts.Rand.IntN(12)),
			Source:  "European Commission",
			URL:     l.href,
		}
	}
	e.log.Info().Int("items", len(out)).Msg("headlines extracted")
	return out
}

type headline struct {
	title, href string
}

// extractHeadlines returns up to limit (title, absolute href) pairs taken
// from the first link inside each <h3>. Relative hrefs resolve against page.
func extractHeadlines(doc []byte, page string, limit int) ([]headline, error) {
	root, err := html.Parse(bytes.NewReader(doc))
	if err != nil {
		return nil, fmt.Errorf("html: %w", err)
	}
	pageURL, err := url.Parse(page)
	if err != nil {
		return nil, fmt.Errorf("page url: %w", err)
	}

	var out []headline
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if len(out) >= limit {
			return
		}
		if n.Type == html.ElementNode && n.DataAtom == atom.H3 {
			if a := firstLink(n); a != nil {
				title := collapse(textOf(a))
				href := attr(a, "href")
				if title != "" && href != "" {
					if ref, err := url.Parse(href); err == nil {
						out = append(out, headline{title: title, href: pageURL.ResolveReference(ref).String()})
					}
				}
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return out, nil
}

func firstLink(n *html.Node) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.A && attr(c, "href") != "" {
			return c
		}
		if found := firstLink(c); found != nil {
			return found
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}

func textOf(n *html.Node) string {
	var sb strings.Builder
	var rec func(*html.Node)
	rec = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			rec(c)
		}
	}
	rec(n)
	return sb.String()
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// PageNews checks that a provider's page answers and, if it does, reports a
// single generated item pointing at that page. The WTO and US Commerce pages
// are too irregular to scrape reliably.
type PageNews struct {
	base
	id       string
	title    string
	summary  string
	source   string
	maxHours int
}

func NewWTONews(sc config.SourceConfig, opts Options) *PageNews {
	return &PageNews{
		base:     newBase(sc.Name, sc.URL, opts),
		id:       "wto-1",
		title:    "WTO Reports on Global Tariff Trends",
		summary:  "World Trade Organization releases quarterly report on international tariff developments",
		source:   "World Trade Organization",
		maxHours: 6,
	}
}

func NewUSCommerceNews(sc config.SourceConfig, opts Options) *PageNews {
	return &PageNews{
		base:     newBase(sc.Name, sc.URL, opts),
		id:       "us-1",
		title:    "US Trade Data Updates Released",
		summary:  "Department of Commerce publishes latest international trade statistics and analysis",
		source:   "US Department of Commerce",
		maxHours: 8,
	}
}

func (p *PageNews) FetchNews(ctx context.Context) []models.NewsItem {
	if _, err := p.get(ctx, p.url, httputil.AcceptHTML); err != nil {
		return nil
	}
	return []models.NewsItem{{
		ID:      p.id,
		Title:   p.title,
		Summary: p.summary,
		Time:    fallback.HoursAgo(1 + p.opts.Rand.IntN(p.maxHours)),
		Source:  p.source,
		URL:     p.url,
	}}
}

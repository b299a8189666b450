package registry

import (
	"strings"

	"golang.org/x/net/html"
)

// extractText walks an HTML document (parsed via golang.org/x/net/html,
// the Go equivalent of BeautifulSoup used by the original
// iccr_scraper.py / sccs_scraper.py) and concatenates the text content of
// every node whose tag and class attribute match selector. This models
// the scrapers' `soup.find_all('div', class_='...')` pattern as a single
// recursive tree walk instead of a parser object with query methods.
func extractText(doc *html.Node, tag, class string) []string {
	var out []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == tag && hasClass(n, class) {
			out = append(out, strings.TrimSpace(collectText(n)))
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return out
}

func hasClass(n *html.Node, class string) bool {
	if class == "" {
		return true
	}
	for _, a := range n.Attr {
		if a.Key == "class" {
			for _, c := range strings.Fields(a.Val) {
				if c == class {
					return true
				}
			}
		}
	}
	return false
}

func collectText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

// classifyConcernText maps free-text concern snippets scraped off a
// registry page into the handful of risk/concern keywords the original
// Python scrapers looked for (banned, restricted, carcinogen, irritant,
// endocrine) — a coarse keyword sweep, not NLP, matching the source
// scrapers' own regex-based approach.
func classifyConcernText(text string) (concerns []string) {
	lower := strings.ToLower(text)
	keywords := []string{"carcinogen", "irritant", "endocrine", "allergen", "toxic", "sensitizer", "banned", "restricted"}
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			concerns = append(concerns, kw)
		}
	}
	return concerns
}

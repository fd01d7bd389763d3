package docs

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// TOCEntry is one heading of a rendered document.
type TOCEntry struct {
	Level int    `json:"level"`
	ID    string `json:"id"`
	Text  string `json:"text"`
}

// Slugify converts heading text into an anchor id.
// Example: "Using the VRM Inspector" -> "using-the-vrm-inspector".
// Letters of any script are kept so Japanese headings stay readable.
func Slugify(text string) string {
	var b strings.Builder
	lastWasDash := false

	for _, r := range strings.ToLower(strings.TrimSpace(text)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastWasDash = false
		} else if !lastWasDash {
			b.WriteRune('-')
			lastWasDash = true
		}
	}

	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return "section"
	}
	return slug
}

// AnchorHeadings gives every h2-h4 in fragment an id derived from its text
// and returns the rewritten fragment plus a table of contents. Ids already
// present are kept; repeated slugs get -1, -2 suffixes.
func AnchorHeadings(fragment string) (string, []TOCEntry, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return "", nil, fmt.Errorf("error parsing HTML: %w", err)
	}

	seen := make(map[string]int)
	toc := make([]TOCEntry, 0)

	doc.Find("h2, h3, h4").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		id, exists := s.Attr("id")
		if !exists || id == "" {
			id = uniqueID(Slugify(text), seen)
			s.SetAttr("id", id)
		} else {
			seen[id]++
		}

		level, _ := strconv.Atoi(strings.TrimPrefix(goquery.NodeName(s), "h"))
		toc = append(toc, TOCEntry{Level: level, ID: id, Text: text})
	})

	body, err := doc.Find("body").Html()
	if err != nil {
		return "", nil, fmt.Errorf("error rendering HTML: %w", err)
	}

	return body, toc, nil
}

// FirstHeading returns the text of the first h1 in fragment.
func FirstHeading(fragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("h1").First().Text())
}

func uniqueID(slug string, seen map[string]int) string {
	n := seen[slug]
	seen[slug] = n + 1
	if n == 0 {
		return slug
	}
	id := slug + "-" + strconv.Itoa(n)
	// "expressions-1" may itself be a heading slug.
	for seen[id] > 0 {
		n++
		id = slug + "-" + strconv.Itoa(n)
	}
	seen[id]++
	return id
}

// cleanHTML removes script and style elements and comments from a rendered
// fragment. Whitespace is preserved so code blocks survive.
func cleanHTML(content string) string {
	nodes, err := html.ParseFragment(strings.NewReader(content), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		return content // Return original content if parsing fails
	}

	var removeNodes func(*html.Node)
	removeNodes = func(n *html.Node) {
		for c := n.FirstChild; c != nil; {
			next := c.NextSibling
			if c.Type == html.CommentNode ||
				(c.Type == html.ElementNode && (c.Data == "script" || c.Data == "style")) {
				n.RemoveChild(c)
			} else {
				removeNodes(c)
			}
			c = next
		}
	}

	var buf bytes.Buffer
	for _, n := range nodes {
		if n.Type == html.CommentNode ||
			(n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style")) {
			continue
		}
		removeNodes(n)
		if err := html.Render(&buf, n); err != nil {
			return content // Return original content if rendering fails
		}
	}

	return strings.TrimSpace(buf.String())
}

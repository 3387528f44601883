// Package extract parses raw email content into a normalized artifact set:
// sender, subject, embedded URLs, IP addresses and attachment names.
package extract

import (
	"regexp"
	"sort"
	"strings"

	"github.com/jhillyerd/enmime"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/YashviSoni04/email-phishing-analyzer/internal/core"
)

var (
	urlPattern = regexp.MustCompile(`https?://(?:[a-zA-Z]|[0-9]|[$-_@.&+]|[!*(),]|(?:%[0-9a-fA-F][0-9a-fA-F]))+`)

	// Octet ranges are deliberately not validated: 999.999.999.999 matches.
	// Tightening this would silently change stored artifacts.
	ipPattern = regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`)
)

// Extractor turns raw email content into a core.EmailArtifact. Extraction
// never fails: malformed content degrades to whatever could be recovered.
type Extractor struct {
	logger *zap.Logger
}

// NewExtractor creates a new artifact extractor.
func NewExtractor(logger *zap.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// Extract parses raw content, which may be a full RFC-822 message or a bare
// body, and collects sender, subject, URLs, IPs and attachment names.
func (e *Extractor) Extract(raw string) core.EmailArtifact {
	artifact := core.EmailArtifact{
		URLs:        []string{},
		IPs:         []string{},
		Attachments: []string{},
	}

	env, err := enmime.ReadEnvelope(strings.NewReader(raw))
	if err != nil {
		if e.logger != nil {
			e.logger.Debug("Failed to parse MIME envelope, scanning raw content", zap.Error(err))
		}
		artifact.URLs = extractURLs(raw)
		artifact.IPs = ipPattern.FindAllString(raw, -1)
		return artifact
	}

	artifact.Sender = env.GetHeader("From")
	artifact.Subject = env.GetHeader("Subject")

	// Scan both the text body and the raw HTML so obfuscated links in
	// attributes are not missed.
	scannable := env.Text
	if env.HTML != "" {
		scannable += "\n" + env.HTML
	}
	if scannable == "" {
		scannable = raw
	}

	artifact.URLs = extractURLs(scannable)
	artifact.IPs = ipPattern.FindAllString(scannable, -1)

	for _, part := range env.Attachments {
		if part.FileName != "" {
			artifact.Attachments = append(artifact.Attachments, part.FileName)
		}
	}

	return artifact
}

// extractURLs unions plain-text URL matches with URLs hidden in HTML href,
// onclick and data-url attributes, deduplicated and sorted.
func extractURLs(content string) []string {
	seen := make(map[string]struct{})
	for _, u := range urlPattern.FindAllString(content, -1) {
		seen[u] = struct{}{}
	}
	for _, u := range urlsFromHTML(content) {
		seen[u] = struct{}{}
	}

	urls := make([]string, 0, len(seen))
	for u := range seen {
		urls = append(urls, u)
	}
	sort.Strings(urls)
	return urls
}

// urlsFromHTML walks an HTML fragment collecting anchor hrefs, URLs embedded
// in onclick handlers and data-url attributes. Parse problems yield whatever
// was collected so far.
func urlsFromHTML(content string) []string {
	if !strings.Contains(content, "<") {
		return nil
	}
	root, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return nil
	}

	var urls []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			for _, attr := range n.Attr {
				switch attr.Key {
				case "href":
					if n.Data == "a" && hasHTTPScheme(attr.Val) {
						urls = append(urls, attr.Val)
					}
				case "onclick":
					if strings.Contains(attr.Val, "window.location") || strings.Contains(attr.Val, "href") {
						urls = append(urls, urlPattern.FindAllString(attr.Val, -1)...)
					}
				case "data-url":
					if hasHTTPScheme(attr.Val) {
						urls = append(urls, attr.Val)
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return urls
}

func hasHTTPScheme(u string) bool {
	return strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://")
}

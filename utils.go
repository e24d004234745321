package webzip

import (
	"bytes"
	"fmt"
	nurl "net/url"
	"strings"
	"time"

	"github.com/go-shiori/dom"
	"github.com/kennygrant/sanitize"
	"golang.org/x/net/html"
)

const maxTitleLength = 100

// domainName returns the host of url without its "www." prefix,
// sanitized so it can be used as part of a file name.
func domainName(url *nurl.URL) string {
	host := strings.TrimPrefix(strings.ToLower(url.Hostname()), "www.")

	// Sanitize label by label so the dots survive
	labels := []string{}
	for _, label := range strings.Split(host, ".") {
		if label = sanitize.BaseName(label); label != "" {
			labels = append(labels, label)
		}
	}

	name := strings.Join(labels, ".")
	if name == "" {
		return "webpage"
	}
	return name
}

// createFileName returns the name of an archived artifact,
// e.g. example.com_full_1700000000000.html
func createFileName(url *nurl.URL, suffix, extension string, now time.Time) string {
	return fmt.Sprintf("%s%s_%d%s", domainName(url), suffix, now.UnixMilli(), extension)
}

// formatSize formats byte count in kilobytes.
func formatSize(size int) string {
	return fmt.Sprintf("%.2fKB", float64(size)/1024)
}

// pageTitle returns the content of the <title> of an HTML document, or
// an empty string if there is none.
func pageTitle(content []byte) string {
	doc, err := html.Parse(bytes.NewReader(content))
	if err != nil {
		return ""
	}

	titles := dom.GetElementsByTagName(doc, "title")
	if len(titles) == 0 {
		return ""
	}

	title := strings.Join(strings.Fields(dom.TextContent(titles[0])), " ")
	if runes := []rune(title); len(runes) > maxTitleLength {
		title = string(runes[:maxTitleLength-1]) + "…"
	}

	return title
}

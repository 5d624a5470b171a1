package kino

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// listingLinkSelector matches the film cards on /cinema/top/.
const listingLinkSelector = "a.link.link_inline.link-holder.link-holder_itemevent.link-holder_itemevent_small"

// ParseListing extracts detail page links from the top list, in page order,
// truncated to MaxListingEntries. Links are returned as they appear in the
// markup (usually site-relative). A page where the selector matches nothing
// yields an empty slice and no error.
func ParseListing(html []byte) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, &ParseError{Field: FieldListing, Reason: "read document", Err: err}
	}

	links := make([]string, 0, MaxListingEntries)
	doc.Find(listingLinkSelector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, ok := s.Attr("href")
		href = strings.TrimSpace(href)
		if !ok || href == "" {
			return true
		}
		links = append(links, href)
		return len(links) < MaxListingEntries
	})
	return links, nil
}

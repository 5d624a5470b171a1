package kino

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Detail page selectors.
const (
	titleSelector       = "h1.text.text_light_promo.color_white"
	releaseDateSelector = "div.table__cell div.p-truncate.p-truncate_ellipsis.js-module.js-toggle__truncate.js-toggle__truncate-first span.p-truncate__inner.js-toggle__truncate-inner"
	ratingSelector      = "div.p-movie-rates__item.nowrap span.text.text_bold_huge.text_fixed"
	descriptionSelector = "span.p-truncate__inner span.text p"
	lengthSelector      = "div.margin_bottom_20 span.margin_left_40.nowrap"
)

// releaseDateFragment is the position of the date among the text fragments
// of the last release info cell: country, genre, then the date.
const releaseDateFragment = 2

// ParseDetail extracts a RawFilm from a film detail page.
// Every field must be present; the first missing one is reported as a
// *ParseError naming it.
func ParseDetail(html []byte) (RawFilm, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return RawFilm{}, &ParseError{Field: FieldTitle, Reason: "read document", Err: err}
	}

	title := strings.TrimSpace(doc.Find(titleSelector).First().Text())
	if title == "" {
		return RawFilm{}, parseErr(FieldTitle, "no "+titleSelector)
	}

	cells := doc.Find(releaseDateSelector)
	if cells.Length() == 0 {
		return RawFilm{}, parseErr(FieldReleaseDate, "no release info cell")
	}
	fragments := textFragments(cells.Last())
	if len(fragments) <= releaseDateFragment {
		return RawFilm{}, parseErr(FieldReleaseDate, "release info has "+strconv.Itoa(len(fragments))+" fragments")
	}
	released, err := ParseDate(fragments[releaseDateFragment])
	if err != nil {
		return RawFilm{}, err
	}

	rating := strings.TrimSpace(doc.Find(ratingSelector).First().Text())
	if rating == "" {
		return RawFilm{}, parseErr(FieldRating, "no "+ratingSelector)
	}
	if _, err := ParseRating(rating); err != nil {
		return RawFilm{}, err
	}

	description := strings.ReplaceAll(strings.TrimSpace(doc.Find(descriptionSelector).First().Text()), "\u00a0", " ")
	if description == "" {
		return RawFilm{}, parseErr(FieldDescription, "no "+descriptionSelector)
	}

	lengthText := strings.TrimSpace(doc.Find(lengthSelector).First().Text())
	if lengthText == "" {
		return RawFilm{}, parseErr(FieldLength, "no "+lengthSelector)
	}
	minutes, err := ParseDuration(lengthText)
	if err != nil {
		return RawFilm{}, err
	}

	return RawFilm{
		Title:         title,
		Rating:        rating,
		Description:   description,
		ReleaseDate:   released,
		LengthMinutes: minutes,
		Distributor:   PlaceholderDistributor,
	}, nil
}

// textFragments returns the non-blank text nodes under s in document order.
func textFragments(s *goquery.Selection) []string {
	var out []string
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		if goquery.NodeName(c) == "#text" {
			if t := strings.TrimSpace(c.Text()); t != "" {
				out = append(out, t)
			}
			return
		}
		out = append(out, textFragments(c)...)
	})
	return out
}

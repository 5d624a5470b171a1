package scrape

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

const testBase = "https://kino.test"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func filmPath(i int) string {
	return fmt.Sprintf("/cinema/movies/%d_film/", i)
}

func filmURL(i int) string {
	return testBase + filmPath(i)
}

// listingPage renders a top listing with n film cards.
func listingPage(n int) []byte {
	var b strings.Builder
	b.WriteString(`<html><body><div class="cols">`)
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b,
			`<div class="cols__column"><a class="link link_inline link-holder link-holder_itemevent link-holder_itemevent_small" href="%s">Film %d</a></div>`,
			filmPath(i), i)
	}
	b.WriteString(`</div></body></html>`)
	return []byte(b.String())
}

// detailPage renders a detail page that ParseDetail accepts.
func detailPage(title string) []byte {
	return []byte(`<html><body>
<h1 class="text text_light_promo color_white">` + title + `</h1>
<div class="p-movie-rates__item nowrap"><span class="text text_bold_huge text_fixed">7.5</span></div>
<div class="table__cell"><div class="p-truncate p-truncate_ellipsis js-module js-toggle__truncate js-toggle__truncate-first">
<span class="p-truncate__inner js-toggle__truncate-inner"><a>Россия</a><a>драма</a><span>1 марта 2020</span></span></div></div>
<div class="margin_bottom_20"><span class="margin_left_40 nowrap">1 ч. 45 мин.</span></div>
<span class="p-truncate__inner"><span class="text"><p>Описание фильма.</p></span></span>
</body></html>`)
}

func titleOf(i int) string {
	return fmt.Sprintf("Фильм %d", i)
}

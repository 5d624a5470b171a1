package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/hbollon/go-edlib"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MinMatchScore is the lowest similarity MatchTitles reports.
const MinMatchScore = 0.70

// TitleMatch is one fuzzy search hit.
type TitleMatch struct {
	Film  *Film
	Score float64 // 0..1
}

// CleanTitle folds a title for comparison: lower case, ё/й and accents
// reduced to their base letter, punctuation dropped, whitespace collapsed.
func CleanTitle(title string) string {
	s := strings.ToLower(title)
	s = removeMarks(s)
	s = strings.NewReplacer("&", " and ", "-", " ", "'", "", ".", " ", ":", " ", "\u00a0", " ").Replace(s)

	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func removeMarks(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, _ := transform.String(t, s)
	return out
}

// titleScore rates how well candidate answers query. Jaro-Winkler favours
// shared prefixes; a query contained whole in the title scores at least 0.9.
func titleScore(query, candidate string) float64 {
	if query == "" || candidate == "" {
		return 0
	}
	score := float64(edlib.JaroWinklerSimilarity(query, candidate))
	if strings.Contains(candidate, query) && score < 0.9 {
		score = 0.9
	}
	return score
}

// MatchTitles returns up to limit films whose titles resemble query, best
// first. Films scoring under MinMatchScore are left out.
func (s *Store) MatchTitles(ctx context.Context, query string, limit int) ([]TitleMatch, error) {
	q := CleanTitle(query)
	if q == "" {
		return []TitleMatch{}, nil
	}

	rows, err := s.db.QueryContext(ctx, "SELECT "+filmColumns+" FROM films")
	if err != nil {
		return nil, fmt.Errorf("match titles: %w", err)
	}
	defer func() { _ = rows.Close() }()

	matches := []TitleMatch{}
	for rows.Next() {
		f, err := scanFilm(rows)
		if err != nil {
			return nil, fmt.Errorf("scan film: %w", err)
		}
		if score := titleScore(q, CleanTitle(f.Title)); score >= MinMatchScore {
			matches = append(matches, TitleMatch{Film: f, Score: score})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate films: %w", err)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Film.Title < matches[j].Film.Title
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

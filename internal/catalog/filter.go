package catalog

// Sort keys accepted by FilmFilter.Sort.
const (
	SortTitle       = "title"
	SortReleaseDate = "release_date"
	SortRating      = "rating"
)

var filmSortColumns = map[string]string{
	SortTitle:       "title",
	SortReleaseDate: "release_date",
	SortRating:      "rating",
}

// FilmFilter selects films for ListFilms. Nil fields are ignored.
type FilmFilter struct {
	Title         *string // substring match
	DistributedBy *string
	Sort          string // one of the Sort* keys; empty keeps insertion order
	Desc          bool
	Limit         int // 0 = no limit
	Offset        int
}

// ActorFilter selects actors for ListActors.
type ActorFilter struct {
	Name     *string // substring match
	IsActive *bool
	Limit    int
	Offset   int
}

// ValidFilmSort reports whether key is an accepted sort key.
func ValidFilmSort(key string) bool {
	if key == "" {
		return true
	}
	_, ok := filmSortColumns[key]
	return ok
}

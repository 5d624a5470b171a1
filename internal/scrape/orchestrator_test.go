package scrape

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/vmunix/kinocat/internal/events"
	"github.com/vmunix/kinocat/internal/scrape/mocks"
	"github.com/vmunix/kinocat/pkg/kino"
)

func newTestOrchestrator(t *testing.T, fetcher Fetcher, sink Sink, poolSize int, bus *events.Bus) *Orchestrator {
	t.Helper()
	o, err := NewOrchestrator(Config{BaseURL: testBase, PoolSize: poolSize}, fetcher, sink, bus, discardLogger())
	require.NoError(t, err)
	return o
}

// pageSite serves n detail pages. fail maps listing index to the error its
// fetch returns; delay is applied to every detail fetch.
type pageSite struct {
	n     int
	fail  map[int]error
	delay func(i int) time.Duration

	mu      sync.Mutex
	fetched []string

	inFlight atomic.Int32
	maxSeen  atomic.Int32
}

func (s *pageSite) fetch(ctx context.Context, u string) ([]byte, error) {
	if u == testBase+DefaultListingPath {
		return listingPage(s.n), nil
	}
	s.mu.Lock()
	s.fetched = append(s.fetched, u)
	s.mu.Unlock()

	cur := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		seen := s.maxSeen.Load()
		if cur <= seen || s.maxSeen.CompareAndSwap(seen, cur) {
			break
		}
	}

	for i := 0; i < s.n; i++ {
		if u != filmURL(i) {
			continue
		}
		if s.delay != nil {
			time.Sleep(s.delay(i))
		}
		if err := s.fail[i]; err != nil {
			return nil, err
		}
		return detailPage(titleOf(i)), nil
	}
	return nil, &FetchError{URL: u, StatusCode: http.StatusNotFound}
}

func (s *pageSite) fetchedURLs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.fetched...)
}

func titles(films []kino.RawFilm) []string {
	out := make([]string, len(films))
	for i, f := range films {
		out[i] = f.Title
	}
	return out
}

func expectTitles(n int, skip ...int) []string {
	skipped := map[int]bool{}
	for _, s := range skip {
		skipped[s] = true
	}
	var out []string
	for i := 0; i < n; i++ {
		if !skipped[i] {
			out = append(out, titleOf(i))
		}
	}
	return out
}

func TestOrchestrator_SequentialStoresAllInOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	site := &pageSite{n: 3}
	fetcher := mocks.NewMockFetcher(ctrl)
	fetcher.EXPECT().Fetch(gomock.Any(), gomock.Any()).DoAndReturn(site.fetch).Times(4)

	sink := mocks.NewMockSink(ctrl)
	sink.EXPECT().BulkCreateFilms(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, films []kino.RawFilm) (int, error) {
			assert.Equal(t, expectTitles(3), titles(films))
			assert.Equal(t, 105, films[0].LengthMinutes)
			assert.Equal(t, "7.5", films[0].Rating)
			assert.Equal(t, kino.PlaceholderDistributor, films[0].Distributor)
			return 3, nil
		})

	res, err := newTestOrchestrator(t, fetcher, sink, 0, nil).Run(context.Background(), StrategySequential)
	require.NoError(t, err)
	assert.Equal(t, StrategySequential, res.Strategy)
	assert.Equal(t, 3, res.Found)
	assert.Equal(t, 3, res.Created)
	assert.Empty(t, res.Failed)
	assert.Positive(t, res.Elapsed)
	assert.Equal(t, []string{filmURL(0), filmURL(1), filmURL(2)}, site.fetchedURLs())
}

func TestOrchestrator_SequentialStopsAtFirstFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	site := &pageSite{n: 5, fail: map[int]error{2: &FetchError{URL: filmURL(2), StatusCode: http.StatusBadGateway}}}
	fetcher := mocks.NewMockFetcher(ctrl)
	fetcher.EXPECT().Fetch(gomock.Any(), gomock.Any()).DoAndReturn(site.fetch).AnyTimes()
	sink := mocks.NewMockSink(ctrl) // no expectations: must not be called

	res, err := newTestOrchestrator(t, fetcher, sink, 0, nil).Run(context.Background(), StrategySequential)
	require.Error(t, err)
	assert.Nil(t, res)

	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, http.StatusBadGateway, fe.StatusCode)
	assert.Equal(t, []string{filmURL(0), filmURL(1), filmURL(2)}, site.fetchedURLs())
}

func TestOrchestrator_SequentialParseError(t *testing.T) {
	ctrl := gomock.NewController(t)
	fetcher := mocks.NewMockFetcher(ctrl)
	fetcher.EXPECT().Fetch(gomock.Any(), testBase+DefaultListingPath).Return(listingPage(1), nil)
	fetcher.EXPECT().Fetch(gomock.Any(), filmURL(0)).Return([]byte("<html><body>moved</body></html>"), nil)

	_, err := newTestOrchestrator(t, fetcher, mocks.NewMockSink(ctrl), 0, nil).Run(context.Background(), StrategySequential)

	var pe *kino.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, kino.FieldTitle, pe.Field)
	assert.Contains(t, err.Error(), filmURL(0))
}

func TestOrchestrator_PoolBoundsInFlight(t *testing.T) {
	ctrl := gomock.NewController(t)
	site := &pageSite{n: 10, delay: func(int) time.Duration { return 20 * time.Millisecond }}
	fetcher := mocks.NewMockFetcher(ctrl)
	fetcher.EXPECT().Fetch(gomock.Any(), gomock.Any()).DoAndReturn(site.fetch).Times(11)

	sink := mocks.NewMockSink(ctrl)
	sink.EXPECT().BulkCreateFilms(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, films []kino.RawFilm) (int, error) {
			assert.Equal(t, expectTitles(10), titles(films))
			return len(films), nil
		})

	res, err := newTestOrchestrator(t, fetcher, sink, 3, nil).Run(context.Background(), StrategyPool)
	require.NoError(t, err)
	assert.Equal(t, 10, res.Created)
	assert.LessOrEqual(t, site.maxSeen.Load(), int32(3))
	assert.Len(t, site.fetchedURLs(), 10)
}

func TestOrchestrator_PoolReportsFirstFailureInListingOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	early := errors.New("page 2 broke")
	late := errors.New("page 7 broke")
	site := &pageSite{
		n:    10,
		fail: map[int]error{2: early, 7: late},
		delay: func(i int) time.Duration {
			if i == 2 {
				return 50 * time.Millisecond
			}
			return 0
		},
	}
	fetcher := mocks.NewMockFetcher(ctrl)
	fetcher.EXPECT().Fetch(gomock.Any(), gomock.Any()).DoAndReturn(site.fetch).Times(11)

	_, err := newTestOrchestrator(t, fetcher, mocks.NewMockSink(ctrl), 4, nil).Run(context.Background(), StrategyPool)
	require.ErrorIs(t, err, early)
	assert.NotErrorIs(t, err, late)
}

func TestOrchestrator_FanoutStoresEverySuccess(t *testing.T) {
	ctrl := gomock.NewController(t)
	site := &pageSite{n: 10, delay: func(int) time.Duration { return 5 * time.Millisecond }}
	fetcher := mocks.NewMockFetcher(ctrl)
	fetcher.EXPECT().Fetch(gomock.Any(), gomock.Any()).DoAndReturn(site.fetch).Times(11)

	sink := mocks.NewMockSink(ctrl)
	sink.EXPECT().BulkCreateFilms(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, films []kino.RawFilm) (int, error) {
			assert.Equal(t, expectTitles(10), titles(films))
			return len(films), nil
		})

	res, err := newTestOrchestrator(t, fetcher, sink, 0, nil).Run(context.Background(), StrategyFanout)
	require.NoError(t, err)
	assert.Equal(t, 10, res.Found)
	assert.Equal(t, 10, res.Created)
	assert.Empty(t, res.Failed)
}

func TestOrchestrator_FanoutKeepsGoingPastFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	site := &pageSite{n: 6, fail: map[int]error{
		1: &FetchError{URL: filmURL(1), StatusCode: http.StatusNotFound},
		4: errors.New("reset by peer"),
	}}
	fetcher := mocks.NewMockFetcher(ctrl)
	fetcher.EXPECT().Fetch(gomock.Any(), gomock.Any()).DoAndReturn(site.fetch).Times(7)

	sink := mocks.NewMockSink(ctrl)
	sink.EXPECT().BulkCreateFilms(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, films []kino.RawFilm) (int, error) {
			assert.Equal(t, expectTitles(6, 1, 4), titles(films))
			return len(films), nil
		})

	res, err := newTestOrchestrator(t, fetcher, sink, 0, nil).Run(context.Background(), StrategyFanout)
	require.NoError(t, err)
	assert.Equal(t, 6, res.Found)
	assert.Equal(t, 4, res.Created)
	require.Len(t, res.Failed, 2)
	assert.Equal(t, filmURL(1), res.Failed[0].URL)
	assert.Contains(t, res.Failed[0].Error, "status 404")
	assert.Equal(t, filmURL(4), res.Failed[1].URL)
}

func TestOrchestrator_FanoutIsolatesUnparsableRating(t *testing.T) {
	ctrl := gomock.NewController(t)
	site := &pageSite{n: 3}
	fetcher := mocks.NewMockFetcher(ctrl)
	fetcher.EXPECT().Fetch(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, u string) ([]byte, error) {
			page, err := site.fetch(ctx, u)
			if u == filmURL(2) {
				page = bytes.Replace(page, []byte(">7.5<"), []byte(">NaN<"), 1)
			}
			return page, err
		}).Times(4)

	sink := mocks.NewMockSink(ctrl)
	sink.EXPECT().BulkCreateFilms(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, films []kino.RawFilm) (int, error) {
			assert.Equal(t, expectTitles(3, 2), titles(films))
			return len(films), nil
		})

	res, err := newTestOrchestrator(t, fetcher, sink, 0, nil).Run(context.Background(), StrategyFanout)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Created)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, filmURL(2), res.Failed[0].URL)
	assert.Contains(t, res.Failed[0].Error, "rating")
}

func TestOrchestrator_ListingCappedAtTen(t *testing.T) {
	ctrl := gomock.NewController(t)
	site := &pageSite{n: 12}
	fetcher := mocks.NewMockFetcher(ctrl)
	fetcher.EXPECT().Fetch(gomock.Any(), gomock.Any()).DoAndReturn(site.fetch).Times(11)

	sink := mocks.NewMockSink(ctrl)
	sink.EXPECT().BulkCreateFilms(gomock.Any(), gomock.Len(10)).Return(10, nil)

	res, err := newTestOrchestrator(t, fetcher, sink, 0, nil).Run(context.Background(), StrategySequential)
	require.NoError(t, err)
	assert.Equal(t, 10, res.Found)
	assert.NotContains(t, site.fetchedURLs(), filmURL(10))
}

func TestOrchestrator_EmptyListingStoresNothing(t *testing.T) {
	for _, strategy := range Strategies {
		t.Run(string(strategy), func(t *testing.T) {
			ctrl := gomock.NewController(t)
			fetcher := mocks.NewMockFetcher(ctrl)
			fetcher.EXPECT().Fetch(gomock.Any(), testBase+DefaultListingPath).
				Return([]byte(`<html><body><p>redesigned</p></body></html>`), nil)

			sink := mocks.NewMockSink(ctrl)
			sink.EXPECT().BulkCreateFilms(gomock.Any(), gomock.Len(0)).Return(0, nil)

			res, err := newTestOrchestrator(t, fetcher, sink, 0, nil).Run(context.Background(), strategy)
			require.NoError(t, err)
			assert.Zero(t, res.Found)
			assert.Zero(t, res.Created)
		})
	}
}

func TestOrchestrator_ListingFetchFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	fetcher := mocks.NewMockFetcher(ctrl)
	fetcher.EXPECT().Fetch(gomock.Any(), testBase+DefaultListingPath).
		Return(nil, &FetchError{URL: testBase + DefaultListingPath, StatusCode: http.StatusServiceUnavailable})

	_, err := newTestOrchestrator(t, fetcher, mocks.NewMockSink(ctrl), 0, nil).Run(context.Background(), StrategyPool)
	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, http.StatusServiceUnavailable, fe.StatusCode)
}

func TestOrchestrator_UnknownStrategy(t *testing.T) {
	ctrl := gomock.NewController(t)
	o := newTestOrchestrator(t, mocks.NewMockFetcher(ctrl), mocks.NewMockSink(ctrl), 0, nil)

	_, err := o.Run(context.Background(), Strategy("parallel"))
	assert.ErrorIs(t, err, ErrUnknownStrategy)
}

func TestOrchestrator_SinkError(t *testing.T) {
	ctrl := gomock.NewController(t)
	site := &pageSite{n: 2}
	fetcher := mocks.NewMockFetcher(ctrl)
	fetcher.EXPECT().Fetch(gomock.Any(), gomock.Any()).DoAndReturn(site.fetch).Times(3)

	sink := mocks.NewMockSink(ctrl)
	dbErr := errors.New("database is locked")
	sink.EXPECT().BulkCreateFilms(gomock.Any(), gomock.Any()).Return(0, dbErr)

	_, err := newTestOrchestrator(t, fetcher, sink, 0, nil).Run(context.Background(), StrategyPool)
	require.ErrorIs(t, err, dbErr)
	assert.Contains(t, err.Error(), "store films")
}

func TestOrchestrator_FanoutCancelled(t *testing.T) {
	ctrl := gomock.NewController(t)
	ctx, cancel := context.WithCancel(context.Background())
	fetcher := mocks.NewMockFetcher(ctrl)
	fetcher.EXPECT().Fetch(gomock.Any(), testBase+DefaultListingPath).
		DoAndReturn(func(context.Context, string) ([]byte, error) {
			cancel()
			return listingPage(3), nil
		})
	fetcher.EXPECT().Fetch(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, u string) ([]byte, error) {
			return nil, &FetchError{URL: u, Err: ctx.Err()}
		}).Times(3)

	_, err := newTestOrchestrator(t, fetcher, mocks.NewMockSink(ctrl), 0, nil).Run(ctx, StrategyFanout)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOrchestrator_PublishesEvents(t *testing.T) {
	ctrl := gomock.NewController(t)
	site := &pageSite{n: 3, fail: map[int]error{1: errors.New("timeout")}}
	fetcher := mocks.NewMockFetcher(ctrl)
	fetcher.EXPECT().Fetch(gomock.Any(), gomock.Any()).DoAndReturn(site.fetch).Times(4)
	sink := mocks.NewMockSink(ctrl)
	sink.EXPECT().BulkCreateFilms(gomock.Any(), gomock.Len(2)).Return(2, nil)

	bus := events.NewBus(nil, discardLogger())
	defer bus.Close()
	ch := bus.SubscribeAll(10)

	_, err := newTestOrchestrator(t, fetcher, sink, 0, bus).Run(context.Background(), StrategyFanout)
	require.NoError(t, err)

	require.Len(t, ch, 3)
	started := (<-ch).(*events.PopulateStarted)
	assert.Equal(t, 3, started.Found)
	assert.Equal(t, "threaded", started.Strategy)

	failed := (<-ch).(*events.ScrapeJobFailed)
	assert.Equal(t, filmURL(1), failed.URL)
	assert.Equal(t, int64(1), failed.EntityID())
	assert.Equal(t, started.EntityID(), failed.RunID)

	done := (<-ch).(*events.PopulateCompleted)
	assert.Equal(t, 2, done.Created)
	assert.Equal(t, 1, done.Failed)
	assert.Empty(t, done.Error)
}

func TestNewOrchestrator_Validation(t *testing.T) {
	ctrl := gomock.NewController(t)
	f, s := mocks.NewMockFetcher(ctrl), mocks.NewMockSink(ctrl)

	_, err := NewOrchestrator(Config{}, nil, s, nil, nil)
	assert.Error(t, err)

	_, err = NewOrchestrator(Config{BaseURL: "not a url"}, f, s, nil, nil)
	assert.Error(t, err)

	o, err := NewOrchestrator(Config{}, f, s, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "https://kino.mail.ru/cinema/top/", o.ListingURL())
	assert.Equal(t, DefaultPoolSize, o.pool)

	o, err = NewOrchestrator(Config{BaseURL: "http://localhost:9000/", ListingPath: "top.html"}, f, s, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000/top.html", o.ListingURL())
}

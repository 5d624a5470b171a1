package scrape

import "github.com/vmunix/kinocat/pkg/kino"

// Job is one detail page of a run. Exactly one of Film or Err is set once
// the job has run.
type Job struct {
	Index int
	URL   string
	Film  kino.RawFilm
	Err   error
	done  bool
}

// Batch holds one slot per listing entry, in listing order. Workers only
// ever touch their own slot, so a Batch needs no locking while jobs run;
// it must not be read until they have all finished.
type Batch struct {
	jobs []Job
}

func newBatch(urls []string) *Batch {
	b := &Batch{jobs: make([]Job, len(urls))}
	for i, u := range urls {
		b.jobs[i] = Job{Index: i, URL: u}
	}
	return b
}

func (b *Batch) Len() int { return len(b.jobs) }

// Records returns the films of the successful jobs in listing order.
func (b *Batch) Records() []kino.RawFilm {
	out := make([]kino.RawFilm, 0, len(b.jobs))
	for _, j := range b.jobs {
		if j.done && j.Err == nil {
			out = append(out, j.Film)
		}
	}
	return out
}

// Failures returns the jobs that ran and failed, in listing order.
func (b *Batch) Failures() []Job {
	var out []Job
	for _, j := range b.jobs {
		if j.Err != nil {
			out = append(out, j)
		}
	}
	return out
}

// Err is the error of the first failed job in listing order.
func (b *Batch) Err() error {
	for _, j := range b.jobs {
		if j.Err != nil {
			return j.Err
		}
	}
	return nil
}

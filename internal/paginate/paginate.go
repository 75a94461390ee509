// Package paginate turns token-paginated list APIs into lazy page sequences.
package paginate

import (
	"context"
	"iter"
)

// Fetcher performs exactly one remote round trip of a paginated listing.
//
// Fetch receives the state carried over from the previous page and the
// continuation token ("" on the first call). It returns the page, the state
// for the next call and the next token. An empty next token ends the listing.
type Fetcher[S, P any] interface {
	Fetch(ctx context.Context, state S, token string) (page P, next S, nextToken string, err error)
}

// FetcherFunc adapts a plain function to a Fetcher.
type FetcherFunc[S, P any] func(ctx context.Context, state S, token string) (P, S, string, error)

// Fetch calls f.
func (f FetcherFunc[S, P]) Fetch(ctx context.Context, state S, token string) (P, S, string, error) {
	return f(ctx, state, token)
}

type pagination[S any] interface {
	isPagination()
}

type start[S any] struct {
	seed S
}

type hasMore[S any] struct {
	state S
	token string
}

type done struct{}

func (start[S]) isPagination()   {}
func (hasMore[S]) isPagination() {}
func (done) isPagination()       {}

func advance[S any](state S, token string) pagination[S] {
	if token == "" {
		return done{}
	}
	return hasMore[S]{state: state, token: token}
}

// Pages returns a lazy sequence of the pages produced by f, starting from seed.
//
// The first call is Fetch(ctx, seed, ""). Each later call uses the state and
// token returned by the previous one and happens only when the consumer asks
// for the next page. A failed fetch is yielded once as (zero, err) and ends
// the sequence; nothing is fetched after it.
func Pages[S, P any](ctx context.Context, seed S, f Fetcher[S, P]) iter.Seq2[P, error] {
	return func(yield func(P, error) bool) {
		var zero P
		var p pagination[S] = start[S]{seed: seed}

		for {
			var (
				state S
				token string
			)
			switch cur := p.(type) {
			case start[S]:
				state = cur.seed
			case hasMore[S]:
				if cur.token == "" {
					return
				}
				state, token = cur.state, cur.token
			default:
				return
			}

			if err := ctx.Err(); err != nil {
				yield(zero, err)
				return
			}

			page, next, nextToken, err := f.Fetch(ctx, state, token)
			if err != nil {
				yield(zero, err)
				return
			}
			p = advance(next, nextToken)

			if !yield(page, nil) {
				return
			}
		}
	}
}

// Items flattens a sequence of slice pages into a sequence of items, keeping
// page order. A page error is passed through once and ends the sequence.
func Items[T any](pages iter.Seq2[[]T, error]) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for page, err := range pages {
			if err != nil {
				var zero T
				yield(zero, err)
				return
			}
			for _, item := range page {
				if !yield(item, nil) {
					return
				}
			}
		}
	}
}

// Collect drains a sequence of slice pages, stopping at the first error.
func Collect[T any](pages iter.Seq2[[]T, error]) ([]T, error) {
	var all []T
	for page, err := range pages {
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
	}
	return all, nil
}

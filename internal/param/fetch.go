package param

import "context"

type Fetcher interface {
	Fetch(context.Context, string) (string, error)
}

// StaticFetcher hands back a fixed value regardless of path. Used when the
// API key is supplied directly through the environment.
type StaticFetcher struct {
	Value string
}

func (f *StaticFetcher) Fetch(context.Context, string) (string, error) {
	return f.Value, nil
}

package prop

import "context"

// Source produces the day's player list from the upstream projections API.
type Source interface {
	Fetch(ctx context.Context) ([]Player, error)
}

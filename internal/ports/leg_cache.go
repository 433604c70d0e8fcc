package ports

import "context"

// Cache for routed legs keyed by a normalized coordinate pair.
// A miss is reported with ok=false and a nil error.
type LegCache interface {
	Get(ctx context.Context, key string) (leg RoutedLeg, ok bool, err error)
	Put(ctx context.Context, key string, leg RoutedLeg) error
}

package snapshot

import (
	"fmt"
	"strings"
	"time"
)

const (
	// FreshnessWindow bounds how long a cached daily snapshot is reused.
	FreshnessWindow = 4 * time.Hour

	DefaultNamespace  = "default-app-id"
	DefaultCollection = "nba_props_cache"

	dayLayout = "2006-01-02"
)

// Entry is one day's cached player collection.
type Entry struct {
	Key       string
	Payload   string
	Timestamp time.Time
}

// Fresh reports whether the entry is younger than the freshness window at now.
func (e Entry) Fresh(now time.Time) bool {
	return now.Sub(e.Timestamp) < FreshnessWindow
}

// DayKey returns the cache key for the calendar day of now in loc.
func DayKey(now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return now.In(loc).Format(dayLayout)
}

// DocumentPath builds {namespace}/public/data/{collection}/{key}.
func DocumentPath(namespace, collection, key string) string {
	namespace = strings.Trim(strings.TrimSpace(namespace), "/")
	if namespace == "" {
		namespace = DefaultNamespace
	}
	collection = strings.Trim(strings.TrimSpace(collection), "/")
	if collection == "" {
		collection = DefaultCollection
	}
	return fmt.Sprintf("%s/public/data/%s/%s", namespace, collection, key)
}

// TruncateTimestamp drops sub-second precision; stored timestamps carry seconds only.
func TruncateTimestamp(t time.Time) time.Time {
	return time.Unix(t.Unix(), 0).UTC()
}

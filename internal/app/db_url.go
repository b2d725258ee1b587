package app

import (
	"net/url"
	"strings"
)

const preparedBinaryParam = "disable_prepared_binary_result"

// NormalizeDBURL sets lib/pq's disable_prepared_binary_result flag unless the
// DSN already carries it. Both URL and keyword/value DSNs are accepted.
func NormalizeDBURL(raw string, disablePreparedBinaryResult bool) string {
	if !disablePreparedBinaryResult {
		return raw
	}

	if !isURLDSN(raw) {
		if _, ok := keywordValue(raw, preparedBinaryParam); ok {
			return raw
		}
		return strings.TrimSpace(raw) + " " + preparedBinaryParam + "=yes"
	}

	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return raw
	}
	query := parsed.Query()
	if query.Get(preparedBinaryParam) != "" {
		return raw
	}
	query.Set(preparedBinaryParam, "yes")
	parsed.RawQuery = query.Encode()
	return parsed.String()
}

func dbNameFromURL(raw string) string {
	if isURLDSN(raw) {
		parsed, err := url.Parse(strings.TrimSpace(raw))
		if err != nil {
			return ""
		}
		return strings.TrimSpace(strings.TrimPrefix(parsed.Path, "/"))
	}

	name, _ := keywordValue(raw, "dbname")
	return name
}

func isURLDSN(raw string) bool {
	raw = strings.TrimSpace(raw)
	return strings.HasPrefix(raw, "postgres://") || strings.HasPrefix(raw, "postgresql://")
}

func keywordValue(dsn, key string) (string, bool) {
	for _, field := range strings.Fields(dsn) {
		k, v, ok := strings.Cut(field, "=")
		if ok && k == key {
			return strings.Trim(v, `"'`), true
		}
	}
	return "", false
}

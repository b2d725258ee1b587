package prop

import (
	"bytes"
	"fmt"
	"strconv"

	sonic "github.com/bytedance/sonic"
)

// HitRateValue keeps a hit rate exactly as the provider sent it: either a
// number (percentage) or a text record such as "3/5".
type HitRateValue struct {
	raw []byte
}

func HitRatePercent(v float64) HitRateValue {
	return HitRateValue{raw: []byte(strconv.FormatFloat(v, 'f', -1, 64))}
}

func HitRateRecord(v string) HitRateValue {
	raw, _ := sonic.Marshal(v)
	return HitRateValue{raw: raw}
}

func (v HitRateValue) IsZero() bool {
	return len(v.raw) == 0 || bytes.Equal(v.raw, []byte("null"))
}

// String renders the value for display: numbers as-is, text unquoted.
func (v HitRateValue) String() string {
	if v.IsZero() {
		return ""
	}
	if v.raw[0] == '"' {
		var s string
		if err := sonic.Unmarshal(v.raw, &s); err == nil {
			return s
		}
	}
	return string(v.raw)
}

func (v HitRateValue) MarshalJSON() ([]byte, error) {
	if len(v.raw) == 0 {
		return []byte("null"), nil
	}
	return v.raw, nil
}

func (v *HitRateValue) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		v.raw = nil
		return nil
	}
	switch trimmed[0] {
	case '"', 'n':
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		if _, err := strconv.ParseFloat(string(trimmed), 64); err != nil {
			return fmt.Errorf("invalid hit rate number %s: %w", trimmed, err)
		}
	default:
		return fmt.Errorf("hit rate must be a number or string, got %s", trimmed)
	}
	v.raw = append(v.raw[:0], trimmed...)
	return nil
}

package sources

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/kjannette/tariff-monitor/internal/models"
)

// maxRateItems caps how many rows a JSON rate feed contributes.
const maxRateItems = 10

// flexFloat accepts a JSON number, a finite numeric string (optionally with
// a trailing %), or null.
type flexFloat struct {
	V   float64
	Set bool
}

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "%")
		if s == "" {
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("not a number: %q", s)
		}
		f.V, f.Set = v, true
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	f.V, f.Set = v, true
	return nil
}

// decodeList accepts either a bare JSON array or an object wrapping the
// array under "data" or "items".
func decodeList[T any](body []byte) ([]T, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, errors.New("empty body")
	}
	if body[0] == '[' {
		var out []T
		if err := json.Unmarshal(body, &out); err != nil {
			return nil, fmt.Errorf("decode array: %w", err)
		}
		return out, nil
	}
	var wrapped struct {
		Data  []T `json:"data"`
		Items []T `json:"items"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, fmt.Errorf("decode object: %w", err)
	}
	if wrapped.Data != nil {
		return wrapped.Data, nil
	}
	if wrapped.Items != nil {
		return wrapped.Items, nil
	}
	return nil, errors.New("no list in response")
}

// ratePct renders a provider rate as given, without forcing decimals.
func ratePct(f flexFloat) string {
	return strconv.FormatFloat(max(f.V, 0), 'f', -1, 64) + "%"
}

// changePct renders a signed change; a missing or zero change is "0%".
func changePct(f flexFloat) string {
	switch {
	case !f.Set || f.V == 0:
		return "0%"
	case f.V > 0:
		return "+" + strconv.FormatFloat(f.V, 'f', -1, 64) + "%"
	default:
		return strconv.FormatFloat(f.V, 'f', -1, 64) + "%"
	}
}

func trendOf(f flexFloat) models.Trend {
	switch {
	case f.V > 0:
		return models.TrendUp
	case f.V < 0:
		return models.TrendDown
	default:
		return models.TrendStable
	}
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return strings.TrimSpace(s)
}

package parsers

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/geoassist/server/internal/assistant/model"
	errx "github.com/geoassist/server/internal/core/error"
	logx "github.com/geoassist/server/pkg/logger"
)

// ParseQueryParams turns the untrusted structured value decoded from a model
// reply into a fully populated QueryParams. Only total shape failure (nil,
// array, non-object) is an error; any individual field that is missing or of
// the wrong type falls back to its documented default, independently of the
// other fields.
func ParseQueryParams(raw any) (model.QueryParams, error) {
	obj, ok := raw.(map[string]any)
	if !ok || obj == nil {
		logx.Warn().
			Str("component", "query_parser").
			Str("type", fmt.Sprintf("%T", raw)).
			Msg("model reply is not a JSON object")
		return model.QueryParams{}, errx.Malformed(fmt.Errorf("expected JSON object, got %T", raw))
	}

	params := model.QueryParams{
		Where:             stringField(obj, "where", model.DefaultWhere),
		OutFields:         stringField(obj, "outFields", model.DefaultOutFields),
		OrderByFields:     stringField(obj, "orderByFields", ""),
		ResultRecordCount: recordCount(obj, "resultRecordCount"),
		Summary:           stringField(obj, "summary", model.DefaultSummary),
	}

	return params, nil
}

// stringField accepts the value only when it is a string whose trimmed form
// is non-empty; anything else yields the default.
func stringField(obj map[string]any, key, def string) string {
	s, ok := obj[key].(string)
	if !ok || strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

// recordCount accepts a number, or a string that parses as a finite decimal,
// rounds it to the nearest integer and clamps it into the allowed range.
// Everything else yields the default.
func recordCount(obj map[string]any, key string) int {
	f, ok := numeric(obj[key])
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return model.DefaultRecordCount
	}
	n := int(math.Round(f))
	if n < model.MinRecordCount {
		return model.MinRecordCount
	}
	if n > model.MaxRecordCount {
		return model.MaxRecordCount
	}
	return n
}

func numeric(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

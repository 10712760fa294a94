// Package features turns the comma-separated telemetry string into a FeatureWindow
// and names each value the way the persisted schema expects.
package features

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"battery-alarm-predictor/src/types"
)

var (
	ErrFeatureCount = errors.New("unexpected feature count")
	ErrNotNumeric   = errors.New("feature is not a finite number")
)

// Parse splits raw on commas and converts every token. It requires exactly
// types.FeatureCount finite numbers.
func Parse(raw string) (types.FeatureWindow, error) {
	var window types.FeatureWindow

	tokens := strings.Split(raw, ",")
	if len(tokens) != types.FeatureCount {
		return window, fmt.Errorf("%w: got %d, want %d", ErrFeatureCount, len(tokens), types.FeatureCount)
	}

	for i, token := range tokens {
		value, err := strconv.ParseFloat(strings.TrimSpace(token), 64)
		if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
			return window, fmt.Errorf("%w: position %d (%s) = %q", ErrNotNumeric, i, FieldName(i), token)
		}
		window[i/types.MetricsPerDay][i%types.MetricsPerDay] = value
	}

	return window, nil
}

// DayLabel maps an arrival-order day index to its schema label: 0 -> 14, 13 -> 1.
func DayLabel(dayIndex int) int {
	return types.Days - dayIndex
}

// FieldName returns the persisted name of the feature at flat position i.
func FieldName(i int) string {
	day, metric := i/types.MetricsPerDay, i%types.MetricsPerDay
	return fmt.Sprintf("%s_%d", types.Metrics[metric], DayLabel(day))
}

// FormatNumber renders v in the shortest form that parses back to the same float64.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

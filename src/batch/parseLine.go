package batch

import (
	"errors"
	"strings"

	"battery-alarm-predictor/src/pipeline"
)

var errShortLine = errors.New("line needs vin, date and features separated by commas")

// parseLine isolates vin and date as the first two comma fields. The rest of the line is
// the feature string and is passed on untouched.
func parseLine(line string) (vin, date, features string, err error) {
	parts := strings.SplitN(line, ",", 3)
	if len(parts) < 3 {
		vin = parts[0]
		if len(parts) == 2 {
			date = parts[1]
		}
		return vin, date, "", &pipeline.ValidationError{VIN: vin, Date: date, Err: errShortLine}
	}

	return parts[0], parts[1], parts[2], nil
}

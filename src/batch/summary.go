package batch

import (
	"fmt"
	"net/http"

	"battery-alarm-predictor/src/utils"

	"go.uber.org/multierr"
)

// LineOutcome is the result of scoring one line of a batch file.
type LineOutcome struct {
	Line                 int      `json:"line"`
	VIN                  string   `json:"vin"`
	Date                 string   `json:"date"`
	RequestID            string   `json:"request_id,omitempty"`
	PredictedProbability *float64 `json:"predicted_prob,omitempty"`
	Kind                 string   `json:"kind,omitempty"`
	Error                string   `json:"error,omitempty"`

	err error
}

func (o LineOutcome) Succeeded() bool { return o.err == nil }

type Summary struct {
	Object            string        `json:"object"`
	Total             int           `json:"total"`
	Succeeded         int           `json:"succeeded"`
	Failed            int           `json:"failed"`
	MeanProbability   float64       `json:"mean_predicted_prob"`
	StdDevProbability float64       `json:"stddev_predicted_prob"`
	Lines             []LineOutcome `json:"lines"`
}

func newSummary(object string, outcomes []LineOutcome) Summary {
	summary := Summary{Object: object, Total: len(outcomes), Lines: outcomes}

	var probs []float64
	for _, o := range outcomes {
		if o.Succeeded() {
			summary.Succeeded++
			probs = append(probs, *o.PredictedProbability)
		} else {
			summary.Failed++
		}
	}

	if len(probs) > 0 {
		summary.MeanProbability = utils.Average(probs)
		summary.StdDevProbability = utils.StandardDeviation(probs)
	}

	return summary
}

// Err combines every line failure, or returns nil when all lines succeeded.
func (s Summary) Err() error {
	var errs error
	for _, o := range s.Lines {
		if o.err != nil {
			errs = multierr.Append(errs, fmt.Errorf("line %d: %w", o.Line, o.err))
		}
	}
	return errs
}

// Status is 200 when nothing failed, 422 when every line failed and 207 otherwise.
func (s Summary) Status() int {
	switch {
	case s.Failed == 0:
		return http.StatusOK
	case s.Succeeded == 0:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusMultiStatus
	}
}

func (s Summary) String() string {
	return fmt.Sprintf("%s: %d/%d succeeded", s.Object, s.Succeeded, s.Total)
}

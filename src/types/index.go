package types

const (
	Days           = 14
	MetricsPerDay  = 6
	FeatureCount   = Days * MetricsPerDay
	FieldVIN       = "vin"
	FieldDate      = "date"
	FieldPredicted = "predicted_prob"
)

// Metric names in the order they appear within one day of the feature string.
var Metrics = [MetricsPerDay]string{
	"total_voltage",
	"total_current",
	"cell_max_voltage",
	"cell_min_voltage",
	"max_temperature",
	"min_temperature",
}

// FeatureWindow holds 14 daily observations in arrival order. Index 0 is day "14".
type FeatureWindow [Days][MetricsPerDay]float64

type ScoringRequest struct {
	VIN      string `json:"vin"`
	Date     string `json:"date"`
	Features string `json:"features"`
}

type ScoringResult struct {
	RequestID            string
	VIN                  string
	Date                 string
	PredictedProbability float64
	Features             FeatureWindow
}

// Field is one named value of a persisted record.
type Field struct {
	Name    string
	Text    string
	Number  float64
	Numeric bool
}

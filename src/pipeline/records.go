package pipeline

import (
	"battery-alarm-predictor/src/features"
	"battery-alarm-predictor/src/types"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
)

// recordFields lists every persisted field of result in schema order: key, vin, date,
// predicted_prob, then the metrics from day 14 down to day 1.
func recordFields(result types.ScoringResult, keyField string) []types.Field {
	fields := make([]types.Field, 0, 4+types.FeatureCount)
	fields = append(fields,
		types.Field{Name: keyField, Text: result.RequestID},
		types.Field{Name: types.FieldVIN, Text: result.VIN},
		types.Field{Name: types.FieldDate, Text: result.Date},
		types.Field{Name: types.FieldPredicted, Number: result.PredictedProbability, Numeric: true},
	)

	for day := range types.Days {
		for metric := range types.MetricsPerDay {
			fields = append(fields, types.Field{
				Name:    features.FieldName(day*types.MetricsPerDay + metric),
				Number:  result.Features[day][metric],
				Numeric: true,
			})
		}
	}

	return fields
}

func BuildKeyValueRecord(result types.ScoringResult, keyField string) types.KeyValueRecord {
	fields := recordFields(result, keyField)
	item := make(types.KeyValueRecord, len(fields))

	for _, f := range fields {
		if f.Numeric {
			item[f.Name] = &dynamodb.AttributeValue{N: aws.String(features.FormatNumber(f.Number))}
		} else {
			item[f.Name] = &dynamodb.AttributeValue{S: aws.String(f.Text)}
		}
	}

	return item
}

func BuildArchiveRecord(result types.ScoringResult, keyField string) types.ArchiveRecord {
	return types.ArchiveRecord{Fields: recordFields(result, keyField)}
}

package types

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go/service/dynamodb"
)

// KeyValueRecord is the DynamoDB item written for one scored event.
type KeyValueRecord map[string]*dynamodb.AttributeValue

// ArchiveRecord is the flat JSON document written to S3. Keys are emitted in field order.
type ArchiveRecord struct {
	Fields []Field
}

func (r ArchiveRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	for i, f := range r.Fields {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(f.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to encode key %q: %w", f.Name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')

		var value []byte
		if f.Numeric {
			value, err = json.Marshal(f.Number)
		} else {
			value, err = json.Marshal(f.Text)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to encode value of %q: %w", f.Name, err)
		}
		buf.Write(value)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

package jsonrpc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/invopop/jsonschema"
)

type idKind uint8

const (
	idNull idKind = iota
	idString
	idNumber
)

// RequestID is a JSON-RPC correlator: a string, a number, or null. The zero
// value is the null id. Numbers keep their literal text so that a decoded id
// encodes back byte-for-byte.
type RequestID struct {
	kind idKind
	str  string
	num  json.Number
}

// StringID returns a string request id.
func StringID(s string) RequestID {
	return RequestID{kind: idString, str: s}
}

// NumberID returns a numeric request id.
func NumberID(n int64) RequestID {
	return RequestID{kind: idNumber, num: json.Number(strconv.FormatInt(n, 10))}
}

// NullID returns the null request id used by error responses that cannot be
// correlated with a request.
func NullID() RequestID {
	return RequestID{}
}

// NewUUIDRequestID returns a random string id suitable for outbound requests.
func NewUUIDRequestID() RequestID {
	return StringID(uuid.NewString())
}

// NewRequestID creates a RequestID from a string or number. Any other value
// yields the null id.
func NewRequestID(value any) RequestID {
	switch v := value.(type) {
	case string:
		return StringID(v)
	case json.Number:
		return RequestID{kind: idNumber, num: v}
	case int:
		return NumberID(int64(v))
	case int8:
		return NumberID(int64(v))
	case int16:
		return NumberID(int64(v))
	case int32:
		return NumberID(int64(v))
	case int64:
		return NumberID(v)
	case uint:
		return RequestID{kind: idNumber, num: json.Number(strconv.FormatUint(uint64(v), 10))}
	case uint8, uint16, uint32, uint64:
		return RequestID{kind: idNumber, num: json.Number(fmt.Sprintf("%d", v))}
	case float32:
		return RequestID{kind: idNumber, num: json.Number(strconv.FormatFloat(float64(v), 'g', -1, 32))}
	case float64:
		return RequestID{kind: idNumber, num: json.Number(strconv.FormatFloat(v, 'g', -1, 64))}
	default:
		return RequestID{}
	}
}

// String returns the string representation of the ID. The null id renders as
// the empty string.
func (id RequestID) String() string {
	switch id.kind {
	case idString:
		return id.str
	case idNumber:
		return id.num.String()
	default:
		return ""
	}
}

// Value returns the underlying value: a string, a json.Number or nil.
func (id RequestID) Value() any {
	switch id.kind {
	case idString:
		return id.str
	case idNumber:
		return id.num
	default:
		return nil
	}
}

// IsNull reports whether the id is the JSON null.
func (id RequestID) IsNull() bool { return id.kind == idNull }

// IsString reports whether the id is a JSON string.
func (id RequestID) IsString() bool { return id.kind == idString }

// IsNumber reports whether the id is a JSON number.
func (id RequestID) IsNumber() bool { return id.kind == idNumber }

// Int64 returns the id as an integer when it is an integral number.
func (id RequestID) Int64() (int64, bool) {
	if id.kind != idNumber {
		return 0, false
	}
	n, err := id.num.Int64()
	if err != nil {
		return 0, false
	}
	return n, true
}

// Equal reports whether two ids are the same correlator. Numbers compare by
// literal text, so 1 and 1.0 are distinct ids.
func (id RequestID) Equal(other RequestID) bool {
	if id.kind != other.kind {
		return false
	}
	switch id.kind {
	case idString:
		return id.str == other.str
	case idNumber:
		return id.num == other.num
	default:
		return true
	}
}

// Key returns a string usable as a map key for request/response
// correlation. String and number ids never collide.
func (id RequestID) Key() string {
	switch id.kind {
	case idString:
		return "s:" + id.str
	case idNumber:
		return "n:" + id.num.String()
	default:
		return "null"
	}
}

// MarshalJSON implements json.Marshaler
func (id RequestID) MarshalJSON() ([]byte, error) {
	switch id.kind {
	case idString:
		return json.Marshal(id.str)
	case idNumber:
		return []byte(id.num.String()), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON implements json.Unmarshaler
func (id *RequestID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = RequestID{}
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("invalid JSON-RPC ID: %w", err)
	}

	switch v := v.(type) {
	case string:
		*id = StringID(v)
	case json.Number:
		*id = RequestID{kind: idNumber, num: v}
	default:
		return fmt.Errorf("JSON-RPC ID must be a string or number, got: %s", string(data))
	}
	return nil
}

// JSONSchema describes the id as a string, number or null.
func (RequestID) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		OneOf: []*jsonschema.Schema{
			{Type: "string"},
			{Type: "number"},
			{Type: "null"},
		},
	}
}

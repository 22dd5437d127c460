package jsonrpc

import (
	"unicode/utf8"

	"github.com/tidwall/gjson"
)

// Document is one parsed top-level JSON value as delivered by a transport.
// The JSON text is validated once; member lookups read from the parsed form.
type Document struct {
	raw  []byte
	root gjson.Result
	m    members
}

// members holds the first occurrence of each envelope member. A member that
// is absent has a zero gjson.Result; a member whose value is null Exists().
type members struct {
	jsonrpc gjson.Result
	id      gjson.Result
	method  gjson.Result
	params  gjson.Result
	result  gjson.Result
	err     gjson.Result
}

// ParseDocument validates data as a single UTF-8 encoded JSON value. It fails
// with KindInvalidJSON; it does not check the value's shape.
func ParseDocument(data []byte) (Document, error) {
	if !utf8.Valid(data) || !gjson.ValidBytes(data) {
		return Document{}, &CodecError{Kind: KindInvalidJSON, Raw: string(data)}
	}
	d := Document{raw: data, root: gjson.ParseBytes(data)}
	if d.root.IsObject() {
		d.root.ForEach(func(key, value gjson.Result) bool {
			var slot *gjson.Result
			switch key.Str {
			case "jsonrpc":
				slot = &d.m.jsonrpc
			case "id":
				slot = &d.m.id
			case "method":
				slot = &d.m.method
			case "params":
				slot = &d.m.params
			case "result":
				slot = &d.m.result
			case "error":
				slot = &d.m.err
			default:
				return true
			}
			if !slot.Exists() {
				*slot = value
			}
			return true
		})
	}
	return d, nil
}

// Raw returns the document text.
func (d Document) Raw() string { return string(d.raw) }

// IsObject reports whether the top-level value is an object.
func (d Document) IsObject() bool { return d.root.IsObject() }

// IsArray reports whether the top-level value is an array, i.e. a batch.
func (d Document) IsArray() bool { return d.root.IsArray() }

// Has reports whether the top-level object has the member name. A member
// whose value is null is present.
func (d Document) Has(name string) bool {
	if !d.root.IsObject() {
		return false
	}
	return d.root.Get(gjson.Escape(name)).Exists()
}

// ResponseShaped reports whether the document carries an id and no method.
// Such a document is a reply from the peer even when it fails to classify,
// and must not itself be answered.
func (d Document) ResponseShaped() bool {
	return d.m.id.Exists() && !d.m.method.Exists()
}

// ProbeID extracts a string or number id from a document regardless of
// whether it classifies, so that a failure reply can still be correlated.
// Anything else yields the null id.
func ProbeID(d Document) RequestID {
	id, err := readID(d.m.id, true)
	if err != nil {
		return NullID()
	}
	return id
}

func readID(r gjson.Result, allowNull bool) (RequestID, error) {
	switch r.Type {
	case gjson.String:
		return StringID(r.Str), nil
	case gjson.Number:
		return RequestID{kind: idNumber, num: numberLiteral(r.Raw)}, nil
	case gjson.Null:
		if allowNull {
			return NullID(), nil
		}
	}
	return RequestID{}, errWrongType("string or number", r)
}

// rawCopy detaches a member's raw text from the document buffer.
func rawCopy(r gjson.Result) []byte {
	if !r.Exists() {
		return nil
	}
	return append([]byte(nil), r.Raw...)
}

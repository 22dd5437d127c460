package jsonrpc

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"
)

func mustDecode(t *testing.T, doc string) Message {
	t.Helper()
	msg, err := NewCodec().DecodeBytes(context.Background(), []byte(doc))
	if err != nil {
		t.Fatalf("decode %s: %v", doc, err)
	}
	return msg
}

func decodeErr(t *testing.T, doc string) error {
	t.Helper()
	msg, err := NewCodec().DecodeBytes(context.Background(), []byte(doc))
	if err == nil {
		t.Fatalf("decode %s: expected error, got %T", doc, msg)
	}
	return err
}

func sameJSON(t *testing.T, a, b []byte) bool {
	t.Helper()
	var va, vb any
	if err := json.Unmarshal(a, &va); err != nil {
		t.Fatalf("unmarshal %s: %v", a, err)
	}
	if err := json.Unmarshal(b, &vb); err != nil {
		t.Fatalf("unmarshal %s: %v", b, err)
	}
	return reflect.DeepEqual(va, vb)
}

func TestDecodeScenarios(t *testing.T) {
	t.Run("request", func(t *testing.T) {
		req, ok := mustDecode(t, `{"jsonrpc":"2.0","id":1,"method":"ping"}`).(*Request)
		if !ok {
			t.Fatal("expected *Request")
		}
		if n, ok := req.ID.Int64(); !ok || n != 1 {
			t.Fatalf("id mismatch: %v", req.ID)
		}
		if req.Method != "ping" {
			t.Fatalf("method mismatch: %s", req.Method)
		}
		if req.Params != nil {
			t.Fatalf("expected absent params, got %s", req.Params)
		}
	})

	t.Run("notification", func(t *testing.T) {
		n, ok := mustDecode(t, `{"jsonrpc":"2.0","method":"notify"}`).(*Notification)
		if !ok {
			t.Fatal("expected *Notification")
		}
		if n.Method != "notify" {
			t.Fatalf("method mismatch: %s", n.Method)
		}
	})

	t.Run("response", func(t *testing.T) {
		res, ok := mustDecode(t, `{"jsonrpc":"2.0","id":1,"result":{"ok":true}}`).(*Response)
		if !ok {
			t.Fatal("expected *Response")
		}
		if !res.ID.Equal(NumberID(1)) {
			t.Fatalf("id mismatch: %v", res.ID)
		}
		if !sameJSON(t, res.Result, []byte(`{"ok":true}`)) {
			t.Fatalf("result mismatch: %s", res.Result)
		}
	})

	t.Run("error response", func(t *testing.T) {
		er, ok := mustDecode(t, `{"jsonrpc":"2.0","id":1,"error":{"code":-32600,"message":"bad"}}`).(*ErrorResponse)
		if !ok {
			t.Fatal("expected *ErrorResponse")
		}
		if !er.ID.Equal(NumberID(1)) {
			t.Fatalf("id mismatch: %v", er.ID)
		}
		if er.Error.Code != ErrorCodeInvalidRequest || er.Error.Message != "bad" {
			t.Fatalf("error mismatch: %+v", er.Error)
		}
		if er.Error.Data != nil {
			t.Fatalf("expected absent data, got %s", er.Error.Data)
		}
	})

	t.Run("ambiguous response", func(t *testing.T) {
		err := decodeErr(t, `{"jsonrpc":"2.0","id":1}`)
		if !errors.Is(err, ErrAmbiguousResponse) {
			t.Fatalf("expected ErrAmbiguousResponse, got %v", err)
		}
	})

	t.Run("wrong version", func(t *testing.T) {
		err := decodeErr(t, `{"jsonrpc":"1.0","method":"x"}`)
		if !errors.Is(err, ErrUnsupportedVersion) {
			t.Fatalf("expected ErrUnsupportedVersion, got %v", err)
		}
	})
}

func TestDecodeVersionCheckedFirst(t *testing.T) {
	docs := []string{
		`{"method":"x"}`,
		`{"id":1,"method":"x"}`,
		`{"id":1,"result":null}`,
		`{"id":1,"error":{"code":1,"message":"m"}}`,
		`{}`,
		`{"jsonrpc":2.0,"method":"x"}`,
		`{"jsonrpc":"2","method":"x"}`,
		`{"jsonrpc":null,"method":"x"}`,
		`{"jsonrpc":"2.0 ","id":1}`,
		`{"jsonrpc":"1.0"}`,
		// Shapes that would otherwise be ambiguous or unclassifiable.
		`{"jsonrpc":"3.0","id":1}`,
	}
	for _, doc := range docs {
		t.Run(doc, func(t *testing.T) {
			err := decodeErr(t, doc)
			if !errors.Is(err, ErrUnsupportedVersion) {
				t.Fatalf("expected ErrUnsupportedVersion, got %v", err)
			}
		})
	}
}

func TestDecodeFailures(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		want    error
		variant Variant
		field   string
	}{
		{name: "array", doc: `[{"jsonrpc":"2.0","method":"x"}]`, want: ErrMalformedEnvelope},
		{name: "string", doc: `"hello"`, want: ErrMalformedEnvelope},
		{name: "number", doc: `42`, want: ErrMalformedEnvelope},
		{name: "null", doc: `null`, want: ErrMalformedEnvelope},
		{name: "invalid json", doc: `{"jsonrpc":`, want: ErrInvalidJSON},
		{name: "empty", doc: ``, want: ErrInvalidJSON},
		{name: "invalid utf-8 in string", doc: "{\"jsonrpc\":\"2.0\",\"method\":\"a\xffb\"}", want: ErrInvalidJSON},
		{name: "invalid utf-8 in key", doc: "{\"jsonrpc\":\"2.0\",\"method\":\"x\",\"\xc3\":1}", want: ErrInvalidJSON},
		{name: "neither id nor method", doc: `{"jsonrpc":"2.0","result":1}`, want: ErrUnclassifiableMessage},
		{name: "bare envelope", doc: `{"jsonrpc":"2.0"}`, want: ErrUnclassifiableMessage},
		{name: "method not string", doc: `{"jsonrpc":"2.0","id":1,"method":7}`, want: ErrDeserialization, variant: VariantRequest, field: "method"},
		{name: "notification method null", doc: `{"jsonrpc":"2.0","method":null}`, want: ErrDeserialization, variant: VariantNotification, field: "method"},
		{name: "request id null", doc: `{"jsonrpc":"2.0","id":null,"method":"x"}`, want: ErrDeserialization, variant: VariantRequest, field: "id"},
		{name: "request id object", doc: `{"jsonrpc":"2.0","id":{},"method":"x"}`, want: ErrDeserialization, variant: VariantRequest, field: "id"},
		{name: "response id bool", doc: `{"jsonrpc":"2.0","id":true,"result":1}`, want: ErrDeserialization, variant: VariantResponse, field: "id"},
		{name: "error not object", doc: `{"jsonrpc":"2.0","id":1,"error":"boom"}`, want: ErrDeserialization, variant: VariantErrorResponse, field: "error"},
		{name: "error missing code", doc: `{"jsonrpc":"2.0","id":1,"error":{"message":"m"}}`, want: ErrDeserialization, variant: VariantErrorResponse, field: "error.code"},
		{name: "error code string", doc: `{"jsonrpc":"2.0","id":1,"error":{"code":"1","message":"m"}}`, want: ErrDeserialization, variant: VariantErrorResponse, field: "error.code"},
		{name: "error code fractional", doc: `{"jsonrpc":"2.0","id":1,"error":{"code":1.5,"message":"m"}}`, want: ErrDeserialization, variant: VariantErrorResponse, field: "error.code"},
		{name: "error missing message", doc: `{"jsonrpc":"2.0","id":1,"error":{"code":1}}`, want: ErrDeserialization, variant: VariantErrorResponse, field: "error.message"},
		{name: "error message number", doc: `{"jsonrpc":"2.0","id":1,"error":{"code":1,"message":2}}`, want: ErrDeserialization, variant: VariantErrorResponse, field: "error.message"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := decodeErr(t, tt.doc)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			var ce *CodecError
			if !errors.As(err, &ce) {
				t.Fatalf("expected *CodecError, got %T", err)
			}
			if ce.Variant != tt.variant {
				t.Fatalf("variant mismatch: want %s got %s", tt.variant, ce.Variant)
			}
			if ce.Field != tt.field {
				t.Fatalf("field mismatch: want %q got %q", tt.field, ce.Field)
			}
			if ce.Raw != tt.doc {
				t.Fatalf("raw mismatch: want %q got %q", tt.doc, ce.Raw)
			}
		})
	}
}

func TestDecodeNullIDIsPresent(t *testing.T) {
	t.Run("error response", func(t *testing.T) {
		er, ok := mustDecode(t, `{"jsonrpc":"2.0","id":null,"error":{"code":-32700,"message":"parse"}}`).(*ErrorResponse)
		if !ok {
			t.Fatal("expected *ErrorResponse")
		}
		if !er.ID.IsNull() {
			t.Fatalf("expected null id, got %v", er.ID)
		}
	})
	t.Run("response", func(t *testing.T) {
		res, ok := mustDecode(t, `{"jsonrpc":"2.0","id":null,"result":"x"}`).(*Response)
		if !ok {
			t.Fatal("expected *Response")
		}
		if !res.ID.IsNull() {
			t.Fatalf("expected null id, got %v", res.ID)
		}
	})
	t.Run("with method is not a notification", func(t *testing.T) {
		err := decodeErr(t, `{"jsonrpc":"2.0","id":null,"method":"x"}`)
		var ce *CodecError
		if !errors.As(err, &ce) || ce.Variant != VariantRequest {
			t.Fatalf("expected request deserialization failure, got %v", err)
		}
	})
	t.Run("null without result or error", func(t *testing.T) {
		err := decodeErr(t, `{"jsonrpc":"2.0","id":null}`)
		if !errors.Is(err, ErrAmbiguousResponse) {
			t.Fatalf("expected ErrAmbiguousResponse, got %v", err)
		}
	})
}

func TestDecodeErrorTakesPrecedenceOverResult(t *testing.T) {
	msg := mustDecode(t, `{"jsonrpc":"2.0","id":"a","result":{"ok":true},"error":{"code":-32603,"message":"internal"}}`)
	er, ok := msg.(*ErrorResponse)
	if !ok {
		t.Fatalf("expected *ErrorResponse, got %T", msg)
	}
	if er.Error.Code != ErrorCodeInternalError {
		t.Fatalf("code mismatch: %d", er.Error.Code)
	}

	out, err := Encode(er)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(out, &fields); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := fields["result"]; ok {
		t.Fatalf("encoded error response carries result: %s", out)
	}
}

func TestDecodeNullResultAndParams(t *testing.T) {
	res, ok := mustDecode(t, `{"jsonrpc":"2.0","id":2,"result":null}`).(*Response)
	if !ok {
		t.Fatal("expected *Response")
	}
	if string(res.Result) != "null" {
		t.Fatalf("expected present null result, got %q", res.Result)
	}

	n, ok := mustDecode(t, `{"jsonrpc":"2.0","method":"m","params":null}`).(*Notification)
	if !ok {
		t.Fatal("expected *Notification")
	}
	if string(n.Params) != "null" {
		t.Fatalf("expected present null params, got %q", n.Params)
	}
}

func TestDecodeMethodWinsOverResponseMembers(t *testing.T) {
	// id+method is a request even if result/error are present.
	req, ok := mustDecode(t, `{"jsonrpc":"2.0","id":3,"method":"m","result":1,"error":{"code":1,"message":"x"}}`).(*Request)
	if !ok {
		t.Fatal("expected *Request")
	}
	if req.Method != "m" {
		t.Fatalf("method mismatch: %s", req.Method)
	}
}

func TestDecodeDuplicateMemberFirstWins(t *testing.T) {
	req, ok := mustDecode(t, `{"jsonrpc":"2.0","id":1,"method":"first","method":"second"}`).(*Request)
	if !ok {
		t.Fatal("expected *Request")
	}
	if req.Method != "first" {
		t.Fatalf("expected first occurrence, got %s", req.Method)
	}
}

func TestDecodedPayloadIsDetached(t *testing.T) {
	buf := []byte(`{"jsonrpc":"2.0","method":"m","params":{"a":1}}`)
	n, ok := mustDecode(t, string(buf)).(*Notification)
	if !ok {
		t.Fatal("expected *Notification")
	}
	doc, err := ParseDocument(buf)
	if err != nil {
		t.Fatal(err)
	}
	msg, err := Decode(doc)
	if err != nil {
		t.Fatal(err)
	}
	for i := range buf {
		buf[i] = ' '
	}
	if string(msg.(*Notification).Params) != `{"a":1}` {
		t.Fatalf("params aliased the input buffer: %q", msg.(*Notification).Params)
	}
	if string(n.Params) != `{"a":1}` {
		t.Fatalf("params mismatch: %q", n.Params)
	}
}

func TestRoundTrip(t *testing.T) {
	docs := []string{
		`{"jsonrpc":"2.0","id":1,"method":"ping"}`,
		`{"jsonrpc":"2.0","id":"abc","method":"tools/call","params":{"name":"echo","arguments":{"m":[1,2,3]}}}`,
		`{"jsonrpc":"2.0","id":12345678901234567890,"method":"big"}`,
		`{"jsonrpc":"2.0","id":1.5,"method":"fractional"}`,
		`{"jsonrpc":"2.0","method":"notify"}`,
		`{"jsonrpc":"2.0","method":"notifications/progress","params":{"progressToken":"t","progress":1}}`,
		`{"jsonrpc":"2.0","method":"m","params":[1,"two",null]}`,
		`{"jsonrpc":"2.0","id":1,"result":{"ok":true}}`,
		`{"jsonrpc":"2.0","id":"x","result":null}`,
		`{"jsonrpc":"2.0","id":null,"result":[]}`,
		`{"jsonrpc":"2.0","id":1,"error":{"code":-32600,"message":"bad"}}`,
		`{"jsonrpc":"2.0","id":null,"error":{"code":-32700,"message":"parse error","data":{"offset":3}}}`,
		`{"jsonrpc":"2.0","id":"q","error":{"code":7,"message":"m","data":null}}`,
		` { "result" : 1 , "id" : 9 , "jsonrpc" : "2.0" } `,
	}
	for _, doc := range docs {
		t.Run(doc, func(t *testing.T) {
			msg := mustDecode(t, doc)
			out, err := Encode(msg)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			if !sameJSON(t, []byte(doc), out) {
				t.Fatalf("round trip mismatch:\n in: %s\nout: %s", doc, out)
			}
			again := mustDecode(t, string(out))
			if again.Variant() != msg.Variant() {
				t.Fatalf("variant changed: %s -> %s", msg.Variant(), again.Variant())
			}
		})
	}
}

func TestRoundTripPreservesNumberIDText(t *testing.T) {
	msg := mustDecode(t, `{"jsonrpc":"2.0","id":12345678901234567890,"method":"big"}`)
	out, err := Encode(msg)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), `"id":12345678901234567890`) {
		t.Fatalf("number id was not preserved: %s", out)
	}
}

func TestEncodeNotificationNeverEmitsID(t *testing.T) {
	for _, n := range []*Notification{
		{Method: "a"},
		{Method: "b", Params: json.RawMessage(`{"x":1}`)},
		{Method: "c", Params: json.RawMessage(`null`)},
	} {
		out, err := Encode(n)
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(out, &fields); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if _, ok := fields["id"]; ok {
			t.Fatalf("notification emitted id: %s", out)
		}
		if string(fields["jsonrpc"]) != `"2.0"` {
			t.Fatalf("jsonrpc mismatch: %s", out)
		}
	}
}

func TestEncodeCanonicalFields(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
		want string
	}{
		{
			name: "request",
			msg:  &Request{ID: StringID("1"), Method: "ping"},
			want: `{"jsonrpc":"2.0","id":"1","method":"ping"}`,
		},
		{
			name: "response with unset result",
			msg:  &Response{ID: NumberID(4)},
			want: `{"jsonrpc":"2.0","id":4,"result":null}`,
		},
		{
			name: "error response with null id",
			msg:  &ErrorResponse{Error: Error{Code: ErrorCodeParseError, Message: "parse"}},
			want: `{"jsonrpc":"2.0","id":null,"error":{"code":-32700,"message":"parse"}}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Encode(tt.msg)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			if string(out) != tt.want {
				t.Fatalf("encode mismatch:\nwant %s\n got %s", tt.want, out)
			}
		})
	}
}

type foreignMessage struct {
	*Request
}

func TestEncodeUnknownVariant(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
		typ  string
	}{
		{name: "foreign type", msg: foreignMessage{Request: &Request{ID: NumberID(1), Method: "x"}}, typ: "jsonrpc.foreignMessage"},
		{name: "nil request", msg: (*Request)(nil), typ: "*jsonrpc.Request"},
		{name: "nil interface", msg: nil, typ: "<nil>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Encode(tt.msg)
			if !errors.Is(err, ErrUnknownVariant) {
				t.Fatalf("expected ErrUnknownVariant, got %v", err)
			}
			var ce *CodecError
			if !errors.As(err, &ce) || ce.Type != tt.typ {
				t.Fatalf("type mismatch: want %q, got %+v", tt.typ, ce)
			}
		})
	}
}

func TestEncodeRejectsInvalidValues(t *testing.T) {
	_, err := Encode(&Request{Method: "x"})
	if !errors.Is(err, ErrEncoding) {
		t.Fatalf("expected ErrEncoding for null request id, got %v", err)
	}

	_, err = Encode(&Notification{Method: "x", Params: json.RawMessage(`{not json`)})
	if !errors.Is(err, ErrEncoding) {
		t.Fatalf("expected ErrEncoding for invalid params, got %v", err)
	}
}

func TestObserverSeesEveryDecision(t *testing.T) {
	var (
		mu         sync.Mutex
		classified []Variant
		rejected   []ErrorKind
		raws       []string
	)
	obs := ObserverFuncs{
		OnClassified: func(_ context.Context, v Variant, raw string) {
			mu.Lock()
			defer mu.Unlock()
			classified = append(classified, v)
			raws = append(raws, raw)
		},
		OnRejected: func(_ context.Context, kind ErrorKind, raw string, _ error) {
			mu.Lock()
			defer mu.Unlock()
			rejected = append(rejected, kind)
			raws = append(raws, raw)
		},
	}
	c := NewCodec(WithObserver(obs))
	ctx := context.Background()

	inputs := []string{
		`{"jsonrpc":"2.0","id":1,"method":"ping"}`,
		`{"jsonrpc":"2.0","method":"notify"}`,
		`{"jsonrpc":"2.0","id":1,"result":{}}`,
		`{"jsonrpc":"2.0","id":1,"error":{"code":1,"message":"m"}}`,
		`{"jsonrpc":"2.0","id":1}`,
		`{"jsonrpc":"1.0","method":"x"}`,
		`[]`,
		`{`,
	}
	for _, in := range inputs {
		_, _ = c.DecodeBytes(ctx, []byte(in))
	}
	_, _ = c.Encode(ctx, foreignMessage{})

	wantClassified := []Variant{VariantRequest, VariantNotification, VariantResponse, VariantErrorResponse}
	if !reflect.DeepEqual(classified, wantClassified) {
		t.Fatalf("classified mismatch: %v", classified)
	}
	wantRejected := []ErrorKind{KindAmbiguousResponse, KindUnsupportedVersion, KindMalformedEnvelope, KindInvalidJSON, KindUnknownVariant}
	if !reflect.DeepEqual(rejected, wantRejected) {
		t.Fatalf("rejected mismatch: %v", rejected)
	}
	if !reflect.DeepEqual(raws[:len(inputs)], inputs) {
		t.Fatalf("raw text mismatch: %q", raws)
	}
}

func TestCodecConcurrentUse(t *testing.T) {
	c := NewCodec()
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				req, err := NewRequest(NumberID(int64(i*1000+j)), "ping", map[string]int{"n": j})
				if err != nil {
					t.Error(err)
					return
				}
				out, err := c.Encode(ctx, req)
				if err != nil {
					t.Error(err)
					return
				}
				msg, err := c.DecodeBytes(ctx, out)
				if err != nil {
					t.Error(err)
					return
				}
				if got := msg.(*Request); !got.ID.Equal(req.ID) {
					t.Errorf("id mismatch: %v != %v", got.ID, req.ID)
					return
				}
			}
		}(i)
	}
	wg.Wait()
}

func TestErrorResponseFor(t *testing.T) {
	err := decodeErr(t, `{"jsonrpc":"2.0","id":"7"}`)
	resp := ErrorResponseFor(err, StringID("7"))
	if resp.Error.Code != ErrorCodeInvalidRequest {
		t.Fatalf("code mismatch: %d", resp.Error.Code)
	}
	if !resp.ID.Equal(StringID("7")) {
		t.Fatalf("id mismatch: %v", resp.ID)
	}

	parse := ErrorResponseFor(decodeErr(t, `{`), NullID())
	if parse.Error.Code != ErrorCodeParseError {
		t.Fatalf("parse code mismatch: %d", parse.Error.Code)
	}

	other := ErrorResponseFor(errors.New("boom"), NumberID(1))
	if other.Error.Code != ErrorCodeInternalError || other.Error.Message != "boom" {
		t.Fatalf("unexpected error: %+v", other.Error)
	}
}

func TestProbeID(t *testing.T) {
	tests := []struct {
		doc  string
		want RequestID
	}{
		{doc: `{"jsonrpc":"1.0","id":"abc","method":"x"}`, want: StringID("abc")},
		{doc: `{"jsonrpc":"2.0","id":5}`, want: NumberID(5)},
		{doc: `{"jsonrpc":"2.0","id":{"x":1}}`, want: NullID()},
		{doc: `{"jsonrpc":"2.0"}`, want: NullID()},
		{doc: `[1,2]`, want: NullID()},
	}
	for _, tt := range tests {
		doc, err := ParseDocument([]byte(tt.doc))
		if err != nil {
			t.Fatal(err)
		}
		if got := ProbeID(doc); !got.Equal(tt.want) {
			t.Fatalf("%s: want %v got %v", tt.doc, tt.want, got)
		}
	}
}

func TestDocumentResponseShaped(t *testing.T) {
	tests := []struct {
		doc  string
		want bool
	}{
		{`{"jsonrpc":"2.0","id":1,"result":1}`, true},
		{`{"jsonrpc":"2.0","id":1,"error":"boom"}`, true},
		{`{"jsonrpc":"2.0","id":null}`, true},
		{`{"jsonrpc":"1.0","id":2,"result":1}`, true},
		{`{"jsonrpc":"2.0","id":1,"method":"x"}`, false},
		{`{"jsonrpc":"2.0","method":"x"}`, false},
		{`{"jsonrpc":"2.0"}`, false},
		{`[{"id":1}]`, false},
	}
	for _, tt := range tests {
		doc, err := ParseDocument([]byte(tt.doc))
		if err != nil {
			t.Fatal(err)
		}
		if got := doc.ResponseShaped(); got != tt.want {
			t.Errorf("%s: ResponseShaped() = %v, want %v", tt.doc, got, tt.want)
		}
	}
}

func TestDocumentHas(t *testing.T) {
	doc, err := ParseDocument([]byte(`{"id":null,"a.b":1}`))
	if err != nil {
		t.Fatal(err)
	}
	if !doc.Has("id") {
		t.Fatal("null member should be present")
	}
	if !doc.Has("a.b") {
		t.Fatal("member with a dot should be found literally")
	}
	if doc.Has("method") {
		t.Fatal("absent member reported present")
	}
}

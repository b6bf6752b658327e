package consolesdk

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Envelope is the canonical response shape every successful call resolves to.
// Code is always 0 on an Envelope returned by the Client.
type Envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// HasData reports whether the envelope carries a non-null data payload.
func (e *Envelope) HasData() bool {
	return len(e.Data) > 0
}

// Decode unmarshals the envelope data into v.
func (e *Envelope) Decode(v any) error {
	if !e.HasData() {
		return newMalformedError("response has no data")
	}
	if err := json.Unmarshal(e.Data, v); err != nil {
		return newMalformedError("failed to decode data: %v", err)
	}
	return nil
}

// DecodeData unmarshals the envelope data into a new T.
func DecodeData[T any](env *Envelope) (T, error) {
	var out T
	if err := env.Decode(&out); err != nil {
		return out, err
	}
	return out, nil
}

// ============================================================================
// Success Recognizers
// ============================================================================

// rawResponse is a 2xx body split into the fields the recognizers look at.
type rawResponse struct {
	// hasCode is true when a non-null "code" field is present.
	hasCode bool
	// code is set only when "code" is a JSON number.
	code *float64

	// data is nil when "data" is absent or null.
	data    json.RawMessage
	message string
	msg     string
}

// Recognizer is a named predicate that marks a raw backend response as success.
type Recognizer struct {
	Name  string
	Match func(r rawResponse) bool
}

// SuccessRecognizers lists the tolerated success shapes in precedence order.
// A response matching none of them is an application failure.
//
//  1. code_zero: "code" is the number 0
//  2. code_200:  "code" is the number 200
//  3. bare_data: "code" is absent or null and "data" is present and non-null
var SuccessRecognizers = []Recognizer{
	{
		Name:  "code_zero",
		Match: func(r rawResponse) bool { return r.code != nil && *r.code == 0 },
	},
	{
		Name:  "code_200",
		Match: func(r rawResponse) bool { return r.code != nil && *r.code == 200 },
	},
	{
		Name:  "bare_data",
		Match: func(r rawResponse) bool { return !r.hasCode && r.data != nil },
	},
}

// recognize returns the name of the first matching recognizer, or "".
func recognize(r rawResponse) string {
	for _, rec := range SuccessRecognizers {
		if rec.Match(r) {
			return rec.Name
		}
	}
	return ""
}

// ============================================================================
// Canonicalization
// ============================================================================

// Canonicalize classifies a 2xx response body and rewrites it into the
// canonical Envelope. It has no side effects. Bodies matching no recognizer
// yield a KindApplication *Error carrying the backend message.
func Canonicalize(status int, body []byte) (*Envelope, error) {
	raw, ok := parseRaw(body)
	if ok && recognize(raw) != "" {
		message := firstNonEmpty(raw.message, raw.msg)
		if message == "" {
			message = defaultSuccessMessage
		}
		return &Envelope{Code: 0, Message: message, Data: raw.data}, nil
	}

	appErr := &Error{
		Kind:       KindApplication,
		StatusCode: status,
		Message:    defaultFailureMessage,
		Body:       body,
	}
	if ok {
		if msg := firstNonEmpty(raw.message, raw.msg); msg != "" {
			appErr.Message = msg
		}
		if raw.code != nil {
			appErr.Code = int(*raw.code)
		}
	}
	return nil, appErr
}

// parseRaw splits a JSON object body into a rawResponse. It returns false when
// the body is not a JSON object.
func parseRaw(body []byte) (rawResponse, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		return rawResponse{}, false
	}

	var r rawResponse

	if code, ok := fields["code"]; ok && !isNull(code) {
		r.hasCode = true
		var n float64
		if err := json.Unmarshal(code, &n); err == nil {
			r.code = &n
		}
	}

	if data, ok := fields["data"]; ok && !isNull(data) {
		r.data = data
	}

	r.message = stringField(fields, "message")
	r.msg = stringField(fields, "msg")

	return r, true
}

func stringField(fields map[string]json.RawMessage, key string) string {
	raw, ok := fields[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// String is used when logging envelopes.
func (e *Envelope) String() string {
	return fmt.Sprintf("code=%d message=%q data=%dB", e.Code, e.Message, len(e.Data))
}

// Package viewstate decodes and encodes the binary wire format produced by
// the LosFormatter/ObjectStateFormatter serializers ASP.NET uses to persist
// page ViewState in a Base64-framed hidden form field. Decode yields a
// typed Value tree; Encode reverses the process. Structured decode never
// fails outright on in-band malformation — unrecognized tags surface as
// Unknown markers and oversized collections clamp to empty — so failures
// from Decode are limited to the input not being usable at all (empty,
// not valid Base64, or too structurally broken for even the fallback
// extractor to salvage anything).
package viewstate

import (
	"encoding/base64"
	"errors"
	"net/url"
	"strings"
)

var (
	// ErrEmptyInput is returned when the input is empty, or decodes via
	// Base64 to zero bytes.
	ErrEmptyInput = errors.New("viewstate: empty input")

	// ErrBadBase64 is returned when the (possibly URL-decoded) input
	// cannot be Base64-decoded.
	ErrBadBase64 = errors.New("viewstate: input is not valid base64")

	// ErrMalformedStructure is returned when structured decode fails and
	// the fallback extractor could not salvage any content either.
	ErrMalformedStructure = errors.New("viewstate: malformed viewstate structure")

	// ErrNothingToEncode is returned by Encode when called with no value.
	ErrNothingToEncode = errors.New("No data to encode")
)

const badInputSuggestion = "Make sure the input is a valid Base64-encoded ASP.NET ViewState string"

// DecodeError is the error type Decode returns for a failed decode. It
// carries a user-facing Suggestion alongside the underlying sentinel so
// callers building an editor UI can surface actionable text without
// string-matching the error message.
type DecodeError struct {
	Err        error
	Suggestion string
}

func (e *DecodeError) Error() string { return e.Err.Error() }
func (e *DecodeError) Unwrap() error { return e.Err }

// DecodeResult is the successful outcome of Decode.
type DecodeResult struct {
	Value   Value
	Stats   Stats
	RawSize int
	// Note is set when the value came from the fallback extractor rather
	// than the structured parser, or when structural parsing was skipped
	// for an oversized input.
	Note string
}

// EncodeResult is the successful outcome of Encode.
type EncodeResult struct {
	Encoded string
	Size    int
}

// sanitizeInput implements §4.11's decode-side sanitizer: trim whitespace,
// speculatively URL-decode if a '%' is present (keeping the original on
// failure), then Base64-decode.
func sanitizeInput(raw string) ([]byte, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil, ErrEmptyInput
	}
	if strings.Contains(text, "%") {
		if unescaped, err := url.QueryUnescape(text); err == nil {
			text = unescaped
		}
	}
	data, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return nil, ErrBadBase64
	}
	if len(data) == 0 {
		return nil, ErrEmptyInput
	}
	return data, nil
}

// Decode parses a Base64-encoded ViewState string into a Value tree.
func Decode(text string, opts ...Option) (DecodeResult, error) {
	options := defaultDecodeOptions()
	for _, opt := range opts {
		opt(&options)
	}

	data, err := sanitizeInput(text)
	if err != nil {
		return DecodeResult{}, &DecodeError{Err: err, Suggestion: badInputSuggestion}
	}

	if options.maxInputSize > 0 && len(data) > options.maxInputSize {
		return DecodeResult{
			Value:   runFallbackExtractor(data, options),
			RawSize: len(data),
			Note:    "input exceeds the configured maximum size; structural parsing skipped",
		}, nil
	}

	value, stats, malformed := decodeStream(data, options)
	if !malformed {
		return DecodeResult{Value: value, Stats: stats, RawSize: len(data)}, nil
	}

	fallback := runFallbackExtractor(data, options)
	if fallbackHasContent(fallback) {
		return DecodeResult{
			Value:   fallback,
			RawSize: len(data),
			Note:    "structured parse failed; falling back to content extraction",
		}, nil
	}
	return DecodeResult{}, &DecodeError{Err: ErrMalformedStructure, Suggestion: badInputSuggestion}
}

func fallbackHasContent(v Value) bool {
	if v.Kind() != KindMap {
		return false
	}
	for _, entry := range v.AsMap() {
		if entry.Key == "content" {
			return len(entry.Value.AsMap()) > 0
		}
	}
	return false
}

// Encode renders v as a framed, Base64-encoded ViewState string. A nil v
// represents "no current value" and yields ErrNothingToEncode; an explicit
// Null Value encodes normally.
func Encode(v *Value) (EncodeResult, error) {
	if v == nil {
		return EncodeResult{}, ErrNothingToEncode
	}
	framed := encodeFramed(*v)
	return EncodeResult{
		Encoded: base64.StdEncoding.EncodeToString(framed),
		Size:    len(framed),
	}, nil
}

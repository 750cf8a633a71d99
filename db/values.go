/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package db

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// MissingValuePlaceholder is shown for declared parameters without a value.
const MissingValuePlaceholder = "Нет данных"

// ValueKind tags the variant held by a Value.
type ValueKind int

// ValueKind variants.
const (
	ValueMissing ValueKind = iota
	ValueNumeric
	ValueCategorical
	ValueText
)

func (k ValueKind) String() string {
	switch k {
	case ValueNumeric:
		return "numeric"
	case ValueCategorical:
		return "categorical"
	case ValueText:
		return "text"
	default:
		return "missing"
	}
}

// MarshalText encodes the kind by name.
func (k ValueKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name written by MarshalText.
func (k *ValueKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "missing":
		*k = ValueMissing
	case "numeric":
		*k = ValueNumeric
	case "categorical":
		*k = ValueCategorical
	case "text":
		*k = ValueText
	default:
		return fmt.Errorf("%w: unknown value kind %q", ErrMalformedData, text)
	}
	return nil
}

// Value is a single parameter measurement. Raw keeps the text as entered
// (e.g. "140 г/л"); Number is set for numeric values.
type Value struct {
	Kind   ValueKind
	Raw    string
	Number float64
}

// MissingValue returns the missing variant.
func MissingValue() Value {
	return Value{Kind: ValueMissing}
}

// ParseValue classifies raw text for the given reference.
func ParseValue(raw string, ref ParameterReference) Value {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return MissingValue()
	}

	if ref.IsCategorical() {
		return Value{Kind: ValueCategorical, Raw: trimmed}
	}

	if number, ok := extractNumber(trimmed); ok {
		return Value{Kind: ValueNumeric, Raw: trimmed, Number: number}
	}

	return Value{Kind: ValueText, Raw: trimmed}
}

// Numeric returns the numeric reading of the value, if any. Categorical and
// text values are scanned for a leading number too, so "6,2 (повтор)" still
// evaluates.
func (v Value) Numeric() (float64, bool) {
	switch v.Kind {
	case ValueNumeric:
		return v.Number, true
	case ValueMissing:
		return 0, false
	default:
		return extractNumber(v.Raw)
	}
}

// String returns the display text, with the placeholder for missing values.
func (v Value) String() string {
	if v.Kind == ValueMissing {
		return MissingValuePlaceholder
	}
	return v.Raw
}

var numberPattern = regexp.MustCompile(`-?(?:\d+(?:[.,]\d+)?|[.,]\d+)`)

// extractNumber returns the first decimal number in s. A comma decimal
// separator is read as a dot, a Unicode minus sign as "-".
func extractNumber(s string) (float64, bool) {
	match := numberPattern.FindString(strings.ReplaceAll(s, "\u2212", "-"))
	if match == "" {
		return 0, false
	}

	number, err := strconv.ParseFloat(strings.Replace(match, ",", ".", 1), 64)
	if err != nil {
		return 0, false
	}

	return number, true
}

// formatBound prints a range bound without trailing zeros.
func formatBound(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// ParameterValues maps parameter names to raw text values.
type ParameterValues map[string]string

// Names returns the parameter names sorted.
func (p ParameterValues) Names() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// encodePayload serializes values as a JSON object of strings. Blank values
// are omitted.
func encodePayload(values ParameterValues) (string, error) {
	clean := make(map[string]string, len(values))
	for name, raw := range values {
		if trimmed := strings.TrimSpace(raw); trimmed != "" {
			clean[name] = trimmed
		}
	}

	encoded, err := json.Marshal(clean)
	if err != nil {
		return "", fmt.Errorf("failed to encode result data: %w", err)
	}

	return string(encoded), nil
}

// decodePayload parses a stored payload. Anything other than a single JSON
// object yields ErrMalformedData. Null members decode as blank values.
func decodePayload(raw string) (ParameterValues, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	var object map[string]interface{}
	if err := dec.Decode(&object); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedData, err)
	}

	if object == nil {
		return nil, fmt.Errorf("%w: payload is not an object", ErrMalformedData)
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after payload", ErrMalformedData)
	}

	values := make(ParameterValues, len(object))
	for name, member := range object {
		values[name] = memberText(member)
	}

	return values, nil
}

func memberText(member interface{}) string {
	switch v := member.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	default:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(v); err != nil {
			return fmt.Sprint(v)
		}
		return strings.TrimSpace(buf.String())
	}
}

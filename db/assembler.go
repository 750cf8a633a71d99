/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package db

import "strings"

// RawResultName names the single entry shown when a payload cannot be decoded.
const RawResultName = "Результат"

// ParameterAnnotation is one row of an annotated result.
type ParameterAnnotation struct {
	Name       string    `json:"name"`
	Value      string    `json:"value"`
	Kind       ValueKind `json:"kind"`
	Unit       string    `json:"unit"`
	NormalMin  *float64  `json:"normal_min"`
	NormalMax  *float64  `json:"normal_max"`
	Expected   string    `json:"expected,omitempty"`
	IsNormal   *bool     `json:"is_normal"`
	Undeclared bool      `json:"undeclared,omitempty"`
}

// NormalRange formats the annotation's range for display.
func (a ParameterAnnotation) NormalRange() string {
	return ParameterReference{NormalMin: a.NormalMin, NormalMax: a.NormalMax, Expected: a.Expected}.DisplayRange()
}

// Judgment returns a short verdict for reports: "Норма", "Отклонение" or "".
func (a ParameterAnnotation) Judgment() string {
	if a.IsNormal == nil {
		return ""
	}
	if *a.IsNormal {
		return "Норма"
	}
	return "Отклонение"
}

// SplitParameters parses the comma-delimited parameter list of an analysis type.
func SplitParameters(list string) []string {
	var params []string
	for _, part := range strings.Split(list, ",") {
		if name := strings.TrimSpace(part); name != "" {
			params = append(params, name)
		}
	}
	return params
}

// JoinParameters is the inverse of SplitParameters.
func JoinParameters(params []string) string {
	return strings.Join(params, ",")
}

// AssembleParameters annotates a stored payload against the declared
// parameters of its analysis type. Declared parameters come first in declared
// order; any extra payload keys follow sorted by name and are flagged
// undeclared. A nil or undecodable payload yields a single raw entry.
func AssembleParameters(refs *ReferenceTable, declared []string, payload *string) []ParameterAnnotation {
	if payload == nil {
		logger.Warn("Result payload is empty", "error", ErrMalformedData)
		return []ParameterAnnotation{rawAnnotation("")}
	}

	values, err := decodePayload(*payload)
	if err != nil {
		logger.Warn("Falling back to raw result payload", "error", err)
		return []ParameterAnnotation{rawAnnotation(*payload)}
	}

	annotations := make([]ParameterAnnotation, 0, len(declared)+len(values))
	seen := make(map[string]bool, len(declared))

	for _, name := range declared {
		if seen[name] {
			continue
		}
		seen[name] = true

		raw, ok := values[name]
		if !ok {
			raw = ""
		}
		annotations = append(annotations, annotate(refs, name, raw, false))
	}

	for _, name := range values.Names() {
		if seen[name] {
			continue
		}
		annotations = append(annotations, annotate(refs, name, values[name], true))
	}

	return annotations
}

func annotate(refs *ReferenceTable, name, raw string, undeclared bool) ParameterAnnotation {
	ref := refs.Lookup(name)
	value := ParseValue(raw, ref)

	return ParameterAnnotation{
		Name:       name,
		Value:      value.String(),
		Kind:       value.Kind,
		Unit:       ref.Unit,
		NormalMin:  ref.NormalMin,
		NormalMax:  ref.NormalMax,
		Expected:   ref.Expected,
		IsNormal:   IsNormal(ref, value),
		Undeclared: undeclared,
	}
}

func rawAnnotation(raw string) ParameterAnnotation {
	return ParameterAnnotation{
		Name:  RawResultName,
		Value: raw,
		Kind:  ValueText,
	}
}

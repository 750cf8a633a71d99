/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package db

import (
	"context"
	"fmt"
)

// ParameterReference is the normal range for a single lab parameter.
// Categorical parameters have no bounds and carry the expected result text.
type ParameterReference struct {
	Name      string   `json:"name"`
	NormalMin *float64 `json:"normal_min"`
	NormalMax *float64 `json:"normal_max"`
	Unit      string   `json:"unit"`
	Expected  string   `json:"expected,omitempty"`
}

// HasBounds reports whether both range bounds are defined.
func (r ParameterReference) HasBounds() bool {
	return r.NormalMin != nil && r.NormalMax != nil
}

// IsCategorical reports whether the parameter is judged by text, not a range.
func (r ParameterReference) IsCategorical() bool {
	return r.NormalMin == nil && r.NormalMax == nil && r.Expected != ""
}

// DisplayRange formats the range for reports, e.g. "120–160" or the
// expected text for categorical parameters.
func (r ParameterReference) DisplayRange() string {
	switch {
	case r.HasBounds():
		return formatBound(*r.NormalMin) + "–" + formatBound(*r.NormalMax)
	case r.NormalMin != nil:
		return "≥ " + formatBound(*r.NormalMin)
	case r.NormalMax != nil:
		return "≤ " + formatBound(*r.NormalMax)
	default:
		return r.Expected
	}
}

// ptr is a helper to create pointers to float64 literals
func ptr(f float64) *float64 {
	return &f
}

// GetReferenceRangeDefinitions returns the built-in normal ranges.
// This is the authoritative source synced to the database on startup.
func GetReferenceRangeDefinitions() []ParameterReference {
	return []ParameterReference{
		// Complete blood count
		{Name: "Гемоглобин", NormalMin: ptr(120), NormalMax: ptr(160), Unit: "г/л"},
		{Name: "Эритроциты", NormalMin: ptr(3.8), NormalMax: ptr(5.5), Unit: "млн/мкл"},
		{Name: "Лейкоциты", NormalMin: ptr(4.0), NormalMax: ptr(9.0), Unit: "тыс/мкл"},
		{Name: "Тромбоциты", NormalMin: ptr(180), NormalMax: ptr(320), Unit: "тыс/мкл"},
		{Name: "СОЭ", NormalMin: ptr(2), NormalMax: ptr(15), Unit: "мм/ч"},

		// Blood chemistry
		{Name: "Глюкоза", NormalMin: ptr(3.9), NormalMax: ptr(6.1), Unit: "ммоль/л"},
		{Name: "Холестерин", NormalMin: ptr(3.0), NormalMax: ptr(5.2), Unit: "ммоль/л"},
		{Name: "Билирубин", NormalMin: ptr(3.4), NormalMax: ptr(17.1), Unit: "мкмоль/л"},
		{Name: "АЛТ", NormalMin: ptr(5), NormalMax: ptr(40), Unit: "ед/л"},
		{Name: "АСТ", NormalMin: ptr(5), NormalMax: ptr(40), Unit: "ед/л"},
		{Name: "Креатинин", NormalMin: ptr(53), NormalMax: ptr(106), Unit: "мкмоль/л"},
		{Name: "Мочевина", NormalMin: ptr(2.5), NormalMax: ptr(8.3), Unit: "ммоль/л"},

		// Urinalysis
		{Name: "pH", NormalMin: ptr(5.0), NormalMax: ptr(7.0), Unit: ""},
		{Name: "Белок", Expected: "Отсутствует"},
		{Name: "Кетоновые тела", Expected: "Отсутствуют"},
	}
}

// ReferenceTable maps parameter names to normal ranges. Lookups are exact:
// no case folding, trimming or synonym handling.
type ReferenceTable struct {
	entries map[string]ParameterReference
	order   []string
}

// NewReferenceTable builds a table from definitions. Later duplicates win.
func NewReferenceTable(defs []ParameterReference) *ReferenceTable {
	table := &ReferenceTable{entries: make(map[string]ParameterReference, len(defs))}
	for _, def := range defs {
		if _, exists := table.entries[def.Name]; !exists {
			table.order = append(table.order, def.Name)
		}
		table.entries[def.Name] = def
	}
	return table
}

// Lookup returns the reference for a parameter. Unknown names yield a
// reference with nil bounds and an empty unit.
func (t *ReferenceTable) Lookup(name string) ParameterReference {
	if t != nil {
		if ref, ok := t.entries[name]; ok {
			return ref
		}
	}
	return ParameterReference{Name: name}
}

// Has reports whether the table contains an entry for name.
func (t *ReferenceTable) Has(name string) bool {
	if t == nil {
		return false
	}
	_, ok := t.entries[name]
	return ok
}

// All returns every entry in insertion order.
func (t *ReferenceTable) All() []ParameterReference {
	if t == nil {
		return nil
	}
	out := make([]ParameterReference, 0, len(t.order))
	for _, name := range t.order {
		out = append(out, t.entries[name])
	}
	return out
}

// IsNormal evaluates a value against a reference. It returns nil when the
// outcome is undetermined: a bound is missing or no number can be extracted.
// Both bounds are inclusive.
func IsNormal(ref ParameterReference, value Value) *bool {
	if !ref.HasBounds() {
		return nil
	}

	number, ok := value.Numeric()
	if !ok {
		return nil
	}

	normal := *ref.NormalMin <= number && number <= *ref.NormalMax
	return &normal
}

// SyncReferenceRanges upserts the built-in definitions into reference_ranges.
func (s *Store) SyncReferenceRanges(ctx context.Context) error {
	if err := s.ready(); err != nil {
		return err
	}

	definitions := GetReferenceRangeDefinitions()
	logger.Infof("Syncing %d reference range definitions to database...", len(definitions))

	query := `
		INSERT INTO reference_ranges (parameter_name, normal_min, normal_max, unit, expected)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (parameter_name)
		DO UPDATE SET
			normal_min = EXCLUDED.normal_min,
			normal_max = EXCLUDED.normal_max,
			unit = EXCLUDED.unit,
			expected = EXCLUDED.expected,
			updated_at = now()
	`

	for _, def := range definitions {
		_, err := s.pool.Exec(ctx, query, def.Name, def.NormalMin, def.NormalMax, def.Unit, def.Expected)
		if err != nil {
			return wrapWriteError(fmt.Sprintf("sync reference range for %s", def.Name), err)
		}
	}

	logger.Infof("Successfully synced %d reference ranges", len(definitions))

	return nil
}

// LoadReferenceTable reads the reference_ranges table.
func (s *Store) LoadReferenceTable(ctx context.Context) (*ReferenceTable, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT parameter_name, normal_min, normal_max, unit, expected
		FROM reference_ranges
		ORDER BY parameter_name
	`)
	if err != nil {
		return nil, wrapReadError("load reference ranges", err)
	}
	defer rows.Close()

	var defs []ParameterReference
	for rows.Next() {
		var ref ParameterReference
		if err := rows.Scan(&ref.Name, &ref.NormalMin, &ref.NormalMax, &ref.Unit, &ref.Expected); err != nil {
			return nil, wrapReadError("scan reference range", err)
		}
		defs = append(defs, ref)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapReadError("iterate reference ranges", err)
	}

	return NewReferenceTable(defs), nil
}

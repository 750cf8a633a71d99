// SPDX-FileCopyrightText: 2025 Humaid Alqasimi
// SPDX-License-Identifier: Apache-2.0

package db

import (
	"io/fs"
	"testing"
)

func TestReferenceTableLookupIsExact(t *testing.T) {
	t.Parallel()

	refs := NewReferenceTable(GetReferenceRangeDefinitions())

	hb := refs.Lookup("Гемоглобин")
	assertFloatPtrEqual(t, hb.NormalMin, floatPtr(120))
	assertFloatPtrEqual(t, hb.NormalMax, floatPtr(160))
	if hb.Unit != "г/л" {
		t.Fatalf("expected unit г/л, got %q", hb.Unit)
	}

	for _, name := range []string{"гемоглобин", " Гемоглобин", "Гемоглобин ", "Hemoglobin"} {
		ref := refs.Lookup(name)
		if ref.NormalMin != nil || ref.NormalMax != nil || ref.Unit != "" {
			t.Fatalf("expected no reference for %q, got %#v", name, ref)
		}
		if refs.Has(name) {
			t.Fatalf("expected Has(%q) to be false", name)
		}
	}
}

func TestReferenceDefinitionsCoverTable(t *testing.T) {
	t.Parallel()

	refs := NewReferenceTable(GetReferenceRangeDefinitions())

	cases := []struct {
		name     string
		min, max *float64
		unit     string
	}{
		{name: "Эритроциты", min: floatPtr(3.8), max: floatPtr(5.5), unit: "млн/мкл"},
		{name: "Лейкоциты", min: floatPtr(4.0), max: floatPtr(9.0), unit: "тыс/мкл"},
		{name: "Тромбоциты", min: floatPtr(180), max: floatPtr(320), unit: "тыс/мкл"},
		{name: "СОЭ", min: floatPtr(2), max: floatPtr(15), unit: "мм/ч"},
		{name: "Глюкоза", min: floatPtr(3.9), max: floatPtr(6.1), unit: "ммоль/л"},
		{name: "Холестерин", min: floatPtr(3.0), max: floatPtr(5.2), unit: "ммоль/л"},
		{name: "Билирубин", min: floatPtr(3.4), max: floatPtr(17.1), unit: "мкмоль/л"},
		{name: "АЛТ", min: floatPtr(5), max: floatPtr(40), unit: "ед/л"},
		{name: "АСТ", min: floatPtr(5), max: floatPtr(40), unit: "ед/л"},
		{name: "Креатинин", min: floatPtr(53), max: floatPtr(106), unit: "мкмоль/л"},
		{name: "Мочевина", min: floatPtr(2.5), max: floatPtr(8.3), unit: "ммоль/л"},
		{name: "pH", min: floatPtr(5.0), max: floatPtr(7.0), unit: ""},
		{name: "Белок"},
		{name: "Кетоновые тела"},
	}

	for _, tc := range cases {
		ref := refs.Lookup(tc.name)
		if !refs.Has(tc.name) {
			t.Fatalf("expected %s in table", tc.name)
		}
		assertFloatPtrEqual(t, ref.NormalMin, tc.min)
		assertFloatPtrEqual(t, ref.NormalMax, tc.max)
		if ref.Unit != tc.unit {
			t.Fatalf("%s: expected unit %q, got %q", tc.name, tc.unit, ref.Unit)
		}
	}

	if got := refs.Lookup("Белок").Expected; got != "Отсутствует" {
		t.Fatalf("unexpected expected text for Белок: %q", got)
	}
	if got := refs.Lookup("Кетоновые тела").Expected; got != "Отсутствуют" {
		t.Fatalf("unexpected expected text for Кетоновые тела: %q", got)
	}
}

func TestIsNormalInclusiveBounds(t *testing.T) {
	t.Parallel()

	ref := ParameterReference{Name: "Гемоглобин", NormalMin: floatPtr(120), NormalMax: floatPtr(160), Unit: "г/л"}

	cases := []struct {
		raw  string
		want *bool
	}{
		{raw: "120", want: boolPtr(true)},
		{raw: "160 г/л", want: boolPtr(true)},
		{raw: "140", want: boolPtr(true)},
		{raw: "119.9", want: boolPtr(false)},
		{raw: "160,1", want: boolPtr(false)},
		{raw: "нет", want: nil},
		{raw: "", want: nil},
	}

	for _, tc := range cases {
		assertBoolPtrEqual(t, tc.raw, IsNormal(ref, ParseValue(tc.raw, ref)), tc.want)
	}
}

func TestIsNormalUndeterminedWithoutBounds(t *testing.T) {
	t.Parallel()

	refs := NewReferenceTable(GetReferenceRangeDefinitions())

	for _, name := range []string{"Неизвестный", "Белок", "Цвет"} {
		ref := refs.Lookup(name)
		if got := IsNormal(ref, ParseValue("5", ref)); got != nil {
			t.Fatalf("%s: expected undetermined, got %v", name, *got)
		}
	}

	halfOpen := ParameterReference{NormalMin: floatPtr(1)}
	if got := IsNormal(halfOpen, ParseValue("5", halfOpen)); got != nil {
		t.Fatalf("expected undetermined for half-open range, got %v", *got)
	}
}

func TestLeukocyteScenario(t *testing.T) {
	t.Parallel()

	refs := NewReferenceTable(GetReferenceRangeDefinitions())
	ref := refs.Lookup("Лейкоциты")

	assertBoolPtrEqual(t, "6.2", IsNormal(ref, ParseValue("6.2", ref)), boolPtr(true))
	assertBoolPtrEqual(t, "12", IsNormal(ref, ParseValue("12", ref)), boolPtr(false))
}

func TestDisplayRange(t *testing.T) {
	t.Parallel()

	refs := NewReferenceTable(GetReferenceRangeDefinitions())

	cases := map[string]string{
		"Гемоглобин":  "120–160",
		"Эритроциты":  "3.8–5.5",
		"Белок":       "Отсутствует",
		"Неизвестный": "",
	}
	for name, want := range cases {
		if got := refs.Lookup(name).DisplayRange(); got != want {
			t.Fatalf("%s: expected %q, got %q", name, want, got)
		}
	}
}

func TestNewReferenceTableLaterDuplicateWins(t *testing.T) {
	t.Parallel()

	refs := NewReferenceTable([]ParameterReference{
		{Name: "X", NormalMin: floatPtr(1), NormalMax: floatPtr(2)},
		{Name: "X", NormalMin: floatPtr(3), NormalMax: floatPtr(4)},
	})

	if len(refs.All()) != 1 {
		t.Fatalf("expected a single entry, got %d", len(refs.All()))
	}
	assertFloatPtrEqual(t, refs.Lookup("X").NormalMin, floatPtr(3))
}

func TestEmbeddedMigrationsPresent(t *testing.T) {
	t.Parallel()

	entries, err := fs.ReadDir(GetEmbeddedMigrations(), "migrations")
	if err != nil {
		t.Fatalf("expected embedded migrations: %v", err)
	}
	if len(entries) == 0 {
		t.Fatalf("expected at least one migration")
	}
}

func TestSyncAndLoadReferenceTable(t *testing.T) {
	store := resetDatabase(t)
	ctx := testContext()

	loaded, err := store.LoadReferenceTable(ctx)
	if err != nil {
		t.Fatalf("LoadReferenceTable failed: %v", err)
	}

	defs := GetReferenceRangeDefinitions()
	if len(loaded.All()) != len(defs) {
		t.Fatalf("expected %d entries, got %d", len(defs), len(loaded.All()))
	}

	for _, def := range defs {
		got := loaded.Lookup(def.Name)
		assertFloatPtrEqual(t, got.NormalMin, def.NormalMin)
		assertFloatPtrEqual(t, got.NormalMax, def.NormalMax)
		if got.Unit != def.Unit || got.Expected != def.Expected {
			t.Fatalf("%s: unexpected loaded reference %#v", def.Name, got)
		}
	}
}

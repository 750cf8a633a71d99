// SPDX-FileCopyrightText: 2025 Humaid Alqasimi
// SPDX-License-Identifier: Apache-2.0

package db

import (
	"errors"
	"testing"
)

func countOf(counts []NamedCount, name string) int {
	for _, c := range counts {
		if c.Name == name {
			return c.Count
		}
	}
	return -1
}

func TestSeedDemoDataAndStatistics(t *testing.T) {
	store := resetDatabase(t)
	ctx := testContext()

	seeded, err := store.SeedDemoData(ctx)
	if err != nil {
		t.Fatalf("SeedDemoData failed: %v", err)
	}
	if !seeded {
		t.Fatalf("expected demo data to be inserted")
	}

	again, err := store.SeedDemoData(ctx)
	if err != nil {
		t.Fatalf("second SeedDemoData failed: %v", err)
	}
	if again {
		t.Fatalf("expected second seed to be skipped")
	}

	from := mustParseDate(t, "2023-10-10")
	to := mustParseDate(t, "2023-10-11")

	results, err := store.ListResults(ctx, ResultFilter{FromDate: &from, ToDate: &to})
	if err != nil {
		t.Fatalf("ListResults failed: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("expected 4 seeded results on 10-11 October, got %d", len(results))
	}
	for i := 1; i < len(results); i++ {
		if results[i].ResultDate.After(results[i-1].ResultDate) {
			t.Fatalf("expected descending dates")
		}
	}

	stats, err := store.GetStatistics(ctx, mustParseDate(t, "2023-10-01"), mustParseDate(t, "2023-10-31"))
	if err != nil {
		t.Fatalf("GetStatistics failed: %v", err)
	}

	if countOf(stats.UsersByRole, string(RoleLab)) != 2 || countOf(stats.UsersByRole, string(RoleAdmin)) != 1 {
		t.Fatalf("unexpected users by role: %#v", stats.UsersByRole)
	}
	if stats.TotalPatients != 5 {
		t.Fatalf("expected 5 patients, got %d", stats.TotalPatients)
	}
	if stats.TotalAnalyses != 11 {
		t.Fatalf("expected 11 analyses, got %d", stats.TotalAnalyses)
	}
	if stats.AnalysesByType[0].Name != AnalysisBloodCount || stats.AnalysesByType[0].Count != 5 {
		t.Fatalf("expected blood count first, got %#v", stats.AnalysesByType)
	}
	if stats.TotalAppointments != 5 || countOf(stats.AppointmentsByStatus, string(AppointmentScheduled)) != 5 {
		t.Fatalf("unexpected appointment counts: %#v", stats.AppointmentsByStatus)
	}

	if _, err := store.GetStatistics(ctx, to, from); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for reversed period, got %v", err)
	}
}

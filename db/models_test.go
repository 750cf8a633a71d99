// SPDX-FileCopyrightText: 2025 Humaid Alqasimi
// SPDX-License-Identifier: Apache-2.0

package db

import (
	"testing"
	"time"
)

func TestEnumValidity(t *testing.T) {
	t.Parallel()

	for _, role := range Roles {
		if !role.Valid() {
			t.Fatalf("expected role %q valid", role)
		}
	}
	if Role("nurse").Valid() {
		t.Fatalf("expected unknown role invalid")
	}

	for _, status := range ResultStatuses {
		if !status.Valid() {
			t.Fatalf("expected result status %q valid", status)
		}
	}
	if ResultStatus("archived").Valid() {
		t.Fatalf("expected unknown result status invalid")
	}

	for _, status := range AppointmentStatuses {
		if !status.Valid() {
			t.Fatalf("expected appointment status %q valid", status)
		}
	}
	if AppointmentStatus("moved").Valid() || UserStatus("gone").Valid() || Gender("other").Valid() {
		t.Fatalf("expected unknown values invalid")
	}
}

func TestStatusLabels(t *testing.T) {
	t.Parallel()

	cases := []struct {
		got  string
		want string
	}{
		{got: ResultStatusLabel(ResultPending), want: "Ожидает"},
		{got: ResultStatusLabel(ResultCompleted), want: "Выполнен"},
		{got: ResultStatusLabel(ResultSent), want: "Отправлен"},
		{got: ResultStatusLabel(ResultStatus("custom")), want: "custom"},
		{got: RoleLabel(RoleLab), want: "Лаборант"},
		{got: AppointmentStatusLabel(AppointmentCancelled), want: "Отменен"},
	}

	for _, tc := range cases {
		if tc.got != tc.want {
			t.Fatalf("expected %q, got %q", tc.want, tc.got)
		}
	}
}

func TestPatientAgeAt(t *testing.T) {
	t.Parallel()

	p := Patient{BirthDate: time.Date(1978, time.May, 15, 0, 0, 0, 0, time.UTC)}

	cases := []struct {
		date time.Time
		want int
	}{
		{date: time.Date(2023, time.May, 14, 0, 0, 0, 0, time.UTC), want: 44},
		{date: time.Date(2023, time.May, 15, 0, 0, 0, 0, time.UTC), want: 45},
		{date: time.Date(2023, time.December, 1, 0, 0, 0, 0, time.UTC), want: 45},
	}

	for _, tc := range cases {
		if got := p.AgeAt(tc.date); got != tc.want {
			t.Fatalf("AgeAt(%s) = %d, want %d", tc.date.Format(time.DateOnly), got, tc.want)
		}
	}
}

func TestAnalysisTypeDeclares(t *testing.T) {
	t.Parallel()

	at := AnalysisType{Parameters: []string{"Гемоглобин", "СОЭ"}}
	if !at.Declares("СОЭ") || at.Declares("соэ") {
		t.Fatalf("expected exact parameter matching")
	}
}

func TestResultFilterWhere(t *testing.T) {
	t.Parallel()

	from := time.Date(2023, time.October, 10, 15, 30, 0, 0, time.UTC)
	to := time.Date(2023, time.October, 11, 0, 0, 0, 0, time.UTC)
	status := ResultSent

	where, args := ResultFilter{FromDate: &from, ToDate: &to, Status: &status}.where()
	want := "WHERE r.status = $1 AND r.result_date >= $2 AND r.result_date < $3"
	if where != want {
		t.Fatalf("unexpected where clause:\n got %q\nwant %q", where, want)
	}

	if len(args) != 3 {
		t.Fatalf("expected 3 args, got %d", len(args))
	}
	if got := args[1].(time.Time); !got.Equal(time.Date(2023, time.October, 10, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected from truncated to midnight, got %s", got)
	}
	if got := args[2].(time.Time); !got.Equal(time.Date(2023, time.October, 12, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected exclusive end on the following day, got %s", got)
	}

	if where, args := (ResultFilter{}).where(); where != "" || args != nil {
		t.Fatalf("expected empty filter, got %q %v", where, args)
	}
}

func TestValidateResultValues(t *testing.T) {
	t.Parallel()

	declared := []string{"Гемоглобин", "СОЭ"}

	if err := validateResultValues(declared, ParameterValues{"Гемоглобин": "140"}); err != nil {
		t.Fatalf("expected valid values, got %v", err)
	}
	if err := validateResultValues(declared, ParameterValues{"Глюкоза": "5"}); err == nil {
		t.Fatalf("expected undeclared parameter to fail")
	}
	if err := validateResultValues(declared, ParameterValues{"СОЭ": " "}); err == nil {
		t.Fatalf("expected all-blank values to fail")
	}
	if err := validateResultValues(declared, nil); err == nil {
		t.Fatalf("expected empty values to fail")
	}
}

// SPDX-FileCopyrightText: 2025 Humaid Alqasimi
// SPDX-License-Identifier: Apache-2.0

package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/flamego/csrf"
	"github.com/flamego/flamego"
	"github.com/flamego/session"
	"github.com/flamego/template"
	"github.com/google/uuid"

	"github.com/humaidq/medcenter/db"
	"github.com/humaidq/medcenter/mailer"
	"github.com/humaidq/medcenter/report"
)

var errTestBoom = errors.New("boom")

type testSession struct {
	id    string
	data  map[interface{}]interface{}
	flash interface{}
}

func newTestSession() *testSession {
	return &testSession{
		id:   "test-session",
		data: make(map[interface{}]interface{}),
	}
}

func (s *testSession) ID() string {
	return s.id
}

func (s *testSession) RegenerateID(http.ResponseWriter, *http.Request) error {
	return nil
}

func (s *testSession) Get(key interface{}) interface{} {
	return s.data[key]
}

func (s *testSession) Set(key, val interface{}) {
	s.data[key] = val
}

func (s *testSession) SetFlash(val interface{}) {
	s.flash = val
}

func (s *testSession) Delete(key interface{}) {
	delete(s.data, key)
}

func (s *testSession) Flush() {
	s.data = make(map[interface{}]interface{})
}

func (s *testSession) Encode() ([]byte, error) {
	return nil, nil
}

func (s *testSession) HasChanged() bool {
	return true
}

type testCSRF struct {
	token string
}

func (c testCSRF) Token() string {
	return c.token
}

func (c testCSRF) ValidToken(string) bool {
	return true
}

func (c testCSRF) Error(http.ResponseWriter) {}

func (c testCSRF) Validate(flamego.Context) {}

// fakeStore embeds Store so tests only implement what a handler touches.
type fakeStore struct {
	Store

	user     *db.User
	authErr  error
	detail   *db.ResultDetail
	err      error
	results  []db.ResultSummary
	patient  *db.Patient
	points   []db.ParameterPoint
	doctor   *db.Doctor
	stats    *db.Statistics
	patients []db.Patient

	addInput          *db.AddResultInput
	resultFilter      *db.ResultFilter
	appointmentFilter *db.AppointmentFilter
	appointmentInput  *db.CreateAppointmentInput
	patientInput      *db.PatientInput
	status            db.ResultStatus
	statsFrom         time.Time
	statsTo           time.Time
}

func (f *fakeStore) Authenticate(_ context.Context, _, _ string) (*db.User, error) {
	return f.user, f.authErr
}

func (f *fakeStore) AddResult(_ context.Context, input db.AddResultInput) (uuid.UUID, error) {
	f.addInput = &input
	if f.err != nil {
		return uuid.Nil, f.err
	}
	return uuid.MustParse("8d3c5d2e-9a57-4b47-8f5c-0b7d2a1c6e11"), nil
}

func (f *fakeStore) ListResults(_ context.Context, filter db.ResultFilter) ([]db.ResultSummary, error) {
	f.resultFilter = &filter
	return f.results, f.err
}

func (f *fakeStore) GetResultDetails(_ context.Context, _ uuid.UUID) (*db.ResultDetail, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.detail, nil
}

func (f *fakeStore) UpdateStatus(_ context.Context, _ uuid.UUID, status db.ResultStatus) error {
	f.status = status
	return nil
}

func (f *fakeStore) GetPatient(_ context.Context, _ uuid.UUID) (*db.Patient, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.patient, nil
}

func (f *fakeStore) CreatePatient(_ context.Context, input db.PatientInput) (*db.Patient, error) {
	f.patientInput = &input
	return &db.Patient{ID: uuid.New(), FullName: input.FullName, BirthDate: input.BirthDate}, nil
}

func (f *fakeStore) ListPatients(_ context.Context, _ string) ([]db.Patient, error) {
	return f.patients, nil
}

func (f *fakeStore) ParameterHistory(_ context.Context, _ uuid.UUID, _ string) ([]db.ParameterPoint, error) {
	return f.points, nil
}

func (f *fakeStore) References() *db.ReferenceTable {
	return db.NewReferenceTable(db.GetReferenceRangeDefinitions())
}

func (f *fakeStore) GetDoctorByUserID(_ context.Context, _ uuid.UUID) (*db.Doctor, error) {
	if f.doctor == nil {
		return nil, fmt.Errorf("%w: doctor", db.ErrNotFound)
	}
	return f.doctor, nil
}

func (f *fakeStore) ListAppointments(_ context.Context, filter db.AppointmentFilter) ([]db.Appointment, error) {
	f.appointmentFilter = &filter
	return nil, nil
}

func (f *fakeStore) CreateAppointment(_ context.Context, input db.CreateAppointmentInput) (*db.Appointment, error) {
	f.appointmentInput = &input
	return &db.Appointment{ID: uuid.New(), DoctorID: input.DoctorID, PatientID: input.PatientID}, nil
}

func (f *fakeStore) GetStatistics(_ context.Context, from, to time.Time) (*db.Statistics, error) {
	f.statsFrom, f.statsTo = from, to
	if f.stats == nil {
		return &db.Statistics{From: from, To: to}, nil
	}
	return f.stats, nil
}

func newTestApp(s session.Session, store Store, m *mailer.Mailer, register func(f *flamego.Flame)) *flamego.Flame {
	f := flamego.New()
	f.Use(func(c flamego.Context) {
		c.MapTo(s, (*session.Session)(nil))
		c.Next()
	})
	f.Use(Services(store, m))
	register(f)
	return f
}

func performJSON(t *testing.T, f *flamego.Flame, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	f.ServeHTTP(rec, req)

	return rec
}

func performFormPOST(t *testing.T, f *flamego.Flame, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := httptest.NewRecorder()
	f.ServeHTTP(rec, req)

	return rec
}

func assertStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()

	if rec.Code != want {
		t.Fatalf("expected status %d, got %d (body %q)", want, rec.Code, rec.Body.String())
	}
}

func assertRedirect(t *testing.T, rec *httptest.ResponseRecorder, wantLocation string) {
	t.Helper()

	if rec.Code != http.StatusSeeOther && rec.Code != http.StatusFound {
		t.Fatalf("expected redirect status, got %d", rec.Code)
	}

	if got := rec.Header().Get("Location"); got != wantLocation {
		t.Fatalf("expected redirect %q, got %q", wantLocation, got)
	}
}

func assertFlash(t *testing.T, s *testSession, wantType FlashType, wantMessage string) {
	t.Helper()

	msg, ok := s.flash.(FlashMessage)
	if !ok {
		t.Fatalf("expected flash message, got %T", s.flash)
	}

	if msg.Type != wantType || msg.Message != wantMessage {
		t.Fatalf("unexpected flash message: %#v", msg)
	}
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("expected JSON error body, got %q", rec.Body.String())
	}
	return body["error"]
}

func signIn(s *testSession, role db.Role) uuid.UUID {
	id := uuid.New()
	s.Set(sessionKeyAuthenticated, true)
	s.Set(sessionKeyUserID, id.String())
	s.Set(sessionKeyRole, string(role))
	s.Set(sessionKeyDisplayName, "Иванова Мария Петровна")
	return id
}

func testDetail() *db.ResultDetail {
	refs := db.NewReferenceTable(db.GetReferenceRangeDefinitions())
	payload := `{"Гемоглобин":"140 г/л","Эритроциты":"4.5 млн/мкл","Лейкоциты":"12","Тромбоциты":"250 тыс/мкл"}`

	return &db.ResultDetail{
		ID:         uuid.New(),
		ResultDate: time.Date(2023, 10, 10, 9, 30, 0, 0, time.UTC),
		Status:     db.ResultCompleted,
		Patient: db.PatientSummary{
			ID:       uuid.New(),
			FullName: "Иванов Иван Иванович",
			Email:    "ivanov@example.com",
		},
		AnalysisType:  db.AnalysisTypeSummary{Name: db.AnalysisBloodCount},
		LabTechnician: "Иванова Мария Петровна",
		Parameters: db.AssembleParameters(refs,
			[]string{"Гемоглобин", "Эритроциты", "Лейкоциты", "Тромбоциты", "СОЭ"}, &payload),
	}
}

func TestSetFlashHelpers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		set     func(session.Session, string)
		wantTyp FlashType
	}{
		{name: "error", set: SetErrorFlash, wantTyp: FlashError},
		{name: "success", set: SetSuccessFlash, wantTyp: FlashSuccess},
		{name: "info", set: SetInfoFlash, wantTyp: FlashInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := newTestSession()
			tt.set(s, "hello")
			assertFlash(t, s, tt.wantTyp, "hello")
		})
	}
}

func TestFlashInjector(t *testing.T) {
	t.Parallel()

	handler, ok := FlashInjector().(func(session.Flash, template.Data))
	if !ok {
		t.Fatalf("unexpected FlashInjector handler type")
	}

	data := template.Data{}
	handler(FlashMessage{Type: FlashError, Message: "bad"}, data)
	if got, ok := data["Flash"].(FlashMessage); !ok || got.Message != "bad" {
		t.Fatalf("unexpected Flash value: %#v", data["Flash"])
	}

	empty := template.Data{}
	handler(nil, empty)
	if _, ok := empty["Flash"]; ok {
		t.Fatalf("expected no Flash for empty flash")
	}
}

func TestCSRFInjector(t *testing.T) {
	t.Parallel()

	handler, ok := CSRFInjector().(func(csrf.CSRF, template.Data))
	if !ok {
		t.Fatalf("unexpected CSRFInjector handler type")
	}

	data := template.Data{}
	handler(testCSRF{token: "csrf-123"}, data)

	if got, ok := data["csrf_token"].(string); !ok || got != "csrf-123" {
		t.Fatalf("unexpected csrf_token value: %#v", data["csrf_token"])
	}
}

func TestCSRFToken(t *testing.T) {
	t.Parallel()

	f := flamego.New()
	f.Use(func(c flamego.Context) {
		c.MapTo(testCSRF{token: "abc"}, (*csrf.CSRF)(nil))
		c.Next()
	})
	f.Get("/api/csrf", CSRFToken)

	rec := performJSON(t, f, http.MethodGet, "/api/csrf", nil)
	assertStatus(t, rec, http.StatusOK)

	if !strings.Contains(rec.Body.String(), `"token":"abc"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestNoCacheHeaders(t *testing.T) {
	t.Parallel()

	f := flamego.New()
	f.Use(NoCacheHeaders())
	f.Get("/", func(c flamego.Context) {
		c.ResponseWriter().WriteHeader(http.StatusNoContent)
	})
	f.Post("/", func(c flamego.Context) {
		c.ResponseWriter().WriteHeader(http.StatusNoContent)
	})

	getRec := performJSON(t, f, http.MethodGet, "/", nil)
	if got := getRec.Header().Get("Cache-Control"); got != "no-store, max-age=0" {
		t.Fatalf("unexpected Cache-Control for GET: %q", got)
	}
	if got := getRec.Header().Get("Pragma"); got != "no-cache" {
		t.Fatalf("unexpected Pragma for GET: %q", got)
	}

	postRec := performJSON(t, f, http.MethodPost, "/", nil)
	if got := postRec.Header().Get("Cache-Control"); got != "" {
		t.Fatalf("expected no Cache-Control for POST, got %q", got)
	}
	if got := postRec.Header().Get("X-Robots-Tag"); got == "" {
		t.Fatalf("expected X-Robots-Tag on every response")
	}
}

func TestClientIP(t *testing.T) {
	t.Parallel()

	var got string
	f := flamego.New()
	f.Get("/", func(c flamego.Context) {
		got = clientIP(c)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", " 203.0.113.7 , 10.0.0.1")
	f.ServeHTTP(httptest.NewRecorder(), req)

	if got != "203.0.113.7" {
		t.Fatalf("expected first forwarded address, got %q", got)
	}
}

func TestErrorStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want int
	}{
		{err: fmt.Errorf("%w: result", db.ErrNotFound), want: http.StatusNotFound},
		{err: report.ErrNoDataPoints, want: http.StatusNotFound},
		{err: fmt.Errorf("%w: bad", db.ErrValidation), want: http.StatusBadRequest},
		{err: errInvalidID, want: http.StatusBadRequest},
		{err: errInvalidDate, want: http.StatusBadRequest},
		{err: report.ErrUnsupportedFormat, want: http.StatusBadRequest},
		{err: mailer.ErrNoRecipient, want: http.StatusBadRequest},
		{err: db.ErrInvalidCredentials, want: http.StatusUnauthorized},
		{err: errMailNotConfigured, want: http.StatusServiceUnavailable},
		{err: fmt.Errorf("%w: smtp down", mailer.ErrSendFailed), want: http.StatusBadGateway},
		{err: fmt.Errorf("%w: conn reset", db.ErrPersistence), want: http.StatusInternalServerError},
		{err: errTestBoom, want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := errorStatus(tt.err); got != tt.want {
			t.Fatalf("errorStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestParseDate(t *testing.T) {
	t.Parallel()

	if got, err := parseDate("  "); err != nil || got != nil {
		t.Fatalf("expected nil date for blank input, got %v, %v", got, err)
	}

	got, err := parseDate("2023-10-11")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Year() != 2023 || got.Month() != time.October || got.Day() != 11 {
		t.Fatalf("unexpected date: %v", got)
	}

	if _, err := parseDate("11.10.2023"); !errors.Is(err, errInvalidDate) {
		t.Fatalf("expected errInvalidDate, got %v", err)
	}
}

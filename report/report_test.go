// SPDX-FileCopyrightText: 2025 Humaid Alqasimi
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/humaidq/medcenter/db"
)

func stringPtr(s string) *string { return &s }

func testDetail() *db.ResultDetail {
	refs := db.NewReferenceTable(db.GetReferenceRangeDefinitions())
	payload := `{"Гемоглобин":"140 г/л","Лейкоциты":"12","СОЭ":"10"}`
	male := db.GenderMale

	return &db.ResultDetail{
		ID:         uuid.New(),
		ResultDate: time.Date(2023, 10, 10, 9, 30, 0, 0, time.UTC),
		Status:     db.ResultCompleted,
		Conclusion: stringPtr("Повышены лейкоциты"),
		Patient: db.PatientSummary{
			ID:        uuid.New(),
			FullName:  "Иванов Иван Иванович",
			BirthDate: time.Date(1978, 5, 15, 0, 0, 0, 0, time.UTC),
			Gender:    &male,
			Phone:     "+7 (900) 123-45-67",
			Email:     "ivanov@example.com",
		},
		AnalysisType:  db.AnalysisTypeSummary{Name: db.AnalysisBloodCount},
		LabTechnician: "Иванова Мария Петровна",
		Parameters: db.AssembleParameters(refs,
			[]string{"Гемоглобин", "Эритроциты", "Лейкоциты", "Тромбоциты", "СОЭ"}, &payload),
	}
}

func testPatient() *db.Patient {
	female := db.GenderFemale
	return &db.Patient{
		ID:        uuid.MustParse("6f1c2c8e-3b7a-4d55-9a43-2f0f6f1b9a10"),
		FullName:  "Петрова Анна Сергеевна",
		BirthDate: time.Date(1990, 10, 20, 0, 0, 0, 0, time.UTC),
		Gender:    &female,
		Phone:     "+7 (900) 987-65-43",
		Email:     "petrova@example.com",
		Address:   "г. Москва, пр. Мира, 25-42",
	}
}

func findRow(doc *Document, name string) (Row, bool) {
	for _, r := range doc.Rows {
		if r.Cells[0] == name {
			return r, true
		}
	}
	return Row{}, false
}

func TestAnalysisReport(t *testing.T) {
	t.Parallel()

	doc := AnalysisReport(testDetail(), AnalysisReportOptions{
		WithJudgment: true,
		GeneratedAt:  time.Date(2023, 10, 11, 0, 0, 0, 0, time.UTC),
	})

	if doc.Title != AnalysisReportTemplate.Title || doc.Heading != "Анализ: "+db.AnalysisBloodCount {
		t.Fatalf("unexpected title/heading: %q / %q", doc.Title, doc.Heading)
	}
	if len(doc.Columns) != 5 || doc.Columns[4] != JudgmentColumn {
		t.Fatalf("expected judgment column, got %v", doc.Columns)
	}
	if len(doc.Rows) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(doc.Rows))
	}

	hb, _ := findRow(doc, "Гемоглобин")
	if strings.Join(hb.Cells, "|") != "Гемоглобин|140 г/л|г/л|120–160|Норма" || hb.Flagged {
		t.Fatalf("unexpected hemoglobin row: %#v", hb)
	}

	wbc, _ := findRow(doc, "Лейкоциты")
	if !wbc.Flagged || wbc.Cells[4] != "Отклонение" {
		t.Fatalf("expected flagged leukocytes row, got %#v", wbc)
	}

	rbc, _ := findRow(doc, "Эритроциты")
	if rbc.Cells[1] != db.MissingValuePlaceholder || rbc.Cells[4] != "" || rbc.Flagged {
		t.Fatalf("expected missing erythrocytes row, got %#v", rbc)
	}

	if doc.Conclusion != "Повышены лейкоциты" {
		t.Fatalf("unexpected conclusion: %q", doc.Conclusion)
	}
	if doc.Footer[2].Value != "11.10.2023" {
		t.Fatalf("unexpected footer date: %#v", doc.Footer)
	}
}

func TestAnalysisReportWithoutJudgment(t *testing.T) {
	t.Parallel()

	doc := AnalysisReport(testDetail(), AnalysisReportOptions{})
	if len(doc.Columns) != 4 {
		t.Fatalf("expected 4 columns, got %v", doc.Columns)
	}
	for _, r := range doc.Rows {
		if len(r.Cells) != 4 {
			t.Fatalf("expected 4 cells, got %v", r.Cells)
		}
	}
}

func TestPatientCardAndReferral(t *testing.T) {
	t.Parallel()

	patient := testPatient()
	history := []db.ResultSummary{{
		ResultDate:       time.Date(2023, 10, 11, 9, 0, 0, 0, time.UTC),
		AnalysisTypeName: db.AnalysisBloodCount,
		Status:           db.ResultSent,
	}}

	card := PatientCard(patient, history, time.Time{})
	if card.Template != PatientCardTemplate.Name || len(card.Rows) != 1 {
		t.Fatalf("unexpected card: %#v", card)
	}
	if got := strings.Join(card.Rows[0].Cells, "|"); got != "11.10.2023|Общий анализ крови|Отправлен" {
		t.Fatalf("unexpected history row: %q", got)
	}

	empty := PatientCard(patient, nil, time.Time{})
	if len(empty.Rows) != 0 || empty.Empty != PatientCardTemplate.Empty {
		t.Fatalf("expected empty history text, got %#v", empty)
	}

	appointment := &db.Appointment{
		DoctorName:      "Петров Иван Сергеевич",
		AppointmentDate: time.Date(2023, 10, 15, 10, 0, 0, 0, time.UTC),
		Status:          db.AppointmentScheduled,
		Notes:           "Первичный прием",
	}
	referral := Referral(appointment, patient, history, time.Time{})

	values := make(map[string]string)
	for _, f := range referral.Fields {
		values[f.Label] = f.Value
	}
	if values["Специализация"] != "Не указана" || values["Время приема"] != "10:00" || values["Статус"] != "Запланирован" {
		t.Fatalf("unexpected referral fields: %v", values)
	}
	if referral.Conclusion != "Первичный прием" {
		t.Fatalf("expected notes as conclusion, got %q", referral.Conclusion)
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	cases := map[string]Format{"xlsx": FormatXLSX, ".CSV": FormatCSV, " html ": FormatHTML, "": FormatXLSX}
	for input, want := range cases {
		got, err := ParseFormat(input)
		if err != nil || got != want {
			t.Fatalf("ParseFormat(%q) = %q, %v; want %q", input, got, err, want)
		}
	}

	if _, err := ParseFormat("docx"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	if _, err := RendererFor(Format("pdf")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestRenderersRejectNilDocument(t *testing.T) {
	t.Parallel()

	for _, format := range []Format{FormatXLSX, FormatCSV, FormatHTML} {
		r, err := RendererFor(format)
		if err != nil {
			t.Fatalf("RendererFor(%s) failed: %v", format, err)
		}
		if err := r.Render(&bytes.Buffer{}, nil); !errors.Is(err, ErrNilDocument) {
			t.Fatalf("%s: expected ErrNilDocument, got %v", format, err)
		}
		if r.Extension() != string(format) {
			t.Fatalf("unexpected extension %q for %s", r.Extension(), format)
		}
	}
}

func TestFileName(t *testing.T) {
	t.Parallel()

	got := FileName("xlsx", "Анализ", "Общий анализ крови", "Иванов И.И.", "2023-10-10 09:30")
	want := "Анализ_Общий_анализ_крови_Иванов_И.И._2023-10-10_09-30.xlsx"
	if got != want {
		t.Fatalf("FileName = %q, want %q", got, want)
	}

	if got := FileName(".csv", " ", ""); got != "document.csv" {
		t.Fatalf("expected fallback name, got %q", got)
	}
}

func TestCSVRenderer(t *testing.T) {
	t.Parallel()

	doc := AnalysisReport(testDetail(), AnalysisReportOptions{})
	out, err := RenderBytes(CSVRenderer{}, doc)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}

	text := string(out)
	if !strings.HasPrefix(text, utf8BOM+"РЕЗУЛЬТАТ АНАЛИЗА\n") {
		t.Fatalf("unexpected csv start: %q", text[:40])
	}
	for _, want := range []string{
		"Параметр;Значение;Ед. изм.;Норма\n",
		"Гемоглобин;140 г/л;г/л;120–160\n",
		"Заключение;Повышены лейкоциты\n",
		"Лаборант;Иванова Мария Петровна\n",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("csv missing %q:\n%s", want, text)
		}
	}
}

func TestHTMLRenderer(t *testing.T) {
	t.Parallel()

	doc := AnalysisReport(testDetail(), AnalysisReportOptions{WithJudgment: true})
	doc.Conclusion = "<script>alert(1)</script>"

	out, err := RenderBytes(HTMLRenderer{}, doc)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}

	html := string(out)
	if strings.Contains(html, "<script>") {
		t.Fatalf("expected conclusion to be escaped")
	}
	if !strings.Contains(html, `<tr class="flagged"><td>Лейкоциты</td>`) {
		t.Fatalf("expected flagged leukocytes row:\n%s", html)
	}
	if !strings.Contains(html, "<th>Оценка</th>") {
		t.Fatalf("expected judgment header")
	}
}

func TestXLSXRenderer(t *testing.T) {
	t.Parallel()

	doc := WithPatientQRCode(AnalysisReport(testDetail(), AnalysisReportOptions{}), testPatient())
	if len(doc.Image) == 0 {
		t.Fatalf("expected qr code image")
	}

	out, err := RenderBytes(XLSXRenderer{}, doc)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("failed to open workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 1 || sheets[0] != AnalysisReportTemplate.Sheet {
		t.Fatalf("unexpected sheets: %v", sheets)
	}

	title, err := f.GetCellValue(sheets[0], "A1")
	if err != nil || title != AnalysisReportTemplate.Title {
		t.Fatalf("unexpected title cell: %q, %v", title, err)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		t.Fatalf("GetRows failed: %v", err)
	}

	found := false
	for _, row := range rows {
		if len(row) >= 4 && row[0] == "Гемоглобин" {
			found = row[1] == "140 г/л" && row[3] == "120–160"
		}
	}
	if !found {
		t.Fatalf("expected hemoglobin row in %v", rows)
	}

	pics, err := f.GetPictures(sheets[0], "F1")
	if err != nil || len(pics) != 1 {
		t.Fatalf("expected qr picture at F1, got %d, %v", len(pics), err)
	}
}

func TestStatisticsWorkbook(t *testing.T) {
	t.Parallel()

	stats := &db.Statistics{
		From:                 time.Date(2023, 10, 1, 0, 0, 0, 0, time.UTC),
		To:                   time.Date(2023, 10, 31, 0, 0, 0, 0, time.UTC),
		UsersByRole:          []db.NamedCount{{Name: "admin", Count: 1}, {Name: "lab", Count: 2}},
		TotalPatients:        5,
		NewPatients:          5,
		TotalAnalyses:        11,
		AnalysesByType:       []db.NamedCount{{Name: db.AnalysisBloodCount, Count: 5}},
		TotalAppointments:    5,
		AppointmentsByStatus: []db.NamedCount{{Name: "scheduled", Count: 5}},
	}

	doc := StatisticsDocument(stats)
	if row, ok := findRow(doc, "Пользователи: Лаборант"); !ok || row.Cells[1] != "2" {
		t.Fatalf("expected lab user count row, got %#v", doc.Rows)
	}
	if row, ok := findRow(doc, "Приемы: Запланирован"); !ok || row.Cells[1] != "5" {
		t.Fatalf("expected appointment status row, got %#v", doc.Rows)
	}

	var buf bytes.Buffer
	if err := WriteStatisticsWorkbook(&buf, stats, []db.Patient{*testPatient()}); err != nil {
		t.Fatalf("WriteStatisticsWorkbook failed: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("failed to open workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 2 || sheets[0] != SummarySheet || sheets[1] != PatientsSheet {
		t.Fatalf("unexpected sheets: %v", sheets)
	}

	name, err := f.GetCellValue(PatientsSheet, "A2")
	if err != nil || name != "Петрова Анна Сергеевна" {
		t.Fatalf("unexpected patient cell: %q, %v", name, err)
	}
}

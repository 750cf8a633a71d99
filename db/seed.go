/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type seedResult struct {
	patient  int
	analysis string
	lab      string
	date     string
	values   ParameterValues
}

var seedResults = []seedResult{
	{0, AnalysisBloodCount, "lab1", "2023-10-10 09:30", ParameterValues{"Гемоглобин": "140 г/л", "Эритроциты": "4.5 млн/мкл", "Лейкоциты": "6.8 тыс/мкл", "Тромбоциты": "250 тыс/мкл", "СОЭ": "10 мм/ч"}},
	{0, AnalysisBloodChemistry, "lab1", "2023-10-10 10:00", ParameterValues{"Глюкоза": "5.2 ммоль/л", "Холестерин": "4.8 ммоль/л", "Билирубин": "12 мкмоль/л", "АЛТ": "25 Ед/л", "АСТ": "22 Ед/л", "Креатинин": "80 мкмоль/л", "Мочевина": "5.5 ммоль/л"}},
	{0, AnalysisUrinalysis, "lab1", "2023-10-10 10:30", ParameterValues{"Цвет": "Желтый", "Прозрачность": "Прозрачная", "pH": "6.0", "Белок": "Отрицательно", "Глюкоза": "Отрицательно", "Кетоновые тела": "Отрицательно", "Лейкоциты": "0-1 в п/зр", "Эритроциты": "0-1 в п/зр"}},
	{1, AnalysisBloodCount, "lab1", "2023-10-11 09:00", ParameterValues{"Гемоглобин": "135 г/л", "Эритроциты": "4.2 млн/мкл", "Лейкоциты": "7.5 тыс/мкл", "Тромбоциты": "220 тыс/мкл", "СОЭ": "15 мм/ч"}},
	{2, AnalysisBloodCount, "lab1", "2023-10-12 11:00", ParameterValues{"Гемоглобин": "150 г/л", "Эритроциты": "4.7 млн/мкл", "Лейкоциты": "5.9 тыс/мкл", "Тромбоциты": "280 тыс/мкл", "СОЭ": "8 мм/ч"}},
	{3, AnalysisBloodChemistry, "lab1", "2023-10-13 10:15", ParameterValues{"Глюкоза": "5.5 ммоль/л", "Холестерин": "5.2 ммоль/л", "Билирубин": "14 мкмоль/л", "АЛТ": "28 Ед/л", "АСТ": "25 Ед/л", "Креатинин": "85 мкмоль/л", "Мочевина": "5.8 ммоль/л"}},
	{4, AnalysisUrinalysis, "lab1", "2023-10-14 09:45", ParameterValues{"Цвет": "Соломенно-желтый", "Прозрачность": "Прозрачная", "pH": "5.8", "Белок": "Отрицательно", "Глюкоза": "Отрицательно", "Кетоновые тела": "Отрицательно", "Лейкоциты": "0-2 в п/зр", "Эритроциты": "0 в п/зр"}},
	{2, AnalysisBloodCount, "lab2", "2023-10-15 09:30", ParameterValues{"Гемоглобин": "145 г/л", "Эритроциты": "4.6 млн/мкл", "Лейкоциты": "6.5 тыс/мкл", "Тромбоциты": "260 тыс/мкл", "СОЭ": "9 мм/ч"}},
	{1, AnalysisBloodChemistry, "lab2", "2023-10-15 10:45", ParameterValues{"Глюкоза": "5.1 ммоль/л", "Холестерин": "4.9 ммоль/л", "Билирубин": "11 мкмоль/л", "АЛТ": "24 Ед/л", "АСТ": "21 Ед/л", "Креатинин": "79 мкмоль/л", "Мочевина": "5.3 ммоль/л"}},
	{3, AnalysisUrinalysis, "lab2", "2023-10-16 11:30", ParameterValues{"Цвет": "Светло-желтый", "Прозрачность": "Прозрачная", "pH": "6.2", "Белок": "Отрицательно", "Глюкоза": "Отрицательно", "Кетоновые тела": "Отрицательно", "Лейкоциты": "0-1 в п/зр", "Эритроциты": "0 в п/зр"}},
	{4, AnalysisBloodCount, "lab2", "2023-10-17 09:15", ParameterValues{"Гемоглобин": "142 г/л", "Эритроциты": "4.4 млн/мкл", "Лейкоциты": "7.0 тыс/мкл", "Тромбоциты": "245 тыс/мкл", "СОЭ": "12 мм/ч"}},
}

func seedEmail(address string) *string {
	return &address
}

func mustSeedTime(layout, value string) time.Time {
	t, err := time.ParseInLocation(layout, value, time.UTC)
	if err != nil {
		panic(fmt.Sprintf("invalid seed time %q: %v", value, err))
	}
	return t
}

// SeedDemoData fills an empty database with demonstration staff, patients,
// appointments and analysis results. It does nothing when any user exists
// and reports whether data was inserted.
func (s *Store) SeedDemoData(ctx context.Context) (bool, error) {
	if err := s.ready(); err != nil {
		return false, err
	}

	var userCount int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&userCount); err != nil {
		return false, wrapReadError("count users", err)
	}
	if userCount > 0 {
		logger.Info("Database already has users, skipping demo data")
		return false, nil
	}

	users := []CreateUserInput{
		{Username: "admin", Password: "admin123", FullName: "Администратор Системы", Role: RoleAdmin, Email: seedEmail("admin@medcenter.com")},
		{Username: "doctor1", Password: "doc123", FullName: "Петров Иван Сергеевич", Role: RoleDoctor, Email: seedEmail("doctor1@medcenter.com")},
		{Username: "lab1", Password: "lab123", FullName: "Иванова Мария Петровна", Role: RoleLab, Email: seedEmail("lab1@medcenter.com")},
		{Username: "lab2", Password: "1", FullName: "Смирнова Елена Алексеевна", Role: RoleLab, Email: seedEmail("lab2@medcenter.com")},
	}

	userIDs := make(map[string]uuid.UUID, len(users))
	for _, input := range users {
		user, err := s.CreateUser(ctx, input)
		if err != nil {
			return false, fmt.Errorf("failed to seed user %s: %w", input.Username, err)
		}
		userIDs[user.Username] = user.ID
	}

	patients := []PatientInput{
		{FullName: "Иванов Иван Иванович", BirthDate: mustSeedTime(time.DateOnly, "1978-05-15"), Phone: "+7 (900) 123-45-67", Email: "ivanov@example.com", Address: "г. Москва, ул. Ленина, 10-15"},
		{FullName: "Петрова Анна Сергеевна", BirthDate: mustSeedTime(time.DateOnly, "1990-10-20"), Phone: "+7 (900) 987-65-43", Email: "petrova@example.com", Address: "г. Москва, пр. Мира, 25-42"},
		{FullName: "Сидоров Петр Николаевич", BirthDate: mustSeedTime(time.DateOnly, "1965-03-07"), Phone: "+7 (900) 111-22-33", Email: "sidorov@example.com", Address: "г. Москва, ул. Гагарина, 5-10"},
		{FullName: "Кузнецова Елена Владимировна", BirthDate: mustSeedTime(time.DateOnly, "1995-12-18"), Phone: "+7 (900) 444-55-66", Email: "kuznetsova@example.com", Address: "г. Москва, ул. Пушкина, 15-7"},
		{FullName: "Смирнов Алексей Петрович", BirthDate: mustSeedTime(time.DateOnly, "1958-07-30"), Phone: "+7 (900) 777-88-99", Email: "smirnov@example.com", Address: "г. Москва, ул. Лермонтова, 20-30"},
	}

	patientIDs := make([]uuid.UUID, 0, len(patients))
	for _, input := range patients {
		patient, err := s.CreatePatient(ctx, input)
		if err != nil {
			return false, fmt.Errorf("failed to seed patient %s: %w", input.FullName, err)
		}
		patientIDs = append(patientIDs, patient.ID)
	}

	doctor, err := s.CreateDoctor(ctx, userIDs["doctor1"], "Терапевт")
	if err != nil {
		return false, fmt.Errorf("failed to seed doctor: %w", err)
	}

	appointments := []struct {
		patient int
		date    string
		notes   string
	}{
		{0, "2023-10-15 10:00", "Первичный прием"},
		{1, "2023-10-15 11:00", "Повторный прием"},
		{2, "2023-10-16 09:30", "Консультация по результатам анализов"},
		{3, "2023-10-16 10:30", "Профилактический осмотр"},
		{4, "2023-10-17 14:00", "Контроль лечения"},
	}

	const seedDateTime = "2006-01-02 15:04"

	for _, a := range appointments {
		_, err := s.CreateAppointment(ctx, CreateAppointmentInput{
			DoctorID:        doctor.ID,
			PatientID:       patientIDs[a.patient],
			AppointmentDate: mustSeedTime(seedDateTime, a.date),
			Notes:           a.notes,
		})
		if err != nil {
			return false, fmt.Errorf("failed to seed appointment: %w", err)
		}
	}

	types := make(map[string]uuid.UUID)
	for _, def := range GetAnalysisTypeDefinitions() {
		at, err := s.GetAnalysisTypeByName(ctx, def.Name)
		if err != nil {
			return false, fmt.Errorf("failed to look up analysis type %s: %w", def.Name, err)
		}
		types[def.Name] = at.ID
	}

	for _, r := range seedResults {
		resultDate := mustSeedTime(seedDateTime, r.date)
		_, err := s.AddResult(ctx, AddResultInput{
			PatientID:      patientIDs[r.patient],
			AnalysisTypeID: types[r.analysis],
			LabUserID:      userIDs[r.lab],
			Values:         r.values,
			ResultDate:     &resultDate,
		})
		if err != nil {
			return false, fmt.Errorf("failed to seed analysis result: %w", err)
		}
	}

	logger.Info("Seeded demo data",
		"users", len(users), "patients", len(patients),
		"appointments", len(appointments), "results", len(seedResults))

	return true, nil
}

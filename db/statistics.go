/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package db

import (
	"context"
	"fmt"
	"time"
)

// GetStatistics aggregates activity between two calendar dates, inclusive.
// User and total patient counts cover all time.
func (s *Store) GetStatistics(ctx context.Context, from, to time.Time) (*Statistics, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	from = startOfDay(from)
	to = startOfDay(to)
	if to.Before(from) {
		return nil, fmt.Errorf("%w: period end is before its start", ErrValidation)
	}
	end := to.AddDate(0, 0, 1)

	stats := &Statistics{From: from, To: to}

	byRole, err := s.countGroups(ctx, `SELECT role, COUNT(*) FROM users GROUP BY role`)
	if err != nil {
		return nil, err
	}
	for _, role := range Roles {
		stats.UsersByRole = append(stats.UsersByRole, NamedCount{Name: string(role), Count: byRole[string(role)]})
	}

	err = s.pool.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE created_at >= $1 AND created_at < $2)
		FROM patients
	`, from, end).Scan(&stats.TotalPatients, &stats.NewPatients)
	if err != nil {
		return nil, wrapReadError("count patients", err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT t.name, COUNT(r.id)
		FROM analysis_results r
		JOIN analysis_types t ON t.id = r.analysis_type_id
		WHERE r.result_date >= $1 AND r.result_date < $2
		GROUP BY t.name
		ORDER BY COUNT(r.id) DESC, t.name ASC
	`, from, end)
	if err != nil {
		return nil, wrapReadError("count analyses by type", err)
	}
	defer rows.Close()

	for rows.Next() {
		var nc NamedCount
		if err := rows.Scan(&nc.Name, &nc.Count); err != nil {
			return nil, wrapReadError("scan analysis count", err)
		}
		stats.AnalysesByType = append(stats.AnalysesByType, nc)
		stats.TotalAnalyses += nc.Count
	}

	if err := rows.Err(); err != nil {
		return nil, wrapReadError("iterate analysis counts", err)
	}

	byStatus, err := s.countGroups(ctx, `
		SELECT status, COUNT(*) FROM appointments
		WHERE appointment_date >= $1 AND appointment_date < $2
		GROUP BY status
	`, from, end)
	if err != nil {
		return nil, err
	}
	for _, status := range AppointmentStatuses {
		count := byStatus[string(status)]
		stats.AppointmentsByStatus = append(stats.AppointmentsByStatus, NamedCount{Name: string(status), Count: count})
		stats.TotalAppointments += count
	}

	return stats, nil
}

func (s *Store) countGroups(ctx context.Context, query string, args ...interface{}) (map[string]int, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapReadError("count groups", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			key   string
			count int
		)
		if err := rows.Scan(&key, &count); err != nil {
			return nil, wrapReadError("scan group count", err)
		}
		counts[key] = count
	}

	if err := rows.Err(); err != nil {
		return nil, wrapReadError("iterate group counts", err)
	}

	return counts, nil
}

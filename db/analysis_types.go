/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Built-in analysis type names.
const (
	AnalysisBloodCount     = "Общий анализ крови"
	AnalysisBloodChemistry = "Биохимический анализ крови"
	AnalysisUrinalysis     = "Общий анализ мочи"
)

// AnalysisTypeDefinition is a built-in analysis type synced on startup.
type AnalysisTypeDefinition struct {
	Name        string
	Description string
	Parameters  []string
}

// GetAnalysisTypeDefinitions returns the built-in analysis types.
func GetAnalysisTypeDefinitions() []AnalysisTypeDefinition {
	return []AnalysisTypeDefinition{
		{
			Name:        AnalysisBloodCount,
			Description: "Базовый анализ состава крови",
			Parameters:  []string{"Гемоглобин", "Эритроциты", "Лейкоциты", "Тромбоциты", "СОЭ"},
		},
		{
			Name:        AnalysisBloodChemistry,
			Description: "Анализ биохимических показателей крови",
			Parameters:  []string{"Глюкоза", "Холестерин", "Билирубин", "АЛТ", "АСТ", "Креатинин", "Мочевина"},
		},
		{
			Name:        AnalysisUrinalysis,
			Description: "Базовый анализ состава мочи",
			Parameters:  []string{"Цвет", "Прозрачность", "pH", "Белок", "Глюкоза", "Кетоновые тела", "Лейкоциты", "Эритроциты"},
		},
	}
}

// SyncAnalysisTypes upserts the built-in analysis types by name.
func (s *Store) SyncAnalysisTypes(ctx context.Context) error {
	if err := s.ready(); err != nil {
		return err
	}

	query := `
		INSERT INTO analysis_types (name, description, parameters)
		VALUES ($1, $2, $3)
		ON CONFLICT (name)
		DO UPDATE SET
			description = EXCLUDED.description,
			parameters = EXCLUDED.parameters
	`

	definitions := GetAnalysisTypeDefinitions()
	for _, def := range definitions {
		if _, err := s.pool.Exec(ctx, query, def.Name, def.Description, JoinParameters(def.Parameters)); err != nil {
			return wrapWriteError(fmt.Sprintf("sync analysis type %s", def.Name), err)
		}
	}

	logger.Infof("Synced %d analysis types", len(definitions))

	return nil
}

// ListAnalysisTypes returns all analysis types ordered by name.
func (s *Store) ListAnalysisTypes(ctx context.Context) ([]AnalysisType, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, name, description, parameters
		FROM analysis_types
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, wrapReadError("list analysis types", err)
	}
	defer rows.Close()

	var types []AnalysisType
	for rows.Next() {
		var (
			at     AnalysisType
			params string
		)
		if err := rows.Scan(&at.ID, &at.Name, &at.Description, &params); err != nil {
			return nil, wrapReadError("scan analysis type", err)
		}
		at.Parameters = SplitParameters(params)
		types = append(types, at)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapReadError("iterate analysis types", err)
	}

	return types, nil
}

// GetAnalysisType returns an analysis type by ID.
func (s *Store) GetAnalysisType(ctx context.Context, id uuid.UUID) (*AnalysisType, error) {
	return s.getAnalysisType(ctx, `SELECT id, name, description, parameters FROM analysis_types WHERE id = $1`, id)
}

// GetAnalysisTypeByName returns an analysis type by its exact name.
func (s *Store) GetAnalysisTypeByName(ctx context.Context, name string) (*AnalysisType, error) {
	return s.getAnalysisType(ctx, `SELECT id, name, description, parameters FROM analysis_types WHERE name = $1`, name)
}

func (s *Store) getAnalysisType(ctx context.Context, query string, arg interface{}) (*AnalysisType, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	var (
		at     AnalysisType
		params string
	)

	err := s.pool.QueryRow(ctx, query, arg).Scan(&at.ID, &at.Name, &at.Description, &params)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: analysis type %v", ErrNotFound, arg)
		}
		return nil, wrapReadError("get analysis type", err)
	}

	at.Parameters = SplitParameters(params)

	return &at, nil
}

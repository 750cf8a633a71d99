/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"net/http"

	"github.com/flamego/flamego"

	"github.com/humaidq/medcenter/db"
)

// ListAnalysisTypes returns the analysis catalogue.
func ListAnalysisTypes(c flamego.Context, store Store) {
	types, err := store.ListAnalysisTypes(c.Request().Context())
	if err != nil {
		writeFailure(c, "list analysis types", err)
		return
	}
	if types == nil {
		types = []db.AnalysisType{}
	}

	writeJSON(c, http.StatusOK, types)
}

// GetAnalysisType returns one analysis type with its parameters.
func GetAnalysisType(c flamego.Context, store Store) {
	id, err := idParam(c, "id")
	if err != nil {
		writeFailure(c, "get analysis type", err)
		return
	}

	analysisType, err := store.GetAnalysisType(c.Request().Context(), id)
	if err != nil {
		writeFailure(c, "get analysis type", err)
		return
	}

	writeJSON(c, http.StatusOK, analysisType)
}

// ListReferenceRanges returns the normal-range reference table.
func ListReferenceRanges(c flamego.Context, store Store) {
	refs := store.References().All()
	if refs == nil {
		refs = []db.ParameterReference{}
	}

	writeJSON(c, http.StatusOK, refs)
}

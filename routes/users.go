/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/flamego/flamego"
	"github.com/flamego/session"

	"github.com/humaidq/medcenter/db"
)

type createUserRequest struct {
	Username string  `json:"username"`
	Password string  `json:"password"`
	FullName string  `json:"full_name"`
	Role     db.Role `json:"role"`
	Email    *string `json:"email"`
	// Specialization creates the doctor profile for doctor accounts.
	Specialization string `json:"specialization"`
}

type userResponse struct {
	User   *db.User   `json:"user"`
	Doctor *db.Doctor `json:"doctor,omitempty"`
}

// ListUsers returns staff accounts, optionally filtered by ?role.
func ListUsers(c flamego.Context, store Store) {
	var role *db.Role
	if raw := strings.TrimSpace(c.Query("role")); raw != "" {
		r := db.Role(raw)
		if !r.Valid() {
			writeFailure(c, "list users", fmt.Errorf("%w: unknown role %q", db.ErrValidation, raw))
			return
		}
		role = &r
	}

	users, err := store.ListUsers(c.Request().Context(), role)
	if err != nil {
		writeFailure(c, "list users", err)
		return
	}
	if users == nil {
		users = []db.User{}
	}

	writeJSON(c, http.StatusOK, users)
}

// CreateUser adds a staff account.
func CreateUser(c flamego.Context, store Store) {
	var req createUserRequest
	if err := decodeJSON(c, &req); err != nil {
		writeFailure(c, "create user", err)
		return
	}

	ctx := c.Request().Context()
	user, err := store.CreateUser(ctx, db.CreateUserInput{
		Username: req.Username,
		Password: req.Password,
		FullName: req.FullName,
		Role:     req.Role,
		Email:    req.Email,
	})
	if err != nil {
		writeFailure(c, "create user", err)
		return
	}

	resp := userResponse{User: user}
	if user.Role == db.RoleDoctor {
		doctor, err := store.CreateDoctor(ctx, user.ID, req.Specialization)
		if err != nil {
			writeFailure(c, "create doctor profile", err)
			return
		}
		resp.Doctor = doctor
	}

	writeJSON(c, http.StatusCreated, resp)
}

// UpdateUser replaces a staff account's editable fields.
func UpdateUser(c flamego.Context, store Store) {
	id, err := idParam(c, "id")
	if err != nil {
		writeFailure(c, "update user", err)
		return
	}

	var req struct {
		FullName string  `json:"full_name"`
		Role     db.Role `json:"role"`
		Email    *string `json:"email"`
		Password *string `json:"password"`
	}
	if err := decodeJSON(c, &req); err != nil {
		writeFailure(c, "update user", err)
		return
	}

	err = store.UpdateUser(c.Request().Context(), id, db.UpdateUserInput{
		FullName: req.FullName,
		Role:     req.Role,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeFailure(c, "update user", err)
		return
	}

	c.ResponseWriter().WriteHeader(http.StatusNoContent)
}

// SetUserStatus blocks or unblocks an account. Admins cannot block
// themselves.
func SetUserStatus(c flamego.Context, s session.Session, store Store) {
	id, err := idParam(c, "id")
	if err != nil {
		writeFailure(c, "set user status", err)
		return
	}

	var req struct {
		Status db.UserStatus `json:"status"`
	}
	if err := decodeJSON(c, &req); err != nil {
		writeFailure(c, "set user status", err)
		return
	}

	if user, ok := currentUser(s); ok && user.ID == id && req.Status != db.UserActive {
		writeFailure(c, "set user status", fmt.Errorf("%w: cannot block the signed-in account", db.ErrValidation))
		return
	}

	if err := store.SetUserStatus(c.Request().Context(), id, req.Status); err != nil {
		writeFailure(c, "set user status", err)
		return
	}

	c.ResponseWriter().WriteHeader(http.StatusNoContent)
}

// DeleteUser removes a staff account other than the signed-in one.
func DeleteUser(c flamego.Context, s session.Session, store Store) {
	id, err := idParam(c, "id")
	if err != nil {
		writeFailure(c, "delete user", err)
		return
	}

	if user, ok := currentUser(s); ok && user.ID == id {
		writeFailure(c, "delete user", fmt.Errorf("%w: cannot delete the signed-in account", db.ErrValidation))
		return
	}

	if err := store.DeleteUser(c.Request().Context(), id); err != nil {
		writeFailure(c, "delete user", err)
		return
	}

	c.ResponseWriter().WriteHeader(http.StatusNoContent)
}

// ListDoctors returns doctors with their specializations.
func ListDoctors(c flamego.Context, store Store) {
	doctors, err := store.ListDoctors(c.Request().Context())
	if err != nil {
		writeFailure(c, "list doctors", err)
		return
	}
	if doctors == nil {
		doctors = []db.Doctor{}
	}

	writeJSON(c, http.StatusOK, doctors)
}

/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/flamego/flamego"
	"github.com/flamego/session"
	"github.com/flamego/template"
	"github.com/google/uuid"

	"github.com/humaidq/medcenter/db"
)

const (
	sessionKeyAuthenticated = "authenticated"
	sessionKeyUserID        = "user_id"
	sessionKeyRole          = "user_role"
	sessionKeyDisplayName   = "user_display_name"
)

// SessionUser is the signed-in staff member as recorded in the session.
type SessionUser struct {
	ID       uuid.UUID `json:"id"`
	Role     db.Role   `json:"role"`
	FullName string    `json:"full_name"`
}

func currentUser(s session.Session) (SessionUser, bool) {
	authenticated, ok := s.Get(sessionKeyAuthenticated).(bool)
	if !ok || !authenticated {
		return SessionUser{}, false
	}

	rawID, _ := s.Get(sessionKeyUserID).(string)
	id, err := uuid.Parse(rawID)
	if err != nil {
		return SessionUser{}, false
	}

	role, _ := s.Get(sessionKeyRole).(string)
	name, _ := s.Get(sessionKeyDisplayName).(string)

	return SessionUser{ID: id, Role: db.Role(role), FullName: name}, true
}

func setSessionUser(s session.Session, user *db.User) {
	s.Set(sessionKeyAuthenticated, true)
	s.Set(sessionKeyUserID, user.ID.String())
	s.Set(sessionKeyRole, string(user.Role))
	s.Set(sessionKeyDisplayName, user.FullName)
}

// LoginForm renders the login page
func LoginForm(c flamego.Context, s session.Session, t template.Template) {
	if _, ok := currentUser(s); ok {
		c.Redirect("/", http.StatusSeeOther)
		return
	}
	t.HTML(http.StatusOK, "login")
}

// Login checks the submitted credentials and starts a session.
func Login(c flamego.Context, s session.Session, store Store) {
	if err := c.Request().ParseForm(); err != nil {
		SetErrorFlash(s, "Некорректные данные формы")
		c.Redirect("/login", http.StatusSeeOther)
		return
	}

	username := strings.TrimSpace(c.Request().Form.Get("username"))
	password := c.Request().Form.Get("password")

	user, err := store.Authenticate(c.Request().Context(), username, password)
	if err != nil {
		if errors.Is(err, db.ErrInvalidCredentials) {
			logAccessDenied(c, s, "invalid_credentials", http.StatusSeeOther, "username", username)
			SetErrorFlash(s, "Неверное имя пользователя или пароль")
		} else {
			logger.Error("Login failed", "username", username, "error", err)
			SetErrorFlash(s, "Не удалось выполнить вход")
		}
		c.Redirect("/login", http.StatusSeeOther)
		return
	}

	if err := s.RegenerateID(c.ResponseWriter(), c.Request().Request); err != nil {
		logger.Warn("Failed to regenerate session ID", "error", err)
	}
	setSessionUser(s, user)

	logger.Info("User logged in", "user_id", user.ID, "role", user.Role)
	c.Redirect("/", http.StatusSeeOther)
}

// Logout handles logout request
func Logout(s session.Session, c flamego.Context) {
	s.Delete(sessionKeyAuthenticated)
	s.Delete(sessionKeyUserID)
	s.Delete(sessionKeyRole)
	s.Delete(sessionKeyDisplayName)
	c.Redirect("/login")
}

// RequireAuth is a middleware that checks if user is authenticated
func RequireAuth(s session.Session, c flamego.Context) {
	if _, ok := currentUser(s); !ok {
		c.Redirect("/login")
		return
	}
	c.Next()
}

// RequireAPIAuth rejects unauthenticated API calls with 401.
func RequireAPIAuth(s session.Session, c flamego.Context) {
	if _, ok := currentUser(s); !ok {
		logAccessDenied(c, s, "not_authenticated", http.StatusUnauthorized)
		writeError(c, http.StatusUnauthorized, "authentication required")
		return
	}
	c.Next()
}

// RequireRole allows the request through only for the given roles.
func RequireRole(roles ...db.Role) flamego.Handler {
	return func(s session.Session, c flamego.Context) {
		user, ok := currentUser(s)
		if !ok {
			logAccessDenied(c, s, "not_authenticated", http.StatusUnauthorized)
			writeError(c, http.StatusUnauthorized, "authentication required")
			return
		}
		if !slices.Contains(roles, user.Role) {
			logAccessDenied(c, s, "role_not_allowed", http.StatusForbidden)
			writeError(c, http.StatusForbidden, "access restricted")
			return
		}
		c.Next()
	}
}

// CurrentUser returns the signed-in user.
func CurrentUser(c flamego.Context, s session.Session) {
	user, ok := currentUser(s)
	if !ok {
		writeError(c, http.StatusUnauthorized, "authentication required")
		return
	}
	writeJSON(c, http.StatusOK, user)
}

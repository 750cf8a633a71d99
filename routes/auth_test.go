// SPDX-FileCopyrightText: 2025 Humaid Alqasimi
// SPDX-License-Identifier: Apache-2.0

package routes

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/flamego/flamego"
	"github.com/google/uuid"

	"github.com/humaidq/medcenter/db"
)

func newAuthTestApp(s *testSession, store Store) *flamego.Flame {
	return newTestApp(s, store, nil, func(f *flamego.Flame) {
		f.Post("/login", Login)
		f.Get("/logout", Logout)
		f.Get("/page", RequireAuth, func(c flamego.Context) {
			c.ResponseWriter().WriteHeader(http.StatusNoContent)
		})
		f.Group("/api", func() {
			f.Get("/me", CurrentUser)
			f.Get("/admin", RequireRole(db.RoleAdmin), func(c flamego.Context) {
				c.ResponseWriter().WriteHeader(http.StatusNoContent)
			})
		}, RequireAPIAuth)
	})
}

func TestLoginStartsSession(t *testing.T) {
	t.Parallel()

	user := &db.User{ID: uuid.New(), Username: "lab1", FullName: "Иванова Мария Петровна", Role: db.RoleLab}
	s := newTestSession()
	f := newAuthTestApp(s, &fakeStore{user: user})

	rec := performFormPOST(t, f, "/login", url.Values{"username": {" lab1 "}, "password": {"lab123"}})
	assertRedirect(t, rec, "/")

	got, ok := currentUser(s)
	if !ok {
		t.Fatalf("expected authenticated session")
	}
	if got.ID != user.ID || got.Role != db.RoleLab || got.FullName != user.FullName {
		t.Fatalf("unexpected session user: %#v", got)
	}
}

func TestLoginRejectsInvalidCredentials(t *testing.T) {
	t.Parallel()

	s := newTestSession()
	f := newAuthTestApp(s, &fakeStore{authErr: db.ErrInvalidCredentials})

	rec := performFormPOST(t, f, "/login", url.Values{"username": {"lab1"}, "password": {"wrong"}})
	assertRedirect(t, rec, "/login")
	assertFlash(t, s, FlashError, "Неверное имя пользователя или пароль")

	if _, ok := currentUser(s); ok {
		t.Fatalf("expected no session user after failed login")
	}
}

func TestLoginStoreFailure(t *testing.T) {
	t.Parallel()

	s := newTestSession()
	f := newAuthTestApp(s, &fakeStore{authErr: fmt.Errorf("%w: timeout", db.ErrPersistence)})

	rec := performFormPOST(t, f, "/login", url.Values{"username": {"lab1"}, "password": {"lab123"}})
	assertRedirect(t, rec, "/login")
	assertFlash(t, s, FlashError, "Не удалось выполнить вход")
}

func TestLogoutClearsSession(t *testing.T) {
	t.Parallel()

	s := newTestSession()
	signIn(s, db.RoleDoctor)
	f := newAuthTestApp(s, &fakeStore{})

	rec := performJSON(t, f, http.MethodGet, "/logout", nil)
	assertRedirect(t, rec, "/login")

	if _, ok := currentUser(s); ok {
		t.Fatalf("expected session to be cleared")
	}
}

func TestRequireAuthRedirectsAnonymous(t *testing.T) {
	t.Parallel()

	f := newAuthTestApp(newTestSession(), &fakeStore{})

	rec := performJSON(t, f, http.MethodGet, "/page", nil)
	assertRedirect(t, rec, "/login")
}

func TestRequireAPIAuth(t *testing.T) {
	t.Parallel()

	f := newAuthTestApp(newTestSession(), &fakeStore{})
	rec := performJSON(t, f, http.MethodGet, "/api/me", nil)
	assertStatus(t, rec, http.StatusUnauthorized)

	s := newTestSession()
	id := signIn(s, db.RoleLab)
	f = newAuthTestApp(s, &fakeStore{})
	rec = performJSON(t, f, http.MethodGet, "/api/me", nil)
	assertStatus(t, rec, http.StatusOK)

	if want := id.String(); !strings.Contains(rec.Body.String(), want) {
		t.Fatalf("expected user id %s in %s", want, rec.Body.String())
	}
}

func TestRequireRole(t *testing.T) {
	t.Parallel()

	tests := []struct {
		role db.Role
		want int
	}{
		{role: db.RoleAdmin, want: http.StatusNoContent},
		{role: db.RoleDoctor, want: http.StatusForbidden},
		{role: db.RoleLab, want: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			t.Parallel()

			s := newTestSession()
			signIn(s, tt.role)
			f := newAuthTestApp(s, &fakeStore{})

			rec := performJSON(t, f, http.MethodGet, "/api/admin", nil)
			assertStatus(t, rec, tt.want)
		})
	}
}

func TestCurrentUserRejectsMalformedSession(t *testing.T) {
	t.Parallel()

	s := newTestSession()
	s.Set(sessionKeyAuthenticated, true)
	s.Set(sessionKeyUserID, "not-a-uuid")

	if _, ok := currentUser(s); ok {
		t.Fatalf("expected malformed user id to be rejected")
	}
}

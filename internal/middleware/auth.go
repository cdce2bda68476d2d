// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"golang.org/x/crypto/bcrypt"
)

// BasicAuth guards next with HTTP basic authentication. The password is
// checked against a bcrypt hash. An empty hash disables the check.
func BasicAuth(username, passwordHash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if passwordHash == "" {
			return next
		}
		hash := []byte(passwordHash)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, pass, ok := r.BasicAuth()
			if !ok || !credentialsMatch(user, pass, username, hash) {
				if ok {
					slog.Warn("status server authentication failed", "user", user, "remote", r.RemoteAddr)
				}
				w.Header().Set("WWW-Authenticate", `Basic realm="autopress", charset="UTF-8"`)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"unauthorized"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func credentialsMatch(user, pass, wantUser string, hash []byte) bool {
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(wantUser)) == 1
	// Always run bcrypt so a wrong user name takes as long as a wrong password.
	passOK := bcrypt.CompareHashAndPassword(hash, []byte(pass)) == nil
	return userOK && passOK
}

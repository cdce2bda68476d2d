// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestBasicAuth(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	handler := BasicAuth("ops", string(hash))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))

	tests := []struct {
		name     string
		user     string
		pass     string
		noHeader bool
		want     int
	}{
		{name: "valid", user: "ops", pass: "s3cret", want: http.StatusOK},
		{name: "wrong password", user: "ops", pass: "guess", want: http.StatusUnauthorized},
		{name: "wrong user", user: "admin", pass: "s3cret", want: http.StatusUnauthorized},
		{name: "no credentials", noHeader: true, want: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/posts", nil)
			if !tt.noHeader {
				req.SetBasicAuth(tt.user, tt.pass)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.want {
				t.Errorf("status: got %d, want %d", rr.Code, tt.want)
			}
			if tt.want == http.StatusUnauthorized {
				if !strings.HasPrefix(rr.Header().Get("WWW-Authenticate"), "Basic ") {
					t.Errorf("WWW-Authenticate: got %q", rr.Header().Get("WWW-Authenticate"))
				}
			}
		})
	}
}

func TestBasicAuth_DisabledWithoutHash(t *testing.T) {
	handler := BasicAuth("", "")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/posts", nil))

	if rr.Code != http.StatusNoContent {
		t.Errorf("status: got %d, want 204", rr.Code)
	}
}

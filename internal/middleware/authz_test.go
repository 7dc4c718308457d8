package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/burgasvv/parking-service/internal/apperr"
	"github.com/burgasvv/parking-service/internal/auth"
	"github.com/burgasvv/parking-service/internal/model"
)

func TestRequireAdmin(t *testing.T) {
	t.Parallel()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mw := RequireAdmin()(next)

	tests := []struct {
		name       string
		caller     *auth.Caller
		wantStatus int
	}{
		{"no caller", nil, http.StatusUnauthorized},
		{"user caller", &auth.Caller{Authority: model.AuthorityUser}, http.StatusForbidden},
		{"admin caller", &auth.Caller{Authority: model.AuthorityAdmin}, http.StatusOK},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.caller != nil {
				r = r.WithContext(auth.ContextWithCaller(r.Context(), tt.caller))
			}
			w := httptest.NewRecorder()

			mw.ServeHTTP(w, r)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestIDFromQuery(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	r := httptest.NewRequest(http.MethodGet, "/?carId="+id.String(), nil)

	got, err := idFromQuery(r, "carId")
	if err != nil {
		t.Fatalf("idFromQuery failed: %v", err)
	}
	if got != id {
		t.Errorf("id mismatch: got %s", got)
	}

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	if _, err := idFromQuery(r, "carId"); !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("missing param should be a validation error, got %v", err)
	}

	r = httptest.NewRequest(http.MethodGet, "/?carId=nope", nil)
	if _, err := idFromQuery(r, "carId"); !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("malformed param should be a validation error, got %v", err)
	}
}

func TestIDFromBody_RestoresBody(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	body := `{"id":"` + id.String() + `","brand":"Lada"}`
	r := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(body))

	got, err := idFromBody(r, func(t targetBody) *uuid.UUID { return t.ID })
	if err != nil {
		t.Fatalf("idFromBody failed: %v", err)
	}
	if got != id {
		t.Errorf("id mismatch: got %s", got)
	}

	restored, err := io.ReadAll(r.Body)
	if err != nil {
		t.Fatalf("read restored body: %v", err)
	}
	if string(restored) != body {
		t.Errorf("body not restored: got %q", restored)
	}
}

func TestIDFromBody_Errors(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodPut, "/", strings.NewReader("not-json"))
	if _, err := idFromBody(r, func(t targetBody) *uuid.UUID { return t.ID }); !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("malformed body should be a validation error, got %v", err)
	}

	r = httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"brand":"Lada"}`))
	if _, err := idFromBody(r, func(t targetBody) *uuid.UUID { return t.ID }); !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("missing id should be a validation error, got %v", err)
	}
}

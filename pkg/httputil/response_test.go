package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/matzehuels/sersmask/pkg/errors"
)

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusCreated, map[string]int{"n": 3})

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusCreated)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q", got)
	}
	if got := rec.Body.String(); got != "{\"n\":3}\n" {
		t.Errorf("body = %q", got)
	}
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   errors.Code
		wantField  string
	}{
		{
			name:       "geometry",
			err:        errors.New(errors.ErrCodeInvalidGeometry, "must be positive").WithField("gap"),
			wantStatus: http.StatusBadRequest,
			wantCode:   errors.ErrCodeInvalidGeometry,
			wantField:  "gap",
		},
		{
			name:       "wrapped conflict",
			err:        fmt.Errorf("plan: %w", errors.New(errors.ErrCodeConfigConflict, "wg already registered")),
			wantStatus: http.StatusConflict,
			wantCode:   errors.ErrCodeConfigConflict,
		},
		{
			name:       "not found",
			err:        errors.New(errors.ErrCodeNotFound, "run x not found"),
			wantStatus: http.StatusNotFound,
			wantCode:   errors.ErrCodeNotFound,
		},
		{
			name:       "plain error",
			err:        fmt.Errorf("disk full"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   errors.ErrCodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var body map[string]ErrorBody
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			got := body["error"]
			if got.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Field != tt.wantField {
				t.Errorf("field = %q, want %q", got.Field, tt.wantField)
			}
			if got.Message != tt.err.Error() {
				t.Errorf("message = %q, want %q", got.Message, tt.err.Error())
			}
		})
	}
}

func TestBadRequest(t *testing.T) {
	rec := httptest.NewRecorder()
	BadRequest(rec, "limit must be a number")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draftforge/cubeleague/go/internal/apperrors"
)

func TestWriteErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{
			name:       "not authenticated",
			err:        apperrors.NotAuthenticated(),
			wantStatus: http.StatusUnauthorized,
			wantError:  "not authenticated",
		},
		{
			name:       "not authorized",
			err:        apperrors.NotAuthorized(),
			wantStatus: http.StatusForbidden,
			wantError:  "unauthorized",
		},
		{
			name:       "not found",
			err:        apperrors.New(apperrors.KindNotFound, "season not found"),
			wantStatus: http.StatusNotFound,
			wantError:  "season not found",
		},
		{
			name:       "validation",
			err:        apperrors.New(apperrors.KindValidation, "your team is not on the clock"),
			wantStatus: http.StatusBadRequest,
			wantError:  "your team is not on the clock",
		},
		{
			name:       "conflict",
			err:        apperrors.New(apperrors.KindConflict, "This specific card has already been drafted."),
			wantStatus: http.StatusConflict,
			wantError:  "This specific card has already been drafted.",
		},
		{
			name:       "store errors stay generic",
			err:        apperrors.Wrap(apperrors.KindStore, "query failed", errors.New("connection refused")),
			wantStatus: http.StatusInternalServerError,
			wantError:  "internal error",
		},
		{
			name:       "plain errors stay generic",
			err:        errors.New("surprise"),
			wantStatus: http.StatusInternalServerError,
			wantError:  "internal error",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, tc.err)

			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body errorBody
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tc.wantError, body.Error)
		})
	}
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"question":"x","bogus":true}`))

	var payload struct {
		Question string `json:"question"`
	}
	err := decode(req, &payload)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestDecodeReadsValidBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"question":"Best guild?"}`))

	var payload struct {
		Question string `json:"question"`
	}
	require.NoError(t, decode(req, &payload))
	assert.Equal(t, "Best guild?", payload.Question)
}

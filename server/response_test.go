package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/elinasafina23/EBR/db"
	"github.com/elinasafina23/EBR/errors"
)

func TestWriteServiceErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "not found",
			err:  errors.NewNotFoundf("batch record B1 not found"),
			want: http.StatusNotFound,
		},
		{
			name: "invalid request",
			err:  errors.Wrapf(errors.ErrInvalidRequest, "unknown batch status %q", "shipped"),
			want: http.StatusBadRequest,
		},
		{
			name: "invariant",
			err:  errors.NewInvariantf("only completed batch records can be published"),
			want: http.StatusConflict,
		},
		{
			name: "upstream credential rejection",
			err:  errors.WrapUnauthorized(errors.New("QMIB returned status 401"), "POST /batches"),
			want: http.StatusBadGateway,
		},
		{
			name: "retry budget exhausted",
			err:  errors.Mark(errors.New("QMIB POST /batches failed after 3 attempts"), errors.ErrServiceUnavailable),
			want: http.StatusBadGateway,
		},
		{
			name: "database closed during shutdown",
			err:  errors.Wrap(db.ErrDatabaseClosed, "failed to list batch records"),
			want: http.StatusServiceUnavailable,
		},
		{
			name: "raw driver closed error",
			err:  errors.New("sql: database is closed"),
			want: http.StatusServiceUnavailable,
		},
		{
			name: "unclassified",
			err:  errors.New("disk full"),
			want: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeServiceError(rec, tt.err)
			assert.Equal(t, tt.want, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		})
	}
}

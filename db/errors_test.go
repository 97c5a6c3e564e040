package db

import (
	"testing"

	"github.com/elinasafina23/EBR/errors"
)

func TestIsDatabaseClosed(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"sentinel", ErrDatabaseClosed, true},
		{"wrapped sentinel", errors.Wrap(ErrDatabaseClosed, "failed to list batch records"), true},
		{"raw driver error", errors.New("sql: database is closed"), true},
		{"unrelated", errors.New("disk full"), false},
		{"not found", errors.NewNotFoundf("batch record B1 not found"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsDatabaseClosed(tt.err); got != tt.want {
				t.Errorf("IsDatabaseClosed(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

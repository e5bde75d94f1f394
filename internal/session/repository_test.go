package session

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDBRepository_Create(t *testing.T) {
	completedAt := time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	session := New("user-1", "task-1", "math", 60, 90, completedAt, nil, "")
	mock.ExpectExec("INSERT INTO sessions").
		WithArgs(session.ID, "user-1", "task-1", "math",
			session.StartTime, completedAt, 90, 60, 67, nil, "").
		WillReturnResult(sqlmock.NewResult(1, 1))

	repo := NewDBRepository(sqlx.NewDb(db, "mysql"))
	require.NoError(t, repo.Create(context.Background(), session))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDBRepository_AverageEfficiency(t *testing.T) {
	from := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		want      float64
		wantErr   bool
	}{
		{
			name: "averages over the range",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT COALESCE\\(AVG\\(efficiency\\), 0\\) FROM sessions").
					WithArgs("user-1", from, to).
					WillReturnRows(sqlmock.NewRows([]string{"avg"}).AddRow(83.5))
			},
			want: 83.5,
		},
		{
			name: "no sessions yields zero",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT COALESCE\\(AVG\\(efficiency\\), 0\\) FROM sessions").
					WithArgs("user-1", from, to).
					WillReturnRows(sqlmock.NewRows([]string{"avg"}).AddRow(0))
			},
			want: 0,
		},
		{
			name: "db error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT COALESCE\\(AVG\\(efficiency\\), 0\\) FROM sessions").
					WillReturnError(fmt.Errorf("connection refused"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			repo := NewDBRepository(sqlx.NewDb(db, "mysql"))
			tt.setupMock(mock)

			got, err := repo.AverageEfficiency(context.Background(), "user-1", from, to)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

package postgres

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solar_analyzer/internal/model"
)

func newMock(t *testing.T) (*RecordRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRecordRepository(db), mock
}

func recordRows() *sqlmock.Rows {
	cols := append([]string{"date", "hour"}, recordColumns...)
	return sqlmock.NewRows(cols)
}

func TestRecordRepository_Load(t *testing.T) {
	repo, mock := newMock(t)

	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	rows := recordRows().
		AddRow(day, 7, 12, 850.0, 0.85, -200.0, -0.2, 100.0, 0.1, 450.0, 0.45, 100.0, 0.1, 55.0, 50.0, 60.0).
		AddRow(day, 8, nil, 1500.0, 1.5, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil)

	mock.ExpectQuery(`SELECT date, hour, readings, avg_pv_w, .* FROM hourly_records WHERE site_id = \$1 AND date >= \$2 AND date <= \$3 ORDER BY date ASC, hour ASC`).
		WithArgs("home", day, time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)).
		WillReturnRows(rows)

	records, err := repo.Load(context.Background(), "home", "2025-06-01", "2025-06-30")
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "2025-06-01", records[0].Date)
	assert.Equal(t, "07:00", records[0].Hour)
	assert.Equal(t, 12, records[0].Readings)
	assert.InDelta(t, 0.85, records[0].PVKWh, 0.001)
	assert.InDelta(t, -0.2, records[0].BatteryKWh, 0.001)
	assert.InDelta(t, 0.1, records[0].BackupLoadKWh, 0.001)
	assert.InDelta(t, 60.0, records[0].MaxSOCPct, 0.001)

	assert.Equal(t, "08:00", records[1].Hour)
	assert.InDelta(t, 1.5, records[1].PVKWh, 0.001)
	assert.Zero(t, records[1].GridKWh)
	assert.Zero(t, records[1].Readings)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepository_LoadOpenRange(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRecordRepository(db, WithTable("site_hours"))

	mock.ExpectQuery(`FROM site_hours WHERE site_id = \$1 ORDER BY`).
		WithArgs("home").
		WillReturnRows(recordRows())

	records, err := repo.Load(context.Background(), "home", "", "")
	require.NoError(t, err)
	assert.Empty(t, records)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepository_LoadErrors(t *testing.T) {
	repo, mock := newMock(t)

	_, err := repo.Load(context.Background(), "", "", "")
	assert.Error(t, err)

	_, err = repo.Load(context.Background(), "home", "June", "")
	assert.Error(t, err)

	mock.ExpectQuery(`FROM hourly_records`).WillReturnError(errors.New("connection reset"))
	_, err = repo.Load(context.Background(), "home", "", "")
	assert.ErrorContains(t, err, "connection reset")

	mock.ExpectQuery(`FROM hourly_records`).
		WillReturnRows(recordRows().AddRow(time.Now(), 24, 0, 0.0, 0.0, 0.0, 0.0, 0.0, 0.0, 0.0, 0.0, 0.0, 0.0, 0.0, 0.0, 0.0))
	_, err = repo.Load(context.Background(), "home", "", "")
	assert.ErrorContains(t, err, "out of range")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepository_Upsert(t *testing.T) {
	repo, mock := newMock(t)

	records := []model.HourlyRecord{
		{Date: "2025-06-01", Hour: "07:00", PVKWh: 0.85},
		{Date: "2025-06-01", Hour: "08:00", PVKWh: 1.5},
	}

	mock.ExpectBegin()
	for _, h := range []int{7, 8} {
		args := []driver.Value{"home", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), h}
		for range recordColumns {
			args = append(args, sqlmock.AnyArg())
		}
		mock.ExpectExec(`INSERT INTO hourly_records \(site_id, date, hour, readings, .*\) VALUES .* ON CONFLICT \(site_id, date, hour\) DO UPDATE SET readings = EXCLUDED.readings`).
			WithArgs(args...).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()

	require.NoError(t, repo.Upsert(context.Background(), "home", records))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepository_UpsertRollsBack(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO hourly_records`).WillReturnError(errors.New("constraint"))
	mock.ExpectRollback()

	err := repo.Upsert(context.Background(), "home", []model.HourlyRecord{{Date: "2025-06-01", Hour: "07:00"}})
	assert.ErrorContains(t, err, "constraint")

	mock.ExpectBegin()
	mock.ExpectRollback()
	err = repo.Upsert(context.Background(), "home", []model.HourlyRecord{{Date: "bad", Hour: "07:00"}})
	assert.Error(t, err)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepository_UpsertEmpty(t *testing.T) {
	repo, mock := newMock(t)
	require.NoError(t, repo.Upsert(context.Background(), "home", nil))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOpen_EmptyURL(t *testing.T) {
	_, err := Open(context.Background(), "")
	assert.Error(t, err)
}

func TestSource(t *testing.T) {
	assert.Equal(t, "postgres:home", Source("home"))
}

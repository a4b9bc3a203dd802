package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"solar_analyzer/internal/model"
)

const defaultRecordTable = "hourly_records"

// recordColumns lists the value columns after site_id, date and hour, in
// the order they are scanned.
var recordColumns = []string{
	"readings",
	"avg_pv_w", "pv_energy_kwh",
	"avg_battery_w", "battery_energy_kwh",
	"avg_grid_w", "grid_energy_kwh",
	"avg_gridload_w", "gridload_energy_kwh",
	"avg_backupload_w", "backupload_energy_kwh",
	"avg_soc_pct", "min_soc_pct", "max_soc_pct",
}

// Open connects to Postgres through the pgx database/sql driver and checks
// the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, errors.New("postgres: empty database url")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return db, nil
}

// RecordRepository reads and writes hourly records for one or more sites.
type RecordRepository struct {
	db    *sql.DB
	table string
}

// NewRecordRepository creates a repository using the default table name.
func NewRecordRepository(db *sql.DB, opts ...RepositoryOption) *RecordRepository {
	repo := &RecordRepository{db: db, table: defaultRecordTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// RepositoryOption configures the repository.
type RepositoryOption func(*RecordRepository)

// WithTable overrides the default table name.
func WithTable(table string) RepositoryOption {
	return func(repo *RecordRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

// Source names the records of a site for the report file list.
func Source(siteID string) string {
	return "postgres:" + siteID
}

// Load returns the site's records dated between from and to (inclusive,
// YYYY-MM-DD), ordered by date and hour. Empty bounds are open.
func (r *RecordRepository) Load(ctx context.Context, siteID, from, to string) ([]model.HourlyRecord, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("record repo: nil db")
	}
	if siteID == "" {
		return nil, errors.New("record repo: empty site id")
	}

	args := []any{siteID}
	where := "site_id = $1"
	for _, bound := range []struct {
		value string
		op    string
	}{{from, ">="}, {to, "<="}} {
		if bound.value == "" {
			continue
		}
		day, err := model.ParseDate(bound.value)
		if err != nil {
			return nil, fmt.Errorf("record repo: bound %q: %w", bound.value, err)
		}
		args = append(args, day)
		where += fmt.Sprintf(" AND date %s $%d", bound.op, len(args))
	}

	query := fmt.Sprintf(`
SELECT date, hour, %s
FROM %s
WHERE %s
ORDER BY date ASC, hour ASC`, strings.Join(recordColumns, ", "), r.table, where)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []model.HourlyRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (model.HourlyRecord, error) {
	var (
		date     time.Time
		hour     int
		readings sql.NullInt64
		values   [13]sql.NullFloat64
	)
	dest := []any{&date, &hour, &readings}
	for i := range values {
		dest = append(dest, &values[i])
	}
	if err := row.Scan(dest...); err != nil {
		return model.HourlyRecord{}, err
	}
	if hour < 0 || hour > 23 {
		return model.HourlyRecord{}, fmt.Errorf("record repo: hour %d out of range", hour)
	}

	v := func(i int) float64 { return values[i].Float64 }
	return model.HourlyRecord{
		Date:           date.Format(model.DateLayout),
		Hour:           model.HourLabel(hour),
		Readings:       int(readings.Int64),
		AvgPVW:         v(0),
		PVKWh:          v(1),
		AvgBatteryW:    v(2),
		BatteryKWh:     v(3),
		AvgGridW:       v(4),
		GridKWh:        v(5),
		AvgGridLoadW:   v(6),
		GridLoadKWh:    v(7),
		AvgBackupLoadW: v(8),
		BackupLoadKWh:  v(9),
		AvgSOCPct:      v(10),
		MinSOCPct:      v(11),
		MaxSOCPct:      v(12),
	}, nil
}

// Upsert writes records for a site in one transaction, replacing rows that
// share (site_id, date, hour).
func (r *RecordRepository) Upsert(ctx context.Context, siteID string, records []model.HourlyRecord) error {
	if r == nil || r.db == nil {
		return errors.New("record repo: nil db")
	}
	if siteID == "" {
		return errors.New("record repo: empty site id")
	}
	if len(records) == 0 {
		return nil
	}

	placeholders := make([]string, 0, len(recordColumns)+3)
	updates := make([]string, 0, len(recordColumns))
	for i := 1; i <= len(recordColumns)+3; i++ {
		placeholders = append(placeholders, fmt.Sprintf("$%d", i))
	}
	for _, col := range recordColumns {
		updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
	}
	stmt := fmt.Sprintf(`
INSERT INTO %s (site_id, date, hour, %s)
VALUES (%s)
ON CONFLICT (site_id, date, hour)
DO UPDATE SET %s`, r.table, strings.Join(recordColumns, ", "),
		strings.Join(placeholders, ","), strings.Join(updates, ", "))

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, rec := range records {
		day, err := model.ParseDate(rec.Date)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record repo: date %q: %w", rec.Date, err)
		}
		hour, err := model.ParseHour(rec.Hour)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record repo: %w", err)
		}
		_, err = tx.ExecContext(ctx, stmt,
			siteID, day, hour, rec.Readings,
			rec.AvgPVW, rec.PVKWh,
			rec.AvgBatteryW, rec.BatteryKWh,
			rec.AvgGridW, rec.GridKWh,
			rec.AvgGridLoadW, rec.GridLoadKWh,
			rec.AvgBackupLoadW, rec.BackupLoadKWh,
			rec.AvgSOCPct, rec.MinSOCPct, rec.MaxSOCPct,
		)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

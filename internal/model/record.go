package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the calendar date format used for record dates and day keys.
const DateLayout = "2006-01-02"

// HourlyRecord is one hour of site telemetry. Energy fields are kWh for the
// hour, power fields are the hour's average in W.
//
// Grid is positive when exporting and negative when importing. Battery is
// positive when charging and negative when discharging.
type HourlyRecord struct {
	Date     string `json:"date"`
	Hour     string `json:"hour"`
	Readings int    `json:"readings"`

	AvgPVW float64 `json:"avg_pv_w"`
	PVKWh  float64 `json:"pv_kwh"`

	AvgBatteryW float64 `json:"avg_battery_w"`
	BatteryKWh  float64 `json:"battery_kwh"`

	AvgGridW float64 `json:"avg_grid_w"`
	GridKWh  float64 `json:"grid_kwh"`

	AvgGridLoadW   float64 `json:"avg_grid_load_w"`
	GridLoadKWh    float64 `json:"grid_load_kwh"`
	AvgBackupLoadW float64 `json:"avg_backup_load_w"`
	BackupLoadKWh  float64 `json:"backup_load_kwh"`

	AvgSOCPct float64 `json:"avg_soc_pct"`
	MinSOCPct float64 `json:"min_soc_pct"`
	MaxSOCPct float64 `json:"max_soc_pct"`

	// Derived by Enrich.
	LoadKWh             float64 `json:"load_kwh"`
	LoadW               float64 `json:"load_w"`
	GridImportKWh       float64 `json:"grid_import_kwh"`
	GridExportKWh       float64 `json:"grid_export_kwh"`
	BatteryChargeKWh    float64 `json:"battery_charge_kwh"`
	BatteryDischargeKWh float64 `json:"battery_discharge_kwh"`
}

// Enrich returns a copy of r with the derived load, grid and battery split
// fields filled in. Import and export are never both positive. A parseable
// hour is rewritten to the "HH:00" form.
func (r HourlyRecord) Enrich() HourlyRecord {
	if h, err := NormalizeHour(r.Hour); err == nil {
		r.Hour = h
	}
	r.LoadKWh = r.GridLoadKWh + r.BackupLoadKWh
	r.LoadW = r.AvgGridLoadW + r.AvgBackupLoadW
	r.GridImportKWh = max(0, -r.GridKWh)
	r.GridExportKWh = max(0, r.GridKWh)
	r.BatteryChargeKWh = max(0, r.BatteryKWh)
	r.BatteryDischargeKWh = max(0, -r.BatteryKWh)
	return r
}

// Month returns the YYYY-MM key of the record.
func (r HourlyRecord) Month() string {
	if len(r.Date) < 7 {
		return r.Date
	}
	return r.Date[:7]
}

// HourOfDay returns the numeric hour (0-23), or -1 when Hour is malformed.
func (r HourlyRecord) HourOfDay() int {
	h, err := ParseHour(r.Hour)
	if err != nil {
		return -1
	}
	return h
}

// Key identifies a record by date and hour.
func (r HourlyRecord) Key() string {
	return r.Date + " " + r.Hour
}

// ParseHour accepts "HH:MM", "H:MM" or a bare "H" and returns the hour.
func ParseHour(s string) (int, error) {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, ':'); i >= 0 {
		s = s[:i]
	}
	h, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("parsing hour %q: %w", s, err)
	}
	if h < 0 || h > 23 {
		return 0, fmt.Errorf("hour %d out of range", h)
	}
	return h, nil
}

// NormalizeHour rewrites an hour label to the canonical "HH:00" form.
func NormalizeHour(s string) (string, error) {
	h, err := ParseHour(s)
	if err != nil {
		return "", err
	}
	return HourLabel(h), nil
}

// HourLabel formats an hour as "HH:00".
func HourLabel(h int) string {
	return fmt.Sprintf("%02d:00", h)
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// DateRange is the inclusive span of dates covered by a set of records.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"solar_analyzer/internal/model"
)

// HourlyCSVParser parses the normalised hourly CSV produced by the inverter
// exporters.
//
// Expected format (columns matched by name, any order):
//
//	Date,Hour,Readings,Avg_PV_W,PV_Energy_kWh,Avg_Battery_W,Battery_Energy_kWh,...
//	2025-06-01,12:00,12,3210.5,3.21,-850.0,-0.85,...
//
// Date and Hour are required. Missing or unparseable numeric cells read as 0.
// Rows without a date or with an unreadable hour are skipped.
type HourlyCSVParser struct{}

// Column names of the normalised hourly schema.
const (
	ColDate                = "Date"
	ColHour                = "Hour"
	ColReadings            = "Readings"
	ColAvgPVW              = "Avg_PV_W"
	ColPVEnergyKWh         = "PV_Energy_kWh"
	ColAvgBatteryW         = "Avg_Battery_W"
	ColBatteryEnergyKWh    = "Battery_Energy_kWh"
	ColAvgGridW            = "Avg_Grid_W"
	ColGridEnergyKWh       = "Grid_Energy_kWh"
	ColAvgGridLoadW        = "Avg_GridLoad_W"
	ColGridLoadEnergyKWh   = "GridLoad_Energy_kWh"
	ColAvgBackupLoadW      = "Avg_BackupLoad_W"
	ColBackupLoadEnergyKWh = "BackupLoad_Energy_kWh"
	ColAvgSOCPct           = "Avg_SOC_Pct"
	ColMinSOCPct           = "Min_SOC_Pct"
	ColMaxSOCPct           = "Max_SOC_Pct"
)

// numericColumns maps each numeric column to the record field it fills.
var numericColumns = map[string]func(*model.HourlyRecord, float64){
	ColReadings:            func(r *model.HourlyRecord, v float64) { r.Readings = int(v) },
	ColAvgPVW:              func(r *model.HourlyRecord, v float64) { r.AvgPVW = v },
	ColPVEnergyKWh:         func(r *model.HourlyRecord, v float64) { r.PVKWh = v },
	ColAvgBatteryW:         func(r *model.HourlyRecord, v float64) { r.AvgBatteryW = v },
	ColBatteryEnergyKWh:    func(r *model.HourlyRecord, v float64) { r.BatteryKWh = v },
	ColAvgGridW:            func(r *model.HourlyRecord, v float64) { r.AvgGridW = v },
	ColGridEnergyKWh:       func(r *model.HourlyRecord, v float64) { r.GridKWh = v },
	ColAvgGridLoadW:        func(r *model.HourlyRecord, v float64) { r.AvgGridLoadW = v },
	ColGridLoadEnergyKWh:   func(r *model.HourlyRecord, v float64) { r.GridLoadKWh = v },
	ColAvgBackupLoadW:      func(r *model.HourlyRecord, v float64) { r.AvgBackupLoadW = v },
	ColBackupLoadEnergyKWh: func(r *model.HourlyRecord, v float64) { r.BackupLoadKWh = v },
	ColAvgSOCPct:           func(r *model.HourlyRecord, v float64) { r.AvgSOCPct = v },
	ColMinSOCPct:           func(r *model.HourlyRecord, v float64) { r.MinSOCPct = v },
	ColMaxSOCPct:           func(r *model.HourlyRecord, v float64) { r.MaxSOCPct = v },
}

// Columns returns the full column set in the order the exporters write it.
func Columns() []string {
	return []string{
		ColDate, ColHour, ColReadings,
		ColAvgPVW, ColPVEnergyKWh,
		ColAvgBatteryW, ColBatteryEnergyKWh,
		ColAvgGridW, ColGridEnergyKWh,
		ColAvgGridLoadW, ColGridLoadEnergyKWh,
		ColAvgBackupLoadW, ColBackupLoadEnergyKWh,
		ColAvgSOCPct, ColMinSOCPct, ColMaxSOCPct,
	}
}

func (p *HourlyCSVParser) Parse(r io.Reader) ([]model.HourlyRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, &ParseError{Line: 1, Err: fmt.Errorf("reading CSV header: %w", err)}
	}
	index, err := indexHeader(header)
	if err != nil {
		return nil, &ParseError{Line: 1, Err: err}
	}

	var records []model.HourlyRecord
	lineNum := 1

	for {
		lineNum++
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &ParseError{Line: lineNum, Err: fmt.Errorf("reading CSV record: %w", err)}
		}

		rec, err := parseHourlyRow(row, index)
		if err != nil {
			continue
		}
		records = append(records, rec)
	}

	return records, nil
}

// indexHeader maps column names to positions and checks the required ones.
func indexHeader(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, col := range header {
		col = strings.TrimSpace(strings.TrimPrefix(col, "\ufeff"))
		if _, dup := index[col]; dup {
			continue
		}
		index[col] = i
	}

	var missing []string
	for _, col := range []string{ColDate, ColHour} {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required column(s) %s", strings.Join(missing, ", "))
	}
	return index, nil
}

func parseHourlyRow(row []string, index map[string]int) (model.HourlyRecord, error) {
	date := cell(row, index, ColDate)
	if date == "" {
		return model.HourlyRecord{}, errors.New("empty date")
	}
	hour, err := model.NormalizeHour(cell(row, index, ColHour))
	if err != nil {
		return model.HourlyRecord{}, err
	}

	rec := model.HourlyRecord{Date: date, Hour: hour}
	for col, set := range numericColumns {
		set(&rec, parseNumber(cell(row, index, col)))
	}
	return rec, nil
}

func cell(row []string, index map[string]int, col string) string {
	i, ok := index[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// parseNumber reads a numeric cell; anything unreadable counts as zero.
func parseNumber(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

package ingest

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleHeader = "Date,Hour,Readings,Avg_PV_W,PV_Energy_kWh,Avg_Battery_W,Battery_Energy_kWh,Avg_Grid_W,Grid_Energy_kWh,Avg_GridLoad_W,GridLoad_Energy_kWh,Avg_BackupLoad_W,BackupLoad_Energy_kWh,Avg_SOC_Pct,Min_SOC_Pct,Max_SOC_Pct"

func TestHourlyCSVParser_Parse(t *testing.T) {
	input := sampleHeader + `
2025-06-01,12:00,12,3210.5,3.21,850.0,0.85,1500.0,1.5,600.0,0.6,260.5,0.26,71.2,65,78
2025-06-01,13:00,12,2800,2.8,-400,-0.4,-900,-0.9,3500,3.5,600,0.6,60,55,66`

	parser := &HourlyCSVParser{}
	records, err := parser.Parse(strings.NewReader(input))

	require.NoError(t, err)
	require.Len(t, records, 2)

	r := records[0]
	assert.Equal(t, "2025-06-01", r.Date)
	assert.Equal(t, "12:00", r.Hour)
	assert.Equal(t, 12, r.Readings)
	assert.InDelta(t, 3210.5, r.AvgPVW, 0.001)
	assert.InDelta(t, 3.21, r.PVKWh, 0.001)
	assert.InDelta(t, 0.85, r.BatteryKWh, 0.001)
	assert.InDelta(t, 1.5, r.GridKWh, 0.001)
	assert.InDelta(t, 0.6, r.GridLoadKWh, 0.001)
	assert.InDelta(t, 260.5, r.AvgBackupLoadW, 0.001)
	assert.InDelta(t, 71.2, r.AvgSOCPct, 0.001)
	assert.InDelta(t, 65.0, r.MinSOCPct, 0.001)
	assert.InDelta(t, 78.0, r.MaxSOCPct, 0.001)

	assert.InDelta(t, -0.9, records[1].GridKWh, 0.001)
	assert.InDelta(t, -0.4, records[1].BatteryKWh, 0.001)
}

func TestHourlyCSVParser_ColumnsInAnyOrder(t *testing.T) {
	input := `PV_Energy_kWh,Hour,Max_SOC_Pct,Date
1.25,7:00,90,2025-06-02`

	parser := &HourlyCSVParser{}
	records, err := parser.Parse(strings.NewReader(input))

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "2025-06-02", records[0].Date)
	assert.Equal(t, "07:00", records[0].Hour)
	assert.InDelta(t, 1.25, records[0].PVKWh, 0.001)
	assert.InDelta(t, 90.0, records[0].MaxSOCPct, 0.001)
	assert.Zero(t, records[0].GridKWh)
}

func TestHourlyCSVParser_UnparseableNumbersReadAsZero(t *testing.T) {
	input := `Date,Hour,PV_Energy_kWh,Grid_Energy_kWh,Avg_SOC_Pct
2025-06-01,10:00,n/a,,NaN`

	parser := &HourlyCSVParser{}
	records, err := parser.Parse(strings.NewReader(input))

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Zero(t, records[0].PVKWh)
	assert.Zero(t, records[0].GridKWh)
	assert.Zero(t, records[0].AvgSOCPct)
}

func TestHourlyCSVParser_SkipsRowsWithoutDateOrHour(t *testing.T) {
	input := `Date,Hour,PV_Energy_kWh
2025-06-01,10:00,1
,11:00,2
2025-06-01,noon,3
2025-06-01,24:00,4
2025-06-01,12:00,5`

	parser := &HourlyCSVParser{}
	records, err := parser.Parse(strings.NewReader(input))

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "10:00", records[0].Hour)
	assert.Equal(t, "12:00", records[1].Hour)
}

func TestHourlyCSVParser_ByteOrderMark(t *testing.T) {
	input := "\ufeffDate,Hour,PV_Energy_kWh\n2025-06-01,10:00,1.5"

	parser := &HourlyCSVParser{}
	records, err := parser.Parse(strings.NewReader(input))

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "2025-06-01", records[0].Date)
}

func TestHourlyCSVParser_MissingRequiredColumns(t *testing.T) {
	input := `Day,Hour,PV_Energy_kWh
2025-06-01,10:00,1`

	parser := &HourlyCSVParser{}
	_, err := parser.Parse(strings.NewReader(input))

	require.Error(t, err)
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 1, pe.Line)
	assert.Contains(t, err.Error(), "Date")
}

func TestHourlyCSVParser_EmptyInput(t *testing.T) {
	parser := &HourlyCSVParser{}
	_, err := parser.Parse(strings.NewReader(""))

	assert.Error(t, err)
}

func TestHourlyCSVParser_BrokenQuoting(t *testing.T) {
	input := "Date,Hour\n2025-06-01,10:00\n\"2025-06-01,11:00\n"

	parser := &HourlyCSVParser{}
	_, err := parser.Parse(strings.NewReader(input))

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 3, pe.Line)
}

func TestColumns_CoverNumericFields(t *testing.T) {
	cols := Columns()
	require.Len(t, cols, len(numericColumns)+2)
	for _, c := range cols[2:] {
		_, ok := numericColumns[c]
		assert.True(t, ok, c)
	}
}

func writeCSV(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "solar_hourly_2025-07.csv", "Date,Hour,PV_Energy_kWh\n2025-07-01,10:00,2\n")
	writeCSV(t, dir, "solar_hourly_2025-06.csv", "Date,Hour,PV_Energy_kWh\n2025-06-01,10:00,1\n2025-06-01,11:00,1\n")
	writeCSV(t, dir, "notes.csv", "Date,Hour\n2025-01-01,00:00\n")

	files, err := LoadDir(dir, "")
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "solar_hourly_2025-06.csv", files[0].Name)
	assert.Len(t, files[0].Records, 2)
	assert.Equal(t, "solar_hourly_2025-07.csv", files[1].Name)
	assert.Len(t, files[1].Records, 1)
}

func TestLoadDir_NoFiles(t *testing.T) {
	_, err := LoadDir(t.TempDir(), "")
	assert.ErrorIs(t, err, ErrNoFiles)
}

func TestLoadDir_BadFile(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "solar_hourly_2025-06.csv", "Hour\n10:00\n")

	_, err := LoadDir(dir, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "solar_hourly_2025-06.csv")
}

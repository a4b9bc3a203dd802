package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solar_analyzer/internal/analysis"
	"solar_analyzer/internal/ingest"
)

const siteYAML = `
name: %s
pv_kwp: 5
inverter_kw: 4
battery_nominal_kwh: 10
tariff:
  type: flat
  import_rate: 0.3
roi:
  total_cost: 8000
  system_age_years: 1
data:
  dir: data
`

// writeSite creates <dir>/<name>.yaml and <dir>/data/solar_hourly_2025-06.csv
// holding days full days from 2025-06-01.
func writeSite(t *testing.T, dir, name string, days int) string {
	t.Helper()
	dataDir := filepath.Join(dir, "data")
	require.NoError(t, os.MkdirAll(dataDir, 0o755))

	var b strings.Builder
	b.WriteString("Date,Hour,Avg_PV_W,PV_Energy_kWh,Avg_Grid_W,Grid_Energy_kWh,Avg_GridLoad_W,GridLoad_Energy_kWh,Avg_SOC_Pct,Min_SOC_Pct,Max_SOC_Pct\n")
	for d := 1; d <= days; d++ {
		for h := 0; h < 24; h++ {
			pv := 0.0
			if h >= 8 && h <= 16 {
				pv = 1
			}
			grid := pv - 0.5
			fmt.Fprintf(&b, "2025-06-%02d,%02d:00,%.0f,%.2f,%.0f,%.2f,500,0.5,50,48,52\n",
				d, h, pv*1000, pv, grid*1000, grid)
		}
	}
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "solar_hourly_2025-06.csv"), []byte(b.String()), 0o644))

	path := filepath.Join(dir, name+".yaml")
	require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf(siteYAML, name)), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestAnalyzeJSON(t *testing.T) {
	path := writeSite(t, t.TempDir(), "roof", 10)

	out, err := execute(t, "analyze", "--config", path)
	require.NoError(t, err)

	var r analysis.Report
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	assert.Equal(t, "roof", r.Site)
	assert.Equal(t, 240, r.TotalRows)
	assert.Equal(t, 10, r.UniqueDays)
	assert.Equal(t, [2]string{"2025-06-01", "2025-06-10"}, r.DateRange)
	assert.Equal(t, []string{"solar_hourly_2025-06.csv"}, r.Files)
	assert.True(t, strings.HasPrefix(out, "{\n  \""))
}

func TestAnalyzeDateRange(t *testing.T) {
	path := writeSite(t, t.TempDir(), "roof", 10)

	out, err := execute(t, "analyze", "--config", path, "--from", "2025-06-03", "--to", "2025-06-05")
	require.NoError(t, err)

	var r analysis.Report
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	assert.Equal(t, 72, r.TotalRows)
	assert.Equal(t, [2]string{"2025-06-03", "2025-06-05"}, r.DateRange)

	_, err = execute(t, "analyze", "--config", path, "--from", "06/03/2025")
	assert.ErrorContains(t, err, "invalid date")
}

func TestAnalyzeText(t *testing.T) {
	color.NoColor = true
	path := writeSite(t, t.TempDir(), "roof", 10)

	out, err := execute(t, "analyze", "--config", path, "--format", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "Solar analysis · roof")
}

func TestAnalyzeToFile(t *testing.T) {
	dir := t.TempDir()
	path := writeSite(t, dir, "roof", 10)
	target := filepath.Join(dir, "report.json")

	out, err := execute(t, "analyze", "--config", path, "--out", target)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"total_rows": 240`)
}

func TestAnalyzeRejectsBinaryFormat(t *testing.T) {
	path := writeSite(t, t.TempDir(), "roof", 10)

	_, err := execute(t, "analyze", "--config", path, "--format", "xlsx")
	assert.ErrorContains(t, err, "use export")
}

func TestAnalyzeNoData(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf(siteYAML, "empty")), 0o644))

	_, err := execute(t, "analyze", "--config", path)
	assert.ErrorIs(t, err, ingest.ErrNoFiles)
}

func TestAnalyzeRequiresConfig(t *testing.T) {
	_, err := execute(t, "analyze")
	assert.ErrorContains(t, err, "config")
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	path := writeSite(t, dir, "roof", 10)

	pdf := filepath.Join(dir, "roof.pdf")
	_, err := execute(t, "export", "--config", path, "--format", "pdf", "--out", pdf)
	require.NoError(t, err)
	data, err := os.ReadFile(pdf)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))

	xlsx := filepath.Join(dir, "roof.xlsx")
	_, err = execute(t, "export", "--config", path, "--out", xlsx)
	require.NoError(t, err)
	data, err = os.ReadFile(xlsx)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("PK")))

	_, err = execute(t, "export", "--config", path, "--format", "pdf")
	assert.ErrorContains(t, err, "use --out")

	_, err = execute(t, "export", "--config", path, "--format", "csv", "--out", xlsx)
	assert.Error(t, err)
}

func TestBatch(t *testing.T) {
	dirA, dirB := t.TempDir(), t.TempDir()
	a := writeSite(t, dirA, "east", 10)
	b := writeSite(t, dirB, "west", 5)

	out, err := execute(t, "batch", "--parallel", "2", a, b)
	require.NoError(t, err)
	assert.Contains(t, out, "east")
	assert.Contains(t, out, "west")

	for _, p := range []string{
		filepath.Join(dirA, "east.report.json"),
		filepath.Join(dirB, "west.report.json"),
	} {
		data, err := os.ReadFile(p)
		require.NoError(t, err)
		var r analysis.Report
		require.NoError(t, json.Unmarshal(data, &r))
		assert.NotZero(t, r.TotalRows)
	}
}

func TestBatchKeepsGoingAfterFailure(t *testing.T) {
	dir := t.TempDir()
	good := writeSite(t, dir, "good", 3)
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("pv_kwp: -1\n"), 0o644))

	out, err := execute(t, "batch", bad, good)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.yaml")
	assert.Contains(t, out, "FAILED")

	_, statErr := os.Stat(filepath.Join(dir, "good.report.json"))
	assert.NoError(t, statErr)
}

func TestImportRequiresDatabase(t *testing.T) {
	path := writeSite(t, t.TempDir(), "roof", 1)

	_, err := execute(t, "import", "--config", path)
	assert.ErrorContains(t, err, "database-url")
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "solar-report dev\n", out)
}

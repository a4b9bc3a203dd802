package analysis

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogObserver(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)

	_, err := New(siteConfig(), WithObserver(NewLogObserver(logger))).Analyze(twoMonths())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 18)

	var first map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "debug", first["level"])
	assert.Equal(t, StageMonthlyTotals, first["stage"])
	assert.EqualValues(t, 1, first["step"])
	assert.EqualValues(t, 17, first["of"])

	var last map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[17]), &last))
	assert.Equal(t, "info", last["level"])
	assert.Equal(t, "analysis complete", last["message"])
	assert.EqualValues(t, 480, last["rows"])
	assert.Equal(t, "2025-05-20", last["from"])
}

func TestLogObserver_InfoLevelSkipsStages(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.InfoLevel)

	_, err := New(siteConfig(), WithObserver(NewLogObserver(logger))).Analyze(twoMonths())
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
}

package excel

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pairs.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadPairsCSV(t *testing.T) {
	path := writeTempCSV(t, "prior,current\n480.5,512.0\n455,470.25\n501,498\n")

	prior, current, err := NewPairReader(path).ReadPairs(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []float64{480.5, 455, 501}, prior)
	assert.Equal(t, []float64{512.0, 470.25, 498}, current)
}

func TestReadPairsSkipsBadRows(t *testing.T) {
	path := writeTempCSV(t, "prior,current\n480,512\nn/a,470\n455,\n501,498\n")

	prior, current, err := NewPairReader(path).ReadPairs(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []float64{480, 501}, prior)
	assert.Equal(t, []float64{512, 498}, current)
}

func TestReadPairsMissingFile(t *testing.T) {
	_, _, err := NewPairReader("/nonexistent/pairs.csv").ReadPairs(context.Background())
	assert.Error(t, err)
}

func TestReadPairsHeaderOnly(t *testing.T) {
	path := writeTempCSV(t, "prior,current\n")
	_, _, err := NewPairReader(path).ReadPairs(context.Background())
	assert.Error(t, err)
}

func TestReadPairsAllRowsBad(t *testing.T) {
	path := writeTempCSV(t, "prior,current\nx,y\na,b\n")
	_, _, err := NewPairReader(path).ReadPairs(context.Background())
	assert.Error(t, err)
}

func TestNewPairReaderDetectsType(t *testing.T) {
	assert.Equal(t, "csv", NewPairReader("scores.CSV").fileType)
	assert.Equal(t, "xlsx", NewPairReader("scores.xlsx").fileType)
	assert.Equal(t, "xlsx", NewPairReader("scores").fileType)
}

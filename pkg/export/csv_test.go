package export

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnionHeaders(t *testing.T) {
	preferred := []string{"Ticker", "Close"}
	rows := []map[string]interface{}{
		{"Ticker": "A", "Close": 10.0, "Zeta": 1},
		{"Ticker": "B", "Alpha": 2},
	}

	headers := UnionHeaders(preferred, rows)
	assert.Equal(t, []string{"Ticker", "Close", "Alpha", "Zeta"}, headers)
}

func TestWriteAndReadCSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "table.csv")
	rows := []map[string]interface{}{
		{"Ticker": "AAA.NS", "Close": 123.45, "Qty": 10},
		{"Ticker": "BBB.NS", "Close": 67.8, "Qty": 0},
	}

	require.NoError(t, WriteCSV(path, []string{"Ticker", "Close", "Qty"}, rows))

	headers, got, err := ReadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Ticker", "Close", "Qty"}, headers)
	require.Len(t, got, 2)
	assert.Equal(t, "AAA.NS", got[0]["Ticker"])
	assert.Equal(t, "123.45", got[0]["Close"])
	assert.Equal(t, "0", got[1]["Qty"])
}

func TestWriteCSVSkipsEmptyTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, WriteCSV(path, []string{"A"}, nil))

	_, rows, err := ReadCSV(path)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestReadCSVMissingFile(t *testing.T) {
	headers, rows, err := ReadCSV(filepath.Join(t.TempDir(), "nope.csv"))
	require.NoError(t, err)
	assert.Nil(t, headers)
	assert.Nil(t, rows)
}

func TestWriteAndReadXLSXRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "table.xlsx")
	rows := []map[string]interface{}{
		{"Ticker": "AAA.NS", "Close": 123.45},
		{"Ticker": "BBB.NS", "Close": 67.8},
	}

	require.NoError(t, WriteXLSX(path, "Sheet1", []string{"Ticker", "Close"}, rows))

	headers, got, err := ReadXLSX(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Ticker", "Close"}, headers)
	require.Len(t, got, 2)
	assert.Equal(t, "BBB.NS", got[1]["Ticker"])
}

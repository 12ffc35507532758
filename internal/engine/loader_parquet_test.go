package engine

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "salaries.parquet")
	rows := []ParquetRow{
		{Year: 2005, Pos: "P", Salary: 500000},
		{Year: 2005, Pos: "P", Salary: 1500000},
		{Year: 2006, Pos: "C", Salary: 2000000},
	}
	require.NoError(t, parquet.WriteFile(path, rows))

	store, err := Load(path, zerolog.Nop())
	require.NoError(t, err)

	require.Equal(t, 3, store.Len())
	assert.Equal(t, []int32{2005, 2005, 2006}, store.Years)
	assert.Equal(t, []float64{500000, 1500000, 2000000}, store.Salaries)
	assert.Equal(t, "C", store.Record(2).Position)
	assert.NotZero(t, store.Fingerprint)
}

type renamedRow struct {
	Yr       int64   `parquet:"yr"`
	Position string  `parquet:"position"`
	Pay      float64 `parquet:"pay"`
}

func TestLoadParquetMissingColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "renamed.parquet")
	require.NoError(t, parquet.WriteFile(path, []renamedRow{
		{Yr: 2005, Position: "P", Pay: 500000},
		{Yr: 2006, Position: "C", Pay: 900000},
	}))

	_, err := Load(path, zerolog.Nop())
	require.ErrorIs(t, err, ErrMissingColumn)
}

func TestLoadParquetRejectsNaNSalary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nan.parquet")
	require.NoError(t, parquet.WriteFile(path, []ParquetRow{
		{Year: 2005, Pos: "P", Salary: 500000},
		{Year: 2005, Pos: "P", Salary: math.NaN()},
	}))

	_, err := LoadParquet(path, zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad salary")
}

func TestLoadParquetMissingFile(t *testing.T) {
	_, err := LoadParquet(filepath.Join(t.TempDir(), "nope.parquet"), zerolog.Nop())
	assert.Error(t, err)
}

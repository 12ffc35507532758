package engine

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	gbytes "github.com/labstack/gommon/bytes"
	"github.com/parquet-go/parquet-go"
	"github.com/rs/zerolog"
	"github.com/zeebo/xxh3"

	"salaryboard/internal/models"
)

// ParquetRow mirrors the Parquet schema of a salary table.
type ParquetRow struct {
	Year   int64   `parquet:"year"`
	Pos    string  `parquet:"pos"`
	Salary float64 `parquet:"salary"`
}

// LoadParquet reads a Parquet salary table. Only the three required
// columns are kept.
func LoadParquet(path string, log zerolog.Logger) (*ColumnStore, error) {
	start := time.Now()

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read data file: %w", err)
	}

	pf, err := parquet.OpenFile(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("%s: open parquet: %w", path, err)
	}

	for _, col := range models.DefaultColumns() {
		if _, ok := pf.Schema().Lookup(col); !ok {
			return nil, fmt.Errorf("%s: %w: %s", path, ErrMissingColumn, col)
		}
	}

	r := parquet.NewGenericReader[ParquetRow](pf)
	defer r.Close()

	records := make([]models.Record, 0, r.NumRows())
	buf := make([]ParquetRow, 256)
	for {
		n, readErr := r.Read(buf)
		for _, row := range buf[:n] {
			if math.IsNaN(row.Salary) || math.IsInf(row.Salary, 0) {
				return nil, fmt.Errorf("%s: row %d: bad salary %v", path, len(records)+1, row.Salary)
			}
			records = append(records, models.Record{
				Year:     int(row.Year),
				Position: row.Pos,
				Salary:   row.Salary,
			})
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return nil, fmt.Errorf("%s: read parquet rows: %w", path, readErr)
		}
	}

	store := NewColumnStore(records)
	store.Fingerprint = xxh3.Hash(content)

	log.Info().
		Str("path", path).
		Int("rows", store.Len()).
		Str("size", gbytes.Format(int64(len(content)))).
		Dur("elapsed", time.Since(start)).
		Msg("load complete")
	return store, nil
}

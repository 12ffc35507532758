package render

import (
	"fmt"
	"io"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/ipc"
	"github.com/apache/arrow/go/v18/arrow/memory"

	"salaryboard/internal/models"
)

// PercentileSchema is the Arrow schema of the percentile table: year, the
// matching row count, then one nullable float64 column per level ("p0".."p100").
func PercentileSchema(levels []int) *arrow.Schema {
	fields := []arrow.Field{
		{Name: "year", Type: arrow.PrimitiveTypes.Int32},
		{Name: "count", Type: arrow.PrimitiveTypes.Int64},
	}
	for _, lvl := range levels {
		fields = append(fields, arrow.Field{
			Name:     fmt.Sprintf("p%d", lvl),
			Type:     arrow.PrimitiveTypes.Float64,
			Nullable: true,
		})
	}
	return arrow.NewSchema(fields, nil)
}

// PercentileRecord builds an Arrow record of the dashboard's percentile
// table. Missing years become nulls. The caller must Release it.
func PercentileRecord(mem memory.Allocator, d *models.Dashboard) arrow.Record {
	schema := PercentileSchema(d.Levels)
	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()

	years := b.Field(0).(*array.Int32Builder)
	counts := b.Field(1).(*array.Int64Builder)
	for _, row := range d.Percentiles {
		years.Append(int32(row.Year))
		counts.Append(int64(row.Count))
		for i := range d.Levels {
			fb := b.Field(2 + i).(*array.Float64Builder)
			if v, ok := row.Value(i); ok {
				fb.Append(v)
			} else {
				fb.AppendNull()
			}
		}
	}
	return b.NewRecord()
}

// WriteArrow streams the percentile table to w in Arrow IPC stream format.
func WriteArrow(w io.Writer, d *models.Dashboard) error {
	mem := memory.NewGoAllocator()
	rec := PercentileRecord(mem, d)
	defer rec.Release()

	wr := ipc.NewWriter(w, ipc.WithSchema(rec.Schema()), ipc.WithAllocator(mem))
	if err := wr.Write(rec); err != nil {
		wr.Close()
		return fmt.Errorf("write arrow record: %w", err)
	}
	if err := wr.Close(); err != nil {
		return fmt.Errorf("close arrow stream: %w", err)
	}
	return nil
}

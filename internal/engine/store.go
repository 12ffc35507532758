package engine

import "salaryboard/internal/models"

// ColumnStore holds the salary table in Struct-of-Arrays format.
// It is never mutated after the loader returns it.
type ColumnStore struct {
	// Data Columns (Flat Arrays)
	Years    []int32
	Salaries []float64

	// Dictionary Encoded IDs (0..N)
	PosIDs  []int32
	PosDict []string

	// Any other named column in the file, dictionary encoded the same way.
	Extras []ExtraColumn

	// Named columns in file order (required and extra)
	Columns []string

	// xxh3 of the source bytes
	Fingerprint uint64
}

type ExtraColumn struct {
	Name string
	IDs  []int32
	Dict []string
}

// Len returns the number of rows.
func (cs *ColumnStore) Len() int {
	return len(cs.Years)
}

// Record returns row i as a typed record.
func (cs *ColumnStore) Record(i int) models.Record {
	return models.Record{
		Year:     int(cs.Years[i]),
		Position: cs.PosDict[cs.PosIDs[i]],
		Salary:   cs.Salaries[i],
	}
}

// Fields returns the extra columns of row i in file order.
func (cs *ColumnStore) Fields(i int) []models.Field {
	if len(cs.Extras) == 0 {
		return nil
	}
	out := make([]models.Field, len(cs.Extras))
	for k, col := range cs.Extras {
		out[k] = models.Field{Name: col.Name, Value: col.Dict[col.IDs[i]]}
	}
	return out
}

// posID returns the dictionary id for a position code, or -1.
func (cs *ColumnStore) posID(code string) int32 {
	for id, s := range cs.PosDict {
		if s == code {
			return int32(id)
		}
	}
	return -1
}

// NewColumnStore builds a store from typed records. Used by tests and by
// hosts that already hold records in memory.
func NewColumnStore(records []models.Record) *ColumnStore {
	cs := &ColumnStore{
		Years:    make([]int32, len(records)),
		Salaries: make([]float64, len(records)),
		PosIDs:   make([]int32, len(records)),
		Columns:  models.DefaultColumns(),
	}
	ids := make(map[string]int32)
	for i, r := range records {
		cs.Years[i] = int32(r.Year)
		cs.Salaries[i] = r.Salary
		id, ok := ids[r.Position]
		if !ok {
			id = int32(len(cs.PosDict))
			cs.PosDict = append(cs.PosDict, r.Position)
			ids[r.Position] = id
		}
		cs.PosIDs[i] = id
	}
	return cs
}

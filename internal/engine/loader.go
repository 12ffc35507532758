package engine

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	gbytes "github.com/labstack/gommon/bytes"
	"github.com/rs/zerolog"
	"github.com/zeebo/xxh3"
	"golang.org/x/sync/errgroup"

	"salaryboard/internal/models"
)

var ErrMissingColumn = errors.New("missing required column")

// Load reads the salary table at path. Parquet files are recognised by
// extension, everything else is parsed as CSV.
func Load(path string, log zerolog.Logger) (*ColumnStore, error) {
	if strings.EqualFold(filepath.Ext(path), ".parquet") {
		return LoadParquet(path, log)
	}
	return LoadColumnar(path, log)
}

// --- 1. FAST FIELD PARSERS ---

// fastInt parses "2005" -> 2005
func fastInt(b []byte) (int32, bool) {
	if len(b) == 0 || len(b) > 9 {
		return 0, false
	}
	var n int32
	for _, c := range b {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int32(c-'0')
	}
	return n, true
}

// fastFloat parses "1500000.50" -> 1500000.5. Anything outside plain
// digits-and-dot goes through strconv; NaN and infinities are rejected.
func fastFloat(b []byte) (float64, bool) {
	if len(b) == 0 {
		return 0, false
	}
	var num float64
	var i int
	for i < len(b) && b[i] >= '0' && b[i] <= '9' {
		num = num*10 + float64(b[i]-'0')
		i++
	}
	if i < len(b) && b[i] == '.' {
		i++
		div := 10.0
		for i < len(b) && b[i] >= '0' && b[i] <= '9' {
			num += float64(b[i]-'0') / div
			div *= 10
			i++
		}
	}
	if i == len(b) && (len(b) > 1 || b[0] != '.') {
		return num, true
	}
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// splitLine cuts a CSV line into fields, reusing dst. Lines with quotes go
// through encoding/csv.
func splitLine(line []byte, dst [][]byte) ([][]byte, error) {
	line = bytes.TrimSuffix(line, []byte{'\r'})
	dst = dst[:0]

	if bytes.IndexByte(line, '"') >= 0 {
		rec, err := csv.NewReader(bytes.NewReader(line)).Read()
		if err != nil {
			return nil, err
		}
		for _, f := range rec {
			dst = append(dst, []byte(f))
		}
		return dst, nil
	}

	rest := line
	for {
		field, tail, found := bytes.Cut(rest, []byte{','})
		dst = append(dst, field)
		if !found {
			return dst, nil
		}
		rest = tail
	}
}

// --- 2. HEADER ---

type layout struct {
	year, pos, salary int
	extras            []int
	extraNames        []string
	columns           []string // named columns in file order
	width             int
}

func parseHeader(fields [][]byte) (*layout, error) {
	l := &layout{year: -1, pos: -1, salary: -1, width: len(fields)}
	for i, f := range fields {
		name := strings.TrimSpace(string(f))
		switch strings.ToLower(name) {
		case "year":
			l.year = i
			l.columns = append(l.columns, models.ColumnYear)
		case "pos":
			l.pos = i
			l.columns = append(l.columns, models.ColumnPos)
		case "salary":
			l.salary = i
			l.columns = append(l.columns, models.ColumnSalary)
		case "":
			// unnamed index column written by dataframe tools
		default:
			l.extras = append(l.extras, i)
			l.extraNames = append(l.extraNames, name)
			l.columns = append(l.columns, name)
		}
	}
	switch {
	case l.year < 0:
		return nil, fmt.Errorf("%w: year", ErrMissingColumn)
	case l.pos < 0:
		return nil, fmt.Errorf("%w: pos", ErrMissingColumn)
	case l.salary < 0:
		return nil, fmt.Errorf("%w: salary", ErrMissingColumn)
	}
	return l, nil
}

// --- 3. CHUNKING ---

type span struct {
	start, end int
	firstLine  int // 1-based file line of content[start]
}

// chunkBounds splits body into at most n newline-aligned, non-overlapping spans.
func chunkBounds(body []byte, n, firstLine int) []span {
	if n < 1 {
		n = 1
	}
	size := len(body) / n
	spans := make([]span, 0, n)
	start, line := 0, firstLine
	for i := 0; i < n && start < len(body); i++ {
		end := len(body)
		if i < n-1 {
			end = max(start, (i+1)*size)
			if idx := bytes.IndexByte(body[end:], '\n'); idx != -1 {
				end += idx + 1
			} else {
				end = len(body)
			}
		}
		spans = append(spans, span{start: start, end: end, firstLine: line})
		line += bytes.Count(body[start:end], []byte{'\n'})
		start = end
	}
	return spans
}

// --- 4. PER-WORKER STATE ---

type localDict struct {
	ids  []int32
	list []string
	m    map[string]int32
}

func newLocalDict() *localDict {
	return &localDict{m: make(map[string]int32)}
}

func (d *localDict) add(field []byte) {
	// map lookup with string(field) does not allocate
	if id, ok := d.m[string(field)]; ok {
		d.ids = append(d.ids, id)
		return
	}
	str := string(field)
	id := int32(len(d.list))
	d.list = append(d.list, str)
	d.m[str] = id
	d.ids = append(d.ids, id)
}

type chunkResult struct {
	years    []int32
	salaries []float64
	pos      *localDict
	extras   []*localDict
}

func parseChunk(chunk []byte, firstLine int, l *layout) (*chunkResult, error) {
	res := &chunkResult{pos: newLocalDict(), extras: make([]*localDict, len(l.extras))}
	for k := range res.extras {
		res.extras[k] = newLocalDict()
	}

	var fields [][]byte
	var err error
	pos, line := 0, firstLine
	for pos < len(chunk) {
		nextPos := len(chunk)
		if i := bytes.IndexByte(chunk[pos:], '\n'); i != -1 {
			nextPos = pos + i
		}
		raw := chunk[pos:nextPos]
		pos = nextPos + 1
		lineNo := line
		line++

		if len(bytes.TrimSpace(raw)) == 0 {
			continue
		}

		if fields, err = splitLine(raw, fields); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if len(fields) < l.width {
			return nil, fmt.Errorf("line %d: expected %d fields, got %d", lineNo, l.width, len(fields))
		}

		year, ok := fastInt(bytes.TrimSpace(fields[l.year]))
		if !ok {
			return nil, fmt.Errorf("line %d: bad year %q", lineNo, fields[l.year])
		}
		salary, ok := fastFloat(bytes.TrimSpace(fields[l.salary]))
		if !ok {
			return nil, fmt.Errorf("line %d: bad salary %q", lineNo, fields[l.salary])
		}

		res.years = append(res.years, year)
		res.salaries = append(res.salaries, salary)
		res.pos.add(bytes.TrimSpace(fields[l.pos]))
		for k, idx := range l.extras {
			res.extras[k].add(fields[idx])
		}
	}
	return res, nil
}

// mergeDict folds the per-worker dictionaries into one, in chunk order, and
// rewrites every local id to its global id.
func mergeDict(locals []*localDict, offsets []int, globalIDs []int32) []string {
	gMap := make(map[string]int32)
	global := make([]string, 0, 64)
	for w, ld := range locals {
		remap := make([]int32, len(ld.list))
		for lid, s := range ld.list {
			gid, exists := gMap[s]
			if !exists {
				gid = int32(len(global))
				global = append(global, s)
				gMap[s] = gid
			}
			remap[lid] = gid
		}
		dest := globalIDs[offsets[w] : offsets[w]+len(ld.ids)]
		for k, id := range ld.ids {
			dest[k] = remap[id]
		}
	}
	return global
}

// --- 5. MAIN LOADER ---

// LoadColumnar parses a CSV salary table into a ColumnStore. The body is
// parsed in parallel chunks; row order in the store equals file order.
func LoadColumnar(path string, log zerolog.Logger) (*ColumnStore, error) {
	start := time.Now()

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read data file: %w", err)
	}

	// Excel writes a UTF-8 byte order mark
	content = bytes.TrimPrefix(content, []byte("\xef\xbb\xbf"))

	headerEnd := bytes.IndexByte(content, '\n')
	if headerEnd == -1 {
		headerEnd = len(content)
	}
	header, err := splitLine(content[:headerEnd], nil)
	if err != nil {
		return nil, fmt.Errorf("%s: header: %w", path, err)
	}
	l, err := parseHeader(header)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	var body []byte
	if headerEnd < len(content) {
		body = content[headerEnd+1:]
	}

	spans := chunkBounds(body, runtime.NumCPU(), 2)
	results := make([]*chunkResult, len(spans))

	var g errgroup.Group
	for i, sp := range spans {
		g.Go(func() error {
			res, err := parseChunk(body[sp.start:sp.end], sp.firstLine, l)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	offsets := make([]int, len(results))
	totalRows := 0
	for i, r := range results {
		offsets[i] = totalRows
		totalRows += len(r.years)
	}

	store := &ColumnStore{
		Years:       make([]int32, totalRows),
		Salaries:    make([]float64, totalRows),
		PosIDs:      make([]int32, totalRows),
		Extras:      make([]ExtraColumn, len(l.extras)),
		Columns:     l.columns,
		Fingerprint: xxh3.Hash(content),
	}
	for i, r := range results {
		copy(store.Years[offsets[i]:], r.years)
		copy(store.Salaries[offsets[i]:], r.salaries)
	}

	// Merge Dictionaries (Parallel)
	var dictWg sync.WaitGroup
	dictWg.Add(1 + len(l.extras))
	go func() {
		defer dictWg.Done()
		locals := make([]*localDict, len(results))
		for w, r := range results {
			locals[w] = r.pos
		}
		store.PosDict = mergeDict(locals, offsets, store.PosIDs)
	}()
	for k, name := range l.extraNames {
		go func() {
			defer dictWg.Done()
			locals := make([]*localDict, len(results))
			for w, r := range results {
				locals[w] = r.extras[k]
			}
			col := ExtraColumn{Name: name, IDs: make([]int32, totalRows)}
			col.Dict = mergeDict(locals, offsets, col.IDs)
			store.Extras[k] = col
		}()
	}
	dictWg.Wait()

	log.Info().
		Str("path", path).
		Int("rows", totalRows).
		Str("size", gbytes.Format(int64(len(content)))).
		Int("chunks", len(spans)).
		Dur("elapsed", time.Since(start)).
		Msg("load complete")
	return store, nil
}

// Package export writes the process table to CSV.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"lightmon/internal/system"
)

// DefaultFile is written to the working directory
const DefaultFile = "processes.csv"

// Header is the first row of every export
var Header = []string{"pid", "name", "cpuPercent", "memoryBytes"}

// IOError reports that the export file could not be created or written
type IOError struct {
	Path string
	Op   string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("cannot %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// WriteCSV writes procs to path in order, replacing any existing file
func WriteCSV(path string, procs []system.Process) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return &IOError{Path: path, Op: "create", Err: err}
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = &IOError{Path: path, Op: "close", Err: cerr}
		}
	}()

	if err := Encode(f, procs); err != nil {
		return &IOError{Path: path, Op: "write", Err: err}
	}
	return nil
}

// Encode writes the header and one row per process to w.
// Names containing a comma, quote or newline are quoted. Name bytes are
// written unchanged, but a quoted "\r\n" reads back as "\n" through ReadCSV.
func Encode(w io.Writer, procs []system.Process) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	row := make([]string, len(Header))
	for _, p := range procs {
		row[0] = strconv.FormatUint(uint64(p.PID), 10)
		row[1] = p.Name
		row[2] = strconv.FormatFloat(p.CPUPercent, 'f', -1, 64)
		row[3] = strconv.FormatUint(p.MemoryBytes, 10)
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses an export produced by Encode
func ReadCSV(r io.Reader) ([]system.Process, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header)

	head, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("missing header row")
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	for i, name := range Header {
		if head[i] != name {
			return nil, fmt.Errorf("unexpected column %q at %d", head[i], i)
		}
	}

	procs := []system.Process{}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return procs, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		p, err := parseRow(rec)
		if err != nil {
			return nil, err
		}
		procs = append(procs, p)
	}
}

func parseRow(rec []string) (system.Process, error) {
	pid, err := strconv.ParseUint(rec[0], 10, 32)
	if err != nil {
		return system.Process{}, fmt.Errorf("bad pid %q: %w", rec[0], err)
	}
	cpu, err := strconv.ParseFloat(rec[2], 64)
	if err != nil {
		return system.Process{}, fmt.Errorf("bad cpu %q: %w", rec[2], err)
	}
	memBytes, err := strconv.ParseUint(rec[3], 10, 64)
	if err != nil {
		return system.Process{}, fmt.Errorf("bad memory %q: %w", rec[3], err)
	}
	return system.Process{PID: uint32(pid), Name: rec[1], CPUPercent: cpu, MemoryBytes: memBytes}, nil
}

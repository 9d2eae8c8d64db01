package repository

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ErrCorruptTable indicates a flat-file table has an unexpected header or malformed rows.
var ErrCorruptTable = errors.New("corrupt table")

// csvTable is a header-first CSV file that is re-read and rewritten in full on every mutation.
type csvTable struct {
	path   string
	header []string
	mu     sync.Mutex
}

func newCSVTable(path string, header ...string) *csvTable {
	return &csvTable{path: path, header: header}
}

// ensure creates the file with its header row when it does not exist yet.
func (t *csvTable) ensure() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, err := os.Stat(t.path); err == nil {
		_, err := t.readLocked()
		return err
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", t.path, err)
	}

	if err := os.MkdirAll(filepath.Dir(t.path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	return t.writeLocked(nil)
}

func (t *csvTable) rows() ([][]string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.readLocked()
}

func (t *csvTable) append(row []string) error {
	return t.appendIf(row, nil)
}

// appendIf adds row unless check rejects the current rows. Both run under the table lock.
func (t *csvTable) appendIf(row []string, check func(rows [][]string) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	rows, err := t.readLocked()
	if err != nil {
		return err
	}
	if check != nil {
		if err := check(rows); err != nil {
			return err
		}
	}
	rows = append(rows, row)
	return t.writeLocked(rows)
}

func (t *csvTable) readLocked() ([][]string, error) {
	file, err := os.Open(t.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", t.path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = len(t.header)

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%s: missing header: %w", filepath.Base(t.path), ErrCorruptTable)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %v: %w", filepath.Base(t.path), err, ErrCorruptTable)
	}
	if !t.headerMatches(header) {
		return nil, fmt.Errorf("%s: unexpected header %v: %w", filepath.Base(t.path), header, ErrCorruptTable)
	}

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %v: %w", filepath.Base(t.path), err, ErrCorruptTable)
		}
		rows = append(rows, record)
	}

	return rows, nil
}

func (t *csvTable) writeLocked(rows [][]string) error {
	tmp, err := os.CreateTemp(filepath.Dir(t.path), filepath.Base(t.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp table: %w", err)
	}
	defer os.Remove(tmp.Name())

	writer := csv.NewWriter(tmp)
	if err := writer.Write(t.header); err != nil {
		tmp.Close()
		return err
	}
	if err := writer.WriteAll(rows); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(t.path), err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), t.path)
}

func (t *csvTable) headerMatches(header []string) bool {
	if len(header) != len(t.header) {
		return false
	}
	for idx, column := range header {
		column = strings.TrimPrefix(column, "\ufeff")
		if !strings.EqualFold(strings.TrimSpace(column), t.header[idx]) {
			return false
		}
	}
	return true
}

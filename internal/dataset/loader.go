package dataset

import (
	"archive/zip"
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gyeh/atexplorer/internal/model"
	"github.com/gyeh/atexplorer/internal/normalize"
)

// macOSMetadataDir is the resource-fork directory Finder adds to archives.
const macOSMetadataDir = "__macosx"

// Bundle is the set of tables parsed from one upload.
type Bundle struct {
	Name   string
	SHA256 string
	Size   int
	// Tables is keyed by lower-cased file name, e.g. "b_plan.csv".
	Tables map[string]*model.Table
	// Missing lists expected file names that were not found, sorted.
	Missing []string
}

// Table returns the table for kind, if the upload carried it.
func (b *Bundle) Table(kind model.TableKind) (*model.Table, bool) {
	t, ok := b.Tables[kind.File]
	return t, ok
}

// Summary returns row counts and missing names for reporting.
func (b *Bundle) Summary() model.LoadSummary {
	s := model.LoadSummary{
		Name:      b.Name,
		SHA256:    b.SHA256,
		SizeBytes: b.Size,
		Tables:    make(map[string]int, len(b.Tables)),
		Missing:   b.Missing,
	}
	for name, t := range b.Tables {
		s.Tables[name] = t.Len()
	}
	return s
}

// LoadFile reads the upload at path and parses it with Load.
func LoadFile(p string) (*Bundle, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return Load(filepath.Base(p), data)
}

// Load parses an upload. name decides the format: ".csv" is a single flat
// table keyed by its file name, ".zip" is an archive whose entries are
// matched against model.ExpectedFiles.
func Load(name string, data []byte) (*Bundle, error) {
	return LoadLimit(name, data, 0)
}

// LoadLimit is Load with a cap on the bytes an archive may expand to across
// all of its matched entries. A limit of zero or less disables the cap.
func LoadLimit(name string, data []byte, limit int64) (*Bundle, error) {
	b := &Bundle{
		Name:   name,
		SHA256: normalize.ContentHash(data),
		Size:   len(data),
		Tables: make(map[string]*model.Table),
	}

	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".csv"):
		key := path.Base(strings.ReplaceAll(lower, "\\", "/"))
		t, err := ReadCSV(key, bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		b.Tables[key] = t
	case strings.HasSuffix(lower, ".zip"):
		if err := b.readArchive(data, limit); err != nil {
			return nil, err
		}
	default:
		return nil, &UnsupportedFormatError{Name: name}
	}

	b.findMissing()
	return b, nil
}

// NewBundle assembles a bundle from tables parsed elsewhere, keyed by
// lower-cased file name, and computes Missing.
func NewBundle(name, sha256 string, size int, tables map[string]*model.Table) *Bundle {
	b := &Bundle{Name: name, SHA256: sha256, Size: size, Tables: tables}
	if b.Tables == nil {
		b.Tables = make(map[string]*model.Table)
	}
	b.findMissing()
	return b
}

func (b *Bundle) findMissing() {
	b.Missing = nil
	for _, f := range model.ExpectedFiles() {
		if _, ok := b.Tables[f]; !ok {
			b.Missing = append(b.Missing, f)
		}
	}
	sort.Strings(b.Missing)
}

func (b *Bundle) readArchive(data []byte, limit int64) error {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return &UnsupportedFormatError{Name: b.Name, Err: fmt.Errorf("open archive: %w", err)}
	}

	expected := make(map[string]bool)
	for _, f := range model.ExpectedFiles() {
		expected[f] = true
	}

	budget := &expandBudget{archive: b.Name, limit: limit, remaining: limit}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		entry := strings.ToLower(strings.ReplaceAll(f.Name, "\\", "/"))
		if strings.Contains(entry, macOSMetadataDir) {
			continue
		}
		tail := path.Base(entry)
		if !expected[tail] {
			continue
		}
		t, err := readEntry(tail, f, budget)
		if err != nil {
			return err
		}
		b.Tables[tail] = t
	}
	return nil
}

func readEntry(name string, f *zip.File, budget *expandBudget) (*model.Table, error) {
	if budget.limit > 0 && f.UncompressedSize64 > uint64(budget.remaining) {
		return nil, budget.exceeded()
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open archive entry %s: %w", f.Name, err)
	}
	defer rc.Close()

	var r io.Reader = rc
	if budget.limit > 0 {
		r = &budgetReader{r: rc, budget: budget}
	}
	return ReadCSV(name, r)
}

// expandBudget tracks how many decompressed bytes an archive may still
// produce. Entry headers can understate their size, so reads are counted
// too.
type expandBudget struct {
	archive   string
	limit     int64
	remaining int64
}

func (b *expandBudget) exceeded() error {
	return &ArchiveTooLargeError{Name: b.archive, Limit: b.limit}
}

type budgetReader struct {
	r      io.Reader
	budget *expandBudget
}

func (br *budgetReader) Read(p []byte) (int, error) {
	if int64(len(p)) > br.budget.remaining+1 {
		p = p[:br.budget.remaining+1]
	}
	n, err := br.r.Read(p)
	br.budget.remaining -= int64(n)
	if br.budget.remaining < 0 {
		return n, br.budget.exceeded()
	}
	return n, err
}

// ReadCSV parses a CSV stream into a Table with lower-cased, trimmed
// headers and trimmed cells. Null tokens such as NA read as empty cells.
// A file with no header yields an empty table.
func ReadCSV(name string, r io.Reader) (*model.Table, error) {
	br := bufio.NewReaderSize(r, 64*1024)

	// Skip UTF-8 BOM if present
	if bom, err := br.Peek(3); err == nil && bom[0] == 0xEF && bom[1] == 0xBB && bom[2] == 0xBF {
		_, _ = br.Discard(3)
	}

	cr := csv.NewReader(br)
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = false

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return model.NewTable(name, nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s header: %w", name, err)
	}

	t := model.NewTable(name, normalize.Headers(header))
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		if isBlank(rec) {
			continue
		}
		for i := range rec {
			rec[i] = normalize.Cell(rec[i])
		}
		t.Rows = append(t.Rows, rec)
	}
	return t, nil
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

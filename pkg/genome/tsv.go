package genome

import (
	"bufio"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/yumyai/ggderep/pkg/derr"
)

// Column names of the genome tables.
const (
	ColName       = "name"
	ColPath       = "path"
	ColCompletion = "percent_completion"
	ColRedundancy = "percent_redundancy"
	ColLength     = "total_length"
)

// LoadTSV reads an external-genomes style table. Only the name column is
// required; empty, NA and None cells leave an attribute unset.
func LoadTSV(path string) (*Table, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	t, err := ReadTSV(fh)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

func ReadTSV(r io.Reader) (*Table, error) {
	t := NewTable()
	err := scanTSV(r, []string{ColName}, func(ln int, row map[string]string) error {
		g := Genome{Name: row[ColName]}
		var err error
		if g.PercentCompletion, err = nullFloat(row[ColCompletion]); err != nil {
			return fmt.Errorf("line %d, %s: %w", ln, ColCompletion, err)
		}
		if g.PercentRedundancy, err = nullFloat(row[ColRedundancy]); err != nil {
			return fmt.Errorf("line %d, %s: %w", ln, ColRedundancy, err)
		}
		if g.TotalLength, err = nullInt(row[ColLength]); err != nil {
			return fmt.Errorf("line %d, %s: %w", ln, ColLength, err)
		}
		return t.Add(g)
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// LoadFastaText reads a name/path table and measures every FASTA file. The
// genomes get completion and redundancy of 0 and the summed sequence length.
// Relative paths are resolved against the directory of the table.
func LoadFastaText(path string) (*Table, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	base := filepath.Dir(path)
	t := NewTable()
	err = scanTSV(fh, []string{ColName, ColPath}, func(ln int, row map[string]string) error {
		fasta := row[ColPath]
		if !filepath.IsAbs(fasta) {
			fasta = filepath.Join(base, fasta)
		}
		total, err := SequenceLength(fasta)
		if err != nil {
			return fmt.Errorf("line %d: %w", ln, err)
		}
		return t.Add(Genome{
			Name:              row[ColName],
			PercentCompletion: sql.NullFloat64{Float64: 0, Valid: true},
			PercentRedundancy: sql.NullFloat64{Float64: 0, Valid: true},
			TotalLength:       sql.NullInt64{Int64: total, Valid: true},
		})
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// scanTSV calls fn with every data row keyed by header name.
func scanTSV(r io.Reader, required []string, fn func(ln int, row map[string]string) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var header []string
	ln := 0
	for sc.Scan() {
		ln++
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		f := strings.Split(line, "\t")
		if header == nil {
			header = f
			for _, col := range required {
				if !contains(header, col) {
					return derr.Configf("genome", "line %d: header lacks the %q column", ln, col)
				}
			}
			continue
		}
		if len(f) != len(header) {
			return fmt.Errorf("line %d: %d fields, want %d", ln, len(f), len(header))
		}
		row := make(map[string]string, len(header))
		for i, col := range header {
			row[col] = strings.TrimSpace(f[i])
		}
		if err := fn(ln, row); err != nil {
			return err
		}
	}
	return sc.Err()
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func absent(cell string) bool {
	switch strings.ToLower(cell) {
	case "", "na", "nan", "none", "null":
		return true
	}
	return false
}

func nullFloat(cell string) (sql.NullFloat64, error) {
	if absent(cell) {
		return sql.NullFloat64{}, nil
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return sql.NullFloat64{}, err
	}
	return sql.NullFloat64{Float64: v, Valid: true}, nil
}

func nullInt(cell string) (sql.NullInt64, error) {
	if absent(cell) {
		return sql.NullInt64{}, nil
	}
	v, err := strconv.ParseInt(cell, 10, 64)
	if err != nil {
		return sql.NullInt64{}, err
	}
	return sql.NullInt64{Int64: v, Valid: true}, nil
}

package matrix

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/yumyai/ggderep/pkg/derr"
)

// LoadTSV reads a TAB-delimited matrix file. See ReadTSV.
func LoadTSV(path, name string, conv Convention) (*Matrix, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	m, err := ReadTSV(fh, name, conv)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// ReadTSV parses a square matrix. The first line is a header whose first cell
// is a label and whose other cells are genome names; every following line is
// a genome name and one value per header column. Rows may come in any order.
func ReadTSV(r io.Reader, name string, conv Convention) (*Matrix, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var header []string
	rows := make(map[string]map[string]float64)
	var extra []string
	ln := 0
	for sc.Scan() {
		ln++
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		f := strings.Split(line, "\t")
		if header == nil {
			if len(f) < 2 {
				return nil, fmt.Errorf("line %d: header has no genome names", ln)
			}
			header = f[1:]
			continue
		}
		if len(f) != len(header)+1 {
			return nil, fmt.Errorf("line %d: %d fields, want %d", ln, len(f), len(header)+1)
		}
		rowName := f[0]
		if _, dup := rows[rowName]; dup {
			return nil, derr.Inconsistent("matrix.ReadTSV", fmt.Sprintf("line %d: duplicate row", ln), []string{rowName})
		}
		row := make(map[string]float64, len(header))
		for i, cell := range f[1:] {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, fmt.Errorf("line %d, column %q: %w", ln, header[i], err)
			}
			if err := finite("matrix.ReadTSV", fmt.Sprintf("%s line %d", name, ln), rowName, header[i], v); err != nil {
				return nil, err
			}
			row[header[i]] = v
		}
		rows[rowName] = row
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if header == nil {
		return nil, derr.Missingf("matrix.ReadTSV", "%s: empty matrix file", name)
	}

	inHeader := make(map[string]struct{}, len(header))
	for _, h := range header {
		inHeader[h] = struct{}{}
	}
	for rowName := range rows {
		if _, ok := inHeader[rowName]; !ok {
			extra = append(extra, rowName)
		}
	}
	if len(extra) > 0 {
		sort.Strings(extra)
		return nil, derr.Inconsistent("matrix.ReadTSV", name+": rows without a header column", extra)
	}

	return fromMapOrdered(name, conv, header, rows)
}

// WriteTSV writes m in the format read by ReadTSV.
func WriteTSV(w io.Writer, m *Matrix) error {
	bw := bufio.NewWriter(w)
	bw.WriteString("key")
	for _, n := range m.names {
		bw.WriteByte('\t')
		bw.WriteString(n)
	}
	bw.WriteByte('\n')

	size := len(m.names)
	for i, a := range m.names {
		bw.WriteString(a)
		for j := 0; j < size; j++ {
			bw.WriteByte('\t')
			bw.WriteString(strconv.FormatFloat(m.values[i*size+j], 'g', -1, 64))
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

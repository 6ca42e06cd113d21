package genome

import (
	"bufio"
	"compress/gzip"
	"io"
	"os"
	"strings"
)

type gzipFile struct {
	*gzip.Reader
	fh *os.File
}

func (g *gzipFile) Close() error {
	err := g.Reader.Close()
	if cerr := g.fh.Close(); err == nil {
		err = cerr
	}
	return err
}

// openFasta detects gzip by magic number or .gz suffix.
func openFasta(path string) (io.ReadCloser, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	var sig [2]byte
	n, _ := fh.Read(sig[:])
	if _, err := fh.Seek(0, io.SeekStart); err != nil {
		fh.Close()
		return nil, err
	}
	if (n == 2 && sig[0] == 0x1f && sig[1] == 0x8b) || strings.HasSuffix(path, ".gz") {
		gr, err := gzip.NewReader(fh)
		if err != nil {
			fh.Close()
			return nil, err
		}
		return &gzipFile{Reader: gr, fh: fh}, nil
	}
	return fh, nil
}

// SequenceLength sums the residues of every record in a FASTA file.
func SequenceLength(path string) (int64, error) {
	rc, err := openFasta(path)
	if err != nil {
		return 0, err
	}
	defer rc.Close()
	return countResidues(rc)
}

func countResidues(r io.Reader) (int64, error) {
	br := bufio.NewReader(r)
	var total int64
	atLineStart := true
	inHeader := false
	for {
		b, err := br.ReadByte()
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return 0, err
		}
		switch {
		case b == '\n':
			atLineStart = true
			inHeader = false
			continue
		case atLineStart && b == '>':
			inHeader = true
		case inHeader:
		case b == ' ' || b == '\t' || b == '\r':
		default:
			total++
		}
		atLineStart = false
	}
}

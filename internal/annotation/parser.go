package annotation

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Parser reads annotation records from a headerless five-column TSV file.
type Parser struct {
	reader     *bufio.Reader
	file       *os.File
	gzipReader *gzip.Reader
	lineNumber int
}

// NewParser creates a parser for the given file.
// Supports both plain and gzipped (.tsv.gz) input.
func NewParser(path string) (*Parser, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open annotation file: %w", err)
	}

	p := &Parser{file: file}

	buf := make([]byte, 2)
	n, err := file.Read(buf)
	if err != nil && err != io.EOF {
		file.Close()
		return nil, fmt.Errorf("read annotation file: %w", err)
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		file.Close()
		return nil, fmt.Errorf("seek annotation file: %w", err)
	}

	// gzip magic number (0x1f, 0x8b)
	if n == 2 && buf[0] == 0x1f && buf[1] == 0x8b {
		p.gzipReader, err = gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		p.reader = bufio.NewReader(p.gzipReader)
	} else {
		p.reader = bufio.NewReader(file)
	}

	return p, nil
}

// NewParserFromReader creates a parser from an io.Reader.
func NewParserFromReader(r io.Reader) *Parser {
	return &Parser{reader: bufio.NewReader(r)}
}

// Next reads the next record.
// Returns nil, nil when there are no more records.
func (p *Parser) Next() (*Record, error) {
	for {
		line, err := p.reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("read annotation line: %w", err)
		}
		if err == io.EOF && line == "" {
			return nil, nil
		}
		p.lineNumber++

		line = strings.TrimRight(line, "\r\n")
		if strings.TrimSpace(line) == "" {
			if err == io.EOF {
				return nil, nil
			}
			continue
		}

		return p.parseLine(line)
	}
}

// parseLine splits a data line into a Record. Integer columns that do not
// parse are kept as zero so the range checks reject them; the input
// text stays available through Record.Value.
func (p *Parser) parseLine(line string) (*Record, error) {
	fields := strings.Split(line, "\t")
	if len(fields) != NumColumns {
		return nil, &ParseError{
			Line:    p.lineNumber,
			Message: fmt.Sprintf("expected %d columns, found %d", NumColumns, len(fields)),
		}
	}

	r := &Record{
		Chrom:   fields[ColChromosome],
		Start:   parseInt(fields[ColStartPos]),
		End:     parseInt(fields[ColEndPos]),
		Feature: fields[ColFeatureName],
		Strand:  fields[ColStrand],
	}
	copy(r.raw[:], fields)

	return r, nil
}

func parseInt(s string) int64 {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// Close closes the parser and underlying file.
func (p *Parser) Close() error {
	if p.gzipReader != nil {
		p.gzipReader.Close()
	}
	if p.file != nil {
		return p.file.Close()
	}
	return nil
}

// ReadAll reads every remaining record into a Table.
func (p *Parser) ReadAll() (*Table, error) {
	t := &Table{}
	for {
		r, err := p.Next()
		if err != nil {
			return nil, err
		}
		if r == nil {
			return t, nil
		}
		t.Append(*r)
	}
}

// Load opens path and reads the whole annotation table.
func Load(path string) (*Table, error) {
	p, err := NewParser(path)
	if err != nil {
		return nil, err
	}
	defer p.Close()

	return p.ReadAll()
}

// ParseError represents an error during annotation parsing with line context.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("annotation parse error at line %d: %s", e.Line, e.Message)
}

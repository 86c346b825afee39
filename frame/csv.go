package frame

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/apache/arrow/go/v18/arrow/memory"

	"github.com/metrico/dvgrouper/data_types"
)

var ErrEmptyCSV = errors.New("csv file has no header")

var separators = []rune{',', ';', '\t', '|'}

// DetectSeparator picks the most frequent separator in the first line of r,
// defaulting to a comma.
func DetectSeparator(r io.Reader) (rune, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	if !scanner.Scan() {
		return ',', scanner.Err()
	}
	firstLine := scanner.Text()
	detected, maxCount := ',', 0
	for _, sep := range separators {
		if count := strings.Count(firstLine, string(sep)); count > maxCount {
			detected, maxCount = sep, count
		}
	}
	return detected, nil
}

// openCSV opens path and reads its header row with the detected separator.
func openCSV(path string) (*os.File, *csv.Reader, []string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open csv file %q: %w", path, err)
	}
	sep, err := DetectSeparator(file)
	if err != nil {
		file.Close()
		return nil, nil, nil, fmt.Errorf("failed to read csv file %q: %w", path, err)
	}
	if _, err = file.Seek(0, io.SeekStart); err != nil {
		file.Close()
		return nil, nil, nil, err
	}

	r := csv.NewReader(bufio.NewReader(file))
	r.Comma = sep
	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		file.Close()
		return nil, nil, nil, fmt.Errorf("%w: %q", ErrEmptyCSV, path)
	}
	if err != nil {
		file.Close()
		return nil, nil, nil, fmt.Errorf("failed to read csv header of %q: %w", path, err)
	}
	r.ReuseRecord = true
	return file, r, header, nil
}

// ReadCSVHeader returns the cleaned header of a csv file and its separator.
func ReadCSVHeader(path string) ([]string, rune, error) {
	file, r, header, err := openCSV(path)
	if err != nil {
		return nil, 0, err
	}
	defer file.Close()
	return HeaderNames(header), r.Comma, nil
}

// ReadCSV reads a csv file with a header row. Column types are inferred
// from all values.
func ReadCSV(ctx context.Context, path string, mem memory.Allocator) (*Frame, error) {
	file, r, header, err := openCSV(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	names := HeaderNames(header)

	values := make([][]string, len(names))
	for row := 0; ; row++ {
		if row%4096 == 0 && ctx.Err() != nil {
			return nil, ctx.Err()
		}
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv file %q: %w", path, err)
		}
		for i := range values {
			values[i] = append(values[i], record[i])
		}
	}

	columns := make([]data_types.IColumn, len(names))
	for i, name := range names {
		if columns[i], err = data_types.InferColumn(name, values[i]); err != nil {
			return nil, err
		}
	}
	return Build(mem, columns)
}

// HeaderNames cleans a csv header. Blank names become "Unnamed: <i>", the
// placeholder pandas writes for an unnamed index.
func HeaderNames(header []string) []string {
	names := make([]string, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		names[i] = h
	}
	return names
}

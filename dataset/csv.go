/*
Package dataset reads partitioned ordinal datasets stored as delimited text files
*/
package dataset

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"go-ml.dev/pkg/ordinal/model"
	"golang.org/x/xerrors"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// candidate separators in order of preference
var separators = []rune{',', ';', '\t', ' '}

/*
Sniff guesses the separator of the first non-empty line
*/
func Sniff(line string) rune {
	best, count := ',', 0
	for _, s := range separators {
		c := strings.Count(strings.TrimSpace(line), string(s))
		if c > count {
			best, count = s, c
		}
	}
	return best
}

/*
ReadFile reads a dataset file, the last column is the label
*/
func ReadFile(path string) (model.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.Dataset{}, xerrors.Errorf("failed to open dataset file: %w", err)
	}
	defer f.Close()
	ds, err := Read(f)
	if err != nil {
		return model.Dataset{}, xerrors.Errorf("%v: %w", path, err)
	}
	return ds, nil
}

/*
Read reads a delimited dataset, the separator is sniffed from the first line
*/
func Read(r io.Reader) (model.Dataset, error) {
	records, err := readRecords(r)
	if err != nil {
		return model.Dataset{}, err
	}
	return parse(records)
}

/*
ReadFeatures reads an unlabeled query file, every column is a feature
*/
func ReadFeatures(path string) ([][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, xerrors.Errorf("failed to open query file: %w", err)
	}
	defer f.Close()
	records, err := readRecords(f)
	if err != nil {
		return nil, xerrors.Errorf("%v: %w", path, err)
	}
	r := make([][]float64, len(records))
	for i, rec := range records {
		if r[i], err = floats(rec, i); err != nil {
			return nil, xerrors.Errorf("%v: %w", path, err)
		}
	}
	return r, nil
}

func readRecords(r io.Reader) ([][]string, error) {
	bs, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var first string
	for rest := bs; len(rest) > 0 && first == ""; {
		line := rest
		if i := bytes.IndexByte(rest, '\n'); i >= 0 {
			line, rest = rest[:i], rest[i+1:]
		} else {
			rest = nil
		}
		first = strings.TrimSpace(string(line))
	}
	if first == "" {
		return nil, xerrors.Errorf("no data")
	}
	if Sniff(first) == ' ' {
		return fields(bs)
	}
	cr := csv.NewReader(bytes.NewReader(bs))
	cr.Comma = Sniff(first)
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, xerrors.Errorf("bad csv: %w", err)
	}
	return records, nil
}

func floats(rec []string, line int) ([]float64, error) {
	row := make([]float64, len(rec))
	for j, s := range rec {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, xerrors.Errorf("line %d column %d: %w", line+1, j+1, err)
		}
		row[j] = v
	}
	return row, nil
}

// whitespace separated records, blank lines are skipped
func fields(bs []byte) ([][]string, error) {
	var r [][]string
	sc := bufio.NewScanner(bytes.NewReader(bs))
	sc.Buffer(make([]byte, 64*1024), len(bs)+1)
	for sc.Scan() {
		if f := strings.Fields(sc.Text()); len(f) > 0 {
			r = append(r, f)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, xerrors.Errorf("bad text: %w", err)
	}
	return r, nil
}

func parse(records [][]string) (model.Dataset, error) {
	ds := model.Dataset{
		Features: make([][]float64, 0, len(records)),
		Labels:   make([]int, 0, len(records)),
	}
	for i, rec := range records {
		if len(rec) < 2 {
			return model.Dataset{}, xerrors.Errorf("line %d: at least one feature and the label are required", i+1)
		}
		row, err := floats(rec[:len(rec)-1], i)
		if err != nil {
			return model.Dataset{}, err
		}
		l, err := label(rec[len(rec)-1])
		if err != nil {
			return model.Dataset{}, xerrors.Errorf("line %d: %w", i+1, err)
		}
		ds.Features = append(ds.Features, row)
		ds.Labels = append(ds.Labels, l)
	}
	return ds, nil
}

// integer label, integral floats like 2.0 are accepted
func label(s string) (int, error) {
	s = strings.TrimSpace(s)
	if l, err := strconv.Atoi(s); err == nil {
		return l, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v != math.Trunc(v) || math.IsInf(v, 0) {
		return 0, xerrors.Errorf("label `%v` is not an integer", s)
	}
	return int(v), nil
}

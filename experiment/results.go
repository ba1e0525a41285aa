package experiment

import (
	"encoding/csv"
	"go-ml.dev/pkg/ordinal/model"
	"golang.org/x/xerrors"
	"gonum.org/v1/gonum/stat"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
)

/*
Results is the collection of partition records
*/
type Results struct {
	Metrics []string
	Records []Record
}

/*
Columns returns names of the reported values
*/
func (r *Results) Columns() []string {
	c := make([]string, 0, len(r.Metrics)*2+4)
	for _, m := range r.Metrics {
		c = append(c, m+"_train", m+"_test")
	}
	return append(c, "cv_score", "cv_time", "time_train", "time_test")
}

func (r *Results) values(rec Record) []float64 {
	v := make([]float64, 0, len(r.Metrics)*2+4)
	for _, m := range r.Metrics {
		v = append(v, rec.Train[m], rec.Test[m])
	}
	cvTime, testTime := math.NaN(), math.NaN()
	if !math.IsNaN(rec.CVScore) {
		cvTime = rec.CVTime.Seconds()
	}
	if rec.TestTime > 0 {
		testTime = rec.TestTime.Seconds()
	}
	return append(v, rec.CVScore, cvTime, rec.FitTime.Seconds(), testTime)
}

/*
Group is the records of one dataset and configuration pair
*/
type Group struct {
	Dataset, Config string
	Records         []Record
}

/*
Groups returns records grouped by dataset and configuration in order of appearance
*/
func (r *Results) Groups() []Group {
	var groups []Group
	index := map[[2]string]int{}
	for _, rec := range r.Records {
		k := [2]string{rec.Dataset, rec.Config}
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, Group{Dataset: rec.Dataset, Config: rec.Config})
		}
		groups[i].Records = append(groups[i].Records, rec)
	}
	return groups
}

/*
MeanStd returns mean and standard deviation of not NaN values
*/
func MeanStd(values []float64) (float64, float64) {
	x := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			x = append(x, v)
		}
	}
	switch len(x) {
	case 0:
		return math.NaN(), math.NaN()
	case 1:
		return x[0], 0
	}
	return stat.MeanStdDev(x, nil)
}

/*
Summary returns mean and standard deviation of every column per group
*/
func (r *Results) Summary(g Group) (mean, std []float64) {
	cols := r.Columns()
	mean, std = make([]float64, len(cols)), make([]float64, len(cols))
	table := make([][]float64, len(g.Records))
	for i, rec := range g.Records {
		table[i] = r.values(rec)
	}
	col := make([]float64, len(g.Records))
	for j := range cols {
		for i := range table {
			col[i] = table[i][j]
		}
		mean[j], std[j] = MeanStd(col)
	}
	return
}

func format(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'f', 6, 64)
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return xerrors.Errorf("failed to create results file: %w", err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err = w.WriteAll(rows); err != nil {
		return xerrors.Errorf("failed to write %v: %w", path, err)
	}
	return f.Close()
}

func paramKeys(records []Record) []string {
	seen := map[string]bool{}
	for _, rec := range records {
		for k := range rec.Params {
			seen[k] = true
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

/*
Write stores one file per dataset and configuration and the summary.csv into the directory
*/
func (r *Results) Write(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return xerrors.Errorf("failed to create results directory: %w", err)
	}
	cols := r.Columns()
	summary := [][]string{{"dataset", "config"}}
	for _, c := range cols {
		summary[0] = append(summary[0], c+"_mean", c+"_std")
	}

	for _, g := range r.Groups() {
		keys := paramKeys(g.Records)
		rows := [][]string{append(append([]string{"partition"}, keys...), cols...)}
		for _, rec := range g.Records {
			row := []string{rec.Partition}
			for _, k := range keys {
				row = append(row, paramValue(rec.Params, k))
			}
			for _, v := range r.values(rec) {
				row = append(row, format(v))
			}
			rows = append(rows, row)
		}
		if err := writeCSV(filepath.Join(dir, g.Dataset+"-"+g.Config+".csv"), rows); err != nil {
			return err
		}

		mean, std := r.Summary(g)
		row := []string{g.Dataset, g.Config}
		for j := range cols {
			row = append(row, format(mean[j]), format(std[j]))
		}
		summary = append(summary, row)
	}
	return writeCSV(filepath.Join(dir, "summary.csv"), summary)
}

func paramValue(p model.Params, k string) string {
	if v, ok := p[k]; ok {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return ""
}

package dataset

import (
	"go-ml.dev/pkg/ordinal/model"
	"golang.org/x/xerrors"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

/*
Partition is a train/test split of a dataset
*/
type Partition struct {
	Key   string
	Train model.Dataset
	Test  *model.Dataset // nil if the partition has no test file
}

// train_toy.0 and test_toy.0 belong to the partition 0
func partitionKey(name string) string {
	if i := strings.IndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	name = strings.TrimPrefix(name, "train_")
	return strings.TrimPrefix(name, "test_")
}

// numeric keys go first in numeric order, others follow in lexicographic order
func keyLess(a, b string) bool {
	x, errA := strconv.Atoi(a)
	y, errB := strconv.Atoi(b)
	switch {
	case errA == nil && errB == nil:
		return x < y
	case errA == nil:
		return true
	case errB == nil:
		return false
	}
	return a < b
}

/*
LoadPartitions reads all train_* and test_* files of the dataset directory
*/
func LoadPartitions(dir string) ([]Partition, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, xerrors.Errorf("no such dataset directory: %w", err)
	}
	train := map[string]string{}
	test := map[string]string{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch n := e.Name(); {
		case strings.HasPrefix(n, "train_"):
			train[partitionKey(n)] = filepath.Join(dir, n)
		case strings.HasPrefix(n, "test_"):
			test[partitionKey(n)] = filepath.Join(dir, n)
		}
	}
	for k := range test {
		if _, ok := train[k]; !ok {
			return nil, xerrors.Errorf("found partition without train file: partition %v of %v", k, dir)
		}
	}
	if len(train) == 0 {
		return nil, xerrors.Errorf("no train files in %v", dir)
	}
	keys := make([]string, 0, len(train))
	for k := range train {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keyLess(keys[i], keys[j]) })

	r := make([]Partition, len(keys))
	for i, k := range keys {
		r[i].Key = k
		if r[i].Train, err = ReadFile(train[k]); err != nil {
			return nil, err
		}
		if p, ok := test[k]; ok {
			ds, err := ReadFile(p)
			if err != nil {
				return nil, err
			}
			r[i].Test = &ds
		}
	}
	return r, nil
}

/*
ExpandBase replaces the leading ~ by the user home directory
*/
func ExpandBase(base string) (string, error) {
	if base == "~" || strings.HasPrefix(base, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", xerrors.Errorf("failed to expand %v: %w", base, err)
		}
		return filepath.Join(home, base[1:]), nil
	}
	return base, nil
}

/*
ExpandList returns dataset names, the single name `all` expands to every directory under the base
*/
func ExpandList(base string, names []string) ([]string, error) {
	base, err := ExpandBase(base)
	if err != nil {
		return nil, err
	}
	if len(names) == 1 && strings.TrimSpace(strings.ToLower(names[0])) == "all" {
		entries, err := os.ReadDir(base)
		if err != nil {
			return nil, xerrors.Errorf("failed to list datasets: %w", err)
		}
		r := []string{}
		for _, e := range entries {
			if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
				r = append(r, e.Name())
			}
		}
		sort.Strings(r)
		return r, nil
	}
	r := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			r = append(r, n)
		}
	}
	return r, nil
}

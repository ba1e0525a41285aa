package main

import (
	"bytes"
	"fmt"
	"gotest.tools/assert"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) (string, error) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func Test_FitPredictModels(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ORDINAL_CFG_PATH", dir)
	train := filepath.Join(dir, "train.csv")
	query := filepath.Join(dir, "query.csv")
	artifact := filepath.Join(dir, "toy.model")
	db := filepath.Join(dir, "models.db")
	assert.NilError(t, os.WriteFile(train, []byte("0,0,1\n0.5,0.5,1\n2,2,2\n4,4,3\n"), 0644))
	assert.NilError(t, os.WriteFile(query, []byte("0,0\n0.5,0.5\n2,2\n4,4\n"), 0644))
	storeFlags := []string{"--store", "sqlite", "--store-path", db}

	out, err := execute(t, append([]string{"fit", "--train", train, "-p", "C=10", "--out", artifact, "--name", "toy"}, storeFlags...)...)
	assert.NilError(t, err, out)
	assert.Assert(t, strings.Contains(out, "ccr\ttrain 1.00000"), out)
	assert.Assert(t, strings.Contains(out, "saved as toy"), out)

	out, err = execute(t, "predict", "--model", artifact, "--input", query)
	assert.NilError(t, err, out)
	assert.Equal(t, out, "1\n1\n2\n3\n")

	out, err = execute(t, append([]string{"predict", "--name", "toy", "--input", train, "--labeled"}, storeFlags...)...)
	assert.NilError(t, err, out)
	assert.Assert(t, strings.HasPrefix(out, "1\n1\n2\n3\n"), out)
	assert.Assert(t, strings.Contains(out, "mae\t0.00000"), out)

	out, err = execute(t, append([]string{"models", "list"}, storeFlags...)...)
	assert.NilError(t, err, out)
	assert.Assert(t, strings.Contains(out, "toy"), out)
	assert.Assert(t, strings.Contains(out, "svorex"), out)
	assert.Assert(t, strings.Contains(out, "1,2,3"), out)
	assert.Assert(t, strings.Contains(out, "ccr_train=1"), out)

	out, err = execute(t, append([]string{"models", "delete", "toy"}, storeFlags...)...)
	assert.NilError(t, err, out)
	_, err = execute(t, append([]string{"predict", "--name", "toy", "--input", query}, storeFlags...)...)
	assert.ErrorContains(t, err, "model not found")
}

func Test_Errors(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ORDINAL_CFG_PATH", dir)
	train := filepath.Join(dir, "train.csv")
	assert.NilError(t, os.WriteFile(train, []byte("0,1\n1,1\n"), 0644))

	_, err := execute(t, "fit", "--train", train)
	assert.ErrorContains(t, err, "at least two classes")
	_, err = execute(t, "fit", "--train", train, "--solver", "svm")
	assert.ErrorContains(t, err, "unknown solver")
	_, err = execute(t, "fit", "--train", train, "-p", "C")
	assert.ErrorContains(t, err, "name=value")
	_, err = execute(t, "predict", "--input", train)
	assert.ErrorContains(t, err, "exactly one of")
	_, err = execute(t, "models", "list", "--store", "none")
	assert.ErrorContains(t, err, "not configured")
	_, err = execute(t, "fit", "--train", train, "--log-level", "loud")
	assert.ErrorContains(t, err, "bad log level")
}

func Test_Run(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ORDINAL_CFG_PATH", dir)
	data := filepath.Join(dir, "data", "toy")
	assert.NilError(t, os.MkdirAll(data, 0755))
	var train strings.Builder
	for i := 0; i < 9; i++ {
		fmt.Fprintf(&train, "%d,%d\n", i, i/3)
	}
	assert.NilError(t, os.WriteFile(filepath.Join(data, "train_toy.0"), []byte(train.String()), 0644))
	assert.NilError(t, os.WriteFile(filepath.Join(data, "test_toy.0"), []byte("1,0\n4,1\n7,2\n"), 0644))
	exp := filepath.Join(dir, "exp.yaml")
	assert.NilError(t, os.WriteFile(exp, []byte(fmt.Sprintf(`
general_conf:
  basedir: %v
  datasets: [all]
  metrics: [ccr, mae]
  output_folder: %v
configurations:
  svorex:
    classifier: svorex
    parameters:
      C: 10
`, filepath.Join(dir, "data"), filepath.Join(dir, "runs"))), 0644))

	out, err := execute(t, "run", "--experiment", exp)
	assert.NilError(t, err, out)
	assert.Assert(t, strings.Contains(out, "1 partitions done"), out)
	summaries, err := filepath.Glob(filepath.Join(dir, "runs", "exp-*", "summary.csv"))
	assert.NilError(t, err)
	assert.Assert(t, len(summaries) == 1)
	_, err = os.Stat(filepath.Join(filepath.Dir(summaries[0]), "toy-svorex.csv"))
	assert.NilError(t, err)
}

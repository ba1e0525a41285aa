package main

import (
	"bufio"
	"fmt"
	"github.com/spf13/cobra"
	"go-ml.dev/pkg/ordinal/dataset"
	"go-ml.dev/pkg/ordinal/metrics"
	"go-ml.dev/pkg/ordinal/model"
	"go-ml.dev/pkg/ordinal/model/catalog"
	"golang.org/x/xerrors"
	"io"
	"os"
	"path/filepath"
)

func (a *app) predictCmd() *cobra.Command {
	var (
		file, name, input, out string
		labeled                bool
	)
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict labels of the query file, one label per line",
		RunE: func(cmd *cobra.Command, args []string) error {
			if (file == "") == (name == "") {
				return xerrors.Errorf("exactly one of --model and --name is required")
			}
			var m *model.Model
			var err error
			if file != "" {
				if file, err = filepath.Abs(file); err != nil {
					return err
				}
				m, err = model.Load(catalog.Table(), file)
			} else {
				st, e := a.openStore(cmd.Context())
				if e != nil {
					return e
				}
				defer st.Close()
				m, err = st.Load(cmd.Context(), name)
			}
			if err != nil {
				return err
			}

			var query [][]float64
			var truth []int
			if labeled {
				ds, err := dataset.ReadFile(input)
				if err != nil {
					return err
				}
				query, truth = ds.Features, ds.Labels
			} else if query, err = dataset.ReadFeatures(input); err != nil {
				return err
			}
			labels, err := m.Predict(query)
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return xerrors.Errorf("failed to create output: %w", err)
				}
				defer f.Close()
				w = f
			}
			bw := bufio.NewWriter(w)
			for _, l := range labels {
				fmt.Fprintln(bw, l)
			}
			if err = bw.Flush(); err != nil {
				return err
			}
			if labeled {
				r, err := metrics.Evaluate(metrics.Names(), truth, labels)
				if err != nil {
					return err
				}
				for _, k := range metrics.Names() {
					fmt.Fprintf(cmd.ErrOrStderr(), "%v\t%.5f\n", k, r[k])
				}
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&file, "model", "m", "", "model artifact file")
	f.StringVar(&name, "name", "", "stored model name")
	f.StringVarP(&input, "input", "i", "", "query file")
	f.StringVarP(&out, "out", "o", "", "output file, stdout by default")
	f.BoolVar(&labeled, "labeled", false, "the last column of the input is the true label, metrics are printed to stderr")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

package main

import (
	"fmt"
	"github.com/spf13/cobra"
	"go-ml.dev/pkg/ordinal/dataset"
	"go-ml.dev/pkg/ordinal/model"
	"go-ml.dev/pkg/ordinal/model/catalog"
	"path/filepath"
	"sort"
)

func (a *app) fitCmd() *cobra.Command {
	var (
		train, test, solver, out, name string
		params, metricNames            []string
	)
	cmd := &cobra.Command{
		Use:   "fit",
		Short: "Fit a model on a labeled dataset file",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := catalog.New(solver)
			if err != nil {
				return err
			}
			p, err := model.ParseParams(params)
			if err != nil {
				return err
			}
			ds, err := dataset.ReadFile(train)
			if err != nil {
				return err
			}
			var testDs *model.Dataset
			if test != "" {
				t, err := dataset.ReadFile(test)
				if err != nil {
					return err
				}
				testDs = &t
			}
			training := model.Training{
				Metrics: metricNames,
				Verbose: func(s string) { a.log.Infof("%v", s) },
			}
			if out != "" {
				if training.ModelFile, err = filepath.Abs(out); err != nil {
					return err
				}
			}
			report, err := training.Run(s, ds, testDs, p)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			keys := make([]string, 0, len(report.Train))
			for k := range report.Train {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(w, "%v\ttrain %.5f\ttest %.5f\n", k, report.Train[k], report.Test[k])
			}

			if name != "" {
				st, err := a.openStore(cmd.Context())
				if err != nil {
					return err
				}
				defer st.Close()
				meta := map[string]float64{}
				for k, v := range report.Train {
					meta[k+"_train"] = v
				}
				if testDs != nil {
					for k, v := range report.Test {
						meta[k+"_test"] = v
					}
				}
				if err = st.Save(cmd.Context(), name, report.Model, meta); err != nil {
					return err
				}
				fmt.Fprintf(w, "saved as %v\n", name)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&train, "train", "", "labeled training file, the last column is the label")
	f.StringVar(&test, "test", "", "optional labeled test file")
	f.StringVar(&solver, "solver", "svorex", fmt.Sprintf("solver, one of %v", catalog.Table().Names()))
	f.StringArrayVarP(&params, "param", "p", nil, "hyper-parameter name=value, repeatable")
	f.StringSliceVar(&metricNames, "metrics", []string{"ccr", "mae"}, "reported metrics")
	f.StringVarP(&out, "out", "o", "", "model artifact file")
	f.StringVar(&name, "name", "", "save the model into the store under the name")
	_ = cmd.MarkFlagRequired("train")
	return cmd
}

package main

import (
	"fmt"
	"github.com/spf13/cobra"
	"go-ml.dev/pkg/ordinal/experiment"
	"go-ml.dev/pkg/ordinal/model/catalog"
	"path/filepath"
	"time"
)

func (a *app) runCmd() *cobra.Command {
	var file, output string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run an experiment described by a yaml file",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := experiment.Load(file)
			if err != nil {
				return err
			}
			runner := experiment.Runner{Experiment: e, Table: catalog.Table(), Log: a.log}
			if e.General.SaveModels {
				st, err := a.openStore(cmd.Context())
				if err != nil {
					return err
				}
				defer st.Close()
				runner.Saver = st
			}
			results, err := runner.Run(cmd.Context())
			if err != nil {
				return err
			}
			if output == "" {
				output = e.General.OutputFolder
			}
			dir := filepath.Join(output, "exp-"+time.Now().Format("2006-01-02-15-04-05"))
			if err = results.Write(dir); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d partitions done, results in %v\n", len(results.Records), dir)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "experiment", "e", "", "experiment file")
	cmd.Flags().StringVar(&output, "output", "", "results folder, output_folder of the experiment by default")
	_ = cmd.MarkFlagRequired("experiment")
	return cmd
}

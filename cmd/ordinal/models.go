package main

import (
	"fmt"
	"github.com/spf13/cobra"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
)

func (a *app) modelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "Manage stored models",
	}
	list := &cobra.Command{
		Use:   "list",
		Short: "List stored models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()
			entries, err := st.List(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tSOLVER\tDIM\tCLASSES\tCREATED\tMETA")
			for _, e := range entries {
				classes := make([]string, len(e.Classes))
				for i, c := range e.Classes {
					classes[i] = strconv.Itoa(c)
				}
				keys := make([]string, 0, len(e.Meta))
				for k := range e.Meta {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				meta := make([]string, len(keys))
				for i, k := range keys {
					meta[i] = fmt.Sprintf("%v=%.4g", k, e.Meta[k])
				}
				fmt.Fprintf(w, "%v\t%v\t%d\t%v\t%v\t%v\n",
					e.Name, e.Solver, e.Dim, strings.Join(classes, ","),
					e.CreatedAt.Local().Format("2006-01-02 15:04:05"), strings.Join(meta, " "))
			}
			return w.Flush()
		},
	}
	del := &cobra.Command{
		Use:   "delete NAME...",
		Short: "Delete stored models",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()
			for _, name := range args {
				if err := st.Delete(cmd.Context(), name); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %v\n", name)
			}
			return nil
		},
	}
	cmd.AddCommand(list, del)
	return cmd
}

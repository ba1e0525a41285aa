package main

import (
	"context"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go-ml.dev/pkg/ordinal/config"
	"go-ml.dev/pkg/ordinal/model/catalog"
	"go-ml.dev/pkg/ordinal/store"
	"go-ml.dev/pkg/ordinal/zlog"
	"golang.org/x/xerrors"
)

// config keys overridden by the persistent flags
var flagKeys = map[string]string{
	"log.level":  "log-level",
	"store.kind": "store",
	"store.path": "store-path",
}

type app struct {
	cfgFile string
	cfg     *config.Config
	viper   *viper.Viper
	log     *zlog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{viper: viper.New()}
	root := &cobra.Command{
		Use:          "ordinal",
		Short:        "Fit and apply ordinal regression models",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			zlog.Sync()
		},
	}
	pf := root.PersistentFlags()
	pf.StringVarP(&a.cfgFile, "config", "c", "", "config file, ordinal.yaml in $ORDINAL_CFG_PATH or . by default")
	pf.String("log-level", "", "log level: debug, info, warn or error")
	pf.String("store", "", "model store kind: sqlite, redis or none")
	pf.String("store-path", "", "sqlite model store file")

	root.AddCommand(a.fitCmd(), a.predictCmd(), a.runCmd(), a.modelsCmd())
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	if err := bindFlags(a.viper, cmd.Root().PersistentFlags(), flagKeys); err != nil {
		return err
	}
	cfg, err := config.Load(a.viper, a.cfgFile)
	if err != nil {
		return err
	}
	if err = zlog.Configure(cfg.Log); err != nil {
		return err
	}
	a.cfg = cfg
	a.log = zlog.Get("ordinal")
	a.log.Debugf("configuration: %+v", *cfg)
	return nil
}

func (a *app) openStore(ctx context.Context) (store.ModelStore, error) {
	return store.Open(ctx, a.cfg.Store, catalog.Table())
}

func bindFlags(v *viper.Viper, fs *pflag.FlagSet, keys map[string]string) error {
	for key, name := range keys {
		f := fs.Lookup(name)
		if f == nil {
			return xerrors.Errorf("no flag --%v", name)
		}
		if err := v.BindPFlag(key, f); err != nil {
			return err
		}
	}
	return nil
}

package main

import (
	"os"
	"strconv"

	"github.com/iyisakuma/NPB-GO/NPB-CG/CG/bench"
	"github.com/iyisakuma/NPB-GO/NPB-CG/CG/config"
	"github.com/iyisakuma/NPB-GO/NPB-CG/common"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logrus.WithError(err).Error("cg failed")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := config.New()
	cmd := &cobra.Command{
		Use:   "cg [class] [threads]",
		Short: "NAS Parallel Benchmarks CG kernel",
		Long: `Runs the NPB conjugate gradient benchmark: builds a random sparse
symmetric matrix and estimates its smallest eigenvalue with the inverse
power method, solving each step with 25 iterations of conjugate gradient.`,
		Example:       "  cg B 4\n  cg --class A --threads 8 --timers",
		Args:          cobra.MaximumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, v, args)
		},
	}
	config.RegisterFlags(cmd)
	return cmd
}

func run(cmd *cobra.Command, v *viper.Viper, args []string) error {
	if err := config.BindFlags(v, cmd); err != nil {
		return err
	}
	if len(args) > 0 {
		v.Set("class", args[0])
	}
	if len(args) > 1 {
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return errors.Wrapf(err, "threads %q", args[1])
		}
		v.Set("threads", n)
	}

	boot, err := common.NewLogger("info", cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(v, path, boot)
	if err != nil {
		return errors.Wrap(err, "configuration")
	}
	log, err := common.NewLogger(cfg.LogLevel, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	b := bench.New(cfg.Params, cfg.Threads,
		bench.WithLogger(log),
		bench.WithOutput(cmd.OutOrStdout()),
		bench.WithTimers(cfg.Timers),
	)
	rep, err := b.Run()
	if err != nil {
		return err
	}

	if cfg.ReportFile != "" {
		if err := common.WriteReportFile(cfg.ReportFile, rep); err != nil {
			return err
		}
		log.WithFields(logrus.Fields{"run_id": rep.RunID, "file": cfg.ReportFile}).Info("report written")
	}
	if cfg.MetricsFile != "" {
		if err := b.Metrics().WriteTextfile(cfg.MetricsFile); err != nil {
			return err
		}
		log.WithFields(logrus.Fields{"run_id": rep.RunID, "file": cfg.MetricsFile}).Info("metrics written")
	}
	return nil
}

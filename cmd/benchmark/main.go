package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/delaneyj/statetree/cmd/benchmark/templates"
	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

const (
	configKey     = "config"
	depthKey      = "depth"
	widthKey      = "width"
	iterationsKey = "iterations"
	sampleKey     = "sample"
	reportKey     = "report"
	verboseKey    = "verbose"
)

func main() {
	cmd := &cli.Command{
		Name:  "benchmark",
		Usage: "Measure write and notify latency of deep and wide state trees",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  configKey,
				Usage: "YAML config file",
			},
			&cli.IntSliceFlag{
				Name:  depthKey,
				Usage: "Nesting levels to run, overrides the config",
			},
			&cli.IntSliceFlag{
				Name:  widthKey,
				Usage: "List lengths to run, overrides the config",
			},
			&cli.IntFlag{
				Name:  iterationsKey,
				Usage: "Writes per run",
			},
			&cli.IntFlag{
				Name:  sampleKey,
				Usage: "Subscribe to every n-th list element",
			},
			&cli.StringFlag{
				Name:  reportKey,
				Usage: "Write a markdown report to this file",
			},
			&cli.BoolFlag{
				Name:  verboseKey,
				Usage: "Log store internals",
			},
		},
		Action: run,
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(ctx context.Context, cmd *cli.Command) error {
	log, err := newLogger(cmd.Bool(verboseKey))
	if err != nil {
		return err
	}
	defer log.Sync()

	cfg, err := loadConfig(cmd.String(configKey))
	if err != nil {
		return err
	}
	if cmd.IsSet(depthKey) {
		cfg.Depths = toInts(cmd.IntSlice(depthKey))
	}
	if cmd.IsSet(widthKey) {
		cfg.Widths = toInts(cmd.IntSlice(widthKey))
	}
	if cmd.IsSet(iterationsKey) {
		cfg.Iterations = int(cmd.Int(iterationsKey))
	}
	if cmd.IsSet(sampleKey) {
		cfg.Sample = int(cmd.Int(sampleKey))
	}
	if cmd.IsSet(reportKey) {
		cfg.Report = cmd.String(reportKey)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// only the verbose run wants the store's debug lines
	storeLog := zap.NewNop()
	if cmd.Bool(verboseKey) {
		storeLog = log.Named("store")
	}

	start := time.Now()
	log.Info("benchmark started", zap.Ints("depths", cfg.Depths), zap.Ints("widths", cfg.Widths), zap.Int("iterations", cfg.Iterations))

	var results []*result
	for _, d := range cfg.Depths {
		if err := ctx.Err(); err != nil {
			return err
		}
		r, err := runDeep(storeLog, d, cfg.Iterations)
		if err != nil {
			return err
		}
		results = append(results, r)
	}
	for _, w := range cfg.Widths {
		if err := ctx.Err(); err != nil {
			return err
		}
		r, err := runWide(storeLog, w, cfg.Sample, cfg.Iterations)
		if err != nil {
			return err
		}
		results = append(results, r)
	}

	render(results)
	if cfg.Report != "" {
		if err := writeReport(cfg.Report, results); err != nil {
			return err
		}
		log.Info("report written", zap.String("path", cfg.Report))
	}

	log.Info("benchmark finished", zap.Duration("took", time.Since(start)))
	return nil
}

func toInts(vs []int64) []int {
	out := make([]int, len(vs))
	for i, v := range vs {
		out[i] = int(v)
	}
	return out
}

func render(results []*result) {
	tbl := table.NewWriter()
	tbl.SetTitle("statetree")
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"benchmark", "nodes", "subscribers", "deliveries", "avg", "min", "p75", "p99", "max", "writes/s"})

	for _, r := range results {
		tbl.AppendRow(table.Row{
			r.name,
			humanize.Comma(int64(r.nodes)),
			humanize.Comma(int64(r.subscribers)),
			humanize.Comma(int64(r.deliveries)),
			r.calc.Time.Avg,
			r.calc.Time.Min,
			r.calc.Time.P75,
			r.calc.Time.P99,
			r.calc.Time.Max,
			humanize.Comma(int64(r.calc.Rate.Second)),
		})
	}
	tbl.Render()
}

func writeReport(path string, results []*result) error {
	rows := make([]templates.Row, len(results))
	for i, r := range results {
		rows[i] = templates.Row{
			Name:        r.name,
			Nodes:       r.nodes,
			Subscribers: r.subscribers,
			Deliveries:  r.deliveries,
			Avg:         r.calc.Time.Avg,
			P75:         r.calc.Time.P75,
			P99:         r.calc.Time.P99,
			Max:         r.calc.Time.Max,
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer f.Close()
	templates.WriteReport(f, time.Now().UTC(), rows)
	return f.Close()
}

package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/opst/knitsim/pkg/analysis"
	driver "github.com/opst/knitsim/pkg/analysisdriver"
	kconf "github.com/opst/knitsim/pkg/configs/driver"
	"github.com/opst/knitsim/pkg/project"
	"github.com/opst/knitsim/pkg/runner"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newAnalysisCommand(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analysis",
		Short: "Run analyses",
	}
	cmd.AddCommand(newAnalysisRunCommand(g))
	return cmd
}

func newAnalysisRunCommand(g *globalFlags) *cobra.Command {
	configPath := ""
	cmd := &cobra.Command{
		Use:   "run MANIFEST.yaml",
		Short: "Run an analysis until all data points are simulated, and print the results as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := kconf.Load(configPath)
			if err != nil {
				return fmt.Errorf("can not read configration: %w", err)
			}
			a, err := analysis.LoadManifest(args[0])
			if err != nil {
				return err
			}
			return runAnalysis(cmd.Context(), cmd, g, conf, a)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "knitsim.yaml", "knitsim config path")
	return cmd
}

func runAnalysis(ctx context.Context, cmd *cobra.Command, g *globalFlags, conf *kconf.Config, a *analysis.Analysis) error {
	logger := g.logger(cmd)

	jobs := runner.New(conf.MaxLocalJobs(), runner.WithLogger(logger))
	defer jobs.Close()
	db := project.NewMemory(jobs)

	d := driver.New(
		db,
		driver.WithLogger(logger),
		driver.WithListener(&progress{out: cmd.ErrOrStderr()}),
	)

	opts := conf.RunOptions()
	opts.WorkingDirectory = filepath.Join(opts.WorkingDirectory, a.ID.String())
	ca, err := d.Run(a, opts)
	if ca == nil {
		return err
	}
	if err != nil {
		logger.Warnf("analysis is started with error: %s", err)
	}
	if opts.QueuePausing == driver.FullPauseManualUnpause {
		// nobody else can unpause.
		d.UnpauseQueue()
	}

	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			d.Stop(ca)
		case <-done:
		}
	}()
	d.WaitForFinished(0)
	close(done)

	result, err := db.Analysis(a.ID)
	if err != nil {
		return err
	}
	if err := printResults(cmd.OutOrStdout(), result); err != nil {
		return err
	}
	return ctx.Err()
}

func printResults(w io.Writer, a *analysis.Analysis) error {
	type dataPoint struct {
		Values    map[string]float64 `yaml:"values"`
		Status    string             `yaml:"status"`
		Responses map[string]float64 `yaml:"responses,omitempty"`
		Failure   string             `yaml:"failure,omitempty"`
	}
	out := struct {
		Name       string      `yaml:"name"`
		DataPoints []dataPoint `yaml:"dataPoints"`
	}{Name: a.Name}

	for _, dp := range a.DataPoints {
		p := dataPoint{
			Values: map[string]float64{},
			Status: dp.Status.String(),
		}
		for i, v := range a.Problem.Variables {
			if i < len(dp.VariableValues) {
				p.Values[v.Name] = dp.VariableValues[i]
			}
		}
		if 0 < len(dp.Responses) {
			p.Responses = map[string]float64{}
			for i, r := range a.Problem.Responses {
				if i < len(dp.Responses) {
					p.Responses[r] = dp.Responses[i]
				}
			}
		}
		p.Failure = dp.FailureReason
		out.DataPoints = append(out.DataPoints, p)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return err
	}
	return enc.Close()
}

// progress prints progress of the analysis.
type progress struct {
	driver.Nop
	out io.Writer
}

func (p *progress) DataPointComplete(s driver.Summary, dp uuid.UUID) {
	fmt.Fprintf(p.out, "%s: %d/%d data points done (%d failed)\n", s.Name, s.Completed+s.Failed, s.DataPoints, s.Failed)
}

func (p *progress) AnalysisComplete(s driver.Summary) {
	fmt.Fprintf(p.out, "%s: complete\n", s.Name)
}

func (p *progress) AnalysisStopped(s driver.Summary) {
	fmt.Fprintf(p.out, "%s: stopped\n", s.Name)
}

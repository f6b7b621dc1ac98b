package main

import (
	"github.com/labstack/gommon/log"
	"github.com/opst/knitsim/pkg/echoutil"
	"github.com/spf13/cobra"
)

type globalFlags struct {
	logLevel string
}

func (g *globalFlags) logger(cmd *cobra.Command) *log.Logger {
	logger := log.New("knitsim")
	logger.SetOutput(cmd.ErrOrStderr())
	lvl, ok := echoutil.ParseLevel(g.logLevel)
	logger.SetLevel(lvl)
	if !ok {
		logger.Warnf("unknown log level: %s . fall-backed to warn", g.logLevel)
	}
	return logger
}

func newRootCommand() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "knitsim",
		Short:         "Translate building energy models, and run analyses over them",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "warn", "log level. debug|info|warn|error|off")

	root.AddCommand(
		newTranslateCommand(g),
		newGeometryCommand(g),
		newAnalysisCommand(g),
		newDakotaCommand(g),
	)
	return root
}

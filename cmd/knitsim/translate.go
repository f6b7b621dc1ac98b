package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/opst/knitsim/pkg/idf"
	"github.com/opst/knitsim/pkg/model"
	"github.com/opst/knitsim/pkg/translator"
	"github.com/opst/knitsim/pkg/translator/forward"
	"github.com/opst/knitsim/pkg/translator/reverse"
	"github.com/spf13/cobra"
)

var ErrTranslationFailed = errors.New("translation failed")

func newTranslateCommand(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "translate",
		Short: "Translate between model files and the domain model",
	}
	cmd.AddCommand(newTranslateReverseCommand(g), newTranslateForwardCommand(g))
	return cmd
}

func newTranslateReverseCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "reverse IN.idf",
		Short: "Read a model file into the domain model, and print a summary of it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := readWorkspace(args[0])
			if err != nil {
				return err
			}
			rt := reverse.New(g.logger(cmd))
			m := rt.TranslateWorkspace(ws)
			printSummary(cmd.OutOrStdout(), m)
			return failOnErrors(cmd, rt.Warnings(), rt.Errors())
		},
	}
}

func newTranslateForwardCommand(g *globalFlags) *cobra.Command {
	output := ""
	cmd := &cobra.Command{
		Use:   "forward IN.idf",
		Short: "Write a model file from the domain model read from IN.idf",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := readWorkspace(args[0])
			if err != nil {
				return err
			}
			logger := g.logger(cmd)

			rt := reverse.New(logger)
			m := rt.TranslateWorkspace(ws)
			if err := failOnErrors(cmd, rt.Warnings(), rt.Errors()); err != nil {
				return err
			}

			ft := forward.New(logger)
			out := ft.TranslateModel(m)
			if err := failOnErrors(cmd, ft.Warnings(), ft.Errors()); err != nil {
				return err
			}
			return writeWorkspace(cmd, output, out)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file. stdout if not given")
	return cmd
}

func readWorkspace(path string) (*idf.Workspace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return idf.Read(f)
}

func writeWorkspace(cmd *cobra.Command, path string, ws *idf.Workspace) error {
	if path == "" {
		return idf.Write(cmd.OutOrStdout(), ws)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := idf.Write(f, ws); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// failOnErrors reports soft failures of a pass. Errors fail the command.
func failOnErrors(cmd *cobra.Command, warnings, errs []translator.LogMessage) error {
	for _, m := range warnings {
		fmt.Fprintln(cmd.ErrOrStderr(), m)
	}
	for _, m := range errs {
		fmt.Fprintln(cmd.ErrOrStderr(), m)
	}
	if 0 < len(errs) {
		return fmt.Errorf("%w: %d errors", ErrTranslationFailed, len(errs))
	}
	return nil
}

// printSummary prints the number of objects per kind, in name order of kinds.
func printSummary(w io.Writer, m *model.Model) {
	counts := map[model.Kind]int{}
	for _, o := range m.Objects() {
		counts[o.Kind()]++
	}
	kinds := make([]model.Kind, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	for _, k := range kinds {
		fmt.Fprintf(w, "%s: %d\n", k, counts[k])
	}
	fmt.Fprintf(w, "total: %d\n", m.Len())
}

package dakota

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	xe "github.com/opst/knitsim/pkg/errors"
)

const (
	InFileName       = "dakota.in"
	OutFileName      = "dakota.out"
	RestartFileName  = "dakota.rst"
	DriverScriptName = "waitForDataPointResultsFile.sh"
)

// WriteResults writes response values as "<value> response_fn_<n>".
//
// With no values, it writes FAIL so that Dakota treats the evaluation as failed.
func WriteResults(w io.Writer, values []float64) error {
	bw := bufio.NewWriter(w)
	if len(values) == 0 {
		if _, err := bw.WriteString("FAIL\n"); err != nil {
			return xe.Wrap(err)
		}
		return xe.Wrap(bw.Flush())
	}
	for i, v := range values {
		if _, err := fmt.Fprintf(bw, "%s response_fn_%d\n", strconv.FormatFloat(v, 'g', -1, 64), i+1); err != nil {
			return xe.Wrap(err)
		}
	}
	return xe.Wrap(bw.Flush())
}

// WriteResultsFile writes the results file for the parameters file at paramsPath.
func WriteResultsFile(paramsPath string, values []float64) (string, error) {
	path := ResultsPathFor(paramsPath)
	// written to a temporary file first, because the driver script starts reading as soon as the file appears.
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return "", xe.Wrap(err)
	}
	if err := WriteResults(f, values); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return "", xe.Wrap(err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", xe.Wrap(err)
	}
	return path, nil
}

// InFile is the control file of a Dakota run.
type InFile struct {
	// Title goes to the comment at the head of the file.
	Title string

	// Method is the method block, from the algorithm.
	Method string

	// Variables is the variables and responses blocks, from the problem.
	Variables string

	// Concurrency is the max number of evaluations at once. 0 means unlimited.
	Concurrency int

	// FileSave keeps parameters and results files after evaluations.
	FileSave bool
}

func block(w *bufio.Writer, text string) {
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return
	}
	w.WriteString(text)
	w.WriteString("\n\n")
}

// WriteInFile writes the control file.
func WriteInFile(w io.Writer, in InFile) error {
	bw := bufio.NewWriter(w)
	if in.Title != "" {
		for _, l := range strings.Split(in.Title, "\n") {
			fmt.Fprintf(bw, "# %s\n", l)
		}
		bw.WriteString("\n")
	}

	block(bw, "strategy,\n        single\n        tabular_graphics_data")
	block(bw, in.Method)
	block(bw, in.Variables)

	bw.WriteString("interface,\n")
	bw.WriteString("        fork\n")
	bw.WriteString("          asynchronous\n")
	if 0 < in.Concurrency {
		fmt.Fprintf(bw, "          evaluation_concurrency = %d\n", in.Concurrency)
	}
	fmt.Fprintf(bw, "          analysis_driver = 'sh %s'\n", DriverScriptName)
	bw.WriteString("          parameters_file = 'params.in'\n")
	bw.WriteString("          results_file    = 'results.out'\n")
	bw.WriteString("            file_tag\n")
	if in.FileSave {
		bw.WriteString("            file_save\n")
	}
	return xe.Wrap(bw.Flush())
}

// WriteDriverScript writes the analysis driver Dakota calls for each evaluation.
//
// Evaluations are run by the analysis driver, not Dakota. The script just waits for the results file.
func WriteDriverScript(w io.Writer) error {
	_, err := io.WriteString(w, `#!/bin/sh
# $1 = params.in
# $2 = results.out
# waits until the results file is written.
echo "Looking for $2"
while [ ! -f "$2" ]; do sleep 1; done
`)
	return xe.Wrap(err)
}

// Prepare writes the control file and the driver script into dir.
func Prepare(dir string, in InFile) (inFile string, driverScript string, err error) {
	inFile = filepath.Join(dir, InFileName)
	driverScript = filepath.Join(dir, DriverScriptName)

	for _, f := range []struct {
		path  string
		write func(io.Writer) error
	}{
		{inFile, func(w io.Writer) error { return WriteInFile(w, in) }},
		{driverScript, WriteDriverScript},
	} {
		out, err := os.Create(f.path)
		if err != nil {
			return "", "", xe.Wrap(err)
		}
		if err := f.write(out); err != nil {
			out.Close()
			return "", "", err
		}
		if err := out.Close(); err != nil {
			return "", "", xe.Wrap(err)
		}
	}
	return inFile, driverScript, nil
}

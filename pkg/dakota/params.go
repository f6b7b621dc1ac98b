// Package dakota reads and writes files exchanged with the Dakota optimizer.
//
// Dakota runs as a child process. For each evaluation it writes a parameters file
// (params.in.N) and waits for the results file (results.out.N) next to it.
package dakota

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	xe "github.com/opst/knitsim/pkg/errors"
)

var ErrMalformedParams = errors.New("malformed parameters file")

// Variable is a variable value given by Dakota.
type Variable struct {
	Descriptor string
	Value      float64
}

// Params is the content of a parameters file in the standard format.
type Params struct {
	Variables []Variable

	// ASV is the active set vector, one per response function.
	ASV []int

	// Functions are the descriptors of response functions.
	Functions []string

	// DerivativeVariables are the ids in the derivative variables vector.
	DerivativeVariables []int

	AnalysisComponents []string

	EvalID string
}

// Values returns variable values in order.
func (p *Params) Values() []float64 {
	ret := make([]float64, len(p.Variables))
	for i, v := range p.Variables {
		ret[i] = v.Value
	}
	return ret
}

// Value finds the value of the variable by its descriptor.
func (p *Params) Value(descriptor string) (float64, bool) {
	for _, v := range p.Variables {
		if v.Descriptor == descriptor {
			return v.Value, true
		}
	}
	return 0, false
}

type paramsLine struct {
	no    int
	value string
	tag   string
}

type paramsReader struct {
	lines []paramsLine
	pos   int
}

func (r *paramsReader) next() (paramsLine, error) {
	if len(r.lines) <= r.pos {
		return paramsLine{}, xe.WrapWithNote("unexpected end of file", ErrMalformedParams)
	}
	l := r.lines[r.pos]
	r.pos++
	return l, nil
}

// header reads "<count> <tag>".
func (r *paramsReader) header(tag string) (int, error) {
	l, err := r.next()
	if err != nil {
		return 0, err
	}
	if l.tag != tag {
		return 0, fmt.Errorf("%w: line %d: expected '%s', but '%s'", ErrMalformedParams, l.no, tag, l.tag)
	}
	n, err := strconv.Atoi(l.value)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: line %d: bad count '%s'", ErrMalformedParams, l.no, l.value)
	}
	return n, nil
}

// section reads a header and n lines following it.
func (r *paramsReader) section(tag string) ([]paramsLine, error) {
	n, err := r.header(tag)
	if err != nil {
		return nil, err
	}
	ret := make([]paramsLine, 0, n)
	for range n {
		l, err := r.next()
		if err != nil {
			return nil, err
		}
		ret = append(ret, l)
	}
	return ret, nil
}

// tagged splits "ASV_1:f" into ("ASV_1", "f").
func tagged(l paramsLine, prefix string) (string, error) {
	label, name, ok := strings.Cut(l.tag, ":")
	if !ok || !strings.HasPrefix(label, prefix) {
		return "", fmt.Errorf("%w: line %d: expected '%s<n>:<name>', but '%s'", ErrMalformedParams, l.no, prefix, l.tag)
	}
	return name, nil
}

// ParseParams reads a parameters file in the standard format:
//
//	<n> variables
//	<value> <descriptor>    (n lines)
//	<m> functions
//	<asv> ASV_<i>:<fn>      (m lines)
//	<k> derivative_variables
//	<id> DVV_<i>:<var>      (k lines)
//	<l> analysis_components
//	<c> AC_<i>:<driver>     (l lines)
//	<id> eval_id
func ParseParams(in io.Reader) (*Params, error) {
	r := &paramsReader{}
	sc := bufio.NewScanner(in)
	no := 0
	for sc.Scan() {
		no++
		fields := strings.Fields(sc.Text())
		switch len(fields) {
		case 0:
			continue
		case 2:
			r.lines = append(r.lines, paramsLine{no: no, value: fields[0], tag: fields[1]})
		default:
			return nil, fmt.Errorf("%w: line %d: expected '<value> <tag>'", ErrMalformedParams, no)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, xe.Wrap(err)
	}

	ret := &Params{}

	vars, err := r.section("variables")
	if err != nil {
		return nil, err
	}
	for _, l := range vars {
		v, err := strconv.ParseFloat(l.value, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: bad value '%s'", ErrMalformedParams, l.no, l.value)
		}
		ret.Variables = append(ret.Variables, Variable{Descriptor: l.tag, Value: v})
	}

	fns, err := r.section("functions")
	if err != nil {
		return nil, err
	}
	for _, l := range fns {
		asv, err := strconv.Atoi(l.value)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: bad active set '%s'", ErrMalformedParams, l.no, l.value)
		}
		name, err := tagged(l, "ASV_")
		if err != nil {
			return nil, err
		}
		ret.ASV = append(ret.ASV, asv)
		ret.Functions = append(ret.Functions, name)
	}

	dvv, err := r.section("derivative_variables")
	if err != nil {
		return nil, err
	}
	for _, l := range dvv {
		id, err := strconv.Atoi(l.value)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: bad variable id '%s'", ErrMalformedParams, l.no, l.value)
		}
		if _, err := tagged(l, "DVV_"); err != nil {
			return nil, err
		}
		ret.DerivativeVariables = append(ret.DerivativeVariables, id)
	}

	acs, err := r.section("analysis_components")
	if err != nil {
		return nil, err
	}
	for _, l := range acs {
		ret.AnalysisComponents = append(ret.AnalysisComponents, l.value)
	}

	// eval_id is absent in files of old versions.
	if r.pos < len(r.lines) {
		l, _ := r.next()
		if l.tag != "eval_id" {
			return nil, fmt.Errorf("%w: line %d: expected 'eval_id', but '%s'", ErrMalformedParams, l.no, l.tag)
		}
		ret.EvalID = l.value
	}
	return ret, nil
}

// LoadParams reads the parameters file at path.
func LoadParams(path string) (*Params, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	defer f.Close()
	p, err := ParseParams(f)
	if err != nil {
		return nil, xe.WrapWithNote(path, err)
	}
	return p, nil
}

var paramsFilename = regexp.MustCompile(`params\.in(\.\d+)?$`)

// IsParamsFile tells the path is a parameters file written by Dakota.
func IsParamsFile(path string) bool {
	return paramsFilename.MatchString(path)
}

// ResultsPathFor is the path of the results file Dakota waits for, for the parameters file.
func ResultsPathFor(paramsPath string) string {
	loc := paramsFilename.FindStringSubmatchIndex(paramsPath)
	if loc == nil {
		return paramsPath + ".results.out"
	}
	suffix := ""
	if loc[2] != -1 {
		suffix = paramsPath[loc[2]:loc[3]]
	}
	return paramsPath[:loc[0]] + "results.out" + suffix
}

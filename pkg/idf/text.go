package idf

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	xe "github.com/opst/knitsim/pkg/errors"
)

var ErrSyntax = errors.New("syntax error")

// Read parses records in text form.
//
// Records are comma separated fields terminated by ';'. The first field is the type.
// Text after '!' up to the end of line is a comment.
func Read(r io.Reader) (*Workspace, error) {
	ws := NewWorkspace()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	tokens := []string{}
	current := strings.Builder{}
	lineno := 0
	startLine := 0

	flush := func() error {
		defer func() { tokens = tokens[:0] }()
		if len(tokens) == 0 {
			return nil
		}
		typename := strings.TrimSpace(tokens[0])
		t, ok := AsObjectType(typename)
		if !ok {
			return xe.WrapWithNote(fmt.Sprintf("line %d: %s", startLine, typename), ErrUnknownType)
		}
		rec, err := NewRecord(t)
		if err != nil {
			return err
		}
		values := tokens[1:]
		s := rec.Schema()
		if nfixed := len(s.Fields); s.IsExtensible() && nfixed < len(values) {
			w := len(s.Extensible)
			for (len(values)-nfixed)%w != 0 {
				values = append(values, "")
			}
		}
		if err := rec.SetFields(values...); err != nil {
			return xe.WrapWithNote(fmt.Sprintf("line %d", startLine), err)
		}
		if err := ws.Add(rec); err != nil {
			return xe.WrapWithNote(fmt.Sprintf("line %d", startLine), err)
		}
		return nil
	}

	for scanner.Scan() {
		lineno += 1
		line := scanner.Text()
		if i := strings.IndexRune(line, '!'); 0 <= i {
			line = line[:i]
		}
		for _, c := range line {
			switch c {
			case ',':
				if len(tokens) == 0 {
					startLine = lineno
				}
				tokens = append(tokens, current.String())
				current.Reset()
			case ';':
				if len(tokens) == 0 {
					startLine = lineno
				}
				tokens = append(tokens, current.String())
				current.Reset()
				if err := flush(); err != nil {
					return nil, err
				}
			default:
				current.WriteRune(c)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(tokens) != 0 || strings.TrimSpace(current.String()) != "" {
		return nil, xe.WrapWithNote(
			fmt.Sprintf("line %d: record is not terminated by ';'", startLine), ErrSyntax,
		)
	}
	return ws, nil
}

// ReadString is Read from a string.
func ReadString(text string) (*Workspace, error) {
	return Read(strings.NewReader(text))
}

// Write writes records in text form, with field names as comments.
func Write(w io.Writer, ws *Workspace) error {
	bw := bufio.NewWriter(w)
	for _, r := range ws.Objects() {
		if err := writeRecord(bw, r); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// String is Write into a string.
func String(ws *Workspace) string {
	sb := new(strings.Builder)
	Write(sb, ws)
	return sb.String()
}

func writeRecord(w *bufio.Writer, r *Record) error {
	fields := r.Fields()
	n := len(fields)
	if r.NumExtensibleGroups() == 0 {
		for 1 < n && fields[n-1] == "" {
			n -= 1
		}
	}

	if _, err := fmt.Fprintf(w, "%s,\n", r.Type()); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		term := ","
		if i == n-1 {
			term = ";"
		}
		name := ""
		if f, ok := r.Schema().FieldAt(i); ok {
			name = f.Name
			if i >= len(r.Schema().Fields) {
				name = fmt.Sprintf("%s %d", f.Name, (i-len(r.Schema().Fields))/len(r.Schema().Extensible)+1)
			}
		}
		if _, err := fmt.Fprintf(w, "  %-30s !- %s\n", fields[i]+term, name); err != nil {
			return err
		}
	}
	_, err := w.WriteString("\n")
	return err
}

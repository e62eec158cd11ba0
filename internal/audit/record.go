// Package audit records every state-mutating call to an append-only log.
//
// Recording is best effort: a sink failure is reported to the diagnostic
// logger and never changes the outcome returned to the caller.
package audit

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"
)

// TimeLayout is the timestamp format used in the text log.
const TimeLayout = "2006-01-02T15:04:05.000000"

// Record describes one invocation of an audited operation.
type Record struct {
	ID        string
	Timestamp time.Time
	Operation string
	Args      []string
	Success   bool
	Message   string
}

// Encode writes rec as a single delimited block:
//
//	[LOG <timestamp>]
//	Function: <operation>
//	Args: (<a>, <b>)
//	Retorno: Sucesso: <bool> | Mensagem: '<message>'
//	---
func Encode(w io.Writer, rec Record) error {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "[LOG %s]\n", rec.Timestamp.Format(TimeLayout))
	fmt.Fprintf(&buf, "Function: %s\n", oneLine(rec.Operation))
	args := make([]string, len(rec.Args))
	for i, arg := range rec.Args {
		args[i] = oneLine(arg)
	}
	fmt.Fprintf(&buf, "Args: (%s)\n", strings.Join(args, ", "))
	fmt.Fprintf(&buf, "Retorno: Sucesso: %t | Mensagem: '%s'\n", rec.Success, oneLine(rec.Message))
	buf.WriteString("---\n")
	_, err := w.Write(buf.Bytes())
	return err
}

func oneLine(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "\r", " "), "\n", " ")
}

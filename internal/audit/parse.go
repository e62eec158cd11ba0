package audit

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

const (
	prefixLog      = "[LOG "
	prefixFunction = "Function: "
	prefixArgs     = "Args: ("
	prefixReturn   = "Retorno: "
	prefixSuccess  = "Sucesso: "
	separator      = " | Mensagem: '"
	terminator     = "---"
	argSeparator   = ", "
)

// Parse reads every block written by Encode. A bare 'value' return line is
// accepted as a successful outcome carrying that value.
func Parse(r io.Reader) ([]Record, error) {
	var (
		records []Record
		current *Record
		lineNo  int
	)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, prefixLog) {
			if current != nil {
				return nil, fmt.Errorf("audit: line %d: record started before previous one ended", lineNo)
			}
			raw := strings.TrimSuffix(strings.TrimPrefix(line, prefixLog), "]")
			ts, err := time.ParseInLocation(TimeLayout, raw, time.Local)
			if err != nil {
				return nil, fmt.Errorf("audit: line %d: parse timestamp: %w", lineNo, err)
			}
			current = &Record{Timestamp: ts}
			continue
		}
		if current == nil {
			return nil, fmt.Errorf("audit: line %d: content outside of a record", lineNo)
		}
		switch {
		case strings.HasPrefix(line, prefixFunction):
			current.Operation = strings.TrimPrefix(line, prefixFunction)
		case strings.HasPrefix(line, prefixArgs):
			args, err := splitArgs(strings.TrimSuffix(strings.TrimPrefix(line, prefixArgs), ")"))
			if err != nil {
				return nil, fmt.Errorf("audit: line %d: %w", lineNo, err)
			}
			current.Args = args
		case strings.HasPrefix(line, prefixReturn):
			if err := parseOutcome(current, strings.TrimPrefix(line, prefixReturn)); err != nil {
				return nil, fmt.Errorf("audit: line %d: %w", lineNo, err)
			}
		case line == terminator:
			records = append(records, *current)
			current = nil
		default:
			return nil, fmt.Errorf("audit: line %d: unexpected content %q", lineNo, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if current != nil {
		return nil, fmt.Errorf("audit: unterminated record at end of input")
	}
	return records, nil
}

func parseOutcome(rec *Record, raw string) error {
	if !strings.HasPrefix(raw, prefixSuccess) {
		rec.Success = true
		rec.Message = strings.TrimSuffix(strings.TrimPrefix(raw, "'"), "'")
		return nil
	}
	flag, message, ok := strings.Cut(strings.TrimPrefix(raw, prefixSuccess), separator)
	if !ok {
		return fmt.Errorf("malformed return line %q", raw)
	}
	success, err := strconv.ParseBool(flag)
	if err != nil {
		return fmt.Errorf("parse success flag: %w", err)
	}
	rec.Success = success
	rec.Message = strings.TrimSuffix(message, "'")
	return nil
}

// splitArgs splits a rendered argument list on ", ", keeping quoted strings
// whole. Arguments are returned in their rendered form.
func splitArgs(raw string) ([]string, error) {
	var args []string
	for raw != "" {
		var arg string
		if raw[0] == '"' {
			quoted, err := strconv.QuotedPrefix(raw)
			if err != nil {
				return nil, fmt.Errorf("malformed quoted argument: %w", err)
			}
			arg = quoted
		} else if i := strings.Index(raw, argSeparator); i >= 0 {
			arg = raw[:i]
		} else {
			arg = raw
		}
		args = append(args, arg)
		raw = raw[len(arg):]
		if raw == "" {
			break
		}
		if !strings.HasPrefix(raw, argSeparator) {
			return nil, fmt.Errorf("unexpected text after argument %s", arg)
		}
		raw = raw[len(argSeparator):]
	}
	return args, nil
}

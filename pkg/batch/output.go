package batch

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lemonberrylabs/rpncalc/pkg/types"
)

// ErrorField is printed in place of the RPN and result of a failed line.
const ErrorField = "ERROR"

// Format is an output encoding for records.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name. The empty string means FormatText.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, json or yaml)", s)
	}
}

// ErrorInfo is the structured form of a line failure.
type ErrorInfo struct {
	Kind    string `json:"kind" yaml:"kind"`
	Message string `json:"message" yaml:"message"`
}

// Entry is the structured form of a Record used by the json and yaml
// encoders and by the API.
type Entry struct {
	Line       int        `json:"line,omitempty" yaml:"line,omitempty"`
	Expression string     `json:"expression" yaml:"expression"`
	RPN        string     `json:"rpn" yaml:"rpn"`
	Result     string     `json:"result" yaml:"result"`
	Exact      string     `json:"exact,omitempty" yaml:"exact,omitempty"`
	Error      *ErrorInfo `json:"error,omitempty" yaml:"error,omitempty"`
}

// Entry converts the record to its structured form. Failed records carry
// "ERROR" in the rpn and result fields, like the text output.
func (r Record) Entry() Entry {
	e := Entry{Line: r.Line, Expression: r.Expression}
	if r.Err != nil {
		e.RPN = ErrorField
		e.Result = ErrorField
		kind := string(types.KindOf(r.Err))
		if kind == "" {
			kind = "Unknown"
		}
		e.Error = &ErrorInfo{Kind: kind, Message: r.Err.Error()}
		return e
	}
	e.RPN = strings.Join(r.RPN, " ")
	e.Result = r.Value.String()
	e.Exact = r.Value.RatString()
	return e
}

// Writer renders records in one format.
type Writer struct {
	w      io.Writer
	format Format
	mode   Mode
}

// NewWriter creates a writer. The mode selects the text layout: infix mode
// prints RPN/Result pairs, RPN mode prints just the value.
func NewWriter(w io.Writer, format Format, mode Mode) *Writer {
	return &Writer{w: w, format: format, mode: mode}
}

// Write renders all records.
func (w *Writer) Write(records []Record) error {
	switch w.format {
	case FormatJSON:
		enc := json.NewEncoder(w.w)
		for _, r := range records {
			if err := enc.Encode(r.Entry()); err != nil {
				return fmt.Errorf("encoding json: %w", err)
			}
		}
		return nil
	case FormatYAML:
		if len(records) == 0 {
			return nil
		}
		entries := make([]Entry, len(records))
		for i, r := range records {
			entries[i] = r.Entry()
		}
		enc := yaml.NewEncoder(w.w)
		enc.SetIndent(2)
		if err := enc.Encode(entries); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	default:
		for _, r := range records {
			if err := w.writeText(r); err != nil {
				return err
			}
		}
		return nil
	}
}

func (w *Writer) writeText(r Record) error {
	var err error
	switch {
	case w.mode == ModeRPN && r.OK():
		_, err = fmt.Fprintln(w.w, r.Value.String())
	case w.mode == ModeRPN:
		_, err = fmt.Fprintf(w.w, "Error: %s\n", errorMessage(r.Err))
	case r.OK():
		_, err = fmt.Fprintf(w.w, "RPN: %s\nResult: %s\n", strings.Join(r.RPN, " "), r.Value.String())
	default:
		_, err = fmt.Fprintf(w.w, "RPN: %s\nResult: %s\n", ErrorField, ErrorField)
	}
	return err
}

// errorMessage strips the kind prefix from CalcErrors for the short
// "Error: ..." form.
func errorMessage(err error) string {
	var ce *types.CalcError
	if errors.As(err, &ce) {
		return ce.Message
	}
	return err.Error()
}

// WriteMissingInput prints the single diagnostic for a missing input file.
func (w *Writer) WriteMissingInput(name string) error {
	var err error
	if w.mode == ModeRPN {
		_, err = fmt.Fprintf(w.w, "Error: %s not found in this folder.\n", name)
	} else {
		_, err = fmt.Fprintf(w.w, "Error: %s not found\n", name)
	}
	return err
}

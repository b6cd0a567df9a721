// Package batch runs the expression pipeline over many input lines. Each
// non-blank line is processed in isolation: a bad line produces an error
// record and never stops the rest of the batch.
package batch

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/lemonberrylabs/rpncalc/pkg/expr"
	"github.com/lemonberrylabs/rpncalc/pkg/types"
)

// Mode selects how a line is read.
type Mode string

const (
	ModeInfix Mode = "infix" // infix expression, converted to RPN then evaluated
	ModeRPN   Mode = "rpn"   // space-separated postfix tokens, evaluated directly
)

// ParseMode validates a mode name. The empty string means ModeInfix.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(s)) {
	case "", ModeInfix:
		return ModeInfix, nil
	case ModeRPN:
		return ModeRPN, nil
	default:
		return "", fmt.Errorf("unknown mode %q (want infix or rpn)", s)
	}
}

// asciiSpace is the whitespace the tokenizer skips. Other Unicode spaces are
// invalid characters, wherever they appear on a line.
const asciiSpace = " \t\n\v\f\r"

// IsBlank reports whether line holds nothing but ASCII whitespace.
func IsBlank(line string) bool {
	return strings.Trim(line, asciiSpace) == ""
}

// Record is the outcome of processing one non-blank input line.
type Record struct {
	Line       int // 1-based line number in the input
	Expression string
	RPN        []string
	Value      *types.Number
	Err        error
}

// OK returns true if the line evaluated successfully.
func (r Record) OK() bool {
	return r.Err == nil
}

// Processor evaluates lines in a given mode.
type Processor struct {
	mode    Mode
	workers int
	verbose bool
}

// Option configures a Processor.
type Option func(*Processor)

// WithMode sets the input mode.
func WithMode(m Mode) Option {
	return func(p *Processor) { p.mode = m }
}

// WithWorkers sets the number of lines evaluated concurrently. Values below
// 1 are treated as 1.
func WithWorkers(n int) Option {
	return func(p *Processor) { p.workers = max(n, 1) }
}

// WithVerbose logs every failed line.
func WithVerbose(v bool) Option {
	return func(p *Processor) { p.verbose = v }
}

// NewProcessor creates a processor. The default is infix mode on one worker.
func NewProcessor(opts ...Option) *Processor {
	p := &Processor{mode: ModeInfix, workers: 1}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Mode returns the processor's input mode.
func (p *Processor) Mode() Mode {
	return p.mode
}

// ProcessLine evaluates a single line. Errors from any stage end up in
// Record.Err with no partial RPN or value. Error positions are byte offsets
// into line as given.
func (p *Processor) ProcessLine(lineNo int, line string) Record {
	rec := Record{Line: lineNo, Expression: strings.Trim(line, asciiSpace)}

	var (
		rpn []expr.Token
		v   types.Number
		err error
	)
	switch p.mode {
	case ModeRPN:
		rpn, err = expr.ParseRPN(line)
		if err == nil {
			v, err = expr.EvaluateRPN(rpn)
		}
	default:
		rpn, v, err = expr.Eval(line)
	}

	if err != nil {
		if p.verbose {
			log.Printf("Warning: line %d %q: %v", lineNo, rec.Expression, err)
		}
		rec.Err = err
		return rec
	}
	rec.RPN = expr.Strings(rpn)
	rec.Value = &v
	return rec
}

type inputLine struct {
	no   int
	text string
}

// Process reads all of r and evaluates every non-blank line. Records are
// returned in input order regardless of the worker count. The returned error
// is only set for read failures or cancellation; expression failures are
// reported per record.
func (p *Processor) Process(ctx context.Context, r io.Reader) ([]Record, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, err
	}
	return p.processLines(ctx, lines)
}

// ProcessStrings evaluates pre-split lines, numbering them from 1. Blank
// entries are skipped.
func (p *Processor) ProcessStrings(ctx context.Context, lines []string) ([]Record, error) {
	in := make([]inputLine, 0, len(lines))
	for i, l := range lines {
		if IsBlank(l) {
			continue
		}
		in = append(in, inputLine{no: i + 1, text: l})
	}
	return p.processLines(ctx, in)
}

func (p *Processor) processLines(ctx context.Context, lines []inputLine) ([]Record, error) {
	records := make([]Record, len(lines))

	if p.workers <= 1 {
		for i, l := range lines {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			records[i] = p.ProcessLine(l.no, l.text)
		}
		return records, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, l := range lines {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			records[i] = p.ProcessLine(l.no, l.text)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// ProcessFile evaluates the file at path. A missing file is reported as an
// InputNotFound error.
func (p *Processor) ProcessFile(ctx context.Context, path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, types.NewInputNotFoundError(path)
		}
		return nil, fmt.Errorf("opening input: %w", err)
	}
	defer f.Close()
	return p.Process(ctx, f)
}

// readLines splits r on any newline convention and drops blank lines,
// keeping the original 1-based line numbers.
func readLines(r io.Reader) ([]inputLine, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	sc.Split(scanUniversalLines)

	var lines []inputLine
	no := 0
	for sc.Scan() {
		no++
		text := sc.Text()
		if IsBlank(text) {
			continue
		}
		lines = append(lines, inputLine{no: no, text: text})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	return lines, nil
}

// scanUniversalLines is a bufio.SplitFunc that treats "\n", "\r\n" and a
// lone "\r" as line terminators.
func scanUniversalLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	for i, b := range data {
		switch b {
		case '\n':
			return i + 1, data[:i], nil
		case '\r':
			if i+1 < len(data) {
				if data[i+1] == '\n' {
					return i + 2, data[:i], nil
				}
				return i + 1, data[:i], nil
			}
			if atEOF {
				return i + 1, data[:i], nil
			}
			// Need one more byte to tell "\r" from "\r\n".
			return 0, nil, nil
		}
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

var errStdinTwice = errors.New("only one input can be read from stdin")

// inputReader resolves TEXT, @file and - arguments. Stdin is read at most
// once.
type inputReader struct {
	stdin     io.Reader
	stdinUsed bool
}

func (r *inputReader) read(arg string) (string, error) {
	switch {
	case arg == "-":
		if r.stdinUsed {
			return "", errStdinTwice
		}
		r.stdinUsed = true
		data, err := io.ReadAll(r.stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	case strings.HasPrefix(arg, "@"):
		data, err := os.ReadFile(arg[1:])
		if err != nil {
			return "", fmt.Errorf("failed to read input file: %w", err)
		}
		return string(data), nil
	default:
		return arg, nil
	}
}

// readToken reads the token argument with surrounding whitespace trimmed. No
// argument means stdin.
func (r *inputReader) readToken(args []string) (string, error) {
	arg := "-"
	if len(args) > 0 {
		arg = args[0]
	}
	text, err := r.read(arg)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

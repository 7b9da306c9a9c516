package simulator

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"
)

// Session is everything a run needs from the user
type Session struct {
	NumFrames int
	NumPages  int
	Refs      []int
}

// ParseReferences parses integers separated by whitespace or commas
func ParseReferences(s string) ([]int, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})

	refs := make([]int, 0, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("reference %d: %q is not an integer", i+1, f)
		}
		refs = append(refs, n)
	}
	return refs, nil
}

// ReadReferences reads whitespace-separated integers until EOF
func ReadReferences(r io.Reader) ([]int, error) {
	sc := newTokenScanner(r)

	refs := make([]int, 0)
	for {
		n, err := sc.nextInt()
		if errors.Is(err, io.EOF) {
			return refs, nil
		}
		if err != nil {
			return nil, fmt.Errorf("reference %d: %w", len(refs)+1, err)
		}
		refs = append(refs, n)
	}
}

// ReadSession reads frame count, page count, sequence length and the
// references, in that order. Prompts go to out only when interactive.
// Page ranges are not checked here; that is the run's invalid page policy.
func ReadSession(in io.Reader, out io.Writer, interactive bool) (*Session, error) {
	sc := newTokenScanner(in)
	prompt := func(format string, args ...any) {
		if interactive {
			fmt.Fprintf(out, format, args...)
		}
	}

	prompt("=== Virtual Memory Simulator (FIFO) ===\n\n")

	prompt("Number of frames (physical memory): ")
	numFrames, err := sc.nextInt()
	if err != nil {
		return nil, fmt.Errorf("failed to read number of frames: %w", err)
	}

	prompt("Number of pages in the virtual address space: ")
	numPages, err := sc.nextInt()
	if err != nil {
		return nil, fmt.Errorf("failed to read number of pages: %w", err)
	}

	if numFrames <= 0 || numPages <= 0 {
		return nil, fmt.Errorf("frames and pages must be positive (got %d frames, %d pages)", numFrames, numPages)
	}

	prompt("Length of the reference sequence: ")
	length, err := sc.nextInt()
	if err != nil {
		return nil, fmt.Errorf("failed to read sequence length: %w", err)
	}
	if length <= 0 {
		return nil, fmt.Errorf("sequence length must be positive, got %d", length)
	}

	prompt("Page references (values between 0 and %d) separated by spaces or newlines:\n", numPages-1)
	refs := make([]int, length)
	for i := range refs {
		refs[i], err = sc.nextInt()
		if err != nil {
			return nil, fmt.Errorf("failed to read reference %d of %d: %w", i+1, length, err)
		}
	}

	return &Session{
		NumFrames: numFrames,
		NumPages:  numPages,
		Refs:      refs,
	}, nil
}

type tokenScanner struct {
	sc *bufio.Scanner
}

func newTokenScanner(r io.Reader) *tokenScanner {
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)
	return &tokenScanner{sc: sc}
}

// nextInt returns io.EOF when input ends cleanly before a token
func (t *tokenScanner) nextInt() (int, error) {
	if !t.sc.Scan() {
		if err := t.sc.Err(); err != nil {
			return 0, err
		}
		return 0, io.EOF
	}
	tok := t.sc.Text()
	n, err := strconv.Atoi(tok)
	if err != nil {
		return 0, fmt.Errorf("%q is not an integer", tok)
	}
	return n, nil
}

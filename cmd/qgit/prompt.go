package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/greyhatharold/QGit/internal/domain"
	"github.com/greyhatharold/QGit/internal/report"
)

// askYesNo prints question and reads one answer from in. Anything but
// y or yes, including end of input, is a no.
func askYesNo(in io.Reader, out io.Writer, question string) (bool, error) {
	fmt.Fprintf(out, "%s [y/N] ", question)
	line, err := readLine(in)
	if err != nil {
		return false, errors.Wrap(err, "reading answer")
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// readLine reads up to and including the next newline one byte at a time, so
// input after the answer stays in in for the next reader. End of input ends
// the line.
func readLine(in io.Reader) (string, error) {
	var (
		line []byte
		buf  [1]byte
	)
	for {
		n, err := in.Read(buf[:])
		if n == 1 {
			if buf[0] == '\n' {
				return string(line), nil
			}
			line = append(line, buf[0])
		}
		if errors.Is(err, io.EOF) {
			return string(line), nil
		}
		if err != nil {
			return string(line), err
		}
	}
}

// cleanupPrompt returns a confirmer that shows what would be done before
// asking.
func cleanupPrompt(in io.Reader, out io.Writer) func(context.Context, *domain.ScanResult) (bool, error) {
	return func(_ context.Context, r *domain.ScanResult) (bool, error) {
		lines := report.Recommendations(r)
		fmt.Fprintf(out, "\nRecommended ignore patterns:\n")
		for _, l := range lines {
			fmt.Fprintf(out, "  %s\n", l)
		}
		if n := len(r.TrackedFindings()); n > 0 {
			fmt.Fprintf(out, "%d tracked files match and can be removed from the index.\n", n)
		}
		return askYesNo(in, out, "Apply these changes?")
	}
}

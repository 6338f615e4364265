package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// readPassword is swapped out in tests.
var readPassword = term.ReadPassword

// GetSimpleText writes prompt and a "> " marker, then returns the next line
// without surrounding blanks. A last line with no newline still counts; only
// an empty read at end of input yields io.EOF.
func GetSimpleText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	fmt.Fprintf(w, "%s\n> ", prompt)

	line, err := reader.ReadString('\n')
	switch {
	case err == nil:
	case errors.Is(err, io.EOF) && line != "":
	default:
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// GetPassword reads a password from the terminal with echo off. Wipe the
// result after use.
func GetPassword(w io.Writer) ([]byte, error) {
	fmt.Fprint(w, "Enter password: ")
	defer fmt.Fprintln(w)

	return readPassword(int(os.Stdin.Fd()))
}

// parseProfileArgs turns "name=Asha email=a@b.c" into a patch. Values may
// not contain spaces; "key=" clears the field.
func parseProfileArgs(args []string) (map[string]string, error) {
	out := make(map[string]string, len(args))
	for _, arg := range args {
		k, v, ok := strings.Cut(arg, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("expected key=value, got %q", arg)
		}
		switch k {
		case "name", "email", "address", "pincode":
		default:
			return nil, fmt.Errorf("unknown field %q", k)
		}
		out[k] = v
	}
	return out, nil
}

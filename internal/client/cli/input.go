package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dmitrijs2005/gophtodo/internal/common"
	"golang.org/x/term"
)

// readPassword reads from the terminal without echo. Tests replace it.
var readPassword = term.ReadPassword

var (
	errInputClosed   = errors.New("input closed")
	errEmptyPassword = errors.New("password cannot be empty")
)

// ask prints "label: " and returns the next line with surrounding white space
// removed. A final line without a newline still counts as an answer.
func (a *App) ask(label string) (string, error) {
	fmt.Fprintf(a.out, "%s: ", label)

	line, err := a.reader.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return "", err
		}
		if line == "" {
			return "", errInputClosed
		}
	}
	return strings.TrimSpace(line), nil
}

// askRequired repeats the question until the answer is not blank, so the
// server never sees a value its presence check would reject.
func (a *App) askRequired(label string) (string, error) {
	for {
		v, err := a.ask(label)
		if err != nil {
			return "", err
		}
		if !common.Blank(v) {
			return v, nil
		}
		fmt.Fprintf(a.out, "%s cannot be empty\n", label)
	}
}

// askPassword reads a password without echo. The caller wipes the result.
func (a *App) askPassword() ([]byte, error) {
	fmt.Fprint(a.out, "Password: ")
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(a.out)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(pw)) == 0 {
		common.WipeByteArray(pw)
		return nil, errEmptyPassword
	}
	return pw, nil
}

// askLines collects lines until an empty one or the end of input and
// returns them joined with '\n'.
func (a *App) askLines(label string) (string, error) {
	fmt.Fprintf(a.out, "%s (empty line to finish):\n", label)

	var lines []string
	for {
		line, err := a.reader.ReadString('\n')
		line = strings.TrimRight(line, "\r\n")
		if line != "" {
			lines = append(lines, line)
		}
		if line == "" || err != nil {
			break
		}
	}

	return strings.TrimSpace(strings.Join(lines, "\n")), nil
}

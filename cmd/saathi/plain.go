package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/chzyer/readline"
	"github.com/fatih/color"

	"github.com/hammamikhairi/saathi/internal/speech"
)

var (
	hintColor   = color.New(color.FgHiBlack)
	urgentColor = color.New(color.FgRed, color.Bold)
	voiceColor  = color.New(color.FgMagenta)
)

// plainConsole writes secondary lines for the readline front-end.
type plainConsole struct {
	w io.Writer
}

func (c plainConsole) PrintHint(text string) {
	fmt.Fprintln(c.w, hintColor.Sprint("  "+text))
}

func (c plainConsole) PrintUrgent(text string) {
	fmt.Fprintln(c.w, urgentColor.Sprint("  "+text))
}

func (c plainConsole) PrintVoice(text string) {
	fmt.Fprintln(c.w, voiceColor.Sprint("[voice] ")+text)
}

// historyFile returns the readline history path, or "" when the home
// directory is unknown.
func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".saathi-history")
}

func newReadline() (*readline.Instance, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            "saathi> ",
		HistoryFile:       historyFile(),
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
		Stdin:             readline.NewCancelableStdin(os.Stdin),
		Stdout:            os.Stdout,
		Stderr:            os.Stderr,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize readline: %w", err)
	}
	return rl, nil
}

// lineReader is the part of *readline.Instance the REPL needs.
type lineReader interface {
	Readline() (string, error)
}

// readLines feeds lines from rl into the returned channel. Ctrl-C or EOF
// prints the interrupt notice and sends a quit line so the farewell is
// still shown. Once ctx is done, errors from closing rl end the reader
// quietly. The channel is closed when reading stops.
func readLines(ctx context.Context, rl lineReader, out console) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		for {
			line, err := rl.Readline()
			if err != nil && ctx.Err() != nil {
				return
			}
			if err != nil {
				if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
					out.PrintUrgent(speech.LineInterrupted())
					line = quitLine
				} else {
					return
				}
			}
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
			if line == quitLine {
				return
			}
		}
	}()
	return lines
}

// quitLine is what an interrupted prompt is turned into.
const quitLine = "exit"

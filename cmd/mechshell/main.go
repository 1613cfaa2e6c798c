// Command mechshell is the in-process CLI entry point: it puts the local
// terminal into raw mode, feeds decoded keys to the line editor, and
// dispatches finished lines to a session built over the demo command
// domain.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/trailhuang/mechshell/internal/commandtree"
	"github.com/trailhuang/mechshell/internal/editor"
	"github.com/trailhuang/mechshell/internal/historystore"
	"github.com/trailhuang/mechshell/internal/registry"
	"github.com/trailhuang/mechshell/internal/session"
)

func main() {
	var configPath string
	var historyPath string
	var noHistory bool
	var scriptPath string

	root := &cobra.Command{
		Use:   "mechshell",
		Short: "interactive mech-bay command shell",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath, historyPath, scriptPath, noHistory)
		},
	}
	root.Flags().StringVar(&configPath, "config", "", "path to a TOML config file overriding defaults")
	root.Flags().StringVar(&historyPath, "history-file", "", "path to persist command history across runs")
	root.Flags().BoolVar(&noHistory, "no-history", false, "disable the optional history global command")
	root.Flags().StringVar(&scriptPath, "script", "", "path to a newline-delimited command file to run before the interactive prompt")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath, historyPath, scriptPath string, noHistory bool) error {
	logger, err := zap.NewProduction()
	if err != nil {
		logger = zap.NewNop()
	}
	defer logger.Sync()

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	tree := commandtree.New(logger)
	reg := registry.New()
	classes := registry.NewClassTable()
	registerDemoDomain(tree, reg, classes, logger)

	var store historystore.Store
	if historyPath != "" {
		store = historystore.NewFileStore(historyPath)
	} else {
		store = historystore.NewMemory(nil)
	}

	cli := &session.CLI{
		Tree:        tree,
		HistoryFile: store,
		Logger:      logger,
		OnException: func(out io.Writer, err error) {
			fmt.Fprintf(out, "error: %v\n", err)
		},
	}

	out := os.Stdout
	sess := session.New(cli, out, cfg.MaxHistory, !noHistory)
	ed := editor.New(out)
	sess.SetEditor(ed)

	fmt.Fprint(out, cfg.WelcomeMsg)

	if scriptPath != "" {
		program, err := readScript(scriptPath)
		if err != nil {
			return err
		}
		sess.RunProgram(scriptPath, program)
		if sess.ExitFlag() {
			return nil
		}
	}

	if term.IsTerminal(int(os.Stdin.Fd())) {
		return runRaw(sess, ed, out)
	}
	return runLineMode(sess, out)
}

// runRaw puts the terminal in raw mode and feeds the line editor one
// decoded key at a time — the intended interactive mode. Keypress decoding
// itself is the external raw-tty collaborator named out of scope for the
// core; here it is a minimal inline decoder good enough to drive it.
func runRaw(sess *session.Session, ed *editor.Editor, out *os.File) error {
	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return runLineMode(sess, out)
	}
	defer term.Restore(fd, oldState)

	fmt.Fprint(out, sess.Prompt())

	buf := make([]byte, 1)
	for !sess.ExitFlag() {
		if _, err := os.Stdin.Read(buf); err != nil {
			break
		}
		ev, ok := decodeKey(buf[0])
		if !ok {
			continue
		}
		outcome := ed.HandleKey(ev)
		switch outcome.Result {
		case editor.ResultCommand:
			sess.Feed(outcome.Line, session.FeedOptions{})
			if !sess.ExitFlag() {
				fmt.Fprint(out, sess.Prompt())
			}
		case editor.ResultEOF:
			return nil
		}
	}
	return nil
}

func decodeKey(b byte) (editor.KeyEvent, bool) {
	switch b {
	case 127, 8:
		return editor.KeyEvent{Key: editor.KeyBackspace}, true
	case '\r', '\n':
		return editor.KeyEvent{Key: editor.KeyReturn}, true
	case '\t':
		return editor.KeyEvent{Key: editor.KeyTab}, true
	case 4:
		return editor.KeyEvent{Key: editor.KeyEOF}, true
	}
	if b >= 0x20 && b < 0x7f {
		return editor.KeyEvent{Key: editor.KeyAscii, Rune: rune(b)}, true
	}
	return editor.KeyEvent{}, false
}

// readScript reads a newline-delimited command file, skipping blank lines
// and lines starting with "#".
func readScript(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || line[0] == '#' {
			continue
		}
		lines = append(lines, line)
	}
	return lines, scanner.Err()
}

// runLineMode is the non-interactive fallback used when stdin is not a
// tty (e.g. piped input, CI): it reads whole lines instead of raw keys.
func runLineMode(sess *session.Session, out *os.File) error {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Fprint(out, sess.Prompt())
	for scanner.Scan() && !sess.ExitFlag() {
		sess.Feed(scanner.Text(), session.FeedOptions{})
		if !sess.ExitFlag() {
			fmt.Fprint(out, sess.Prompt())
		}
	}
	return scanner.Err()
}

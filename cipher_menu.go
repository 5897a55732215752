package main

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/mattn/go-isatty"
	"github.com/olekukonko/tablewriter"
	"go.uber.org/zap"
)

const (
	modePrompt       = "What do you want to do: (E)ncrypt, (D)ecrypt or (Q)uit? "
	messagePrompt    = "Enter the message: "
	operationsPrompt = "Enter the encrypting transformation operations: "
)

// LineReader reads one line of input after showing a prompt.
// *readline.Instance satisfies it.
type LineReader interface {
	SetPrompt(prompt string)
	Readline() (string, error)
}

// MenuFormatter handles output formatting
type MenuFormatter struct {
	out      io.Writer
	useColor bool
}

// NewMenuFormatter creates a new formatter writing to out
func NewMenuFormatter(out io.Writer, useColor bool) *MenuFormatter {
	return &MenuFormatter{out: out, useColor: useColor}
}

// PrintResult prints a pipeline result
func (f *MenuFormatter) PrintResult(message string) {
	if f.useColor {
		color.New(color.FgGreen, color.Bold).Fprintln(f.out, message)
	} else {
		fmt.Fprintln(f.out, message)
	}
}

// PrintError prints an error message
func (f *MenuFormatter) PrintError(message string) {
	if f.useColor {
		color.New(color.FgRed).Fprintf(f.out, "✗ Error: %s\n", message)
	} else {
		fmt.Fprintf(f.out, "✗ Error: %s\n", message)
	}
}

// PrintInfo prints an info message
func (f *MenuFormatter) PrintInfo(message string) {
	if f.useColor {
		color.New(color.FgCyan).Fprintln(f.out, message)
	} else {
		fmt.Fprintln(f.out, message)
	}
}

// PrintTrace prints every step of a run as a table
func (f *MenuFormatter) PrintTrace(steps []Step) {
	if len(steps) == 0 {
		return
	}
	table := tablewriter.NewWriter(f.out)
	table.Header("Step", "Instruction", "Before", "After")
	for _, step := range steps {
		table.Append([]string{strconv.Itoa(step.Number), step.Instruction, step.Before, step.After})
	}
	table.Render()
}

// PrintInstructions prints parsed instruction records as a table
func (f *MenuFormatter) PrintInstructions(records []InstructionRecord) {
	table := tablewriter.NewWriter(f.out)
	table.Header("#", "Code", "Params")
	for i, rec := range records {
		table.Append([]string{strconv.Itoa(i + 1), rec.Code, joinInts(rec.Params)})
	}
	table.Render()
}

// PrintOperations prints the operation catalog as a table
func (f *MenuFormatter) PrintOperations(ops []OperationInfo) {
	table := tablewriter.NewWriter(f.out)
	table.Header("Code", "Name", "Syntax", "Description", "Inverse")
	for _, op := range ops {
		table.Append([]string{op.Code, op.Name, op.Syntax, op.Description, op.Inverse})
	}
	table.Render()
}

// useColorFor decides whether to colour output for the configured setting
func useColorFor(setting string, fd uintptr) bool {
	switch setting {
	case "always":
		return true
	case "never":
		return false
	}
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// menuChoice is what the user picked at the mode prompt
type menuChoice int

const (
	choiceInvalid menuChoice = iota
	choiceEncrypt
	choiceDecrypt
	choiceQuit
	choiceHelp
)

var menuWords = map[string]menuChoice{
	"E": choiceEncrypt, "ENCRYPT": choiceEncrypt,
	"D": choiceDecrypt, "DECRYPT": choiceDecrypt,
	"Q": choiceQuit, "QUIT": choiceQuit, "EXIT": choiceQuit,
	"H": choiceHelp, "HELP": choiceHelp, "?": choiceHelp,
}

// parseChoice maps mode prompt input to a choice
func parseChoice(input string) menuChoice {
	if choice, ok := menuWords[strings.ToUpper(strings.TrimSpace(input))]; ok {
		return choice
	}
	return choiceInvalid
}

// suggestChoice returns the closest menu word to a mistyped input, or ""
func suggestChoice(input string) string {
	input = strings.ToLower(strings.TrimSpace(input))
	if len(input) < 2 {
		return ""
	}
	targets := []string{"encrypt", "decrypt", "quit", "help"}

	ranks := fuzzy.RankFindFold(input, targets)
	if len(ranks) > 0 {
		sort.Sort(ranks)
		return ranks[0].Target
	}

	best, bestDistance := "", 3
	for _, target := range targets {
		if d := fuzzy.LevenshteinDistance(input, target); d < bestDistance {
			best, bestDistance = target, d
		}
	}
	return best
}

// MenuSession runs the interactive encrypt/decrypt menu
type MenuSession struct {
	commands    CipherCommands
	reader      LineReader
	formatter   *MenuFormatter
	logger      *zap.Logger
	showTrace   bool
	lettersOnly bool
}

// NewMenuSession creates a menu session over commands
func NewMenuSession(commands CipherCommands, reader LineReader, formatter *MenuFormatter, logger *zap.Logger) *MenuSession {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MenuSession{
		commands:  commands,
		reader:    reader,
		formatter: formatter,
		logger:    logger,
	}
}

// errMenuExit ends the menu loop when input runs out
var errMenuExit = errors.New("exit")

// readLine shows prompt and reads a line. Ctrl-C and EOF both end the session.
func (ms *MenuSession) readLine(prompt string) (string, error) {
	ms.reader.SetPrompt(prompt)
	line, err := ms.reader.Readline()
	if err != nil {
		if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
			return "", errMenuExit
		}
		return "", err
	}
	return line, nil
}

// readChoice keeps prompting until a valid mode is entered
func (ms *MenuSession) readChoice() (menuChoice, error) {
	for {
		line, err := ms.readLine(modePrompt)
		if err != nil {
			return choiceInvalid, err
		}

		choice := parseChoice(line)
		if choice != choiceInvalid {
			return choice, nil
		}

		ms.formatter.PrintInfo("Please enter a valid mode.")
		if suggestion := suggestChoice(line); suggestion != "" {
			ms.formatter.PrintInfo(fmt.Sprintf("Did you mean %q?", suggestion))
		}
	}
}

// Run starts the interactive menu loop
func (ms *MenuSession) Run() error {
	ms.formatter.PrintInfo("Welcome to Ciphers!")

	for {
		choice, err := ms.readChoice()
		if errors.Is(err, errMenuExit) {
			break
		}
		if err != nil {
			return err
		}

		switch choice {
		case choiceQuit:
			ms.formatter.PrintInfo("Goodbye!")
			return nil
		case choiceHelp:
			ms.formatter.PrintOperations(ms.commands.ListOperations())
			continue
		}

		if err := ms.runOnce(choice); err != nil {
			if errors.Is(err, errMenuExit) {
				break
			}
			return err
		}
	}

	ms.formatter.PrintInfo("Goodbye!")
	return nil
}

// runOnce collects a message and operations and runs one pipeline.
// Engine errors are printed and swallowed so the menu returns to the mode prompt.
func (ms *MenuSession) runOnce(choice menuChoice) error {
	message, err := ms.readLine(messagePrompt)
	if err != nil {
		return err
	}
	message = NormalizeMessage(message, ms.lettersOnly)

	operations, err := ms.readLine(operationsPrompt)
	if err != nil {
		return err
	}
	operations = NormalizeOperations(operations)

	ms.formatter.PrintInfo("Generating output ...")
	var output string
	if choice == choiceDecrypt {
		output, err = ms.commands.Decrypt(message, operations)
	} else {
		output, err = ms.commands.Encrypt(message, operations)
	}
	if err != nil {
		ms.logger.Debug("menu run failed", zap.Error(err))
		ms.formatter.PrintError(err.Error())
		return nil
	}

	ms.formatter.PrintResult(output)
	if ms.showTrace {
		ms.formatter.PrintTrace(ms.commands.GetTrace())
	}
	return nil
}

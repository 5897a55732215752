package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app carries state shared by all commands once the root pre-run has loaded it
type app struct {
	configPath string
	socketPath string
	verbose    bool
	noColor    bool

	cfg    *Config
	logger *zap.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "ciphers",
		Short: "Encode and decode messages with reversible transformation pipelines",
		Long: `ciphers encodes a message by applying an ordered list of operations and
decodes it by applying the inverse operations in reverse order.

OPERATIONS (separated by ';', indices are 0-based):
  Si[,n]   shift the letter at index i forward n letters (default 1)
  R[n]     rotate the message n positions to the right (default 1)
  Di[,n]   follow the letter at index i with n copies of itself (default 1)
  Ti,j     swap the letters at indices i and j
  Aa,b     affine map every letter x to (a*x + b) mod 26

Run without arguments to start the interactive menu.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runMenu(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", DefaultConfigPath(), "Path to the YAML config file")
	flags.StringVar(&a.socketPath, "socket", "", "Unix socket path (overrides socket.path from the config)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")
	flags.BoolVar(&a.noColor, "no-color", false, "Disable coloured output")

	rootCmd.AddCommand(
		a.newMenuCmd(),
		a.newRunCmd(ModeEncode),
		a.newRunCmd(ModeDecode),
		a.newParseCmd(),
		a.newOpsCmd(),
		a.newServeCmd(),
	)
	return rootCmd
}

// init loads config and builds the logger
func (a *app) init(cmd *cobra.Command) error {
	cfg, err := LoadConfig(a.configPath)
	if err != nil {
		return err
	}
	if a.socketPath != "" {
		cfg.Socket.Path = a.socketPath
	}
	if a.noColor {
		cfg.Menu.Color = "never"
	}
	a.cfg = cfg

	logger, err := NewLogger(cfg.Logging, a.verbose)
	if err != nil {
		return err
	}
	a.logger = logger
	return nil
}

// ============================================================================
// menu
// ============================================================================

func (a *app) newMenuCmd() *cobra.Command {
	var remote, trace bool
	cmd := &cobra.Command{
		Use:   "menu",
		Short: "Start the interactive (E)ncrypt/(D)ecrypt/(Q)uit menu",
		RunE: func(cmd *cobra.Command, args []string) error {
			if remote {
				a.socketPath = a.cfg.Socket.Path
			}
			if trace {
				a.cfg.Menu.ShowTrace = true
			}
			return a.runMenu(cmd)
		},
	}
	cmd.Flags().BoolVar(&remote, "remote", false, "Drive the core of a running 'ciphers serve' instead of a local one")
	cmd.Flags().BoolVar(&trace, "trace", false, "Print a table of every step after each run")
	return cmd
}

// runMenu starts the menu against a local core, or a socket server when --socket was given
func (a *app) runMenu(cmd *cobra.Command) error {
	var commands CipherCommands
	if a.socketPath != "" {
		client, err := NewSocketClient(a.cfg.Socket.Path)
		if err != nil {
			return err
		}
		defer client.Close()
		commands = NewSocketClientCommands(client, a.logger)
	} else {
		commands = NewCipherCore(a.logger)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          modePrompt,
		HistoryFile:     a.cfg.Menu.HistoryFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	out := cmd.OutOrStdout()
	formatter := NewMenuFormatter(out, useColorFor(a.cfg.Menu.Color, os.Stdout.Fd()))
	session := NewMenuSession(commands, rl, formatter, a.logger)
	session.showTrace = a.cfg.Menu.ShowTrace
	session.lettersOnly = a.cfg.Menu.LettersOnly
	return session.Run()
}

// ============================================================================
// encrypt / decrypt
// ============================================================================

// runOptions are the flags shared by encrypt and decrypt
type runOptions struct {
	operations  string
	text        string
	file        string
	output      string
	html        bool
	selector    string
	lettersOnly bool
	trace       bool
}

func (a *app) newRunCmd(mode Mode) *cobra.Command {
	opts := &runOptions{}
	use := "encrypt"
	short := "Encrypt a message by applying the operations in order"
	if mode == ModeDecode {
		use = "decrypt"
		short = "Decrypt a message by applying the inverse operations in reverse order"
	}

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Long: short + `.

INPUT METHODS:
  ciphers ` + use + ` --ops "R1;T0,1" --text HELLO       # Direct text
  ciphers ` + use + ` --ops "R1;T0,1" --file input.txt   # From file
  echo HELLO | ciphers ` + use + ` --ops "R1;T0,1"       # From stdin
  ciphers ` + use + ` --ops S0 --file page.html --html --selector "#secret"

Messages are uppercased. Use --letters-only to drop everything that is not A-Z.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runPipeline(cmd, mode, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.operations, "ops", "", "Operations, e.g. \"S0,1;R2;T0,3\"")
	f.StringVarP(&opts.text, "text", "t", "", "Message text")
	f.StringVarP(&opts.file, "file", "f", "", "Read the message from a file")
	f.StringVarP(&opts.output, "output", "o", "", "Output file (default: stdout)")
	f.BoolVar(&opts.html, "html", false, "Treat the input as HTML and use its text content")
	f.StringVar(&opts.selector, "selector", "", "CSS selector for --html input (default: body)")
	f.BoolVar(&opts.lettersOnly, "letters-only", false, "Drop every character that is not a letter")
	f.BoolVar(&opts.trace, "trace", false, "Print a table of every step to stderr")
	_ = cmd.MarkFlagRequired("ops")
	return cmd
}

func (a *app) runPipeline(cmd *cobra.Command, mode Mode, opts *runOptions) error {
	message, err := readMessage(cmd.InOrStdin(), opts)
	if err != nil {
		return err
	}
	message = NormalizeMessage(message, opts.lettersOnly || a.cfg.Menu.LettersOnly)
	operations := NormalizeOperations(opts.operations)

	core := NewCipherCore(a.logger)
	var output string
	if mode == ModeDecode {
		output, err = core.Decrypt(message, operations)
	} else {
		output, err = core.Encrypt(message, operations)
	}
	if err != nil {
		return fmt.Errorf("%s failed: %w", cmd.Name(), err)
	}

	if opts.trace {
		NewMenuFormatter(cmd.ErrOrStderr(), false).PrintTrace(core.GetTrace())
	}

	if opts.output != "" {
		if err := os.WriteFile(opts.output, []byte(output+"\n"), 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), output)
	return err
}

// readMessage picks the message from --text, --file or stdin, extracting HTML text when asked
func readMessage(stdin io.Reader, opts *runOptions) (string, error) {
	var r io.Reader
	switch {
	case opts.text != "" && opts.file != "":
		return "", fmt.Errorf("use either --text or --file, not both")
	case opts.text != "":
		r = strings.NewReader(opts.text)
	case opts.file != "":
		f, err := os.Open(opts.file)
		if err != nil {
			return "", fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		r = f
	default:
		r = stdin
	}

	if opts.html {
		return ExtractHTMLText(r, opts.selector)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return string(data), nil
}

// ============================================================================
// parse / ops
// ============================================================================

func (a *app) newParseCmd() *cobra.Command {
	var operations string
	var decode bool
	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Show how an operations string is normalized",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := ModeEncode
			if decode {
				mode = ModeDecode
			}
			records, err := NewCipherCore(a.logger).Parse(NormalizeOperations(operations), mode)
			if err != nil {
				return err
			}
			formatter := NewMenuFormatter(cmd.OutOrStdout(), false)
			formatter.PrintInstructions(records)
			formatter.PrintInfo(canonicalFromRecords(records))
			return nil
		},
	}
	cmd.Flags().StringVar(&operations, "ops", "", "Operations to parse")
	cmd.Flags().BoolVar(&decode, "decode", false, "Parse in decode mode (reversed, Shift/Rotate negated)")
	_ = cmd.MarkFlagRequired("ops")
	return cmd
}

func (a *app) newOpsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ops",
		Short: "List the supported operations",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			NewMenuFormatter(cmd.OutOrStdout(), false).PrintOperations(GetOperations())
		},
	}
}

// ============================================================================
// serve
// ============================================================================

func (a *app) newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve a cipher core over a Unix domain socket",
		Long: `Serve a cipher core over a Unix domain socket.

Clients send 4-byte big-endian length-prefixed JSON commands such as
  {"action": "encrypt", "params": {"message": "HELLO", "operations": "R1"}}
and receive {"success": true, "result": {...}} or {"success": false, "error": "...", "kind": "..."}.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx, cmd.OutOrStdout())
		},
	}
}

// serve runs the socket server until ctx is cancelled
func (a *app) serve(ctx context.Context, out io.Writer) error {
	server := NewSocketServer(a.cfg.Socket.Path, NewCipherCore(a.logger), a.logger)
	if err := server.Start(); err != nil {
		return err
	}
	fmt.Fprintf(out, "Listening on %s\n", a.cfg.Socket.Path)

	<-ctx.Done()
	return server.Stop()
}

package main

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/chzyer/readline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedReader replays lines and then reports EOF
type scriptedReader struct {
	lines   []string
	prompts []string
	err     error
}

func (r *scriptedReader) SetPrompt(prompt string) {
	r.prompts = append(r.prompts, prompt)
}

func (r *scriptedReader) Readline() (string, error) {
	if len(r.lines) == 0 {
		if r.err != nil {
			return "", r.err
		}
		return "", io.EOF
	}
	line := r.lines[0]
	r.lines = r.lines[1:]
	return line, nil
}

func runMenuScript(t *testing.T, lines ...string) (string, *scriptedReader) {
	t.Helper()
	var out bytes.Buffer
	reader := &scriptedReader{lines: lines}
	session := NewMenuSession(NewCipherCore(nil), reader, NewMenuFormatter(&out, false), nil)
	require.NoError(t, session.Run())
	return out.String(), reader
}

func TestMenuEncrypt(t *testing.T) {
	out, reader := runMenuScript(t, "E", "hello", "r1", "Q")

	assert.Contains(t, out, "Welcome to Ciphers!")
	assert.Contains(t, out, "Generating output ...\nOHELL\n")
	assert.True(t, strings.HasSuffix(out, "Goodbye!\n"))
	assert.Equal(t, []string{modePrompt, messagePrompt, operationsPrompt, modePrompt}, reader.prompts)
}

func TestMenuDecrypt(t *testing.T) {
	out, _ := runMenuScript(t, "d", "PLELH", "R1;S0,1;T1,4", "quit")
	assert.Contains(t, out, "Generating output ...\nHELLO\n")
}

func TestMenuInvalidMode(t *testing.T) {
	out, reader := runMenuScript(t, "X", "encrpyt", "Q")

	assert.Contains(t, out, "Please enter a valid mode.")
	assert.Contains(t, out, `Did you mean "encrypt"?`)
	assert.Equal(t, 3, strings.Count(strings.Join(reader.prompts, "\n"), modePrompt))
}

func TestMenuEngineErrorReturnsToPrompt(t *testing.T) {
	out, _ := runMenuScript(t, "D", "HELLO", "A2,1", "E", "AB", "T0,1", "Q")

	assert.Contains(t, out, "Generating output ...\n✗ Error: step 1 (A2,1): affine key a=2 has no inverse modulo 26")
	assert.Contains(t, out, "Generating output ...\nBA\n")
}

func TestMenuInvalidSymbolsAreReported(t *testing.T) {
	out, _ := runMenuScript(t, "E", "hello world", "R1", "Q")
	assert.Contains(t, out, "Generating output ...\n✗ Error: invalid symbol")
}

func TestMenuLettersOnly(t *testing.T) {
	var out bytes.Buffer
	reader := &scriptedReader{lines: []string{"E", "hello, world", "R1", "Q"}}
	session := NewMenuSession(NewCipherCore(nil), reader, NewMenuFormatter(&out, false), nil)
	session.lettersOnly = true

	require.NoError(t, session.Run())
	assert.Contains(t, out.String(), "Generating output ...\nDHELLOWORL\n")
}

func TestMenuEOFExits(t *testing.T) {
	out, _ := runMenuScript(t, "E", "HELLO")
	assert.True(t, strings.HasSuffix(out, "Goodbye!\n"))
	assert.NotContains(t, out, "Generating output")
}

func TestMenuInterruptExits(t *testing.T) {
	var out bytes.Buffer
	reader := &scriptedReader{err: readline.ErrInterrupt}
	session := NewMenuSession(NewCipherCore(nil), reader, NewMenuFormatter(&out, false), nil)

	require.NoError(t, session.Run())
	assert.Contains(t, out.String(), "Goodbye!")
}

func TestMenuHelpAndTrace(t *testing.T) {
	var out bytes.Buffer
	reader := &scriptedReader{lines: []string{"?", "E", "HELLO", "R1;S0", "Q"}}
	session := NewMenuSession(NewCipherCore(nil), reader, NewMenuFormatter(&out, false), nil)
	session.showTrace = true

	require.NoError(t, session.Run())
	text := out.String()
	assert.Contains(t, text, "Duplicate")
	assert.Contains(t, text, "Ti,j")
	assert.Contains(t, text, "OHELL")
	assert.Contains(t, text, "PHELL")
	assert.Contains(t, text, "S0,1")
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		input    string
		expected menuChoice
	}{
		{"E", choiceEncrypt},
		{" e ", choiceEncrypt},
		{"encrypt", choiceEncrypt},
		{"D", choiceDecrypt},
		{"Decrypt", choiceDecrypt},
		{"q", choiceQuit},
		{"exit", choiceQuit},
		{"h", choiceHelp},
		{"?", choiceHelp},
		{"", choiceInvalid},
		{"encode", choiceInvalid},
	}

	for _, test := range tests {
		assert.Equal(t, test.expected, parseChoice(test.input), "input %q", test.input)
	}
}

func TestSuggestChoice(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"encr", "encrypt"},
		{"DEC", "decrypt"},
		{"qiut", "quit"},
		{"encrpyt", "encrypt"},
		{"x", ""},
		{"zzzzzzzz", ""},
	}

	for _, test := range tests {
		assert.Equal(t, test.expected, suggestChoice(test.input), "input %q", test.input)
	}
}

func TestUseColorFor(t *testing.T) {
	assert.True(t, useColorFor("always", 0))
	assert.False(t, useColorFor("never", 0))
}

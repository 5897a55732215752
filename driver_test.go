package main

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecrypt(t *testing.T) {
	tests := []struct {
		plain      string
		operations string
		cipher     string
		desc       string
	}{
		{"HELLO", "R1", "OHELL", "Rotate"},
		{"HELLO", "S0,1", "IELLO", "Shift"},
		{"HELLO", "S0", "IELLO", "Shift with default offset"},
		{"HELLO", "D0", "HHELLO", "Duplicate"},
		{"AB", "T0,1", "BA", "Trade"},
		{"AFFINECIPHER", "A5,8", "IHHWVCSWFRCP", "Affine"},
		{"AB", "D1,3;S4,1", "ABBBC", "Index valid only after duplicate"},
		{"HELLO", "R1;S0,1;T1,4", "PLELH", "Pipeline"},
		{"", "R3", "", "Empty message"},
	}

	for _, test := range tests {
		t.Run(test.desc, func(t *testing.T) {
			cipher, err := Encrypt(test.plain, test.operations)
			require.NoError(t, err)
			assert.Equal(t, test.cipher, cipher)

			plain, err := Decrypt(cipher, test.operations)
			require.NoError(t, err)
			assert.Equal(t, test.plain, plain)
		})
	}
}

func TestDecryptNoInverse(t *testing.T) {
	for _, ops := range []string{"A2,3", "A13,1", "R1;A26,0"} {
		t.Run(ops, func(t *testing.T) {
			cipher, err := Encrypt("HELLO", ops)
			require.NoError(t, err, "encrypting with any key is allowed")

			_, err = Decrypt(cipher, ops)
			require.ErrorIs(t, err, ErrNoInverse)
		})
	}
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		message    string
		operations string
		mode       Mode
		target     error
		desc       string
	}{
		{"HELLO", "S5,1", ModeEncode, ErrIndexOutOfRange, "Shift past the end"},
		{"HELLO", "R1;T0,9", ModeEncode, ErrIndexOutOfRange, "Later step out of range"},
		{"AB", "D1,3", ModeDecode, ErrIndexOutOfRange, "Ciphertext too short to undo duplicate"},
		{"HELLO", "Q1", ModeEncode, ErrMalformedInstruction, "Unknown command"},
		{"hello world", "Q1", ModeEncode, ErrMalformedInstruction, "Parse errors win over message errors"},
		{"HELLO WORLD", "R1", ModeEncode, ErrInvalidSymbol, "Space in message"},
		{"HELLO", "", ModeDecode, ErrMalformedInstruction, "Empty operations"},
	}

	for _, test := range tests {
		t.Run(test.desc, func(t *testing.T) {
			out, err := runString(test.message, test.operations, test.mode, nil)
			require.ErrorIs(t, err, test.target)
			assert.Empty(t, out, "no partial result on failure")
		})
	}
}

func TestExtremeParameters(t *testing.T) {
	_, err := Encrypt("AB", "D0,9223372036854775807")
	assert.ErrorIs(t, err, ErrMessageTooLong)

	_, err = Decrypt("ABCDEFG", "D5,9223372036854775807")
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	_, err = Decrypt("ABCDEFG", "D5,-9223372036854775808")
	assert.NoError(t, err, "negative duplicate counts are a no-op")

	cipher, err := Encrypt("HELLO", "S0,-9223372036854775808")
	require.NoError(t, err)
	assert.Equal(t, "ZELLO", cipher)
	plain, err := Decrypt(cipher, "S0,-9223372036854775808")
	require.NoError(t, err)
	assert.Equal(t, "HELLO", plain)

	cipher, err = Encrypt("HELLO", "S0,9223372036854775807;R9223372036854775807")
	require.NoError(t, err)
	plain, err = Decrypt(cipher, "S0,9223372036854775807;R9223372036854775807")
	require.NoError(t, err)
	assert.Equal(t, "HELLO", plain)

	_, err = Encrypt("HELLO", "R-9223372036854775808")
	assert.ErrorIs(t, err, ErrMalformedInstruction)
	_, err = Decrypt("HELLO", "R-9223372036854775808")
	assert.ErrorIs(t, err, ErrMalformedInstruction)
}

func TestRunWrapsStep(t *testing.T) {
	_, err := Encrypt("HELLO", "R1;T0,9")
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "step 2 (T0,9): "), err.Error())

	var rangeErr *IndexOutOfRangeError
	require.True(t, errors.As(err, &rangeErr))
	assert.Equal(t, 9, rangeErr.Index)
	assert.Equal(t, "trade", rangeErr.Op)
}

func TestRunTrace(t *testing.T) {
	var steps []Step
	_, err := runString("HELLO", "R1;S0,1", ModeEncode, func(step Step) {
		steps = append(steps, step)
	})
	require.NoError(t, err)

	assert.Equal(t, []Step{
		{Number: 1, Mode: "encode", Instruction: "R1", Before: "HELLO", After: "OHELL"},
		{Number: 2, Mode: "encode", Instruction: "S0,1", Before: "OHELL", After: "PHELL"},
	}, steps)

	steps = nil
	_, err = runString("PHELL", "R1;S0,1", ModeDecode, func(step Step) {
		steps = append(steps, step)
	})
	require.NoError(t, err)

	assert.Equal(t, []Step{
		{Number: 1, Mode: "decode", Instruction: "S0,-1", Before: "PHELL", After: "OHELL"},
		{Number: 2, Mode: "decode", Instruction: "R-1", Before: "OHELL", After: "HELLO"},
	}, steps)
}

func TestRunTraceStopsAtFailure(t *testing.T) {
	var steps []Step
	_, err := runString("HELLO", "R1;S9;T0,1", ModeEncode, func(step Step) {
		steps = append(steps, step)
	})
	require.ErrorIs(t, err, ErrIndexOutOfRange)
	assert.Len(t, steps, 1)
}

// randomOperations builds a pipeline whose indices are valid for the
// message length at every step of an encode run
func randomOperations(r *rand.Rand, length, count int) string {
	invertible := []int{1, 3, 5, 7, 9, 11, 15, 17, 19, 21, 23, 25}
	parts := make([]string, 0, count)
	for len(parts) < count {
		switch r.Intn(5) {
		case 0:
			if length == 0 {
				continue
			}
			parts = append(parts, fmt.Sprintf("S%d,%d", r.Intn(length), r.Intn(61)-30))
		case 1:
			parts = append(parts, fmt.Sprintf("R%d", r.Intn(41)-20))
		case 2:
			if length == 0 {
				continue
			}
			n := r.Intn(4)
			parts = append(parts, fmt.Sprintf("D%d,%d", r.Intn(length), n))
			length += n
		case 3:
			if length == 0 {
				continue
			}
			parts = append(parts, fmt.Sprintf("T%d,%d", r.Intn(length), r.Intn(length)))
		case 4:
			a := invertible[r.Intn(len(invertible))]
			if r.Intn(2) == 0 {
				a = -a
			}
			parts = append(parts, fmt.Sprintf("A%d,%d", a, r.Intn(81)-40))
		}
	}
	return strings.Join(parts, ";")
}

func TestRoundTripRandomPipelines(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 500; i++ {
		message := make([]byte, 1+r.Intn(12))
		for j := range message {
			message[j] = byte('A' + r.Intn(alphabetSize))
		}
		ops := randomOperations(r, len(message), 1+r.Intn(8))

		cipher, err := Encrypt(string(message), ops)
		require.NoError(t, err, "encrypt %q with %q", message, ops)

		plain, err := Decrypt(cipher, ops)
		require.NoError(t, err, "decrypt %q with %q", cipher, ops)
		require.Equal(t, string(message), plain, "operations %q", ops)
	}
}

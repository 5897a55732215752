package main

import "bytes"

// maxMessageLength bounds how far Duplicate may grow a message
const maxMessageLength = 1 << 24

// Message is the sequence of symbols being transformed. Operations never
// modify their input; each returns a fresh Message.
type Message []byte

// NewMessage validates that s only contains A-Z and returns it as a Message
func NewMessage(s string) (Message, error) {
	for i := 0; i < len(s); i++ {
		if !isSymbol(s[i]) {
			return nil, &InvalidSymbolError{Index: i, Symbol: s[i]}
		}
	}
	return Message(s), nil
}

func (m Message) String() string {
	return string(m)
}

func (m Message) clone() Message {
	return append(Message(nil), m...)
}

func (m Message) checkIndex(op string, index int) error {
	if index < 0 || index >= len(m) {
		return &IndexOutOfRangeError{Op: op, Index: index, Length: len(m)}
	}
	return nil
}

// OperationInfo describes one command of the operations grammar
type OperationInfo struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Syntax      string `json:"syntax"`
	Description string `json:"description"`
	Inverse     string `json:"inverse"`
}

// GetOperations returns all available transformation operations
func GetOperations() []OperationInfo {
	return []OperationInfo{
		{"S", "Shift", "Si[,n]", "Shift the letter at index i forward n letters (default 1)", "Shift by -n"},
		{"R", "Rotate", "R[n]", "Rotate the message n positions to the right (default 1)", "Rotate by -n"},
		{"D", "Duplicate", "Di[,n]", "Follow the letter at index i with n copies of itself (default 1)", "Remove the n letters after index i"},
		{"T", "Trade", "Ti,j", "Swap the letters at indices i and j", "Trade again"},
		{"A", "Affine", "Aa,b", "Replace every letter x with (a*x + b) mod 26", "Apply a_inv*(y - b) mod 26"},
	}
}

// Shift moves the symbol at index offset letters through the alphabet
func Shift(m Message, index, offset int) (Message, error) {
	if err := m.checkIndex("shift", index); err != nil {
		return nil, err
	}
	out := m.clone()
	out[index] = ShiftSymbol(out[index], offset)
	return out, nil
}

// Rotate moves every symbol count positions to the right, wrapping around.
// Negative counts rotate left. An empty message is returned unchanged.
func Rotate(m Message, count int) Message {
	n := len(m)
	if n == 0 {
		return m.clone()
	}
	k := count % n
	if k < 0 {
		k += n
	}
	out := make(Message, 0, n)
	out = append(out, m[n-k:]...)
	out = append(out, m[:n-k]...)
	return out
}

// Duplicate follows the symbol at index with count copies of itself.
// A non-positive count leaves the message unchanged.
func Duplicate(m Message, index, count int) (Message, error) {
	if err := m.checkIndex("duplicate", index); err != nil {
		return nil, err
	}
	if count <= 0 {
		return m.clone(), nil
	}
	if count > maxMessageLength-len(m) {
		return nil, &MessageTooLongError{Op: "duplicate", Length: len(m), Count: count}
	}
	out := make(Message, 0, len(m)+count)
	out = append(out, m[:index+1]...)
	out = append(out, bytes.Repeat([]byte{m[index]}, count)...)
	out = append(out, m[index+1:]...)
	return out, nil
}

// RemoveDuplicate removes the count symbols immediately following index,
// undoing Duplicate with the same parameters.
func RemoveDuplicate(m Message, index, count int) (Message, error) {
	if err := m.checkIndex("remove duplicate", index); err != nil {
		return nil, err
	}
	if count <= 0 {
		return m.clone(), nil
	}
	// index < len(m) here, so neither side of the comparison can overflow
	if count > len(m)-1-index {
		last := len(m)
		if count <= len(m) {
			last = index + count
		}
		return nil, &IndexOutOfRangeError{Op: "remove duplicate", Index: last, Length: len(m)}
	}
	out := make(Message, 0, len(m)-count)
	out = append(out, m[:index+1]...)
	out = append(out, m[index+1+count:]...)
	return out, nil
}

// Trade swaps the symbols at indices i and j
func Trade(m Message, i, j int) (Message, error) {
	if err := m.checkIndex("trade", i); err != nil {
		return nil, err
	}
	if err := m.checkIndex("trade", j); err != nil {
		return nil, err
	}
	out := m.clone()
	out[i], out[j] = out[j], out[i]
	return out, nil
}

// AffineEncrypt applies y = (a*x + b) mod 26 to every symbol
func AffineEncrypt(m Message, a, b int) Message {
	out := make(Message, len(m))
	for i, s := range m {
		out[i] = AffineEncryptSymbol(s, a, b)
	}
	return out
}

// AffineDecrypt applies x = a_inv*(y - b) mod 26 to every symbol.
// It fails with a NoInverseError when a has no inverse modulo 26.
func AffineDecrypt(m Message, a, b int) (Message, error) {
	inv, err := ModInverse(a)
	if err != nil {
		return nil, err
	}
	out := make(Message, len(m))
	for i, s := range m {
		out[i] = affineDecryptWith(s, inv, b)
	}
	return out, nil
}

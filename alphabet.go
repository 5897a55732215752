package main

const alphabetSize = 26

// mod returns n modulo alphabetSize, always in [0, alphabetSize)
func mod(n int) int {
	r := n % alphabetSize
	if r < 0 {
		r += alphabetSize
	}
	return r
}

// isSymbol reports whether b is one of the 26 uppercase letters
func isSymbol(b byte) bool {
	return b >= 'A' && b <= 'Z'
}

// ShiftSymbol moves symbol offset letters forward in the alphabet, wrapping around.
// Negative offsets move backward.
func ShiftSymbol(symbol byte, offset int) byte {
	x := int(symbol - 'A')
	return byte(mod(x+mod(offset))) + 'A'
}

// AffineEncryptSymbol computes (a*x + b) mod 26 for the symbol's position x
func AffineEncryptSymbol(symbol byte, a, b int) byte {
	x := int(symbol - 'A')
	return byte(mod(mod(a)*x+mod(b))) + 'A'
}

// AffineDecryptSymbol computes a_inv*(y - b) mod 26 for the symbol's position y
func AffineDecryptSymbol(symbol byte, a, b int) (byte, error) {
	inv, err := ModInverse(a)
	if err != nil {
		return 0, err
	}
	return affineDecryptWith(symbol, inv, b), nil
}

func affineDecryptWith(symbol byte, inv, b int) byte {
	y := int(symbol - 'A')
	return byte(mod(inv*mod(y-mod(b)))) + 'A'
}

// ModInverse finds a_inv in [0,26) with a*a_inv = 1 (mod 26) by trying every candidate.
// It exists only when a shares no factor with 26.
func ModInverse(a int) (int, error) {
	na := mod(a)
	for inv := 0; inv < alphabetSize; inv++ {
		if na*inv%alphabetSize == 1 {
			return inv, nil
		}
	}
	return 0, &NoInverseError{A: a}
}

package crypto

import (
	"errors"
	"math"
)

const (
	defaultAlphabet string = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_-"
	defaultSize     int    = 22 // 22 * 6 = 132 bits of entropy
	maxAlphabetSize int    = 255
	minAlphabetSize int    = 8
)

var (
	ErrAlphabetTooLong  = errors.New("alphabet must contain no more than 255 characters")
	ErrAlphabetTooShort = errors.New("alphabet must contain at least 8 characters")
	ErrAlphabetNotASCII = errors.New("alphabet must contain only ASCII characters")
	ErrInvalidIDSize    = errors.New("id size must be positive")
)

// NanoIDGenerator produces short random identifiers for records such as
// sessions. IDs are not secrets; session tokens are generated separately.
type NanoIDGenerator struct {
	alphabet string
	mask     int
	size     int
}

func getMask(alphabetLen int) int {
	for i := 1; i <= 8; i++ {
		mask := (2 << uint(i)) - 1
		if mask >= alphabetLen-1 {
			return mask
		}
	}
	return maxAlphabetSize
}

// NewNanoID returns a generator over the default URL-safe alphabet.
func NewNanoID() *NanoIDGenerator {
	g, _ := NewNanoIDWithAlphabet(defaultAlphabet, defaultSize)
	return g
}

// NewNanoIDWithAlphabet returns a generator over a custom ASCII alphabet.
func NewNanoIDWithAlphabet(alphabet string, size int) (*NanoIDGenerator, error) {
	if size <= 0 {
		return nil, ErrInvalidIDSize
	}
	// Generate indexes by byte position
	for i := 0; i < len(alphabet); i++ {
		if alphabet[i] > 127 {
			return nil, ErrAlphabetNotASCII
		}
	}
	if len(alphabet) > maxAlphabetSize {
		return nil, ErrAlphabetTooLong
	}
	if len(alphabet) < minAlphabetSize {
		return nil, ErrAlphabetTooShort
	}

	return &NanoIDGenerator{
		alphabet: alphabet,
		mask:     getMask(len(alphabet)),
		size:     size,
	}, nil
}

func (n *NanoIDGenerator) Generate() (string, error) {
	alphabetLen := len(n.alphabet)
	step := int(math.Ceil(1.6 * float64(n.mask*n.size) / float64(alphabetLen)))

	id := make([]byte, n.size)
	for position := 0; position < n.size; {
		buffer, err := RandomBytes(step)
		if err != nil {
			return "", err
		}

		// Reject indexes past the alphabet to avoid modulo bias
		for i := 0; i < step && position < n.size; i++ {
			index := int(buffer[i]) & n.mask
			if index < alphabetLen {
				id[position] = n.alphabet[index]
				position++
			}
		}
	}

	return string(id), nil
}

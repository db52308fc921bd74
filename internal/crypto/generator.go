package crypto

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
)

const (
	UppercaseChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	LowercaseChars = "abcdefghijklmnopqrstuvwxyz"
	NumberChars    = "0123456789"
	SymbolChars    = "!@#$%^&*()_+-=[]{}|;:,.<>?"

	// AmbiguousChars are glyphs that are easy to misread in most fonts.
	AmbiguousChars = "0O1lI"

	MinLength     = 8
	MaxLength     = 64
	DefaultLength = 16
)

var (
	ErrInvalidPolicy      = errors.New("invalid generation policy")
	ErrLengthTooShort     = fmt.Errorf("%w: password length must be at least %d", ErrInvalidPolicy, MinLength)
	ErrLengthTooLong      = fmt.Errorf("%w: password length must be at most %d", ErrInvalidPolicy, MaxLength)
	ErrNoCharacterTypes   = fmt.Errorf("%w: select at least one character type", ErrInvalidPolicy)
	ErrEmptyCharset       = fmt.Errorf("%w: exclusions leave no characters to draw from", ErrInvalidPolicy)
	ErrLengthInsufficient = fmt.Errorf("%w: password length must be at least equal to the number of selected character types", ErrInvalidPolicy)
)

// GenerationPolicy configures the password generator.
//
// RequireEachClass switches from independent per-position draws to a
// guarantee that every selected class appears at least once.
type GenerationPolicy struct {
	Length           int
	Uppercase        bool
	Lowercase        bool
	Numbers          bool
	Symbols          bool
	ExcludeAmbiguous bool
	RequireEachClass bool
}

// DefaultPolicy returns 16 characters with all types enabled.
func DefaultPolicy() GenerationPolicy {
	return GenerationPolicy{
		Length:    DefaultLength,
		Uppercase: true,
		Lowercase: true,
		Numbers:   true,
		Symbols:   true,
	}
}

// Charset returns the effective character set for the policy: the union of
// the selected classes, minus AmbiguousChars when ExcludeAmbiguous is set.
func (p GenerationPolicy) Charset() (string, error) {
	classes, err := p.classes()
	if err != nil {
		return "", err
	}
	return strings.Join(classes, ""), nil
}

// classes returns the selected alphabets after exclusions, dropping any
// alphabet that exclusion emptied.
func (p GenerationPolicy) classes() ([]string, error) {
	var selected []string
	if p.Uppercase {
		selected = append(selected, UppercaseChars)
	}
	if p.Lowercase {
		selected = append(selected, LowercaseChars)
	}
	if p.Numbers {
		selected = append(selected, NumberChars)
	}
	if p.Symbols {
		selected = append(selected, SymbolChars)
	}
	if len(selected) == 0 {
		return nil, ErrNoCharacterTypes
	}

	var classes []string
	for _, set := range selected {
		if p.ExcludeAmbiguous {
			set = stripChars(set, AmbiguousChars)
		}
		if set != "" {
			classes = append(classes, set)
		}
	}
	if len(classes) == 0 {
		return nil, ErrEmptyCharset
	}
	return classes, nil
}

// Generate creates a random password from the policy using crypto/rand.
func Generate(p GenerationPolicy) (string, error) {
	if p.Length < MinLength {
		return "", ErrLengthTooShort
	}
	if p.Length > MaxLength {
		return "", ErrLengthTooLong
	}

	classes, err := p.classes()
	if err != nil {
		return "", err
	}
	pool := strings.Join(classes, "")

	result := make([]byte, p.Length)
	start := 0

	if p.RequireEachClass {
		if p.Length < len(classes) {
			return "", ErrLengthInsufficient
		}
		for i, charset := range classes {
			ch, err := randChar(charset)
			if err != nil {
				return "", err
			}
			result[i] = ch
		}
		start = len(classes)
	}

	for i := start; i < p.Length; i++ {
		ch, err := randChar(pool)
		if err != nil {
			return "", err
		}
		result[i] = ch
	}

	if p.RequireEachClass {
		if err := secureShuffle(result); err != nil {
			return "", err
		}
	}

	return string(result), nil
}

// randChar picks a random character from charset using crypto/rand.
func randChar(charset string) (byte, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
	if err != nil {
		return 0, fmt.Errorf("reading random source: %w", err)
	}
	return charset[n.Int64()], nil
}

// secureShuffle performs a Fisher-Yates shuffle using crypto/rand.
func secureShuffle(data []byte) error {
	for i := len(data) - 1; i > 0; i-- {
		j, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return fmt.Errorf("reading random source: %w", err)
		}
		data[i], data[j.Int64()] = data[j.Int64()], data[i]
	}
	return nil
}

func stripChars(s, drop string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(drop, r) {
			return -1
		}
		return r
	}, s)
}

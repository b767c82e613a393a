package toon

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// numericLike matches text a reader would take for a number, including
// forms with leading zeros such as "05".
var numericLike = regexp.MustCompile(`^-?\d+(?:\.\d+)?(?:[eE][+-]?\d+)?$`)

// identifierKey matches keys that may be written without quotes.
var identifierKey = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)

// Fractional numbers outside [1e-4, 1e16) switch to scientific notation.
const (
	minFixedExponent = -4
	maxFixedExponent = 16
)

// EncodeScalar renders a primitive value as a single token. Containers
// render as an empty string; they never reach this function from the
// structural encoder.
func EncodeScalar(v Value, delimiter string) string {
	switch v.kind {
	case NullKind:
		return "null"
	case BoolKind:
		if v.b {
			return "true"
		}

		return "false"
	case NumberKind:
		return FormatNumber(v.num)
	case StringKind:
		return encodeString(v.str, delimiter)
	default:
		return ""
	}
}

// FormatNumber renders a number. Integers print as plain decimal digits.
// Fractional numbers use the shortest round-trip representation and always
// carry a decimal point, except for zero which prints as "0".
func FormatNumber(n Number) string {
	if !n.frac {
		if n.big != nil {
			return n.big.String()
		}

		return strconv.FormatInt(n.i, 10)
	}

	if n.f == 0 {
		return "0"
	}

	sci := strconv.FormatFloat(n.f, 'e', -1, 64)

	mantissa, exp, _ := strings.Cut(sci, "e")

	e, err := strconv.Atoi(exp)
	if err != nil {
		return sci
	}

	if e < minFixedExponent || e >= maxFixedExponent {
		if !strings.Contains(mantissa, ".") {
			mantissa += ".0"
		}

		return mantissa + "e" + exp
	}

	fixed := strconv.FormatFloat(n.f, 'f', -1, 64)
	if !strings.Contains(fixed, ".") {
		fixed += ".0"
	}

	return fixed
}

func encodeString(s, delimiter string) string {
	if needsQuotes(s, delimiter) {
		return quote(s)
	}

	return s
}

// EncodeKey renders a mapping key or tabular header key. Keys are bare only
// when they are identifiers that would also be safe as bare values.
func EncodeKey(key, delimiter string) string {
	if identifierKey.MatchString(key) && !needsQuotes(key, delimiter) {
		return key
	}

	return quote(key)
}

// needsQuotes reports whether s would be ambiguous or structurally unsafe if
// written bare.
func needsQuotes(s, delimiter string) bool {
	if s == "" {
		return true
	}

	switch s {
	case "true", "false", "null":
		return true
	}

	if numericLike.MatchString(s) {
		return true
	}

	first, _ := utf8.DecodeRuneInString(s)
	last, _ := utf8.DecodeLastRuneInString(s)

	if unicode.IsSpace(first) || unicode.IsSpace(last) {
		return true
	}

	if strings.HasPrefix(s, "- ") || s[0] == '[' || s[0] == '{' {
		return true
	}

	if strings.Contains(s, delimiter) {
		return true
	}

	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case ':', '"', '[', ']', '{', '}':
			return true
		default:
			if c < 0x20 {
				return true
			}
		}
	}

	return false
}

var quoteReplacer = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

func quote(s string) string {
	return `"` + quoteReplacer.Replace(s) + `"`
}

// Package alphabet holds the fixed 64-character symbol table shared by the
// content encoder and decoder. Loading and validating it is trivial, but
// both directions of the codec need the exact same table, so it lives in
// its own leaf package rather than being duplicated.
package alphabet

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var upperCaser = cases.Upper(language.Und)

// Table is the 64-character alphabet. A character's index in this string
// is the field element (codeword) it maps to.
const Table = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*(){}[]_+-=.,:;/?<>\" "

// Size is the number of characters in Table, and therefore the size of
// the GF(2^6) field this codec uses.
const Size = len(Table)

var indexOf [256]int

func init() {
	for i := range indexOf {
		indexOf[i] = -1
	}
	for i := 0; i < len(Table); i++ {
		indexOf[Table[i]] = i
	}
}

// Encode returns the field element for character c, or -1 if c is not in
// the alphabet.
func Encode(c byte) int {
	return indexOf[c]
}

// Decode returns the character for field element v, or false if v is
// outside [0, Size).
func Decode(v int) (byte, bool) {
	if v < 0 || v >= Size {
		return 0, false
	}
	return Table[v], true
}

// Upper upper-cases s the way the encoder's payload normalization step
// expects (spec.md §4.5 step 7), using a Unicode-aware caser rather than a
// hand-rolled ASCII loop, since a payload character outside the alphabet
// is rejected later regardless of script.
func Upper(s string) string {
	return upperCaser.String(s)
}

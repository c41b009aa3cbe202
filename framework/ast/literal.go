package ast

import (
	"errors"
	"fmt"
)

// ErrUnknownLiteralKind is returned when decoding a literal whose kind is not
// one of the LiteralKind constants.
var ErrUnknownLiteralKind = errors.New("unknown literal kind")

// LiteralKind tags a LiteralExpression. The set is closed: the decoder
// refuses any other value.
type LiteralKind string

const (
	LiteralKindList    LiteralKind = "List"
	LiteralKindLogical LiteralKind = "Logical"
	LiteralKindNull    LiteralKind = "Null"
	LiteralKindNumeric LiteralKind = "Numeric"
	LiteralKindRecord  LiteralKind = "Record"
	LiteralKindStr     LiteralKind = "Str"
)

// LiteralKinds returns every literal kind in declaration order.
func LiteralKinds() []LiteralKind {
	return []LiteralKind{
		LiteralKindList,
		LiteralKindLogical,
		LiteralKindNull,
		LiteralKindNumeric,
		LiteralKindRecord,
		LiteralKindStr,
	}
}

// Valid reports whether k is one of the declared kinds.
func (k LiteralKind) Valid() bool {
	for _, known := range LiteralKinds() {
		if k == known {
			return true
		}
	}
	return false
}

// UnmarshalText implements encoding.TextUnmarshaler and rejects unknown kinds.
func (k *LiteralKind) UnmarshalText(text []byte) error {
	kind := LiteralKind(text)
	if !kind.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownLiteralKind, string(text))
	}
	*k = kind
	return nil
}

package ast

// TokenPosition locates a point in the source as produced by the parser.
// LineCodeUnit counts UTF-16 code units from the start of the line; CodeUnit
// counts them from the start of the document.
type TokenPosition struct {
	LineNumber   int `json:"lineNumber"`
	LineCodeUnit int `json:"lineCodeUnit"`
	CodeUnit     int `json:"codeUnit"`
}

// Before reports whether p sorts strictly before other.
func (p TokenPosition) Before(other TokenPosition) bool {
	if p.LineNumber != other.LineNumber {
		return p.LineNumber < other.LineNumber
	}
	return p.LineCodeUnit < other.LineCodeUnit
}

// TokenRange is the span of tokens a node was parsed from.
type TokenRange struct {
	TokenIndexStart int           `json:"tokenIndexStart"`
	TokenIndexEnd   int           `json:"tokenIndexEnd"`
	PositionStart   TokenPosition `json:"positionStart"`
	PositionEnd     TokenPosition `json:"positionEnd"`
}

// Contains reports whether other lies within r. Both ends are inclusive.
func (r TokenRange) Contains(other TokenRange) bool {
	return !other.PositionStart.Before(r.PositionStart) && !r.PositionEnd.Before(other.PositionEnd)
}

// ContainsPosition reports whether pos lies within r, end inclusive.
func (r TokenRange) ContainsPosition(pos TokenPosition) bool {
	return !pos.Before(r.PositionStart) && !r.PositionEnd.Before(pos)
}

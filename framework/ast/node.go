package ast

// Node is one element of a parsed syntax tree. The set of implementations is
// closed: only the types in this file satisfy it.
type Node interface {
	Kind() NodeKind
	Range() TokenRange
	node()
}

// NodeKind enumerates the node kinds this package models.
type NodeKind string

const (
	NodeKindArithmeticExpression       NodeKind = "ArithmeticExpression"
	NodeKindConstant                   NodeKind = "Constant"
	NodeKindEachExpression             NodeKind = "EachExpression"
	NodeKindFunctionExpression         NodeKind = "FunctionExpression"
	NodeKindIdentifier                 NodeKind = "Identifier"
	NodeKindIdentifierExpression       NodeKind = "IdentifierExpression"
	NodeKindIdentifierPairedExpression NodeKind = "IdentifierPairedExpression"
	NodeKindIfExpression               NodeKind = "IfExpression"
	NodeKindInvokeExpression           NodeKind = "InvokeExpression"
	NodeKindLetExpression              NodeKind = "LetExpression"
	NodeKindListExpression             NodeKind = "ListExpression"
	NodeKindLiteralExpression          NodeKind = "LiteralExpression"
	NodeKindMetadataExpression         NodeKind = "MetadataExpression"
	NodeKindParenthesizedExpression    NodeKind = "ParenthesizedExpression"
	NodeKindRecordExpression           NodeKind = "RecordExpression"
	NodeKindSection                    NodeKind = "Section"
	NodeKindSectionMember              NodeKind = "SectionMember"

	// Record fields and section members may use generalized identifiers,
	// which allow names such as `Column Name`. They decode to *Identifier
	// and *IdentifierPairedExpression.
	NodeKindGeneralizedIdentifier                 NodeKind = "GeneralizedIdentifier"
	NodeKindGeneralizedIdentifierPairedExpression NodeKind = "GeneralizedIdentifierPairedExpression"
)

// Constant is a keyword or operator token such as `null`, `each` or `type`.
type Constant struct {
	TokenRange TokenRange
	Literal    string
}

// Identifier is a bare name token.
type Identifier struct {
	TokenRange TokenRange
	Literal    string
}

// IdentifierExpression is a reference to a name, optionally `@`-prefixed.
type IdentifierExpression struct {
	TokenRange  TokenRange
	Identifier  *Identifier
	IsInclusive bool
}

// LiteralExpression is a literal value tagged with its LiteralKind.
type LiteralExpression struct {
	TokenRange  TokenRange
	Literal     string
	LiteralKind LiteralKind
}

// Parameter is a single function parameter.
type Parameter struct {
	Name       *Identifier
	IsOptional bool
	TypeName   string
}

// FunctionExpression is `(params) as type => body`.
type FunctionExpression struct {
	TokenRange TokenRange
	Parameters []Parameter
	ReturnType string
	Body       Node
}

// ListExpression is `{a, b, c}`.
type ListExpression struct {
	TokenRange TokenRange
	Elements   []Node
}

// RecordExpression is `[a = 1, b = 2]`.
type RecordExpression struct {
	TokenRange TokenRange
	Fields     []*IdentifierPairedExpression
}

// MetadataExpression is `left meta right`.
type MetadataExpression struct {
	TokenRange TokenRange
	Left       Node
	Right      Node
}

// InvokeArguments describes the argument list of an invocation as seen from
// a cursor position.
type InvokeArguments struct {
	NumArguments          int `json:"numArguments"`
	PositionArgumentIndex int `json:"positionArgumentIndex"`
}

// InvokeExpression is a function call. Name is empty when the callee is not
// a plain name. Arguments is nil when the cursor is not inside an argument
// list.
type InvokeExpression struct {
	TokenRange TokenRange
	Name       string
	Arguments  *InvokeArguments
	Args       []Node
}

// IdentifierPairedExpression is a single `key = value` binding.
type IdentifierPairedExpression struct {
	TokenRange TokenRange
	Key        *Identifier
	Value      Node
}

// LetExpression is `let variables in expression`.
type LetExpression struct {
	TokenRange TokenRange
	Variables  []*IdentifierPairedExpression
	Expression Node
}

// SectionMember wraps a binding declared at section level.
type SectionMember struct {
	TokenRange           TokenRange
	IsShared             bool
	NamePairedExpression *IdentifierPairedExpression
}

// Section is a `section Name; member; ...` document.
type Section struct {
	TokenRange TokenRange
	Name       *Identifier
	Members    []*SectionMember
}

// IfExpression is `if condition then trueExpr else falseExpr`.
type IfExpression struct {
	TokenRange TokenRange
	Condition  Node
	TrueExpr   Node
	FalseExpr  Node
}

// EachExpression is `each body`.
type EachExpression struct {
	TokenRange TokenRange
	Body       Node
}

// ParenthesizedExpression is `(content)`.
type ParenthesizedExpression struct {
	TokenRange TokenRange
	Content    Node
}

// ArithmeticExpression is `left operator right`.
type ArithmeticExpression struct {
	TokenRange TokenRange
	Operator   string
	Left       Node
	Right      Node
}

// OpaqueNode stands in for a kind the decoder does not model. Its children
// are dropped.
type OpaqueNode struct {
	TokenRange TokenRange
	RawKind    NodeKind
}

func (*ArithmeticExpression) Kind() NodeKind       { return NodeKindArithmeticExpression }
func (*Constant) Kind() NodeKind                   { return NodeKindConstant }
func (*EachExpression) Kind() NodeKind             { return NodeKindEachExpression }
func (*FunctionExpression) Kind() NodeKind         { return NodeKindFunctionExpression }
func (*Identifier) Kind() NodeKind                 { return NodeKindIdentifier }
func (*IdentifierExpression) Kind() NodeKind       { return NodeKindIdentifierExpression }
func (*IdentifierPairedExpression) Kind() NodeKind { return NodeKindIdentifierPairedExpression }
func (*IfExpression) Kind() NodeKind               { return NodeKindIfExpression }
func (*InvokeExpression) Kind() NodeKind           { return NodeKindInvokeExpression }
func (*LetExpression) Kind() NodeKind              { return NodeKindLetExpression }
func (*ListExpression) Kind() NodeKind             { return NodeKindListExpression }
func (*LiteralExpression) Kind() NodeKind          { return NodeKindLiteralExpression }
func (*MetadataExpression) Kind() NodeKind         { return NodeKindMetadataExpression }
func (*ParenthesizedExpression) Kind() NodeKind    { return NodeKindParenthesizedExpression }
func (*RecordExpression) Kind() NodeKind           { return NodeKindRecordExpression }
func (*Section) Kind() NodeKind                    { return NodeKindSection }
func (*SectionMember) Kind() NodeKind              { return NodeKindSectionMember }
func (n *OpaqueNode) Kind() NodeKind               { return n.RawKind }

func (n *ArithmeticExpression) Range() TokenRange       { return n.TokenRange }
func (n *Constant) Range() TokenRange                   { return n.TokenRange }
func (n *EachExpression) Range() TokenRange             { return n.TokenRange }
func (n *FunctionExpression) Range() TokenRange         { return n.TokenRange }
func (n *Identifier) Range() TokenRange                 { return n.TokenRange }
func (n *IdentifierExpression) Range() TokenRange       { return n.TokenRange }
func (n *IdentifierPairedExpression) Range() TokenRange { return n.TokenRange }
func (n *IfExpression) Range() TokenRange               { return n.TokenRange }
func (n *InvokeExpression) Range() TokenRange           { return n.TokenRange }
func (n *LetExpression) Range() TokenRange              { return n.TokenRange }
func (n *ListExpression) Range() TokenRange             { return n.TokenRange }
func (n *LiteralExpression) Range() TokenRange          { return n.TokenRange }
func (n *MetadataExpression) Range() TokenRange         { return n.TokenRange }
func (n *ParenthesizedExpression) Range() TokenRange    { return n.TokenRange }
func (n *RecordExpression) Range() TokenRange           { return n.TokenRange }
func (n *Section) Range() TokenRange                    { return n.TokenRange }
func (n *SectionMember) Range() TokenRange              { return n.TokenRange }
func (n *OpaqueNode) Range() TokenRange                 { return n.TokenRange }

func (*ArithmeticExpression) node()       {}
func (*Constant) node()                   {}
func (*EachExpression) node()             {}
func (*FunctionExpression) node()         {}
func (*Identifier) node()                 {}
func (*IdentifierExpression) node()       {}
func (*IdentifierPairedExpression) node() {}
func (*IfExpression) node()               {}
func (*InvokeExpression) node()           {}
func (*LetExpression) node()              {}
func (*ListExpression) node()             {}
func (*LiteralExpression) node()          {}
func (*MetadataExpression) node()         {}
func (*ParenthesizedExpression) node()    {}
func (*RecordExpression) node()           {}
func (*Section) node()                    {}
func (*SectionMember) node()              {}
func (*OpaqueNode) node()                 {}

// BindingContainer is a node that groups named bindings in declaration
// order.
type BindingContainer interface {
	Node
	Bindings() []*IdentifierPairedExpression
}

// Bindings returns the let variables in order, skipping nil entries and
// entries without a key.
func (n *LetExpression) Bindings() []*IdentifierPairedExpression {
	return keyedPairs(n.Variables)
}

// Bindings unwraps each section member in order. Members without a paired
// expression are skipped.
func (n *Section) Bindings() []*IdentifierPairedExpression {
	out := make([]*IdentifierPairedExpression, 0, len(n.Members))
	for _, member := range n.Members {
		if member == nil || member.NamePairedExpression == nil || member.NamePairedExpression.Key == nil {
			continue
		}
		out = append(out, member.NamePairedExpression)
	}
	return out
}

// Bindings returns the record fields in order, skipping nil entries and
// entries without a key.
func (n *RecordExpression) Bindings() []*IdentifierPairedExpression {
	return keyedPairs(n.Fields)
}

func keyedPairs(pairs []*IdentifierPairedExpression) []*IdentifierPairedExpression {
	out := make([]*IdentifierPairedExpression, 0, len(pairs))
	for _, pair := range pairs {
		if pair == nil || pair.Key == nil {
			continue
		}
		out = append(out, pair)
	}
	return out
}

package ast

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// envelope is the union of every field a serialized node may carry. Child
// nodes stay raw until the kind is known.
type envelope struct {
	Kind                 NodeKind          `json:"kind"`
	TokenRange           TokenRange        `json:"tokenRange"`
	Literal              string            `json:"literal"`
	LiteralKind          string            `json:"literalKind"`
	Name                 json.RawMessage   `json:"name"`
	Operator             string            `json:"operator"`
	IsInclusive          bool              `json:"isInclusive"`
	IsShared             bool              `json:"isShared"`
	ReturnType           string            `json:"returnType"`
	Arguments            *InvokeArguments  `json:"arguments"`
	Identifier           json.RawMessage   `json:"identifier"`
	Key                  json.RawMessage   `json:"key"`
	Value                json.RawMessage   `json:"value"`
	Body                 json.RawMessage   `json:"body"`
	Content              json.RawMessage   `json:"content"`
	Left                 json.RawMessage   `json:"left"`
	Right                json.RawMessage   `json:"right"`
	Condition            json.RawMessage   `json:"condition"`
	TrueExpr             json.RawMessage   `json:"trueExpression"`
	FalseExpr            json.RawMessage   `json:"falseExpression"`
	Expression           json.RawMessage   `json:"expression"`
	NamePairedExpression json.RawMessage   `json:"namePairedExpression"`
	Elements             []json.RawMessage `json:"elements"`
	Fields               []json.RawMessage `json:"fields"`
	Variables            []json.RawMessage `json:"variables"`
	Members              []json.RawMessage `json:"members"`
	Args                 []json.RawMessage `json:"args"`
	Parameters           []rawParameter    `json:"parameters"`
}

type rawParameter struct {
	Name       json.RawMessage `json:"name"`
	IsOptional bool            `json:"isOptional"`
	TypeName   string          `json:"typeName"`
}

// Decode reads a syntax tree serialized as JSON by the parser. Unknown node
// kinds decode to *OpaqueNode; unknown literal kinds are an error.
func Decode(data []byte) (Node, error) {
	if isNull(data) {
		return nil, errors.New("empty syntax tree")
	}
	return decodeNode(data)
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func decodeNode(raw json.RawMessage) (Node, error) {
	if isNull(raw) {
		return nil, nil
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, err
	}
	switch env.Kind {
	case NodeKindConstant:
		return &Constant{TokenRange: env.TokenRange, Literal: env.Literal}, nil
	case NodeKindIdentifier, NodeKindGeneralizedIdentifier:
		return &Identifier{TokenRange: env.TokenRange, Literal: env.Literal}, nil
	case NodeKindIdentifierExpression:
		ident, err := decodeIdentifier(env.Identifier)
		if err != nil {
			return nil, err
		}
		return &IdentifierExpression{TokenRange: env.TokenRange, Identifier: ident, IsInclusive: env.IsInclusive}, nil
	case NodeKindLiteralExpression:
		var kind LiteralKind
		if err := kind.UnmarshalText([]byte(env.LiteralKind)); err != nil {
			return nil, err
		}
		return &LiteralExpression{TokenRange: env.TokenRange, Literal: env.Literal, LiteralKind: kind}, nil
	case NodeKindFunctionExpression:
		fn, err := decodeFunction(env)
		if err != nil {
			return nil, err
		}
		return fn, nil
	case NodeKindListExpression:
		elements, err := decodeNodes(env.Elements)
		if err != nil {
			return nil, fmt.Errorf("list elements: %w", err)
		}
		return &ListExpression{TokenRange: env.TokenRange, Elements: elements}, nil
	case NodeKindRecordExpression:
		fields, err := decodePairs(env.Fields)
		if err != nil {
			return nil, fmt.Errorf("record fields: %w", err)
		}
		return &RecordExpression{TokenRange: env.TokenRange, Fields: fields}, nil
	case NodeKindMetadataExpression:
		left, right, err := decodeOperands(env)
		if err != nil {
			return nil, err
		}
		return &MetadataExpression{TokenRange: env.TokenRange, Left: left, Right: right}, nil
	case NodeKindArithmeticExpression:
		left, right, err := decodeOperands(env)
		if err != nil {
			return nil, err
		}
		return &ArithmeticExpression{TokenRange: env.TokenRange, Operator: env.Operator, Left: left, Right: right}, nil
	case NodeKindInvokeExpression:
		invoke, err := decodeInvoke(env)
		if err != nil {
			return nil, err
		}
		return invoke, nil
	case NodeKindIdentifierPairedExpression, NodeKindGeneralizedIdentifierPairedExpression:
		pair, err := decodePairFromEnvelope(env)
		if err != nil {
			return nil, err
		}
		return pair, nil
	case NodeKindLetExpression:
		variables, err := decodePairs(env.Variables)
		if err != nil {
			return nil, fmt.Errorf("let variables: %w", err)
		}
		expr, err := decodeNode(env.Expression)
		if err != nil {
			return nil, fmt.Errorf("let expression: %w", err)
		}
		return &LetExpression{TokenRange: env.TokenRange, Variables: variables, Expression: expr}, nil
	case NodeKindSectionMember:
		member, err := decodeMemberFromEnvelope(env)
		if err != nil {
			return nil, err
		}
		return member, nil
	case NodeKindSection:
		section, err := decodeSection(env)
		if err != nil {
			return nil, err
		}
		return section, nil
	case NodeKindIfExpression:
		cond, err := decodeNode(env.Condition)
		if err != nil {
			return nil, err
		}
		trueExpr, err := decodeNode(env.TrueExpr)
		if err != nil {
			return nil, err
		}
		falseExpr, err := decodeNode(env.FalseExpr)
		if err != nil {
			return nil, err
		}
		return &IfExpression{TokenRange: env.TokenRange, Condition: cond, TrueExpr: trueExpr, FalseExpr: falseExpr}, nil
	case NodeKindEachExpression:
		body, err := decodeNode(env.Body)
		if err != nil {
			return nil, err
		}
		return &EachExpression{TokenRange: env.TokenRange, Body: body}, nil
	case NodeKindParenthesizedExpression:
		content, err := decodeNode(env.Content)
		if err != nil {
			return nil, err
		}
		return &ParenthesizedExpression{TokenRange: env.TokenRange, Content: content}, nil
	case "":
		return nil, errors.New("node without kind")
	default:
		return &OpaqueNode{TokenRange: env.TokenRange, RawKind: env.Kind}, nil
	}
}

func decodeNodes(raws []json.RawMessage) ([]Node, error) {
	nodes := make([]Node, 0, len(raws))
	for i, raw := range raws {
		node, err := decodeNode(raw)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		if node != nil {
			nodes = append(nodes, node)
		}
	}
	return nodes, nil
}

func decodeOperands(env envelope) (Node, Node, error) {
	left, err := decodeNode(env.Left)
	if err != nil {
		return nil, nil, fmt.Errorf("left operand: %w", err)
	}
	right, err := decodeNode(env.Right)
	if err != nil {
		return nil, nil, fmt.Errorf("right operand: %w", err)
	}
	return left, right, nil
}

func decodeIdentifier(raw json.RawMessage) (*Identifier, error) {
	if isNull(raw) {
		return nil, nil
	}
	node, err := decodeNode(raw)
	if err != nil {
		return nil, err
	}
	ident, ok := node.(*Identifier)
	if !ok {
		return nil, fmt.Errorf("expected %s, got %s", NodeKindIdentifier, node.Kind())
	}
	return ident, nil
}

func isPairKind(kind NodeKind) bool {
	return kind == NodeKindIdentifierPairedExpression || kind == NodeKindGeneralizedIdentifierPairedExpression
}

// decodePairs decodes a binding list. Entries that are not paired
// expressions are dropped so the remaining bindings stay usable.
func decodePairs(raws []json.RawMessage) ([]*IdentifierPairedExpression, error) {
	pairs := make([]*IdentifierPairedExpression, 0, len(raws))
	for i, raw := range raws {
		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, fmt.Errorf("binding %d: %w", i, err)
		}
		if !isPairKind(env.Kind) {
			continue
		}
		pair, err := decodePairFromEnvelope(env)
		if err != nil {
			return nil, fmt.Errorf("binding %d: %w", i, err)
		}
		pairs = append(pairs, pair)
	}
	return pairs, nil
}

func decodePairFromEnvelope(env envelope) (*IdentifierPairedExpression, error) {
	if !isPairKind(env.Kind) {
		return nil, fmt.Errorf("expected %s, got %q", NodeKindIdentifierPairedExpression, env.Kind)
	}
	key, err := decodeIdentifier(env.Key)
	if err != nil {
		return nil, fmt.Errorf("key: %w", err)
	}
	if key == nil {
		return nil, errors.New("binding without key")
	}
	value, err := decodeNode(env.Value)
	if err != nil {
		return nil, fmt.Errorf("value of %s: %w", key.Literal, err)
	}
	return &IdentifierPairedExpression{TokenRange: env.TokenRange, Key: key, Value: value}, nil
}

func decodeMemberFromEnvelope(env envelope) (*SectionMember, error) {
	if env.Kind != NodeKindSectionMember {
		return nil, fmt.Errorf("expected %s, got %q", NodeKindSectionMember, env.Kind)
	}
	var pair *IdentifierPairedExpression
	if !isNull(env.NamePairedExpression) {
		var inner envelope
		if err := json.Unmarshal(env.NamePairedExpression, &inner); err != nil {
			return nil, err
		}
		if !isPairKind(inner.Kind) {
			return &SectionMember{TokenRange: env.TokenRange, IsShared: env.IsShared}, nil
		}
		decoded, err := decodePairFromEnvelope(inner)
		if err != nil {
			return nil, err
		}
		pair = decoded
	}
	return &SectionMember{TokenRange: env.TokenRange, IsShared: env.IsShared, NamePairedExpression: pair}, nil
}

func decodeSection(env envelope) (*Section, error) {
	name, err := decodeIdentifier(env.Name)
	if err != nil {
		return nil, fmt.Errorf("section name: %w", err)
	}
	members := make([]*SectionMember, 0, len(env.Members))
	for i, raw := range env.Members {
		var inner envelope
		if err := json.Unmarshal(raw, &inner); err != nil {
			return nil, fmt.Errorf("member %d: %w", i, err)
		}
		if inner.Kind != NodeKindSectionMember {
			continue
		}
		member, err := decodeMemberFromEnvelope(inner)
		if err != nil {
			return nil, fmt.Errorf("member %d: %w", i, err)
		}
		members = append(members, member)
	}
	return &Section{TokenRange: env.TokenRange, Name: name, Members: members}, nil
}

func decodeFunction(env envelope) (*FunctionExpression, error) {
	params := make([]Parameter, 0, len(env.Parameters))
	for i, raw := range env.Parameters {
		name, err := decodeIdentifier(raw.Name)
		if err != nil {
			return nil, fmt.Errorf("parameter %d: %w", i, err)
		}
		params = append(params, Parameter{Name: name, IsOptional: raw.IsOptional, TypeName: raw.TypeName})
	}
	body, err := decodeNode(env.Body)
	if err != nil {
		return nil, fmt.Errorf("function body: %w", err)
	}
	return &FunctionExpression{TokenRange: env.TokenRange, Parameters: params, ReturnType: env.ReturnType, Body: body}, nil
}

// decodeInvoke accepts the callee either as a plain string or as a node; only
// identifier callees yield a name.
func decodeInvoke(env envelope) (*InvokeExpression, error) {
	args, err := decodeNodes(env.Args)
	if err != nil {
		return nil, fmt.Errorf("invoke args: %w", err)
	}
	name, err := decodeCalleeName(env.Name)
	if err != nil {
		return nil, fmt.Errorf("invoke name: %w", err)
	}
	return &InvokeExpression{TokenRange: env.TokenRange, Name: name, Arguments: env.Arguments, Args: args}, nil
}

func decodeCalleeName(raw json.RawMessage) (string, error) {
	if isNull(raw) {
		return "", nil
	}
	var name string
	if err := json.Unmarshal(raw, &name); err == nil {
		return name, nil
	}
	node, err := decodeNode(raw)
	if err != nil {
		return "", err
	}
	switch callee := node.(type) {
	case *Identifier:
		return callee.Literal, nil
	case *IdentifierExpression:
		if callee.Identifier != nil {
			return callee.Identifier.Literal, nil
		}
	}
	return "", nil
}

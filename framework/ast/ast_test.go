package ast

import (
	"context"
	"errors"
	"testing"
)

func rng(line, start, end int) TokenRange {
	return TokenRange{
		PositionStart: TokenPosition{LineNumber: line, LineCodeUnit: start},
		PositionEnd:   TokenPosition{LineNumber: line, LineCodeUnit: end},
	}
}

type stubParser struct {
	language string
}

func (s *stubParser) Parse(_ context.Context, _ string) (*ParseResult, error) {
	return &ParseResult{Root: &LetExpression{}}, nil
}

func (s *stubParser) Language() string { return s.language }

func TestParserRegistry(t *testing.T) {
	registry := NewParserRegistry()
	registry.Register(&stubParser{language: "powerquery"})
	registry.Register(&stubParser{language: "custom"})
	registry.Register(nil)
	if _, ok := registry.GetParser("custom"); !ok {
		t.Fatal("expected parser to be registered")
	}
	if _, ok := registry.GetParser("missing"); ok {
		t.Fatal("unexpected parser for unregistered language")
	}
	supported := registry.SupportedLanguages()
	if len(supported) != 2 || supported[0] != "custom" || supported[1] != "powerquery" {
		t.Fatalf("unexpected supported languages: %v", supported)
	}
}

func TestTokenRangeContains(t *testing.T) {
	outer := TokenRange{
		PositionStart: TokenPosition{LineNumber: 1, LineCodeUnit: 4},
		PositionEnd:   TokenPosition{LineNumber: 3, LineCodeUnit: 2},
	}
	if !outer.Contains(rng(2, 0, 80)) {
		t.Fatal("expected middle line to be contained")
	}
	if !outer.Contains(outer) {
		t.Fatal("range should contain itself")
	}
	if outer.Contains(rng(1, 2, 6)) {
		t.Fatal("range starting before outer start must not be contained")
	}
	if outer.Contains(rng(3, 0, 3)) {
		t.Fatal("range ending after outer end must not be contained")
	}
	if !outer.ContainsPosition(TokenPosition{LineNumber: 3, LineCodeUnit: 2}) {
		t.Fatal("end position is inclusive")
	}
}

const letDocument = `{
  "kind": "LetExpression",
  "tokenRange": {"positionStart": {"lineNumber": 0, "lineCodeUnit": 0}, "positionEnd": {"lineNumber": 3, "lineCodeUnit": 5}},
  "variables": [
    {
      "kind": "IdentifierPairedExpression",
      "tokenRange": {"positionStart": {"lineNumber": 1, "lineCodeUnit": 4}, "positionEnd": {"lineNumber": 1, "lineCodeUnit": 9}},
      "key": {"kind": "Identifier", "literal": "a", "tokenRange": {"positionStart": {"lineNumber": 1, "lineCodeUnit": 4}, "positionEnd": {"lineNumber": 1, "lineCodeUnit": 5}}},
      "value": {"kind": "LiteralExpression", "literal": "1", "literalKind": "Numeric"}
    },
    {
      "kind": "IdentifierPairedExpression",
      "key": {"kind": "Identifier", "literal": "f"},
      "value": {
        "kind": "FunctionExpression",
        "parameters": [{"name": {"kind": "Identifier", "literal": "x"}, "typeName": "number"}],
        "returnType": "number",
        "body": {"kind": "ArithmeticExpression", "operator": "+",
          "left": {"kind": "IdentifierExpression", "identifier": {"kind": "Identifier", "literal": "x"}},
          "right": {"kind": "LiteralExpression", "literal": "1", "literalKind": "Numeric"}}
      }
    }
  ],
  "expression": {"kind": "IdentifierExpression", "identifier": {"kind": "Identifier", "literal": "a"}}
}`

func TestDecodeLetExpression(t *testing.T) {
	node, err := Decode([]byte(letDocument))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	let, ok := node.(*LetExpression)
	if !ok {
		t.Fatalf("expected *LetExpression, got %T", node)
	}
	if len(let.Variables) != 2 {
		t.Fatalf("expected 2 variables, got %d", len(let.Variables))
	}
	first := let.Variables[0]
	if first.Key.Literal != "a" || first.Key.TokenRange.PositionEnd.LineCodeUnit != 5 {
		t.Fatalf("unexpected first key: %#v", first.Key)
	}
	if lit, ok := first.Value.(*LiteralExpression); !ok || lit.LiteralKind != LiteralKindNumeric {
		t.Fatalf("unexpected first value: %#v", first.Value)
	}
	fn, ok := let.Variables[1].Value.(*FunctionExpression)
	if !ok {
		t.Fatalf("expected function value, got %T", let.Variables[1].Value)
	}
	if len(fn.Parameters) != 1 || fn.Parameters[0].Name.Literal != "x" || fn.ReturnType != "number" {
		t.Fatalf("unexpected parameters: %#v", fn.Parameters)
	}
	if _, ok := fn.Body.(*ArithmeticExpression); !ok {
		t.Fatalf("expected arithmetic body, got %T", fn.Body)
	}
	if let.Expression == nil || let.Expression.Kind() != NodeKindIdentifierExpression {
		t.Fatalf("unexpected let expression: %#v", let.Expression)
	}
}

func TestDecodeSection(t *testing.T) {
	doc := `{
	  "kind": "Section",
	  "name": {"kind": "Identifier", "literal": "Queries"},
	  "members": [
	    {"kind": "SectionMember", "isShared": true, "namePairedExpression": {
	      "kind": "IdentifierPairedExpression",
	      "key": {"kind": "Identifier", "literal": "Source"},
	      "value": {"kind": "RecordExpression", "fields": [
	        {"kind": "IdentifierPairedExpression", "key": {"kind": "Identifier", "literal": "x"}, "value": {"kind": "Constant", "literal": "null"}}
	      ]}
	    }},
	    {"kind": "SectionMember"}
	  ]
	}`
	node, err := Decode([]byte(doc))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	section, ok := node.(*Section)
	if !ok {
		t.Fatalf("expected *Section, got %T", node)
	}
	if section.Name == nil || section.Name.Literal != "Queries" {
		t.Fatalf("unexpected section name: %#v", section.Name)
	}
	if len(section.Members) != 2 || !section.Members[0].IsShared {
		t.Fatalf("unexpected members: %#v", section.Members)
	}
	bindings := section.Bindings()
	if len(bindings) != 1 || bindings[0].Key.Literal != "Source" {
		t.Fatalf("expected only the named member, got %#v", bindings)
	}
	record, ok := bindings[0].Value.(*RecordExpression)
	if !ok || len(record.Bindings()) != 1 {
		t.Fatalf("expected record with one field, got %#v", bindings[0].Value)
	}
}

func TestDecodeInvokeCallee(t *testing.T) {
	cases := []struct {
		doc  string
		want string
	}{
		{`{"kind": "InvokeExpression", "name": "Table.AddColumn"}`, "Table.AddColumn"},
		{`{"kind": "InvokeExpression", "name": {"kind": "Identifier", "literal": "List.Sum"}}`, "List.Sum"},
		{`{"kind": "InvokeExpression", "name": {"kind": "IdentifierExpression", "identifier": {"kind": "Identifier", "literal": "Text.From"}}}`, "Text.From"},
		{`{"kind": "InvokeExpression", "name": {"kind": "ParenthesizedExpression", "content": {"kind": "Constant", "literal": "null"}}}`, ""},
		{`{"kind": "InvokeExpression"}`, ""},
	}
	for _, tc := range cases {
		node, err := Decode([]byte(tc.doc))
		if err != nil {
			t.Fatalf("decode %s failed: %v", tc.doc, err)
		}
		invoke, ok := node.(*InvokeExpression)
		if !ok {
			t.Fatalf("expected *InvokeExpression, got %T", node)
		}
		if invoke.Name != tc.want {
			t.Fatalf("callee for %s: expected %q, got %q", tc.doc, tc.want, invoke.Name)
		}
	}
	node, _ := Decode([]byte(`{"kind": "InvokeExpression", "name": "f", "arguments": {"numArguments": 3, "positionArgumentIndex": 2}}`))
	args := node.(*InvokeExpression).Arguments
	if args == nil || args.PositionArgumentIndex != 2 || args.NumArguments != 3 {
		t.Fatalf("unexpected arguments: %#v", args)
	}
}

func TestDecodeUnknownKindIsOpaque(t *testing.T) {
	node, err := Decode([]byte(`{"kind": "TableType", "tokenRange": {"positionStart": {"lineNumber": 4}}}`))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	opaque, ok := node.(*OpaqueNode)
	if !ok {
		t.Fatalf("expected *OpaqueNode, got %T", node)
	}
	if opaque.Kind() != "TableType" || opaque.Range().PositionStart.LineNumber != 4 {
		t.Fatalf("unexpected opaque node: %#v", opaque)
	}
}

func TestDecodeRejectsUnknownLiteralKind(t *testing.T) {
	_, err := Decode([]byte(`{"kind": "LiteralExpression", "literal": "#date(2020,1,1)", "literalKind": "Date"}`))
	if !errors.Is(err, ErrUnknownLiteralKind) {
		t.Fatalf("expected ErrUnknownLiteralKind, got %v", err)
	}
	_, err = Decode([]byte(`{"kind": "LiteralExpression", "literal": "1"}`))
	if !errors.Is(err, ErrUnknownLiteralKind) {
		t.Fatalf("missing literal kind should be rejected, got %v", err)
	}
}

func TestDecodeErrors(t *testing.T) {
	if _, err := Decode([]byte("null")); err == nil {
		t.Fatal("expected error for null document")
	}
	if _, err := Decode([]byte(`{"literal": "x"}`)); err == nil {
		t.Fatal("expected error for node without kind")
	}
	if _, err := Decode([]byte(`{"kind": "LetExpression", "variables": [{"kind": "IdentifierPairedExpression"}]}`)); err == nil {
		t.Fatal("expected error for binding without key")
	}
}

func TestLiteralKindsAreValid(t *testing.T) {
	kinds := LiteralKinds()
	if len(kinds) != 6 {
		t.Fatalf("expected six literal kinds, got %d", len(kinds))
	}
	for _, kind := range kinds {
		if !kind.Valid() {
			t.Fatalf("%s should be valid", kind)
		}
	}
	if LiteralKind("Date").Valid() {
		t.Fatal("Date is not a literal kind")
	}
}

func TestDecodeGeneralizedFieldsAndForeignEntries(t *testing.T) {
	node, err := Decode([]byte(`{
  "kind": "Section",
  "members": [
    {"kind": "SectionMember", "namePairedExpression": {"kind": "IdentifierPairedExpression",
      "key": {"kind": "Identifier", "literal": "A"},
      "value": {"kind": "LiteralExpression", "literal": "1", "literalKind": "Numeric"}}},
    {"kind": "SectionMember", "namePairedExpression": {"kind": "IdentifierPairedExpression",
      "key": {"kind": "Identifier", "literal": "B"},
      "value": {"kind": "RecordExpression", "fields": [
        {"kind": "GeneralizedIdentifierPairedExpression",
         "key": {"kind": "GeneralizedIdentifier", "literal": "Column Name"},
         "value": {"kind": "LiteralExpression", "literal": "2", "literalKind": "Numeric"}},
        {"kind": "Csv", "literal": "skipped"}
      ]}}},
    {"kind": "SectionAttribute"}
  ]
}`))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	section := node.(*Section)
	bindings := section.Bindings()
	if len(bindings) != 2 || bindings[0].Key.Literal != "A" || bindings[1].Key.Literal != "B" {
		t.Fatalf("unexpected section bindings: %#v", bindings)
	}
	record, ok := bindings[1].Value.(*RecordExpression)
	if !ok {
		t.Fatalf("expected record value, got %T", bindings[1].Value)
	}
	fields := record.Bindings()
	if len(fields) != 1 || fields[0].Key.Literal != "Column Name" {
		t.Fatalf("unexpected record fields: %#v", fields)
	}

	let, err := Decode([]byte(`{"kind": "LetExpression", "variables": [{"kind": "Constant"},
  {"kind": "IdentifierPairedExpression", "key": {"kind": "Identifier", "literal": "x"}}]}`))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if vars := let.(*LetExpression).Variables; len(vars) != 1 || vars[0].Key.Literal != "x" {
		t.Fatalf("non-binding let entry should be dropped: %#v", vars)
	}
}

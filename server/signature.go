package server

import (
	"context"
	"errors"

	"go.lsp.dev/protocol"

	"github.com/lexcodex/pqlsp/framework/inspection"
	"github.com/lexcodex/pqlsp/framework/langsvc"
	"github.com/lexcodex/pqlsp/framework/library"
)

// BuildSignatureHelp resolves the invocation under the cursor and renders its
// library signature. A nil result with a nil error means no help applies:
// the cursor is not in a named call, or the callee is unknown.
func BuildSignatureHelp(ctx context.Context, lib library.Library, inspected *inspection.Inspected) (*protocol.SignatureHelp, error) {
	sc, ok := langsvc.ResolveInvocationContext(inspected)
	if !ok || lib == nil {
		return nil, nil
	}
	sig, err := lib.Lookup(ctx, sc.FunctionName)
	if errors.Is(err, library.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	info := SignatureInformation(*sig)
	info.ActiveParameter = activeParameter(sc.ArgumentOrdinal, len(sig.Parameters))
	return &protocol.SignatureHelp{
		Signatures:      []protocol.SignatureInformation{info},
		ActiveParameter: info.ActiveParameter,
	}, nil
}

// SignatureInformation renders a library signature for the client.
func SignatureInformation(sig library.FunctionSignature) protocol.SignatureInformation {
	info := protocol.SignatureInformation{Label: sig.Label()}
	if sig.Documentation != "" {
		info.Documentation = sig.Documentation
	}
	for _, p := range sig.Parameters {
		param := protocol.ParameterInformation{Label: p.Label()}
		if p.Documentation != "" {
			param.Documentation = p.Documentation
		}
		info.Parameters = append(info.Parameters, param)
	}
	return info
}

func activeParameter(ordinal *int, numParams int) uint32 {
	if ordinal == nil || *ordinal < 0 || numParams == 0 {
		return 0
	}
	if *ordinal >= numParams {
		return uint32(numParams - 1)
	}
	return uint32(*ordinal)
}

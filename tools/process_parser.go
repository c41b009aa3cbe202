package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/lexcodex/pqlsp/framework/ast"
	"github.com/lexcodex/pqlsp/framework/inspection"
)

// CommandRequest captures one external process invocation.
type CommandRequest struct {
	Workdir string
	Args    []string
	Input   string
	Timeout time.Duration
}

// CommandRunner executes a command and returns its output streams.
type CommandRunner interface {
	Run(ctx context.Context, req CommandRequest) (stdout string, stderr string, err error)
}

// LocalCommandRunner runs commands directly on the host.
type LocalCommandRunner struct{}

// Run implements CommandRunner.
func (LocalCommandRunner) Run(ctx context.Context, req CommandRequest) (string, string, error) {
	if len(req.Args) == 0 {
		return "", "", errors.New("command arguments required")
	}
	execCtx := ctx
	cancel := func() {}
	if req.Timeout > 0 {
		execCtx, cancel = context.WithTimeout(ctx, req.Timeout)
	}
	defer cancel()
	cmd := exec.CommandContext(execCtx, req.Args[0], req.Args[1:]...)
	cmd.Dir = req.Workdir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if req.Input != "" {
		cmd.Stdin = strings.NewReader(req.Input)
	}
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// ProcessParser delegates parsing and scope inspection to an external
// command. Document text is written to stdin and JSON is read from stdout.
type ProcessParser struct {
	LanguageID  string
	Command     string
	ParseArgs   []string
	InspectArgs []string
	Workdir     string
	Timeout     time.Duration
	Runner      CommandRunner
}

// parseOutput is the envelope a parse command may print. A bare node is
// accepted as well.
type parseOutput struct {
	Root   json.RawMessage  `json:"root"`
	Errors []ast.ParseError `json:"errors"`
}

// Language implements ast.Parser.
func (p *ProcessParser) Language() string {
	return p.LanguageID
}

// Parse implements ast.Parser.
func (p *ProcessParser) Parse(ctx context.Context, text string) (*ast.ParseResult, error) {
	stdout, err := p.run(ctx, p.ParseArgs, text)
	if err != nil {
		return nil, err
	}
	var out parseOutput
	if err := json.Unmarshal([]byte(stdout), &out); err != nil {
		return nil, fmt.Errorf("parser output: %w", err)
	}
	raw := out.Root
	if len(raw) == 0 {
		raw = json.RawMessage(stdout)
	}
	root, err := ast.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("parser output: %w", err)
	}
	return &ast.ParseResult{Root: root, Errors: out.Errors}, nil
}

// Inspect implements inspection.Inspector. {line}, {character} and {offset}
// in InspectArgs are replaced with the cursor position.
func (p *ProcessParser) Inspect(ctx context.Context, text string, pos ast.TokenPosition) (*inspection.Inspected, error) {
	replacer := strings.NewReplacer(
		"{line}", strconv.Itoa(pos.LineNumber),
		"{character}", strconv.Itoa(pos.LineCodeUnit),
		"{offset}", strconv.Itoa(pos.CodeUnit),
	)
	args := make([]string, len(p.InspectArgs))
	for i, arg := range p.InspectArgs {
		args[i] = replacer.Replace(arg)
	}
	stdout, err := p.run(ctx, args, text)
	if err != nil {
		return nil, err
	}
	return inspection.Decode([]byte(stdout))
}

func (p *ProcessParser) run(ctx context.Context, args []string, input string) (string, error) {
	if p.Command == "" {
		return "", errors.New("parser command not configured")
	}
	runner := p.Runner
	if runner == nil {
		runner = LocalCommandRunner{}
	}
	stdout, stderr, err := runner.Run(ctx, CommandRequest{
		Workdir: p.Workdir,
		Args:    append([]string{p.Command}, args...),
		Input:   input,
		Timeout: p.Timeout,
	})
	if err != nil {
		if msg := strings.TrimSpace(stderr); msg != "" {
			return "", fmt.Errorf("%s: %w: %s", p.Command, err, msg)
		}
		return "", fmt.Errorf("%s: %w", p.Command, err)
	}
	return stdout, nil
}

package runtime

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"time"

	"github.com/lexcodex/pqlsp/framework/library"
)

// ParserReport surfaces whether the configured parser command can be found.
type ParserReport struct {
	Command string `json:"command"`
	Path    string `json:"path,omitempty"`
	Error   string `json:"error,omitempty"`
}

// LibraryReport summarises the signature catalogues.
type LibraryReport struct {
	YAML            string   `json:"yaml,omitempty"`
	YAMLFunctions   int      `json:"yamlFunctions"`
	SQLite          string   `json:"sqlite,omitempty"`
	SQLiteFunctions int      `json:"sqliteFunctions"`
	Errors          []string `json:"errors,omitempty"`
}

// EnvironmentReport aggregates the doctor checks.
type EnvironmentReport struct {
	Workspace string        `json:"workspace"`
	Language  string        `json:"language"`
	LogPath   string        `json:"logPath,omitempty"`
	Parser    ParserReport  `json:"parser"`
	Library   LibraryReport `json:"library"`
	Timestamp time.Time     `json:"timestamp"`
}

// Healthy reports whether a parser is available and no catalogue failed to
// load.
func (r EnvironmentReport) Healthy() bool {
	return r.Parser.Error == "" && len(r.Library.Errors) == 0
}

// Diagnose inspects the runtime's configuration without starting any server.
func (rt *Runtime) Diagnose(ctx context.Context) EnvironmentReport {
	report := EnvironmentReport{
		Workspace: rt.Config.Workspace,
		Language:  rt.Config.Language,
		LogPath:   rt.Config.LogPath,
		Parser:    lookupParser(rt.Config.Parser.Command),
		Timestamp: time.Now(),
	}
	lib := LibraryReport{YAML: rt.Config.Library.YAML, SQLite: rt.Config.Library.SQLite}
	if lib.YAML != "" {
		// An absent catalogue is optional, matching New.
		mem, err := library.LoadYAML(lib.YAML)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			lib.Errors = append(lib.Errors, err.Error())
		default:
			lib.YAMLFunctions = len(mem.Signatures())
		}
	}
	if rt.Store != nil {
		if n, err := rt.Store.Count(ctx); err != nil {
			lib.Errors = append(lib.Errors, err.Error())
		} else {
			lib.SQLiteFunctions = n
		}
	}
	report.Library = lib
	return report
}

func lookupParser(command string) ParserReport {
	report := ParserReport{Command: command}
	if command == "" {
		report.Error = "parser.command not configured"
		return report
	}
	path, err := exec.LookPath(command)
	if err != nil {
		report.Error = err.Error()
		return report
	}
	report.Path = path
	return report
}

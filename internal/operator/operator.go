// Package operator implements the user-triggered commands that move text
// between the scene and CSV files: the text exporter, the translation
// importer and the animated subtitle importer. Every operator runs to
// completion and reports through a report.Log; no error or panic escapes
// Execute.
package operator

import (
	"fmt"
	"os"

	"codeberg.org/snonux/subtitlecsv/internal/report"
	"codeberg.org/snonux/subtitlecsv/internal/scene"
)

// Status is how an operator run ended
type Status string

const (
	Finished  Status = "FINISHED"
	Cancelled Status = "CANCELLED"
)

// Result summarises one Execute call
type Result struct {
	Status Status
	Count  int
	Log    *report.Log
}

// OK reports whether the operator finished
func (r Result) OK() bool {
	return r.Status == Finished
}

// Operator is a command taking a single file path
type Operator interface {
	// ID is the stable command identifier
	ID() string
	// Label is the menu text
	Label() string
	// DefaultFileName is joined with the project directory when no path is given
	DefaultFileName() string
	Execute(path string) Result
}

// Env is what every operator needs from its caller
type Env struct {
	Host    scene.Host
	Catalog *report.Catalog
	// OnReport sees each report entry as it is emitted
	OnReport func(report.Entry)
}

func (e Env) newLog() *report.Log {
	l := report.NewLog(e.Catalog)
	l.OnEntry = e.OnReport
	return l
}

// cancel is returned by operator bodies to stop with an already reported error
type cancel struct{}

func (cancel) Error() string { return "cancelled" }

// run executes body and turns errors and panics into reports
func run(env Env, body func(log *report.Log) (int, error)) (res Result) {
	log := env.newLog()
	res = Result{Status: Cancelled, Log: log}

	defer func() {
		if r := recover(); r != nil {
			log.Error(report.MsgInternalError, map[string]any{"Err": fmt.Sprint(r)})
			res = Result{Status: Cancelled, Log: log}
		}
	}()

	count, err := body(log)
	if err != nil {
		if _, reported := err.(cancel); !reported {
			log.Error(report.MsgInternalError, map[string]any{"Err": err.Error()})
		}
		return res
	}
	return Result{Status: Finished, Count: count, Log: log}
}

// readFile opens path and hands it to parse, reporting failures
func readFile[T any](log *report.Log, path string, parse func(f *os.File) (T, error)) (T, error) {
	var zero T
	f, err := os.Open(path)
	if err != nil {
		log.Error(report.MsgReadFailed, map[string]any{"Path": path, "Err": err.Error()})
		return zero, cancel{}
	}
	defer f.Close()

	v, err := parse(f)
	if err != nil {
		log.Error(report.MsgReadFailed, map[string]any{"Path": path, "Err": err.Error()})
		return zero, cancel{}
	}
	return v, nil
}

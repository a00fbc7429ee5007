package gui

import (
	"fmt"
	"sync"

	"codeberg.org/snonux/subtitlecsv/internal"
	"codeberg.org/snonux/subtitlecsv/internal/operator"
	"codeberg.org/snonux/subtitlecsv/internal/report"
	"codeberg.org/snonux/subtitlecsv/internal/scene"
	"codeberg.org/snonux/subtitlecsv/internal/scenedb"
)

// operatorFactory builds an operator bound to env
type operatorFactory func(env operator.Env) operator.Operator

// menuOperators are the operators the window offers, in menu order
var menuOperators = []operatorFactory{
	func(env operator.Env) operator.Operator { return operator.NewExportText(env) },
	func(env operator.Env) operator.Operator {
		return operator.NewImportTranslation(env, operator.DefaultTranslationOptions())
	},
	func(env operator.Env) operator.Operator {
		return operator.NewImportSubtitles(env, operator.DefaultSubtitleOptions())
	},
}

// session owns the open scene document. Operators run one at a time.
type session struct {
	mu         sync.Mutex
	projectDir string
	scenePath  string
	catalog    *report.Catalog
	scene      *scene.Memory
}

func newSession(projectDir, scenePath, locale string) *session {
	return &session{
		projectDir: projectDir,
		scenePath:  scenePath,
		catalog:    report.NewCatalog(locale),
	}
}

// open switches to the scene document at path
func (s *session) open(path string) error {
	m, err := scenedb.Load(path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.scenePath = path
	s.scene = m
	return nil
}

// ScenePath returns the path of the current scene document
func (s *session) ScenePath() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scenePath
}

// defaultPath is where the file dialog of op starts
func (s *session) defaultPath(op operator.Operator) string {
	return internal.ResolvePath(s.projectDir, "", op.DefaultFileName())
}

// describe builds an operator without a scene, for its label and default file
func (s *session) describe(newOp operatorFactory) operator.Operator {
	return newOp(operator.Env{Catalog: s.catalog})
}

// run executes the operator on path and saves the scene when an import
// finished. A cancelled run drops the in-memory scene; the next run reloads
// it from disk.
func (s *session) run(newOp operatorFactory, path string, onReport func(report.Entry)) (operator.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scene == nil {
		m, err := scenedb.Load(s.scenePath)
		if err != nil {
			return operator.Result{Status: operator.Cancelled}, err
		}
		s.scene = m
	}

	op := newOp(operator.Env{Host: s.scene, Catalog: s.catalog, OnReport: onReport})
	res := op.Execute(path)
	if !res.OK() {
		s.scene = nil
		return res, nil
	}

	if _, readOnly := op.(*operator.ExportText); readOnly {
		return res, nil
	}
	if err := scenedb.Save(s.scenePath, s.scene); err != nil {
		s.scene = nil
		return res, fmt.Errorf("failed to save scene: %w", err)
	}
	fmt.Printf("Scene saved to %s\n", s.scenePath)
	return res, nil
}

// resultSummary is what the report pane shows about a finished run
type resultSummary struct {
	status   operator.Status
	errors   int
	warnings int
}

func summarize(res operator.Result) resultSummary {
	sum := resultSummary{status: res.Status}
	if res.Log != nil {
		sum.errors = res.Log.Count(report.Error)
		sum.warnings = res.Log.Count(report.Warning)
	}
	return sum
}

// firstError returns the message of the first error entry, if any
func firstError(res operator.Result) string {
	if res.Log == nil {
		return ""
	}
	for _, e := range res.Log.Entries() {
		if e.Level == report.Error {
			return e.Message
		}
	}
	return ""
}

package gui

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"codeberg.org/snonux/subtitlecsv/internal/report"
)

// outputWriter forwards captured process output to the report pane
type outputWriter struct {
	pane     *ReportPane
	original *os.File
}

func (w *outputWriter) Write(p []byte) (int, error) {
	if w.original != nil {
		w.original.Write(p)
	}
	for _, line := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		if line != "" {
			w.pane.AddLine(line)
		}
	}
	return len(p), nil
}

// ReportPane shows operator reports and captured program output,
// oldest line first
type ReportPane struct {
	widget.BaseWidget

	content *fyne.Container
	text    *widget.Entry
	scroll  *container.Scroll
	summary *widget.Label

	mu       sync.Mutex
	lines    []string
	maxLines int

	originalStdout *os.File
	originalStderr *os.File
	stdoutPipe     *os.File
	stderrPipe     *os.File
	pumps          sync.WaitGroup
}

// NewReportPane creates an empty report pane
func NewReportPane() *ReportPane {
	p := &ReportPane{maxLines: 1000}

	p.text = widget.NewMultiLineEntry()
	p.text.Disable()
	p.text.Wrapping = fyne.TextWrapWord

	p.scroll = container.NewScroll(p.text)
	p.scroll.SetMinSize(fyne.NewSize(0, 240))

	p.summary = widget.NewLabel("No operator run yet")
	p.summary.TextStyle = fyne.TextStyle{Italic: true}

	p.content = container.NewBorder(widget.NewLabel("Reports:"), p.summary, nil, nil, p.scroll)

	p.ExtendBaseWidget(p)
	return p
}

// CreateRenderer implements fyne.Widget
func (p *ReportPane) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(p.content)
}

// AddEntry appends an operator report entry
func (p *ReportPane) AddEntry(e report.Entry) {
	p.AddLine(e.String())
}

// AddLine appends a timestamped line and scrolls to it
func (p *ReportPane) AddLine(line string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.lines = append(p.lines, fmt.Sprintf("%s %s", time.Now().Format("15:04:05"), line))
	if len(p.lines) > p.maxLines {
		p.lines = p.lines[len(p.lines)-p.maxLines:]
	}
	text := strings.Join(p.lines, "\n")

	fyne.Do(func() {
		p.text.SetText(text)
		p.scroll.ScrollToBottom()
	})
}

// SetSummary shows how the last operator run ended
func (p *ReportPane) SetSummary(label string, res resultSummary) {
	text := fmt.Sprintf("%s: %s (%d errors, %d warnings)", label, res.status, res.errors, res.warnings)
	fyne.Do(func() {
		p.summary.SetText(text)
	})
}

// Clear removes all lines
func (p *ReportPane) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.lines = p.lines[:0]
	fyne.Do(func() {
		p.text.SetText("")
	})
}

// StartCapture mirrors stdout, stderr and the log package into the pane
func (p *ReportPane) StartCapture() error {
	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		return fmt.Errorf("failed to capture stdout: %w", err)
	}
	stderrR, stderrW, err := os.Pipe()
	if err != nil {
		stdoutR.Close()
		stdoutW.Close()
		return fmt.Errorf("failed to capture stderr: %w", err)
	}

	p.originalStdout = os.Stdout
	p.originalStderr = os.Stderr
	stdout := &outputWriter{pane: p, original: p.originalStdout}
	stderr := &outputWriter{pane: p, original: p.originalStderr}

	p.stdoutPipe = stdoutW
	p.stderrPipe = stderrW
	os.Stdout = stdoutW
	os.Stderr = stderrW
	log.SetOutput(stderr)

	p.pumps.Add(2)
	go p.pump(stdoutR, stdout)
	go p.pump(stderrR, stderr)
	return nil
}

func (p *ReportPane) pump(pipe *os.File, w *outputWriter) {
	defer p.pumps.Done()
	defer pipe.Close()

	buf := make([]byte, 1024)
	for {
		n, err := pipe.Read(buf)
		if n > 0 {
			w.Write(buf[:n])
		}
		if err != nil {
			return
		}
	}
}

// StopCapture restores the original outputs and waits until the
// captured output is drained
func (p *ReportPane) StopCapture() {
	if p.originalStdout != nil {
		os.Stdout = p.originalStdout
		p.originalStdout = nil
	}
	if p.originalStderr != nil {
		os.Stderr = p.originalStderr
		p.originalStderr = nil
	}
	log.SetOutput(os.Stderr)

	for _, w := range []*os.File{p.stdoutPipe, p.stderrPipe} {
		if w != nil {
			w.Close()
		}
	}
	p.stdoutPipe, p.stderrPipe = nil, nil
	p.pumps.Wait()
}

package gui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	fynetooltip "github.com/dweymouth/fyne-tooltip"
	ttwidget "github.com/dweymouth/fyne-tooltip/widget"

	"codeberg.org/snonux/subtitlecsv/internal"
	"codeberg.org/snonux/subtitlecsv/internal/operator"
)

// Config holds GUI configuration
type Config struct {
	ProjectDir string
	ScenePath  string
	Locale     string
}

// Application represents the main GUI application
type Application struct {
	app    fyne.App
	window fyne.Window
	config *Config

	session *session
	reports *ReportPane

	sceneLabel  *widget.Label
	statusLabel *widget.Label
	opButtons   []*ttwidget.Button
	openButton  *ttwidget.Button

	wg sync.WaitGroup
}

// New creates a new GUI application
func New(config *Config) *Application {
	if config.ProjectDir == "" {
		config.ProjectDir = "."
	}
	if config.ScenePath == "" {
		config.ScenePath = filepath.Join(config.ProjectDir, internal.SceneFileName)
	}

	myApp := app.NewWithID("org.codeberg.snonux.subtitlecsv")
	myApp.SetIcon(GetAppIcon())

	a := &Application{
		app:     myApp,
		config:  config,
		session: newSession(config.ProjectDir, config.ScenePath, config.Locale),
	}
	a.setupUI()
	return a
}

// setupUI creates the main user interface
func (a *Application) setupUI() {
	a.window = a.app.NewWindow(fmt.Sprintf("SubtitleCSV v%s - Text Object CSV Tools", internal.Version))
	a.window.SetIcon(GetAppIcon())
	a.window.Resize(fyne.NewSize(800, 600))

	a.reports = NewReportPane()
	a.sceneLabel = widget.NewLabel(a.session.ScenePath())
	a.sceneLabel.Truncation = fyne.TextTruncateEllipsis
	a.statusLabel = widget.NewLabel("Ready")

	a.openButton = ttwidget.NewButtonWithIcon("", theme.FolderOpenIcon(), a.onOpenScene)
	clearButton := ttwidget.NewButtonWithIcon("", theme.ContentClearIcon(), a.reports.Clear)

	icons := []fyne.Resource{theme.UploadIcon(), theme.DownloadIcon(), theme.MediaVideoIcon()}
	buttons := container.NewVBox()
	for i, newOp := range menuOperators {
		op := a.session.describe(newOp)
		btn := ttwidget.NewButtonWithIcon(op.Label(), icons[i], func() {
			a.onOperator(newOp)
		})
		a.opButtons = append(a.opButtons, btn)
		buttons.Add(btn)
	}

	sceneRow := container.NewBorder(nil, nil, widget.NewLabel("Scene:"),
		container.NewHBox(a.openButton, clearButton), a.sceneLabel)

	content := container.NewBorder(
		container.NewVBox(sceneRow, widget.NewSeparator(), buttons, widget.NewSeparator()),
		a.statusLabel,
		nil, nil,
		a.reports,
	)

	a.window.SetContent(fynetooltip.AddWindowToolTipLayer(content, a.window.Canvas()))

	// tooltips need the layer above
	a.openButton.SetToolTip("Open another scene document")
	clearButton.SetToolTip("Clear reports")
	for i, newOp := range menuOperators {
		op := a.session.describe(newOp)
		a.opButtons[i].SetToolTip(fmt.Sprintf("%s (default: %s)", op.ID(), op.DefaultFileName()))
	}

	a.window.SetOnClosed(func() {
		a.wg.Wait()
		a.reports.StopCapture()
	})
}

// Run starts the GUI application
func (a *Application) Run() error {
	if err := a.reports.StartCapture(); err != nil {
		return err
	}
	a.window.ShowAndRun()
	return nil
}

// onOpenScene lets the user pick another scene document
func (a *Application) onOpenScene() {
	d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			a.showError(err)
			return
		}
		if reader == nil {
			return
		}
		path := reader.URI().Path()
		reader.Close()

		if err := a.session.open(path); err != nil {
			a.showError(fmt.Errorf("failed to open scene: %w", err))
			return
		}
		a.sceneLabel.SetText(path)
		a.updateStatus("Opened " + filepath.Base(path))
	}, a.window)
	d.SetFilter(storage.NewExtensionFileFilter([]string{".db"}))
	a.setDialogLocation(d, filepath.Dir(a.session.ScenePath()))
	d.Show()
}

// onOperator asks for the CSV file and runs the operator on it
func (a *Application) onOperator(newOp operatorFactory) {
	op := a.session.describe(newOp)
	start := a.session.defaultPath(op)

	if _, export := op.(*operator.ExportText); export {
		d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
			if err != nil {
				a.showError(err)
				return
			}
			if writer == nil {
				return
			}
			path := writer.URI().Path()
			writer.Close()
			a.runOperator(op.Label(), newOp, path)
		}, a.window)
		d.SetFileName(filepath.Base(start))
		d.SetFilter(storage.NewExtensionFileFilter([]string{".csv"}))
		a.setDialogLocation(d, filepath.Dir(start))
		d.Show()
		return
	}

	d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			a.showError(err)
			return
		}
		if reader == nil {
			return
		}
		path := reader.URI().Path()
		reader.Close()
		a.runOperator(op.Label(), newOp, path)
	}, a.window)
	d.SetFilter(storage.NewExtensionFileFilter([]string{".csv"}))
	a.setDialogLocation(d, filepath.Dir(start))
	d.Show()
}

// locatable is implemented by both file dialogs
type locatable interface {
	SetLocation(fyne.ListableURI)
}

func (a *Application) setDialogLocation(d locatable, dir string) {
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	if _, err := os.Stat(dir); err != nil {
		return
	}
	if lister, err := storage.ListerForURI(storage.NewFileURI(dir)); err == nil {
		d.SetLocation(lister)
	}
}

// runOperator executes in the background and reports into the pane
func (a *Application) runOperator(label string, newOp operatorFactory, path string) {
	a.setButtonsEnabled(false)
	a.updateStatus(label + "...")
	a.reports.AddLine(fmt.Sprintf("%s: %s", label, path))

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()

		res, err := a.session.run(newOp, path, a.reports.AddEntry)
		a.reports.SetSummary(label, summarize(res))

		fyne.Do(func() {
			a.setButtonsEnabled(true)
			switch {
			case err != nil:
				a.showError(err)
			case res.OK():
				a.updateStatus(fmt.Sprintf("%s: %d objects", label, res.Count))
			default:
				a.updateStatus(label + ": cancelled")
				if msg := firstError(res); msg != "" {
					dialog.ShowError(errors.New(msg), a.window)
				}
			}
		})
	}()
}

func (a *Application) setButtonsEnabled(enabled bool) {
	set := func(btn *ttwidget.Button) {
		if enabled {
			btn.Enable()
		} else {
			btn.Disable()
		}
	}
	for _, btn := range a.opButtons {
		set(btn)
	}
	set(a.openButton)
}

func (a *Application) updateStatus(message string) {
	a.statusLabel.SetText(message)
}

func (a *Application) showError(err error) {
	dialog.ShowError(err, a.window)
	a.updateStatus("Error: " + err.Error())
}

package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

const appID = "io.sketchboard.desktop"

// NewWindow lays out the toolbar above the board in a new window of a.
// shareLink, when set, is shown under the board so others can join.
func NewWindow(a fyne.App, b *BoardWidget, title, shareLink string) fyne.Window {
	w := a.NewWindow(title)
	w.Resize(fyne.NewSize(1024, 768))

	_, toolbar := NewToolbar(b, w)

	var footer fyne.CanvasObject
	if shareLink != "" {
		link := widget.NewEntry()
		link.SetText(shareLink)
		link.Disable()
		footer = container.NewBorder(nil, nil, widget.NewLabel("Share:"), nil, link)
	}

	w.SetContent(container.NewBorder(toolbar, footer, nil, nil, b))
	return w
}

// RunApp shows the board and blocks until the window is closed. onStarted
// runs once the app's event loop is up; anything that calls back into the
// board from another goroutine should be started there.
func RunApp(b *BoardWidget, title, shareLink string, onStarted func()) {
	a := app.NewWithID(appID)
	w := NewWindow(a, b, title, shareLink)
	if onStarted != nil {
		a.Lifecycle().SetOnStarted(onStarted)
	}
	w.ShowAndRun()
}

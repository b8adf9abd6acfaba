package ui

import (
	"image/color"
	"strings"

	"SketchBoard/internal/state"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

var palette = []struct {
	hex string
	c   color.NRGBA
}{
	{"#000000", color.NRGBA{A: 255}},
	{"#ff0000", color.NRGBA{R: 255, A: 255}},
	{"#00ff00", color.NRGBA{G: 255, A: 255}},
	{"#0000ff", color.NRGBA{B: 255, A: 255}},
	{"#ffff00", color.NRGBA{R: 255, G: 255, A: 255}},
}

var toolIcons = map[state.Tool]fyne.Resource{
	state.ToolPencil:    theme.DocumentCreateIcon(),
	state.ToolEraser:    theme.ContentClearIcon(),
	state.ToolRectangle: theme.CheckButtonIcon(),
	state.ToolCircle:    theme.RadioButtonIcon(),
	state.ToolText:      theme.ContentPasteIcon(),
}

// --- Custom Widget for Color Swatches ---
type colorSwatch struct {
	widget.BaseWidget
	hex      string
	Color    color.Color
	OnTapped func(hex string)
}

func newColorSwatch(hex string, c color.Color, tapped func(string)) *colorSwatch {
	s := &colorSwatch{hex: hex, Color: c, OnTapped: tapped}
	s.ExtendBaseWidget(s)
	return s
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	rect := canvas.NewRectangle(s.Color)
	rect.SetMinSize(fyne.NewSize(32, 32))

	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = color.Gray{Y: 150}
	border.StrokeWidth = 1

	return widget.NewSimpleRenderer(container.NewStack(rect, border))
}

func (s *colorSwatch) Tapped(_ *fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped(s.hex)
	}
}

// Toolbar holds the controls that change the board's tool state.
type Toolbar struct {
	board   *BoardWidget
	buttons map[state.Tool]*widget.Button
	slider  *widget.Slider
}

func NewToolbar(b *BoardWidget, win fyne.Window) (*Toolbar, fyne.CanvasObject) {
	tb := &Toolbar{board: b, buttons: make(map[state.Tool]*widget.Button)}

	toolBox := container.NewHBox()
	for _, tool := range state.Tools {
		btn := widget.NewButtonWithIcon(toolLabel(tool), toolIcons[tool], func() { tb.selectTool(tool) })
		tb.buttons[tool] = btn
		toolBox.Add(btn)
	}
	tb.highlight(b.surface.Tools().Tool)

	colorBox := container.NewHBox()
	for _, p := range palette {
		colorBox.Add(newColorSwatch(p.hex, p.c, tb.selectColor))
	}

	tb.slider = widget.NewSlider(1.0, 50.0)
	tb.slider.SetValue(b.surface.Tools().StrokeWidth)
	tb.slider.OnChanged = func(val float64) {
		if err := b.surface.SetStrokeWidth(val); err != nil {
			b.SetStatus(err.Error())
		}
	}
	sliderContainer := container.New(layout.NewGridWrapLayout(fyne.NewSize(150, 35)), tb.slider)

	clearBtn := widget.NewButtonWithIcon("Clear", theme.DeleteIcon(), b.surface.Clear)
	save := widget.NewButtonWithIcon("Save", theme.DocumentSaveIcon(), func() { ShowSaveDialog(win, b) })

	return tb, container.NewHBox(
		widget.NewLabel("Tool:"),
		toolBox,
		widget.NewSeparator(),
		widget.NewLabel("Color:"),
		colorBox,
		widget.NewSeparator(),
		widget.NewLabel("Size:"),
		sliderContainer,
		widget.NewSeparator(),
		clearBtn,
		save,
		layout.NewSpacer(),
		b.status,
	)
}

func (tb *Toolbar) selectTool(tool state.Tool) {
	if err := tb.board.surface.SetTool(tool); err != nil {
		tb.board.SetStatus(err.Error())
		return
	}
	tb.highlight(tool)
}

func (tb *Toolbar) selectColor(hex string) {
	if err := tb.board.surface.SetColor(hex); err != nil {
		tb.board.SetStatus(err.Error())
	}
}

func (tb *Toolbar) highlight(active state.Tool) {
	for tool, btn := range tb.buttons {
		if tool == active {
			btn.Importance = widget.HighImportance
		} else {
			btn.Importance = widget.MediumImportance
		}
		btn.Refresh()
	}
}

func toolLabel(t state.Tool) string {
	s := string(t)
	return strings.ToUpper(s[:1]) + s[1:]
}

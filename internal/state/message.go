package state

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	ErrMalformed    = errors.New("malformed message")
	ErrMissingField = errors.New("missing field")
	ErrTextTooLong  = errors.New("text too long")
)

// MaxTextLength caps the runes in one text placement.
const MaxTextLength = 1000

// Width is a stroke width or font size. The browser client sends the raw
// value of its size input, so a numeric string is accepted as well.
type Width float64

func (w *Width) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return fmt.Errorf("lineWidth %q: %w", s, err)
		}
		*w = Width(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*w = Width(f)
	return nil
}

// Message is one drawing operation on the wire. Stroke and shape tools carry
// start/end coordinates, the text tool carries an anchor and the text.
// ID, Site and Seq are optional so messages from the browser client decode.
type Message struct {
	ID        string   `json:"id,omitempty"`
	Site      string   `json:"site,omitempty"`
	Seq       uint64   `json:"seq,omitempty"`
	Tool      Tool     `json:"tool"`
	Color     string   `json:"color"`
	LineWidth Width    `json:"lineWidth"`
	StartX    *float64 `json:"startX,omitempty"`
	StartY    *float64 `json:"startY,omitempty"`
	EndX      *float64 `json:"endX,omitempty"`
	EndY      *float64 `json:"endY,omitempty"`
	X         *float64 `json:"x,omitempty"`
	Y         *float64 `json:"y,omitempty"`
	Text      *string  `json:"text,omitempty"`
}

func num(v float64) *float64 { return &v }

// NewSegment builds a stroke or shape message spanning start to end.
func NewSegment(tool Tool, color string, width float64, start, end Point) Message {
	return Message{
		Tool:      tool,
		Color:     color,
		LineWidth: Width(width),
		StartX:    num(start.X),
		StartY:    num(start.Y),
		EndX:      num(end.X),
		EndY:      num(end.Y),
	}
}

// NewText builds a text placement message anchored at p.
func NewText(color string, size float64, p Point, text string) Message {
	return Message{
		Tool:      ToolText,
		Color:     color,
		LineWidth: Width(size),
		X:         num(p.X),
		Y:         num(p.Y),
		Text:      &text,
	}
}

func (m Message) Start() Point { return Point{X: deref(m.StartX), Y: deref(m.StartY)} }
func (m Message) End() Point   { return Point{X: deref(m.EndX), Y: deref(m.EndY)} }
func (m Message) At() Point    { return Point{X: deref(m.X), Y: deref(m.Y)} }

func (m Message) Body() string {
	if m.Text == nil {
		return ""
	}
	return *m.Text
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// Validate checks that the message names a known tool and carries the
// fields that tool needs.
func (m Message) Validate() error {
	if _, err := ParseTool(string(m.Tool)); err != nil {
		return err
	}
	if m.Color == "" {
		return fmt.Errorf("%w: color", ErrMissingField)
	}
	if _, err := NormalizeColor(m.Color); err != nil {
		return err
	}
	if err := ValidateWidth(float64(m.LineWidth)); err != nil {
		return err
	}

	required := map[string]*float64{"x": m.X, "y": m.Y}
	if m.Tool != ToolText {
		required = map[string]*float64{
			"startX": m.StartX, "startY": m.StartY,
			"endX": m.EndX, "endY": m.EndY,
		}
	}
	for name, v := range required {
		if v == nil {
			return fmt.Errorf("%w: %s", ErrMissingField, name)
		}
	}
	if m.Tool == ToolText {
		if m.Text == nil {
			return fmt.Errorf("%w: text", ErrMissingField)
		}
		if n := utf8.RuneCountInString(*m.Text); n > MaxTextLength {
			return fmt.Errorf("%w: %d runes", ErrTextTooLong, n)
		}
	}
	return nil
}

// Decode parses and validates one wire message.
func Decode(data []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := m.Validate(); err != nil {
		return m, err
	}
	return m, nil
}

func Encode(m Message) ([]byte, error) {
	return json.Marshal(m)
}

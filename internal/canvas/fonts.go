package canvas

import (
	"log/slog"
	"math"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/goregular"
)

var (
	sourceOnce sync.Once
	source     *text.FontSource
	sourceErr  error
)

func regular() (*text.FontSource, error) {
	sourceOnce.Do(func() {
		source, sourceErr = text.NewFontSource(goregular.TTF)
	})
	return source, sourceErr
}

// maxFaces bounds the cache. Peers pick the size, so the set of sizes seen
// is not under our control.
const maxFaces = 64

// fontCache hands out one face per whole pixel size.
type fontCache struct {
	mu    sync.Mutex
	faces map[int]text.Face
}

func newFontCache() *fontCache {
	return &fontCache{faces: make(map[int]text.Face)}
}

func (fc *fontCache) face(size float64) (text.Face, error) {
	px := max(1, int(math.Round(size)))

	fc.mu.Lock()
	defer fc.mu.Unlock()

	if f, ok := fc.faces[px]; ok {
		return f, nil
	}
	src, err := regular()
	if err != nil {
		return nil, err
	}
	if len(fc.faces) >= maxFaces {
		clear(fc.faces)
	}
	f := src.Face(float64(px))
	fc.faces[px] = f
	return f, nil
}

var loggerPtr atomic.Pointer[slog.Logger]

func init() { loggerPtr.Store(slog.New(slog.DiscardHandler)) }

// SetLogger routes canvas diagnostics to l. nil silences them again.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	loggerPtr.Store(l)
}

func logger() *slog.Logger { return loggerPtr.Load() }

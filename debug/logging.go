package debug

import (
	"fmt"
	"log/slog"
	"unsafe"

	"github.com/pavanmanishd/allockit"
)

// Logging writes a debug record for every call and a warning for every
// failed allocation.
type Logging struct {
	inner  allockit.Allocator
	logger *slog.Logger
}

// NewLogging wraps inner. A nil logger uses slog.Default.
func NewLogging(inner allockit.Allocator, logger *slog.Logger) *Logging {
	if logger == nil {
		logger = slog.Default()
	}
	return &Logging{inner: inner, logger: logger.With(slog.String("component", "allocator"))}
}

func (l *Logging) Alloc(size int, align allockit.Alignment) ([]byte, error) {
	b, err := l.inner.Alloc(size, align)
	if err != nil {
		l.logger.Warn("alloc failed",
			slog.Int("size", size),
			slog.Int("align", int(align)),
			slog.Any("error", err))
		return nil, err
	}
	l.logger.Debug("alloc",
		slog.Int("size", size),
		slog.Int("align", int(align)),
		slog.String("addr", addr(b)))
	return b, nil
}

func (l *Logging) Resize(buf []byte, align allockit.Alignment, newSize int) ([]byte, bool) {
	out, ok := l.inner.Resize(buf, align, newSize)
	l.logger.Debug("resize",
		slog.String("addr", addr(buf)),
		slog.Int("old_size", len(buf)),
		slog.Int("new_size", newSize),
		slog.Bool("ok", ok))
	return out, ok
}

func (l *Logging) Free(buf []byte, align allockit.Alignment) {
	l.inner.Free(buf, align)
	l.logger.Debug("free",
		slog.String("addr", addr(buf)),
		slog.Int("size", len(buf)))
}

func addr(b []byte) string {
	return fmt.Sprintf("%#x", uintptr(unsafe.Pointer(unsafe.SliceData(b))))
}

var _ allockit.Allocator = (*Logging)(nil)

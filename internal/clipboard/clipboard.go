// Package clipboard copies formatted color strings to a clipboard.
package clipboard

import (
	"fmt"
	"sync"

	"github.com/atotto/clipboard"

	"github.com/ironsheep/color-picker-mcp/internal/picker"
)

// Sink accepts one string at a time.
type Sink interface {
	WriteText(text string) error
}

// System writes to the operating system clipboard. On Linux this needs
// xclip, xsel or wl-copy on PATH.
type System struct{}

// WriteText implements Sink.
func (System) WriteText(text string) error {
	if clipboard.Unsupported {
		return fmt.Errorf("system clipboard unsupported: no clipboard utility found")
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("failed to write clipboard: %w", err)
	}
	return nil
}

// Memory keeps the last written string in process. It is used when no
// system clipboard is available and in tests.
type Memory struct {
	mu   sync.Mutex
	text string
	n    int
}

// WriteText implements Sink.
func (m *Memory) WriteText(text string) error {
	m.mu.Lock()
	m.text = text
	m.n++
	m.mu.Unlock()
	return nil
}

// Text returns the last written string.
func (m *Memory) Text() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text
}

// Writes returns how many times WriteText was called.
func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.n
}

// New returns the sink for a config name: "system" or "memory".
func New(kind string) (Sink, error) {
	switch kind {
	case "system":
		return System{}, nil
	case "memory", "":
		return &Memory{}, nil
	}
	return nil, fmt.Errorf("unknown clipboard sink %q", kind)
}

// Copy writes the named format of rep to sink and returns the copied text.
func Copy(sink Sink, rep picker.Representation, format string) (string, error) {
	text, err := rep.Format(format)
	if err != nil {
		return "", err
	}
	if err := sink.WriteText(text); err != nil {
		return "", err
	}
	return text, nil
}

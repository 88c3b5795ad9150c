package app

import (
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"

	"github.com/philipparndt/rectdraw/internal/logger"
)

const messageTimeout = 5 * time.Second

// MessageBar shows short notices below the map. A message is cleared
// after a timeout unless a newer one replaced it.
type MessageBar struct {
	label   *widget.Label
	timeout time.Duration

	mu         sync.Mutex
	generation int
	timer      *time.Timer
}

// NewMessageBar creates an empty message bar
func NewMessageBar(timeout time.Duration) *MessageBar {
	label := widget.NewLabel("")
	label.Truncation = fyne.TextTruncateEllipsis
	return &MessageBar{label: label, timeout: timeout}
}

// Widget returns the label to place in the window
func (b *MessageBar) Widget() fyne.CanvasObject {
	return b.label
}

// Text returns the message currently shown
func (b *MessageBar) Text() string {
	return b.label.Text
}

// PushInfo implements tool.Messenger. It must be called on the UI thread.
func (b *MessageBar) PushInfo(title, message string) {
	logger.L().Info("message", "title", title, "message", message)
	b.label.SetText(title + ": " + message)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.generation++
	gen := b.generation
	if b.timer != nil {
		b.timer.Stop()
	}
	if b.timeout <= 0 {
		return
	}
	b.timer = time.AfterFunc(b.timeout, func() {
		fyne.Do(func() { b.expire(gen) })
	})
}

func (b *MessageBar) expire(gen int) {
	b.mu.Lock()
	current := gen == b.generation
	b.mu.Unlock()
	if current {
		b.label.SetText("")
	}
}

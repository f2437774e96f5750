package presentation

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// WriterPresenter prints presentation events to an io.Writer. It backs the
// one-shot CLI, where stdout stands in for the chat UI.
type WriterPresenter struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriterPresenter(w io.Writer) *WriterPresenter {
	return &WriterPresenter{w: w}
}

func (p *WriterPresenter) SendEphemeral(ctx context.Context, msg EphemeralMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, err := fmt.Fprintf(p.w, "[%s] %s\n", msg.Author, msg.Content)
	return err
}

func (p *WriterPresenter) InsertText(ctx context.Context, channelID, text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, err := fmt.Fprintln(p.w, text)
	return err
}

func (p *WriterPresenter) Notify(ctx context.Context, channelID string, notice Notice) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, err := fmt.Fprintf(p.w, "%s: %s\n", notice.Level, notice.Message)
	return err
}

package ui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

type otpAnswer struct {
	code string
	ok   bool
}

type otpRequestMsg struct {
	reply chan otpAnswer
}

// Prompter resolves the two-factor challenge through the running
// terminal program. RequestCode blocks the calling login goroutine
// until the user submits a code or cancels.
type Prompter struct {
	mu      sync.Mutex
	program *tea.Program
}

// NewPrompter creates a prompter; attach wires it to the program once
// the program exists.
func NewPrompter() *Prompter {
	return &Prompter{}
}

func (p *Prompter) attach(program *tea.Program) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.program = program
}

// RequestCode raises the challenge overlay and waits for the answer.
// Without an attached program the challenge is treated as cancelled.
func (p *Prompter) RequestCode(ctx context.Context) (string, bool) {
	p.mu.Lock()
	program := p.program
	p.mu.Unlock()

	if program == nil {
		return "", false
	}

	reply := make(chan otpAnswer, 1)
	program.Send(otpRequestMsg{reply: reply})

	select {
	case answer := <-reply:
		return answer.code, answer.ok
	case <-ctx.Done():
		return "", false
	}
}

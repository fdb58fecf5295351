// Package permission answers OS permission requests from configuration or by
// asking the user on the terminal.
package permission

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"mediakit/internal/config"
	"mediakit/internal/media"
)

// Decision is the configured answer for one permission.
type Decision string

const (
	Grant  Decision = "grant"
	Deny   Decision = "deny"
	Prompt Decision = "prompt"
)

// ParseDecision validates a configured decision. Empty means Prompt.
func ParseDecision(s string) (Decision, error) {
	switch d := Decision(strings.ToLower(strings.TrimSpace(s))); d {
	case Grant, Deny, Prompt:
		return d, nil
	case "":
		return Prompt, nil
	default:
		return "", fmt.Errorf("unknown permission decision: %q", s)
	}
}

// Policy implements media.Permissions from a decision table. Prompt decisions
// are delegated to the prompter and remembered, the way the OS remembers a
// user's answer.
type Policy struct {
	decisions map[media.Permission]Decision
	prompter  *Prompter

	mu      sync.Mutex
	answers map[media.Permission]bool
}

// Compile-time check that Policy implements media.Permissions interface
var _ media.Permissions = (*Policy)(nil)

// NewPolicy creates a Policy. prompter may be nil, in which case Prompt
// decisions are denied.
func NewPolicy(decisions map[media.Permission]Decision, prompter *Prompter) *Policy {
	return &Policy{
		decisions: decisions,
		prompter:  prompter,
		answers:   make(map[media.Permission]bool),
	}
}

func (p *Policy) Request(ctx context.Context, perm media.Permission) (bool, error) {
	switch p.decisions[perm] {
	case Grant:
		return true, nil
	case Deny:
		return false, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if granted, ok := p.answers[perm]; ok {
		return granted, nil
	}
	if p.prompter == nil {
		return false, nil
	}
	granted, err := p.prompter.Ask(ctx, perm)
	if err != nil {
		return false, err
	}
	p.answers[perm] = granted
	return granted, nil
}

// Prompter asks the user a yes/no question per permission.
type Prompter struct {
	in          *bufio.Reader
	out         io.Writer
	interactive bool
}

// NewPrompter creates a Prompter reading answers from in. When interactive
// is false every question is answered "no" without reading input.
func NewPrompter(in io.Reader, out io.Writer, interactive bool) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out, interactive: interactive}
}

var questions = map[media.Permission]string{
	media.PermissionMicrophone:   "Allow access to the microphone?",
	media.PermissionLibraryWrite: "Allow saving to the media library?",
}

// Ask prints the question for perm and reads the answer. Only "y" and "yes"
// grant.
func (p *Prompter) Ask(ctx context.Context, perm media.Permission) (bool, error) {
	if !p.interactive {
		return false, nil
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	q, ok := questions[perm]
	if !ok {
		q = fmt.Sprintf("Allow %s?", perm)
	}
	fmt.Fprintf(p.out, "%s [y/N] ", q)

	line, err := p.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("reading answer: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// NewPolicyFromConfig builds the permission policy for cfg.
func NewPolicyFromConfig(cfg config.PermissionsConfig, prompter *Prompter) (*Policy, error) {
	mic, err := ParseDecision(cfg.Microphone)
	if err != nil {
		return nil, fmt.Errorf("microphone: %w", err)
	}
	lib, err := ParseDecision(cfg.LibraryWrite)
	if err != nil {
		return nil, fmt.Errorf("library_write: %w", err)
	}
	return NewPolicy(map[media.Permission]Decision{
		media.PermissionMicrophone:   mic,
		media.PermissionLibraryWrite: lib,
	}, prompter), nil
}

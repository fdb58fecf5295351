package permission

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"mediakit/internal/config"
	"mediakit/internal/media"
)

func TestParseDecision(t *testing.T) {
	tests := []struct {
		in      string
		want    Decision
		wantErr bool
	}{
		{in: "grant", want: Grant},
		{in: " DENY ", want: Deny},
		{in: "prompt", want: Prompt},
		{in: "", want: Prompt},
		{in: "maybe", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseDecision(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDecision(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseDecision(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPolicy_StaticDecisions(t *testing.T) {
	p := NewPolicy(map[media.Permission]Decision{
		media.PermissionMicrophone:   Grant,
		media.PermissionLibraryWrite: Deny,
	}, nil)
	ctx := context.Background()

	if ok, _ := p.Request(ctx, media.PermissionMicrophone); !ok {
		t.Error("microphone denied, want granted")
	}
	if ok, _ := p.Request(ctx, media.PermissionLibraryWrite); ok {
		t.Error("library write granted, want denied")
	}
	if ok, _ := p.Request(ctx, media.Permission("camera")); ok {
		t.Error("unconfigured permission granted without a prompter")
	}
}

func TestPolicy_PromptRemembersAnswer(t *testing.T) {
	var out bytes.Buffer
	prompter := NewPrompter(strings.NewReader("yes\n"), &out, true)
	p := NewPolicy(map[media.Permission]Decision{media.PermissionMicrophone: Prompt}, prompter)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := p.Request(ctx, media.PermissionMicrophone)
		if err != nil {
			t.Fatalf("Request() error = %v", err)
		}
		if !ok {
			t.Errorf("Request() #%d = false, want true", i+1)
		}
	}
	if n := strings.Count(out.String(), "[y/N]"); n != 1 {
		t.Errorf("prompted %d times, want 1", n)
	}
	if !strings.Contains(out.String(), "microphone") {
		t.Errorf("prompt %q does not name the permission", out.String())
	}
}

func TestPrompter_Answers(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{input: "y\n", want: true},
		{input: "YES\n", want: true},
		{input: "n\n", want: false},
		{input: "\n", want: false},
		{input: "", want: false},
		{input: "y", want: true},
	}
	for _, tt := range tests {
		p := NewPrompter(strings.NewReader(tt.input), &bytes.Buffer{}, true)
		got, err := p.Ask(context.Background(), media.PermissionLibraryWrite)
		if err != nil {
			t.Fatalf("Ask(%q) error = %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("Ask(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestPrompter_NonInteractiveDenies(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("y\n"), &out, false)
	if ok, _ := p.Ask(context.Background(), media.PermissionMicrophone); ok {
		t.Error("non-interactive prompter granted permission")
	}
	if out.Len() != 0 {
		t.Errorf("non-interactive prompter wrote %q", out.String())
	}
}

func TestNewTerminalPrompter_NotATerminal(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "stdin")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	f.WriteString("y\n")
	f.Seek(0, 0)

	p := NewTerminalPrompter(f, &bytes.Buffer{})
	if ok, _ := p.Ask(context.Background(), media.PermissionMicrophone); ok {
		t.Error("prompter on a regular file granted permission")
	}
}

func TestNewPolicyFromConfig(t *testing.T) {
	if _, err := NewPolicyFromConfig(config.PermissionsConfig{Microphone: "grant", LibraryWrite: "deny"}, nil); err != nil {
		t.Errorf("NewPolicyFromConfig() error = %v", err)
	}
	if _, err := NewPolicyFromConfig(config.PermissionsConfig{Microphone: "always"}, nil); err == nil {
		t.Error("NewPolicyFromConfig() expected error for invalid decision")
	}
}

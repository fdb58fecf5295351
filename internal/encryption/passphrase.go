package encryption

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// EnvPassphrase reads the passphrase from the named environment variable,
// falling back to an interactive prompt when stdin is a terminal.
func EnvPassphrase(envVar string) PassphraseFunc {
	return func() (string, error) {
		if envVar != "" {
			if v := os.Getenv(envVar); v != "" {
				return v, nil
			}
		}
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return "", fmt.Errorf("passphrase not set in $%s and stdin is not a terminal", envVar)
		}
		return ReadPassphrase("Passphrase: ")
	}
}

// ReadPassphrase prompts on stderr and reads a passphrase without echo.
func ReadPassphrase(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return string(b), nil
}

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/akyairhashvil/roadmap/internal/util"
)

// readPassword reads a line from the terminal without echo.
var readPassword = func() ([]byte, error) {
	return term.ReadPassword(int(os.Stdin.Fd()))
}

func promptForKey(w io.Writer, prompt string) (string, error) {
	fmt.Fprint(w, prompt)
	pass, err := readPassword()
	fmt.Fprintln(w)
	return strings.TrimSpace(string(pass)), err
}

// promptNewKey asks twice for a passphrase strong enough to seal an export.
func promptNewKey(w io.Writer) (string, error) {
	pass, err := promptForKey(w, "Export passphrase: ")
	if err != nil {
		return "", err
	}
	if err := util.ValidatePassphrase(pass); err != nil {
		return "", err
	}
	confirm, err := promptForKey(w, "Confirm passphrase: ")
	if err != nil {
		return "", err
	}
	if confirm != pass {
		return "", fmt.Errorf("passphrases do not match")
	}
	return pass, nil
}

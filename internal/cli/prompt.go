package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/crypto/ssh/terminal"

	"github.com/math-2025/protected-geo/obfuscate"
)

var errNoKey = errors.New("no key has been provided")

// key returns the --key flag, or asks the user for it
func (c *CLI) key() (*obfuscate.Key, error) {
	secret := c.secret
	if secret == "" {
		var err error
		secret, err = c.readSecret("Enter the key: ")
		if err != nil {
			return nil, err
		}
	}
	key, err := obfuscate.NewKey(secret)
	if obfuscate.IsEmptyKey(err) {
		return nil, errNoKey
	}
	return key, err
}

// readSecret reads the secret without echoing it if the input is a terminal
func (c *CLI) readSecret(prompt string) (string, error) {
	fmt.Fprint(c.out, prompt)
	if f, ok := c.stdin.(*os.File); ok && terminal.IsTerminal(int(f.Fd())) {
		secret, err := terminal.ReadPassword(int(f.Fd()))
		fmt.Fprintln(c.out)
		if err != nil {
			return "", err
		}
		return string(secret), nil
	}
	line, err := c.readLine()
	fmt.Fprintln(c.out)
	return line, err
}

func (c *CLI) readLine() (string, error) {
	line, err := c.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// askForConfirmation asks the user for confirmation. The user must type in "yes" or "no" and
// then press enter. It has fuzzy matching, so "y", "Y", "yes", "YES", and "Yes" all count as
// confirmations. If the input is not recognized, it will ask again until the input runs out.
func (c *CLI) askForConfirmation(s string) bool {
	msg := fmt.Sprintf("%s [y/n]?: ", s)
	for {
		fmt.Fprint(c.out, msg)
		line, err := c.readLine()
		if err != nil {
			fmt.Fprintln(c.out)
			return false
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		case "n", "no":
			return false
		}
	}
}

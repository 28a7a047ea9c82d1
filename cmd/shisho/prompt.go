package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"shisho/internal/services/anidb"
)

// promptCredentials asks for the AniDB username and password. The password
// read is echo-free when stdin is a terminal.
func promptCredentials(in io.Reader, out io.Writer) (anidb.Credentials, error) {
	reader := bufio.NewReader(in)

	fmt.Fprint(out, "AniDB username: ")
	username, err := reader.ReadString('\n')
	if err != nil {
		return anidb.Credentials{}, fmt.Errorf("read username: %w", err)
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return anidb.Credentials{}, errors.New("username must not be empty")
	}

	fmt.Fprint(out, "AniDB password: ")
	password, err := readPassword(reader)
	if err != nil {
		return anidb.Credentials{}, fmt.Errorf("read password: %w", err)
	}
	fmt.Fprintln(out)
	if password == "" {
		return anidb.Credentials{}, errors.New("password must not be empty")
	}

	return anidb.Credentials{Username: username, Password: password}, nil
}

func readPassword(reader *bufio.Reader) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(raw)), nil
	}
	line, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

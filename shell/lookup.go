package shell

import (
	"errors"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultShells are tried in order when no explicit shell is configured.
var DefaultShells = []string{
	"/bin/zsh",
	"/usr/bin/zsh",
	"/bin/bash",
	"/usr/bin/bash",
	"/bin/sh",
}

// ErrNoShell is returned when no usable shell binary can be found.
var ErrNoShell = errors.New("no usable shell found")

// findShell picks the shell binary: the explicit override if usable,
// otherwise the first existing well-known path, otherwise the user's
// login shell from /etc/passwd.
func findShell(override string) (string, error) {
	if override != "" {
		if isExecutable(override) {
			return override, nil
		}
		return "", fmt.Errorf("%w: configured shell %q is not executable", ErrNoShell, override)
	}

	for _, candidate := range DefaultShells {
		if isExecutable(candidate) {
			return candidate, nil
		}
	}

	if u, err := user.Current(); err == nil {
		if shell := loginShell(u.Username); shell != "" && isExecutable(shell) {
			return shell, nil
		}
	}

	return "", ErrNoShell
}

// isExecutable reports whether path is a regular file with an execute bit.
func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() && info.Mode().Perm()&0o111 != 0
}

// loginShell reads the user's shell from /etc/passwd.
func loginShell(username string) string {
	data, err := os.ReadFile("/etc/passwd")
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Split(line, ":")
		if len(fields) >= 7 && fields[0] == username {
			return fields[6]
		}
	}
	return ""
}

// shellArgs returns per-shell flags that keep rc files from overriding
// the curated prompt environment.
func shellArgs(shellPath string) []string {
	switch filepath.Base(shellPath) {
	case "bash":
		return []string{"--noprofile", "--norc"}
	case "zsh":
		return []string{"--no-rcs"}
	default:
		return nil
	}
}

// buildEnv returns the curated environment for the child shell. The child
// does not inherit the parent environment; prompt decoration and theming
// are switched off so output stays within the modeled escape vocabulary.
func buildEnv(shellPath, term string, rows, cols int, extra []string) []string {
	home, _ := os.UserHomeDir()
	username := os.Getenv("USER")
	if u, err := user.Current(); err == nil {
		username = u.Username
		if home == "" {
			home = u.HomeDir
		}
	}

	env := []string{
		"PATH=/usr/local/sbin:/usr/local/bin:/usr/sbin:/usr/bin:/sbin:/bin",
		"TERM=" + term,
		"COLUMNS=" + strconv.Itoa(cols),
		"LINES=" + strconv.Itoa(rows),
		"HOME=" + home,
		"USER=" + username,
		"SHELL=" + shellPath,
		"LANG=en_US.UTF-8",
		"PS1=$ ",
		"PROMPT=$ ",
		"PROMPT_EOL_MARK=",
		"ZSH_THEME=",
		"NO_COLOR=1",
	}
	return append(env, extra...)
}

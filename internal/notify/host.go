package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

// Permission mirrors the host notification permission states.
type Permission string

const (
	PermissionDefault Permission = "default"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

// Host is the system-level notification capability. Every call is best effort.
type Host interface {
	Supported() bool
	Permission() Permission
	RequestPermission(ctx context.Context) (Permission, error)
	Show(title, body string) error
}

// NoHost is a Host without any notification capability.
type NoHost struct{}

func (NoHost) Supported() bool        { return false }
func (NoHost) Permission() Permission { return PermissionDenied }
func (NoHost) RequestPermission(context.Context) (Permission, error) {
	return PermissionDenied, nil
}
func (NoHost) Show(string, string) error { return nil }

// TerminalHost raises desktop notifications through the OSC 9 escape sequence
// understood by most terminal emulators. It is only supported on a TTY.
type TerminalHost struct {
	out        io.Writer
	fd         int
	isTerminal func(int) bool

	mu   sync.Mutex
	perm Permission
}

// NewTerminalHost targets os.Stderr.
func NewTerminalHost() *TerminalHost {
	return &TerminalHost{out: os.Stderr, fd: int(os.Stderr.Fd()), isTerminal: term.IsTerminal, perm: PermissionDefault}
}

// Supported reports whether the output is an interactive terminal.
func (h *TerminalHost) Supported() bool {
	return h.isTerminal != nil && h.isTerminal(h.fd)
}

// Permission returns the current permission state.
func (h *TerminalHost) Permission() Permission {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.perm
}

// RequestPermission grants permission whenever the terminal is available.
func (h *TerminalHost) RequestPermission(ctx context.Context) (Permission, error) {
	if err := ctx.Err(); err != nil {
		return PermissionDefault, err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.Supported() {
		h.perm = PermissionGranted
	} else {
		h.perm = PermissionDenied
	}
	return h.perm, nil
}

// Show writes the notification escape sequence.
func (h *TerminalHost) Show(title, body string) error {
	clean := strings.NewReplacer("\x1b", "", "\a", "", "\n", " ")
	_, err := fmt.Fprintf(h.out, "\x1b]9;%s: %s\a", clean.Replace(title), clean.Replace(body))
	return err
}

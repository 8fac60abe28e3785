package notify

import (
	"bytes"
	"context"
	"testing"
)

func TestTerminalHostShow(t *testing.T) {
	var buf bytes.Buffer
	h := &TerminalHost{out: &buf, isTerminal: func(int) bool { return true }, perm: PermissionDefault}
	if !h.Supported() {
		t.Fatalf("expected supported host")
	}
	perm, err := h.RequestPermission(context.Background())
	if err != nil || perm != PermissionGranted {
		t.Fatalf("RequestPermission = %s, %v", perm, err)
	}
	if err := h.Show("JULFERIIN: A", "line1\nline2"); err != nil {
		t.Fatalf("show: %v", err)
	}
	if got, want := buf.String(), "\x1b]9;JULFERIIN: A: line1 line2\a"; got != want {
		t.Fatalf("escape = %q, want %q", got, want)
	}
}

func TestTerminalHostNotTTY(t *testing.T) {
	h := &TerminalHost{out: &bytes.Buffer{}, isTerminal: func(int) bool { return false }, perm: PermissionDefault}
	if h.Supported() {
		t.Fatalf("expected unsupported host")
	}
	perm, _ := h.RequestPermission(context.Background())
	if perm != PermissionDenied {
		t.Fatalf("expected denied, got %s", perm)
	}
}

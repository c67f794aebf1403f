package output

import (
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeClipboard stands in for the system clipboard.
type fakeClipboard struct {
	mu      sync.Mutex
	content string
	history []string
	readErr error
}

func (f *fakeClipboard) read() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return "", f.readErr
	}
	return f.content, nil
}

func (f *fakeClipboard) write(s string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.content = s
	f.history = append(f.history, s)
	return nil
}

func (f *fakeClipboard) current() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.content
}

func testDesktop(autoPaste bool, clip *fakeClipboard, focus Frontmost, pastes *int) *Desktop {
	return &Desktop{
		AutoPaste: autoPaste,
		Focus:     focus,
		read:      clip.read,
		write:     clip.write,
		paste: func() error {
			*pastes++
			return nil
		},
	}
}

func TestDeliverCopyOnly(t *testing.T) {
	clip := &fakeClipboard{content: "before"}
	var pastes int
	d := testDesktop(false, clip, nil, &pastes)

	if err := d.Deliver("transcript", "origin-app"); err != nil {
		t.Fatal(err)
	}
	if clip.current() != "transcript" {
		t.Errorf("clipboard = %q, want transcript", clip.current())
	}
	if pastes != 0 {
		t.Error("copy-only mode must not synthesize a paste")
	}
}

func TestDeliverPasteAndRestore(t *testing.T) {
	clip := &fakeClipboard{content: "precious"}
	focus := &FakeFrontmost{Current: "editor"}
	var pastes int
	d := testDesktop(true, clip, focus, &pastes)

	if err := d.Deliver("transcript", "editor"); err != nil {
		t.Fatal(err)
	}
	if pastes != 1 {
		t.Errorf("pastes = %d, want 1", pastes)
	}
	if got := focus.Activations(); len(got) != 1 || got[0] != "editor" {
		t.Errorf("activations = %v, want [editor]", got)
	}
	if clip.current() != "transcript" {
		t.Errorf("clipboard right after paste = %q, want transcript", clip.current())
	}

	// The original contents come back once the keystroke has landed.
	deadline := time.Now().Add(2 * restoreDelay)
	for clip.current() != "precious" {
		if time.Now().After(deadline) {
			t.Fatalf("clipboard never restored, still %q", clip.current())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestDeliverEmptyOriginSkipsRefocus(t *testing.T) {
	clip := &fakeClipboard{}
	focus := &FakeFrontmost{}
	var pastes int
	d := testDesktop(true, clip, focus, &pastes)

	if err := d.Deliver("transcript", ""); err != nil {
		t.Fatal(err)
	}
	if len(focus.Activations()) != 0 {
		t.Error("empty origin must not trigger a refocus")
	}
	if pastes != 1 {
		t.Error("paste should still happen without an origin")
	}
}

func TestDeliverReadFailureSkipsRestore(t *testing.T) {
	clip := &fakeClipboard{readErr: errors.New("clipboard empty")}
	var pastes int
	d := testDesktop(true, clip, nil, &pastes)

	if err := d.Deliver("transcript", ""); err != nil {
		t.Fatal(err)
	}
	time.Sleep(2 * restoreDelay)
	if clip.current() != "transcript" {
		t.Errorf("clipboard = %q; nothing should have been restored", clip.current())
	}
}

func TestDeliverWriteFailure(t *testing.T) {
	clip := &fakeClipboard{}
	var pastes int
	d := testDesktop(true, clip, nil, &pastes)
	d.write = func(string) error { return errors.New("no clipboard") }

	if err := d.Deliver("transcript", ""); err == nil {
		t.Fatal("expected error when the clipboard write fails")
	}
	if pastes != 0 {
		t.Error("must not paste after a failed clipboard write")
	}
}

func TestDeliverPasteFailure(t *testing.T) {
	clip := &fakeClipboard{}
	d := &Desktop{
		AutoPaste: true,
		read:      clip.read,
		write:     clip.write,
		paste:     func() error { return errors.New("uinput missing") },
	}
	if err := d.Deliver("transcript", ""); err == nil {
		t.Fatal("expected error when the paste keystroke fails")
	}
	if clip.current() != "transcript" {
		t.Error("text should remain on the clipboard even when paste fails")
	}
}

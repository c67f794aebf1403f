//go:build darwin

package output

import (
	"sync"

	"github.com/micmonay/keybd_event"
)

var (
	kb     keybd_event.KeyBonding
	kbOnce sync.Once
	kbErr  error
)

func initKeyboard() error {
	kbOnce.Do(func() {
		kb, kbErr = keybd_event.NewKeyBonding()
	})
	return kbErr
}

func pasteKeystroke() error {
	if err := initKeyboard(); err != nil {
		return err
	}
	kb.SetKeys(keybd_event.VK_V)
	kb.HasSuper(true) // Cmd+V on macOS
	return kb.Launching()
}

// VerifyPaste checks that the keyboard event binding is initialized.
func VerifyPaste() (string, error) {
	if err := initKeyboard(); err != nil {
		return "", err
	}
	return "keyboard event binding OK (Cmd+V)", nil
}

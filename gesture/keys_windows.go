//go:build windows

package gesture

import "golang.design/x/hotkey"

func platformMods(m Modifier) []hotkey.Modifier {
	var mods []hotkey.Modifier
	if m&ModCtrl != 0 {
		mods = append(mods, hotkey.ModCtrl)
	}
	if m&ModShift != 0 {
		mods = append(mods, hotkey.ModShift)
	}
	if m&ModAlt != 0 {
		mods = append(mods, hotkey.ModAlt)
	}
	if m&ModSuper != 0 {
		mods = append(mods, hotkey.ModWin)
	}
	return mods
}

var platformKeys = map[uint16]hotkey.Key{
	KeySpace: hotkey.KeySpace,
	KeyEnter: hotkey.KeyReturn,
	KeyTab:   hotkey.KeyTab,

	letterCodes['a'-'a']: hotkey.KeyA, letterCodes['b'-'a']: hotkey.KeyB,
	letterCodes['c'-'a']: hotkey.KeyC, letterCodes['d'-'a']: hotkey.KeyD,
	letterCodes['e'-'a']: hotkey.KeyE, letterCodes['f'-'a']: hotkey.KeyF,
	letterCodes['g'-'a']: hotkey.KeyG, letterCodes['h'-'a']: hotkey.KeyH,
	letterCodes['i'-'a']: hotkey.KeyI, letterCodes['j'-'a']: hotkey.KeyJ,
	letterCodes['k'-'a']: hotkey.KeyK, letterCodes['l'-'a']: hotkey.KeyL,
	letterCodes['m'-'a']: hotkey.KeyM, letterCodes['n'-'a']: hotkey.KeyN,
	letterCodes['o'-'a']: hotkey.KeyO, letterCodes['p'-'a']: hotkey.KeyP,
	letterCodes['q'-'a']: hotkey.KeyQ, letterCodes['r'-'a']: hotkey.KeyR,
	letterCodes['s'-'a']: hotkey.KeyS, letterCodes['t'-'a']: hotkey.KeyT,
	letterCodes['u'-'a']: hotkey.KeyU, letterCodes['v'-'a']: hotkey.KeyV,
	letterCodes['w'-'a']: hotkey.KeyW, letterCodes['x'-'a']: hotkey.KeyX,
	letterCodes['y'-'a']: hotkey.KeyY, letterCodes['z'-'a']: hotkey.KeyZ,

	digitCodes[0]: hotkey.Key0, digitCodes[1]: hotkey.Key1,
	digitCodes[2]: hotkey.Key2, digitCodes[3]: hotkey.Key3,
	digitCodes[4]: hotkey.Key4, digitCodes[5]: hotkey.Key5,
	digitCodes[6]: hotkey.Key6, digitCodes[7]: hotkey.Key7,
	digitCodes[8]: hotkey.Key8, digitCodes[9]: hotkey.Key9,
}

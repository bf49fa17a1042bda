package consts

// Linux input のキーコード（input-event-codes.hより、使うものだけ）
const (
	KeyEsc          = 1
	Key1            = 2
	Key2            = 3
	Key3            = 4
	Key4            = 5
	Key5            = 6
	Key6            = 7
	Key7            = 8
	Key8            = 9
	Key9            = 10
	Key0            = 11
	KeyMinus        = 12
	KeyEqual        = 13
	KeyBackspace    = 14
	KeyTab          = 15
	KeyQ            = 16
	KeyW            = 17
	KeyE            = 18
	KeyR            = 19
	KeyT            = 20
	KeyY            = 21
	KeyU            = 22
	KeyI            = 23
	KeyO            = 24
	KeyP            = 25
	KeyLeftBrace    = 26
	KeyRightBrace   = 27
	KeyEnter        = 28
	KeyLeftCtrl     = 29
	KeyA            = 30
	KeyS            = 31
	KeyD            = 32
	KeyF            = 33
	KeyG            = 34
	KeyH            = 35
	KeyJ            = 36
	KeyK            = 37
	KeyL            = 38
	KeySemicolon    = 39
	KeyApostrophe   = 40
	KeyGrave        = 41
	KeyLeftShift    = 42
	KeyBackslash    = 43
	KeyZ            = 44
	KeyX            = 45
	KeyC            = 46
	KeyV            = 47
	KeyB            = 48
	KeyN            = 49
	KeyM            = 50
	KeyComma        = 51
	KeyDot          = 52
	KeySlash        = 53
	KeyKPAsterisk   = 55
	KeySpace        = 57
	KeyF1           = 59
	KeyF2           = 60
	KeyF3           = 61
	KeyF4           = 62
	KeyF5           = 63
	KeyF6           = 64
	KeyF7           = 65
	KeyF8           = 66
	KeyF9           = 67
	KeyF10          = 68
	KeyScrollLock   = 70
	KeyKP7          = 71
	KeyKP9          = 73
	KeyKPMinus      = 74
	KeyKPPlus       = 78
	KeyKP1          = 79
	KeyKP3          = 81
	Key102nd        = 86
	KeyF11          = 87
	KeyF12          = 88
	KeyKPEnter      = 96
	KeyRightCtrl    = 97
	KeyKPSlash      = 98
	KeyHome         = 102
	KeyUp           = 103
	KeyPageUp       = 104
	KeyLeft         = 105
	KeyRight        = 106
	KeyEnd          = 107
	KeyDown         = 108
	KeyPageDown     = 109
	KeyInsert       = 110
	KeyPause        = 119
	KeyCompose      = 127
	KeyKPLeftParen  = 179
	KeyKPRightParen = 180
)

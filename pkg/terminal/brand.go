package terminal

import "strings"

// Brand identifies a terminal emulator whose image capabilities are known
// ahead of time.
type Brand int

const (
	BrandKitty Brand = iota + 1
	BrandKonsole
	BrandIterm2
	BrandWezTerm
	BrandFoot
	BrandGhostty
	BrandMicrosoft // Windows Terminal
	BrandWarp
	BrandRio
	BrandBlackBox
	BrandVSCode
	BrandTabby
	BrandHyper
	BrandMintty
	BrandTmux
	BrandVTerm
	BrandApple // Apple Terminal.app
	BrandUrxvt
	BrandBobcat
)

// brandNames maps Brand values to human-readable strings.
var brandNames = [...]string{
	BrandKitty:     "kitty",
	BrandKonsole:   "konsole",
	BrandIterm2:    "iterm2",
	BrandWezTerm:   "wezterm",
	BrandFoot:      "foot",
	BrandGhostty:   "ghostty",
	BrandMicrosoft: "windows-terminal",
	BrandWarp:      "warp",
	BrandRio:       "rio",
	BrandBlackBox:  "blackbox",
	BrandVSCode:    "vscode",
	BrandTabby:     "tabby",
	BrandHyper:     "hyper",
	BrandMintty:    "mintty",
	BrandTmux:      "tmux",
	BrandVTerm:     "libvterm",
	BrandApple:     "apple-terminal",
	BrandUrxvt:     "urxvt",
	BrandBobcat:    "bobcat",
}

// String returns the human-readable name of the brand.
func (b Brand) String() string {
	if b > 0 && int(b) < len(brandNames) {
		return brandNames[b]
	}
	return "unknown"
}

// brandAdapters is the static capability table. Order is preference order.
var brandAdapters = map[Brand][]Adapter{
	BrandKitty:     {AdapterKgp},
	BrandKonsole:   {AdapterKgpOld},
	BrandIterm2:    {AdapterIip, AdapterSixel},
	BrandWezTerm:   {AdapterIip, AdapterSixel},
	BrandFoot:      {AdapterSixel},
	BrandGhostty:   {AdapterKgp},
	BrandMicrosoft: {AdapterSixel},
	BrandWarp:      {AdapterIip, AdapterKgpOld},
	BrandRio:       {AdapterIip, AdapterSixel},
	BrandBlackBox:  {AdapterSixel},
	BrandVSCode:    {AdapterIip, AdapterSixel},
	BrandTabby:     {AdapterIip, AdapterSixel},
	BrandHyper:     {AdapterIip, AdapterSixel},
	BrandMintty:    {AdapterIip},
	BrandBobcat:    {AdapterIip, AdapterSixel},
}

// Adapters returns the image adapters the brand supports, most preferred
// first. Brands without pixel graphics return nil.
func (b Brand) Adapters() []Adapter {
	return brandAdapters[b]
}

func (Brand) isKind() {}

// brandSignatures are substrings that identify a brand in the XTVERSION
// or device attribute responses. The first match wins, so entries that
// could appear inside another terminal's reply (tmux reports itself even
// when a real terminal answers too) come after the emulators.
var brandSignatures = []struct {
	sig   string
	brand Brand
}{
	{"kitty", BrandKitty},
	{"Konsole", BrandKonsole},
	{"iTerm2", BrandIterm2},
	{"WezTerm", BrandWezTerm},
	{"foot", BrandFoot},
	{"ghostty", BrandGhostty},
	{"Warp", BrandWarp},
	{"tmux ", BrandTmux},
	{"libvterm", BrandVTerm},
	{"Bobcat", BrandBobcat},
}

// BrandFromResponse looks for a known brand signature in a captured probe
// response.
func BrandFromResponse(resp string) (Brand, bool) {
	for _, s := range brandSignatures {
		if strings.Contains(resp, s.sig) {
			return s.brand, true
		}
	}
	return 0, false
}

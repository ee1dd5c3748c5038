package tui

import "strconv"

type rgb struct {
	r int
	g int
	b int
}

type palette struct {
	TitleFG    rgb
	HeaderBG   rgb
	HeaderFG   rgb
	SelectedBG rgb
	SelectedFG rgb
	LabelFG    rgb
	NoticeFG   rgb
	MetaFG     rgb
	SpinnerFG  rgb
	DisabledFG rgb
}

const (
	ansiReset = "\x1b[0m"
	ansiBold  = "\x1b[1m"
	ansiDim   = "\x1b[2m"
)

var defaultPalette = palette{
	TitleFG:    rgb{r: 122, g: 162, b: 247},
	HeaderBG:   rgb{r: 26, g: 27, b: 38},
	HeaderFG:   rgb{r: 192, g: 202, b: 245},
	SelectedBG: rgb{r: 122, g: 162, b: 247},
	SelectedFG: rgb{r: 26, g: 27, b: 38},
	LabelFG:    rgb{r: 125, g: 207, b: 255},
	NoticeFG:   rgb{r: 247, g: 118, b: 142},
	MetaFG:     rgb{r: 127, g: 133, b: 163},
	SpinnerFG:  rgb{r: 122, g: 162, b: 247},
	DisabledFG: rgb{r: 86, g: 95, b: 137},
}

var spinnerFrames = []rune{'⠋', '⠙', '⠹', '⠸', '⠼', '⠴', '⠦', '⠧', '⠇', '⠏'}

func ansiFgRGB(c rgb) string {
	return "\x1b[38;2;" + strconv.Itoa(c.r) + ";" + strconv.Itoa(c.g) + ";" + strconv.Itoa(c.b) + "m"
}

func ansiBgRGB(c rgb) string {
	return "\x1b[48;2;" + strconv.Itoa(c.r) + ";" + strconv.Itoa(c.g) + ";" + strconv.Itoa(c.b) + "m"
}

package books

// Style is the highlight color code recorded by the annotation stores.
// Values outside the known range are preserved as-is; the stores own the
// enumeration and may grow it.
type Style int

const (
	StyleUnderline Style = 0
	StyleGreen     Style = 1
	StyleBlue      Style = 2
	StyleYellow    Style = 3
	StylePink      Style = 4
	StylePurple    Style = 5
)

// String returns a display label for the style code.
func (s Style) String() string {
	switch s {
	case StyleUnderline:
		return "underline"
	case StyleGreen:
		return "green"
	case StyleBlue:
		return "blue"
	case StyleYellow:
		return "yellow"
	case StylePink:
		return "pink"
	case StylePurple:
		return "purple"
	default:
		return "unknown"
	}
}

// Package render draws assistant replies as Markdown in the terminal.
package render

// Options selects how replies look. Wrap width is not part of it: it
// changes with the terminal and is passed per render.
type Options struct {
	// Style is a built-in style name or a path to a glamour JSON file
	Style string

	EnableEmoji      bool
	PreserveNewLines bool
	TableWrap        bool
	InlineTableLinks bool
}

// DefaultOptions returns the Ads look with emoji and line breaks kept
func DefaultOptions() Options {
	return Options{
		Style:            ThemeAds,
		EnableEmoji:      true,
		PreserveNewLines: true,
		TableWrap:        true,
	}
}

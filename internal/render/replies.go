package render

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

// Reply wrap widths are clamped to this range
const (
	MinReplyWidth = 20
	MaxReplyWidth = 120
)

// ReplyRenderer renders assistant replies. Its style is fixed for the life
// of the process, so glamour renderers are pooled by wrap width alone.
// A glamour.TermRenderer must not be used by two goroutines at once.
type ReplyRenderer struct {
	opts Options

	mu    sync.Mutex
	pools map[int]*sync.Pool
}

// NewReplyRenderer creates a renderer for opts
func NewReplyRenderer(opts Options) *ReplyRenderer {
	return &ReplyRenderer{
		opts:  opts,
		pools: make(map[int]*sync.Pool),
	}
}

// Options returns the options the renderer was built with
func (r *ReplyRenderer) Options() Options {
	return r.opts
}

// ClampWidth bounds a bubble's content width to something readable
func ClampWidth(width int) int {
	switch {
	case width < MinReplyWidth:
		return MinReplyWidth
	case width > MaxReplyWidth:
		return MaxReplyWidth
	default:
		return width
	}
}

// Markdown renders content wrapped at width (after clamping)
func (r *ReplyRenderer) Markdown(content string, width int) (string, error) {
	width = ClampWidth(width)
	pool := r.pool(width)

	tr, ok := pool.Get().(*glamour.TermRenderer)
	if !ok {
		var err error
		tr, err = r.newTermRenderer(width)
		if err != nil {
			return "", err
		}
	}
	defer pool.Put(tr)

	return tr.Render(content)
}

// Reply renders a reply for display. If the style cannot be loaded the raw
// text is shown, since a reply must never be lost to a theme problem.
func (r *ReplyRenderer) Reply(content string, width int) string {
	out, err := r.Markdown(content, width)
	if err != nil {
		return content
	}
	return strings.Trim(out, "\n")
}

// Widths reports how many wrap widths have a renderer pool
func (r *ReplyRenderer) Widths() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pools)
}

func (r *ReplyRenderer) pool(width int) *sync.Pool {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.pools[width]
	if !ok {
		p = &sync.Pool{}
		r.pools[width] = p
	}
	return p
}

func (r *ReplyRenderer) newTermRenderer(width int) (*glamour.TermRenderer, error) {
	opts := []glamour.TermRendererOption{
		styleOption(r.opts.Style),
		glamour.WithWordWrap(width),
		glamour.WithTableWrap(r.opts.TableWrap),
		glamour.WithInlineTableLinks(r.opts.InlineTableLinks),
	}
	if r.opts.EnableEmoji {
		opts = append(opts, glamour.WithEmoji())
	}
	if r.opts.PreserveNewLines {
		opts = append(opts, glamour.WithPreservedNewLines())
	}
	return glamour.NewTermRenderer(opts...)
}

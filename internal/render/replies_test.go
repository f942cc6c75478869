package render

import (
	"strings"
	"sync"
	"testing"
)

func asciiRenderer() *ReplyRenderer {
	opts := DefaultOptions()
	opts.Style = ThemeASCII
	return NewReplyRenderer(opts)
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	if opts.Style != ThemeAds {
		t.Errorf("expected Style=%q, got %s", ThemeAds, opts.Style)
	}
	if !opts.EnableEmoji {
		t.Error("expected EnableEmoji=true")
	}
	if !opts.PreserveNewLines {
		t.Error("expected PreserveNewLines=true")
	}
	if !opts.TableWrap {
		t.Error("expected TableWrap=true")
	}
}

func TestClampWidth(t *testing.T) {
	tests := []struct {
		width int
		want  int
	}{
		{-4, MinReplyWidth},
		{0, MinReplyWidth},
		{MinReplyWidth - 1, MinReplyWidth},
		{MinReplyWidth, MinReplyWidth},
		{76, 76},
		{MaxReplyWidth, MaxReplyWidth},
		{MaxReplyWidth + 80, MaxReplyWidth},
	}

	for _, tt := range tests {
		if got := ClampWidth(tt.width); got != tt.want {
			t.Errorf("ClampWidth(%d) = %d, want %d", tt.width, got, tt.want)
		}
	}
}

func TestReplyRenderer_Markdown(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		width    int
		contains string
	}{
		{"heading", "# Weekly Report", 80, "Weekly"},
		{"bold", "Raise **budget** on winners", 80, "budget"},
		{"code_block", "```\nheadline: Buy Now\n```", 80, "headline"},
		{"link", "[Policy](https://support.google.com)", 80, "Policy"},
		{"multiline", "Line 1\n\nLine 2", 80, "Line"},
		{"narrow_width", "# Long heading that should wrap", 40, "Long"},
	}

	r := asciiRenderer()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			output, err := r.Markdown(tc.input, tc.width)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.Contains(output, tc.contains) {
				t.Errorf("output should contain %q, got: %s", tc.contains, output)
			}
		})
	}
}

func TestReplyRenderer_WrapsNarrowerBubbles(t *testing.T) {
	reply := strings.Repeat("Shift spend toward exact match keywords with strong conversion rates. ", 4)
	r := asciiRenderer()

	narrow, err := r.Markdown(reply, 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wide, err := r.Markdown(reply, MaxReplyWidth)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if strings.Count(narrow, "\n") <= strings.Count(wide, "\n") {
		t.Errorf("narrow bubble should wrap into more lines:\nnarrow=%q\nwide=%q", narrow, wide)
	}
}

func TestReplyRenderer_PoolsPerWidth(t *testing.T) {
	r := asciiRenderer()

	for _, width := range []int{40, 40, 80} {
		if _, err := r.Markdown("# Campaign Audit", width); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if r.Widths() != 2 {
		t.Errorf("expected 2 pooled widths, got %d", r.Widths())
	}

	// Both clamp to the minimum and share a pool
	r.Markdown("ok", 5)
	r.Markdown("ok", 10)
	if r.Widths() != 3 {
		t.Errorf("expected clamped widths to share a pool, got %d pools", r.Widths())
	}
}

func TestReplyRenderer_Concurrent(t *testing.T) {
	r := asciiRenderer()
	var wg sync.WaitGroup
	errs := make(chan error, 100)

	// The TUI and the one-shot path may render at the same time
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := r.Markdown("# Campaign Audit\n\n- CTR up 12%", 40+i%2*40); err != nil {
				errs <- err
			}
		}(i)
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent render error: %v", err)
	}
	if r.Widths() != 2 {
		t.Errorf("expected 2 pooled widths after concurrent use, got %d", r.Widths())
	}
}

func TestReplyRenderer_Emoji(t *testing.T) {
	input := "Great job :smile:"

	output, err := asciiRenderer().Markdown(input, 80)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(output, ":smile:") {
		t.Errorf("emoji should have been converted, got: %s", output)
	}

	opts := DefaultOptions()
	opts.Style = ThemeASCII
	opts.EnableEmoji = false
	output, err = NewReplyRenderer(opts).Markdown(input, 80)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(output, ":smile:") {
		t.Errorf("emoji should NOT have been converted, got: %s", output)
	}
}

func TestReplyRenderer_Reply(t *testing.T) {
	out := asciiRenderer().Reply("Use **exact match**", 60)
	if !strings.Contains(out, "exact match") {
		t.Errorf("reply should contain text, got: %q", out)
	}
	if strings.HasPrefix(out, "\n") || strings.HasSuffix(out, "\n") {
		t.Errorf("reply should be trimmed, got: %q", out)
	}
}

func TestReplyRenderer_BadStyleFallsBackToRawText(t *testing.T) {
	r := NewReplyRenderer(Options{Style: "nonexistent_style_path"})

	if _, err := r.Markdown("# Test", 80); err == nil {
		t.Error("expected error for invalid style path")
	}

	raw := "plain *text*"
	if got := r.Reply(raw, 80); got != raw {
		t.Errorf("Reply should fall back to raw text, got %q", got)
	}
}

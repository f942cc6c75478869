package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	appTitle   = "Google Ads Assistant Agent"
	appTagline = "Your senior digital marketing strategist. Analyze data, generate copy, and optimize performance."

	emptyConversationText = "Start a conversation to get marketing insights."
	loadingText           = "Strategizing..."
	inputPlaceholder      = "Ask about your ROAS, CPC, or generate new ad copy..."
)

// Profile is the static description of the assistant shown beside the chat
type Profile struct {
	Role         string
	Summary      string
	Capabilities []string
}

// DefaultProfile describes the Ads Assistant
var DefaultProfile = Profile{
	Role:    "Senior Strategist",
	Summary: "8+ years experience in performance marketing. Following strict Google Ads best practices.",
	Capabilities: []string{
		"Account Performance Audit",
		"RSA Compliant Ad Copy",
		"Search Term Optimization",
		"Weekly Performance Reports",
	},
}

// minWidthForPanel is the terminal width below which the panel is hidden
const (
	minWidthForPanel = 100
	panelWidth       = 34
)

// renderProfile renders the capability panel at the given outer width
func renderProfile(p Profile, width int) string {
	inner := width - panelStyle.GetHorizontalFrameSize()
	if inner < 10 {
		inner = 10
	}

	var sb strings.Builder
	sb.WriteString(panelTitleStyle.Render("◉ " + p.Role))
	sb.WriteString("\n")
	sb.WriteString(panelTextStyle.Width(inner).Render(p.Summary))
	sb.WriteString("\n")
	sb.WriteString(panelSectionStyle.Render("CORE CAPABILITIES"))
	for _, c := range p.Capabilities {
		sb.WriteString("\n")
		sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			panelBulletStyle.Render("• "),
			panelTextStyle.Width(inner-2).Render(c),
		))
	}

	return panelStyle.Width(width - panelStyle.GetHorizontalBorderSize()).Render(sb.String())
}

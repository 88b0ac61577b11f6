// Package render draws conversation turns for the terminal.
//
// Assistant turns are classified when they are drawn, never when they are
// stored; the same log entry therefore always renders the same way.
package render

import (
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/dmitrijs2005/barbot/internal/client/classify"
	"github.com/dmitrijs2005/barbot/internal/client/models"
)

const (
	defaultWidth = 80
	minWidth     = 20
)

// Options configure a Renderer.
type Options struct {
	// Width is the terminal width in columns.
	Width int
	// Color enables ANSI styling. Off, output is plain text with box borders.
	Color bool
}

// Renderer turns messages into printable blocks.
type Renderer struct {
	width int
	color bool

	markdown *glamour.TermRenderer
	text     lipgloss.Style

	userLabel      lipgloss.Style
	assistantLabel lipgloss.Style
	userBubble     lipgloss.Style
	assistantBox   lipgloss.Style
	title          lipgloss.Style
	subtitle       lipgloss.Style
	heading        lipgloss.Style
	errorLine      lipgloss.Style
	notice         lipgloss.Style
}

// New builds a Renderer writing for out.
func New(out io.Writer, opts Options) *Renderer {
	width := opts.Width
	if width <= 0 {
		width = defaultWidth
	}
	if width < minWidth {
		width = minWidth
	}

	re := lipgloss.NewRenderer(out)
	if !opts.Color {
		re.SetColorProfile(termenv.Ascii)
	}

	// bubbles take at most 80% of the line
	bubble := width * 4 / 5

	r := &Renderer{
		width: width,
		color: opts.Color,
		text:  re.NewStyle().Width(bubble - 4),

		userLabel:      re.NewStyle().Bold(true).Foreground(lipgloss.Color("63")),
		assistantLabel: re.NewStyle().Bold(true).Foreground(lipgloss.Color("35")),
		userBubble: re.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1),
		assistantBox: re.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1).
			Width(bubble - 2),
		title:     re.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		subtitle:  re.NewStyle().Italic(true).Foreground(lipgloss.Color("245")),
		heading:   re.NewStyle().Bold(true).Underline(true),
		errorLine: re.NewStyle().Foreground(lipgloss.Color("196")),
		notice:    re.NewStyle().Foreground(lipgloss.Color("245")),
	}

	style := "notty"
	if opts.Color {
		style = "dark"
	}
	md, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(bubble-4),
	)
	if err == nil {
		r.markdown = md
	}
	return r
}

// Message renders one turn with its speaker label. User text is shown as
// typed; assistant content goes through the classifier.
func (r *Renderer) Message(m models.Message) string {
	if m.Role == models.RoleUser {
		label := r.userLabel.Render(m.Role.DisplayName())
		body := r.userBubble.Render(r.wrap(m.Content))
		return lipgloss.PlaceHorizontal(r.width, lipgloss.Right, lipgloss.JoinVertical(lipgloss.Right, label, body))
	}

	label := r.assistantLabel.Render(m.Role.DisplayName())
	body := r.assistantBox.Render(r.Response(classify.Classify(m.Content)))
	return lipgloss.JoinVertical(lipgloss.Left, label, body)
}

// Conversation renders every turn of msgs separated by blank lines.
func (r *Renderer) Conversation(msgs []models.Message) string {
	if len(msgs) == 0 {
		return r.notice.Render("No messages yet.")
	}
	blocks := make([]string, 0, len(msgs))
	for _, m := range msgs {
		blocks = append(blocks, r.Message(m))
	}
	return strings.Join(blocks, "\n\n")
}

// Response renders a classified payload without any frame.
func (r *Renderer) Response(resp classify.Response) string {
	v := &bodyVisitor{r: r}
	resp.Accept(v)
	return strings.TrimRight(v.out.String(), "\n")
}

// Error renders an inline error line.
func (r *Renderer) Error(msg string) string {
	return r.errorLine.Render(msg)
}

// Notice renders a dimmed informational line.
func (r *Renderer) Notice(msg string) string {
	return r.notice.Render(msg)
}

func (r *Renderer) wrap(s string) string {
	return r.text.Render(s)
}

// bodyVisitor renders each classify variant.
type bodyVisitor struct {
	r   *Renderer
	out strings.Builder
}

var _ classify.Visitor = (*bodyVisitor)(nil)

func (v *bodyVisitor) VisitRecipe(rec classify.Recipe) {
	v.out.WriteString(v.r.title.Render(rec.Name))
	v.out.WriteString("\n")
	if rec.Description != "" {
		v.out.WriteString(v.r.subtitle.Render(v.r.wrap(rec.Description)))
		v.out.WriteString("\n")
	}

	v.out.WriteString("\n")
	v.out.WriteString(v.r.heading.Render("Ingredients:"))
	v.out.WriteString("\n")
	for _, ing := range rec.Ingredients {
		v.out.WriteString("  • " + ing + "\n")
	}

	v.out.WriteString("\n")
	v.out.WriteString(v.r.heading.Render("Instructions:"))
	v.out.WriteString("\n")
	for i, step := range rec.Instructions {
		v.out.WriteString("  " + strconv.Itoa(i+1) + ". " + step + "\n")
	}
}

func (v *bodyVisitor) VisitPlainText(t classify.PlainText) {
	v.out.WriteString(v.r.renderMarkdown(t.Text))
}

func (v *bodyVisitor) VisitRawText(t classify.RawText) {
	v.out.WriteString(v.r.wrap(t.Text))
}

func (v *bodyVisitor) VisitUnrecognized(u classify.UnrecognizedStructured) {
	v.out.WriteString(v.r.highlightJSON(u.Raw))
}

// renderMarkdown falls back to the text itself if glamour is unavailable.
func (r *Renderer) renderMarkdown(s string) string {
	if r.markdown == nil {
		return r.wrap(s)
	}
	out, err := r.markdown.Render(s)
	if err != nil {
		return r.wrap(s)
	}
	return strings.Trim(out, "\n")
}

func (r *Renderer) highlightJSON(code string) string {
	if !r.color {
		return code
	}

	lexer := lexers.Get("json")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := chromaStyles.Get("monokai")
	if style == nil {
		style = chromaStyles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}
	return buf.String()
}


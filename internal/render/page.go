package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/david/licita-radar/internal/dashboard"
	"github.com/david/licita-radar/internal/format"
)

//go:embed templates/dashboard.html
var templatesFS embed.FS

type Options struct {
	Title      string
	IssueHost  string
	IssueLabel string
	BannerHTML string // operator-supplied, sanitized before use
}

// Renderer turns dashboard views into HTML pages.
type Renderer struct {
	tpl        *template.Template
	title      string
	issueHost  string
	issueLabel string
	banner     template.HTML
}

type pageData struct {
	Title    string
	Banner   template.HTML
	Summary  string
	Query    string
	SortKey  string
	SortDir  string
	Headers  []HeaderCell
	Rows     []Row
	ColSpan  int
	ErrorRow template.HTML
	Version  string
}

func New(opts Options) (*Renderer, error) {
	tpl, err := template.ParseFS(templatesFS, "templates/dashboard.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse dashboard template: %w", err)
	}

	title := strings.TrimSpace(opts.Title)
	if title == "" {
		title = "Radar de oportunidades"
	}

	return &Renderer{
		tpl:        tpl,
		title:      title,
		issueHost:  opts.IssueHost,
		issueLabel: opts.IssueLabel,
		banner:     sanitizeBanner(opts.BannerHTML),
	}, nil
}

// sanitizeBanner keeps formatting and links but removes scripts, styles
// and event handlers.
func sanitizeBanner(s string) template.HTML {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	p := bluemonday.UGCPolicy()
	return template.HTML(p.Sanitize(s))
}

// IssueLinkFor returns the action-link settings for the given view.
func (r *Renderer) IssueLinkFor(v *dashboard.View) IssueLink {
	return IssueLink{Host: r.issueHost, Repo: v.Meta().Repo, Label: r.issueLabel}
}

// Page renders the dashboard for v. A view whose controller failed to load
// renders the error page instead.
func (r *Renderer) Page(w io.Writer, v *dashboard.View) error {
	if err := v.Err(); err != nil {
		return r.ErrorPage(w, err)
	}

	data := pageData{
		Title:   r.title,
		Banner:  r.banner,
		Summary: v.SummaryLine(),
		Query:   v.Query,
		SortKey: string(v.Sort.Key),
		SortDir: v.Sort.Dir.String(),
		Headers: Headers(v),
		Rows:    NewRows(v, r.IssueLinkFor(v)),
		ColSpan: len(dashboard.Columns),
		Version: v.Meta().Version,
	}
	return r.tpl.Execute(w, data)
}

// ErrorPage renders the page with a single full-width row carrying the
// error message in place of the table body.
func (r *Renderer) ErrorPage(w io.Writer, loadErr error) error {
	msg := "error desconocido"
	if loadErr != nil {
		msg = loadErr.Error()
	}

	headers := make([]HeaderCell, len(dashboard.Columns))
	for i, col := range dashboard.Columns {
		headers[i] = HeaderCell{Label: col.Label, Class: col.Class}
	}

	row := fmt.Sprintf(`<tr class="error"><td colspan="%d">%s</td></tr>`,
		len(dashboard.Columns), format.EscapeHTML(msg))

	data := pageData{
		Title:    r.title,
		Banner:   r.banner,
		Summary:  "No se pudieron cargar los datos.",
		SortKey:  string(dashboard.DefaultSort.Key),
		SortDir:  dashboard.DefaultSort.Dir.String(),
		Headers:  headers,
		ColSpan:  len(dashboard.Columns),
		ErrorRow: template.HTML(row),
	}
	return r.tpl.Execute(w, data)
}

package render

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/david/licita-radar/internal/dashboard"
	"github.com/david/licita-radar/internal/format"
	"github.com/david/licita-radar/internal/models"
)

// Row is the display form of one opportunity. It carries plain text only;
// markup is produced by the page template.
type Row struct {
	ID         string
	Title      string
	URL        string
	Buyer      string
	Score      string
	ScoreTitle string
	Reviewed   bool
	Category   string
	CompraAgil bool
	Amount     string

	PublishedAt    string
	QuestionsEndAt string
	CloseAt        string

	ActionURL string
}

// IssueLink describes where the "mark reviewed" action points.
type IssueLink struct {
	Host  string // e.g. https://github.com
	Repo  string // owner/name
	Label string
}

// URL builds the prefilled issue-creation link, or "" when either the repo
// or the opportunity id is missing.
func (l IssueLink) URL(o models.Opportunity) string {
	repo := strings.Trim(strings.TrimSpace(l.Repo), "/")
	id := strings.TrimSpace(o.ID)
	if repo == "" || id == "" {
		return ""
	}

	host := strings.TrimRight(l.Host, "/")
	if host == "" {
		host = "https://github.com"
	}
	label := l.Label
	if label == "" {
		label = "reviewed"
	}

	title := format.PlainText(o.Title)
	body := fmt.Sprintf("Marcar como revisada la oportunidad %s.\n\nTítulo: %s\nTipo: %s", id, title, format.SourceLabel(o.Source))
	if o.URL != "" {
		body += "\nEnlace: " + o.URL
	}

	v := url.Values{}
	v.Set("labels", label)
	v.Set("title", "Revisado: "+id)
	v.Set("body", body)
	return fmt.Sprintf("%s/%s/issues/new?%s", host, repo, v.Encode())
}

// NewRow maps an opportunity to its display values.
func NewRow(o models.Opportunity, link IssueLink, loc *time.Location) Row {
	r := Row{
		ID:             o.ID,
		Title:          format.PlainText(o.Title),
		URL:            strings.TrimSpace(o.URL),
		Buyer:          format.PlainText(o.Buyer),
		Score:          strconv.FormatFloat(o.Score.Float(), 'f', -1, 64),
		Reviewed:       o.Reviewed,
		Category:       format.SourceLabel(o.Source),
		CompraAgil:     o.IsCompraAgil(),
		Amount:         format.CLP(o.AmountCLP),
		PublishedAt:    format.DateTimeIn(o.PublishedAt, loc),
		QuestionsEndAt: format.DateTimeIn(o.QuestionsEndAt, loc),
		CloseAt:        format.DateTimeIn(o.CloseAt, loc),
		ActionURL:      link.URL(o),
	}
	if r.Title == "" {
		r.Title = "(sin título)"
	}
	if r.Buyer == "" {
		r.Buyer = format.Placeholder
	}
	if d := o.ScoreDetail; d != nil {
		r.ScoreTitle = scoreTitle(*d)
	}
	return r
}

func scoreTitle(d models.ScoreDetail) string {
	var b strings.Builder
	fmt.Fprintf(&b, "texto %s + monto %s",
		strconv.FormatFloat(d.TextScore, 'f', -1, 64),
		strconv.FormatFloat(d.AmountScore, 'f', -1, 64))
	for _, reason := range d.Reasons {
		b.WriteString("\n")
		b.WriteString(reason)
	}
	return b.String()
}

// NewRows maps the rows of a view in order.
func NewRows(v *dashboard.View, link IssueLink) []Row {
	rows := make([]Row, len(v.Rows))
	for i, o := range v.Rows {
		rows[i] = NewRow(o, link, v.Location())
	}
	return rows
}

// HeaderCell is one column header. Sortable headers link to the sort state
// a click would produce.
type HeaderCell struct {
	Label    string
	Class    string
	Sortable bool
	Href     string
	Active   bool
	Arrow    string
}

// Headers builds the header row for a view.
func Headers(v *dashboard.View) []HeaderCell {
	cells := make([]HeaderCell, len(dashboard.Columns))
	for i, col := range dashboard.Columns {
		cell := HeaderCell{Label: col.Label, Class: col.Class, Sortable: col.Sortable()}
		if col.Sortable() {
			cell.Href = QueryHref(v.Query, v.Sort.Toggle(col.Key))
			if col.Key == v.Sort.Key {
				cell.Active = true
				cell.Arrow = "▼"
				if v.Sort.Dir == dashboard.Asc {
					cell.Arrow = "▲"
				}
			}
		}
		cells[i] = cell
	}
	return cells
}

// QueryHref encodes a search and sort state as a relative link.
func QueryHref(query string, s dashboard.Sort) string {
	v := url.Values{}
	if q := strings.TrimSpace(query); q != "" {
		v.Set("q", q)
	}
	v.Set("sort", string(s.Key))
	v.Set("dir", s.Dir.String())
	return "?" + v.Encode()
}

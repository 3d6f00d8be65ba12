package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/david/licita-radar/internal/format"
	"github.com/david/licita-radar/internal/models"
)

// Source provides the two documents the dashboard is built from.
type Source interface {
	LoadMeta(ctx context.Context, path string) (models.Meta, error)
	LoadOpportunities(ctx context.Context, path string) ([]models.Opportunity, error)
}

// Controller owns the loaded snapshot. After Load it is read-only, so
// Apply can be called from any number of goroutines.
type Controller struct {
	meta models.Meta
	all  []models.Opportunity
	loc  *time.Location
	err  error

	loaded bool
}

// New returns an unloaded controller that displays times in loc.
func New(loc *time.Location) *Controller {
	if loc == nil {
		loc = format.Santiago
	}
	return &Controller{loc: loc}
}

// NewFromData builds a loaded controller from an in-memory snapshot.
func NewFromData(meta models.Meta, all []models.Opportunity, loc *time.Location) *Controller {
	c := New(loc)
	c.meta = meta
	c.all = all
	c.loaded = true
	return c
}

// Load fetches metadata, then opportunities. On failure the error is kept
// so the page can render it in place of the table.
func (c *Controller) Load(ctx context.Context, src Source, metaPath, opportunitiesPath string) error {
	meta, err := src.LoadMeta(ctx, metaPath)
	if err != nil {
		c.err = err
		return err
	}
	all, err := src.LoadOpportunities(ctx, opportunitiesPath)
	if err != nil {
		c.err = err
		return err
	}

	c.meta = meta
	c.all = all
	c.err = nil
	c.loaded = true
	return nil
}

func (c *Controller) Err() error {
	return c.err
}

func (c *Controller) Loaded() bool {
	return c.loaded
}

func (c *Controller) Meta() models.Meta {
	return c.meta
}

func (c *Controller) Location() *time.Location {
	return c.loc
}

// All returns a copy of the loaded rows.
func (c *Controller) All() []models.Opportunity {
	out := make([]models.Opportunity, len(c.all))
	copy(out, c.all)
	return out
}

// Initial is the view right after loading: no query, default sort.
func (c *Controller) Initial() *View {
	return c.Apply("", DefaultSort)
}

// Apply recomputes the view from the full dataset.
func (c *Controller) Apply(query string, s Sort) *View {
	if !s.Key.Valid() {
		s = DefaultSort
	}
	rows := SortOpportunities(Filter(c.all, query), s, c.loc)
	return &View{
		Query:   query,
		Sort:    s,
		Rows:    rows,
		Summary: Summarize(c.all, rows, c.meta.Counts),
		c:       c,
	}
}

// View is one filtered and sorted rendition of the snapshot.
type View struct {
	Query   string
	Sort    Sort
	Rows    []models.Opportunity
	Summary Summary

	c *Controller
}

// Search replaces the query and keeps the sort.
func (v *View) Search(query string) *View {
	return v.c.Apply(query, v.Sort)
}

// ToggleSort is a header click on the column bound to key.
func (v *View) ToggleSort(key SortKey) *View {
	if !key.Valid() {
		return v
	}
	return v.c.Apply(v.Query, v.Sort.Toggle(key))
}

func (v *View) Meta() models.Meta {
	return v.c.meta
}

func (v *View) Location() *time.Location {
	return v.c.loc
}

func (v *View) Err() error {
	return v.c.err
}

// SummaryLine is the header text for this view.
func (v *View) SummaryLine() string {
	return v.Summary.Line(v.c.meta.LastUpdateISO, v.c.loc)
}

func (v *View) String() string {
	return fmt.Sprintf("view(q=%q sort=%s %s rows=%d)", v.Query, v.Sort.Key, v.Sort.Dir, len(v.Rows))
}

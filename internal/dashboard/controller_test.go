package dashboard

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/david/licita-radar/internal/format"
	"github.com/david/licita-radar/internal/models"
)

type fakeSource struct {
	meta    models.Meta
	opps    []models.Opportunity
	metaErr error
	oppsErr error
	calls   []string
}

func (f *fakeSource) LoadMeta(ctx context.Context, path string) (models.Meta, error) {
	f.calls = append(f.calls, path)
	return f.meta, f.metaErr
}

func (f *fakeSource) LoadOpportunities(ctx context.Context, path string) ([]models.Opportunity, error) {
	f.calls = append(f.calls, path)
	return f.opps, f.oppsErr
}

func intPtr(v int) *int { return &v }

func TestController_LoadAndInitialView(t *testing.T) {
	src := &fakeSource{
		meta: models.Meta{LastUpdateISO: "2026-01-15T13:30:00Z", Repo: "acme/radar"},
		opps: []models.Opportunity{
			{ID: "b", Score: 5},
			{ID: "a", Score: 2, Source: models.SourceCompraAgil},
			{ID: "c", Score: 5},
		},
	}

	c := New(format.Santiago)
	if err := c.Load(context.Background(), src, "data/meta.json", "data/opportunities.json"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(src.calls, []string{"data/meta.json", "data/opportunities.json"}) {
		t.Fatalf("unexpected load order %v", src.calls)
	}
	if !c.Loaded() || c.Err() != nil {
		t.Fatalf("expected loaded controller, err=%v", c.Err())
	}

	v := c.Initial()
	if v.Sort != DefaultSort {
		t.Fatalf("expected default sort, got %+v", v.Sort)
	}
	if got := ids(v.Rows); !reflect.DeepEqual(got, []string{"b", "c", "a"}) {
		t.Fatalf("unexpected initial order %v", got)
	}
	if got := ids(c.All()); !reflect.DeepEqual(got, []string{"b", "a", "c"}) {
		t.Fatalf("source order changed: %v", got)
	}
}

func TestController_LoadFailureKeepsError(t *testing.T) {
	boom := errors.New("fetch data/meta.json failed: HTTP 500")
	src := &fakeSource{metaErr: boom}

	c := New(nil)
	err := c.Load(context.Background(), src, "data/meta.json", "data/opportunities.json")
	if !errors.Is(err, boom) {
		t.Fatalf("expected %v, got %v", boom, err)
	}
	if c.Loaded() {
		t.Fatal("controller must not be marked loaded")
	}
	if len(src.calls) != 1 {
		t.Fatalf("opportunities must not be fetched after meta failure, calls=%v", src.calls)
	}
	if v := c.Initial(); len(v.Rows) != 0 || v.Err() != boom {
		t.Fatalf("expected empty view carrying the error, got %v", v)
	}
}

func TestView_SearchAndToggleRecomputeFromFullData(t *testing.T) {
	c := NewFromData(models.Meta{}, []models.Opportunity{
		{ID: "1", Title: "Aseo", Score: 3},
		{ID: "2", Title: "Aseo industrial", Score: 9},
		{ID: "3", Title: "Notebooks", Score: 5},
	}, format.Santiago)

	v := c.Initial().Search("aseo")
	if got := ids(v.Rows); !reflect.DeepEqual(got, []string{"2", "1"}) {
		t.Fatalf("unexpected search result %v", got)
	}

	v = v.ToggleSort(KeyScore)
	if v.Sort != (Sort{KeyScore, Asc}) {
		t.Fatalf("expected asc after toggling active column, got %+v", v.Sort)
	}
	if got := ids(v.Rows); !reflect.DeepEqual(got, []string{"1", "2"}) {
		t.Fatalf("unexpected toggled order %v", got)
	}

	v = v.Search("")
	if got := ids(v.Rows); !reflect.DeepEqual(got, []string{"1", "3", "2"}) {
		t.Fatalf("clearing the query should restore all rows, got %v", got)
	}

	if same := v.ToggleSort("action"); same != v {
		t.Fatal("toggling a non-sortable column must not change the view")
	}
}

func TestSummarize(t *testing.T) {
	all := []models.Opportunity{
		{ID: "1", Reviewed: true},
		{ID: "2"},
		{ID: "3", Source: models.SourceCompraAgil, Reviewed: true},
		{ID: "4", Source: models.SourceCompraAgil},
		{ID: "5", Source: models.SourceCompraAgil},
	}
	view := Filter(all, "")[:3]

	s := Summarize(all, view, models.Counts{})
	want := Summary{
		Licitaciones: Tally{Known: 2, Shown: 2, Reviewed: 1},
		CompraAgil:   Tally{Known: 3, Shown: 1, Reviewed: 1},
		Total:        Tally{Known: 5, Shown: 3, Reviewed: 2},
	}
	if s != want {
		t.Fatalf("expected %+v, got %+v", want, s)
	}

	s = Summarize(all, view, models.Counts{LicitacionesTotal: intPtr(40), CompraAgilTotal: intPtr(12)})
	if s.Licitaciones.Known != 40 || s.CompraAgil.Known != 12 || s.Total.Known != 52 {
		t.Fatalf("expected precomputed totals, got %+v", s)
	}
}

func TestController_PrecomputedTotalBelowLoadedRows(t *testing.T) {
	meta := models.Meta{Counts: models.Counts{LicitacionesTotal: intPtr(1)}}
	c := NewFromData(meta, []models.Opportunity{
		{ID: "1", Reviewed: true},
		{ID: "2"},
		{ID: "3"},
		{ID: "4", Source: models.SourceCompraAgil},
	}, format.Santiago)

	v := c.Initial()
	if got := len(c.All()); got != 4 {
		t.Fatalf("expected all 4 loaded rows, got %d", got)
	}
	want := Summary{
		Licitaciones: Tally{Known: 1, Shown: 3, Reviewed: 1},
		CompraAgil:   Tally{Known: 1, Shown: 1, Reviewed: 0},
		Total:        Tally{Known: 2, Shown: 4, Reviewed: 1},
	}
	if v.Summary != want {
		t.Fatalf("precomputed total must win over the loaded count: expected %+v, got %+v", want, v.Summary)
	}
	if line := v.SummaryLine(); !strings.Contains(line, "Licitaciones: 3 de 1 (1 revisadas)") {
		t.Errorf("unexpected summary line %q", line)
	}
}

func TestSummaryLine(t *testing.T) {
	c := NewFromData(models.Meta{LastUpdateISO: "2026-01-15T13:30:00Z"}, []models.Opportunity{
		{ID: "1", Reviewed: true},
		{ID: "2", Source: models.SourceCompraAgil},
	}, format.Santiago)

	line := c.Initial().SummaryLine()
	for _, want := range []string{
		"Actualizado: 15/01/2026 10:30",
		"Licitaciones: 1 de 1 (1 revisadas)",
		"Compra Ágil: 1 de 1 (0 revisadas)",
		"Total: 2 de 2 (1 revisadas)",
	} {
		if !strings.Contains(line, want) {
			t.Errorf("summary %q missing %q", line, want)
		}
	}
}

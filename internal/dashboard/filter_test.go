package dashboard

import (
	"reflect"
	"strings"
	"testing"

	"github.com/david/licita-radar/internal/models"
)

var sampleRows = []models.Opportunity{
	{ID: "1057-12-LE26", Title: "Servicio de aseo hospitalario", Buyer: "Hospital de Temuco"},
	{ID: "2301-5-COT26", Title: "Compra de notebooks", Buyer: "Municipalidad de Ñuñoa"},
	{ID: "881-40-LP26", Title: "Mantención de ascensores", Buyer: "SERVIU Metropolitano"},
	{ID: "", Title: "", Buyer: ""},
}

func TestFilter_EmptyQueryReturnsCopyInOrder(t *testing.T) {
	for _, q := range []string{"", "   ", "\t\n"} {
		got := Filter(sampleRows, q)
		if !reflect.DeepEqual(got, sampleRows) {
			t.Fatalf("query %q: expected full dataset, got %v", q, ids(got))
		}
		if len(got) > 0 && &got[0] == &sampleRows[0] {
			t.Fatalf("query %q: expected a new slice", q)
		}
	}
}

func TestFilter_SubstringProperty(t *testing.T) {
	queries := []string{"aseo", "  HOSPITAL ", "ñuñoa", "26", "lp26", "inexistente", "notebooksMunicipalidad"}

	for _, q := range queries {
		got := Filter(sampleRows, q)
		norm := NormalizeQuery(q)

		kept := map[string]bool{}
		for _, o := range got {
			hay := strings.ToLower(o.ID + o.Title + o.Buyer)
			if !strings.Contains(hay, norm) {
				t.Errorf("query %q kept non-matching row %q", q, o.ID)
			}
			kept[o.ID+o.Title] = true
		}
		for _, o := range sampleRows {
			if kept[o.ID+o.Title] {
				continue
			}
			hay := strings.ToLower(o.ID + o.Title + o.Buyer)
			if strings.Contains(hay, norm) {
				t.Errorf("query %q dropped matching row %q", q, o.ID)
			}
		}
	}
}

func TestFilter_CaseInsensitive(t *testing.T) {
	got := Filter(sampleRows, "SERVIU")
	if len(got) != 1 || got[0].ID != "881-40-LP26" {
		t.Fatalf("unexpected result %v", ids(got))
	}

	got = Filter(sampleRows, "ÑUÑOA")
	if len(got) != 1 || got[0].ID != "2301-5-COT26" {
		t.Fatalf("unexpected result %v", ids(got))
	}
}

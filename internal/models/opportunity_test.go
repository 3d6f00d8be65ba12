package models

import (
	"encoding/json"
	"testing"
)

func TestOpportunityDecode_ToleratesMissingFields(t *testing.T) {
	raw := `[
		{"id": "1", "title": "Servicio de aseo", "score": 7, "amount_clp": 1500000, "source": "compra_agil", "reviewed": true},
		{"id": "2", "score": "4.5"},
		{"id": "3", "score": "n/a", "amount_clp": null},
		{"id": "4", "score": null},
		{}
	]`

	var opps []Opportunity
	if err := json.Unmarshal([]byte(raw), &opps); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(opps) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(opps))
	}

	tests := []struct {
		idx        int
		score      float64
		hasAmount  bool
		compraAgil bool
		reviewed   bool
	}{
		{0, 7, true, true, true},
		{1, 4.5, false, false, false},
		{2, 0, false, false, false},
		{3, 0, false, false, false},
		{4, 0, false, false, false},
	}

	for _, tt := range tests {
		o := opps[tt.idx]
		if o.Score.Float() != tt.score {
			t.Errorf("row %d: expected score %v, got %v", tt.idx, tt.score, o.Score.Float())
		}
		if (o.AmountCLP != nil) != tt.hasAmount {
			t.Errorf("row %d: expected amount present=%v", tt.idx, tt.hasAmount)
		}
		if o.IsCompraAgil() != tt.compraAgil {
			t.Errorf("row %d: expected compra agil=%v", tt.idx, tt.compraAgil)
		}
		if o.Reviewed != tt.reviewed {
			t.Errorf("row %d: expected reviewed=%v", tt.idx, tt.reviewed)
		}
	}
}

func TestMetaDecode_OptionalCounts(t *testing.T) {
	raw := `{"last_update_iso": "2026-01-10T12:00:00Z", "repo": "acme/radar", "counts": {"licitaciones_total": 40}, "version": "v0.1"}`

	var meta Meta
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if meta.Counts.LicitacionesTotal == nil || *meta.Counts.LicitacionesTotal != 40 {
		t.Fatalf("expected licitaciones_total=40, got %v", meta.Counts.LicitacionesTotal)
	}
	if meta.Counts.CompraAgilTotal != nil {
		t.Fatalf("expected compra_agil_total to be absent")
	}
	if meta.Repo != "acme/radar" || meta.Version != "v0.1" {
		t.Fatalf("unexpected meta: %+v", meta)
	}
}

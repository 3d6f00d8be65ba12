package dashboard

import (
	"fmt"
	"time"

	"github.com/david/licita-radar/internal/format"
	"github.com/david/licita-radar/internal/models"
)

// Tally counts one category.
type Tally struct {
	Known    int `json:"known"`
	Shown    int `json:"shown"`
	Reviewed int `json:"reviewed"`
}

func (t Tally) add(o Tally) Tally {
	return Tally{
		Known:    t.Known + o.Known,
		Shown:    t.Shown + o.Shown,
		Reviewed: t.Reviewed + o.Reviewed,
	}
}

type Summary struct {
	Licitaciones Tally `json:"licitaciones"`
	CompraAgil   Tally `json:"compra_agil"`
	Total        Tally `json:"total"`
}

// Summarize splits counts by category. Known totals come from the
// pipeline's precomputed counts when present and from all otherwise; Shown
// counts the current view and Reviewed counts all.
func Summarize(all, view []models.Opportunity, counts models.Counts) Summary {
	var lic, ca Tally
	var licAll, caAll int

	for _, o := range all {
		if o.IsCompraAgil() {
			caAll++
			if o.Reviewed {
				ca.Reviewed++
			}
			continue
		}
		licAll++
		if o.Reviewed {
			lic.Reviewed++
		}
	}

	for _, o := range view {
		if o.IsCompraAgil() {
			ca.Shown++
		} else {
			lic.Shown++
		}
	}

	lic.Known = licAll
	if counts.LicitacionesTotal != nil {
		lic.Known = *counts.LicitacionesTotal
	}
	ca.Known = caAll
	if counts.CompraAgilTotal != nil {
		ca.Known = *counts.CompraAgilTotal
	}

	return Summary{
		Licitaciones: lic,
		CompraAgil:   ca,
		Total:        lic.add(ca),
	}
}

// Line renders the header summary text.
func (s Summary) Line(lastUpdateISO string, loc *time.Location) string {
	return fmt.Sprintf("Actualizado: %s · Licitaciones: %s · %s: %s · Total: %s",
		format.DateTimeIn(lastUpdateISO, loc),
		s.Licitaciones.text(),
		format.LabelCompraAgil, s.CompraAgil.text(),
		s.Total.text(),
	)
}

func (t Tally) text() string {
	return fmt.Sprintf("%d de %d (%d revisadas)", t.Shown, t.Known, t.Reviewed)
}

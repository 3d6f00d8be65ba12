package dashboard

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/david/licita-radar/internal/format"
	"github.com/david/licita-radar/internal/models"
)

type SortKey string

const (
	KeyScore        SortKey = "score"
	KeyReviewed     SortKey = "reviewed"
	KeySource       SortKey = "source"
	KeyTitle        SortKey = "title"
	KeyBuyer        SortKey = "buyer"
	KeyAmount       SortKey = "amount"
	KeyPublished    SortKey = "published_at"
	KeyQuestionsEnd SortKey = "questions_end_at"
	KeyClose        SortKey = "close_at"
)

var sortKeys = map[SortKey]bool{
	KeyScore: true, KeyReviewed: true, KeySource: true, KeyTitle: true, KeyBuyer: true,
	KeyAmount: true, KeyPublished: true, KeyQuestionsEnd: true, KeyClose: true,
}

// Valid reports whether k names a sortable column.
func (k SortKey) Valid() bool {
	return sortKeys[k]
}

type Direction int

const (
	Asc  Direction = 1
	Desc Direction = -1
)

func (d Direction) String() string {
	if d == Asc {
		return "asc"
	}
	return "desc"
}

// ParseDirection accepts "asc" and "desc" in any case; anything else is Desc.
func ParseDirection(s string) Direction {
	if strings.EqualFold(strings.TrimSpace(s), "asc") {
		return Asc
	}
	return Desc
}

// Sort is the active sort column and direction.
type Sort struct {
	Key SortKey
	Dir Direction
}

var DefaultSort = Sort{Key: KeyScore, Dir: Desc}

// ParseSort builds a Sort from request values, falling back to DefaultSort
// for unknown keys.
func ParseSort(key, dir string) Sort {
	k := SortKey(strings.TrimSpace(key))
	if !k.Valid() {
		return DefaultSort
	}
	return Sort{Key: k, Dir: ParseDirection(dir)}
}

// Toggle is the header click: the active column flips direction, any other
// column starts descending.
func (s Sort) Toggle(key SortKey) Sort {
	if key == s.Key {
		return Sort{Key: key, Dir: -s.Dir}
	}
	return Sort{Key: key, Dir: Desc}
}

// Column is one table column. Columns without a Key are not sortable.
type Column struct {
	Label string
	Key   SortKey
	Class string
}

func (c Column) Sortable() bool {
	return c.Key != ""
}

// Columns declares the table layout and binds each header to its sort key.
var Columns = []Column{
	{Label: "Score", Key: KeyScore, Class: "num"},
	{Label: "Revisada", Key: KeyReviewed, Class: "center"},
	{Label: "Tipo", Key: KeySource},
	{Label: "Oportunidad", Key: KeyTitle},
	{Label: "Comprador", Key: KeyBuyer},
	{Label: "Monto", Key: KeyAmount, Class: "num"},
	{Label: "Publicación", Key: KeyPublished},
	{Label: "Fin preguntas", Key: KeyQuestionsEnd},
	{Label: "Cierre", Key: KeyClose},
	{Label: "Acción"},
}

// sortEntry caches the comparable form of a row so dates are parsed once
// per sort instead of once per comparison.
type sortEntry struct {
	opp          models.Opportunity
	score        float64
	amount       float64
	reviewed     int
	label        string
	title        string
	buyer        string
	published    int64
	questionsEnd int64
	closeAt      int64
}

func newSortEntry(o models.Opportunity, loc *time.Location) sortEntry {
	e := sortEntry{
		opp:          o,
		score:        o.Score.Float(),
		label:        strings.ToLower(format.SourceLabel(o.Source)),
		title:        strings.ToLower(o.Title),
		buyer:        strings.ToLower(o.Buyer),
		published:    format.EpochMillis(o.PublishedAt, loc),
		questionsEnd: format.EpochMillis(o.QuestionsEndAt, loc),
		closeAt:      format.EpochMillis(o.CloseAt, loc),
	}
	if o.AmountCLP != nil {
		e.amount = *o.AmountCLP
	}
	if o.Reviewed {
		e.reviewed = 1
	}
	return e
}

type sorter struct {
	coll *collate.Collator
	key  SortKey
	dir  Direction
}

func (s *sorter) primary(a, b *sortEntry) int {
	switch s.key {
	case KeyScore:
		return compareFloat(a.score, b.score)
	case KeyReviewed:
		return compareInt(int64(a.reviewed), int64(b.reviewed))
	case KeyAmount:
		return compareFloat(a.amount, b.amount)
	case KeyPublished:
		return compareInt(a.published, b.published)
	case KeyQuestionsEnd:
		return compareInt(a.questionsEnd, b.questionsEnd)
	case KeyClose:
		return compareInt(a.closeAt, b.closeAt)
	case KeySource:
		return s.coll.CompareString(a.label, b.label)
	case KeyTitle:
		return s.coll.CompareString(a.title, b.title)
	case KeyBuyer:
		return s.coll.CompareString(a.buyer, b.buyer)
	}
	return 0
}

// compare applies the direction to the primary key only; the tie-break
// chain (score desc, published desc, id asc) is fixed.
func (s *sorter) compare(a, b *sortEntry) int {
	if c := s.primary(a, b); c != 0 {
		return c * int(s.dir)
	}
	if c := compareFloat(b.score, a.score); c != 0 {
		return c
	}
	if c := compareInt(b.published, a.published); c != 0 {
		return c
	}
	return s.coll.CompareString(a.opp.ID, b.opp.ID)
}

// SortOpportunities returns a sorted copy of rows; rows is not modified.
// Dates without an offset are read in loc.
func SortOpportunities(rows []models.Opportunity, s Sort, loc *time.Location) []models.Opportunity {
	if !s.Key.Valid() {
		s = DefaultSort
	}
	if s.Dir != Asc {
		s.Dir = Desc
	}

	entries := make([]sortEntry, len(rows))
	for i, o := range rows {
		entries[i] = newSortEntry(o, loc)
	}

	// A Collator is not safe for concurrent use, so every sort gets its own.
	srt := &sorter{
		coll: collate.New(language.Spanish),
		key:  s.Key,
		dir:  s.Dir,
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return srt.compare(&entries[i], &entries[j]) < 0
	})

	out := make([]models.Opportunity, len(entries))
	for i := range entries {
		out[i] = entries[i].opp
	}
	return out
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

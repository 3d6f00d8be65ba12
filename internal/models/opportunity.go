package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// SourceCompraAgil is the source tag of the fast-track procurement category.
// Every other value, including an empty one, belongs to the default
// category (public tenders).
const SourceCompraAgil = "compra_agil"

type Opportunity struct {
	ID             string       `json:"id"`
	Title          string       `json:"title"`
	Buyer          string       `json:"buyer"`
	AmountCLP      *float64     `json:"amount_clp"`
	Score          Score        `json:"score"`
	Source         string       `json:"source"`
	PublishedAt    string       `json:"published_at"`
	QuestionsEndAt string       `json:"questions_end_at"`
	CloseAt        string       `json:"close_at"`
	URL            string       `json:"url"`
	Reviewed       bool         `json:"reviewed"`
	ScoreDetail    *ScoreDetail `json:"score_detail,omitempty"`
}

// IsCompraAgil reports whether the opportunity belongs to the fast-track category.
func (o Opportunity) IsCompraAgil() bool {
	return o.Source == SourceCompraAgil
}

// ScoreDetail is the breakdown the upstream scoring step attaches to a row.
type ScoreDetail struct {
	TextScore   float64  `json:"text_score"`
	AmountScore float64  `json:"amount_score"`
	Reasons     []string `json:"reasons"`
}

// Score is a relevance score that decodes to 0 when the feed carries null,
// a non-numeric string or any other unusable value.
type Score float64

func (s *Score) UnmarshalJSON(data []byte) error {
	*s = 0
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	if data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil
		}
		if v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
			*s = Score(v)
		}
		return nil
	}

	if v, err := strconv.ParseFloat(string(data), 64); err == nil {
		*s = Score(v)
	}
	return nil
}

func (s Score) Float() float64 {
	return float64(s)
}

type Meta struct {
	LastUpdateISO string `json:"last_update_iso"`
	Repo          string `json:"repo"`
	Counts        Counts `json:"counts"`
	Version       string `json:"version,omitempty"`
}

// Counts holds the optional aggregates precomputed by the pipeline.
// A nil field means the pipeline did not supply it.
type Counts struct {
	LicitacionesTotal     *int `json:"licitaciones_total,omitempty"`
	LicitacionesMostradas *int `json:"licitaciones_mostradas,omitempty"`
	CompraAgilTotal       *int `json:"compra_agil_total,omitempty"`
	CompraAgilMostradas   *int `json:"compra_agil_mostradas,omitempty"`
	Total                 *int `json:"total,omitempty"`
	TotalMostradas        *int `json:"total_mostradas,omitempty"`
}

package responselog

import (
	"time"

	"github.com/pavelanni/dreamroute/internal/model"
)

// Export converts the table into the JSON export structure. Answers keep the
// header's column order and skip nodes the participant never visited.
func (t Table) Export(source, flowHash string, now time.Time) model.ResponseExport {
	out := model.ResponseExport{
		ExportedAt: now,
		Source:     source,
		FlowHash:   flowHash,
		Columns:    t.Header,
		Responses:  make([]model.ResponseRecord, 0, len(t.Rows)),
	}
	nodes := t.NodeColumns()
	for _, m := range t.Maps() {
		rec := model.ResponseRecord{
			Name:      m[ColName],
			Email:     m[ColEmail],
			Timestamp: m[ColTimestamp],
			Field:     m[ColField],
		}
		for _, n := range nodes {
			if a := m[n]; a != "" {
				rec.Answers = append(rec.Answers, model.AnswerRecord{Node: n, Answer: a})
			}
		}
		out.Responses = append(out.Responses, rec)
	}
	return out
}

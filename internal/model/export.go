package model

import "time"

// ResponseExport is the top-level JSON structure for the response log export.
type ResponseExport struct {
	ExportedAt time.Time        `json:"exported_at"`
	Source     string           `json:"source"`
	FlowHash   string           `json:"flow_hash,omitempty"`
	Columns    []string         `json:"columns"`
	Responses  []ResponseRecord `json:"responses"`
}

// ResponseRecord is one completed traversal from the log.
type ResponseRecord struct {
	Name      string         `json:"student_name"`
	Email     string         `json:"student_email"`
	Timestamp string         `json:"timestamp"`
	Answers   []AnswerRecord `json:"answers"`
	Field     string         `json:"predicted_field"`
}

// AnswerRecord is the answer given at one node.
type AnswerRecord struct {
	Node   string `json:"node"`
	Answer string `json:"answer"`
}

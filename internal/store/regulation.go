package store

import "time"

// Regulation is a regulatory circular document. The store owns the schema;
// this type is a transient read-only view with best-effort field access.
type Regulation Document

// AsRegulations converts a Find result into regulation views.
func AsRegulations(docs []Document) []Regulation {
	out := make([]Regulation, len(docs))
	for i, doc := range docs {
		out[i] = Regulation(doc)
	}
	return out
}

// ID returns the document _id in textual form.
func (r Regulation) ID() string {
	return Document(r).ID()
}

// Title returns the circular title.
func (r Regulation) Title() string {
	return Document(r).String("title")
}

// Summary returns description.summary.
func (r Regulation) Summary() string {
	return Document(r).Nested("description").String("summary")
}

// AffectedEntities returns the affected_entities list.
func (r Regulation) AffectedEntities() []string {
	return Document(r).StringSlice("affected_entities")
}

// Tags returns the tags list.
func (r Regulation) Tags() []string {
	return Document(r).StringSlice("tags")
}

// RegulatorCode returns regulator.code.
func (r Regulation) RegulatorCode() string {
	return Document(r).Nested("regulator").String("code")
}

// ExtractedText returns file_content.extracted_text, the full circular body.
func (r Regulation) ExtractedText() string {
	return Document(r).Nested("file_content").String("extracted_text")
}

// ComplianceDeadline returns dates.compliance_deadline when present.
func (r Regulation) ComplianceDeadline() (time.Time, bool) {
	dates := Document(r).Nested("dates")
	if dates == nil {
		return time.Time{}, false
	}
	return dates.Time("compliance_deadline")
}

// Standards collects the distinct standard names mapped onto the
// regulation's obligations, in first-seen order.
func (r Regulation) Standards() []string {
	var out []string
	seen := make(map[string]struct{})
	for _, obligation := range Document(r).Docs("obligations") {
		for _, standard := range obligation.Docs("mapped_standards") {
			name := standard.String("standard_name")
			if name == "" {
				continue
			}
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	return out
}

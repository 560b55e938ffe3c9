package engine

import (
	"encoding/json"
	"strings"
)

// Tag is an engine tag. Tenant folders are modelled as tags.
type Tag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Workflow is the subset of an engine workflow this service reads. Raw holds
// the document exactly as the engine returned it.
type Workflow struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Active      bool            `json:"active"`
	Tags        []Tag           `json:"tags"`
	Nodes       json.RawMessage `json:"nodes,omitempty"`
	Connections json.RawMessage `json:"connections,omitempty"`
	Settings    json.RawMessage `json:"settings,omitempty"`
	Raw         json.RawMessage `json:"-"`
}

// HasTagContaining reports whether any tag name contains substr, ignoring case.
func (w *Workflow) HasTagContaining(substr string) bool {
	substr = strings.ToLower(substr)
	for _, t := range w.Tags {
		if strings.Contains(strings.ToLower(t.Name), substr) {
			return true
		}
	}
	return false
}

// ClonedWorkflow is a freshly created, inactive engine copy of a template.
type ClonedWorkflow struct {
	EngineID   string
	Definition json.RawMessage
}

type page struct {
	Data       []json.RawMessage `json:"data"`
	NextCursor *string           `json:"nextCursor"`
}

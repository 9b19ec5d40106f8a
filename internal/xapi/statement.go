// Package xapi maps simulated learning events onto xAPI statements and
// moves them to statement sinks.
package xapi

import "time"

// DefaultVersion is the xAPI version stamped on statements.
const DefaultVersion = "1.0.3"

// Statement is an xAPI statement.
type Statement struct {
	ID        string    `json:"id"`
	Actor     Agent     `json:"actor"`
	Verb      Verb      `json:"verb"`
	Object    Object    `json:"object"`
	Result    *Result   `json:"result,omitempty"`
	Context   *Context  `json:"context,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}

// LanguageMap maps RFC 5646 language tags to strings.
type LanguageMap map[string]string

// Agent identifies a person by mailbox.
type Agent struct {
	ObjectType string `json:"objectType"`
	Name       string `json:"name,omitempty"`
	Mbox       string `json:"mbox"`
}

// Verb is a statement verb.
type Verb struct {
	ID      string      `json:"id"`
	Display LanguageMap `json:"display"`
}

// Object is the activity a statement is about.
type Object struct {
	ObjectType string              `json:"objectType"`
	ID         string              `json:"id"`
	Definition *ActivityDefinition `json:"definition,omitempty"`
}

// ActivityDefinition describes an activity object.
type ActivityDefinition struct {
	Type        string         `json:"type,omitempty"`
	Name        LanguageMap    `json:"name,omitempty"`
	Description LanguageMap    `json:"description,omitempty"`
	MoreInfo    string         `json:"moreInfo,omitempty"`
	Extensions  map[string]any `json:"extensions,omitempty"`
}

// Result is a statement outcome.
type Result struct {
	Score      *Score         `json:"score,omitempty"`
	Success    *bool          `json:"success,omitempty"`
	Completion *bool          `json:"completion,omitempty"`
	Duration   string         `json:"duration,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// Score is a statement score; Scaled lies in [0,1].
type Score struct {
	Scaled float64 `json:"scaled"`
	Raw    float64 `json:"raw"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Context carries statement context.
type Context struct {
	Registration      string             `json:"registration,omitempty"`
	Instructor        *Agent             `json:"instructor,omitempty"`
	ContextActivities *ContextActivities `json:"contextActivities,omitempty"`
	Platform          string             `json:"platform,omitempty"`
	Language          string             `json:"language,omitempty"`
	Extensions        map[string]any     `json:"extensions,omitempty"`
}

// ContextActivities relates a statement to other activities.
type ContextActivities struct {
	Parent []Object `json:"parent,omitempty"`
}

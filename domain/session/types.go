package session

import (
	"time"

	"csvdash/domain/core"
	"csvdash/domain/dataset"
)

// Phase is the presentation state of a session
type Phase string

const (
	PhaseNoFile     Phase = "no_file"
	PhaseFileLoaded Phase = "file_loaded"
)

// NoticeKind classifies the single message shown above the dashboard
type NoticeKind string

const (
	NoticeInfo    NoticeKind = "info"
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

const (
	PromptMessage = "Please upload a CSV file to begin analysis."
	LoadedMessage = "File successfully loaded!"
)

// Notice is the confirmation or error message of the last interaction
type Notice struct {
	Kind NoticeKind `json:"kind"`
	Text string     `json:"text"`
}

// Selection is the user's chosen column per analyzer; empty means unset
type Selection struct {
	Categorical string `json:"categorical"`
	Numerical   string `json:"numerical"`
}

// Toggles holds the summary checkboxes
type Toggles struct {
	Info  bool `json:"info"`
	Shape bool `json:"shape"`
	Nulls bool `json:"nulls"`
}

// State is the whole per-session dashboard state.
//
// State is a value: every With method returns a modified copy and leaves the
// receiver untouched. The Table itself is never mutated after ingestion.
type State struct {
	ID        core.SessionID `json:"id"`
	Table     *dataset.Table `json:"-"`
	FileName  string         `json:"file_name"`
	Selection Selection      `json:"selection"`
	Toggles   Toggles        `json:"toggles"`
	Notice    Notice         `json:"notice"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// New returns the initial NoFile state
func New(id core.SessionID, now time.Time) State {
	return State{
		ID:        id,
		Notice:    Notice{Kind: NoticeInfo, Text: PromptMessage},
		UpdatedAt: now,
	}
}

// Phase derives NoFile / FileLoaded from the table
func (s State) Phase() Phase {
	if s.Table == nil {
		return PhaseNoFile
	}
	return PhaseFileLoaded
}

// WithTable replaces the table; selections are cleared so they re-default
// against the new column groups
func (s State) WithTable(t *dataset.Table, fileName string, now time.Time) State {
	s.Table = t
	s.FileName = fileName
	s.Selection = Selection{}
	s.Notice = Notice{Kind: NoticeSuccess, Text: LoadedMessage}
	s.UpdatedAt = now
	return s
}

// WithUploadError keeps the current table and records the failure
func (s State) WithUploadError(err error, now time.Time) State {
	s.Notice = Notice{Kind: NoticeError, Text: err.Error()}
	s.UpdatedAt = now
	return s
}

// WithControls applies checkbox and selector values from one interaction
func (s State) WithControls(toggles Toggles, sel Selection, now time.Time) State {
	s.Toggles = toggles
	s.Selection = sel
	s.Notice = s.restingNotice()
	s.UpdatedAt = now
	return s
}

// Touch refreshes the idle timer
func (s State) Touch(now time.Time) State {
	s.UpdatedAt = now
	return s
}

func (s State) restingNotice() Notice {
	if s.Table == nil {
		return Notice{Kind: NoticeInfo, Text: PromptMessage}
	}
	return Notice{Kind: NoticeSuccess, Text: LoadedMessage}
}

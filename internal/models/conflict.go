package models

import "time"

// ConflictType is the diagnosed cause of a failed match.
type ConflictType string

const (
	ConflictNoTeacher ConflictType = "NO_TEACHER"
	ConflictNoTime    ConflictType = "NO_TIME"
	ConflictNoRoom    ConflictType = "NO_ROOM"
	ConflictHourLimit ConflictType = "HOUR_LIMIT"
	ConflictNoSubject ConflictType = "NO_SUBJECT"
	ConflictOther     ConflictType = "OTHER"
)

// ConflictTypes lists every conflict type in classification precedence order.
var ConflictTypes = []ConflictType{
	ConflictNoTeacher,
	ConflictNoSubject,
	ConflictNoTime,
	ConflictNoRoom,
	ConflictHourLimit,
	ConflictOther,
}

// Severity ranks how urgently a conflict needs attention.
type Severity string

const (
	SeverityHigh   Severity = "HIGH"
	SeverityMedium Severity = "MEDIUM"
	SeverityLow    Severity = "LOW"
)

// ConflictStatus captures the adjustment workflow state.
type ConflictStatus string

const (
	ConflictStatusPending    ConflictStatus = "PENDING"
	ConflictStatusInProgress ConflictStatus = "IN_PROGRESS"
	ConflictStatusResolved   ConflictStatus = "RESOLVED"
	ConflictStatusSkipped    ConflictStatus = "SKIPPED"
)

// Terminal reports whether no further transition is allowed.
func (s ConflictStatus) Terminal() bool {
	return s == ConflictStatusResolved || s == ConflictStatusSkipped
}

// Conflict records a student that could not be assigned.
type Conflict struct {
	ID                  string               `json:"id"`
	StudentID           string               `json:"studentId"`
	StudentName         string               `json:"studentName"`
	Reason              string               `json:"reason"`
	ConflictType        ConflictType         `json:"conflictType"`
	Severity            Severity             `json:"severity"`
	Status              ConflictStatus       `json:"status"`
	Suggestions         []Suggestion         `json:"suggestions"`
	IsModified          bool                 `json:"isModified"`
	ModificationHistory []ModificationRecord `json:"modificationHistory"`
	ExtractedInfo       map[string]string    `json:"extractedInfo,omitempty"`
	CreatedAt           time.Time            `json:"createdAt"`
	UpdatedAt           time.Time            `json:"updatedAt"`
}

// Clone deep-copies the conflict.
func (c Conflict) Clone() Conflict {
	out := c
	out.Suggestions = make([]Suggestion, len(c.Suggestions))
	for i, s := range c.Suggestions {
		out.Suggestions[i] = s.Clone()
	}
	out.ModificationHistory = append(make([]ModificationRecord, 0, len(c.ModificationHistory)), c.ModificationHistory...)
	if c.ExtractedInfo != nil {
		out.ExtractedInfo = make(map[string]string, len(c.ExtractedInfo))
		for k, v := range c.ExtractedInfo {
			out.ExtractedInfo[k] = v
		}
	}
	return out
}

// SuggestionType groups remediation proposals.
type SuggestionType string

const (
	SuggestionTime       SuggestionType = "TIME"
	SuggestionTeacher    SuggestionType = "TEACHER"
	SuggestionRoom       SuggestionType = "ROOM"
	SuggestionConstraint SuggestionType = "CONSTRAINT"
)

// TargetType names the collection a mutation writes to.
type TargetType string

const (
	TargetStudent   TargetType = "student"
	TargetTeacher   TargetType = "teacher"
	TargetClassroom TargetType = "classroom"
)

// Mutation is one declarative field write executed when a suggestion is applied.
type Mutation struct {
	TargetType TargetType  `json:"targetType"`
	TargetID   string      `json:"targetId"`
	Field      string      `json:"field"`
	NewValue   interface{} `json:"newValue"`
}

// Suggestion is a ranked, executable remediation proposal.
type Suggestion struct {
	ID          string                 `json:"id"`
	Type        SuggestionType         `json:"type"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Confidence  float64                `json:"confidence"`
	Data        map[string]interface{} `json:"data,omitempty"`
	Mutations   []Mutation             `json:"mutations"`
}

// Clone copies the suggestion's containers.
func (s Suggestion) Clone() Suggestion {
	out := s
	if s.Data != nil {
		out.Data = make(map[string]interface{}, len(s.Data))
		for k, v := range s.Data {
			out.Data[k] = v
		}
	}
	out.Mutations = append(make([]Mutation, 0, len(s.Mutations)), s.Mutations...)
	return out
}

// ModificationRecord is an immutable ledger entry.
type ModificationRecord struct {
	ID         string      `json:"id" db:"id"`
	Timestamp  time.Time   `json:"timestamp" db:"created_at"`
	TargetType TargetType  `json:"targetType" db:"target_type"`
	TargetID   string      `json:"targetId" db:"target_id"`
	TargetName string      `json:"targetName" db:"target_name"`
	Field      string      `json:"field" db:"field"`
	OldValue   interface{} `json:"oldValue" db:"-"`
	NewValue   interface{} `json:"newValue" db:"-"`
	Reason     string      `json:"reason" db:"reason"`
	ConflictID *string     `json:"conflictId,omitempty" db:"conflict_id"`
}

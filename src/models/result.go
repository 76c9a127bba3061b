package models

import (
	"encoding/json"
	"time"
)

// Result is one subject score of one student in one context.
// StudentName is a snapshot taken at write time and may drift from Student.Name.
type Result struct {
	ID          string    `bson:"_id,omitempty" json:"id"`
	StudentID   string    `bson:"studentId" json:"studentId"`
	StudentName string    `bson:"studentName" json:"studentName"`
	Level       string    `bson:"level" json:"level"`
	ClassName   string    `bson:"className" json:"className"`
	Subject     string    `bson:"subject" json:"subject"`
	Score       int       `bson:"score" json:"score"`
	Grade       string    `bson:"grade" json:"grade"`
	Term        string    `bson:"term" json:"term"`
	Year        string    `bson:"year" json:"year"`
	CreatedAt   time.Time `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
}

// ResultKey is the identity of a Result. At most one Result exists per key.
type ResultKey struct {
	StudentID string
	Subject   string
	Term      string
	Year      string
}

func (r Result) Key() ResultKey {
	return ResultKey{StudentID: r.StudentID, Subject: r.Subject, Term: r.Term, Year: r.Year}
}

// ResultContext scopes one bulk mark entry session.
type ResultContext struct {
	Level     string `json:"level" query:"level" validate:"required,academiclevel"`
	ClassName string `json:"className" query:"className" validate:"required,classforlevel"`
	Subject   string `json:"subject" query:"subject" validate:"required"`
	Term      string `json:"term" query:"term" validate:"required,term"`
	Year      string `json:"year" query:"year" validate:"required,len=4,numeric"`
}

// Key returns the identity key of studentID's result in this context.
func (c ResultContext) Key(studentID string) ResultKey {
	return ResultKey{StudentID: studentID, Subject: c.Subject, Term: c.Term, Year: c.Year}
}

// Matches reports whether r was entered in exactly this context.
func (c ResultContext) Matches(r Result) bool {
	return r.Level == c.Level &&
		r.ClassName == c.ClassName &&
		r.Subject == c.Subject &&
		r.Term == c.Term &&
		r.Year == c.Year
}

// ResultPayload is the full write payload of a Result. It is only built by
// reconcile.NewPayload so the grade is always derived from the score.
type ResultPayload struct {
	StudentID   string `bson:"studentId" json:"studentId"`
	StudentName string `bson:"studentName" json:"studentName"`
	Level       string `bson:"level" json:"level"`
	ClassName   string `bson:"className" json:"className"`
	Subject     string `bson:"subject" json:"subject"`
	Term        string `bson:"term" json:"term"`
	Year        string `bson:"year" json:"year"`
	Score       int    `bson:"score" json:"score"`
	Grade       string `bson:"grade" json:"grade"`
}

// Marks maps studentId to the raw text entered in the grid. Numbers are
// accepted as well as strings; null means blank.
type Marks map[string]string

func (m *Marks) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	out := make(Marks, len(raw))
	for id, v := range raw {
		var s string
		switch {
		case string(v) == "null":
		case len(v) > 0 && v[0] == '"':
			if err := json.Unmarshal(v, &s); err != nil {
				return err
			}
		default:
			var n json.Number
			if err := json.Unmarshal(v, &n); err != nil {
				return err
			}
			s = n.String()
		}
		out[id] = s
	}
	*m = out
	return nil
}

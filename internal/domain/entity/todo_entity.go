package entity

import (
	"bytes"
	"encoding/json"
)

// Todo is a single item on the calendar. Date is kept as the ISO-8601 string the
// client sent; calendar semantics belong to the client.
type Todo struct {
	ID         string  `json:"id"`
	Text       string  `json:"text"`
	Completed  bool    `json:"completed"`
	Date       string  `json:"date"`
	CategoryID *string `json:"categoryId,omitempty"`
	OwnerID    string  `json:"-"`
}

// OptionalString distinguishes an absent JSON field from an explicit null.
type OptionalString struct {
	Set   bool
	Value *string
}

func (o *OptionalString) UnmarshalJSON(b []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

// TodoPatch lists the fields an update may change. CategoryID may be cleared
// with an explicit null.
type TodoPatch struct {
	Text       *string
	Completed  *bool
	Date       *string
	CategoryID OptionalString
}

func (p TodoPatch) IsEmpty() bool {
	return p.Text == nil && p.Completed == nil && p.Date == nil && !p.CategoryID.Set
}

// TodoFilter narrows a listing. Zero values mean no restriction.
type TodoFilter struct {
	From       string // inclusive lower bound on date
	To         string // exclusive upper bound on date
	CategoryID string
	Completed  *bool
}

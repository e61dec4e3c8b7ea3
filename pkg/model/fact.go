package model

// FactSet holds the personally identifying facts known for one actor.
// A zero FactSet means nothing has been learned yet.
type FactSet struct {
	FirstName  string `json:"firstname,omitempty"`
	LastName   string `json:"lastname,omitempty"`
	Identifier string `json:"identifier,omitempty"`
}

// Merge folds newly extracted facts into the set. A field is overwritten
// only when the incoming value is non-empty; extraction can add or update
// facts but never erase them.
func (f *FactSet) Merge(in FactSet) {
	if in.FirstName != "" {
		f.FirstName = in.FirstName
	}
	if in.LastName != "" {
		f.LastName = in.LastName
	}
	if in.Identifier != "" {
		f.Identifier = in.Identifier
	}
}

// Fields returns the non-empty facts keyed by their record id.
func (f FactSet) Fields() map[string]any {
	fields := make(map[string]any)
	if f.FirstName != "" {
		fields[FieldFirstName] = f.FirstName
	}
	if f.LastName != "" {
		fields[FieldLastName] = f.LastName
	}
	if f.Identifier != "" {
		fields[FieldIdentifier] = f.Identifier
	}
	return fields
}

// Empty reports whether no fact is known.
func (f FactSet) Empty() bool {
	return f.FirstName == "" && f.LastName == "" && f.Identifier == ""
}

// Record ids used for FactSet fields in the memory store.
const (
	FieldFirstName  = "firstname"
	FieldLastName   = "lastname"
	FieldIdentifier = "identifier"
)

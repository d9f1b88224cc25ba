package store

// Plan is a declarative aggregation query: match, left-outer joins,
// computed fields, projection, sort and a final pagination window. It is
// compiled or interpreted by a Store in a single execution, so every
// computed count is consistent with the joined array it was derived from.
type Plan struct {
	Collection string
	Match      Match
	Lookups    []Lookup
	Fields     []Field
	Project    Projection
	Sort       *Sort
	Skip       int64
	Limit      int64
}

// Lookup joins documents from another collection. The join is always
// left-outer: a missing related document yields an empty array under As,
// never an error. When the local field holds an array, related documents
// are those whose foreign field equals any element.
type Lookup struct {
	From         string
	LocalField   string
	ForeignField string
	As           string
}

// Field is a computed field. Exactly one of SizeOf, FirstOf and MemberOf
// is set.
type Field struct {
	Name string
	// SizeOf names a joined array; the field becomes its cardinality.
	SizeOf string
	// FirstOf names a joined array; the field becomes its first element,
	// or is absent when the array is empty.
	FirstOf string
	// MemberOf tests membership of a value inside a joined array.
	MemberOf *Membership
}

// Membership is a boolean test: does any document in Array carry Value
// under Field?
type Membership struct {
	Array string
	Field string
	Value any
}

// Projection lists the fields a result document keeps. The identifier is
// always retained. A key mapped to a field list restricts a joined
// document (or each element of a joined array) to those fields.
type Projection map[string]Keep

// Keep controls what survives projection for a single key.
type Keep struct {
	// Fields, when non-empty, restricts a sub-document to the listed
	// fields. Empty keeps the value whole.
	Fields []string
}

// Sort orders results by a single field. Ties always break by identifier
// descending, so later-created documents win under recency sorts.
type Sort struct {
	Field string
	Desc  bool
}

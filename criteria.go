package elastic

// Operator combines child criteria of a group node.
type Operator string

// Boolean operators.
const (
	OperatorAnd Operator = "and"
	OperatorOr  Operator = "or"
)

// EntryKind identifies a criteria comparison.
type EntryKind string

// Criteria entry kinds.
const (
	EntryIs               EntryKind = "is"
	EntryIn               EntryKind = "in"
	EntryNotIn            EntryKind = "not_in"
	EntryGreaterThan      EntryKind = "gt"
	EntryGreaterThanEqual EntryKind = "gte"
	EntryLessThan         EntryKind = "lt"
	EntryLessThanEqual    EntryKind = "lte"
	EntryBetween          EntryKind = "between"
	EntryContains         EntryKind = "contains"
	EntryExists           EntryKind = "exists"
)

// CriteriaEntry is a single comparison against a criteria's field.
type CriteriaEntry struct {
	kind   EntryKind
	values []any
}

// Kind returns the comparison kind.
func (e CriteriaEntry) Kind() EntryKind { return e.kind }

// Values returns the literal comparison values.
func (e CriteriaEntry) Values() []any { return e.values }

// Criteria is a node in a filter tree: either a leaf with a field and one or
// more comparison entries, or a group combining children with a boolean
// operator. Field references use domain property names (dotted for nested
// paths) until the query is rewritten by Converter.UpdateQuery.
type Criteria struct {
	field    string
	mapped   bool // set by the rewriter, makes rewriting idempotent
	operator Operator
	entries  []CriteriaEntry
	children []*Criteria
}

// NewCriteria starts a leaf criteria for the given domain property path.
func NewCriteria(field string) *Criteria {
	return &Criteria{field: field}
}

// And groups criteria so that all of them must match.
func And(children ...*Criteria) *Criteria {
	return &Criteria{operator: OperatorAnd, children: children}
}

// Or groups criteria so that at least one must match.
func Or(children ...*Criteria) *Criteria {
	return &Criteria{operator: OperatorOr, children: children}
}

// Field returns the referenced field (domain property path before rewriting,
// document field path after).
func (cr *Criteria) Field() string { return cr.field }

// Operator returns the boolean operator of a group node.
func (cr *Criteria) Operator() Operator { return cr.operator }

// Entries returns the comparison entries of a leaf node.
func (cr *Criteria) Entries() []CriteriaEntry { return cr.entries }

// Children returns the child criteria of a group node.
func (cr *Criteria) Children() []*Criteria { return cr.children }

func (cr *Criteria) add(kind EntryKind, values ...any) *Criteria {
	cr.entries = append(cr.entries, CriteriaEntry{kind: kind, values: values})
	return cr
}

// Is adds an exact-match comparison.
func (cr *Criteria) Is(value any) *Criteria { return cr.add(EntryIs, value) }

// In matches when the field equals any of the given values.
func (cr *Criteria) In(values ...any) *Criteria { return cr.add(EntryIn, values...) }

// NotIn matches when the field equals none of the given values.
func (cr *Criteria) NotIn(values ...any) *Criteria { return cr.add(EntryNotIn, values...) }

// GreaterThan adds an exclusive lower bound.
func (cr *Criteria) GreaterThan(value any) *Criteria { return cr.add(EntryGreaterThan, value) }

// GreaterThanEqual adds an inclusive lower bound.
func (cr *Criteria) GreaterThanEqual(value any) *Criteria {
	return cr.add(EntryGreaterThanEqual, value)
}

// LessThan adds an exclusive upper bound.
func (cr *Criteria) LessThan(value any) *Criteria { return cr.add(EntryLessThan, value) }

// LessThanEqual adds an inclusive upper bound.
func (cr *Criteria) LessThanEqual(value any) *Criteria { return cr.add(EntryLessThanEqual, value) }

// Between adds an inclusive range comparison.
func (cr *Criteria) Between(lower, upper any) *Criteria { return cr.add(EntryBetween, lower, upper) }

// Contains adds a substring comparison.
func (cr *Criteria) Contains(s string) *Criteria { return cr.add(EntryContains, s) }

// Exists matches when the field is present.
func (cr *Criteria) Exists() *Criteria { return cr.add(EntryExists) }

// CriteriaQuery is a criteria tree plus paging parameters. The query object
// is owned by the caller; UpdateQuery mutates it in place.
type CriteriaQuery struct {
	Criteria *Criteria
	From     int
	Size     int
}

// NewCriteriaQuery wraps a criteria tree in a query.
func NewCriteriaQuery(criteria *Criteria) *CriteriaQuery {
	return &CriteriaQuery{Criteria: criteria}
}

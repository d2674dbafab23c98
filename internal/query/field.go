package query

// Field references a column, either by metadata identifier or by inline
// name. A field carrying a calendar unit is datetime-bucketed; the unit
// annotation is applied upstream, never inferred here.
type Field interface {
	Value
	fieldNode()

	// DatetimeUnit returns the bucketing unit, or UnitNone when the
	// field is not datetime-scoped.
	DatetimeUnit() CalendarUnit

	// WithUnit returns a copy of the field carrying the given unit.
	WithUnit(u CalendarUnit) Field
}

// FieldID references a field by its metadata identifier.
type FieldID struct {
	ID   int
	Unit CalendarUnit
}

// FieldName references a field by inline name, bypassing metadata lookup.
type FieldName struct {
	Name string
	Unit CalendarUnit
}

func (FieldID) fieldNode()   {}
func (FieldName) fieldNode() {}

func (f FieldID) DatetimeUnit() CalendarUnit   { return f.Unit }
func (f FieldName) DatetimeUnit() CalendarUnit { return f.Unit }

func (f FieldID) WithUnit(u CalendarUnit) Field {
	f.Unit = u
	return f
}

func (f FieldName) WithUnit(u CalendarUnit) Field {
	f.Unit = u
	return f
}

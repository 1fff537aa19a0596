package link

// SortKey orders results by a logical field.
type SortKey struct {
	Field     string
	Ascending bool
}

// Options selects the order and window of a find. Zero Skip or Limit means unset.
type Options struct {
	Sort  []SortKey
	Skip  int
	Limit int
}

// Asc returns an ascending sort key.
func Asc(field string) SortKey {
	return SortKey{Field: field, Ascending: true}
}

// Desc returns a descending sort key.
func Desc(field string) SortKey {
	return SortKey{Field: field}
}

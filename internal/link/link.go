package link

// Link is a logical graph edge keyed by logical field names, conventionally
// id, source and target plus any metadata the field mapping knows about.
type Link map[string]any

type undefined struct{}

func (undefined) String() string {
	return "undefined"
}

// Undefined marks a link field as explicitly undefined. In a selector it
// matches documents without the field, in a modifier it unsets the field.
var Undefined = undefined{}

// IsUndefined reports whether v is the Undefined marker.
func IsUndefined(v any) bool {
	_, ok := v.(undefined)
	return ok
}

// Clone returns a shallow copy of the link.
func (l Link) Clone() Link {
	if l == nil {
		return nil
	}

	out := make(Link, len(l))
	for k, v := range l {
		out[k] = v
	}

	return out
}

// ID returns the value of the id field, if present.
func (l Link) ID() (any, bool) {
	v, ok := l[IDField]
	return v, ok
}

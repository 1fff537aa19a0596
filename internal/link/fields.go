package link

import (
	"errors"
	"fmt"
	"strings"
)

const (
	IDField     = "id"
	SourceField = "source"
	TargetField = "target"
)

var (
	// ErrFieldsFormat is returned when a field mapping string cannot be parsed.
	ErrFieldsFormat = errors.New("invalid fields format, expected format is <logical>=<physical>[,...]")
)

// Field pairs a logical link field with the physical document field it is stored in.
type Field struct {
	Logical  string
	Physical string
}

// Fields is the ordered field mapping of a graph. Iteration follows declaration order.
type Fields []Field

// Physical returns the physical name of a logical field.
func (f Fields) Physical(logical string) (string, bool) {
	for _, field := range f {
		if field.Logical == logical {
			return field.Physical, true
		}
	}

	return "", false
}

// Logical returns the logical name of a physical field.
func (f Fields) Logical(physical string) (string, bool) {
	for _, field := range f {
		if field.Physical == physical {
			return field.Logical, true
		}
	}

	return "", false
}

func (f Fields) String() string {
	parts := make([]string, 0, len(f))
	for _, field := range f {
		parts = append(parts, field.Logical+"="+field.Physical)
	}

	return strings.Join(parts, ",")
}

// ParseFields parses a mapping of the form "id=_id,source=from,target=to".
// A bare name maps the field onto itself.
func ParseFields(s string) (Fields, error) {
	fields := make(Fields, 0)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		logical, physical, found := strings.Cut(part, "=")
		if !found {
			physical = logical
		}

		logical = strings.TrimSpace(logical)
		physical = strings.TrimSpace(physical)
		if logical == "" || physical == "" {
			return nil, fmt.Errorf("%w: %q", ErrFieldsFormat, part)
		}

		fields = append(fields, Field{Logical: logical, Physical: physical})
	}

	return fields, nil
}

package collection

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Match reports whether doc satisfies every clause of filter. Ids are stored
// as strings, so an id clause compares in string form.
func Match(doc Document, filter Filter) bool {
	for field, want := range filter {
		got, ok := doc[field]

		if exists, isExists := want.(Exists); isExists {
			if bool(exists) != ok {
				return false
			}
			continue
		}

		if field == IDField {
			want = idString(want)
		}

		if !ok || !equal(got, want) {
			return false
		}
	}

	return true
}

// Apply returns a copy of doc with modifier applied.
func Apply(doc Document, modifier Modifier) (Document, error) {
	if _, ok := modifier.Set[IDField]; ok {
		return nil, ErrCannotModifyID
	}
	for _, field := range modifier.Unset {
		if field == IDField {
			return nil, ErrCannotModifyID
		}
	}

	out := doc.Clone()
	for field, value := range modifier.Set {
		out[field] = value
	}
	for _, field := range modifier.Unset {
		delete(out, field)
	}

	return out, nil
}

// SortDocuments orders docs by keys, keeping the existing order of ties.
func SortDocuments(docs []Document, keys []SortKey) {
	if len(keys) == 0 {
		return
	}

	sort.SliceStable(docs, func(i, j int) bool {
		for _, key := range keys {
			a, aok := docs[i][key.Field]
			b, bok := docs[j][key.Field]

			c := compareValues(a, aok, b, bok)
			if c == 0 {
				continue
			}

			if key.Order == Descending {
				return c > 0
			}
			return c < 0
		}

		return false
	})
}

// Window sorts docs and applies skip and limit.
func Window(docs []Document, opts FindOptions) []Document {
	SortDocuments(docs, opts.Sort)

	if opts.Skip > 0 {
		if opts.Skip >= len(docs) {
			return docs[:0]
		}
		docs = docs[opts.Skip:]
	}

	if opts.Limit > 0 && opts.Limit < len(docs) {
		docs = docs[:opts.Limit]
	}

	return docs
}

func idString(id any) any {
	if s, ok := FormatID(id); ok {
		return s
	}

	return id
}

// FormatID returns the stored string form of a string or numeric id. Integral
// numbers format without exponent or fraction whatever their Go type, so
// int 7, float64 7 and "7" name the same document.
func FormatID(id any) (string, bool) {
	switch n := id.(type) {
	case string:
		return n, true
	case int:
		return strconv.FormatInt(int64(n), 10), true
	case int8:
		return strconv.FormatInt(int64(n), 10), true
	case int16:
		return strconv.FormatInt(int64(n), 10), true
	case int32:
		return strconv.FormatInt(int64(n), 10), true
	case int64:
		return strconv.FormatInt(n, 10), true
	case uint:
		return strconv.FormatUint(uint64(n), 10), true
	case uint8:
		return strconv.FormatUint(uint64(n), 10), true
	case uint16:
		return strconv.FormatUint(uint64(n), 10), true
	case uint32:
		return strconv.FormatUint(uint64(n), 10), true
	case uint64:
		return strconv.FormatUint(n, 10), true
	case float32:
		return formatFloatID(float64(n)), true
	case float64:
		return formatFloatID(n), true
	}

	return "", false
}

func formatFloatID(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1<<63 {
		return strconv.FormatInt(int64(f), 10)
	}

	return strconv.FormatFloat(f, 'f', -1, 64)
}

func equal(a, b any) bool {
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			return fa == fb
		}
	}

	return reflect.DeepEqual(a, b)
}

// type ranks used to order values of different types
const (
	rankMissing = iota
	rankNil
	rankNumber
	rankString
	rankBool
	rankOther
)

func rank(v any, ok bool) int {
	if !ok {
		return rankMissing
	}

	switch v.(type) {
	case nil:
		return rankNil
	case string:
		return rankString
	case bool:
		return rankBool
	}

	if _, isNumber := toFloat(v); isNumber {
		return rankNumber
	}

	return rankOther
}

func compareValues(a any, aok bool, b any, bok bool) int {
	ra, rb := rank(a, aok), rank(b, bok)
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}

	switch ra {
	case rankNumber:
		fa, _ := toFloat(a)
		fb, _ := toFloat(b)
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	case rankString:
		return strings.Compare(a.(string), b.(string))
	case rankBool:
		ba, bb := a.(bool), b.(bool)
		switch {
		case ba == bb:
			return 0
		case !ba:
			return -1
		}
		return 1
	case rankOther:
		return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
	}

	return 0
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}

	return 0, false
}

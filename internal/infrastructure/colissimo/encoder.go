package colissimo

import (
	"html"
	"strconv"
	"strings"
)

// Field is one key/value pair of a request tree. Value is one of:
// string (scalar leaf), Fields (nested mapping) or Sequence (ordered list
// whose elements are again string, Fields or Sequence).
//
// A slice-of-fields representation is used instead of a map because the
// carrier validates strict element order.
type Field struct {
	Key   string
	Value any
}

// Fields is an ordered mapping.
type Fields []Field

// Sequence is an ordered list value.
type Sequence []any

// EncodeFields renders a field tree as an XML fragment. Rules:
//   - nil and semantically empty values (empty string, empty sequence,
//     empty mapping) are omitted entirely, never emitted as empty tags;
//   - a mapping becomes a child node named after its key;
//   - a sequence keyed by a name produces one sibling node per element,
//     each reusing that name; a sequence element that is itself a sequence
//     is named "item" plus its index;
//   - scalars are entity-escaped (&, <, >, quotes) and emitted as leaves.
//
// No trimming and no type coercion are performed.
func EncodeFields(fields Fields) string {
	var sb strings.Builder
	encodeFields(&sb, fields)
	return sb.String()
}

func encodeFields(sb *strings.Builder, fields Fields) {
	for _, f := range fields {
		encodeValue(sb, f.Key, f.Value)
	}
}

func encodeValue(sb *strings.Builder, key string, value any) {
	if isEmpty(value) {
		return
	}

	switch v := value.(type) {
	case Fields:
		openTag(sb, key)
		encodeFields(sb, v)
		closeTag(sb, key)
	case Sequence:
		for i, elem := range v {
			if isEmpty(elem) {
				continue
			}
			if _, nested := elem.(Sequence); nested {
				encodeValue(sb, itemName(i), elem)
				continue
			}
			encodeValue(sb, key, elem)
		}
	case string:
		openTag(sb, key)
		sb.WriteString(html.EscapeString(v))
		closeTag(sb, key)
	}
}

func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case Fields:
		return len(v) == 0
	case Sequence:
		return len(v) == 0
	}
	return false
}

func itemName(index int) string {
	return "item" + strconv.Itoa(index)
}

func openTag(sb *strings.Builder, name string) {
	sb.WriteByte('<')
	sb.WriteString(name)
	sb.WriteByte('>')
}

func closeTag(sb *strings.Builder, name string) {
	sb.WriteString("</")
	sb.WriteString(name)
	sb.WriteByte('>')
}

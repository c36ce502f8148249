package request

import (
	"fmt"
	"net/url"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"github.com/jsamuelsen11/maingo/internal/apierr"
)

// Format selects how query parameters, especially array values, are
// serialized.
type Format string

const (
	// FormatDelimited joins array values with commas: ids=1,2.
	FormatDelimited Format = "delimited"
	// FormatIndexed expands array values with indices: ids[0]=1&ids[1]=2.
	FormatIndexed Format = "indexed"
	// FormatPHP is the historical name for FormatIndexed.
	FormatPHP Format = "php"
)

// ParseFormat validates s as a Format. The empty string selects
// FormatDelimited.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case "":
		return FormatDelimited, nil
	case FormatDelimited, FormatIndexed, FormatPHP:
		return f, nil
	default:
		return "", fmt.Errorf("%w: unknown search param format %q", apierr.ErrConfig, s)
	}
}

func (f Format) indexed() bool {
	return f == FormatIndexed || f == FormatPHP
}

// EncodeParams serializes params into a raw query string. Keys are emitted in
// sorted order. Top-level values that are nil or not string-convertible are
// skipped; a nil or non-convertible element inside an array value is an
// error wrapping apierr.ErrInvalidParam.
func EncodeParams(params Params, format Format) (string, error) {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var b strings.Builder
	write := func(key, value string) {
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(escapeParam(key))
		b.WriteByte('=')
		b.WriteString(escapeParam(value))
	}

	for _, key := range keys {
		value := params[key]
		if value == nil {
			continue
		}

		items, isArray := arrayItems(value)
		if !isArray {
			s, ok := stringify(value, format)
			if !ok {
				continue
			}
			write(key, s)
			continue
		}

		parts := make([]string, 0, len(items))
		for i, item := range items {
			s, ok := stringify(item, format)
			if !ok {
				return "", fmt.Errorf("%w: %s[%d] has unsupported value %v", apierr.ErrInvalidParam, key, i, item)
			}
			parts = append(parts, s)
		}

		if format.indexed() {
			for i, s := range parts {
				write(key+"["+strconv.Itoa(i)+"]", s)
			}
			continue
		}
		write(key, strings.Join(parts, ","))
	}

	return b.String(), nil
}

// AppendParams appends the encoded params to u's existing query.
func AppendParams(u *url.URL, params Params, format Format) error {
	encoded, err := EncodeParams(params, format)
	if err != nil {
		return err
	}
	if encoded == "" {
		return nil
	}
	if u.RawQuery == "" {
		u.RawQuery = encoded
	} else {
		u.RawQuery += "&" + encoded
	}
	return nil
}

// arrayItems reports whether v is a slice or array (other than a byte slice)
// and returns its elements.
func arrayItems(v any) ([]any, bool) {
	if _, ok := v.([]byte); ok {
		return nil, false
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}

	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items, true
}

// stringify renders a scalar. Booleans follow the format: 1/0 for indexed,
// true/false otherwise.
func stringify(v any, format Format) (string, bool) {
	if isNil(v) {
		return "", false
	}
	if b, ok := v.(bool); ok {
		if format.indexed() {
			if b {
				return "1", true
			}
			return "0", true
		}
		return strconv.FormatBool(b), true
	}

	s, err := cast.ToStringE(v)
	if err != nil {
		return "", false
	}
	return s, true
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}

// escapeParam query-escapes s but keeps square brackets literal so indexed
// keys read as ids[0] on the wire.
func escapeParam(s string) string {
	escaped := url.QueryEscape(s)
	if !strings.Contains(escaped, "%5") {
		return escaped
	}
	return strings.NewReplacer("%5B", "[", "%5D", "]").Replace(escaped)
}

package request_test

import (
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen11/maingo/internal/apierr"
	"github.com/jsamuelsen11/maingo/internal/request"
)

type userID int

func (u userID) String() string { return "user-" + string(rune('0'+int(u))) }

func TestEncodeParams(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		params request.Params
		format request.Format
		want   string
	}{
		{
			name:   "indexed arrays and scalars",
			params: request.Params{"key1": []string{"a", "b"}, "key2": 3},
			format: request.FormatIndexed,
			want:   "key1[0]=a&key1[1]=b&key2=3",
		},
		{
			name:   "php behaves like indexed",
			params: request.Params{"ids": []any{"1", 2}},
			format: request.FormatPHP,
			want:   "ids[0]=1&ids[1]=2",
		},
		{
			name:   "indexed booleans render as 1 and 0",
			params: request.Params{"on": true, "off": false},
			format: request.FormatIndexed,
			want:   "off=0&on=1",
		},
		{
			name:   "delimited joins arrays with commas",
			params: request.Params{"ids": []int{1, 2, 3}},
			format: request.FormatDelimited,
			want:   "ids=1%2C2%2C3",
		},
		{
			name:   "delimited booleans render as words",
			params: request.Params{"active": true},
			format: request.FormatDelimited,
			want:   "active=true",
		},
		{
			name:   "nil and unconvertible scalars are skipped",
			params: request.Params{"a": nil, "b": map[string]int{"x": 1}, "c": struct{}{}, "d": "kept"},
			format: request.FormatIndexed,
			want:   "d=kept",
		},
		{
			name:   "stringers are rendered",
			params: request.Params{"owner": userID(7)},
			format: request.FormatDelimited,
			want:   "owner=user-7",
		},
		{
			name:   "values are escaped but brackets stay literal",
			params: request.Params{"q": "a b&c", "f[x]": "y"},
			format: request.FormatDelimited,
			want:   "f[x]=y&q=a+b%26c",
		},
		{
			name:   "empty params",
			params: request.Params{},
			format: request.FormatIndexed,
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := request.EncodeParams(tt.params, tt.format)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeParams_NilInsideArrayFails(t *testing.T) {
	t.Parallel()

	for _, format := range []request.Format{request.FormatIndexed, request.FormatPHP, request.FormatDelimited} {
		_, err := request.EncodeParams(request.Params{"ids": []any{"a", nil}}, format)
		if !errors.Is(err, apierr.ErrInvalidParam) {
			t.Errorf("format %s: err = %v, want ErrInvalidParam", format, err)
		}
	}
}

func TestEncodeParams_NilPointerInsideArrayFails(t *testing.T) {
	t.Parallel()

	var missing *string
	_, err := request.EncodeParams(request.Params{"ids": []*string{missing}}, request.FormatIndexed)
	require.ErrorIs(t, err, apierr.ErrInvalidParam)
}

func TestAppendParams_DisjointKeysAccumulate(t *testing.T) {
	t.Parallel()

	u, err := url.Parse("https://api.example.com/resource?existing=1")
	require.NoError(t, err)

	require.NoError(t, request.AppendParams(u, request.Params{"a": "1"}, request.FormatIndexed))
	require.NoError(t, request.AppendParams(u, request.Params{"b": []string{"x"}}, request.FormatIndexed))

	assert.Equal(t, "https://api.example.com/resource?existing=1&a=1&b[0]=x", u.String())
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    request.Format
		wantErr bool
	}{
		{in: "", want: request.FormatDelimited},
		{in: "delimited", want: request.FormatDelimited},
		{in: "INDEXED", want: request.FormatIndexed},
		{in: "php", want: request.FormatPHP},
		{in: "csv", wantErr: true},
	}

	for _, tt := range tests {
		got, err := request.ParseFormat(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, apierr.ErrConfig, "ParseFormat(%q)", tt.in)
			continue
		}
		require.NoError(t, err, "ParseFormat(%q)", tt.in)
		assert.Equal(t, tt.want, got, "ParseFormat(%q)", tt.in)
	}
}

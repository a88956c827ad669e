package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "trim and lower", in: "  Acme Corp ", want: "acme corp"},
		{name: "collapse whitespace", in: "Acme \t  Corp", want: "acme corp"},
		{name: "strip accents", in: "Café Zenith", want: "cafe zenith"},
		{name: "hangul unchanged", in: "삼성전자", want: "삼성전자"},
		{name: "empty", in: "   ", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestMatchesAny(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		wanted []string
		want   bool
	}{
		{name: "no filter passes", in: "Acme Corp", want: true},
		{name: "blank filter passes", in: "Acme Corp", wanted: []string{"  "}, want: true},
		{name: "substring case-insensitive", in: "ZENITH Holdings", wanted: []string{"zenith"}, want: true},
		{name: "any of several", in: "LG전자", wanted: []string{"삼성", "lg"}, want: true},
		{name: "no match", in: "Acme Corp", wanted: []string{"Zenith"}, want: false},
		{name: "empty name never matches a filter", in: "", wanted: []string{"a"}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchesAny(tt.in, tt.wanted))
		})
	}
}

func TestSplitNames(t *testing.T) {
	assert.Equal(t, []string{"삼성전자", "LG"}, SplitNames("삼성전자, LG , "))
	assert.Nil(t, SplitNames(" , "))
}

package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"infobox/internal/util"
)

func TestCleanLabel(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{name: "trailing word parenthetical", input: "Argiope (spider)", want: "Argiope"},
		{name: "parenthetical in the middle", input: "Argiope (spider) genus", want: "Argiope  genus"},
		{name: "every match removed", input: "A (x) B (y)", want: "A  B"},
		{name: "underscore is a word char", input: "Foo (a_b)", want: "Foo"},
		{name: "space inside parens kept", input: "Pholcus (cellar spider)", want: "Pholcus (cellar spider)"},
		{name: "punctuation inside parens kept", input: "Pholcus (long-legs)", want: "Pholcus (long-legs)"},
		{name: "empty parens kept", input: "Foo ()", want: "Foo ()"},
		{name: "whitespace trimmed", input: "  Tetragnatha \t", want: "Tetragnatha"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := cleanLabel(tc.input)
			require.NotNil(t, got)
			assert.Equal(t, tc.want, *got)
		})
	}
}

func TestCleanLabelNull(t *testing.T) {
	assert.Nil(t, cleanLabel("NULL"))
}

func TestCleanName(t *testing.T) {
	label := util.StringPtr("Argiope")
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{name: "null placeholder", input: "NULL", want: "Argiope"},
		{name: "alphanumeric kept", input: "Ogdenia", want: "Ogdenia"},
		{name: "digits kept", input: "Spider42", want: "Spider42"},
		{name: "underscore kept", input: "foo_bar", want: "foo_bar"},
		{name: "space replaced", input: "water mite", want: "Argiope"},
		{name: "hyphen replaced", input: "orb-weaver", want: "Argiope"},
		{name: "braces replaced", input: "{A|B}", want: "Argiope"},
		{name: "surrounding space replaced", input: " Ogdenia ", want: "Argiope"},
		{name: "non ascii letter replaced", input: "Araña", want: "Argiope"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := cleanName(tc.input, label).(*string)
			require.True(t, ok)
			require.NotNil(t, got)
			assert.Equal(t, tc.want, *got)
		})
	}
}

func TestCleanNameWithoutLabelValue(t *testing.T) {
	got, ok := cleanName("NULL", nil).(*string)
	require.True(t, ok)
	assert.Nil(t, got)
}

func TestCleanSynonym(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "single entry", input: "{Cyrene Peckham & Peckham}", want: []string{"Cyrene Peckham & Peckham"}},
		{name: "star prefixes", input: "{*One|*Two}", want: []string{"One", "Two"}},
		{name: "outer whitespace trimmed", input: "  {One|Two}  ", want: []string{"One", "Two"}},
		{name: "elements not trimmed", input: "{One | Two}", want: []string{"One ", " Two"}},
		{name: "no braces", input: "Solo", want: []string{"Solo"}},
		{name: "only punctuation", input: "{ * }", want: []string{""}},
		{name: "empty", input: "", want: []string{""}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := cleanSynonym(tc.input, nil).([]string)
			require.True(t, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCleanSynonymNull(t *testing.T) {
	got, ok := cleanSynonym("NULL", nil).([]string)
	require.True(t, ok)
	assert.Nil(t, got)
}

func TestCleanValue(t *testing.T) {
	got, ok := cleanValue("  Arachnid ", nil).(*string)
	require.True(t, ok)
	require.NotNil(t, got)
	assert.Equal(t, "Arachnid", *got)

	null, ok := cleanValue("NULL", nil).(*string)
	require.True(t, ok)
	assert.Nil(t, null)

	// only the exact placeholder is absent
	padded, _ := cleanValue(" NULL ", nil).(*string)
	require.NotNil(t, padded)
	assert.Equal(t, "NULL", *padded)
}

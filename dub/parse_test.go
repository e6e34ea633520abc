package dub

import (
	"errors"
	"reflect"
	"testing"
)

func expr(items ...matchItem) MatchExpr {
	return MatchExpr{matchers: items}
}

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  Command
	}{
		{
			input: "fill 1 '1",
			want: Command{
				Name: "fill",
				Args: []Node{Int(1), expr(matchItem{0, listMatch{1}})},
			},
		},
		{
			input: "fill 1 '*/*",
			want: Command{
				Name: "fill",
				Args: []Node{Int(1), expr(
					matchItem{0, matchAll},
					matchItem{1, matchAll},
				)},
			},
		},
		{
			input: "fill 3 '*//3,4",
			want: Command{
				Name: "fill",
				Args: []Node{Int(3), expr(
					matchItem{0, matchAll},
					matchItem{2, listMatch{3, 4}},
				)},
			},
		},
		{
			input: "fill 2 '1,2//3:4",
			want: Command{
				Name: "fill",
				Args: []Node{Int(2), expr(
					matchItem{0, listMatch{1, 2}},
					matchItem{2, rangeMatch{start: 3, end: 4}},
				)},
			},
		},
		{
			input: "fill 2 '1 '2/*",
			want: Command{
				Name: "fill",
				Args: []Node{
					Int(2),
					expr(matchItem{0, listMatch{1}}),
					expr(matchItem{0, listMatch{2}}, matchItem{1, matchAll}),
				},
			},
		},
		{
			input: `bounce "out/take 1.wav" 4`,
			want: Command{
				Name: "bounce",
				Args: []Node{String("out/take 1.wav"), Int(4)},
			},
		},
		{
			input: "notes C4, D4,E4",
			want: Command{
				Name: "notes",
				Args: []Node{Identifier("C4"), Identifier("D4"), Identifier("E4")},
			},
		},
		{
			input: "set swing .5",
			want: Command{
				Name: "set",
				Args: []Node{Identifier("swing"), Float(0.5)},
			},
		},
		{
			input: "play",
			want:  Command{Name: "play"},
		},
	}
	for _, test := range tests {
		got, err := Parse(test.input)
		if err != nil {
			t.Errorf("%q: %v", test.input, err)
			continue
		}
		if !reflect.DeepEqual(test.want, got) {
			t.Errorf("%q:\nwant: %+v\ngot:  %+v", test.input, test.want, got)
		}
	}
}

func TestParseScript(t *testing.T) {
	got, err := ParseScript("preset felt; fill 1 '*;;  play ;")
	if err != nil {
		t.Fatal(err)
	}
	want := []Command{
		{Name: "preset", Args: []Node{Identifier("felt")}},
		{Name: "fill", Args: []Node{Int(1), expr(matchItem{0, matchAll})}},
		{Name: "play"},
	}
	if !reflect.DeepEqual(want, got) {
		t.Errorf("\nwant: %+v\ngot:  %+v", want, got)
	}

	if cmds, err := ParseScript("  # nothing to do"); err != nil || len(cmds) != 0 {
		t.Errorf("comment only: want no commands, got %v, %v", cmds, err)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		input string
		pos   int
	}{
		{"", 0},
		{"1 2", 0},
		{"fill 1 '", 8},
		{"fill 1 '1:x", 10},
		{"fill 1 '1,", 10},
		{"fill 1 '0", 8},
		{"fill 1 '1/", 10},
		{"play; stop", 6},
	}
	for _, test := range tests {
		_, err := Parse(test.input)
		var syntaxErr *SyntaxError
		if !errors.As(err, &syntaxErr) {
			t.Errorf("%q: want a syntax error, got %v", test.input, err)
			continue
		}
		if want, got := test.pos, syntaxErr.Pos; want != got {
			t.Errorf("%q: want error at %v, got %v (%v)", test.input, want, got, err)
		}
	}
}

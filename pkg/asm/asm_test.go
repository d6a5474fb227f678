package asm

import (
	"reflect"
	"strings"
	"testing"
)

func TestHelperFunctions(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"abc", true},
		{"_abc", true},
		{"abc1", true},
		{"1abc", false},
		{"", false},
		{"ab-c", false},
	}
	for _, tc := range tests {
		if got := isIdentifier(tc.input); got != tc.want {
			t.Errorf("isIdentifier(%q) = %v; want %v", tc.input, got, tc.want)
		}
	}

	arityTests := []struct {
		code   string
		want   int
		wantOk bool
	}{
		{"add", 2, true},
		{"lessThanEq", 2, true},
		{"not", 1, true},
		{"floor", 1, true},
		{"lessThenEq", 0, false},
	}
	for _, tc := range arityTests {
		got, ok := OpArity(tc.code)
		if got != tc.want || ok != tc.wantOk {
			t.Errorf("OpArity(%q) = %d, %v; want %d, %v", tc.code, got, ok, tc.want, tc.wantOk)
		}
	}
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		line    string
		want    parsedLine
		wantErr bool
	}{
		{
			"set x 5",
			parsedLine{lineNo: 1, mnemonic: "set", operands: []string{"x", "5"}, text: "set x 5"},
			false,
		},
		{
			"  op add x x 1  # bump",
			parsedLine{lineNo: 1, mnemonic: "op", operands: []string{"add", "x", "x", "1"}, text: "op add x x 1"},
			false,
		},
		{
			"loop:",
			parsedLine{lineNo: 1, labels: []string{"loop"}},
			false,
		},
		{
			"loop: end",
			parsedLine{lineNo: 1, labels: []string{"loop"}, mnemonic: "end", text: "end"},
			false,
		},
		{
			"a: b: noop",
			parsedLine{lineNo: 1, labels: []string{"a", "b"}, mnemonic: "noop", text: "noop"},
			false,
		},
		{
			"# only a comment",
			parsedLine{lineNo: 1},
			false,
		},
		{
			"1bad: end",
			parsedLine{},
			true,
		},
	}

	for _, tc := range tests {
		got, err := parseLine(tc.line, 1)
		if (err != nil) != tc.wantErr {
			t.Errorf("parseLine(%q) error = %v, wantErr %v", tc.line, err, tc.wantErr)
			continue
		}
		if tc.wantErr {
			continue
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("parseLine(%q) = %+v; want %+v", tc.line, got, tc.want)
		}
	}
}

func TestAssemble(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		want    []Instruction
		labels  map[string]int
		wantErr bool
	}{
		{
			name: "set and op",
			code: "set x 5\nop add y x 1",
			want: []Instruction{
				{Kind: KindSet, Args: []string{"x", "5"}, Line: 1, Text: "set x 5"},
				{Kind: KindOp, Code: "add", Args: []string{"y", "x", "1"}, Line: 2, Text: "op add y x 1"},
			},
			labels: map[string]int{},
		},
		{
			name: "unary op keeps placeholder",
			code: "op floor r0 x _",
			want: []Instruction{
				{Kind: KindOp, Code: "floor", Args: []string{"r0", "x", "_"}, Line: 1, Text: "op floor r0 x _"},
			},
			labels: map[string]int{},
		},
		{
			name: "forward label",
			code: "jump done always\nset x 1\ndone:\nend",
			want: []Instruction{
				{Kind: KindJump, Code: "always", Args: []string{}, Target: 2, Line: 1, Text: "jump done always"},
				{Kind: KindSet, Args: []string{"x", "1"}, Line: 2, Text: "set x 1"},
				{Kind: KindEnd, Line: 4, Text: "end"},
			},
			labels: map[string]int{"done": 2},
		},
		{
			name: "conditional jump to number",
			code: "jump 0 lessThan i 10",
			want: []Instruction{
				{Kind: KindJump, Code: "lessThan", Args: []string{"i", "10"}, Target: 0, Line: 1, Text: "jump 0 lessThan i 10"},
			},
			labels: map[string]int{},
		},
		{
			name: "unmodelled instruction is raw",
			code: "print x",
			want: []Instruction{
				{Kind: KindRaw, Code: "print", Args: []string{"x"}, Line: 1, Text: "print x"},
			},
			labels: map[string]int{},
		},
		{name: "set arity", code: "set x", wantErr: true},
		{name: "unknown op code", code: "op lessThenEq x a b", wantErr: true},
		{name: "op arity", code: "op add x a", wantErr: true},
		{name: "unknown condition", code: "jump 0 sometimes a b", wantErr: true},
		{name: "conditional jump arity", code: "jump 0 equal a", wantErr: true},
		{name: "undefined label", code: "jump nowhere always", wantErr: true},
		{name: "negative target", code: "jump -1 always", wantErr: true},
		{name: "duplicate label", code: "a:\na:\nend", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Assemble(tc.code)
			if (err != nil) != tc.wantErr {
				t.Fatalf("Assemble() error = %v, wantErr %v", err, tc.wantErr)
			}
			if tc.wantErr {
				return
			}
			if !reflect.DeepEqual(got.Instructions, tc.want) {
				t.Errorf("Assemble() instructions:\n got %+v\nwant %+v", got.Instructions, tc.want)
			}
			if !reflect.DeepEqual(got.Labels, tc.labels) {
				t.Errorf("Assemble() labels = %v; want %v", got.Labels, tc.labels)
			}
		})
	}
}

func TestAssembleErrorMentionsLine(t *testing.T) {
	_, err := Assemble("set x 1\n\nop bogus x 1 2")
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "line 3") {
		t.Errorf("error %q does not name line 3", err)
	}
}

func TestKindString(t *testing.T) {
	if got := KindJump.String(); got != "jump" {
		t.Errorf("KindJump.String() = %q", got)
	}
	if got := Kind(42).String(); got != "Kind(42)" {
		t.Errorf("Kind(42).String() = %q", got)
	}
}

package app

import (
	"bytes"
	"testing"
)

func TestTable(t *testing.T) {
	for _, testcase := range []struct {
		Name   string
		Header []string
		Rows   [][]string
		Expect string
	}{
		{"empty", nil, nil, ""},
		{"header only", []string{"NAME", "KIND"}, nil, "NAME  KIND\n"},
		{
			"east asian",
			[]string{"A", "B"},
			[][]string{{"セーブ", "x"}, {"ab", "y"}},
			"A       B\nセーブ  x\nab      y\n",
		},
		{
			"trailing space trimmed",
			nil,
			[][]string{{"name:", "v"}, {"kind:", ""}},
			"name:  v\nkind:\n",
		},
	} {
		t.Run(testcase.Name, func(t *testing.T) {
			tbl := newTable(testcase.Header...)
			for _, row := range testcase.Rows {
				tbl.Add(row...)
			}
			var buf bytes.Buffer
			if err := tbl.Write(&buf); err != nil {
				t.Fatal(err)
			}
			if got := buf.String(); got != testcase.Expect {
				t.Errorf("got %q, expect %q", got, testcase.Expect)
			}
		})
	}
}

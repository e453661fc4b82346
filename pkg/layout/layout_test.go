package layout

import (
	"strings"
	"testing"

	"github.com/mlindahl/layernet/pkg/network"
)

func buildDiamond(t *testing.T) *network.Network {
	t.Helper()
	net := network.New("merge")
	layers := []*network.Layer{
		network.NewLayer("i1", 1),
		network.NewLayer("i2", 1),
		network.NewLayer("m", 2).WithActivation("relu"),
		network.NewLayer("out", 1).WithActivation("sigmoid"),
	}
	for _, l := range layers {
		if err := net.AddLayer(l); err != nil {
			t.Fatalf("AddLayer: %v", err)
		}
	}
	for _, c := range [][2]string{{"i1", "m"}, {"i2", "m"}, {"m", "out"}} {
		if err := net.Connect(c[0], c[1]); err != nil {
			t.Fatalf("Connect: %v", err)
		}
	}
	return net
}

func TestCompute(t *testing.T) {
	l := Compute(buildDiamond(t))

	if l.Name != "merge" {
		t.Errorf("name = %q, want merge", l.Name)
	}
	if l.RowCount() != 3 {
		t.Fatalf("rows = %d, want 3", l.RowCount())
	}
	wantRows := [][]string{{"i1", "i2"}, {"m"}, {"out"}}
	for i, row := range wantRows {
		if len(l.Rows[i]) != len(row) {
			t.Fatalf("row %d = %v, want %v", i, l.Rows[i], row)
		}
		for j := range row {
			if l.Rows[i][j] != row[j] {
				t.Errorf("row %d = %v, want %v", i, l.Rows[i], row)
			}
		}
	}

	if len(l.InputBanks) != 2 || len(l.OutputBanks) != 1 {
		t.Errorf("banks = %v / %v", l.InputBanks, l.OutputBanks)
	}
	if len(l.Nodes) != 4 || len(l.Edges) != 3 {
		t.Errorf("nodes=%d edges=%d, want 4/3", len(l.Nodes), len(l.Edges))
	}

	byName := map[string]Node{}
	for _, n := range l.Nodes {
		byName[n.Name] = n
	}
	if byName["m"].Level != 1 || byName["m"].Kind != "hidden" || byName["m"].Activation != "relu" {
		t.Errorf("node m = %+v", byName["m"])
	}
	if byName["i1"].Level != 0 || byName["i1"].Kind != "input" {
		t.Errorf("node i1 = %+v", byName["i1"])
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(Compute(buildDiamond(t)), Options{})

	for _, want := range []string{
		"digraph G {",
		"rankdir=TB;",
		`"i1" -> "m";`,
		`"i2" -> "m";`,
		`"m" -> "out";`,
		`{ rank=same; "i1"; "i2"; }`,
		`{ rank=same; "m"; }`,
		"fillcolor=lightblue",
		"fillcolor=lightgoldenrod",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
}

func TestToDOTDetailed(t *testing.T) {
	dot := ToDOT(Compute(buildDiamond(t)), Options{Direction: "LR", Detailed: true})

	for _, want := range []string{
		"rankdir=LR;",
		"level: 1",
		"shape: (2)",
		"activation: relu",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
}

func TestNormalizeViewBox(t *testing.T) {
	svg := []byte(`<?xml version="1.0"?>` + "\n" +
		`<svg width="100pt" height="50pt" viewBox="0.00 0.00 144.00 72.00" xmlns="http://www.w3.org/2000/svg">` +
		`<g></g></svg>`)

	got := string(normalizeViewBox(svg))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 144.00 72.00" width="144" height="72">`
	if !strings.Contains(got, want) {
		t.Errorf("normalizeViewBox:\n got %s\nwant substring %s", got, want)
	}

	// No viewBox: unchanged
	plain := []byte("<svg></svg>")
	if string(normalizeViewBox(plain)) != "<svg></svg>" {
		t.Error("svg without viewBox should pass through unchanged")
	}
}

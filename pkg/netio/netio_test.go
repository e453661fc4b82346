package netio

import (
	"bytes"
	"path/filepath"
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

func TestRoundTrip(t *testing.T) {
	net := buildDiamond(t)

	var buf bytes.Buffer
	if err := WriteJSON(FromNetwork(net), &buf); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	g, err := ReadJSON(&buf)
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	restored, err := ToNetwork(g)
	if err != nil {
		t.Fatalf("ToNetwork: %v", err)
	}

	if restored.Name() != "merge" {
		t.Errorf("name = %q, want merge", restored.Name())
	}
	wantNames := []string{"i1", "i2", "m", "out"}
	gotNames := restored.Names()
	if len(gotNames) != len(wantNames) {
		t.Fatalf("names = %v, want %v", gotNames, wantNames)
	}
	for i := range wantNames {
		if gotNames[i] != wantNames[i] {
			t.Errorf("names[%d] = %s, want %s", i, gotNames[i], wantNames[i])
		}
	}

	m, _ := restored.Layer("m")
	if m.Activation() != "relu" {
		t.Errorf("activation = %q, want relu", m.Activation())
	}
	if k, _ := restored.Kind("m"); k != network.KindHidden {
		t.Errorf("kind(m) = %s, want hidden", k)
	}

	// Bank orders survive because insertion order does.
	inputs, outputs := restored.ResolveBanks()
	if len(inputs) != 2 || inputs[0] != "i1" || inputs[1] != "i2" {
		t.Errorf("input banks = %v, want [i1 i2]", inputs)
	}
	if len(outputs) != 1 || outputs[0] != "out" {
		t.Errorf("output banks = %v, want [out]", outputs)
	}
}

func TestExportImportFile(t *testing.T) {
	net := buildDiamond(t)
	path := filepath.Join(t.TempDir(), "merge.json")

	if err := ExportJSON(net, path); err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}
	restored, err := ImportJSON(path)
	if err != nil {
		t.Fatalf("ImportJSON: %v", err)
	}
	if restored.Len() != 4 {
		t.Errorf("restored %d layers, want 4", restored.Len())
	}
}

func TestToNetworkRejectsBadStructure(t *testing.T) {
	tests := []struct {
		name string
		g    Graph
	}{
		{
			name: "DuplicateLayer",
			g: Graph{Layers: []Layer{{Name: "x"}, {Name: "x"}}},
		},
		{
			name: "UnknownEdgeEndpoint",
			g: Graph{
				Layers:      []Layer{{Name: "x"}},
				Connections: []Connection{{From: "x", To: "ghost"}},
			},
		},
		{
			name: "CyclicEdges",
			g: Graph{
				Layers:      []Layer{{Name: "a"}, {Name: "b"}},
				Connections: []Connection{{From: "a", To: "b"}, {From: "b", To: "a"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ToNetwork(tt.g); err == nil {
				t.Error("ToNetwork succeeded, want error")
			}
		})
	}
}

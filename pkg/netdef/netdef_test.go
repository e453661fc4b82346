package netdef

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mlindahl/layernet/pkg/errors"
	"github.com/mlindahl/layernet/pkg/network"
)

const xorDef = `
name = "xor"
autoconnect = true

[[layer]]
name = "input"
shape = [2]

[[layer]]
name = "hidden"
shape = [5]
activation = "relu"

[[layer]]
name = "output"
shape = [1]
activation = "sigmoid"
`

const mergeDef = `
name = "merge"

[[layer]]
name = "i1"
shape = [1]

[[layer]]
name = "i2"
shape = [1]

[[layer]]
name = "m"
shape = [2]
activation = "relu"

[[connection]]
from = "i1"
to = "m"

[[connection]]
from = "i2"
to = "m"
`

func TestParseAndBuildAutoconnect(t *testing.T) {
	def, err := Parse([]byte(xorDef))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if def.Name != "xor" || !def.Autoconnect || len(def.Layers) != 3 {
		t.Fatalf("unexpected definition: %+v", def)
	}

	net, err := Build(def)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if k, _ := net.Kind("hidden"); k != network.KindHidden {
		t.Errorf("kind(hidden) = %s, want hidden", k)
	}
	hidden, _ := net.Layer("hidden")
	if hidden.Activation() != "relu" {
		t.Errorf("activation = %q, want relu", hidden.Activation())
	}
	if err := net.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestParseAndBuildExplicitConnections(t *testing.T) {
	def, err := Parse([]byte(mergeDef))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	net, err := Build(def)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	inputs, outputs := net.ResolveBanks()
	if len(inputs) != 2 || inputs[0] != "i1" || inputs[1] != "i2" {
		t.Errorf("input banks = %v, want [i1 i2]", inputs)
	}
	if len(outputs) != 1 || outputs[0] != "m" {
		t.Errorf("output banks = %v, want [m]", outputs)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code errors.Code
	}{
		{"Garbage", "= not toml", errors.ErrCodeInvalidManifest},
		{"NoLayers", `name = "empty"`, errors.ErrCodeInvalidManifest},
		{"UnnamedLayer", "[[layer]]\nshape = [2]", errors.ErrCodeInvalidManifest},
		{"NegativeDim", "[[layer]]\nname = \"x\"\nshape = [-2]", errors.ErrCodeInvalidShape},
		{
			name: "AutoconnectConflict",
			src:  "autoconnect = true\n[[layer]]\nname = \"a\"\n[[connection]]\nfrom = \"a\"\nto = \"a\"",
			code: errors.ErrCodeInvalidManifest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.src)); !errors.Is(err, tt.code) {
				t.Errorf("Parse: got %v, want %s", err, tt.code)
			}
		})
	}
}

func TestBuildSurfacesGraphErrors(t *testing.T) {
	def := Definition{
		Name:        "bad",
		Layers:      []LayerDef{{Name: "a"}, {Name: "b"}},
		Connections: []ConnectionDef{{From: "a", To: "b"}, {From: "b", To: "a"}},
	}
	if _, err := Build(def); !errors.Is(err, errors.ErrCodeCycle) {
		t.Errorf("Build: got %v, want CYCLE", err)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "xor.toml")
	if err := os.WriteFile(path, []byte(xorDef), 0o644); err != nil {
		t.Fatal(err)
	}

	net, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if net.Len() != 3 {
		t.Errorf("loaded %d layers, want 3", net.Len())
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("missing file: got %v, want NOT_FOUND", err)
	}
}

package store

import (
	"context"
	"testing"

	"github.com/mlindahl/layernet/pkg/errors"
	"github.com/mlindahl/layernet/pkg/netio"
)

func sampleGraph(name string) netio.Graph {
	return netio.Graph{
		Name: name,
		Layers: []netio.Layer{
			{Name: "input", Shape: []int{2}},
			{Name: "output", Shape: []int{1}, Activation: "sigmoid"},
		},
		Connections: []netio.Connection{{From: "input", To: "output"}},
	}
}

func TestMemoryStoreCRUD(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close(ctx)

	rec, err := s.Put(ctx, sampleGraph("xor"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if rec.ID == "" {
		t.Fatal("Put should assign an ID")
	}
	if rec.CreatedAt.IsZero() || !rec.CreatedAt.Equal(rec.UpdatedAt) {
		t.Errorf("timestamps: created=%v updated=%v", rec.CreatedAt, rec.UpdatedAt)
	}

	got, err := s.Get(ctx, rec.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Graph.Name != "xor" || len(got.Graph.Layers) != 2 {
		t.Errorf("Get returned wrong graph: %+v", got.Graph)
	}

	updated, err := s.Update(ctx, rec.ID, sampleGraph("xor-v2"))
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Graph.Name != "xor-v2" {
		t.Errorf("Update name = %q, want xor-v2", updated.Graph.Name)
	}
	if updated.CreatedAt != rec.CreatedAt {
		t.Error("Update should preserve CreatedAt")
	}

	if err := s.Delete(ctx, rec.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, rec.ID); !errors.Is(err, errors.ErrCodeNetworkNotFound) {
		t.Errorf("Get after Delete: got %v, want NETWORK_NOT_FOUND", err)
	}
}

func TestMemoryStoreNotFound(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if _, err := s.Get(ctx, "ghost"); !errors.Is(err, errors.ErrCodeNetworkNotFound) {
		t.Errorf("Get: got %v, want NETWORK_NOT_FOUND", err)
	}
	if _, err := s.Update(ctx, "ghost", sampleGraph("x")); !errors.Is(err, errors.ErrCodeNetworkNotFound) {
		t.Errorf("Update: got %v, want NETWORK_NOT_FOUND", err)
	}
	if err := s.Delete(ctx, "ghost"); !errors.Is(err, errors.ErrCodeNetworkNotFound) {
		t.Errorf("Delete: got %v, want NETWORK_NOT_FOUND", err)
	}
}

func TestMemoryStoreListOrder(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	for _, name := range []string{"a", "b", "c"} {
		if _, err := s.Put(ctx, sampleGraph(name)); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}

	recs, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("List returned %d records, want 3", len(recs))
	}
	for i := 1; i < len(recs); i++ {
		if recs[i].CreatedAt.Before(recs[i-1].CreatedAt) {
			t.Errorf("List not ordered by creation time at %d", i)
		}
	}
}

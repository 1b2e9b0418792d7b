package store

import (
	"context"
	"testing"

	"github.com/intentflow/intentflow/pkg/cdg"
	apperrors "github.com/intentflow/intentflow/pkg/errors"
)

func TestFileStoreRoundTrip(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	ctx := context.Background()

	g := cdg.Graph{
		ID:      "g1",
		Version: 2,
		Nodes:   []cdg.Node{{ID: "n_1", Type: cdg.TypeGoal, Statement: "plan a trip", Status: cdg.StatusConfirmed, Confidence: 0.9}},
		Edges:   []cdg.Edge{},
	}
	if err := s.Save(ctx, "c1", g); err != nil {
		t.Fatalf("Save: %v", err)
	}

	d, err := s.Load(ctx, "c1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if d.ConversationID != "c1" || d.Graph.Version != 2 || len(d.Graph.Nodes) != 1 {
		t.Errorf("Load = %+v", d)
	}
	if d.UpdatedAt.IsZero() {
		t.Error("UpdatedAt not stamped")
	}
}

func TestFileStoreMissingDraft(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	_, err = s.Load(context.Background(), "missing")
	if !apperrors.Is(err, apperrors.ErrCodeDraftNotFound) {
		t.Errorf("Load = %v, want draft not found", err)
	}
}

func TestFileStoreDelete(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	ctx := context.Background()

	if err := s.Save(ctx, "c1", cdg.Graph{ID: "g1"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Delete(ctx, "c1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Load(ctx, "c1"); !apperrors.Is(err, apperrors.ErrCodeDraftNotFound) {
		t.Errorf("Load after delete = %v", err)
	}

	// Deleting a missing draft is a no-op.
	if err := s.Delete(ctx, "c1"); err != nil {
		t.Errorf("second Delete: %v", err)
	}
}

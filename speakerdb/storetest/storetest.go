// Package storetest is a conformance suite for speakerdb.Store backends.
package storetest

import (
	"context"
	"testing"

	"github.com/kbukum/speakerkit/embedding"
	"github.com/kbukum/speakerkit/errors"
	"github.com/kbukum/speakerkit/speakerdb"
)

// Run exercises the Store contract against a fresh store from newStore.
func Run(t *testing.T, newStore func(t *testing.T) speakerdb.Store) {
	t.Helper()

	t.Run("register and search", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		alice, err := s.Append(ctx, speakerdb.AppendRequest{
			Name:        "Alice",
			AudioSource: "alice.wav",
			Vectors:     []embedding.Vector{{1, 0, 0}, {0.9, 0.1, 0}},
		})
		if err != nil {
			t.Fatalf("Append alice: %v", err)
		}
		bob, err := s.Append(ctx, speakerdb.AppendRequest{Name: "Bob", Vectors: []embedding.Vector{{0, 1, 0}}})
		if err != nil {
			t.Fatalf("Append bob: %v", err)
		}
		if alice == "" || alice == bob {
			t.Fatalf("expected distinct ids, got %q and %q", alice, bob)
		}

		got, err := s.Search(ctx, embedding.Vector{1, 0, 0}, 3, 0.7)
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected both alice embeddings, got %+v", got)
		}
		for _, c := range got {
			if c.SpeakerID != alice || c.SpeakerName != "Alice" {
				t.Errorf("unexpected candidate %+v", c)
			}
		}
		if got[0].Score < got[1].Score {
			t.Errorf("candidates not ranked: %+v", got)
		}
		if got[0].Score < 0.99 {
			t.Errorf("identical vector scored %v", got[0].Score)
		}
	})

	t.Run("append to existing speaker", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		id, err := s.Append(ctx, speakerdb.AppendRequest{Name: "Carol", Vectors: []embedding.Vector{{1, 1}}})
		if err != nil {
			t.Fatal(err)
		}
		if _, err := s.Append(ctx, speakerdb.AppendRequest{SpeakerID: id, Vectors: []embedding.Vector{{1, 0.9}, {0.9, 1}}}); err != nil {
			t.Fatal(err)
		}

		sp, err := s.Get(ctx, id)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if sp.Name != "Carol" || sp.EmbeddingCount != 3 {
			t.Errorf("unexpected speaker %+v", sp)
		}

		list, err := s.List(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if len(list) != 1 || list[0].EmbeddingCount != 3 {
			t.Errorf("unexpected list %+v", list)
		}

		stats, err := s.Stats(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if stats.Points != 3 || stats.Speakers != 1 {
			t.Errorf("unexpected stats %+v", stats)
		}
	})

	t.Run("delete removes every embedding", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		id, _ := s.Append(ctx, speakerdb.AppendRequest{Name: "Dave", Vectors: []embedding.Vector{{1, 0}, {1, 0.1}}})
		keep, _ := s.Append(ctx, speakerdb.AppendRequest{Name: "Erin", Vectors: []embedding.Vector{{0, 1}}})

		if err := s.Delete(ctx, id); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if _, err := s.Get(ctx, id); !errors.HasCode(err, errors.ErrCodeNotFound) {
			t.Errorf("expected NOT_FOUND after delete, got %v", err)
		}
		got, _ := s.Search(ctx, embedding.Vector{1, 0}, 3, 0.6)
		for _, c := range got {
			if c.SpeakerID == id {
				t.Errorf("deleted speaker still searchable: %+v", c)
			}
		}
		if _, err := s.Get(ctx, keep); err != nil {
			t.Errorf("unrelated speaker affected: %v", err)
		}
	})

	t.Run("unknown ids", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		if _, err := s.Get(ctx, "missing"); !errors.HasCode(err, errors.ErrCodeNotFound) {
			t.Errorf("Get: expected NOT_FOUND, got %v", err)
		}
		if err := s.Delete(ctx, "missing"); !errors.HasCode(err, errors.ErrCodeNotFound) {
			t.Errorf("Delete: expected NOT_FOUND, got %v", err)
		}
		if _, err := s.Append(ctx, speakerdb.AppendRequest{SpeakerID: "missing", Vectors: []embedding.Vector{{1}}}); !errors.HasCode(err, errors.ErrCodeNotFound) {
			t.Errorf("Append: expected NOT_FOUND, got %v", err)
		}
	})

	t.Run("empty store", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		list, err := s.List(ctx)
		if err != nil || list == nil || len(list) != 0 {
			t.Errorf("List on empty store = %v, %v", list, err)
		}
		got, err := s.Search(ctx, embedding.Vector{1, 0}, 3, 0)
		if err != nil || len(got) != 0 {
			t.Errorf("Search on empty store = %v, %v", got, err)
		}
		if err := s.Ping(ctx); err != nil {
			t.Errorf("Ping: %v", err)
		}
	})
}

package sponsor

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"weather-dashboard/internal/domain"
	"weather-dashboard/internal/storage"
	"weather-dashboard/internal/storage/memory"
)

func newTestRepository(t *testing.T) (*Repository, *memory.Store) {
	t.Helper()
	store := memory.NewBackend().Open()
	return NewRepository(context.Background(), store), store
}

func validRecord(name string) domain.SponsorRecord {
	return domain.SponsorRecord{
		Name: name,
		Logo: "https://example.test/" + name + ".png",
		Link: "https://" + name + ".test",
	}
}

func TestList_EmptyStore(t *testing.T) {
	repo, _ := newTestRepository(t)

	list := repo.List(context.Background())
	if len(list) != 0 {
		t.Errorf("expected empty list on first run, got %d records", len(list))
	}
}

func TestList_CorruptData(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not_json", "###"},
		{"wrong_shape_object", `{"name":"x"}`},
		{"wrong_shape_number", `42`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewBackend().Open()
			ctx := context.Background()
			if err := store.Write(ctx, storage.SponsorsKey, tt.raw); err != nil {
				t.Fatalf("write failed: %v", err)
			}

			repo := NewRepository(ctx, store)
			if list := repo.List(ctx); len(list) != 0 {
				t.Errorf("corrupt data must read as empty, got %d records", len(list))
			}
		})
	}
}

func TestCreate_AppendsAndPersists(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	first := validRecord("acme")
	second := validRecord("globex")

	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := repo.Create(ctx, second); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	list := repo.List(ctx)
	if len(list) != 2 {
		t.Fatalf("expected 2 records, got %d", len(list))
	}
	if list[len(list)-1] != second {
		t.Errorf("last element must equal the created record, got %+v", list[len(list)-1])
	}

	// A fresh repository over the same store sees the persisted list.
	reloaded := NewRepository(ctx, repoStore(repo))
	if got := reloaded.List(ctx); !reflect.DeepEqual(got, list) {
		t.Errorf("round-trip mismatch: %+v vs %+v", got, list)
	}
}

// repoStore exposes the store for reload tests.
func repoStore(r *Repository) storage.Store {
	return r.store
}

func TestCreate_EmptyFieldRejected(t *testing.T) {
	tests := []struct {
		name string
		rec  domain.SponsorRecord
	}{
		{"empty_name", domain.SponsorRecord{Name: "", Logo: "l", Link: "k"}},
		{"empty_logo", domain.SponsorRecord{Name: "n", Logo: "", Link: "k"}},
		{"empty_link", domain.SponsorRecord{Name: "n", Logo: "l", Link: ""}},
		{"whitespace_name", domain.SponsorRecord{Name: "   ", Logo: "l", Link: "k"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, store := newTestRepository(t)
			ctx := context.Background()

			err := repo.Create(ctx, tt.rec)
			if !errors.Is(err, domain.ErrEmptyField) {
				t.Fatalf("expected ErrEmptyField, got %v", err)
			}
			if len(repo.List(ctx)) != 0 {
				t.Error("list must be unchanged after a rejected create")
			}
			if _, ok, _ := store.Read(ctx, storage.SponsorsKey); ok {
				t.Error("no write may occur for a rejected create")
			}
		})
	}
}

func TestUpdate(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	for _, name := range []string{"a", "b", "c"} {
		if err := repo.Create(ctx, validRecord(name)); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	replacement := validRecord("replacement")
	if err := repo.Update(ctx, 1, replacement); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	list := repo.List(ctx)
	if list[1] != replacement {
		t.Errorf("expected index 1 to equal the replacement, got %+v", list[1])
	}
	if list[0] != validRecord("a") || list[2] != validRecord("c") {
		t.Error("update must not touch other records")
	}
}

func TestUpdate_Rejections(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()
	if err := repo.Create(ctx, validRecord("only")); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	before := repo.List(ctx)

	t.Run("out_of_bounds", func(t *testing.T) {
		for _, idx := range []int{-1, 1, 99} {
			if err := repo.Update(ctx, idx, validRecord("x")); !errors.Is(err, domain.ErrIndexOutOfRange) {
				t.Errorf("index %d: expected ErrIndexOutOfRange, got %v", idx, err)
			}
		}
	})

	t.Run("empty_field", func(t *testing.T) {
		err := repo.Update(ctx, 0, domain.SponsorRecord{Name: "n", Logo: "", Link: "k"})
		if !errors.Is(err, domain.ErrEmptyField) {
			t.Errorf("expected ErrEmptyField, got %v", err)
		}
	})

	if after := repo.List(ctx); !reflect.DeepEqual(before, after) {
		t.Error("rejected updates must leave the list unchanged")
	}
}

func TestDelete(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	for _, name := range []string{"a", "b", "c"} {
		if err := repo.Create(ctx, validRecord(name)); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	if err := repo.Delete(ctx, 1); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	list := repo.List(ctx)
	if len(list) != 2 {
		t.Fatalf("expected 2 records after delete, got %d", len(list))
	}
	// Subsequent records shift down by one.
	if list[0] != validRecord("a") || list[1] != validRecord("c") {
		t.Errorf("unexpected list after delete: %+v", list)
	}

	if err := repo.Delete(ctx, 5); !errors.Is(err, domain.ErrIndexOutOfRange) {
		t.Errorf("expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestDelete_LastRecordLeavesEmptyList(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	if err := repo.Create(ctx, validRecord("acme")); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := repo.Delete(ctx, 0); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if list := repo.List(ctx); len(list) != 0 {
		t.Errorf("expected empty list, got %+v", list)
	}
}

func TestRoundTrip(t *testing.T) {
	repo, store := newTestRepository(t)
	ctx := context.Background()

	want := make([]domain.SponsorRecord, 0, 5)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		rec := validRecord(name)
		want = append(want, rec)
		if err := repo.Create(ctx, rec); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	reloaded := NewRepository(ctx, store)
	got := reloaded.List(ctx)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round-trip mismatch:\n got %+v\nwant %+v", got, want)
	}
}

// Two repositories over the same backing store model two open tabs. A write
// from one replaces the whole stored list; there is no merge.
func TestLastWriteWins(t *testing.T) {
	backend := memory.NewBackend()
	ctx := context.Background()

	repoA := NewRepository(ctx, backend.Open())
	repoB := NewRepository(ctx, backend.Open())

	r1 := validRecord("from-a")
	r2 := validRecord("from-b")

	if err := repoA.Create(ctx, r1); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	// B never re-read after A's write; its view is still empty.
	if err := repoB.Create(ctx, r2); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	wantFinal := []domain.SponsorRecord{r2}
	if got := repoA.List(ctx); !reflect.DeepEqual(got, wantFinal) {
		t.Errorf("repo A sees %+v, want %+v (last write wins, no merge)", got, wantFinal)
	}
	if got := repoB.List(ctx); !reflect.DeepEqual(got, wantFinal) {
		t.Errorf("repo B sees %+v, want %+v", got, wantFinal)
	}
}

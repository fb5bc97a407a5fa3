package store_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/takiras/storefront/store"
)

func newStore(t *testing.T) *store.Store {
	t.Helper()

	st, err := store.New(t.TempDir())
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	return st
}

func TestReadAbsentKey(t *testing.T) {
	st := newStore(t)

	var out []string
	if err := st.Read(store.KeyCart, &out); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for a key never written, got %v", err)
	}
}

func TestAbsentDistinctFromEmpty(t *testing.T) {
	st := newStore(t)

	if err := st.Write(store.KeyCart, []string{}); err != nil {
		t.Fatalf("writing empty sequence: %v", err)
	}

	var out []string
	if err := st.Read(store.KeyCart, &out); err != nil {
		t.Fatalf("a stored empty sequence must read back without error, got %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected empty sequence, got %v", out)
	}
}

func TestRoundTrip(t *testing.T) {
	st := newStore(t)

	type record struct {
		User  string   `json:"user"`
		Items []string `json:"items"`
	}

	in := record{User: "u1", Items: []string{"p1", "p2"}}
	if err := st.Write(store.KeyCart, in); err != nil {
		t.Fatalf("writing record: %v", err)
	}

	var out record
	if err := st.Read(store.KeyCart, &out); err != nil {
		t.Fatalf("reading record: %v", err)
	}

	if diff := cmp.Diff(in, out); diff != "" {
		t.Fatalf("stored record mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteUnserializable(t *testing.T) {
	st := newStore(t)

	if err := st.Write(store.KeyAuth, make(chan int)); err == nil {
		t.Fatal("expected an error for a non-serializable value")
	}

	var out any
	if err := st.Read(store.KeyAuth, &out); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("a failed write must not leave a record behind, got %v", err)
	}
}

func TestDeleteIdempotent(t *testing.T) {
	st := newStore(t)

	if err := st.Delete(store.KeyAuth); err != nil {
		t.Fatalf("deleting an absent key must be a no-op, got %v", err)
	}

	if err := st.Write(store.KeyAuth, "token"); err != nil {
		t.Fatalf("writing value: %v", err)
	}
	if err := st.Delete(store.KeyAuth); err != nil {
		t.Fatalf("deleting key: %v", err)
	}
	if err := st.Delete(store.KeyAuth); err != nil {
		t.Fatalf("second delete must be a no-op, got %v", err)
	}

	var out string
	if err := st.Read(store.KeyAuth, &out); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestClear(t *testing.T) {
	st := newStore(t)

	if err := st.Write(store.KeyAuth, "token"); err != nil {
		t.Fatalf("writing auth: %v", err)
	}
	if err := st.Write(store.KeyCart, []string{"p1"}); err != nil {
		t.Fatalf("writing cart: %v", err)
	}

	if err := st.Clear(); err != nil {
		t.Fatalf("clearing store: %v", err)
	}

	var s string
	if err := st.Read(store.KeyAuth, &s); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("auth should be gone after clear, got %v", err)
	}
	var c []string
	if err := st.Read(store.KeyCart, &c); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("cart should be gone after clear, got %v", err)
	}
}

func TestUpdateInitializesLazily(t *testing.T) {
	st := newStore(t)

	err := store.Update(st, store.KeyCart, func(items []string, found bool) ([]string, error) {
		if found {
			t.Fatal("transform of an absent key must see found=false")
		}
		return append(items, "p1"), nil
	})
	if err != nil {
		t.Fatalf("updating absent key: %v", err)
	}

	var out []string
	if err := st.Read(store.KeyCart, &out); err != nil {
		t.Fatalf("reading updated key: %v", err)
	}
	if diff := cmp.Diff([]string{"p1"}, out); diff != "" {
		t.Fatalf("updated value mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdateIsAtomic(t *testing.T) {
	st := newStore(t)

	const writers = 10
	const perWriter = 20

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWriter; j++ {
				err := store.Update(st, store.KeyCart, func(items []string, found bool) ([]string, error) {
					return append(items, "p"), nil
				})
				if err != nil {
					t.Errorf("concurrent update: %v", err)
				}
			}
		}()
	}
	wg.Wait()

	var out []string
	if err := st.Read(store.KeyCart, &out); err != nil {
		t.Fatalf("reading final value: %v", err)
	}
	if len(out) != writers*perWriter {
		t.Fatalf("lost updates: expected %d items, got %d", writers*perWriter, len(out))
	}
}

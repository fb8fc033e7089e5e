package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/dgraph-io/badger"

	"github.com/mosaicnetworks/consent/src/address"
	cm "github.com/mosaicnetworks/consent/src/common"
)

var ns = address.Namespace("consent")

func addr(i int) string {
	return address.ClientAddress(ns, string(rune('a'+i)))
}

// testStore runs the behaviour every Store must share.
func testStore(t *testing.T, s Store) {
	// absent reads
	err := s.View(func(ctx Context) error {
		_, err := ctx.GetState(addr(0))
		return err
	})
	if !cm.IsStore(err, cm.KeyNotFound) {
		t.Fatalf("expected KeyNotFound, got %v", err)
	}

	// writes are visible inside the transaction and after commit
	err = s.Update(func(ctx Context) error {
		if err := ctx.SetState(addr(0), []byte("zero")); err != nil {
			return err
		}
		v, err := ctx.GetState(addr(0))
		if err != nil {
			return err
		}
		if string(v) != "zero" {
			t.Fatalf("read-your-writes: got %q", v)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	checkValue(t, s, addr(0), "zero")

	// a failing transaction leaves nothing behind
	boom := errors.New("boom")
	err = s.Update(func(ctx Context) error {
		if err := ctx.SetState(addr(0), []byte("overwritten")); err != nil {
			return err
		}
		if err := ctx.SetState(addr(1), []byte("one")); err != nil {
			return err
		}
		return boom
	})
	if err != boom {
		t.Fatalf("expected boom, got %v", err)
	}

	checkValue(t, s, addr(0), "zero")
	err = s.View(func(ctx Context) error {
		_, err := ctx.GetState(addr(1))
		return err
	})
	if !cm.IsStore(err, cm.KeyNotFound) {
		t.Fatalf("aborted write should not be visible, got %v", err)
	}

	// snapshot and restore
	snap, err := s.Snapshot()
	if err != nil {
		t.Fatal(err)
	}

	err = s.Update(func(ctx Context) error {
		if err := ctx.SetState(addr(0), []byte("changed")); err != nil {
			return err
		}
		return ctx.SetState(addr(2), []byte("two"))
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Restore(snap); err != nil {
		t.Fatal(err)
	}

	checkValue(t, s, addr(0), "zero")
	err = s.View(func(ctx Context) error {
		_, err := ctx.GetState(addr(2))
		return err
	})
	if !cm.IsStore(err, cm.KeyNotFound) {
		t.Fatalf("restore should drop later writes, got %v", err)
	}

	snap2, err := s.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	if string(snap) != string(snap2) {
		t.Fatalf("snapshots of equal states should be equal:\n%s\n%s", snap, snap2)
	}
}

func checkValue(t *testing.T, s Store, a, want string) {
	t.Helper()
	err := s.View(func(ctx Context) error {
		v, err := ctx.GetState(a)
		if err != nil {
			return err
		}
		if string(v) != want {
			t.Fatalf("%s: got %q, want %q", a, v, want)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestInmemStore(t *testing.T) {
	s := NewInmemStore()
	testStore(t, s)

	if s.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", s.Len())
	}

	err := s.View(func(ctx Context) error {
		return ctx.SetState(addr(3), []byte("x"))
	})
	if err == nil {
		t.Fatalf("View should be read-only")
	}

	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if err := s.Update(func(Context) error { return nil }); !cm.IsStore(err, cm.Closed) {
		t.Fatalf("expected Closed, got %v", err)
	}
}

func TestBadgerStore(t *testing.T) {
	dir := t.TempDir()

	s, err := NewBadgerStore(dir)
	if err != nil {
		t.Fatal(err)
	}

	testStore(t, s)

	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	// reopen and check durability
	s, err = NewBadgerStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if s.StorePath() != dir {
		t.Fatalf("StorePath should be %s, not %s", dir, s.StorePath())
	}

	checkValue(t, s, addr(0), "zero")
}

func TestNamespacedContext(t *testing.T) {
	s := NewInmemStore()
	other := address.ClientAddress(address.Namespace("other"), "a")

	err := s.Update(func(ctx Context) error {
		nctx := NewNamespacedContext(ctx, []string{ns})

		if err := nctx.SetState(addr(0), []byte("ok")); err != nil {
			t.Fatalf("in-namespace write failed: %v", err)
		}

		if err := nctx.SetState(other, []byte("no")); !cm.IsStore(err, cm.OutOfNamespace) {
			t.Fatalf("expected OutOfNamespace on write, got %v", err)
		}

		if _, err := nctx.GetState(other); !cm.IsStore(err, cm.OutOfNamespace) {
			t.Fatalf("expected OutOfNamespace on read, got %v", err)
		}

		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	checkValue(t, s, addr(0), "ok")
}

func TestBadgerRestoreLargeState(t *testing.T) {
	dir := t.TempDir()

	// small tables shrink badger's per-transaction limits
	opts := badger.DefaultOptions(dir).WithMaxTableSize(1 << 20)
	opts.SyncWrites = false

	s, err := newBadgerStore(dir, opts)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if err := s.Update(func(ctx Context) error {
		return ctx.SetState("stale", []byte("gone after restore"))
	}); err != nil {
		t.Fatal(err)
	}

	const n = 5000
	value := make([]byte, 64)

	src := NewInmemStore()
	err = src.Update(func(ctx Context) error {
		for i := 0; i < n; i++ {
			if err := ctx.SetState(fmt.Sprintf("%s%08d", ns, i), value); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	snap, err := src.Snapshot()
	if err != nil {
		t.Fatal(err)
	}

	// the same load does not fit in one badger transaction
	err = s.db.Update(func(txn *badger.Txn) error {
		for i := 0; i < n; i++ {
			if err := txn.Set([]byte(fmt.Sprintf("%s%08d", ns, i)), value); err != nil {
				return err
			}
		}
		return nil
	})
	if err != badger.ErrTxnTooBig {
		t.Fatalf("expected ErrTxnTooBig from a single transaction, got %v", err)
	}

	if err := s.Restore(snap); err != nil {
		t.Fatal(err)
	}

	err = s.View(func(ctx Context) error {
		_, err := ctx.GetState("stale")
		return err
	})
	if !cm.IsStore(err, cm.KeyNotFound) {
		t.Fatalf("restore should drop the previous state, got %v", err)
	}

	restored, err := s.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	if string(restored) != string(snap) {
		t.Fatalf("restored state differs from the snapshot")
	}
}

func TestOverlay(t *testing.T) {
	s := NewInmemStore()

	err := s.Update(func(ctx Context) error {
		if err := ctx.SetState(addr(0), []byte("base")); err != nil {
			return err
		}

		discarded := NewOverlay(ctx)
		if err := discarded.SetState(addr(0), []byte("dropped")); err != nil {
			return err
		}
		if err := discarded.SetState(addr(1), []byte("dropped")); err != nil {
			return err
		}
		if v, _ := discarded.GetState(addr(0)); string(v) != "dropped" {
			t.Fatalf("overlay should read its own writes, got %q", v)
		}
		if v, _ := ctx.GetState(addr(0)); string(v) != "base" {
			t.Fatalf("uncommitted overlay leaked into the base: %q", v)
		}

		kept := NewOverlay(ctx)
		if v, _ := kept.GetState(addr(0)); string(v) != "base" {
			t.Fatalf("overlay should read through to the base, got %q", v)
		}
		if err := kept.SetState(addr(2), []byte("two")); err != nil {
			return err
		}
		return kept.Commit()
	})
	if err != nil {
		t.Fatal(err)
	}

	checkValue(t, s, addr(0), "base")
	checkValue(t, s, addr(2), "two")

	if s.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", s.Len())
	}
}

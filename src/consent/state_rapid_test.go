package consent

import (
	"testing"

	"github.com/mosaicnetworks/consent/src/address"
	"pgregory.net/rapid"
)

type triple struct {
	kind      address.Kind
	src, dest string
}

// consentMachine checks ConsentState against a plain map model. Any sequence
// of grants and revokes must leave every triple equal to the last operation
// applied to it, and untouched triples without access.
type consentMachine struct {
	state *ConsentState
	model map[triple]bool
}

var principals = []string{p1, p2, p3}

func drawTriple(t *rapid.T) triple {
	return triple{
		kind: rapid.SampledFrom(address.PermissionKinds).Draw(t, "kind"),
		src:  rapid.SampledFrom(principals).Draw(t, "src"),
		dest: rapid.SampledFrom(principals).Draw(t, "dest"),
	}
}

func (m *consentMachine) Grant(t *rapid.T) {
	tr := drawTriple(t)
	if err := m.state.setPermission(tr.kind, tr.dest, tr.src, true); err != nil {
		t.Fatal(err)
	}
	m.model[tr] = true
}

func (m *consentMachine) Revoke(t *rapid.T) {
	tr := drawTriple(t)
	if err := m.state.setPermission(tr.kind, tr.dest, tr.src, false); err != nil {
		t.Fatal(err)
	}
	m.model[tr] = false
}

func (m *consentMachine) Check(t *rapid.T) {
	for _, k := range address.PermissionKinds {
		for _, src := range principals {
			for _, dest := range principals {
				got, err := m.state.HasAccess(k, dest, src)
				if err != nil {
					t.Fatal(err)
				}
				if want := m.model[triple{k, src, dest}]; got != want {
					t.Fatalf("%s %s->%s: got %v, want %v", k, src, dest, got, want)
				}
			}
		}
	}
}

func TestConsentStateMachine(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		m := &consentMachine{
			state: NewConsentState(newCountingContext(), prefix),
			model: make(map[triple]bool),
		}
		t.Repeat(rapid.StateMachineActions(m))
	})
}

func TestGrantThenRevokeFromAnyState(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ctx := newCountingContext()
		s := NewConsentState(ctx, prefix)

		// arbitrary prior state
		for i, n := 0, rapid.IntRange(0, 10).Draw(t, "n"); i < n; i++ {
			tr := drawTriple(t)
			if err := s.setPermission(tr.kind, tr.dest, tr.src, rapid.Bool().Draw(t, "granted")); err != nil {
				t.Fatal(err)
			}
		}

		tr := drawTriple(t)
		if err := s.setPermission(tr.kind, tr.dest, tr.src, true); err != nil {
			t.Fatal(err)
		}
		before := ctx.sets
		if err := s.setPermission(tr.kind, tr.dest, tr.src, true); err != nil {
			t.Fatal(err)
		}
		if ctx.sets != before {
			t.Fatalf("second grant wrote state")
		}
		if err := s.setPermission(tr.kind, tr.dest, tr.src, false); err != nil {
			t.Fatal(err)
		}

		ok, err := s.HasAccess(tr.kind, tr.dest, tr.src)
		if err != nil {
			t.Fatal(err)
		}
		if ok {
			t.Fatalf("grant then revoke should leave no access")
		}
	})
}

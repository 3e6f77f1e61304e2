package ops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDagger(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		op   Op
		want Op
		ok   bool
	}{
		{name: "h_self_inverse", op: Gate(H), want: Gate(H), ok: true},
		{name: "s_to_sdg", op: Gate(S), want: Gate(Sdg), ok: true},
		{name: "sdg_to_s", op: Gate(Sdg), want: Gate(S), ok: true},
		{name: "t_to_tdg", op: Gate(T), want: Gate(Tdg), ok: true},
		{name: "cx_self_inverse", op: Gate(CX), want: Gate(CX), ok: true},
		{name: "rz_negates_angle", op: RzGate(0.25), want: RzGate(-0.25), ok: true},
		{name: "rx_negates_angle", op: RxGate(1.5), want: RxGate(-1.5), ok: true},
		{name: "measure_has_no_dagger", op: Gate(Measure), ok: false},
		{name: "opaque_has_no_dagger", op: OpaqueGate("mystery", 1, nil), ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.op.Dagger()
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, got.Equal(tt.want))
			}
		})
	}
}

func TestDaggerRoundTrip(t *testing.T) {
	t.Parallel()
	for _, op := range []Op{Gate(H), Gate(S), Gate(T), Gate(V), Gate(CX), Gate(CZ), RzGate(0.3)} {
		d, ok := op.Dagger()
		require.True(t, ok, op.DisplayName())
		dd, ok := d.Dagger()
		require.True(t, ok, op.DisplayName())
		assert.True(t, dd.Equal(op), op.DisplayName())
	}
}

func TestIdentityPhase(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		op    Op
		phase float64
		ok    bool
	}{
		{name: "noop", op: Gate(Noop), phase: 0, ok: true},
		{name: "rz_zero", op: RzGate(0), phase: 0, ok: true},
		{name: "rz_full_turn", op: RzGate(2), phase: -1, ok: true},
		{name: "rx_two_turns", op: RxGate(4), phase: 0, ok: true},
		{name: "rz_half_turn_not_identity", op: RzGate(1), ok: false},
		{name: "h_not_identity", op: Gate(H), ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			phase, ok := tt.op.IdentityPhase()
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.phase, phase, 1e-12)
			}
		})
	}
}

func TestQubitCommutation(t *testing.T) {
	t.Parallel()
	tests := []struct {
		op   Op
		want []Pauli
	}{
		{op: Gate(X), want: []Pauli{PauliX}},
		{op: Gate(Z), want: []Pauli{PauliZ}},
		{op: Gate(S), want: []Pauli{PauliZ}},
		{op: RzGate(0.5), want: []Pauli{PauliZ}},
		{op: RxGate(0.5), want: []Pauli{PauliX}},
		{op: Gate(CX), want: []Pauli{PauliZ, PauliX}},
		{op: Gate(CZ), want: []Pauli{PauliZ, PauliZ}},
		{op: Gate(H), want: []Pauli{PauliNone}},
		{op: Gate(Noop), want: []Pauli{PauliI}},
	}
	for _, tt := range tests {
		t.Run(tt.op.DisplayName(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.op.QubitCommutation())
		})
	}
}

func TestPauliCommutesWith(t *testing.T) {
	t.Parallel()
	assert.True(t, PauliZ.CommutesWith(PauliZ))
	assert.True(t, PauliI.CommutesWith(PauliX))
	assert.True(t, PauliX.CommutesWith(PauliI))
	assert.False(t, PauliZ.CommutesWith(PauliX))
	assert.False(t, PauliX.CommutesWith(PauliY))
	// An unconstrained operation never commutes, not even with itself.
	assert.False(t, PauliNone.CommutesWith(PauliNone))
	assert.False(t, PauliNone.CommutesWith(PauliI))
}

func TestMatchOp(t *testing.T) {
	t.Parallel()
	cx := NewMatchOp(Gate(CX))
	assert.True(t, cx.Matches(Gate(CX)))
	assert.False(t, cx.Matches(Gate(CZ)))

	// Parametric gates only match on equal canonical payloads.
	rz := NewMatchOp(RzGate(0.25))
	assert.True(t, rz.Matches(RzGate(0.25)))
	assert.False(t, rz.Matches(RzGate(0.5)))
}

func TestOpHash(t *testing.T) {
	t.Parallel()
	assert.Equal(t, Hash(Gate(CX)), Hash(Gate(CX)))
	assert.NotEqual(t, Hash(Gate(CX)), Hash(Gate(CZ)))
	assert.NotEqual(t, Hash(RzGate(0.25)), Hash(RzGate(0.5)))
}

func TestGateTypeFromName(t *testing.T) {
	t.Parallel()
	assert.Equal(t, CX, GateTypeFromName("CX"))
	assert.Equal(t, Rz, GateTypeFromName("Rz"))
	assert.Equal(t, Opaque, GateTypeFromName("NotARealGate"))
}

func TestSignature(t *testing.T) {
	t.Parallel()
	in, out := Gate(CX).Signature()
	assert.Equal(t, []WireKind{KindQubit, KindQubit}, in)
	assert.Equal(t, []WireKind{KindQubit, KindQubit}, out)

	in, out = Gate(Measure).Signature()
	assert.Equal(t, []WireKind{KindQubit}, in)
	assert.Equal(t, []WireKind{KindQubit, KindBit}, out)
}

package fuzz

import (
	"fmt"
	"math/rand"
	"sync/atomic"
	"time"

	corefuzzerrors "github.com/orizon-lang/corefuzz/internal/errors"
	"github.com/orizon-lang/corefuzz/internal/mutator"
)

// byteStrategy produces a mutated payload from a parent, independent of the
// typed Mutator[T] contract: it is the raw building block AsTypedMutator's
// RandomMutate calls into for the --target raw/--sensor raw uninstrumented
// fallback.
type byteStrategy func(r *rand.Rand, in []byte) []byte

// fixedByteStrategy is a flat, non-adaptive byte-level mutation strategy:
// one of insert, bit-flip, byte-replace, or single-byte delete per call.
func fixedByteStrategy() byteStrategy {
	return func(r *rand.Rand, in []byte) []byte {
		out := append([]byte(nil), in...)
		if len(out) == 0 || r.Intn(3) == 0 {
			pos := r.Intn(len(out) + 1)
			b := byte(r.Intn(256))
			out = append(out[:pos], append([]byte{b}, out[pos:]...)...)
		} else if r.Intn(2) == 0 {
			pos := r.Intn(len(out))

			if r.Intn(2) == 0 {
				out[pos] ^= 1 << uint(r.Intn(8))
			} else {
				out[pos] = byte(r.Intn(256))
			}
		} else if len(out) > 0 {
			pos := r.Intn(len(out))
			out = append(out[:pos], out[pos+1:]...)
		}

		return out
	}
}

// intensityByteStrategy scales the number and aggressiveness of edits
// according to an atomically read intensity level (percent scale,
// 100=baseline, clamped to [50, 300]). NewAsTypedMutator stores 100 and
// nothing in this package changes it, so adaptive mode applies one or two
// edits per call.
func intensityByteStrategy(level *atomic.Uint64) byteStrategy {
	return func(r *rand.Rand, in []byte) []byte {
		out := append([]byte(nil), in...)

		lv := int(level.Load())
		if lv < 50 {
			lv = 50
		}

		if lv > 300 {
			lv = 300
		}

		maxEdits := 1 + lv/100
		if maxEdits > 4 {
			maxEdits = 4
		}

		edits := 1 + r.Intn(maxEdits)
		for i := 0; i < edits; i++ {
			if len(out) == 0 || r.Intn(3) == 0 {
				pos := r.Intn(len(out) + 1)
				b := byte(r.Intn(256))
				out = append(out[:pos], append([]byte{b}, out[pos:]...)...)
			} else if r.Intn(2) == 0 {
				pos := r.Intn(len(out))

				if r.Intn(2) == 0 {
					flips := 1 + r.Intn(1+lv/120)
					for k := 0; k < flips; k++ {
						out[pos] ^= 1 << uint(r.Intn(8))
					}
				} else {
					out[pos] = byte(r.Intn(256))
				}
			} else if len(out) > 0 {
				pos := r.Intn(len(out))
				span := 1

				if lv >= 200 && len(out)-pos > 2 {
					span = 1 + r.Intn(min(3, len(out)-pos))
				}

				out = append(out[:pos], out[pos+span:]...)
			}
		}

		return out
	}
}

// AsTypedMutator adapts fixedByteStrategy/intensityByteStrategy, the
// byte-slice mutation strategies the --target raw fallback has used since
// before this module grew a typed Mutator[T] contract, into a
// mutator.Mutator[[]byte]. RandomMutate is where those strategies actually
// run; the ordered and arbitrary paths are a minimal deterministic scaffold
// around them so the full contract (and the round-trip law) still holds for
// callers that rely on it.
type AsTypedMutator struct {
	MaxLen   int
	Adaptive bool
	level    atomic.Uint64
}

// NewAsTypedMutator returns an adapter capped at maxLen bytes. When adaptive
// is true, RandomMutate scales edit count/aggressiveness via
// intensityByteStrategy and its internal intensity level; otherwise it uses
// the fixed-strategy fixedByteStrategy.
func NewAsTypedMutator(maxLen int, adaptive bool) *AsTypedMutator {
	if maxLen <= 0 {
		maxLen = 4096
	}

	m := &AsTypedMutator{MaxLen: maxLen, Adaptive: adaptive}
	m.level.Store(100)

	return m
}

var _ mutator.Mutator[[]byte] = (*AsTypedMutator)(nil)

func (m *AsTypedMutator) DefaultArbitraryStep() mutator.ArbitraryStep { return 0 }

func (m *AsTypedMutator) ValidateValue(v []byte) (mutator.Cache, bool) {
	if len(v) > m.MaxLen {
		return nil, false
	}

	return nil, true
}

func (m *AsTypedMutator) DefaultMutationStep(v []byte, cache mutator.Cache) mutator.MutationStep {
	return 0
}

func (m *AsTypedMutator) MinComplexity() float64 { return 1 }

func (m *AsTypedMutator) MaxComplexity() float64 { return float64(m.MaxLen) + 1 }

func (m *AsTypedMutator) Complexity(v []byte, cache mutator.Cache) float64 {
	return float64(len(v)) + 1
}

// OrderedArbitrary deterministically enumerates all-zero byte slices of
// increasing length, one per call, until the length would exceed maxCplx or
// MaxLen.
func (m *AsTypedMutator) OrderedArbitrary(step *mutator.ArbitraryStep, maxCplx float64) ([]byte, float64, bool) {
	length := (*step).(int)
	cplx := float64(length) + 1

	if cplx > maxCplx || length > m.MaxLen {
		return nil, 0, false
	}

	*step = length + 1

	return make([]byte, length), cplx, true
}

// RandomArbitrary synthesizes a uniformly random byte slice whose length is
// bounded by both maxCplx and MaxLen.
func (m *AsTypedMutator) RandomArbitrary(r *rand.Rand, maxCplx float64) ([]byte, float64) {
	ceiling := m.MaxLen
	if budget := int(maxCplx) - 1; budget < ceiling {
		ceiling = budget
	}

	if ceiling < 0 {
		ceiling = 0
	}

	length := 0
	if ceiling > 0 {
		length = r.Intn(ceiling + 1)
	}

	out := make([]byte, length)
	for i := range out {
		out[i] = byte(r.Intn(256))
	}

	return out, float64(length) + 1
}

// OrderedMutate deterministically flips one bit at a time, in ascending bit
// index, wrapping the unmutate token around the byte it overwrote.
func (m *AsTypedMutator) OrderedMutate(v *[]byte, cache *mutator.Cache, step *mutator.MutationStep, maxCplx float64) (mutator.UnmutateToken, float64, bool) {
	bit := (*step).(int)
	if len(*v) == 0 || bit >= len(*v)*8 {
		return nil, 0, false
	}

	idx := bit / 8
	shift := uint(bit % 8)
	old := (*v)[idx]
	(*v)[idx] ^= 1 << shift

	*step = bit + 1

	return byteUnmutateToken{index: idx, prior: old}, m.Complexity(*v, nil), true
}

// RandomMutate delegates to fixedByteStrategy or intensityByteStrategy,
// clamping growth to MaxLen.
func (m *AsTypedMutator) RandomMutate(r *rand.Rand, v *[]byte, cache *mutator.Cache, maxCplx float64) (mutator.UnmutateToken, float64) {
	prior := append([]byte(nil), (*v)...)

	var strategy byteStrategy
	if m.Adaptive {
		strategy = intensityByteStrategy(&m.level)
	} else {
		strategy = fixedByteStrategy()
	}

	out := strategy(r, *v)
	if len(out) > m.MaxLen {
		out = out[:m.MaxLen]
	}

	*v = out

	return byteSliceUnmutateToken{prior: prior}, m.Complexity(*v, nil)
}

// Unmutate restores the byte flipped by OrderedMutate, or the whole prior
// slice snapshotted by RandomMutate.
func (m *AsTypedMutator) Unmutate(v *[]byte, cache *mutator.Cache, token mutator.UnmutateToken) {
	switch t := token.(type) {
	case byteUnmutateToken:
		(*v)[t.index] = t.prior
	case byteSliceUnmutateToken:
		*v = t.prior
	}
}

func (m *AsTypedMutator) VisitSubvalues(v []byte, cache mutator.Cache, visit func(mutator.SubValue)) {
	for _, b := range v {
		visit(mutator.SubValue{Value: b, Complexity: 1})
	}
}

type byteUnmutateToken struct {
	index int
	prior byte
}

type byteSliceUnmutateToken struct {
	prior []byte
}

// CheckFunc is the user test function a minification run replays against
// candidate shrinks. Returning a non-nil error marks the candidate as still
// reproducing the failure being minimized, mirroring the harness's own
// TestFunc contract (spec.md §2) one level down, over raw bytes instead of a
// typed value.
type CheckFunc func(data []byte) error

// runGuarded invokes check and converts a panic into a corefuzzerrors
// TestFailure, the same conversion fuzzloop's harness applies to its typed
// test functions, so a minimizer driven over a panicking raw target fails
// the same way a typed one would instead of crashing the minify command.
func runGuarded(check CheckFunc, data []byte) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = corefuzzerrors.TestFailure(fmt.Sprintf("panic: %v", rec), nil)
		}
	}()

	return check(data)
}

// Minimize attempts to reduce a failing byte input while preserving the
// failure (check returns non-nil), applying a greedy delta-debugging
// process within the given time budget — the raw-byte counterpart to
// internal/driver's complexity-guided corpus minification, used by
// cmd/corefuzz's --command minify against the uninstrumented raw/grammar
// demo targets.
func Minimize(seed int64, in []byte, check CheckFunc, budget time.Duration) []byte {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	r := rand.New(rand.NewSource(seed))
	start := time.Now()

	best := append([]byte(nil), in...)
	if runGuarded(check, best) == nil {
		return best
	}

	for time.Since(start) < budget {
		progressed := false

		for parts := 2; parts <= 8 && time.Since(start) < budget; parts *= 2 {
			n := len(best)
			if n < parts {
				break
			}

			seg := n / parts
			for i := 0; i < parts && time.Since(start) < budget; i++ {
				cand := append([]byte(nil), best[:i*seg]...)
				cand = append(cand, best[(i+1)*seg:]...)

				if len(cand) == 0 {
					continue
				}

				if runGuarded(check, cand) != nil {
					best = cand
					progressed = true

					break
				}
			}

			if progressed {
				break
			}
		}

		if progressed {
			continue
		}

		if len(best) > 1 {
			cand := append([]byte(nil), best[:len(best)-1]...)
			if runGuarded(check, cand) != nil {
				best = cand

				continue
			}
		}

		if len(best) > 0 {
			idx := r.Intn(len(best))
			b := best[idx]
			cand := append([]byte(nil), best...)
			cand[idx] = b ^ (1 << uint(r.Intn(8)))

			if runGuarded(check, cand) != nil {
				best = cand

				continue
			}

			cand[idx] = byte(r.Intn(256))
			if runGuarded(check, cand) != nil {
				best = cand

				continue
			}
		}

		if len(best) > 1 {
			i := r.Intn(len(best))
			cand := append([]byte(nil), best[:i]...)
			cand = append(cand, best[i+1:]...)

			if len(cand) > 0 && runGuarded(check, cand) != nil {
				best = cand

				continue
			}
		}

		break
	}

	return best
}

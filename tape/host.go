package tape

import (
	"reflect"
	"sync"

	"github.com/dtolpin/tapead/numeric"
	"github.com/modern-go/gls"
)

// Host bindings: one Tape[V] per goroutine, resolved through
// the goroutine's identity. Grounded on ad/gls.go's mtStore, which
// guarded a map[int64]*adTape with a mutex but referenced an
// undefined goid() helper; tapead replaces that gap with
// github.com/modern-go/gls, the real goroutine-local-storage
// dependency this module uses for that purpose.
//
// A goroutine may host tapes for more than one V (rare, but the
// contract doesn't forbid it), so each goroutine's slot is itself a
// small type-keyed map guarded by its own mutex.

type goroutineTapes struct {
	mu     sync.Mutex
	byType map[reflect.Type]any
}

var (
	registryMu sync.Mutex
	registry   = map[int64]*goroutineTapes{}
)

func goroutineSlot() *goroutineTapes {
	id := gls.GoID()
	registryMu.Lock()
	defer registryMu.Unlock()
	g, ok := registry[id]
	if !ok {
		g = &goroutineTapes{byType: map[reflect.Type]any{}}
		registry[id] = g
	}
	return g
}

// threadTape returns the calling goroutine's Tape[V], creating it
// lazily on first use. The tape is never destroyed implicitly; call
// DropTape to release it when a goroutine is done recording for good.
func threadTape[V numeric.Value[V]]() *Tape[V] {
	var zero V
	typ := reflect.TypeOf(zero)
	g := goroutineSlot()
	g.mu.Lock()
	defer g.mu.Unlock()
	if existing, ok := g.byType[typ]; ok {
		return existing.(*Tape[V])
	}
	t := newTape[V]()
	g.byType[typ] = t
	return t
}

// DropTape releases the calling goroutine's Tape[V], if any. Safe to
// call whether or not a tape was ever created, and whether or not it
// is currently recording (an in-progress recording is simply
// discarded). Mirrors a DropTape helper referenced from
// infer/sgmcmc.go's goroutine cleanup but not itself present in the
// retrieved sources.
func DropTape[V numeric.Value[V]]() {
	var zero V
	typ := reflect.TypeOf(zero)
	g := goroutineSlot()
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.byType, typ)
}

package switchboard

import (
	"fmt"
	"reflect"
	"slices"
	"sync"

	"github.com/raskyld/switchboard/pkg/flow"
)

// Operation describes one kind of call: its name, the type of its
// parameters P and the type of its return value R. It holds no state and
// can be bound to any number of centers.
//
// Parameters cross goroutines and, when broadcast, are copied with
// [flow.Copy] for every listener.
type Operation[P, R any] struct {
	name string
}

// NewOperation declares an operation. It panics on an empty name.
func NewOperation[P, R any](name string) Operation[P, R] {
	if name == "" {
		panic("switchboard: operation name must not be empty")
	}
	return Operation[P, R]{name: name}
}

func (op Operation[P, R]) Name() string {
	return op.name
}

// Binding makes an Operation callable on the center identified by C.
// There is exactly one Binding per operation name and center.
type Binding[C, P, R any] struct {
	op   Operation[P, R]
	name string
}

// Bind registers op in the catalog of the center C. It is meant to be
// called once, at package level:
//
//	var PingCall = switchboard.Bind[Simple](Ping)
//
// It panics if an operation with the same name is already bound to C.
func Bind[C, P, R any](op Operation[P, R]) Binding[C, P, R] {
	if op.name == "" {
		panic("switchboard: binding an undeclared operation")
	}
	center := centerName[C]()
	catalogs.add(reflect.TypeFor[C](), center, op.name)
	return Binding[C, P, R]{
		op:   op,
		name: center + "." + op.name,
	}
}

// Name is the diagnostic name, `<Center>.<Operation>`.
func (b Binding[C, P, R]) Name() string {
	return b.name
}

// Operation is the name of the bound operation.
func (b Binding[C, P, R]) Operation() string {
	return b.op.name
}

// MakeCall wraps params into a fresh request and returns the receiver of
// its response channel. It has no side effect beyond the allocation.
func (b Binding[C, P, R]) MakeCall(params P) (*Request[C, P, R], *flow.OneshotReceiver[R]) {
	tx, rx := flow.Oneshot[R]()
	return &Request[C, P, R]{
		binding: b,
		params:  params,
		reply:   tx,
	}, rx
}

// Match returns the request carried by env if it belongs to this binding.
func (b Binding[C, P, R]) Match(env Envelope[C]) (*Request[C, P, R], bool) {
	req, ok := env.(*Request[C, P, R])
	if !ok || req.binding.op.name != b.op.name {
		return nil, false
	}
	return req, true
}

func centerName[C any]() string {
	t := reflect.TypeFor[C]()
	if t.Name() != "" {
		return t.Name()
	}
	return t.String()
}

type catalog struct {
	name string
	ops  map[string]struct{}
}

type catalogRegistry struct {
	lk       sync.RWMutex
	byCenter map[reflect.Type]*catalog
}

var catalogs = &catalogRegistry{
	byCenter: make(map[reflect.Type]*catalog),
}

func (reg *catalogRegistry) add(center reflect.Type, name, op string) {
	reg.lk.Lock()
	defer reg.lk.Unlock()

	cat, ok := reg.byCenter[center]
	if !ok {
		cat = &catalog{name: name, ops: make(map[string]struct{})}
		reg.byCenter[center] = cat
	}
	if _, dup := cat.ops[op]; dup {
		panic(fmt.Sprintf("switchboard: operation %s is already bound to %s", op, name))
	}
	cat.ops[op] = struct{}{}
}

// operations returns the sorted operation names bound to center.
func (reg *catalogRegistry) operations(center reflect.Type) []string {
	reg.lk.RLock()
	defer reg.lk.RUnlock()

	cat, ok := reg.byCenter[center]
	if !ok {
		return nil
	}
	ops := make([]string, 0, len(cat.ops))
	for op := range cat.ops {
		ops = append(ops, op)
	}
	slices.Sort(ops)
	return ops
}

package flow

import (
	"google.golang.org/protobuf/proto"
)

// Clonable values know how to produce an independent copy of themselves.
type Clonable[T any] interface {
	Clone() T
}

// Copy returns a value that can be handed to another goroutine without
// sharing memory with v, as far as Copy can tell:
//
//   - [Clonable] values are cloned,
//   - [proto.Message] values are deep-copied with [proto.Clone],
//   - []byte buffers are copied,
//   - anything else is returned as is, which is a copy for plain values.
func Copy[T any](v T) T {
	switch msg := any(v).(type) {
	case Clonable[T]:
		return msg.Clone()
	case proto.Message:
		if cloned, ok := proto.Clone(msg).(T); ok {
			return cloned
		}
		return v
	case []byte:
		if msg == nil {
			return v
		}
		cloned := make([]byte, len(msg))
		copy(cloned, msg)
		return any(cloned).(T)
	default:
		return v
	}
}

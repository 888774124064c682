package ui

import "io"

// KeyPoller reads single bytes from an input in the background so the frame
// loop can check for a key press without blocking.
type KeyPoller struct {
	keys chan struct{}
	done chan struct{}
}

// NewKeyPoller starts reading r. Reading stops at the first error or EOF,
// after which Pressed only reports keys already received.
func NewKeyPoller(r io.Reader) *KeyPoller {
	k := &KeyPoller{
		keys: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go k.read(r)
	return k
}

func (k *KeyPoller) read(r io.Reader) {
	defer close(k.done)
	var b [1]byte
	for {
		n, err := r.Read(b[:])
		if n > 0 {
			select {
			case k.keys <- struct{}{}:
			default:
			}
		}
		if err != nil {
			return
		}
	}
}

// Pressed reports whether any byte arrived since the last call.
func (k *KeyPoller) Pressed() bool {
	select {
	case <-k.keys:
		return true
	default:
		return false
	}
}

// Done is closed once the reader goroutine has exited.
func (k *KeyPoller) Done() <-chan struct{} {
	return k.done
}

package manager

import (
	"bytes"
	"runtime"
	"strconv"
)

// currentGoroutineID extracts the calling goroutine's ID from its own stack
// trace header ("goroutine 123 [running]: ..."). There is no public API for
// this; parsing runtime.Stack's header is the standard workaround used
// wherever Go code needs goroutine-local reentrancy detection rather than
// mere mutual exclusion. It is only ever used here to tell "the same
// goroutine is calling Submit again from inside a callback" apart from "a
// different goroutine is legitimately waiting for the critical section".
func currentGoroutineID() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := bytes.TrimPrefix(buf[:n], []byte("goroutine "))
	i := bytes.IndexByte(b, ' ')
	if i < 0 {
		return -1
	}
	id, err := strconv.ParseInt(string(b[:i]), 10, 64)
	if err != nil {
		return -1
	}
	return id
}

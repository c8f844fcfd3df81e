package security

import (
	"crypto/rand"
	"runtime"
	"time"
)

// SecureCompare reports whether a and b are equal in time that depends only
// on the longer length.
func SecureCompare(a, b []byte) bool {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}

	var diff byte
	for i := 0; i < n; i++ {
		var x, y byte
		if i < len(a) {
			x = a[i]
		}
		if i < len(b) {
			y = b[i]
		}
		diff |= x ^ y
	}
	return diff == 0 && len(a) == len(b)
}

// ZeroBytes overwrites data in place.
func ZeroBytes(data []byte) {
	if len(data) == 0 {
		return
	}
	for i := range data {
		data[i] = 0
	}
	runtime.KeepAlive(data)
}

// CopyBytes returns a private copy of data that the caller may zero later.
func CopyBytes(data []byte) []byte {
	if data == nil {
		return nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out
}

// RandomDelay sleeps between 10 and 99 microseconds.
func RandomDelay() {
	var b [1]byte
	_, _ = rand.Read(b[:])
	time.Sleep(time.Duration(10+int(b[0])%90) * time.Microsecond)
}

package protocol

import (
	"sync"
	"testing"
)

func TestSignGeneratorMonotonic(t *testing.T) {
	g := NewSignGenerator(100)

	prev := int64(100)
	for i := 0; i < 1000; i++ {
		next := g.Next()
		if next <= prev {
			t.Fatalf("Next() = %d after %d, want strictly increasing", next, prev)
		}
		prev = next
	}
}

func TestSignGeneratorConcurrentUniqueness(t *testing.T) {
	g := NewSignGenerator(0)

	const workers = 8
	const perWorker = 500

	var mu sync.Mutex
	seen := make(map[int64]bool, workers*perWorker)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]int64, 0, perWorker)
			for i := 0; i < perWorker; i++ {
				local = append(local, g.Next())
			}
			mu.Lock()
			defer mu.Unlock()
			for _, s := range local {
				if seen[s] {
					t.Errorf("sign %d issued twice", s)
				}
				seen[s] = true
			}
		}()
	}
	wg.Wait()

	if len(seen) != workers*perWorker {
		t.Errorf("got %d unique signs, want %d", len(seen), workers*perWorker)
	}
}

func TestNextSignUnique(t *testing.T) {
	a := NextSign()
	b := NextSign()
	if a == b {
		t.Error("NextSign() produced identical signs")
	}
	if b < a {
		t.Error("NextSign() went backwards")
	}
}

func TestIsTokenInvalid(t *testing.T) {
	tests := []struct {
		code int64
		want bool
	}{
		{CodeSuccess, false},
		{CodeTokenInvalid, true},
		{CodeTokenExpired, true},
		{CodeKicked, false},
		{CodeTimeout, false},
	}

	for _, tt := range tests {
		if got := IsTokenInvalid(tt.code); got != tt.want {
			t.Errorf("IsTokenInvalid(%d) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestIsBusinessType(t *testing.T) {
	tests := []struct {
		name    string
		msgType uint16
		want    bool
	}{
		{"sign in", MsgTypeSignIn, false},
		{"ping", MsgTypePing, false},
		{"result", MsgTypeResult, false},
		{"first business", MsgTypeBusinessMin, true},
		{"chat", 0x0210, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsBusinessType(tt.msgType); got != tt.want {
				t.Errorf("IsBusinessType(%x) = %v, want %v", tt.msgType, got, tt.want)
			}
		})
	}
}

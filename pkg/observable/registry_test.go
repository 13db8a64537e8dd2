package observable

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

type counter struct {
	name string
	hits int
}

func TestRegistryForEach(t *testing.T) {
	r := NewRegistry[counter]()
	a := &counter{}
	b := &counter{}

	r.Register(a)
	r.Register(b)
	r.Register(a)

	assert.Equal(t, 2, r.Len())

	r.ForEach(func(c *counter) { c.hits++ })
	assert.Equal(t, 1, a.hits)
	assert.Equal(t, 1, b.hits)

	r.Unregister(a)
	r.ForEach(func(c *counter) { c.hits++ })
	assert.Equal(t, 1, a.hits)
	assert.Equal(t, 2, b.hits)
	assert.Equal(t, 1, r.Len())
}

func TestRegistryRegisterDuringDispatch(t *testing.T) {
	r := NewRegistry[counter]()
	a := &counter{}
	late := &counter{}
	r.Register(a)

	r.ForEach(func(c *counter) {
		c.hits++
		r.Register(late)
		r.Unregister(a)
	})

	assert.Equal(t, 1, a.hits)
	assert.Equal(t, 0, late.hits)
	assert.Equal(t, 1, r.Len())
}

func TestRegistryDropsCollectedListeners(t *testing.T) {
	r := NewRegistry[counter]()
	kept := &counter{}
	r.Register(kept)

	func() {
		r.Register(&counter{name: "temporary"})
	}()

	for i := 0; i < 5 && r.Len() > 1; i++ {
		runtime.GC()
	}

	assert.Equal(t, 1, r.Len())
	runtime.KeepAlive(kept)
}

func TestRegistryNilIgnored(t *testing.T) {
	r := NewRegistry[counter]()
	r.Register(nil)
	r.Unregister(nil)
	assert.Equal(t, 0, r.Len())
}

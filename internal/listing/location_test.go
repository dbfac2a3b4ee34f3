package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemoryHistory_PushReplace(t *testing.T) {
	h := NewMemoryHistory("?page=1")
	assert.Equal(t, "page=1", h.Query())

	h.Push("page=2")
	h.Push("?page=3")
	assert.Equal(t, "page=3", h.Query())
	assert.Equal(t, 3, h.Len())

	h.Replace("page=4")
	assert.Equal(t, []string{"page=1", "page=2", "page=4"}, h.Entries())
}

func TestMemoryHistory_BackForward(t *testing.T) {
	h := NewMemoryHistory("a")
	h.Push("b")
	h.Push("c")

	var seen []string
	h.Subscribe(func(q string) { seen = append(seen, q) })

	assert.True(t, h.Back())
	assert.True(t, h.Back())
	assert.False(t, h.Back())
	assert.Equal(t, "a", h.Query())

	assert.True(t, h.Forward())
	assert.Equal(t, []string{"b", "a", "b"}, seen)

	// pushing drops the forward entries
	h.Push("d")
	assert.False(t, h.Forward())
	assert.Equal(t, []string{"a", "b", "d"}, h.Entries())
}

func TestMemoryHistory_PushDoesNotNotify(t *testing.T) {
	h := NewMemoryHistory("")
	calls := 0
	h.Subscribe(func(string) { calls++ })

	h.Push("x")
	h.Replace("y")
	assert.Zero(t, calls)

	h.Navigate("z")
	assert.Equal(t, 1, calls)
	assert.Equal(t, "z", h.Query())
}

func TestMemoryHistory_Unsubscribe(t *testing.T) {
	h := NewMemoryHistory("a")
	h.Push("b")

	calls := 0
	unsubscribe := h.Subscribe(func(string) { calls++ })
	h.Back()
	unsubscribe()
	h.Forward()
	assert.Equal(t, 1, calls)
}

func TestMemoryHistory_SubscriberMayWriteBack(t *testing.T) {
	h := NewMemoryHistory("a")
	h.Subscribe(func(q string) { h.Replace(q + "-canonical") })

	h.Navigate("b")
	assert.Equal(t, "b-canonical", h.Query())
}

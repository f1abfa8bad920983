package flow

// Context is the state threaded through one chain: a key/value store, a LIFO
// stack used as scratch channel between adjacent tasks and a progress sink.
//
// A Context is owned by exactly one run and is not safe for concurrent use.
type Context struct {
	progress Progress
	data     map[string]interface{}
	stack    []interface{}
}

// NewContext creates an empty context; a nil progress falls back to NoopProgress.
func NewContext(progress Progress) *Context {
	if progress == nil {
		progress = NoopProgress
	}
	return &Context{
		progress: progress,
		data:     map[string]interface{}{},
	}
}

// Progress returns the attached progress sink.
func (c *Context) Progress() Progress {
	return c.progress
}

// Set stores value under key, overwriting any previous value.
func (c *Context) Set(key string, value interface{}) {
	c.data[key] = value
}

// Get returns the value stored under key; ok is false when the key was never set.
func (c *Context) Get(key string) (value interface{}, ok bool) {
	value, ok = c.data[key]
	return value, ok
}

// Has returns true if key was set.
func (c *Context) Has(key string) bool {
	_, ok := c.data[key]
	return ok
}

// Delete removes key from the store.
func (c *Context) Delete(key string) {
	delete(c.data, key)
}

// Keys returns the number of stored keys.
func (c *Context) Keys() int {
	return len(c.data)
}

// Push puts value on top of the stack.
func (c *Context) Push(value interface{}) {
	c.stack = append(c.stack, value)
}

// Pop removes and returns the top of the stack or ErrEmptyStack.
func (c *Context) Pop() (interface{}, error) {
	if len(c.stack) == 0 {
		return nil, ErrEmptyStack
	}
	last := len(c.stack) - 1
	value := c.stack[last]
	c.stack[last] = nil
	c.stack = c.stack[:last]
	return value, nil
}

// Peek returns the top of the stack without removing it.
func (c *Context) Peek() (interface{}, error) {
	if len(c.stack) == 0 {
		return nil, ErrEmptyStack
	}
	return c.stack[len(c.stack)-1], nil
}

// StackIsEmpty returns true if there is nothing to pop.
func (c *Context) StackIsEmpty() bool {
	return len(c.stack) == 0
}

// StackSize returns the number of values on the stack.
func (c *Context) StackSize() int {
	return len(c.stack)
}

// Resolve pushes value and returns the context itself, so that a task can
// end with `return fctx.Resolve(v), nil`.
func (c *Context) Resolve(value interface{}) *Context {
	c.Push(value)
	return c
}

// ResolveKey stores value under key and returns the context itself.
func (c *Context) ResolveKey(key string, value interface{}) *Context {
	c.Set(key, value)
	return c
}

// Key is a typed token addressing one entry of the context store.
type Key[T any] string

// Get returns the value stored under the key. ok is false when the key is
// absent or holds a value of another type.
func (k Key[T]) Get(c *Context) (T, bool) {
	var zero T
	value, ok := c.Get(string(k))
	if !ok {
		return zero, false
	}
	typed, ok := value.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}

// Set stores value under the key.
func (k Key[T]) Set(c *Context, value T) {
	c.Set(string(k), value)
}

// Resolve stores value under the key and returns the context.
func (k Key[T]) Resolve(c *Context, value T) *Context {
	return c.ResolveKey(string(k), value)
}

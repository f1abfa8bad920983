package flow

// Status markers exchanged on the stack between an existence check and the
// task that depends on it.
const (
	StatusExists   = 200
	StatusNotFound = 404
)

// StatusPredicate decides whether a conditional task should act on the
// status found on top of the stack.
type StatusPredicate func(status int) bool

// IfExists holds for StatusExists.
func IfExists(status int) bool { return status == StatusExists }

// IfNotFound holds for StatusNotFound.
func IfNotFound(status int) bool { return status == StatusNotFound }

// PushStatus pushes a status marker.
func PushStatus(c *Context, status int) *Context {
	return c.Resolve(status)
}

// PopStatus pops a status marker. ok is false when the stack is empty or
// the popped value is not a status; the non-status value is consumed.
func PopStatus(c *Context) (status int, ok bool) {
	if c.StackIsEmpty() {
		return 0, false
	}
	value, err := c.Pop()
	if err != nil {
		return 0, false
	}
	status, ok = value.(int)
	return status, ok
}

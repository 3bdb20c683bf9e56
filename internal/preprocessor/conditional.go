package preprocessor

// ---------------- Conditionals ----------------

// condFrame is one @if/@ifdef/@ifndef nesting level. The bottom frame of every
// stack is the root level, with inIf unset.
type condFrame struct {
	inIf    bool // opened by a real IF* directive
	sawElse bool
	handled bool // some branch at this level already matched
	copy    bool // this level alone wants its lines emitted
}

type condStack struct {
	stack []condFrame
}

func newCondStack() *condStack {
	return &condStack{stack: []condFrame{{copy: true}}}
}

func (c *condStack) Depth() int { return len(c.stack) }

// Copy is the global emission decision: every level on the stack must want
// its lines emitted.
func (c *condStack) Copy() bool {
	for _, f := range c.stack {
		if !f.copy {
			return false
		}
	}
	return true
}

func (c *condStack) top() *condFrame {
	return &c.stack[len(c.stack)-1]
}

// Push opens a new level. It happens regardless of the current decision so
// that @endif matching stays correct inside disabled branches.
func (c *condStack) Push() {
	c.stack = append(c.stack, condFrame{
		inIf: true,
		copy: c.Copy(),
	})
}

// Take records the outcome of an IF* test on the innermost level.
func (c *condStack) Take(ok bool) {
	top := c.top()
	if ok {
		top.handled = true
	} else {
		top.copy = false
	}
}

// InIf reports whether the innermost level was opened by an IF* directive.
func (c *condStack) InIf() bool { return c.top().inIf }

func (c *condStack) SawElse() bool { return c.top().sawElse }

func (c *condStack) Handled() bool { return c.top().handled }

// Elif applies the outcome of an @elif test that was evaluated because no
// earlier branch matched.
func (c *condStack) Elif(ok bool) {
	top := c.top()
	top.copy = ok
	if ok {
		top.handled = true
	}
}

// Skip disables the innermost level without evaluating anything.
func (c *condStack) Skip() {
	c.top().copy = false
}

func (c *condStack) Else() {
	top := c.top()
	top.sawElse = true
	top.copy = !top.handled
}

func (c *condStack) Pop() {
	c.stack = c.stack[:len(c.stack)-1]
}

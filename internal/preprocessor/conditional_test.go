package preprocessor

import "testing"

func TestCondStack(t *testing.T) {
	c := newCondStack()
	if c.Depth() != 1 || !c.Copy() || c.InIf() {
		t.Fatalf("bad root frame: %+v", c.stack)
	}

	c.Push()
	c.Take(false)
	if c.Copy() {
		t.Error("failed test should disable copying")
	}

	// a nested level inside a disabled branch still keeps its own state
	c.Push()
	c.Take(true)
	if c.Copy() || !c.Handled() {
		t.Errorf("nested level: copy=%v handled=%v", c.Copy(), c.Handled())
	}
	c.Else()
	if c.top().copy || !c.SawElse() {
		t.Errorf("else after handled branch: %+v", *c.top())
	}
	c.Pop()

	c.Elif(true)
	if !c.Copy() || !c.Handled() {
		t.Error("matching elif should enable copying")
	}
	c.Skip()
	if c.Copy() {
		t.Error("skip should disable copying")
	}
	c.Else()
	if c.Copy() {
		t.Error("else after a handled level should not copy")
	}
	if !c.InIf() || c.Depth() != 2 {
		t.Errorf("got depth %d, want the outer level still open", c.Depth())
	}
	c.Pop()

	if c.Depth() != 1 || !c.Copy() || c.InIf() {
		t.Errorf("stack not back at root: %+v", c.stack)
	}
}

func TestCondStackElse(t *testing.T) {
	c := newCondStack()
	c.Push()
	c.Take(false)
	c.Else()
	if !c.Copy() {
		t.Error("else of an unmatched level should copy")
	}
}

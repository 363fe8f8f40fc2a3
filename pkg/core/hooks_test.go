package core

import "testing"

func TestUseSetState_WithoutOwner(t *testing.T) {
	base := &StateBase{}
	var got []int
	c := UseSetState(base, 5, func(n int) { got = append(got, n) })

	if c.Value() != 5 {
		t.Errorf("Expected 5, got %d", c.Value())
	}

	c.Stabilize()
	c.Set(10)
	c.Stabilize()

	if len(got) != 1 || got[0] != 10 {
		t.Errorf("Expected one callback with 10, got %v", got)
	}
}

func TestUseSetState_DisposedWithState(t *testing.T) {
	base := &StateBase{}
	c := UseSetState(base, 0, nil)

	base.Dispose()

	if !c.Disposed() {
		t.Error("Cell should be disposed when StateBase is disposed")
	}
	c.Set(1)
	if c.Value() != 0 {
		t.Errorf("Disposed cell accepted an update: %d", c.Value())
	}
}

func TestUseSetStateFunc_InitCalledOnce(t *testing.T) {
	base := &StateBase{}
	calls := 0
	c := UseSetStateFunc(base, func() string {
		calls++
		return "bar"
	}, nil)

	c.Set("foo")
	c.Stabilize()

	if calls != 1 {
		t.Errorf("Expected init to run once, ran %d times", calls)
	}
}

func TestUseStateCallback_DoesNotMerge(t *testing.T) {
	base := &StateBase{}
	c := UseStateCallback(base, map[string]int{"a": 1}, nil)

	c.Set(map[string]int{"b": 2})

	if _, ok := c.Value()["a"]; ok || c.Value()["b"] != 2 {
		t.Errorf("Expected replacement, got %v", c.Value())
	}
}

func TestStateBase_OnDisposeOrder(t *testing.T) {
	base := &StateBase{}
	var order []int
	base.OnDispose(func() { order = append(order, 1) })
	unregister := base.OnDispose(func() { order = append(order, 2) })
	base.OnDispose(func() { order = append(order, 3) })
	unregister()

	base.Dispose()
	base.Dispose()

	if len(order) != 2 || order[0] != 3 || order[1] != 1 {
		t.Errorf("Expected [3 1], got %v", order)
	}
	if !base.IsDisposed() {
		t.Error("Expected IsDisposed to be true")
	}
}

func TestStateBase_OnDisposeAfterDispose(t *testing.T) {
	base := &StateBase{}
	base.Dispose()

	ran := false
	base.OnDispose(func() { ran = true })

	if !ran {
		t.Error("Cleanup registered after disposal should run immediately")
	}
}

func TestStateBase_SetStateAfterDispose(t *testing.T) {
	base := &StateBase{}
	base.Dispose()

	ran := false
	base.SetState(func() { ran = true })

	if ran {
		t.Error("SetState after dispose should be a no-op")
	}
}

package overlay

import (
	"testing"

	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func newTestController(t *testing.T) (*Controller, *[]Plan) {
	t.Helper()
	plans := &[]Plan{}
	c := NewController(testLogger(), "https://example.com", "hola", 3, func(p Plan) {
		*plans = append(*plans, p)
	})
	return c, plans
}

func TestControllerLifecycle(t *testing.T) {
	c, plans := newTestController(t)

	if c.State() != StateInactive {
		t.Fatalf("Initial state = %s", c.State())
	}

	c.Activate()
	if c.State() != StateLocating {
		t.Fatalf("State after Activate = %s", c.State())
	}

	// Frame events before the frame is located are ignored.
	c.HandleResize(800)
	c.Flush()
	if len(*plans) != 0 {
		t.Fatal("Resize before locate must not emit a plan")
	}

	c.HandleFrameLocated(800, true)
	c.Flush()
	if c.State() != StateActive {
		t.Fatalf("State after locate = %s", c.State())
	}
	if len(*plans) != 1 {
		t.Fatalf("Expected 1 plan, got %d", len(*plans))
	}
	if (*plans)[0].Geometry == nil {
		t.Fatal("Visible frame must produce geometry")
	}
	if (*plans)[0].Geometry.Breakpoint != BreakpointMedium {
		t.Errorf("Breakpoint = %s", (*plans)[0].Geometry.Breakpoint)
	}
}

func TestControllerCoalescesEventBursts(t *testing.T) {
	c, plans := newTestController(t)
	c.Activate()
	c.HandleFrameLocated(800, true)
	c.Flush()

	// A burst of frame events produces exactly one recompute on flush.
	c.HandleResize(900)
	c.HandleMutation()
	c.HandleResize(1100)
	c.Flush()

	if len(*plans) != 2 {
		t.Fatalf("Expected 2 plans total, got %d", len(*plans))
	}
	if (*plans)[1].Geometry.Breakpoint != BreakpointWide {
		t.Errorf("Plan must reflect the latest width, got %s", (*plans)[1].Geometry.Breakpoint)
	}

	// Nothing pending, flush is a no-op.
	c.Flush()
	if len(*plans) != 2 {
		t.Error("Flush without pending events must not emit")
	}
}

func TestControllerHiddenFrameClearsPanels(t *testing.T) {
	c, plans := newTestController(t)
	c.Activate()
	c.HandleFrameLocated(800, true)
	c.Flush()

	c.HandleVisibility(false)
	c.Flush()

	last := (*plans)[len(*plans)-1]
	if last.Geometry != nil {
		t.Error("Hidden frame must clear the cover geometry")
	}
	if c.State() != StateActive {
		t.Errorf("Hidden frame must stay active, state = %s", c.State())
	}

	c.HandleVisibility(true)
	c.Flush()
	last = (*plans)[len(*plans)-1]
	if last.Geometry == nil {
		t.Error("Re-shown frame must restore the cover geometry")
	}
}

func TestControllerPlanCarriesSuppression(t *testing.T) {
	c, plans := newTestController(t)
	c.Activate()
	c.HandleFrameLocated(480, true)
	c.Flush()

	plan := (*plans)[0]
	if plan.CSS == "" {
		t.Error("Plan missing suppression CSS")
	}
	if len(plan.HideCommands) != 5 {
		t.Errorf("Expected 5 guessed hide commands, got %d", len(plan.HideCommands))
	}
	if len(plan.ShareTargets) == 0 {
		t.Error("Plan missing share targets")
	}
}

func TestControllerLocatingForeverIsSafe(t *testing.T) {
	c, plans := newTestController(t)
	c.Activate()

	for i := 0; i < 10; i++ {
		c.Flush()
	}
	if c.State() != StateLocating {
		t.Errorf("State = %s, want locating", c.State())
	}
	if len(*plans) != 0 {
		t.Error("Locating must not emit plans")
	}
}

func TestControllerTeardown(t *testing.T) {
	c, plans := newTestController(t)
	c.Activate()
	c.HandleFrameLocated(800, true)
	c.Flush()

	c.Teardown()
	if c.State() != StateTornDown {
		t.Fatalf("State = %s", c.State())
	}

	last := (*plans)[len(*plans)-1]
	if last.Geometry != nil || last.CSS != "" || len(last.HideCommands) != 0 {
		t.Error("Teardown must emit an empty plan clearing everything")
	}

	// Events after teardown are ignored; teardown is idempotent.
	emitted := len(*plans)
	c.HandleResize(640)
	c.Flush()
	c.Teardown()
	if len(*plans) != emitted {
		t.Error("Torn-down controller must stay silent")
	}
}

func TestControllerLoadFailureBudget(t *testing.T) {
	c, _ := newTestController(t)

	if err := c.RecordLoadFailure(); err != nil {
		t.Errorf("Attempt 1 should be within budget: %v", err)
	}
	if err := c.RecordLoadFailure(); err != nil {
		t.Errorf("Attempt 2 should be within budget: %v", err)
	}
	if err := c.RecordLoadFailure(); err == nil {
		t.Error("Attempt 3 must exhaust the retry budget")
	}
}

func TestControllerRelocateUpdatesGeometry(t *testing.T) {
	c, plans := newTestController(t)
	c.Activate()
	c.HandleFrameLocated(320, true)
	c.Flush()
	c.HandleFrameLocated(1200, true)
	c.Flush()

	if len(*plans) != 2 {
		t.Fatalf("Expected 2 plans, got %d", len(*plans))
	}
	if (*plans)[1].Geometry.Breakpoint != BreakpointWide {
		t.Errorf("Relocate must recompute from the new width, got %s", (*plans)[1].Geometry.Breakpoint)
	}
}

package overlay

import (
	"sync"

	"github.com/sirupsen/logrus"

	"bress-gateway/pkg/errors"
	"bress-gateway/pkg/metrics"
)

// Controller states. The controller may sit in StateLocating
// indefinitely: the frame not appearing is not an error, the page may be
// running a widget variant that never embeds one.
const (
	StateInactive = "inactive"
	StateLocating = "locating"
	StateActive   = "active"
	StateTornDown = "torn_down"
)

// Plan is everything the page client needs to apply the overlay: the
// cover geometry (nil while the frame is hidden), the advisory CSS and
// postMessage commands, and the replacement share menu.
type Plan struct {
	Geometry     *Geometry     `json:"geometry"`
	CSS          string        `json:"css"`
	HideCommands []HideCommand `json:"hideCommands"`
	ShareTargets []ShareTarget `json:"shareTargets"`
}

// Controller drives the overlay for one page session. Frame events feed
// in, recomputed plans flow out through the emit callback. Every
// recompute starts from scratch off the latest frame dimensions, so
// reprocessing an event is always safe.
type Controller struct {
	logger *logrus.Logger
	emit   func(Plan)

	pageURL      string
	shareMessage string
	maxAttempts  int

	mu           sync.Mutex
	state        string
	frameWidth   int
	visible      bool
	dirty        bool
	trigger      string
	loadFailures int
}

// NewController creates an inactive controller. emit receives each
// recomputed plan; maxLoadAttempts bounds the page-script load retry.
func NewController(logger *logrus.Logger, pageURL, shareMessage string, maxLoadAttempts int, emit func(Plan)) *Controller {
	if emit == nil {
		emit = func(Plan) {}
	}
	if maxLoadAttempts <= 0 {
		maxLoadAttempts = 3
	}
	return &Controller{
		logger:       logger,
		emit:         emit,
		pageURL:      pageURL,
		shareMessage: shareMessage,
		maxAttempts:  maxLoadAttempts,
		state:        StateInactive,
	}
}

// State returns the controller's current lifecycle state.
func (c *Controller) State() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Activate begins searching for the embedded frame.
func (c *Controller) Activate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateInactive {
		return
	}
	c.state = StateLocating
	c.logger.Debug("Overlay locating embedded frame")
}

// HandleFrameLocated transitions to active once the page reports the
// embedded frame. Re-locating an already-active frame just updates the
// dimensions.
func (c *Controller) HandleFrameLocated(width int, visible bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateLocating && c.state != StateActive {
		return
	}
	c.state = StateActive
	c.frameWidth = width
	c.visible = visible
	c.markDirty("frame_located")
}

// HandleResize records a frame size change.
func (c *Controller) HandleResize(width int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateActive {
		return
	}
	c.frameWidth = width
	c.markDirty("resize")
}

// HandleMutation records a widget re-render. The frame may have replaced
// its internal DOM, so the advisory suppression must be re-sent.
func (c *Controller) HandleMutation() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateActive {
		return
	}
	c.markDirty("mutation")
}

// HandleVisibility records the frame entering or leaving the viewport.
// A hidden frame keeps the controller active but clears the panels.
func (c *Controller) HandleVisibility(visible bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateActive {
		return
	}
	c.visible = visible
	c.markDirty("visibility")
}

// markDirty coalesces bursts of frame events into one recompute. Caller
// holds the lock.
func (c *Controller) markDirty(trigger string) {
	c.dirty = true
	c.trigger = trigger
}

// Flush recomputes and emits the plan if any event arrived since the
// last flush. The page client batches frame events and the session
// flushes once per batch.
func (c *Controller) Flush() {
	c.mu.Lock()
	if !c.dirty || c.state != StateActive {
		c.mu.Unlock()
		return
	}
	c.dirty = false
	trigger := c.trigger
	plan := c.buildPlan()
	c.mu.Unlock()

	metrics.OverlayRecomputed(trigger)
	c.emit(plan)
}

// buildPlan assembles the full plan from current frame state. Caller
// holds the lock.
func (c *Controller) buildPlan() Plan {
	plan := Plan{
		CSS:          SuppressionCSS(),
		HideCommands: HideCommands(),
		ShareTargets: ShareTargets(c.pageURL, c.shareMessage),
	}
	if c.visible {
		geo := ComputeGeometry(c.frameWidth)
		plan.Geometry = &geo
	}
	return plan
}

// RecordLoadFailure counts one embed script load failure. Once the retry
// budget is exhausted it returns an error the caller surfaces as a
// reload prompt.
func (c *Controller) RecordLoadFailure() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.loadFailures++
	metrics.EmbedLoadFailed()
	c.logger.WithFields(logrus.Fields{
		"attempt":      c.loadFailures,
		"max_attempts": c.maxAttempts,
	}).Warn("Embed script load failed")

	if c.loadFailures >= c.maxAttempts {
		return errors.NewEmbedLoadFailure(c.loadFailures)
	}
	return nil
}

// Teardown removes everything the overlay added. The emitted empty plan
// tells the page client to drop injected nodes and disconnect
// observers; the controller accepts no further events. Idempotent.
func (c *Controller) Teardown() {
	c.mu.Lock()
	if c.state == StateTornDown {
		c.mu.Unlock()
		return
	}
	c.state = StateTornDown
	c.dirty = false
	c.mu.Unlock()

	c.emit(Plan{})
	c.logger.Debug("Overlay torn down")
}

package panzoom

import (
	"missiontimeline/internal/timescale"
)

// Controller owns the pan/zoom state of one timeline. It is the only writer
// of the transform; everything else reads it through Transform or OnChange.
// A Controller is not safe for concurrent use.
type Controller struct {
	opts    Options
	bounds  Bounds
	state   State
	nextObs int
	obs     map[int]func(timescale.Transform)
}

// NewController returns a controller at the identity transform for a
// container of width pixels over a domain of hours.
func NewController(width, hours float64, opts Options) *Controller {
	if opts.PxPerHour <= 0 {
		opts.PxPerHour = DefaultOptions().PxPerHour
	}
	if opts.WheelSensitivity == 0 {
		opts.WheelSensitivity = DefaultOptions().WheelSensitivity
	}
	if opts.PinchSensitivity == 0 {
		opts.PinchSensitivity = DefaultOptions().PinchSensitivity
	}
	return &Controller{
		opts:   opts,
		bounds: Bounds{Width: sanitizeWidth(width), Hours: hours, PxPerHour: opts.PxPerHour},
		state:  State{Transform: timescale.Identity},
		obs:    make(map[int]func(timescale.Transform)),
	}
}

// Transform returns the current transform.
func (c *Controller) Transform() timescale.Transform { return c.state.Transform }

// Bounds returns the current bounds.
func (c *Controller) Bounds() Bounds { return c.bounds }

// Dragging reports whether a background drag is in progress.
func (c *Controller) Dragging() bool { return c.state.Dragging }

// Apply reduces g into the state and notifies observers when the transform
// changed.
func (c *Controller) Apply(g Gesture) Outcome {
	next, out := Reduce(c.state, g, c.bounds, c.opts)
	c.state = next
	if out.Changed {
		c.notify()
	}
	return out
}

// Resize re-bounds the transform for a new container width. The translation
// scales with the width so the instant at the left edge stays put.
func (c *Controller) Resize(width float64) {
	width = sanitizeWidth(width)
	if width == c.bounds.Width {
		return
	}
	prev := c.state.Transform
	t := prev
	if c.bounds.Width > 0 {
		t.X = prev.X * width / c.bounds.Width
	}
	c.bounds.Width = width
	c.set(c.bounds.Clamp(t))
}

// SetDomain resets the transform to identity for a domain of hours. Callers
// use it whenever the displayed data set changes.
func (c *Controller) SetDomain(hours float64) {
	c.bounds.Hours = hours
	c.Reset()
}

// Reset returns to the identity transform and ends any drag.
func (c *Controller) Reset() {
	c.state.Dragging = false
	c.set(timescale.Identity)
}

// SetTransform jumps to t, clamped to the bounds.
func (c *Controller) SetTransform(t timescale.Transform) {
	c.set(c.bounds.Clamp(t))
}

// OnChange registers fn to run after every transform change. The returned
// func releases the registration.
func (c *Controller) OnChange(fn func(timescale.Transform)) (release func()) {
	id := c.nextObs
	c.nextObs++
	c.obs[id] = fn
	return func() { delete(c.obs, id) }
}

// Attach applies every gesture delivered by src until the returned func is
// called.
func (c *Controller) Attach(src Source) (detach func()) {
	return src.Subscribe(func(g Gesture) { c.Apply(g) })
}

func (c *Controller) set(t timescale.Transform) {
	if t == c.state.Transform {
		return
	}
	c.state.Transform = t
	c.notify()
}

func (c *Controller) notify() {
	for id := 0; id < c.nextObs; id++ {
		if fn, ok := c.obs[id]; ok {
			fn(c.state.Transform)
		}
	}
}

func sanitizeWidth(w float64) float64 {
	if w <= 0 || w != w {
		return timescale.DefaultWidth
	}
	return w
}

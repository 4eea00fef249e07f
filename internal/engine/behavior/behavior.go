// Package behavior defines per-frame logic units and the outcome taxonomy
// they report to the scheduler.
package behavior

import "github.com/Faultbox/spin/internal/engine/world"

// Behavior is dispatched once per phase by the scheduler. A nil return is
// Ignore; any other outcome is reported with a StepError. Returning an error
// that is not a StepError is treated as Fatal.
//
// The world pointer is only valid for the duration of the call.
type Behavior interface {
	Start(w *world.World) error
	Step(w *world.World) error
	FixedStep(w *world.World) error
	LateStep(w *world.World) error
}

// Base implements every hook as a no-op. Embed it and override the hooks a
// behavior needs.
type Base struct{}

func (Base) Start(*world.World) error     { return nil }
func (Base) Step(*world.World) error      { return nil }
func (Base) FixedStep(*world.World) error { return nil }
func (Base) LateStep(*world.World) error  { return nil }

// Hook is the signature shared by all phase hooks.
type Hook func(w *world.World) error

// Func builds a behavior from optional closures. Nil hooks are no-ops.
type Func struct {
	OnStart     Hook
	OnStep      Hook
	OnFixedStep Hook
	OnLateStep  Hook
}

func (f *Func) Start(w *world.World) error     { return call(f.OnStart, w) }
func (f *Func) Step(w *world.World) error      { return call(f.OnStep, w) }
func (f *Func) FixedStep(w *world.World) error { return call(f.OnFixedStep, w) }
func (f *Func) LateStep(w *world.World) error  { return call(f.OnLateStep, w) }

func call(h Hook, w *world.World) error {
	if h == nil {
		return nil
	}
	return h(w)
}

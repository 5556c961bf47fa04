package rotation

import (
	"math"

	"github.com/Carmen-Shannon/oxy-globe/common"
	"github.com/Carmen-Shannon/oxy-globe/engine/camera"
	"github.com/go-gl/mathgl/mgl64"
)

// Phase is the interaction state of a RotationController.
type Phase int

const (
	// PhaseAuto spins the globe slowly about the camera's up axis.
	PhaseAuto Phase = iota
	// PhaseDragging follows the primary pointer.
	PhaseDragging
	// PhaseMomentum keeps turning after release while the speed decays.
	PhaseMomentum
	// PhasePaused holds still until the resume delay has passed.
	PhasePaused
)

func (p Phase) String() string {
	switch p {
	case PhaseAuto:
		return "auto"
	case PhaseDragging:
		return "dragging"
	case PhaseMomentum:
		return "momentum"
	case PhasePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// PointerKind identifies a pointer event.
type PointerKind int

const (
	PointerDown PointerKind = iota
	PointerMove
	PointerUp
	PointerCancel
)

// PointerEvent is one pointer transition. Position is in surface-normalized units: pixel
// coordinates divided by the shorter side of the surface, with y growing downward.
// Position is ignored for up and cancel events.
type PointerEvent struct {
	Kind     PointerKind
	ID       int
	Position mgl64.Vec2
}

// State is a snapshot of the controller's internal state.
type State struct {
	Orientation  mgl64.Quat
	Phase        Phase
	AngularSpeed float64
	Axis         mgl64.Vec3
	IdleTimer    float64
	LastPointer  mgl64.Vec2
	PointerID    int
	// Clock is the total time advanced so far, in seconds.
	Clock float64
}

// RotationController owns the globe's orientation and drives it from pointer events and
// a per-frame time step. It is not safe for concurrent use; one scene owns one
// controller.
type RotationController interface {
	// PointerDown starts a drag with the given pointer unless one is already active.
	//
	// Parameters:
	//   - id: the pointer identifier
	//   - pos: surface-normalized position
	PointerDown(id int, pos mgl64.Vec2)

	// PointerMove rotates the globe by the pointer's displacement since the last
	// accepted move. Ignored unless id is the active drag pointer.
	//
	// Parameters:
	//   - id: the pointer identifier
	//   - pos: surface-normalized position
	PointerMove(id int, pos mgl64.Vec2)

	// PointerUp ends the drag started by id, entering momentum when the release speed
	// is above the threshold.
	//
	// Parameters:
	//   - id: the pointer identifier
	PointerUp(id int)

	// PointerCancel abandons the drag started by id without momentum.
	//
	// Parameters:
	//   - id: the pointer identifier
	PointerCancel(id int)

	// Handle dispatches one PointerEvent to the matching Pointer* method.
	//
	// Parameters:
	//   - ev: the event
	Handle(ev PointerEvent)

	// Advance applies any batched events in order, then steps the state machine by dt
	// seconds using the given camera pose.
	//
	// Parameters:
	//   - dt: elapsed seconds since the last frame; non-positive or non-finite values
	//     only apply the events
	//   - pose: the current camera pose
	//   - events: pointer events received since the last frame
	//
	// Returns:
	//   - mgl64.Quat: the orientation after the step
	Advance(dt float64, pose camera.Pose, events ...PointerEvent) mgl64.Quat

	// Orientation returns the current orientation.
	//
	// Returns:
	//   - mgl64.Quat: unit quaternion
	Orientation() mgl64.Quat

	// Phase returns the current phase.
	//
	// Returns:
	//   - Phase: the phase
	Phase() Phase

	// State returns a snapshot of the whole state.
	//
	// Returns:
	//   - State: the snapshot
	State() State

	// SetAutoRotate toggles the idle spin.
	//
	// Parameters:
	//   - enabled: whether the globe spins while in PhaseAuto
	SetAutoRotate(enabled bool)

	// AutoRotate reports whether the idle spin is enabled.
	//
	// Returns:
	//   - bool: true when enabled
	AutoRotate() bool

	// Reset returns to PhaseAuto with the initial orientation and drops any drag.
	Reset()

	// Reconfigure applies options to the running controller. Orientation, phase and any
	// drag in progress are kept.
	//
	// Parameters:
	//   - options: the options to apply
	Reconfigure(options ...RotationControllerBuilderOption)
}

type rotationController struct {
	orientation mgl64.Quat
	initial     mgl64.Quat

	phase        Phase
	angularSpeed float64
	axis         mgl64.Vec3
	idleTimer    float64

	pointerID   int
	lastPointer mgl64.Vec2

	// clock is the sum of all frame steps; pointer events are timed against it.
	clock       float64
	sampleTime  float64
	sampleAngle float64
	moved       bool

	pose camera.Pose

	autoRotate       bool
	autoRotateSpeed  float64
	dragSensitivity  float64
	decayRate        float64
	resumeDelay      float64
	releaseThreshold float64
	minDelta         float64
}

var _ RotationController = &rotationController{}

// NewRotationController creates a RotationController in PhaseAuto.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - RotationController: the controller
func NewRotationController(options ...RotationControllerBuilderOption) RotationController {
	rc := &rotationController{
		initial: mgl64.QuatIdent(),
		phase:   PhaseAuto,
		axis:    mgl64.Vec3{0, 1, 0},
		pose: camera.Pose{
			Position: mgl64.Vec3{0, 0, 1},
			Right:    mgl64.Vec3{1, 0, 0},
			Up:       mgl64.Vec3{0, 1, 0},
			Forward:  mgl64.Vec3{0, 0, -1},
		},

		autoRotate:       true,
		autoRotateSpeed:  DefaultAutoRotateSpeed,
		dragSensitivity:  DefaultDragSensitivity,
		decayRate:        DefaultDecayRate,
		resumeDelay:      DefaultResumeDelay,
		releaseThreshold: DefaultReleaseThreshold,
		minDelta:         DefaultMinDelta,
	}
	for _, option := range options {
		option(rc)
	}
	rc.orientation = rc.initial
	return rc
}

func (rc *rotationController) PointerDown(id int, pos mgl64.Vec2) {
	if rc.phase == PhaseDragging || !finite2(pos) {
		return
	}
	rc.phase = PhaseDragging
	rc.pointerID = id
	rc.lastPointer = pos
	rc.angularSpeed = 0
	rc.sampleTime = rc.clock
	rc.sampleAngle = 0
	rc.moved = false
}

func (rc *rotationController) PointerMove(id int, pos mgl64.Vec2) {
	if rc.phase != PhaseDragging || id != rc.pointerID || !finite2(pos) {
		return
	}
	delta := pos.Sub(rc.lastPointer)
	length := delta.Len()
	if length < rc.minDelta {
		return
	}

	// Screen y grows downward, so a downward drag turns the front of the globe down.
	axis := rc.pose.Up.Mul(delta.X()).Add(rc.pose.Right.Mul(delta.Y()))
	axisLen := axis.Len()
	if axisLen < 1e-12 {
		return
	}
	axis = axis.Mul(1 / axisLen)

	angle := length * rc.dragSensitivity
	rc.rotate(angle, axis)
	rc.axis = axis
	rc.lastPointer = pos
	rc.moved = true

	rc.sampleAngle += angle
	if elapsed := rc.clock - rc.sampleTime; elapsed > 0 {
		rc.angularSpeed = rc.sampleAngle / elapsed
		rc.sampleAngle = 0
		rc.sampleTime = rc.clock
	}
}

func (rc *rotationController) PointerUp(id int) {
	if rc.phase != PhaseDragging || id != rc.pointerID {
		return
	}
	if rc.angularSpeed > rc.releaseThreshold {
		rc.phase = PhaseMomentum
	} else {
		rc.phase = PhasePaused
		rc.angularSpeed = 0
	}
	rc.idleTimer = 0
}

func (rc *rotationController) PointerCancel(id int) {
	if rc.phase != PhaseDragging || id != rc.pointerID {
		return
	}
	rc.phase = PhasePaused
	rc.angularSpeed = 0
	rc.idleTimer = 0
}

func (rc *rotationController) Handle(ev PointerEvent) {
	switch ev.Kind {
	case PointerDown:
		rc.PointerDown(ev.ID, ev.Position)
	case PointerMove:
		rc.PointerMove(ev.ID, ev.Position)
	case PointerUp:
		rc.PointerUp(ev.ID)
	case PointerCancel:
		rc.PointerCancel(ev.ID)
	}
}

func (rc *rotationController) Advance(dt float64, pose camera.Pose, events ...PointerEvent) mgl64.Quat {
	if pose.Up.Len() > 1e-12 && pose.Right.Len() > 1e-12 {
		rc.pose = pose
	}
	for _, ev := range events {
		rc.Handle(ev)
	}
	if dt <= 0 || !common.IsFinite(dt) {
		return rc.orientation
	}
	rc.clock += dt

	switch rc.phase {
	case PhaseDragging:
		// A held but motionless pointer should not fling the globe on release.
		if !rc.moved {
			rc.angularSpeed *= math.Exp(-rc.decayRate * dt)
		}
		rc.moved = false

	case PhaseMomentum:
		rc.angularSpeed *= math.Exp(-rc.decayRate * dt)
		if rc.angularSpeed < rc.releaseThreshold {
			rc.phase = PhasePaused
			rc.angularSpeed = 0
			rc.idleTimer = 0
			break
		}
		rc.rotate(rc.angularSpeed*dt, rc.axis)

	case PhasePaused:
		rc.idleTimer += dt
		if rc.idleTimer >= rc.resumeDelay {
			rc.phase = PhaseAuto
			rc.idleTimer = 0
		}

	case PhaseAuto:
		if rc.autoRotate && rc.autoRotateSpeed != 0 {
			rc.rotate(rc.autoRotateSpeed*dt, rc.pose.Up.Normalize())
		}
	}

	return rc.orientation
}

func (rc *rotationController) Orientation() mgl64.Quat {
	return rc.orientation
}

func (rc *rotationController) Phase() Phase {
	return rc.phase
}

func (rc *rotationController) State() State {
	return State{
		Orientation:  rc.orientation,
		Phase:        rc.phase,
		AngularSpeed: rc.angularSpeed,
		Axis:         rc.axis,
		IdleTimer:    rc.idleTimer,
		LastPointer:  rc.lastPointer,
		PointerID:    rc.pointerID,
		Clock:        rc.clock,
	}
}

func (rc *rotationController) SetAutoRotate(enabled bool) {
	rc.autoRotate = enabled
}

func (rc *rotationController) AutoRotate() bool {
	return rc.autoRotate
}

func (rc *rotationController) Reset() {
	rc.orientation = rc.initial
	rc.phase = PhaseAuto
	rc.angularSpeed = 0
	rc.idleTimer = 0
	rc.sampleAngle = 0
	rc.moved = false
}

func (rc *rotationController) Reconfigure(options ...RotationControllerBuilderOption) {
	for _, option := range options {
		option(rc)
	}
}

// rotate pre-multiplies the orientation by a rotation of angle radians about the unit
// world-space axis.
func (rc *rotationController) rotate(angle float64, axis mgl64.Vec3) {
	inc := mgl64.QuatRotate(angle, axis)
	rc.orientation = inc.Mul(rc.orientation).Normalize()
}

func finite2(v mgl64.Vec2) bool {
	return common.IsFinite(v[0]) && common.IsFinite(v[1])
}

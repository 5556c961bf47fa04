package rotation

import (
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-globe/engine/camera"
	"github.com/go-gl/mathgl/mgl64"
)

const frame = 1.0 / 60

func defaultPose() camera.Pose {
	return camera.Pose{
		Position: mgl64.Vec3{0, 0, 5},
		Right:    mgl64.Vec3{1, 0, 0},
		Up:       mgl64.Vec3{0, 1, 0},
		Forward:  mgl64.Vec3{0, 0, -1},
	}
}

func quatAlmostEqual(a, b mgl64.Quat) bool {
	// q and -q are the same rotation.
	return a.ApproxEqualThreshold(b, 1e-9) || a.ApproxEqualThreshold(b.Scale(-1), 1e-9)
}

func TestPhaseString(t *testing.T) {
	tests := map[Phase]string{
		PhaseAuto:     "auto",
		PhaseDragging: "dragging",
		PhaseMomentum: "momentum",
		PhasePaused:   "paused",
		Phase(42):     "unknown",
	}
	for p, want := range tests {
		if p.String() != want {
			t.Errorf("Phase(%d).String() = %q, want %q", int(p), p.String(), want)
		}
	}
}

func TestAutoSpinAngle(t *testing.T) {
	const speed = 0.7
	rc := NewRotationController(WithAutoRotateSpeed(speed))
	pose := defaultPose()

	steps := 600
	for range steps {
		rc.Advance(frame, pose)
	}
	elapsed := float64(steps) * frame

	x := rc.Orientation().Rotate(mgl64.Vec3{1, 0, 0})
	if math.Abs(x.Y()) > 1e-9 {
		t.Fatalf("auto spin left the up axis: %v", x)
	}
	got := math.Atan2(-x.Z(), x.X())
	want := math.Mod(speed*elapsed, 2*math.Pi)
	if want > math.Pi {
		want -= 2 * math.Pi
	}
	if math.Abs(got-want) > 1e-6 {
		t.Fatalf("spin angle %v, want %v", got, want)
	}
	if rc.Phase() != PhaseAuto {
		t.Fatalf("phase %v, want auto", rc.Phase())
	}
}

func TestAutoSpinFollowsCameraUp(t *testing.T) {
	rc := NewRotationController(WithAutoRotateSpeed(1))
	pose := defaultPose()
	pose.Up = mgl64.Vec3{0, 0, 1}
	pose.Right = mgl64.Vec3{1, 0, 0}

	rc.Advance(0.5, pose)
	// Rotation about z leaves z fixed.
	if z := rc.Orientation().Rotate(mgl64.Vec3{0, 0, 1}); !z.ApproxEqualThreshold(mgl64.Vec3{0, 0, 1}, 1e-9) {
		t.Fatalf("spin axis must be the camera up, z moved to %v", z)
	}
}

func TestAutoRotateDisabled(t *testing.T) {
	rc := NewRotationController(WithAutoRotate(false))
	rc.Advance(1, defaultPose())
	if !quatAlmostEqual(rc.Orientation(), mgl64.QuatIdent()) {
		t.Fatal("disabled auto rotate must not turn the globe")
	}
	rc.SetAutoRotate(true)
	if !rc.AutoRotate() {
		t.Fatal("SetAutoRotate(true) not reflected")
	}
	rc.Advance(1, defaultPose())
	if quatAlmostEqual(rc.Orientation(), mgl64.QuatIdent()) {
		t.Fatal("enabled auto rotate must turn the globe")
	}
}

func TestDragMomentumPauseResume(t *testing.T) {
	rc := NewRotationController()
	pose := defaultPose()

	rc.Advance(frame, pose, PointerEvent{Kind: PointerDown, ID: 1, Position: mgl64.Vec2{0.5, 0.5}})
	if rc.Phase() != PhaseDragging {
		t.Fatalf("phase %v after down, want dragging", rc.Phase())
	}

	x := 0.5
	for range 3 {
		x += 0.02
		rc.Advance(frame, pose, PointerEvent{Kind: PointerMove, ID: 1, Position: mgl64.Vec2{x, 0.5}})
	}
	speed := rc.State().AngularSpeed
	wantSpeed := 0.02 * DefaultDragSensitivity / frame
	if math.Abs(speed-wantSpeed) > 1e-6 {
		t.Fatalf("drag speed %v, want %v", speed, wantSpeed)
	}

	rc.Handle(PointerEvent{Kind: PointerUp, ID: 1})
	if rc.Phase() != PhaseMomentum {
		t.Fatalf("phase %v after fast release, want momentum", rc.Phase())
	}

	before := rc.Orientation()
	rc.Advance(frame, pose)
	if quatAlmostEqual(before, rc.Orientation()) {
		t.Fatal("momentum must keep turning the globe")
	}

	var elapsed float64
	for rc.Phase() == PhaseMomentum {
		rc.Advance(frame, pose)
		elapsed += frame
		if elapsed > 10 {
			t.Fatal("momentum never decayed")
		}
	}
	if rc.Phase() != PhasePaused {
		t.Fatalf("phase %v after momentum, want paused", rc.Phase())
	}
	// Speed decays as exp(-k t) from wantSpeed down to the threshold.
	wantElapsed := math.Log(wantSpeed/DefaultReleaseThreshold) / DefaultDecayRate
	if math.Abs(elapsed-wantElapsed) > 3*frame {
		t.Fatalf("momentum lasted %v, want about %v", elapsed, wantElapsed)
	}

	paused := rc.Orientation()
	for range 59 {
		rc.Advance(frame, pose)
	}
	if rc.Phase() != PhasePaused || !quatAlmostEqual(paused, rc.Orientation()) {
		t.Fatal("paused globe must hold still until the resume delay")
	}
	rc.Advance(frame+1e-9, pose)
	if rc.Phase() != PhaseAuto {
		t.Fatalf("phase %v after resume delay, want auto", rc.Phase())
	}
}

func TestDragDirection(t *testing.T) {
	tests := []struct {
		name  string
		to    mgl64.Vec2
		check func(front mgl64.Vec3) bool
	}{
		{"right", mgl64.Vec2{0.6, 0.5}, func(f mgl64.Vec3) bool { return f.X() > 0.1 }},
		{"left", mgl64.Vec2{0.4, 0.5}, func(f mgl64.Vec3) bool { return f.X() < -0.1 }},
		{"down", mgl64.Vec2{0.5, 0.6}, func(f mgl64.Vec3) bool { return f.Y() < -0.1 }},
		{"up", mgl64.Vec2{0.5, 0.4}, func(f mgl64.Vec3) bool { return f.Y() > 0.1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rc := NewRotationController()
			rc.Advance(0, defaultPose())
			rc.PointerDown(0, mgl64.Vec2{0.5, 0.5})
			rc.PointerMove(0, tt.to)
			front := rc.Orientation().Rotate(mgl64.Vec3{0, 0, 1})
			if !tt.check(front) {
				t.Fatalf("front point moved to %v", front)
			}
		})
	}
}

func TestSlowReleasePauses(t *testing.T) {
	rc := NewRotationController()
	pose := defaultPose()
	rc.Advance(frame, pose, PointerEvent{Kind: PointerDown, ID: 3, Position: mgl64.Vec2{0.5, 0.5}})
	rc.Advance(frame, pose, PointerEvent{Kind: PointerMove, ID: 3, Position: mgl64.Vec2{0.6, 0.5}})

	// Holding still lets the sampled speed decay.
	for range 240 {
		rc.Advance(frame, pose)
	}
	rc.PointerUp(3)
	if rc.Phase() != PhasePaused {
		t.Fatalf("phase %v after a held release, want paused", rc.Phase())
	}
	if rc.State().AngularSpeed != 0 {
		t.Fatalf("paused speed %v, want 0", rc.State().AngularSpeed)
	}
}

func TestCancelPauses(t *testing.T) {
	rc := NewRotationController()
	rc.Advance(frame, defaultPose(),
		PointerEvent{Kind: PointerDown, ID: 1, Position: mgl64.Vec2{0.5, 0.5}},
	)
	rc.Advance(frame, defaultPose(),
		PointerEvent{Kind: PointerMove, ID: 1, Position: mgl64.Vec2{0.9, 0.5}},
		PointerEvent{Kind: PointerCancel, ID: 1},
	)
	if rc.Phase() != PhasePaused {
		t.Fatalf("phase %v after cancel, want paused", rc.Phase())
	}
}

func TestSecondaryPointerIgnored(t *testing.T) {
	rc := NewRotationController()
	rc.Advance(0, defaultPose())
	rc.PointerDown(1, mgl64.Vec2{0.5, 0.5})
	start := rc.Orientation()

	rc.PointerDown(2, mgl64.Vec2{0.1, 0.1})
	rc.PointerMove(2, mgl64.Vec2{0.9, 0.9})
	rc.PointerUp(2)
	if rc.Phase() != PhaseDragging || rc.State().PointerID != 1 {
		t.Fatal("secondary pointer must not take over the drag")
	}
	if !quatAlmostEqual(start, rc.Orientation()) {
		t.Fatal("secondary pointer must not rotate the globe")
	}
}

func TestMalformedInputIgnored(t *testing.T) {
	rc := NewRotationController()
	pose := defaultPose()

	rc.PointerMove(0, mgl64.Vec2{0.9, 0.9})
	if !quatAlmostEqual(rc.Orientation(), mgl64.QuatIdent()) || rc.Phase() != PhaseAuto {
		t.Fatal("move before down must be ignored")
	}
	rc.PointerUp(0)
	if rc.Phase() != PhaseAuto {
		t.Fatal("up before down must be ignored")
	}

	rc.PointerDown(0, mgl64.Vec2{math.NaN(), 0})
	if rc.Phase() != PhaseAuto {
		t.Fatal("non-finite down must be ignored")
	}

	rc.PointerDown(0, mgl64.Vec2{0.5, 0.5})
	rc.PointerMove(0, mgl64.Vec2{math.Inf(1), 0.5})
	rc.PointerMove(0, mgl64.Vec2{0.5 + 1e-9, 0.5})
	if !quatAlmostEqual(rc.Orientation(), mgl64.QuatIdent()) {
		t.Fatal("non-finite and sub-threshold moves must not rotate")
	}
	if rc.State().LastPointer != (mgl64.Vec2{0.5, 0.5}) {
		t.Fatal("ignored moves must not update the last pointer position")
	}

	before := rc.Orientation()
	clock := rc.State().Clock
	for _, dt := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		rc.Advance(dt, pose)
	}
	if rc.State().Clock != clock || !quatAlmostEqual(before, rc.Orientation()) {
		t.Fatal("non-positive or non-finite steps must not advance the controller")
	}
}

func TestOrientationStaysUnit(t *testing.T) {
	rc := NewRotationController(WithAutoRotateSpeed(3))
	pose := defaultPose()
	for i := range 5000 {
		if i%50 == 0 {
			rc.PointerDown(0, mgl64.Vec2{0.5, 0.5})
			rc.PointerMove(0, mgl64.Vec2{0.5 + 0.01*float64(i%7), 0.5 - 0.01*float64(i%5)})
			rc.PointerUp(0)
		}
		rc.Advance(frame, pose)
	}
	if l := rc.Orientation().Len(); math.Abs(l-1) > 1e-9 {
		t.Fatalf("orientation length %v, want 1", l)
	}
}

func TestReset(t *testing.T) {
	initial := mgl64.QuatRotate(0.3, mgl64.Vec3{1, 0, 0})
	rc := NewRotationController(WithInitialOrientation(initial))
	rc.Advance(1, defaultPose())
	rc.PointerDown(0, mgl64.Vec2{0.2, 0.2})
	rc.Reset()
	if rc.Phase() != PhaseAuto || !quatAlmostEqual(rc.Orientation(), initial) {
		t.Fatal("reset must restore the initial orientation in auto phase")
	}
}

func TestDownInterruptsMomentum(t *testing.T) {
	rc := NewRotationController()
	pose := defaultPose()
	rc.Advance(frame, pose, PointerEvent{Kind: PointerDown, ID: 0, Position: mgl64.Vec2{0.5, 0.5}})
	rc.Advance(frame, pose, PointerEvent{Kind: PointerMove, ID: 0, Position: mgl64.Vec2{0.7, 0.5}})
	rc.Advance(frame, pose, PointerEvent{Kind: PointerUp, ID: 0})
	if rc.Phase() != PhaseMomentum {
		t.Fatalf("phase %v, want momentum", rc.Phase())
	}
	rc.Advance(frame, pose, PointerEvent{Kind: PointerDown, ID: 4, Position: mgl64.Vec2{0.1, 0.1}})
	if rc.Phase() != PhaseDragging || rc.State().AngularSpeed != 0 {
		t.Fatal("a new press must grab the globe out of momentum")
	}
}

func TestReconfigureKeepsState(t *testing.T) {
	rc := NewRotationController()
	pose := defaultPose()
	rc.PointerDown(1, mgl64.Vec2{0, 0})
	rc.Advance(frame, pose)
	rc.PointerMove(1, mgl64.Vec2{0.1, 0})
	before := rc.Orientation()

	rc.Reconfigure(WithAutoRotateSpeed(2), WithDragSensitivity(1))
	if rc.Phase() != PhaseDragging {
		t.Fatalf("phase = %s, want dragging", rc.Phase())
	}
	if !quatAlmostEqual(rc.Orientation(), before) {
		t.Fatalf("orientation changed on Reconfigure")
	}
}

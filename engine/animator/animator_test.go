package animator

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/animation"
	"github.com/Carmen-Shannon/oxy-anim/engine/profiler"
	"github.com/Carmen-Shannon/oxy-anim/engine/skeleton"

	"github.com/go-gl/mathgl/mgl32"
)

// testRig is a two joint chain with identity inverse binds, so skinning matrices equal model space.
func testRig(t *testing.T) skeleton.Skeleton {
	t.Helper()
	s, err := skeleton.NewSkeleton([]skeleton.Joint{
		{ParentIndex: 0, InverseBindMatrix: mgl32.Ident4()},
		{ParentIndex: 0, InverseBindMatrix: mgl32.Ident4()},
	}, skeleton.WithName("rig"))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func vec3Channel(t *testing.T, times []float32, values ...common.Vec3) animation.Vec3Channel {
	t.Helper()
	c, err := animation.NewChannel(times, values)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

// testClips returns "idle", which holds the root at the origin, and "move", which slides the root
// from y=0 to y=2 over one second. Both keep the child one unit above the root.
func testClips(t *testing.T) (idle, move animation.Clip) {
	t.Helper()
	child := animation.NewJointAnimation(animation.Vec3Channel{}, animation.QuaternionChannel{},
		vec3Channel(t, []float32{0}, common.Vec3{0, 1, 0}))

	idleRoot := animation.NewJointAnimation(animation.Vec3Channel{}, animation.QuaternionChannel{},
		vec3Channel(t, []float32{0}, common.Vec3{0, 0, 0}))
	moveRoot := animation.NewJointAnimation(animation.Vec3Channel{}, animation.QuaternionChannel{},
		vec3Channel(t, []float32{0, 1}, common.Vec3{0, 0, 0}, common.Vec3{0, 2, 0}))

	var err error
	if idle, err = animation.NewClip(1, []animation.JointAnimation{idleRoot, child}, animation.WithName("idle")); err != nil {
		t.Fatal(err)
	}
	if move, err = animation.NewClip(1, []animation.JointAnimation{moveRoot, child}, animation.WithName("move")); err != nil {
		t.Fatal(err)
	}
	return idle, move
}

func newTestAnimator(t *testing.T, options ...AnimatorBuilderOption) Animator {
	t.Helper()
	idle, move := testClips(t)
	opts := append([]AnimatorBuilderOption{WithClip("idle", idle), WithClip("move", move), WithWorkers(2)}, options...)
	a, err := NewAnimator(testRig(t), opts...)
	if err != nil {
		t.Fatal(err)
	}
	return a
}

func checkRootAndChild(t *testing.T, a Animator, instance uint32, rootY, childY float32) {
	t.Helper()
	m := a.SkinningMatrices(instance)
	if len(m) != 2 {
		t.Fatalf("SkinningMatrices(%d) returned %d matrices", instance, len(m))
	}
	if got := m[0].Col(3); !common.NearlyEqual(got.Y(), rootY, 1e-4) {
		t.Errorf("root y = %v, want %v", got.Y(), rootY)
	}
	if got := m[1].Col(3); !common.NearlyEqual(got.Y(), childY, 1e-4) {
		t.Errorf("child y = %v, want %v", got.Y(), childY)
	}
}

func TestUnplayedInstanceHoldsBindPose(t *testing.T) {
	a := newTestAnimator(t)
	idx, err := a.AddInstance()
	if err != nil {
		t.Fatal(err)
	}
	if err := a.PrepareFrame(0.1); err != nil {
		t.Fatal(err)
	}
	for j, m := range a.SkinningMatrices(idx) {
		if !common.NearlyEqualMatrix(m, mgl32.Ident4(), 1e-6) {
			t.Errorf("joint %d = %v, want identity", j, m)
		}
	}
	if _, ok := a.CurrentClip(idx); ok {
		t.Error("CurrentClip reported a clip before PlayAnimation")
	}

	writes := a.StagedWriteData()
	if len(writes) != 1 || writes[0].Offset != 0 || len(writes[0].Data) != 2*64 {
		t.Fatalf("writes = %+v", writes)
	}
	if len(a.StagedWriteData()) != 0 {
		t.Error("StagedWriteData did not drain")
	}
}

func TestPlayback(t *testing.T) {
	tests := []struct {
		name     string
		loop     bool
		speed    float32
		frames   []float32
		wantTime float32
		wantRoot float32
	}{
		{"half way", false, 1, []float32{0.5}, 0.5, 1},
		{"clamps past end", false, 1, []float32{0.75, 0.75}, 1, 2},
		{"loops past end", true, 1, []float32{0.75, 0.5}, 0.25, 0.5},
		{"half speed", false, 0.5, []float32{1}, 0.5, 1},
		{"reverse wraps", true, -1, []float32{0.25}, 0.75, 1.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAnimator(t)
			idx, _ := a.AddInstance()
			move, _ := a.ClipIndex("move")
			if err := a.PlayAnimation(idx, move, tt.loop); err != nil {
				t.Fatal(err)
			}
			a.SetAnimationSpeed(idx, tt.speed)
			for _, dt := range tt.frames {
				if err := a.PrepareFrame(dt); err != nil {
					t.Fatal(err)
				}
			}
			if got := a.AnimationTime(idx); !common.NearlyEqual(got, tt.wantTime, 1e-5) {
				t.Errorf("AnimationTime = %v, want %v", got, tt.wantTime)
			}
			checkRootAndChild(t, a, idx, tt.wantRoot, tt.wantRoot+1)
		})
	}
}

func TestBlendToAnimation(t *testing.T) {
	a := newTestAnimator(t)
	idx, _ := a.AddInstance()
	idle, _ := a.ClipIndex("idle")
	move, _ := a.ClipIndex("move")

	if err := a.PlayAnimation(idx, idle, false); err != nil {
		t.Fatal(err)
	}
	if err := a.BlendToAnimation(idx, move, 1); err != nil {
		t.Fatal(err)
	}
	if err := a.PrepareFrame(0.5); err != nil {
		t.Fatal(err)
	}
	if !a.IsBlending(idx) || !common.NearlyEqual(a.BlendProgress(idx), 0.5, 1e-6) {
		t.Fatalf("blending = %v, progress = %v", a.IsBlending(idx), a.BlendProgress(idx))
	}
	// Halfway between idle (y=0) and move sampled at 0.5 (y=1).
	checkRootAndChild(t, a, idx, 0.5, 1.5)

	if err := a.PrepareFrame(0.5); err != nil {
		t.Fatal(err)
	}
	if a.IsBlending(idx) {
		t.Error("blend did not complete")
	}
	if clip, _ := a.CurrentClip(idx); clip != move {
		t.Errorf("CurrentClip = %d, want %d", clip, move)
	}
	if got := a.AnimationTime(idx); got != 1 {
		t.Errorf("AnimationTime = %v, want the blend target's time 1", got)
	}
	checkRootAndChild(t, a, idx, 2, 3)
}

func TestBlendEdgeCases(t *testing.T) {
	a := newTestAnimator(t)
	idx, _ := a.AddInstance()
	idle, _ := a.ClipIndex("idle")
	move, _ := a.ClipIndex("move")

	t.Run("zero duration switches immediately", func(t *testing.T) {
		if err := a.PlayAnimation(idx, idle, false); err != nil {
			t.Fatal(err)
		}
		if err := a.BlendToAnimation(idx, move, 0); err != nil {
			t.Fatal(err)
		}
		if a.IsBlending(idx) {
			t.Error("zero duration blend left the instance blending")
		}
		if clip, _ := a.CurrentClip(idx); clip != move {
			t.Errorf("CurrentClip = %d, want %d", clip, move)
		}
	})

	t.Run("cancel keeps the current clip", func(t *testing.T) {
		if err := a.PlayAnimation(idx, idle, false); err != nil {
			t.Fatal(err)
		}
		if err := a.BlendToAnimation(idx, move, 2); err != nil {
			t.Fatal(err)
		}
		a.CancelBlend(idx)
		if err := a.PrepareFrame(0.5); err != nil {
			t.Fatal(err)
		}
		if a.IsBlending(idx) || a.BlendProgress(idx) != 0 {
			t.Error("CancelBlend did not stop the blend")
		}
		checkRootAndChild(t, a, idx, 0, 1)
	})

	t.Run("play cancels a blend", func(t *testing.T) {
		if err := a.BlendToAnimation(idx, move, 2); err != nil {
			t.Fatal(err)
		}
		if err := a.PlayAnimation(idx, move, true); err != nil {
			t.Fatal(err)
		}
		if a.IsBlending(idx) || a.AnimationTime(idx) != 0 {
			t.Error("PlayAnimation did not reset playback")
		}
	})
}

func TestAdditiveLayer(t *testing.T) {
	a := newTestAnimator(t)
	idx, _ := a.AddInstance()
	idle, _ := a.ClipIndex("idle")
	move, _ := a.ClipIndex("move")

	if err := a.PlayAnimation(idx, idle, true); err != nil {
		t.Fatal(err)
	}
	layer, err := a.AddLayer(idx, Layer{ClipIndex: move, ReferenceClipIndex: int(idle), Weight: 1})
	if err != nil {
		t.Fatal(err)
	}
	if err := a.PrepareFrame(0.5); err != nil {
		t.Fatal(err)
	}
	// The move delta at 0.5 relative to idle lifts the root by one unit.
	checkRootAndChild(t, a, idx, 1, 2)

	if err := a.SetLayerWeight(idx, layer, 0.5); err != nil {
		t.Fatal(err)
	}
	if err := a.PrepareFrame(0); err != nil {
		t.Fatal(err)
	}
	checkRootAndChild(t, a, idx, 0.5, 1.5)

	if err := a.SetLayerWeight(idx, layer+1, 1); err == nil {
		t.Error("expected an error for an out of range layer")
	}
	if _, err := a.AddLayer(idx, Layer{ClipIndex: move, ReferenceClipIndex: 9}); !errors.Is(err, ErrInvalidClip) {
		t.Errorf("expected ErrInvalidClip, got %v", err)
	}

	a.ClearLayers(idx)
	if err := a.PrepareFrame(0); err != nil {
		t.Fatal(err)
	}
	checkRootAndChild(t, a, idx, 0, 1)
}

func TestInstanceManagement(t *testing.T) {
	a := newTestAnimator(t, WithMaxInstances(3))
	move, _ := a.ClipIndex("move")

	for range 3 {
		if _, err := a.AddInstance(); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := a.AddInstance(); !errors.Is(err, ErrInstanceLimit) {
		t.Errorf("expected ErrInstanceLimit, got %v", err)
	}

	if err := a.PlayAnimation(2, move, false); err != nil {
		t.Fatal(err)
	}
	a.SetAnimationTime(2, 0.25)
	if err := a.PrepareFrame(0.25); err != nil {
		t.Fatal(err)
	}

	last, swapped := a.RemoveInstance(0)
	if !swapped || last != 2 {
		t.Fatalf("RemoveInstance(0) = %d, %v", last, swapped)
	}
	if a.InstanceCount() != 2 {
		t.Errorf("InstanceCount = %d", a.InstanceCount())
	}
	// Instance 2 now lives in slot 0 with its state and matrices.
	if clip, ok := a.CurrentClip(0); !ok || clip != move || a.AnimationTime(0) != 0.5 {
		t.Errorf("swapped state = clip %d (%v), time %v", clip, ok, a.AnimationTime(0))
	}
	checkRootAndChild(t, a, 0, 1, 2)

	if _, swapped := a.RemoveInstance(1); swapped {
		t.Error("removing the last instance reported a swap")
	}
	if _, swapped := a.RemoveInstance(5); swapped || a.InstanceCount() != 1 {
		t.Error("out of range RemoveInstance changed the animator")
	}
	if a.SkinningMatrices(4) != nil {
		t.Error("SkinningMatrices returned data for an invalid instance")
	}
}

func TestInvalidArguments(t *testing.T) {
	a := newTestAnimator(t)
	idx, _ := a.AddInstance()

	if err := a.PlayAnimation(idx+1, 0, false); !errors.Is(err, ErrInvalidInstance) {
		t.Errorf("expected ErrInvalidInstance, got %v", err)
	}
	if err := a.PlayAnimation(idx, 7, false); !errors.Is(err, ErrInvalidClip) {
		t.Errorf("expected ErrInvalidClip, got %v", err)
	}
	if err := a.BlendToAnimation(idx, 7, 1); !errors.Is(err, ErrInvalidClip) {
		t.Errorf("expected ErrInvalidClip, got %v", err)
	}

	idle, _ := testClips(t)
	if _, err := a.AddClip("idle", idle); err == nil {
		t.Error("expected an error for a duplicate clip name")
	}

	short, err := animation.NewClip(1, []animation.JointAnimation{{}})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := a.AddClip("short", short); !errors.Is(err, common.ErrJointCountMismatch) {
		t.Errorf("expected ErrJointCountMismatch, got %v", err)
	}
	if _, err := NewAnimator(testRig(t), WithClip("short", short)); !errors.Is(err, common.ErrJointCountMismatch) {
		t.Errorf("NewAnimator: expected ErrJointCountMismatch, got %v", err)
	}
}

func TestManyInstances(t *testing.T) {
	const n = 600
	p := profiler.NewProfiler(profiler.WithUpdateInterval(0))
	a := newTestAnimator(t, WithMaxInstances(n), WithWorkers(3), WithProfiler(p))
	move, _ := a.ClipIndex("move")

	for i := range n {
		idx, err := a.AddInstance()
		if err != nil {
			t.Fatal(err)
		}
		if err := a.PlayAnimation(idx, move, false); err != nil {
			t.Fatal(err)
		}
		a.SetAnimationTime(idx, float32(i%2)*0.5)
	}

	if err := a.PrepareFrame(0); err != nil {
		t.Fatal(err)
	}

	writes := a.StagedWriteData()
	if len(writes) != n {
		t.Fatalf("got %d writes, want %d", len(writes), n)
	}
	for i, w := range writes {
		if w.Instance != uint32(i) || w.Offset != uint64(i*2*64) {
			t.Fatalf("write %d = instance %d offset %d", i, w.Instance, w.Offset)
		}
	}
	checkRootAndChild(t, a, 0, 0, 1)
	checkRootAndChild(t, a, n-1, 1, 2)

	if p.Last().FPS <= 0 {
		t.Error("profiler did not record the frame")
	}
}

func TestLayerWithoutClipKeepsBindPose(t *testing.T) {
	skel, err := skeleton.NewFromBindPose([]uint32{0, 0}, []common.Transform{
		common.IdentityTransform(),
		{Position: common.Vec3{0, 1, 0}, Rotation: common.IdentityQuaternion(), Scale: common.Vec3{1, 1, 1}},
	})
	if err != nil {
		t.Fatal(err)
	}
	_, move := testClips(t)
	a, err := NewAnimator(skel, WithClip("move", move), WithWorkers(1))
	if err != nil {
		t.Fatal(err)
	}
	idx, _ := a.AddInstance()

	for _, weight := range []float32{0, 1} {
		if _, err := a.AddLayer(idx, Layer{ClipIndex: 0, ReferenceClipIndex: -1, Weight: weight}); err != nil {
			t.Fatal(err)
		}
		if err := a.PrepareFrame(0.25); err != nil {
			t.Fatal(err)
		}
		for j, m := range a.SkinningMatrices(idx) {
			if !common.NearlyEqualMatrix(m, mgl32.Ident4(), 1e-5) {
				t.Errorf("weight %v: joint %d = %v, want identity", weight, j, m)
			}
		}
	}

	// Once a clip plays the layers apply again.
	if err := a.PlayAnimation(idx, 0, false); err != nil {
		t.Fatal(err)
	}
	a.ClearLayers(idx)
	if err := a.PrepareFrame(0.5); err != nil {
		t.Fatal(err)
	}
	if got := a.SkinningMatrices(idx)[0].Col(3).Y(); !common.NearlyEqual(got, 1, 1e-4) {
		t.Errorf("root y = %v, want 1", got)
	}
}

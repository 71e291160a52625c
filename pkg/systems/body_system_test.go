package systems

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/decker502/liquidbox/pkg/components"
	"github.com/decker502/liquidbox/pkg/ecs"
	"github.com/decker502/liquidbox/pkg/entities"
	"github.com/decker502/liquidbox/pkg/physics"
	"github.com/decker502/liquidbox/pkg/render"
	"github.com/decker502/liquidbox/pkg/types"
)

// countingDrawable 记录 Draw/Dispose 次数
type countingDrawable struct {
	draws    int
	disposes int
}

func (d *countingDrawable) Draw(target render.Target, xf render.Transform) { d.draws++ }
func (d *countingDrawable) Dispose()                                       { d.disposes++ }

// replacePayloads 将刚体夹具上的渲染数据替换为计数器（原数据先释放）
func replacePayloads(t *testing.T, em *ecs.EntityManager, id ecs.EntityID) []*countingDrawable {
	t.Helper()
	bc, ok := ecs.GetComponent[*components.BodyComponent](em, id)
	if !ok {
		t.Fatalf("entity %d has no body", id)
	}
	var counters []*countingDrawable
	for _, f := range physics.Fixtures(bc.Body) {
		if d, ok := f.GetUserData().(render.Drawable); ok {
			d.Dispose()
		}
		c := &countingDrawable{}
		f.SetUserData(c)
		counters = append(counters, c)
	}
	return counters
}

func TestBodySystemCullsOutOfBounds(t *testing.T) {
	em := ecs.NewEntityManager()
	engine := physics.NewEngine(mgl64.Vec2{0, -10})

	inside := entities.NewItemEntity(em, engine, types.ItemBox, mgl64.Vec2{0, 0}, mgl64.Vec2{2, 2})
	outside := entities.NewItemEntity(em, engine, types.ItemCup, mgl64.Vec2{500, 0}, mgl64.Vec2{3, 3})
	insideCounters := replacePayloads(t, em, inside)
	outsideCounters := replacePayloads(t, em, outside)

	s := NewBodySystem(em, engine, testBounds, nil)
	target := &render.RecordingTarget{}
	destroyed := s.Update(target, false)

	if destroyed != 1 {
		t.Fatalf("expected 1 destroyed body, got %d", destroyed)
	}
	if em.Exists(outside) {
		t.Error("culled body entity should be removed")
	}
	if engine.BodyCount() != 1 {
		t.Errorf("engine should hold 1 body, got %d", engine.BodyCount())
	}
	for i, c := range outsideCounters {
		if c.disposes != 1 {
			t.Errorf("culled fixture %d disposed %d times", i, c.disposes)
		}
		if c.draws != 0 {
			t.Errorf("culled fixture %d should not be drawn", i)
		}
	}
	for i, c := range insideCounters {
		if c.disposes != 0 || c.draws != 1 {
			t.Errorf("live fixture %d: disposes=%d draws=%d", i, c.disposes, c.draws)
		}
	}
}

func TestBodySystemSuppressRenderStillCulls(t *testing.T) {
	em := ecs.NewEntityManager()
	engine := physics.NewEngine(mgl64.Vec2{})
	entities.NewItemEntity(em, engine, types.ItemBox, mgl64.Vec2{0, 0}, mgl64.Vec2{2, 2})
	gone := entities.NewItemEntity(em, engine, types.ItemBox, mgl64.Vec2{-500, 0}, mgl64.Vec2{2, 2})

	s := NewBodySystem(em, engine, testBounds, nil)
	target := &render.RecordingTarget{}
	if n := s.Update(target, true); n != 1 {
		t.Errorf("expected 1 destroyed body, got %d", n)
	}
	if em.Exists(gone) {
		t.Error("out-of-bounds body should be destroyed even with rendering suppressed")
	}
	if target.Calls() != 0 {
		t.Errorf("suppressed render issued %d calls", target.Calls())
	}
}

func TestDestroyBodyTwice(t *testing.T) {
	em := ecs.NewEntityManager()
	engine := physics.NewEngine(mgl64.Vec2{})
	id := entities.NewItemEntity(em, engine, types.ItemCup, mgl64.Vec2{}, mgl64.Vec2{3, 3})
	counters := replacePayloads(t, em, id)

	s := NewBodySystem(em, engine, testBounds, nil)
	s.DestroyBody(id)
	s.DestroyBody(id)

	for i, c := range counters {
		if c.disposes != 1 {
			t.Errorf("fixture %d disposed %d times", i, c.disposes)
		}
	}
	if engine.BodyCount() != 0 {
		t.Errorf("body should be freed, engine holds %d", engine.BodyCount())
	}
}

func TestReleaseFixturesClearsUserData(t *testing.T) {
	engine := physics.NewEngine(mgl64.Vec2{})
	body := engine.CreateBody(true)
	entities.CreateCup(body, mgl64.Vec2{}, mgl64.Vec2{3, 3})

	if n := ReleaseFixtures(body); n != 3 {
		t.Errorf("expected 3 released payloads, got %d", n)
	}
	if n := ReleaseFixtures(body); n != 0 {
		t.Errorf("second release should be a no-op, released %d", n)
	}
	for _, f := range physics.Fixtures(body) {
		if f.GetUserData() != nil {
			t.Error("user data should be cleared after release")
		}
	}
}

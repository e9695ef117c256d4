package ecs

import (
	"image"
	"testing"

	"github.com/phanxgames/gremlin"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

func TestNewDonburiSink(t *testing.T) {
	world := donburi.NewWorld()
	sink := NewDonburiSink(world)
	if sink == nil {
		t.Fatal("NewDonburiSink returned nil")
	}
}

func TestDonburiSink_ImplementsEventSink(t *testing.T) {
	world := donburi.NewWorld()
	var sink gremlin.EventSink = NewDonburiSink(world)
	_ = sink // compile-time interface check
}

func TestDonburiSink_PublishesEvents(t *testing.T) {
	world := donburi.NewWorld()
	sink := NewDonburiSink(world)

	var received []gremlin.Event
	SceneEventType.Subscribe(world, func(w donburi.World, e gremlin.Event) {
		received = append(received, e)
	})

	sink.EmitEvent(gremlin.Event{
		Type:     gremlin.EventSpawn,
		ID:       42,
		Position: gremlin.Vec2{X: 100, Y: 200},
		To:       gremlin.StateIdle,
	})
	sink.EmitEvent(gremlin.Event{
		Type: gremlin.EventInput,
		ID:   42,
		Input: gremlin.InputEvent{
			Kind:   gremlin.InputClick,
			Target: 42,
			Click:  gremlin.ClickDouble,
		},
	})

	// Events are queued; process them.
	SceneEventType.ProcessEvents(world)

	if len(received) != 2 {
		t.Fatalf("expected 2 events, got %d", len(received))
	}
	e0 := received[0]
	if e0.Type != gremlin.EventSpawn || e0.ID != 42 {
		t.Errorf("event 0: %+v", e0)
	}
	if e0.Position.X != 100 || e0.Position.Y != 200 {
		t.Errorf("event 0 position: %+v", e0.Position)
	}
	e1 := received[1]
	if e1.Type != gremlin.EventInput || e1.Input.Click != gremlin.ClickDouble {
		t.Errorf("event 1: %+v", e1)
	}
}

func TestDonburiSink_MirrorsInstances(t *testing.T) {
	world := donburi.NewWorld()
	sink := NewDonburiSink(world)

	sink.EmitEvent(gremlin.Event{Type: gremlin.EventSpawn, ID: 7, To: gremlin.StateReacting})
	e, ok := sink.Entity(7)
	if !ok {
		t.Fatal("spawned instance has no entity")
	}
	got := GremlinComponent.Get(world.Entry(e))
	if got.ID != 7 || got.State != gremlin.StateReacting {
		t.Errorf("component = %+v, want ID 7 in Reacting", *got)
	}

	sink.EmitEvent(gremlin.Event{
		Type:     gremlin.EventTransition,
		ID:       7,
		From:     gremlin.StateReacting,
		To:       gremlin.StateIdle,
		Position: gremlin.Vec2{X: 5, Y: 6},
	})
	got = GremlinComponent.Get(world.Entry(e))
	if got.State != gremlin.StateIdle || got.Position != (gremlin.Vec2{X: 5, Y: 6}) {
		t.Errorf("after transition component = %+v", *got)
	}

	sink.EmitEvent(gremlin.Event{Type: gremlin.EventDespawn, ID: 7})
	if _, ok := sink.Entity(7); ok {
		t.Error("despawned instance still mapped")
	}
	if world.Valid(e) {
		t.Error("despawned entity still valid")
	}
}

func TestDonburiSink_MultipleSubscribers(t *testing.T) {
	world := donburi.NewWorld()
	sink := NewDonburiSink(world)

	var count1, count2 int
	SceneEventType.Subscribe(world, func(w donburi.World, e gremlin.Event) {
		count1++
	})
	SceneEventType.Subscribe(world, func(w donburi.World, e gremlin.Event) {
		count2++
	})

	sink.EmitEvent(gremlin.Event{Type: gremlin.EventInput})
	events.ProcessAllEvents(world)

	if count1 != 1 || count2 != 1 {
		t.Errorf("expected both subscribers called once, got %d and %d", count1, count2)
	}
}

func TestDonburiSink_SceneIntegration(t *testing.T) {
	sheet, err := gremlin.NewSpriteSheet(
		[]image.Image{image.NewNRGBA(image.Rect(0, 0, 64, 32))},
		gremlin.SheetGeometry{
			FrameWidth:  32,
			FrameHeight: 32,
			Clips:       []gremlin.ClipSpec{{Name: "idle", Frames: []int{0, 1}, Loop: true}},
		})
	if err != nil {
		t.Fatalf("NewSpriteSheet: %v", err)
	}
	def, err := gremlin.NewDefinition(gremlin.DefinitionSpec{
		Name:   "pet",
		States: gremlin.StateBindings{Idle: "idle"},
	}, sheet)
	if err != nil {
		t.Fatalf("NewDefinition: %v", err)
	}

	world := donburi.NewWorld()
	sink := NewDonburiSink(world)
	scene := gremlin.NewScene(gremlin.Rect{Width: 800, Height: 600})
	scene.SetEventSink(sink)

	id, err := scene.Spawn(def, gremlin.Vec2{X: 10, Y: 10})
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	if _, ok := sink.Entity(id); !ok {
		t.Fatal("spawn did not create an entity")
	}
	if err := scene.Despawn(id); err != nil {
		t.Fatalf("Despawn: %v", err)
	}
	if _, ok := sink.Entity(id); ok {
		t.Error("despawn did not remove the entity")
	}
}

package ecs

import (
	"github.com/phanxgames/gremlin"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// SceneEventType is the Donburi event type for gremlin scene events.
// Subscribe to this in your ECS systems to receive spawn, despawn,
// transition and input events.
var SceneEventType = events.NewEventType[gremlin.Event]()

// Gremlin mirrors one live instance in the world.
type Gremlin struct {
	ID       gremlin.ID
	State    gremlin.StateKind
	Position gremlin.Vec2
}

// GremlinComponent holds the mirrored instance data of an entity.
var GremlinComponent = donburi.NewComponentType[Gremlin]()

// DonburiSink is a gremlin.EventSink backed by a Donburi world. Every event
// is published to SceneEventType; live instances are also mirrored as
// entities carrying GremlinComponent.
type DonburiSink struct {
	world    donburi.World
	entities map[gremlin.ID]donburi.Entity
}

// NewDonburiSink creates a sink for world. Published events are consumed
// with events.Subscribe and ProcessEvents.
func NewDonburiSink(world donburi.World) *DonburiSink {
	return &DonburiSink{
		world:    world,
		entities: make(map[gremlin.ID]donburi.Entity),
	}
}

// EmitEvent implements gremlin.EventSink.
func (s *DonburiSink) EmitEvent(event gremlin.Event) {
	switch event.Type {
	case gremlin.EventSpawn:
		e := s.world.Create(GremlinComponent)
		GremlinComponent.SetValue(s.world.Entry(e), Gremlin{
			ID:       event.ID,
			State:    event.To,
			Position: event.Position,
		})
		s.entities[event.ID] = e
	case gremlin.EventDespawn:
		if e, ok := s.entities[event.ID]; ok {
			s.world.Remove(e)
			delete(s.entities, event.ID)
		}
	case gremlin.EventTransition:
		if e, ok := s.entities[event.ID]; ok && s.world.Valid(e) {
			g := GremlinComponent.Get(s.world.Entry(e))
			g.State = event.To
			g.Position = event.Position
		}
	}
	SceneEventType.Publish(s.world, event)
}

// Entity returns the entity mirroring instance id.
func (s *DonburiSink) Entity(id gremlin.ID) (donburi.Entity, bool) {
	e, ok := s.entities[id]
	return e, ok
}

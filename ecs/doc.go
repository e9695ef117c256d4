// Package ecs bridges gremlin scenes into a Donburi ECS world.
//
// [NewDonburiSink] implements gremlin.EventSink. It publishes every scene
// event (spawn, despawn, transition, input) as a typed Donburi event and
// keeps one entity per live instance carrying [GremlinComponent]. Subscribe
// to [SceneEventType] in your ECS systems to receive the events.
//
// Usage:
//
//	sink := ecs.NewDonburiSink(world)
//	scene.SetEventSink(sink)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs

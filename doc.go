// Package gremlin is the behavior and render core of a desktop pet: animated
// sprites that live on top of every other window, wander around when left
// alone and react to clicks and drags.
//
// The core owns no window. A [Platform] supplies frame ticks, pointer events
// and the cursor position, and a [Renderer] presents the [DrawList] each tick
// produces. The ebitenplatform sub-package implements both on [Ebitengine].
//
// # Quick start
//
//	def, err := gremlin.LoadDefinition("packs/mambo/config.txt")
//	if err != nil {
//		log.Fatal(err)
//	}
//	scene := gremlin.NewScene(gremlin.Rect{Width: 1920, Height: 1040})
//	scene.Spawn(def, gremlin.Vec2{X: 200, Y: 800})
//
//	driver := gremlin.NewDriver(scene, platform, renderer)
//	driver.Run(ctx)
//
// Tests and tools can skip the driver and call [Scene.Tick] directly:
//
//	list := scene.Tick(16*time.Millisecond, events)
//
// # Definitions
//
// A [Definition] binds the clips of a [SpriteSheet] to behavior states and
// click reactions, with movement and timing tunables. [LoadDefinition] reads
// YAML files and legacy config.txt packs (one sheet image per clip, ten
// columns, frames counted row-major from zero).
//
// # Behavior
//
// Every instance is in exactly one [BehaviorState]: [Idle], [Walking],
// [Dragging], [Reacting] or [Falling]. Transitions follow a fixed table
// ([CanTransition]); a request along any other edge is reported as a
// [TransitionError] and removes the instance, while the rest of the scene
// keeps running.
//
// # Input
//
// The [Router] turns raw pointer events into semantic ones: press, drag,
// release, single, double and right click, hover enter and leave. Only one
// instance can be dragged at a time; the dragged instance is raised to the
// top.
//
// # Hot reload
//
// [DefinitionWatcher] reports changed definition files and images; a
// [Library] reloads them and swaps the new definitions into running
// instances with [Scene.Redefine].
//
// [Ebitengine]: https://ebitengine.org
package gremlin

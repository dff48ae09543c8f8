package ecs

// System represents a behavior that operates on entities with specific components.
// Systems may declare Query and Singleton fields; the Scheduler wires them on Register.
// Any other fields are plain state that persists between frames.
type System interface {
	Execute(frame *UpdateFrame)
}

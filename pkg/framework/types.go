// Package framework provides the control loop shared by the courier
// programs: sensors, controllers and actuators run in priority order on
// every tick, and background Runnables feed them with messages.
package framework

import (
	"context"
	"time"
)

// Named is an abstraction for things with a name.
type Named interface {
	Name() string
}

// Runnable defines a generic interface for background runners.
type Runnable interface {
	Run(context.Context) error
}

// RunnableFunc is the func form of Runnable.
type RunnableFunc func(context.Context) error

// Run implements Runnable.
func (f RunnableFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// Message is anything posted to the loop. NewMessage creates an empty
// value of the same type, used by decoders.
type Message interface {
	NewMessage() Message
}

// Controller is invoked once per iteration at its priority level.
type Controller interface {
	Control(ControlContext) error
}

// ControlFunc defines the func form of Controller.
type ControlFunc func(ControlContext) error

// Control implements Controller.
func (f ControlFunc) Control(cc ControlContext) error {
	return f(cc)
}

// TimeSource provides the time for controlling logic.
type TimeSource interface {
	Time() time.Time
}

// ControlContext is the view of a single iteration.
type ControlContext interface {
	TimeSource
	Context() context.Context
	PriorityLevel() int
	// Messages are the ones collected when the iteration started plus
	// those left by controllers at higher priority levels.
	Messages() MessageStore

	LoopControl
}

// PriorityLevels is the total levels of priorities, 0 runs first.
const PriorityLevels int = 16

// Predefined priority levels.
const (
	PrLvTop    int = 0
	PrLvHigh   int = 4
	PrLvNormal int = 8
	PrLvLow    int = 12
	PrLvIdle   int = PriorityLevels - 1

	// PrLvSense is where sensors are read.
	PrLvSense = PrLvHigh
	// PrLvControl is where decisions are made.
	PrLvControl = PrLvNormal
	// PrLvActuate is where decisions are applied to actuators.
	PrLvActuate = PrLvLow
	// PrLvPostProc is for reporting after everything else.
	PrLvPostProc = PrLvIdle - 1
)

// LoopControl is available to Runnables through LoopCtlFrom and to
// controllers through ControlContext.
type LoopControl interface {
	// PostMessage enqueues the message for the next iteration.
	PostMessage(Message)
	// TriggerNext starts the next iteration without waiting for the tick.
	TriggerNext()
}

// MessageStore holds the pending messages of an iteration.
type MessageStore interface {
	ProcessMessages(MessageProcessor)
	Len() int
}

// MessageProcessor is used by MessageStore to process messages.
type MessageProcessor interface {
	ProcessMessage(MessageProcessingContext)
}

// ProcessMessageFunc is the func form of MessageProcessor.
type ProcessMessageFunc func(MessageProcessingContext)

// ProcessMessage implements MessageProcessor.
func (f ProcessMessageFunc) ProcessMessage(mc MessageProcessingContext) {
	f(mc)
}

// MessageProcessingContext wraps the message being processed.
type MessageProcessingContext interface {
	CurrentMessage() Message
	// MessageTaken removes the message from the store. Messages not taken
	// are visible to controllers at lower priority levels and dropped at
	// the end of the iteration.
	MessageTaken()
}

package framework

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/golang/glog"
)

// DefaultLoopInterval is the tick when Loop.Interval is not set.
const DefaultLoopInterval = 100 * time.Millisecond

// Loop runs controllers by priority level on every tick, or earlier when
// triggered. Run stops when any of the Runnables fails.
type Loop struct {
	Interval time.Duration

	levels  [PriorityLevels][]Controller
	runners []Runnable

	lock    sync.Mutex
	pending []Message
	wakeUp  chan struct{}
}

// LoopAdder provides specific logic to add components to loop.
type LoopAdder interface {
	AddToLoop(*Loop)
}

type loopCtxKeyType struct{}

var loopCtxKey loopCtxKeyType

// LoopCtlFrom gets the LoopControl from the context passed to Runnables
// and controllers.
func LoopCtlFrom(ctx context.Context) LoopControl {
	return ctx.Value(loopCtxKey).(LoopControl)
}

// NewLoop creates a Loop.
func NewLoop() *Loop {
	return &Loop{Interval: DefaultLoopInterval, wakeUp: make(chan struct{}, 1)}
}

// Add adds LoopAdders.
func (l *Loop) Add(adders ...LoopAdder) *Loop {
	for _, adder := range adders {
		adder.AddToLoop(l)
	}
	return l
}

// AddController registers controllers at the priority level. Controllers
// also implementing Runnable are run in background.
func (l *Loop) AddController(priorityLevel int, ctls ...Controller) *Loop {
	l.levels[priorityLevel] = append(l.levels[priorityLevel], ctls...)
	for _, ctl := range ctls {
		if runner, ok := ctl.(Runnable); ok {
			l.runners = append(l.runners, runner)
		}
	}
	return l
}

// AddRunnable adds background Runnables.
func (l *Loop) AddRunnable(runnables ...Runnable) *Loop {
	l.runners = append(l.runners, runnables...)
	return l
}

// Run implements Runnable.
func (l *Loop) Run(ctx context.Context) error {
	if l.wakeUp == nil {
		l.wakeUp = make(chan struct{}, 1)
	}
	interval := l.Interval
	if interval <= 0 {
		interval = DefaultLoopInterval
	}

	runner := NewRunnerWith(context.WithValue(ctx, loopCtxKey, LoopControl(l))).StopOnError()
	runner.Go(l.runners...)
	defer runner.Wait()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-runner.Failed():
			return runner.Err()
		case <-ticker.C:
		case <-l.wakeUp:
		}
		l.iterate(ctx, time.Now())
	}
}

// RunOrFail is intended to be used in main to simply run the loop.
func (l *Loop) RunOrFail() {
	if err := l.Run(context.Background()); err != nil {
		log.Fatalln(err)
	}
}

// PostMessage implements LoopControl.
func (l *Loop) PostMessage(msg Message) {
	l.lock.Lock()
	l.pending = append(l.pending, msg)
	l.lock.Unlock()
}

// TriggerNext implements LoopControl.
func (l *Loop) TriggerNext() {
	select {
	case l.wakeUp <- struct{}{}:
	default:
	}
}

func (l *Loop) iterate(ctx context.Context, now time.Time) {
	l.lock.Lock()
	msgs := l.pending
	l.pending = nil
	l.lock.Unlock()

	it := &iteration{Loop: l, time: now, msgs: msgs}
	it.ctx = context.WithValue(ctx, loopCtxKey, LoopControl(l))
	for level, ctls := range l.levels {
		it.level = level
		for _, ctl := range ctls {
			if err := ctl.Control(it); err != nil {
				if named, ok := ctl.(Named); ok {
					glog.Errorf("controller %s: %v", named.Name(), err)
				} else {
					glog.Errorf("controller at level %d: %v", level, err)
				}
			}
		}
	}
}

// iteration implements ControlContext and MessageStore.
type iteration struct {
	*Loop
	ctx   context.Context
	time  time.Time
	level int
	msgs  []Message
}

func (it *iteration) Context() context.Context { return it.ctx }
func (it *iteration) Time() time.Time          { return it.time }
func (it *iteration) PriorityLevel() int       { return it.level }
func (it *iteration) Messages() MessageStore   { return it }
func (it *iteration) Len() int                 { return len(it.msgs) }

type messageCursor struct {
	msg   Message
	taken bool
}

func (c *messageCursor) CurrentMessage() Message { return c.msg }
func (c *messageCursor) MessageTaken()           { c.taken = true }

// ProcessMessages implements MessageStore. The processor may post new
// messages, they are delivered in the next iteration.
func (it *iteration) ProcessMessages(proc MessageProcessor) {
	remains := it.msgs[:0]
	for _, msg := range it.msgs {
		cur := &messageCursor{msg: msg}
		proc.ProcessMessage(cur)
		if !cur.taken {
			remains = append(remains, msg)
		}
	}
	for i := len(remains); i < len(it.msgs); i++ {
		it.msgs[i] = nil
	}
	it.msgs = remains
}

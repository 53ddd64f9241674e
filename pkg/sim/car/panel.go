package car

import (
	"sync"

	"github.com/golang/glog"
)

// Panel simulates the LCD and the buzzer. It implements courier.Display
// and courier.Buzzer.
type Panel struct {
	lock   sync.Mutex
	text   string
	buzzer bool
}

// Clear implements courier.Display.
func (p *Panel) Clear() {
	p.lock.Lock()
	p.text = ""
	p.lock.Unlock()
}

// Print implements courier.Display.
func (p *Panel) Print(s string) {
	p.lock.Lock()
	p.text += s
	text := p.text
	p.lock.Unlock()
	glog.Infof("LCD: %s", text)
}

// SetBuzzer implements courier.Buzzer.
func (p *Panel) SetBuzzer(on bool) {
	p.lock.Lock()
	p.buzzer = on
	p.lock.Unlock()
	glog.Infof("buzzer on=%v", on)
}

// Text returns the text on the LCD.
func (p *Panel) Text() string {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.text
}

// Buzzing indicates the buzzer is on.
func (p *Panel) Buzzing() bool {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.buzzer
}

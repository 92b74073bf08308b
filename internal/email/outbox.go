package email

import (
	"context"
	"sync"
)

// Outbox is a Sender that keeps messages in memory instead of delivering
// them. It backs development mode and tests.
type Outbox struct {
	mu       sync.Mutex
	messages []Message
	// Fail, when set, is returned for recipients it reports true for.
	Fail func(to []string) error
}

func NewOutbox() *Outbox {
	return &Outbox{}
}

func (o *Outbox) Send(ctx context.Context, msg *Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.Fail != nil {
		if err := o.Fail(msg.To); err != nil {
			return err
		}
	}
	cp := *msg
	cp.To = append([]string(nil), msg.To...)
	o.messages = append(o.messages, cp)
	return nil
}

// Messages returns a copy of everything sent so far.
func (o *Outbox) Messages() []Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]Message(nil), o.messages...)
}

func (o *Outbox) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.messages)
}

func (o *Outbox) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.messages = nil
}

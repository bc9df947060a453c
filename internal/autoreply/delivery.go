package autoreply

import "context"

// Delivery is the handle of one fire-and-forget send. The result is only
// meaningful after Done is closed.
type Delivery struct {
	Reply OutboundReply

	done chan struct{}
	err  error
}

func newDelivery(reply OutboundReply) *Delivery {
	return &Delivery{Reply: reply, done: make(chan struct{})}
}

func (d *Delivery) finish(err error) {
	d.err = err
	close(d.done)
}

// Done is closed once the send has finished, successfully or not.
func (d *Delivery) Done() <-chan struct{} {
	return d.done
}

// Err returns the send error. It returns nil while the send is in flight.
func (d *Delivery) Err() error {
	select {
	case <-d.done:
		return d.err
	default:
		return nil
	}
}

// Wait blocks until the send finishes or ctx is done.
func (d *Delivery) Wait(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case <-d.done:
		return d.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

package broker

import "sync"

// Serial passes payloads from any number of producer goroutines to a single consumer function. The consumer
// runs on the goroutine that called Start, one payload at a time, in the order the payloads were published.
//
// This kind of broker is useful when many concurrent requests complete independently but their results must be
// applied by exactly one logical consumer, e.g. a display that is not safe for concurrent use.
type Serial[TPayload any] struct {
	consumer       func(TPayload)
	stopChannel    chan struct{}
	publishChannel chan TPayload
	stopOnce       sync.Once
}

// NewSerial creates a new Serial broker delivering to consumer. Use Start() to run the delivery loop and
// Stop() to end it.
func NewSerial[TPayload any](consumer func(TPayload)) *Serial[TPayload] {
	return &Serial[TPayload]{
		consumer:       consumer,
		stopChannel:    make(chan struct{}),
		publishChannel: make(chan TPayload),
	}
}

// Start delivering published payloads. This function blocks until Stop() is called, so it should be called in a
// goroutine. It does not handle panics raised by the consumer.
func (b *Serial[TPayload]) Start() {
	for {
		select {
		case <-b.stopChannel:
			return

		case payload := <-b.publishChannel:
			b.consumer(payload)
		}
	}
}

// Stop the delivery loop. Stop is safe to call more than once.
func (b *Serial[TPayload]) Stop() {
	b.stopOnce.Do(func() {
		close(b.stopChannel)
	})
}

// Publish hands payload to the consumer. It blocks until the delivery loop accepts the payload and returns
// false without delivering if the broker is stopped first.
func (b *Serial[TPayload]) Publish(payload TPayload) bool {
	select {
	case b.publishChannel <- payload:
		return true
	case <-b.stopChannel:
		return false
	}
}

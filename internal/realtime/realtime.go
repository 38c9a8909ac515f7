// Package realtime fans out notifications to subscribers of a topic. The
// in-process broker serves a single instance; the Redis broker lets several
// instances share the same topics.
package realtime

import (
	"context"
	"errors"
	"fmt"
)

var ErrClosed = errors.New("broker closed")

// Broker publishes payloads to every current subscriber of a topic.
// Delivery is at most once; subscribers that fall behind lose messages.
type Broker interface {
	Publish(ctx context.Context, topic string, payload []byte) error
	Subscribe(ctx context.Context, topic string) (Subscription, error)
}

// Subscription is a live feed. C is closed after Close or when the
// subscribing context ends.
type Subscription interface {
	C() <-chan []byte
	Close() error
}

const subscriberBuffer = 32

// PropertyTopic names the chat topic of a property.
func PropertyTopic(propertyID uint) string {
	return fmt.Sprintf("rems:messages:property:%d", propertyID)
}

package routing

import (
	"fmt"
	"strings"

	errspkg "github.com/drblury/routeflow/internal/runtime/errors"
	"github.com/drblury/routeflow/internal/runtime/jsoncodec"
)

// MissingTopicNameError is returned when a tag has no topic name and the
// processor cannot fall back to a TopicSubscriber.
type MissingTopicNameError struct {
	ProcessorID string
	Tag         Tag
}

func (e *MissingTopicNameError) Error() string {
	return fmt.Sprintf("%s. processor: %q, tag: %s",
		errspkg.ErrMissingTopicName, e.ProcessorID, jsoncodec.Render(e.Tag))
}

func (e *MissingTopicNameError) Unwrap() error { return errspkg.ErrMissingTopicName }

// MalformedSubscriptionError is returned when a TopicSubscriber returns a
// value that is not a valid subscription declaration. Raw is the complete
// returned value, Element the part that could not be parsed.
type MalformedSubscriptionError struct {
	ProcessorID string
	Raw         any
	Element     any
}

func (e *MalformedSubscriptionError) Error() string {
	var b strings.Builder
	b.WriteString(errspkg.ErrMalformedSubscription.Error())
	b.WriteString(".")
	if e.ProcessorID != "" {
		fmt.Fprintf(&b, " processor: %q,", e.ProcessorID)
	}
	fmt.Fprintf(&b, " value: %q, element: %s", jsoncodec.Render(e.Raw), jsoncodec.Render(e.Element))
	return b.String()
}

func (e *MalformedSubscriptionError) Unwrap() error { return errspkg.ErrMalformedSubscription }

// NoRoutesError is returned by strict builds for a processor that resolves to
// zero routes.
type NoRoutesError struct {
	ProcessorID string
}

func (e *NoRoutesError) Error() string {
	return fmt.Sprintf("%s. processor: %q", errspkg.ErrNoRoutes, e.ProcessorID)
}

func (e *NoRoutesError) Unwrap() error { return errspkg.ErrNoRoutes }

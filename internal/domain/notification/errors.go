package notification

import "errors"

const Resource = "notification"

var ErrQueueFull = errors.New("notification queue is full")

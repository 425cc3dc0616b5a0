package pubsub

import "cloud.google.com/go/pubsub"

type client struct {
	client   *pubsub.Client
	teardown func()
}

// Topics used by the scheduling flows.
const (
	TopicGoldenWindow = "golden-window"
	TopicCallSync     = "call-sync"
)

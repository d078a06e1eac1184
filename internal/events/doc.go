// Feedrank - Personalized News Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

/*
Package events carries interaction events from the web layer into the
interaction log over a Watermill message bus.

Flow:

	web layer -> Sink.Publish -> topic -> Router -> Consumer.Handle -> interactions table

The Sink validates an InteractionEvent, assigns an event ID when the caller
did not supply one and publishes it as JSON. The Consumer turns each message
back into a models.Interaction whose ID is the event ID. Because the insert
ignores an existing ID, a message redelivered after a crash is stored once.

Transports:

  - gochannel (default): in-process pub/sub, no durability. Events published
    while the router is not subscribed are dropped.
  - nats: NATS JetStream through watermill-nats, optionally against an
    embedded server. Requires building with -tags nats; without the tag
    NewTransport returns ErrNATSNotEnabled.

Error handling:

Events that fail validation are acknowledged and counted as invalid, since
retrying cannot fix them. Storage errors are returned to the router, whose
Retry middleware redelivers with exponential backoff. The Recoverer
middleware turns handler panics into errors.
*/
package events

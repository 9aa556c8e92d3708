// Package sse implements topic-based event fan-out over Server-Sent Events.
//
// A Hub maps each topic to its set of live subscribers. Broadcasting to a
// topic delivers to every current subscriber; a subscriber whose delivery
// fails is pruned without affecting the others, and topics with no remaining
// subscribers are dropped to bound memory. Subscribers connecting after an
// event was published do not receive it retroactively.
package sse

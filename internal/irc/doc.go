// Package irc is a small IRC client driven by a Descriptor.
//
// The client owns the socket and the send rate limiter; everything the bot
// does with the connection (registration, SASL, PING replies) lives in the
// Descriptor's callback table and connect hook.
package irc

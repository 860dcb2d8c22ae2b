// Package voice defines the boundary to platform speech recognition.
//
// The recognizer is an external capability that asynchronously yields
// transcribed text or an error. This package models it as a Bridge with a
// start/stop control and a stream of tagged events (start, end, partial
// transcript, final transcript, error) consumed by a single subscriber,
// the conversation engine. Bridge errors are never surfaced as
// conversation content; they only clear the recording indicator.
package voice

// Package responder is the client for the remote inference endpoint.
//
// The wire contract is a single JSON POST:
//
//	request:  {"message": "<user utterance>"}
//	response: {"reply": "<assistant reply>"}
//
// A response without a reply field is a failure (ErrNoReply), not a
// protocol error. The client performs no retries and no streaming; it is
// the conversation engine's job to substitute a fallback reply when a call
// fails.
package responder

// Package session defines the session identity boundary for vial-chat.
//
// The credential system is an external collaborator: this package only
// models what the conversation engine consumes from it: the current
// authenticated user and a change-notification stream.
//
// Provider implementations:
//
//   - StaticProvider: fixed identity for the CLI and tests, with Emit to
//     drive sign-in/sign-out transitions
//   - FromIDToken: builds a User from the credential system's ID token
//     (claims only; verification belongs to the issuer)
//
// The engine subscribes via Watch(ctx) and tears the subscription down by
// cancelling the context.
package session

// Package msgs provides L1 protocol support and the generic message schemas.
//
// L1 messages flow between a vehicle (the L1 controller) and remote
// operators or monitors. Every message is wrapped in a Typed envelope
// carrying its type ID, and for commands the sequence matching a reply to
// its request. Vehicle specific schemas register their type IDs in
// the message types from their own packages with Register.
package msgs

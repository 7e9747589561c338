// Package can models a shared broadcast bus carrying small addressed frames.
package can

// A bus is deliberately minimal: a frame is fire-and-forget, a receive is a
// non-blocking poll returning at most one pending frame. There is no
// acknowledgment, ordering across senders or retry. Each transport owns a
// bounded receive queue and drops frames that arrive while it is full.
//
// Transports live in sub-packages and register a URL scheme with Register
// so commands can select one with a single flag.

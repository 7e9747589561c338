// Package protocol encodes game values into bus frames and back.
package protocol

// Channel identifiers are derived from a peer's group number:
//
//	group + 20   paddle position of that group's local paddle (2 bytes)
//	group + 50   ball state broadcast by a master (4 bytes, or 6 with the
//	             master's own paddle appended)
//	100          role announcement "I am master" (1 byte, value 1)
//	101          role announcement "I am not master" (1 byte, value 0)
//
// All coordinates are 16-bit little-endian two's complement integers.
// Frames on identifiers that don't belong to the opponent are not errors:
// the bus is shared with unrelated traffic and they are simply ignored.

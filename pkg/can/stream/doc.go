// Package stream carries CAN frames over byte streams such as serial
// lines, TCP connections and websockets.
//
// Every frame is sent as one record:
//
//	0xA5 | len | id lo | id hi | data[len] | checksum
//
// The checksum is the complement of the byte sum from len to the last
// data byte. A receiver joining mid-stream, or seeing a corrupted record,
// drops bytes until the next sync byte and a valid record follow.
// There is no acknowledgment or retransmission, a lost record is lost.
package stream

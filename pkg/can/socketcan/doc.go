// Package socketcan opens real CAN interfaces through Linux SocketCAN raw
// sockets, e.g. can://can0 or can://vcan0 for a virtual bus.
// On other systems the package registers nothing.
package socketcan

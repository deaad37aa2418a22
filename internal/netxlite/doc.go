// Package netxlite contains the network primitives used by the probe.
//
// We wrap the standard library to obtain three properties:
//
// 1. every blocking operation (dial, read, write, accept, sleep) takes a
// context and returns as soon as the context is done;
//
// 2. every error is an *ErrWrapper carrying a failure string that tells
// apart cancellation, interruption, EOF and all the other faults;
//
// 3. dialing and resolving emit debug logs through a [model.Logger].
//
// We do not impose timeouts anywhere. The probe must observe the real
// behavior of peers and middleboxes, so we block until the peer or the
// network reacts or until the context is canceled.
package netxlite

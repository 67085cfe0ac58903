// Package pairing manages the link between this terminal and its
// peripherals (receipt printer, card reader).
//
// Each device class gets its own Machine: idle until a discovery scan
// starts, connecting while a handshake runs, connected once a pairing
// is persisted. Concurrent discovery requests for the same class join
// the in-flight scan rather than starting a second one, and only one
// connection attempt runs at a time. Failures surface to the caller
// and the machine settles back to its resting state; nothing retries
// automatically.
//
// Pairings persist in SQLite keyed by (device, class) and are restored
// at startup, so a paired terminal survives restarts without talking
// to the backend.
package pairing

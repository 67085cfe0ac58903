// Package auth verifies bearer tokens on the local control API.
//
// Tokens are issued by the POS backend and signed with an HS256 secret
// shared with this terminal. Verification is signature-and-expiry only;
// there is no local user store or session state. Two roles exist:
// manager (may change printer and zone configuration) and operator
// (may dispatch orders and read configuration).
package auth

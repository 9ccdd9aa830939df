package imap

// Constants

// Integer counter for IMAP session states.
const (
	StateNotAuthenticated State = iota
	StateAuthenticated
	StateLogout
)

// Structs

// State represents the integer value associated with one
// of the implemented IMAP states a connection can be in.
type State int

// Session tracks the authentication and folder selection
// progress of one client connection. It is owned exclusively
// by the goroutine handling that connection and never shared.
type Session struct {
	State           State
	SelectedMailbox string
}

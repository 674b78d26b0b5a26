package chat

import "fmt"

// ErrorKind classifies a failed core operation.
type ErrorKind string

const (
	// KindStore covers persistence failures (connectivity, constraints).
	KindStore ErrorKind = "store"
	// KindProvider covers conversation-provider failures (timeout, auth,
	// malformed response). These never escape SubmitPrompt; the kind exists
	// for callers of the thread-creation path.
	KindProvider ErrorKind = "provider"
	// KindNotFound reports an operation against a session id the manager
	// does not hold. Dangling current pointers are repaired instead.
	KindNotFound ErrorKind = "not_found"
)

// Error is the result type for failed manager operations. The manager never
// panics and never lets a failure destroy in-memory state; callers surface
// Detail to the user and continue.
type Error struct {
	Kind   ErrorKind
	Detail string
	cause  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *Error) Unwrap() error {
	return e.cause
}

func storeError(op string, cause error) *Error {
	return &Error{Kind: KindStore, Detail: op + ": " + cause.Error(), cause: cause}
}

func providerError(cause error) *Error {
	return &Error{Kind: KindProvider, Detail: cause.Error(), cause: cause}
}

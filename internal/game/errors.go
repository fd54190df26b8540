package game

// Class groups command errors into the categories callers branch on.
type Class int

const (
	ClassNotFound Class = iota
	ClassPreconditionFailed
	ClassResourceExhausted
	ClassMalformedInput
)

// CommandError is a rejected command. Code is stable and machine-readable;
// rejections are terminal and never leave a session partially mutated.
type CommandError struct {
	Code    string
	Class   Class
	Message string
}

func (e *CommandError) Error() string {
	return e.Code + ": " + e.Message
}

var (
	ErrSessionNotFound = &CommandError{Code: "SESSION_NOT_FOUND", Class: ClassNotFound, Message: "session not found"}
	ErrColorTaken      = &CommandError{Code: "COLOR_TAKEN", Class: ClassPreconditionFailed, Message: "color already assigned"}
	ErrNotYourTurn     = &CommandError{Code: "NOT_YOUR_TURN", Class: ClassPreconditionFailed, Message: "it is not your turn"}
	ErrInvalidPiece    = &CommandError{Code: "INVALID_PIECE", Class: ClassPreconditionFailed, Message: "no valid piece at source position"}
	ErrInvalidMove     = &CommandError{Code: "INVALID_MOVE", Class: ClassPreconditionFailed, Message: "destination is out of bounds"}
	ErrDeckEmpty       = &CommandError{Code: "DECK_EMPTY", Class: ClassResourceExhausted, Message: "no cards remain in the deck"}
	ErrInvalidColor    = &CommandError{Code: "INVALID_COLOR", Class: ClassMalformedInput, Message: "color must be white or black"}
	ErrInvalidPayload  = &CommandError{Code: "INVALID_PAYLOAD", Class: ClassMalformedInput, Message: "malformed message payload"}
)

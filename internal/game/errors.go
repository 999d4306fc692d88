package game

import "errors"

// Rule violations. All of them are recoverable: a rejected decision leaves the match
// untouched and the seat is asked again.
var (
	ErrInvalidPlacement       = errors.New("invalid placement")
	ErrCardNotInHand          = errors.New("card not in hand")
	ErrNotYourTurn            = errors.New("not your turn")
	ErrInsufficientCards      = errors.New("insufficient cards")
	ErrInvalidDeckComposition = errors.New("invalid deck composition")
	ErrRoundAlreadyOver       = errors.New("round already over")
	ErrGameOver               = errors.New("game over")
	ErrUnknownCard            = errors.New("unknown card")
	errUnsupportedActionType  = errors.New("unsupported action type")
)

// IsRejection reports whether err is a rule violation that should be reported back to the
// seat rather than abort the match.
func IsRejection(err error) bool {
	return errors.Is(err, ErrInvalidPlacement) ||
		errors.Is(err, ErrCardNotInHand) ||
		errors.Is(err, ErrNotYourTurn) ||
		errors.Is(err, ErrRoundAlreadyOver) ||
		errors.Is(err, errUnsupportedActionType)
}

package error

import (
	"errors"
	"fmt"
)

const (
	ConstErrCreateGameFailed = "failed to create game"
	ConstErrHotShotFailed    = "hot shot operation failed"
	ConstErrAutoPlayFailed   = "auto play stopped before the game was over"
	ConstErrInvalidPayload   = "invalid payload"
	ConstErrStatsUnavailable = "server stats are unavailable"
)

var (
	ErrInvalidConfiguration = errors.New("invalid game configuration")
	ErrPlacement            = errors.New("ship placement failed")
)

func ErrGameNotExists(gameUuid string) error {
	return fmt.Errorf("game with this uuid does not exist, uuid: %s", gameUuid)
}

func ErrGameIsNil(gameUuid string) error {
	return fmt.Errorf("game with this uuid is nil, uuid: %s", gameUuid)
}

func ErrGameIsOver(gameUuid string) error {
	return fmt.Errorf("game is already over, uuid: %s", gameUuid)
}

func ErrSessionNotFound(sessionId string) error {
	return fmt.Errorf("session with this id does not exist, id: %s", sessionId)
}

func ErrSessionIsNil(sessionId string) error {
	return fmt.Errorf("session with this id is nil, id: %s", sessionId)
}

func ErrNoGameInSession(sessionId string) error {
	return fmt.Errorf("no game is attached to this session, id: %s", sessionId)
}

func ErrGridSizeInvalid(size int) error {
	return fmt.Errorf("%w: grid size must be positive\tsize: %d", ErrInvalidConfiguration, size)
}

func ErrShipsEmpty() error {
	return fmt.Errorf("%w: at least one ship is required", ErrInvalidConfiguration)
}

func ErrShipLengthInvalid(length int) error {
	return fmt.Errorf("%w: ship length must be positive\tlength: %d", ErrInvalidConfiguration, length)
}

func ErrShipTooLong(length, size int) error {
	return fmt.Errorf("%w: ship does not fit in grid\tlength: %d\tsize: %d", ErrInvalidConfiguration, length, size)
}

func ErrGridSizeTooLarge(size, maxSize int) error {
	return fmt.Errorf("%w: grid size exceeds the server limit\tsize: %d\tmax: %d", ErrInvalidConfiguration, size, maxSize)
}

func ErrTurnCapTooLarge(turnCap, maxTurns int) error {
	return fmt.Errorf("%w: turn cap exceeds the server limit\tturn cap: %d\tmax: %d", ErrInvalidConfiguration, turnCap, maxTurns)
}

func ErrTurnCapInvalid(turnCap int) error {
	return fmt.Errorf("%w: turn cap must be positive\tturn cap: %d", ErrInvalidConfiguration, turnCap)
}

func ErrPlacementAttemptsInvalid(attempts int) error {
	return fmt.Errorf("%w: placement attempts must be positive\tattempts: %d", ErrInvalidConfiguration, attempts)
}

func ErrShipPlacementFailed(length, attempts int) error {
	return fmt.Errorf("%w: could not place ship after %d attempts\tlength: %d", ErrPlacement, attempts, length)
}

func ErrXorYOutOfGridBound(x, y int) error {
	return fmt.Errorf("incoming x or y is out of game grid bound\tx: %d\ty: %d", x, y)
}

func ErrPositionAlreadyOccupied(x, y int) error {
	return fmt.Errorf("%w: current position in grid already taken\tx: %d\ty: %d", ErrPlacement, x, y)
}

func ErrShipCellsMismatch(length, cells int) error {
	return fmt.Errorf("%w: number of cells does not match the ship length\tlength: %d\tcells: %d", ErrPlacement, length, cells)
}

func ErrAllShipsPlaced() error {
	return fmt.Errorf("%w: every configured ship is already placed", ErrPlacement)
}

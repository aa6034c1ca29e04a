package connection

const (
	CodeSessionID uint8 = iota
	CodeReceivedInvalidSessionID
	CodeCreateGame
	CodeHotShot
	CodeAutoPlay
	CodeEndGame
	CodeInvalidSignal

	// if the req msg does not contain "code" field
	CodeSignalAbsent

	CodeServerStats
)

type Signal struct {
	Code uint8 `json:"code"`
}

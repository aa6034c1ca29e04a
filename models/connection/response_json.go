package connection

import (
	"github.com/saeidalz13/battleship-heatmap/models/ai"
	mb "github.com/saeidalz13/battleship-heatmap/models/battleship"
	"github.com/saeidalz13/battleship-heatmap/models/game"
)

type RespSessionId struct {
	SessionID string `json:"session_id"`
}

type RespCreateGame struct {
	GameUuid   string        `json:"game_uuid"`
	GridSize   int           `json:"grid_size"`
	Ships      []int         `json:"ships"`
	HeatMatrix ai.HeatMatrix `json:"heat_matrix"`
}

type RespHotShot struct {
	X            int              `json:"x"`
	Y            int              `json:"y"`
	Turn         int              `json:"turn"`
	ShotResult   uint8            `json:"shot_result"`
	Mode         string           `json:"mode"`
	HeatMatrix   ai.HeatMatrix    `json:"heat_matrix"`
	SunkenCoords []mb.Coordinates `json:"sunken_coords"`
}

func NewRespHotShot(snap ai.Snapshot) RespHotShot {
	return RespHotShot{
		X:            snap.Shot.X,
		Y:            snap.Shot.Y,
		Turn:         snap.Turn,
		ShotResult:   uint8(snap.Result),
		Mode:         snap.Mode.String(),
		HeatMatrix:   snap.Heat,
		SunkenCoords: snap.Sunken,
	}
}

type RespEndGame struct {
	GameUuid string      `json:"game_uuid"`
	Result   game.Result `json:"result"`
}

type RespServerStats struct {
	GamesCreated int64 `json:"games_created"`
	GamesWon     int64 `json:"games_won"`
}

type RespErr struct {
	ErrorDetails string `json:"error_details,omitempty"`
	Message      string `json:"message,omitempty"`
}

func NewRespErr(errorDetails, message string) *RespErr {
	return &RespErr{
		ErrorDetails: errorDetails,
		Message:      message,
	}
}

package connection

// Zero values fall back to the server defaults.
type ReqCreateGame struct {
	GridSize int   `json:"grid_size,omitempty"`
	Ships    []int `json:"ships,omitempty"`
	TurnCap  int   `json:"turn_cap,omitempty"`
	Seed     int64 `json:"seed,omitempty"`
}

// Used by both hot shot and auto play requests.
type ReqGameAction struct {
	GameUuid string `json:"game_uuid"`
}

package protocol

// HELLO (client -> server): first message of a rendering session.
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ObserverName    string `json:"observer_name"`
}

// WELCOME (server -> client).
type WelcomeMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	ObserverID      string      `json:"observer_id"`
	WorldParams     WorldParams `json:"world_params"`
}

type WorldParams struct {
	TickRateHz int     `json:"tick_rate_hz"`
	SquareSize float64 `json:"square_size"`
	Detail     int     `json:"detail"`
	Roughness  float64 `json:"roughness"`
	Seed       int64   `json:"seed"`
}

// POS (client -> server): observer world position, sent every tick by the
// camera/aircraft side. Pos is [x, y, z]; terrain expansion uses x and y.
type PosMsg struct {
	Type            string     `json:"type"`
	ProtocolVersion string     `json:"protocol_version"`
	Pos             [3]float64 `json:"pos"`
}

// CHUNK (server -> client): one newly generated heightfield. Heights is
// row-major with length n*n; the client owns mesh construction.
type ChunkMsg struct {
	Type            string    `json:"type"`
	ProtocolVersion string    `json:"protocol_version"`
	Tick            uint64    `json:"tick"`
	CX              int       `json:"cx"`
	CY              int       `json:"cy"`
	N               int       `json:"n"`
	Heights         []float64 `json:"heights"`
	Tint            float64   `json:"tint"`
}

// ERROR (server -> client).
type ErrorMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Code            string `json:"code"`
	Message         string `json:"message,omitempty"`
}

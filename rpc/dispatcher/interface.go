package dispatcher

import (
	"github.com/hoxchess/hoxnet/rpc/codec"
)

// --------------------------------------------------------------------------
// Domain objects (implemented by the application)
// --------------------------------------------------------------------------

// Lookup finds domain objects by identifier
type Lookup interface {
	// FindTable returns the table with the given id
	FindTable(id string) (Table, bool)
	// FindPlayer returns the player with the given id
	FindPlayer(id string) (Player, bool)
}

// Player is a player known to the application
type Player interface {
	ID() string
	SetScore(score int)
}

// Table is a game table the local player takes part in
type Table interface {
	ID() string

	OnMove(player Player, move string)
	OnMessage(playerID string, message string)
	OnLeave(player Player)
	OnUpdate(player Player, rated bool, time codec.TimeSpec)
	OnDrawRequest(player Player)
	OnResign(player Player)
	OnReset()
	OnGameOver(status codec.GameStatus, reason string)
	OnScore(player Player)
	OnPastMoves(moves []string)

	// PostMessage shows a notice on the table (e.g. a failed request)
	PostMessage(text string)
}

// PlayerStats are the statistics of a player as reported by the server
type PlayerStats struct {
	ID     string
	Score  int
	Wins   int
	Draws  int
	Losses int
}

// Site receives session level events
type Site interface {
	OnLogin(playerID string, score int)
	OnLoginFailure(code string, message string)
	OnLogout(playerID string)
	OnTableList(tables []codec.TableInfo)
	OnTableJoined(info codec.TableInfo)
	OnPlayerJoined(tableID string, playerID string, score int, color codec.Color)
	OnInvite(fromPlayerID string, tableID string)
	OnPlayerInfo(stats PlayerStats)

	// LeaveAllTables leaves every table the local player is at
	LeaveAllTables()
}

// --------------------------------------------------------------------------
// Session (implemented by the connection worker)
// --------------------------------------------------------------------------

// Session is the login state of the connection
type Session interface {
	IsAuthenticated() bool
	SetAuthenticated(ok bool)
	// Disconnect closes the connection
	Disconnect()
}

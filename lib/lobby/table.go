package lobby

import (
	"sync"
	"sync/atomic"

	"github.com/hoxchess/hoxnet/rpc/codec"
	"github.com/hoxchess/hoxnet/rpc/dispatcher"
)

// --------------------------------------------------------------------------
// Player
// --------------------------------------------------------------------------

// Player is a player seen on the server
type Player struct {
	id    string
	score atomic.Int64
}

func (p *Player) ID() string { return p.id }

func (p *Player) SetScore(score int) { p.score.Store(int64(score)) }

// Score returns the last known score
func (p *Player) Score() int { return int(p.score.Load()) }

// --------------------------------------------------------------------------
// Table
// --------------------------------------------------------------------------

// Table is a table the local player has joined
type Table struct {
	id    string
	lobby *Lobby

	mu       sync.Mutex
	info     codec.TableInfo
	moves    []string
	status   codec.GameStatus
	notices  []string
	drawFrom string
}

func newTable(l *Lobby, id string) *Table {
	return &Table{
		id:     id,
		lobby:  l,
		info:   codec.TableInfo{ID: id, Rated: true},
		status: codec.GameStatusOpen,
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see dispatcher.Table)
// --------------------------------------------------------------------------

func (t *Table) ID() string { return t.id }

func (t *Table) OnMove(player dispatcher.Player, move string) {
	t.mu.Lock()
	t.moves = append(t.moves, move)
	t.status = codec.GameStatusInProgress
	t.drawFrom = ""
	n := len(t.moves)
	t.mu.Unlock()

	t.lobby.emit(t.id, "%d. %s %s", n, player.ID(), move)
}

func (t *Table) OnMessage(playerID string, message string) {
	t.lobby.emit(t.id, "<%s> %s", playerID, message)
}

func (t *Table) OnLeave(player dispatcher.Player) {
	t.mu.Lock()
	switch player.ID() {
	case t.info.RedID:
		t.info.RedID = ""
	case t.info.BlackID:
		t.info.BlackID = ""
	}
	t.mu.Unlock()

	if player.ID() == t.lobby.selfID {
		t.lobby.removeTable(t.id)
	}
	t.lobby.emit(t.id, "%s left", player.ID())
}

func (t *Table) OnUpdate(player dispatcher.Player, rated bool, time codec.TimeSpec) {
	t.mu.Lock()
	t.info.Rated = rated
	if !time.IsZero() {
		t.info.Time = time
	}
	t.mu.Unlock()

	t.lobby.emit(t.id, "%s updated the table: rated=%t time=%s", player.ID(), rated, time)
}

func (t *Table) OnDrawRequest(player dispatcher.Player) {
	t.mu.Lock()
	t.drawFrom = player.ID()
	t.mu.Unlock()
	t.lobby.emit(t.id, "%s offers a draw", player.ID())
}

func (t *Table) OnResign(player dispatcher.Player) {
	t.lobby.emit(t.id, "%s resigned", player.ID())
}

func (t *Table) OnReset() {
	t.mu.Lock()
	t.moves = nil
	t.status = codec.GameStatusReady
	t.drawFrom = ""
	t.mu.Unlock()
	t.lobby.emit(t.id, "game reset")
}

func (t *Table) OnGameOver(status codec.GameStatus, reason string) {
	t.mu.Lock()
	t.status = status
	t.mu.Unlock()

	if reason != "" {
		t.lobby.emit(t.id, "game over: %s (%s)", status, reason)
		return
	}
	t.lobby.emit(t.id, "game over: %s", status)
}

func (t *Table) OnScore(player dispatcher.Player) {
	score := 0
	if p, ok := player.(*Player); ok {
		score = p.Score()
	}

	t.mu.Lock()
	switch player.ID() {
	case t.info.RedID:
		t.info.RedScore = score
	case t.info.BlackID:
		t.info.BlackScore = score
	}
	t.mu.Unlock()

	t.lobby.emit(t.id, "%s now has %d", player.ID(), score)
}

func (t *Table) OnPastMoves(moves []string) {
	t.mu.Lock()
	t.moves = append([]string(nil), moves...)
	if len(moves) > 0 {
		t.status = codec.GameStatusInProgress
	}
	t.mu.Unlock()
	t.lobby.emit(t.id, "%d past moves", len(moves))
}

func (t *Table) PostMessage(text string) {
	t.mu.Lock()
	t.notices = append(t.notices, text)
	t.mu.Unlock()
	t.lobby.emit(t.id, "! %s", text)
}

// --------------------------------------------------------------------------
// Accessors
// --------------------------------------------------------------------------

// Info returns the current table record
func (t *Table) Info() codec.TableInfo {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.info
}

// Moves returns the moves played so far
func (t *Table) Moves() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.moves...)
}

// Status returns the game status
func (t *Table) Status() codec.GameStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Notices returns the messages posted to the table
func (t *Table) Notices() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.notices...)
}

// DrawOffer returns the player offering a draw, or ""
func (t *Table) DrawOffer() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.drawFrom
}

func (t *Table) setInfo(info codec.TableInfo) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.info = info
}

// seat places a player on the given side
func (t *Table) seat(playerID string, color codec.Color) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch color {
	case codec.ColorRed:
		t.info.RedID = playerID
	case codec.ColorBlack:
		t.info.BlackID = playerID
	}
}

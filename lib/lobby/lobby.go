package lobby

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/hoxchess/hoxnet/rpc/codec"
	"github.com/hoxchess/hoxnet/rpc/dispatcher"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
)

var Logger = logger.GetLogger("lobby")

// Lobby is an in-memory view of the match server: the tables the local player
// takes part in and every player seen so far. It implements dispatcher.Lookup
// and dispatcher.Site and prints every event to its writer.
type Lobby struct {
	selfID  string
	tables  *xsync.MapOf[string, *Table]
	players *xsync.MapOf[string, *Player]

	outMu sync.Mutex
	out   io.Writer

	listMu   sync.Mutex
	lastList []codec.TableInfo
	loginErr string
	loggedIn bool
}

// New creates a lobby for the local player selfID. Events are printed to out,
// a nil out discards them.
func New(selfID string, out io.Writer) *Lobby {
	if out == nil {
		out = io.Discard
	}
	l := &Lobby{
		selfID:  selfID,
		tables:  xsync.NewMapOf[string, *Table](),
		players: xsync.NewMapOf[string, *Player](),
		out:     out,
	}
	l.player(selfID)
	return l
}

// --------------------------------------------------------------------------
// Interface Methods (docu see dispatcher.Lookup)
// --------------------------------------------------------------------------

func (l *Lobby) FindTable(id string) (dispatcher.Table, bool) {
	t, ok := l.tables.Load(id)
	if !ok {
		return nil, false
	}
	return t, true
}

func (l *Lobby) FindPlayer(id string) (dispatcher.Player, bool) {
	p, ok := l.players.Load(id)
	if !ok {
		return nil, false
	}
	return p, true
}

// --------------------------------------------------------------------------
// Interface Methods (docu see dispatcher.Site)
// --------------------------------------------------------------------------

func (l *Lobby) OnLogin(playerID string, score int) {
	l.player(playerID).SetScore(score)
	if playerID == l.selfID {
		l.listMu.Lock()
		l.loggedIn = true
		l.loginErr = ""
		l.listMu.Unlock()
	}
	l.emit("*", "%s logged in (%d)", playerID, score)
}

func (l *Lobby) OnLoginFailure(code string, message string) {
	l.listMu.Lock()
	l.loggedIn = false
	l.loginErr = fmt.Sprintf("code %s: %s", code, message)
	l.listMu.Unlock()
	l.emit("*", "login failed with code %s: %s", code, message)
}

func (l *Lobby) OnLogout(playerID string) {
	if playerID != l.selfID {
		l.players.Delete(playerID)
	}
	l.emit("*", "%s logged out", playerID)
}

func (l *Lobby) OnTableList(tables []codec.TableInfo) {
	l.listMu.Lock()
	l.lastList = append([]codec.TableInfo(nil), tables...)
	l.listMu.Unlock()

	l.emit("*", "%d tables", len(tables))
	for _, t := range tables {
		l.emit("*", "  %s", describe(t))
	}
}

func (l *Lobby) OnTableJoined(info codec.TableInfo) {
	t, _ := l.tables.LoadOrCompute(info.ID, func() *Table {
		return newTable(l, info.ID)
	})
	t.setInfo(info)

	for _, seat := range []struct {
		id    string
		score int
	}{{info.RedID, info.RedScore}, {info.BlackID, info.BlackScore}} {
		if seat.id != "" {
			l.player(seat.id).SetScore(seat.score)
		}
	}
	l.emit(info.ID, "joined: %s", describe(info))
}

func (l *Lobby) OnPlayerJoined(tableID string, playerID string, score int, color codec.Color) {
	p := l.player(playerID)
	if score > 0 {
		p.SetScore(score)
	}
	if t, ok := l.tables.Load(tableID); ok {
		t.seat(playerID, color)
	}
	l.emit(tableID, "%s joined as %s", playerID, color)
}

func (l *Lobby) OnInvite(fromPlayerID string, tableID string) {
	l.emit("*", "%s invites you to table %s", fromPlayerID, tableID)
}

func (l *Lobby) OnPlayerInfo(stats dispatcher.PlayerStats) {
	l.player(stats.ID).SetScore(stats.Score)
	l.emit("*", "%s: score %d, %d wins, %d draws, %d losses",
		stats.ID, stats.Score, stats.Wins, stats.Draws, stats.Losses)
}

func (l *Lobby) LeaveAllTables() {
	n := 0
	l.tables.Range(func(id string, _ *Table) bool {
		l.tables.Delete(id)
		n++
		return true
	})
	Logger.Infof("Left %d tables", n)
	l.emit("*", "left all tables")
}

// --------------------------------------------------------------------------
// Accessors
// --------------------------------------------------------------------------

// Table returns the joined table with the given id
func (l *Lobby) Table(id string) (*Table, bool) {
	return l.tables.Load(id)
}

// Tables returns the ids of all joined tables, sorted
func (l *Lobby) Tables() []string {
	ids := make([]string, 0, l.tables.Size())
	l.tables.Range(func(id string, _ *Table) bool {
		ids = append(ids, id)
		return true
	})
	sort.Strings(ids)
	return ids
}

// Player returns the player with the given id
func (l *Lobby) Player(id string) (*Player, bool) {
	return l.players.Load(id)
}

// LastTableList returns the most recent table list
func (l *Lobby) LastTableList() []codec.TableInfo {
	l.listMu.Lock()
	defer l.listMu.Unlock()
	return append([]codec.TableInfo(nil), l.lastList...)
}

// LoggedIn reports whether the local player is logged in. If a login failed
// the reason is returned as well.
func (l *Lobby) LoggedIn() (bool, string) {
	l.listMu.Lock()
	defer l.listMu.Unlock()
	return l.loggedIn, l.loginErr
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// player returns the player with the given id, creating it if needed
func (l *Lobby) player(id string) *Player {
	p, _ := l.players.LoadOrCompute(id, func() *Player {
		return &Player{id: id}
	})
	return p
}

func (l *Lobby) removeTable(id string) {
	l.tables.Delete(id)
}

// emit prints one event line, prefixed with the table id or "*"
func (l *Lobby) emit(scope string, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	Logger.Debugf("[%s] %s", scope, msg)

	l.outMu.Lock()
	defer l.outMu.Unlock()
	fmt.Fprintf(l.out, "[%s] %s\n", scope, msg)
}

func describe(t codec.TableInfo) string {
	seat := func(id string, score int) string {
		if id == "" {
			return "-"
		}
		return fmt.Sprintf("%s(%d)", id, score)
	}
	rated := "unrated"
	if t.Rated {
		rated = "rated"
	}
	return fmt.Sprintf("%s %s %s red=%s black=%s",
		t.ID, rated, t.Time, seat(t.RedID, t.RedScore), seat(t.BlackID, t.BlackScore))
}

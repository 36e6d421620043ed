package dispatcher

import (
	"fmt"

	"github.com/hoxchess/hoxnet/rpc/codec"
	"github.com/hoxchess/hoxnet/rpc/common"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("dispatcher")

// Dispatcher routes decoded inbound commands to the domain objects.
// It is used by the worker goroutine only.
type Dispatcher struct {
	selfID  string
	lookup  Lookup
	site    Site
	session Session
	log     logger.ILogger
}

// New creates a dispatcher for the local player selfID
func New(selfID string, lookup Lookup, site Site, session Session) *Dispatcher {
	return &Dispatcher{
		selfID:  selfID,
		lookup:  lookup,
		site:    site,
		session: session,
		log:     Logger,
	}
}

// SetLogger replaces the logger of the dispatcher
func (d *Dispatcher) SetLogger(l logger.ILogger) {
	d.log = l
}

// --------------------------------------------------------------------------
// Routing
// --------------------------------------------------------------------------

// Route delivers cmd to its target. A missing table or player is logged once
// and reported as *common.RouteNotFoundError; the event is dropped.
func (d *Dispatcher) Route(cmd codec.Command) error {
	tid := cmd.Get(codec.FieldTableID)

	var table Table
	if tid != "" {
		if t, ok := d.lookup.FindTable(tid); ok {
			table = t
		}
	}

	// a failure code is shown on the table, handling continues
	if code := cmd.Code(); codec.CodeFailed(code) {
		msg := fmt.Sprintf("Request %s failed with code = %s", cmd.Kind, code)
		d.log.Infof("%s", msg)
		if table != nil {
			table.PostMessage(msg)
		}
	}

	switch cmd.Kind {
	case codec.CmdTLogin:
		return d.handleLogin(cmd)

	case codec.CmdTLogout:
		d.site.OnLogout(cmd.Get(codec.FieldPlayerID))

	case codec.CmdTList:
		d.site.OnTableList(codec.ParseTableList(cmd.Get(codec.FieldTables)))

	case codec.CmdTNew:
		if tid != "" {
			d.site.OnTableJoined(codec.TableInfo{
				ID:    tid,
				Rated: true,
				Time:  codec.ParseTimeSpec(cmd.Get(codec.FieldTimeSpec)),
			})
		}

	case codec.CmdTJoin:
		d.site.OnPlayerJoined(tid, cmd.Get(codec.FieldPlayerID), 0, codec.ParseColor(cmd.Get(codec.FieldColor)))

	case codec.CmdTTableInfo:
		info := codec.ParseTableInfo(cmd.Get(codec.FieldTable))
		if info.ID == "" {
			d.log.Warningf("Ignoring %s without table id", cmd.Kind)
			return nil
		}
		d.site.OnTableJoined(info)

	case codec.CmdTPlayerJoined:
		d.site.OnPlayerJoined(tid, cmd.Get(codec.FieldPlayerID),
			codec.ParseScore(cmd.Get(codec.FieldScore)),
			codec.ParseColor(cmd.Get(codec.FieldColor)))

	case codec.CmdTLeave:
		return d.withTableAndPlayer(cmd, table, func(t Table, p Player) {
			t.OnLeave(p)
		})

	case codec.CmdTUpdate:
		return d.withTableAndPlayer(cmd, table, func(t Table, p Player) {
			t.OnUpdate(p, codec.ParseRated(cmd.Get(codec.FieldRated)), codec.ParseTimeSpec(cmd.Get(codec.FieldTimeSpec)))
		})

	case codec.CmdTMessage:
		return d.withTable(cmd, table, func(t Table) {
			t.OnMessage(cmd.Get(codec.FieldPlayerID), cmd.Get(codec.FieldMessage))
		})

	case codec.CmdTMove:
		return d.withTableAndPlayer(cmd, table, func(t Table, p Player) {
			t.OnMove(p, cmd.Get(codec.FieldMove))
		})

	case codec.CmdTDraw:
		return d.withTableAndPlayer(cmd, table, func(t Table, p Player) {
			t.OnDrawRequest(p)
		})

	case codec.CmdTResign:
		return d.withTableAndPlayer(cmd, table, func(t Table, p Player) {
			t.OnResign(p)
		})

	case codec.CmdTReset:
		return d.withTable(cmd, table, func(t Table) {
			t.OnReset()
		})

	case codec.CmdTGameEnd:
		return d.withTable(cmd, table, func(t Table) {
			t.OnGameOver(codec.ParseGameStatus(cmd.Get(codec.FieldStatus)), cmd.Get(codec.FieldReason))
		})

	case codec.CmdTScore:
		return d.withTableAndPlayer(cmd, table, func(t Table, p Player) {
			p.SetScore(codec.ParseScore(cmd.Get(codec.FieldScore)))
			t.OnScore(p)
		})

	case codec.CmdTPastMoves:
		return d.withTable(cmd, table, func(t Table) {
			t.OnPastMoves(codec.ParseMoves(cmd.Get(codec.FieldMoves)))
		})

	case codec.CmdTInvite:
		d.site.OnInvite(cmd.Get(codec.FieldPlayerID), tid)

	case codec.CmdTPlayerInfo:
		d.site.OnPlayerInfo(PlayerStats{
			ID:     cmd.Get(codec.FieldPlayerID),
			Score:  codec.ParseScore(cmd.Get(codec.FieldScore)),
			Wins:   codec.ParseScore(cmd.Get(codec.FieldWins)),
			Draws:  codec.ParseScore(cmd.Get(codec.FieldDraws)),
			Losses: codec.ParseScore(cmd.Get(codec.FieldLosses)),
		})

	default:
		d.log.Warningf("Unexpected command %s", cmd.Kind)
	}
	return nil
}

// HandleReply handles a direct reply with a failure code. After a successful
// login any failure ends the session: all tables are left and the connection
// is closed. Before that a failed login only runs the login failure path.
func (d *Dispatcher) HandleReply(kind common.RequestKind, code string, message string) {
	if !codec.CodeFailed(code) {
		return
	}

	if d.session.IsAuthenticated() {
		d.log.Warningf("Request %s failed with code %s after login, closing the session", kind, code)
		d.site.LeaveAllTables()
		d.session.Disconnect()
		return
	}

	if kind == common.ReqTConnect {
		d.log.Warningf("Login failed with code %s: %s", code, message)
		d.site.OnLoginFailure(code, message)
		return
	}
	d.log.Infof("Request %s failed with code %s: %s", kind, code, message)
}

// HandleConnectionLost runs the forced logout when the connection dropped
// after a successful login: all tables are left and the session is closed.
func (d *Dispatcher) HandleConnectionLost(err error) {
	if !d.session.IsAuthenticated() {
		d.log.Infof("Connection lost before login: %v", err)
		return
	}
	d.log.Warningf("Connection lost after login, closing the session: %v", err)
	d.site.LeaveAllTables()
	d.session.Disconnect()
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

func (d *Dispatcher) handleLogin(cmd codec.Command) error {
	pid := cmd.Get(codec.FieldPlayerID)
	score := codec.ParseScore(cmd.Get(codec.FieldScore))

	if cmd.Failed() {
		if !d.session.IsAuthenticated() {
			d.site.OnLoginFailure(cmd.Code(), fmt.Sprintf("login of %s rejected", pid))
		}
		return nil
	}

	if pid == d.selfID && cmd.Code() == "0" {
		d.session.SetAuthenticated(true)
		if self, ok := d.lookup.FindPlayer(pid); ok {
			self.SetScore(score)
		}
	}
	d.site.OnLogin(pid, score)
	return nil
}

// withTable runs fn with the resolved table
func (d *Dispatcher) withTable(cmd codec.Command, table Table, fn func(Table)) error {
	if table == nil {
		return d.notFound(cmd, "table", cmd.Get(codec.FieldTableID))
	}
	fn(table)
	return nil
}

// withTableAndPlayer runs fn with the resolved table and player
func (d *Dispatcher) withTableAndPlayer(cmd codec.Command, table Table, fn func(Table, Player)) error {
	if table == nil {
		return d.notFound(cmd, "table", cmd.Get(codec.FieldTableID))
	}
	pid := cmd.Get(codec.FieldPlayerID)
	player, ok := d.lookup.FindPlayer(pid)
	if !ok {
		return d.notFound(cmd, "player", pid)
	}
	fn(table, player)
	return nil
}

// notFound logs a route miss and returns the matching error
func (d *Dispatcher) notFound(cmd codec.Command, target string, id string) error {
	d.log.Warningf("%s %q not found, %s event dropped", target, id, cmd.Kind)
	return &common.RouteNotFoundError{Target: target, ID: id}
}

package codec

// --------------------------------------------------------------------------
// Field names
// --------------------------------------------------------------------------

const (
	FieldPlayerID = "pid"
	FieldPassword = "password"
	FieldScore    = "score"
	FieldCode     = "code"
	FieldTables   = "tables"
	FieldTableID  = "tid"
	FieldTimeSpec = "timespec"
	FieldColor    = "color"
	FieldTable    = "table"
	FieldRated    = "rated"
	FieldMessage  = "message"
	FieldMove     = "move"
	FieldStatus   = "status"
	FieldReason   = "reason"
	FieldMoves    = "moves"
	FieldWins     = "wins"
	FieldDraws    = "draws"
	FieldLosses   = "losses"
)

// --------------------------------------------------------------------------
// Command Structure
// --------------------------------------------------------------------------

// Command is a decoded protocol line: a kind plus its named parameters.
// Every field of the kind is present in Params, missing ones are empty.
type Command struct {
	Kind   CommandKind
	Params map[string]string
}

// Get returns the value of a parameter, or "" if it is not set
func (c Command) Get(name string) string {
	return c.Params[name]
}

// Code returns the server code embedded in the command, or "" if the kind
// does not carry one
func (c Command) Code() string {
	return c.Params[FieldCode]
}

// Failed reports whether the command embeds a code that signals failure
func (c Command) Failed() bool {
	return CodeFailed(c.Code())
}

// --------------------------------------------------------------------------
// Command Kind Definition
// --------------------------------------------------------------------------

// CommandKind defines the type of protocol line.
type CommandKind uint8

const (
	CmdTUnknown CommandKind = iota

	CmdTLogin        // LOGIN: a player logged in (or our login request)
	CmdTLogout       // LOGOUT: a player logged out
	CmdTList         // LIST: list of tables
	CmdTNew          // NEW: open a new table
	CmdTJoin         // JOIN: join a table
	CmdTTableInfo    // I_TABLE: information about a joined table
	CmdTLeave        // LEAVE: a player left a table
	CmdTUpdate       // UPDATE: table settings changed
	CmdTPlayerJoined // E_JOIN: a player joined a table
	CmdTMessage      // MSG: chat message at a table
	CmdTMove         // MOVE: a move was made
	CmdTDraw         // DRAW: draw offered
	CmdTResign       // RESIGN: a player resigned
	CmdTReset        // RESET: the game was reset
	CmdTGameEnd      // E_END: the game ended
	CmdTScore        // E_SCORE: a player's score changed
	CmdTPastMoves    // I_MOVES: moves played so far
	CmdTInvite       // INVITE: invitation from a player
	CmdTPlayerInfo   // PLAYER_INFO: player statistics

	cmdTCount
)

// commandSpec describes the wire layout of one command kind
type commandSpec struct {
	tag    string
	fields []string
}

// commandSpecs is the declarative field order table of the protocol.
// Fields are positional after the tag.
var commandSpecs = [cmdTCount]commandSpec{
	CmdTLogin:        {"LOGIN", []string{FieldPlayerID, FieldPassword, FieldScore, FieldCode}},
	CmdTLogout:       {"LOGOUT", []string{FieldPlayerID}},
	CmdTList:         {"LIST", []string{FieldTables, FieldCode}},
	CmdTNew:          {"NEW", []string{FieldTableID, FieldTimeSpec, FieldCode}},
	CmdTJoin:         {"JOIN", []string{FieldTableID, FieldPlayerID, FieldColor, FieldCode}},
	CmdTTableInfo:    {"I_TABLE", []string{FieldTable, FieldCode}},
	CmdTLeave:        {"LEAVE", []string{FieldTableID, FieldPlayerID}},
	CmdTUpdate:       {"UPDATE", []string{FieldTableID, FieldPlayerID, FieldRated, FieldTimeSpec}},
	CmdTPlayerJoined: {"E_JOIN", []string{FieldTableID, FieldPlayerID, FieldScore, FieldColor}},
	CmdTMessage:      {"MSG", []string{FieldTableID, FieldPlayerID, FieldMessage}},
	CmdTMove:         {"MOVE", []string{FieldTableID, FieldPlayerID, FieldMove}},
	CmdTDraw:         {"DRAW", []string{FieldTableID, FieldPlayerID}},
	CmdTResign:       {"RESIGN", []string{FieldTableID, FieldPlayerID}},
	CmdTReset:        {"RESET", []string{FieldTableID}},
	CmdTGameEnd:      {"E_END", []string{FieldTableID, FieldStatus, FieldReason}},
	CmdTScore:        {"E_SCORE", []string{FieldTableID, FieldPlayerID, FieldScore}},
	CmdTPastMoves:    {"I_MOVES", []string{FieldTableID, FieldMoves}},
	CmdTInvite:       {"INVITE", []string{FieldPlayerID, FieldTableID}},
	CmdTPlayerInfo:   {"PLAYER_INFO", []string{FieldPlayerID, FieldScore, FieldWins, FieldDraws, FieldLosses}},
}

// kindsByTag maps wire tags back to kinds
var kindsByTag = func() map[string]CommandKind {
	m := make(map[string]CommandKind, cmdTCount)
	for k := CmdTLogin; k < cmdTCount; k++ {
		m[commandSpecs[k].tag] = k
	}
	return m
}()

// Kinds returns all known command kinds
func Kinds() []CommandKind {
	kinds := make([]CommandKind, 0, cmdTCount-1)
	for k := CmdTLogin; k < cmdTCount; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// KindForTag returns the kind of a wire tag
func KindForTag(tag string) (CommandKind, bool) {
	k, ok := kindsByTag[tag]
	return k, ok
}

// String returns the wire tag of the kind
func (k CommandKind) String() string {
	if k == CmdTUnknown || k >= cmdTCount {
		return "UNKNOWN"
	}
	return commandSpecs[k].tag
}

// Fields returns the positional field names of the kind
func (k CommandKind) Fields() []string {
	if k == CmdTUnknown || k >= cmdTCount {
		return nil
	}
	return commandSpecs[k].fields
}

// HasField reports whether the kind carries the named field
func (k CommandKind) HasField(name string) bool {
	for _, f := range k.Fields() {
		if f == name {
			return true
		}
	}
	return false
}

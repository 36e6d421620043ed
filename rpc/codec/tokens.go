package codec

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// All token parsers are total: malformed input yields the documented
// sentinel instead of an error.

// --------------------------------------------------------------------------
// Color
// --------------------------------------------------------------------------

// Color is the side a player takes at a table
type Color uint8

const (
	ColorNone  Color = iota // observer
	ColorRed                // plays red
	ColorBlack              // plays black
)

// ParseColor converts a color token. Unknown tokens yield ColorNone.
func ParseColor(token string) Color {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "red":
		return ColorRed
	case "black":
		return ColorBlack
	default:
		return ColorNone
	}
}

func (c Color) String() string {
	switch c {
	case ColorRed:
		return "Red"
	case ColorBlack:
		return "Black"
	default:
		return "None"
	}
}

// --------------------------------------------------------------------------
// Game Status
// --------------------------------------------------------------------------

// GameStatus is the state of the game at a table
type GameStatus uint8

const (
	GameStatusUnknown GameStatus = iota
	GameStatusOpen
	GameStatusReady
	GameStatusInProgress
	GameStatusRedWin
	GameStatusBlackWin
	GameStatusDrawn
)

var gameStatusTokens = map[string]GameStatus{
	"open":      GameStatusOpen,
	"ready":     GameStatusReady,
	"play":      GameStatusInProgress,
	"red_win":   GameStatusRedWin,
	"black_win": GameStatusBlackWin,
	"drawn":     GameStatusDrawn,
}

// ParseGameStatus converts a status token. Unknown tokens yield GameStatusUnknown.
func ParseGameStatus(token string) GameStatus {
	return gameStatusTokens[strings.ToLower(strings.TrimSpace(token))]
}

func (s GameStatus) String() string {
	for token, status := range gameStatusTokens {
		if status == s {
			return token
		}
	}
	return "unknown"
}

// --------------------------------------------------------------------------
// Time Spec
// --------------------------------------------------------------------------

// TimeSpec holds the time control of a game
type TimeSpec struct {
	Game time.Duration // total time per player
	Move time.Duration // time per move
	Free time.Duration // free time per move
}

// ParseTimeSpec converts a "game/move/free" token (seconds). Malformed
// tokens yield the zero TimeSpec.
func ParseTimeSpec(token string) TimeSpec {
	parts := strings.Split(strings.TrimSpace(token), "/")
	if len(parts) != 3 {
		return TimeSpec{}
	}

	var secs [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return TimeSpec{}
		}
		secs[i] = n
	}

	return TimeSpec{
		Game: time.Duration(secs[0]) * time.Second,
		Move: time.Duration(secs[1]) * time.Second,
		Free: time.Duration(secs[2]) * time.Second,
	}
}

// IsZero reports whether no time control is set
func (ts TimeSpec) IsZero() bool {
	return ts == TimeSpec{}
}

// String returns the wire form of the time spec
func (ts TimeSpec) String() string {
	return fmt.Sprintf("%d/%d/%d",
		int(ts.Game/time.Second), int(ts.Move/time.Second), int(ts.Free/time.Second))
}

// --------------------------------------------------------------------------
// Scalars
// --------------------------------------------------------------------------

// ParseRated converts a rated flag. Games are rated unless the token says
// otherwise, so an empty token yields true.
func ParseRated(token string) bool {
	token = strings.TrimSpace(token)
	return token == "" || token == "1"
}

// ParseScore converts a score token. Malformed tokens yield 0.
func ParseScore(token string) int {
	n, err := strconv.Atoi(strings.TrimSpace(token))
	if err != nil {
		return 0
	}
	return n
}

// ParseMoves splits a "/" separated move list. Empty entries are skipped.
func ParseMoves(token string) []string {
	var moves []string
	for _, m := range strings.Split(token, "/") {
		if m = strings.TrimSpace(m); m != "" {
			moves = append(moves, m)
		}
	}
	return moves
}

// --------------------------------------------------------------------------
// Table records
// --------------------------------------------------------------------------

// TableInfo describes a table as listed by the server
type TableInfo struct {
	ID         string
	Private    bool
	Rated      bool
	Time       TimeSpec
	RedID      string
	RedScore   int
	BlackID    string
	BlackScore int
}

// ParseTableInfo converts a "," separated table record:
// tid,group,rated,timespec,red,redscore,black,blackscore.
// Missing fields keep their defaults.
func ParseTableInfo(record string) TableInfo {
	fields := strings.Split(strings.TrimSpace(record), ",")
	get := func(i int) string {
		if i < len(fields) {
			return strings.TrimSpace(fields[i])
		}
		return ""
	}

	return TableInfo{
		ID:         get(0),
		Private:    get(1) == "1",
		Rated:      ParseRated(get(2)),
		Time:       ParseTimeSpec(get(3)),
		RedID:      get(4),
		RedScore:   ParseScore(get(5)),
		BlackID:    get(6),
		BlackScore: ParseScore(get(7)),
	}
}

// String returns the wire form of the table record
func (ti TableInfo) String() string {
	group, rated := "0", "0"
	if ti.Private {
		group = "1"
	}
	if ti.Rated {
		rated = "1"
	}
	return strings.Join([]string{
		ti.ID, group, rated, ti.Time.String(),
		ti.RedID, strconv.Itoa(ti.RedScore),
		ti.BlackID, strconv.Itoa(ti.BlackScore),
	}, ",")
}

// ParseTableList converts a "|" or newline separated list of table records.
// Records without a table id are skipped.
func ParseTableList(token string) []TableInfo {
	var tables []TableInfo
	for _, rec := range strings.FieldsFunc(token, isRecordSeparator) {
		if strings.TrimSpace(rec) == "" {
			continue
		}
		if ti := ParseTableInfo(rec); ti.ID != "" {
			tables = append(tables, ti)
		}
	}
	return tables
}

func isRecordSeparator(r rune) bool {
	return r == '|' || r == '\n'
}

package codec

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/hoxchess/hoxnet/rpc/common"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Command
	}{
		{
			name: "move",
			line: "MOVE;T1;P1;C2-C4\r\n",
			want: Command{Kind: CmdTMove, Params: map[string]string{
				FieldTableID: "T1", FieldPlayerID: "P1", FieldMove: "C2-C4",
			}},
		},
		{
			name: "missing trailing fields",
			line: "LOGIN;alice\n",
			want: Command{Kind: CmdTLogin, Params: map[string]string{
				FieldPlayerID: "alice", FieldPassword: "", FieldScore: "", FieldCode: "",
			}},
		},
		{
			name: "extra fields are ignored",
			line: "RESET;T7;junk;more",
			want: Command{Kind: CmdTReset, Params: map[string]string{FieldTableID: "T7"}},
		},
		{
			name: "empty middle field",
			line: "JOIN;T1;;Red;0",
			want: Command{Kind: CmdTJoin, Params: map[string]string{
				FieldTableID: "T1", FieldPlayerID: "", FieldColor: "Red", FieldCode: "0",
			}},
		},
		{
			name: "tag only",
			line: "LOGOUT",
			want: Command{Kind: CmdTLogout, Params: map[string]string{FieldPlayerID: ""}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.line)
			if err != nil {
				t.Fatalf("Decode(%q) error = %v", tt.line, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Decode(%q) = %+v, want %+v", tt.line, got, tt.want)
			}
		})
	}
}

func TestDecodeUnknown(t *testing.T) {
	lines := []string{"", "\r\n", ";", ";;;", "FOO;1;2", "move;T1;P1;C2-C4", "\x00\xff;;", " ;MOVE"}

	for _, line := range lines {
		cmd, err := Decode(line)

		var unknownErr *common.UnknownCommandError
		if !errors.As(err, &unknownErr) {
			t.Errorf("Decode(%q) error = %v, want UnknownCommandError", line, err)
		}
		if cmd.Kind != CmdTUnknown {
			t.Errorf("Decode(%q).Kind = %v, want %v", line, cmd.Kind, CmdTUnknown)
		}
	}
}

func TestDecodeEveryKindTolerates(t *testing.T) {
	// every tag with any number of fields must decode without panic
	for _, kind := range Kinds() {
		line := kind.String()
		for i := 0; i < 8; i++ {
			cmd, err := Decode(line)
			if err != nil {
				t.Fatalf("Decode(%q) error = %v", line, err)
			}
			if len(cmd.Params) != len(kind.Fields()) {
				t.Errorf("Decode(%q) has %d params, want %d", line, len(cmd.Params), len(kind.Fields()))
			}
			line += ";x"
		}
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for _, kind := range Kinds() {
		t.Run(kind.String(), func(t *testing.T) {
			names := kind.Fields()

			// all fields set, then only the first one
			variants := []map[string]string{{}, {names[0]: "first"}}
			for _, name := range names {
				variants[0][name] = "v-" + name
			}

			for _, fields := range variants {
				line, err := EncodeRequestBody(kind, fields)
				if err != nil {
					t.Fatalf("EncodeRequestBody() error = %v", err)
				}

				cmd, err := Decode(line)
				if err != nil {
					t.Fatalf("Decode(%q) error = %v", line, err)
				}
				if cmd.Kind != kind {
					t.Errorf("Kind = %v, want %v", cmd.Kind, kind)
				}
				for _, name := range names {
					if got := cmd.Get(name); got != fields[name] {
						t.Errorf("%s = %q, want %q", name, got, fields[name])
					}
				}
			}
		})
	}
}

func TestEncodeRequestBody(t *testing.T) {
	tests := []struct {
		name    string
		kind    CommandKind
		fields  map[string]string
		want    string
		wantErr error
	}{
		{
			name:   "trailing empties trimmed",
			kind:   CmdTLogin,
			fields: map[string]string{FieldPlayerID: "alice", FieldPassword: "secret"},
			want:   "LOGIN;alice;secret\n",
		},
		{
			name:   "inner empties kept",
			kind:   CmdTJoin,
			fields: map[string]string{FieldTableID: "T1", FieldColor: "Black"},
			want:   "JOIN;T1;;Black\n",
		},
		{
			name: "no fields",
			kind: CmdTList,
			want: "LIST\n",
		},
		{
			name:    "delimiter in field",
			kind:    CmdTMessage,
			fields:  map[string]string{FieldTableID: "T1", FieldMessage: "hi;there"},
			wantErr: common.ErrInvalidField,
		},
		{
			name:    "newline in field",
			kind:    CmdTMessage,
			fields:  map[string]string{FieldTableID: "T1", FieldMessage: "hi\nthere"},
			wantErr: common.ErrInvalidField,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodeRequestBody(tt.kind, tt.fields)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("EncodeRequestBody() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("EncodeRequestBody() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("EncodeRequestBody() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEncodeRequestBodyRejects(t *testing.T) {
	if _, err := EncodeRequestBody(CmdTUnknown, nil); err == nil {
		t.Error("EncodeRequestBody(unknown) error = nil, want error")
	}
	if _, err := EncodeRequestBody(CmdTReset, map[string]string{FieldMove: "C2-C4"}); err == nil {
		t.Error("EncodeRequestBody(foreign field) error = nil, want error")
	}
}

func TestParseReply(t *testing.T) {
	tests := []struct {
		data     string
		wantCode string
		wantMsg  string
	}{
		{"0\r\nINFO: (MOVE) Move at Table [T1] OK\r\n", "0", "INFO: (MOVE) Move at Table [T1] OK"},
		{"6\r\nInvalid password\r\n", "6", "Invalid password"},
		{"0\n", "0", ""},
		{"1", "1", ""},
		{"", "", ""},
		{"\r\n", "", ""},
	}

	for _, tt := range tests {
		code, msg := ParseReply(tt.data)
		if code != tt.wantCode || msg != tt.wantMsg {
			t.Errorf("ParseReply(%q) = %q, %q, want %q, %q", tt.data, code, msg, tt.wantCode, tt.wantMsg)
		}
	}

	if code, msg := ParseReply(FormatReply("2", "Player P1 not found.")); code != "2" || msg != "Player P1 not found." {
		t.Errorf("ParseReply(FormatReply()) = %q, %q", code, msg)
	}
}

func TestCodeFailed(t *testing.T) {
	for code, want := range map[string]bool{"": false, "0": false, "1": true, "6": true} {
		if got := CodeFailed(code); got != want {
			t.Errorf("CodeFailed(%q) = %v, want %v", code, got, want)
		}
	}
}

// --------------------------------------------------------------------------
// Token parsers
// --------------------------------------------------------------------------

func TestParseColor(t *testing.T) {
	for token, want := range map[string]Color{
		"Red": ColorRed, "black": ColorBlack, "None": ColorNone, "": ColorNone, "green": ColorNone,
	} {
		if got := ParseColor(token); got != want {
			t.Errorf("ParseColor(%q) = %v, want %v", token, got, want)
		}
	}
}

func TestParseGameStatus(t *testing.T) {
	for token, want := range map[string]GameStatus{
		"open": GameStatusOpen, "play": GameStatusInProgress, "red_win": GameStatusRedWin,
		"black_win": GameStatusBlackWin, "drawn": GameStatusDrawn, "?": GameStatusUnknown,
	} {
		if got := ParseGameStatus(token); got != want {
			t.Errorf("ParseGameStatus(%q) = %v, want %v", token, got, want)
		}
	}
}

func TestParseTimeSpec(t *testing.T) {
	tests := []struct {
		token string
		want  TimeSpec
	}{
		{"1200/300/20", TimeSpec{Game: 20 * time.Minute, Move: 5 * time.Minute, Free: 20 * time.Second}},
		{"1200/300", TimeSpec{}},
		{"a/b/c", TimeSpec{}},
		{"-1/0/0", TimeSpec{}},
		{"", TimeSpec{}},
	}
	for _, tt := range tests {
		if got := ParseTimeSpec(tt.token); got != tt.want {
			t.Errorf("ParseTimeSpec(%q) = %+v, want %+v", tt.token, got, tt.want)
		}
	}

	if got := ParseTimeSpec("1200/300/20").String(); got != "1200/300/20" {
		t.Errorf("TimeSpec.String() = %q, want %q", got, "1200/300/20")
	}
}

func TestParseScalars(t *testing.T) {
	if !ParseRated("") || !ParseRated("1") || ParseRated("0") {
		t.Error("ParseRated() mismatch")
	}
	if got := ParseScore("1500"); got != 1500 {
		t.Errorf("ParseScore(1500) = %d, want 1500", got)
	}
	if got := ParseScore("abc"); got != 0 {
		t.Errorf("ParseScore(abc) = %d, want 0", got)
	}
	if got, want := ParseMoves("C2-C4/h9-g7//"), []string{"C2-C4", "h9-g7"}; !reflect.DeepEqual(got, want) {
		t.Errorf("ParseMoves() = %v, want %v", got, want)
	}
	if got := ParseMoves(""); len(got) != 0 {
		t.Errorf("ParseMoves(\"\") = %v, want empty", got)
	}
}

func TestParseTableList(t *testing.T) {
	want := []TableInfo{
		{ID: "T1", Rated: true, Time: ParseTimeSpec("1200/300/20"), RedID: "alice", RedScore: 1500, BlackID: "bob", BlackScore: 1490},
		{ID: "T2", Private: true, Rated: false, RedID: "carol"},
	}

	for _, token := range []string{
		want[0].String() + "|" + want[1].String() + "||,broken",
		want[0].String() + "\r\n" + want[1].String() + "\n\n,broken\n",
	} {
		if got := ParseTableList(token); !reflect.DeepEqual(got, want) {
			t.Errorf("ParseTableList(%q) = %+v, want %+v", token, got, want)
		}
	}
}

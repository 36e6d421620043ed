package client

import (
	"fmt"

	"github.com/hoxchess/hoxnet/rpc/codec"
	"github.com/hoxchess/hoxnet/rpc/common"
)

// commandForRequest maps send-and-await request kinds to the wire command
var commandForRequest = map[common.RequestKind]codec.CommandKind{
	common.ReqTList:    codec.CmdTList,
	common.ReqTNew:     codec.CmdTNew,
	common.ReqTJoin:    codec.CmdTJoin,
	common.ReqTLeave:   codec.CmdTLeave,
	common.ReqTLogout:  codec.CmdTLogout,
	common.ReqTMove:    codec.CmdTMove,
	common.ReqTMessage: codec.CmdTMessage,
	common.ReqTDraw:    codec.CmdTDraw,
	common.ReqTResign:  codec.CmdTResign,
	common.ReqTUpdate:  codec.CmdTUpdate,
}

// NewCommandRequest builds a send-and-await request whose body is the encoded
// command for kind. Session requests should pass common.FlagKeepAlive.
func NewCommandRequest(kind common.RequestKind, fields map[string]string, originator chan<- *common.Response, flags common.RequestFlags) (*common.Request, error) {
	cmdKind, ok := commandForRequest[kind]
	if !ok {
		return nil, fmt.Errorf("request kind %s carries no command", kind)
	}

	body, err := codec.EncodeRequestBody(cmdKind, fields)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s request: %w", kind, err)
	}
	return common.NewRequest(kind, body, originator, flags), nil
}

// LoginLine returns the initial login line for a Connect request
func LoginLine(playerID, password string) (string, error) {
	return codec.EncodeRequestBody(codec.CmdTLogin, map[string]string{
		codec.FieldPlayerID: playerID,
		codec.FieldPassword: password,
	})
}

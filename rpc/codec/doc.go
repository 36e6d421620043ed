// Package codec converts between the line based wire protocol of the match
// server and structured commands. It performs no I/O.
//
// A line has the form "<TAG>;<p0>;<p1>;...\n". The tag selects the command
// kind, the remaining fields are assigned by position from a declarative
// field table (see commandSpecs). Direct replies to requests have the form
// "<code>\r\n<message>\r\n" where code "0" means success.
//
// Key Components:
//
//   - Decode / EncodeRequestBody: Line to Command and back. Decode never
//     panics, unknown tags yield a *common.UnknownCommandError.
//
//   - ParseReply / FormatReply: Direct replies.
//
//   - ParseColor, ParseGameStatus, ParseTimeSpec, ParseRated, ParseScore,
//     ParseMoves, ParseTableInfo, ParseTableList: Total token parsers that
//     fall back to a sentinel value on malformed input.
package codec

package lobby

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/hoxchess/hoxnet/rpc/codec"
	"github.com/hoxchess/hoxnet/rpc/common"
	"github.com/spf13/cobra"
)

var (
	listCmd = &cobra.Command{
		Use:   "list",
		Short: "Lists the open tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := current.send(common.ReqTList, nil)
			if err != nil {
				return err
			}
			current.lobby.OnTableList(codec.ParseTableList(resp.Data))
			return nil
		},
	}
	watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Prints every event of the session until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return watch(ctx)
		},
	}
	newCmd = &cobra.Command{
		Use:   "new [timespec]",
		Short: "Opens a new table (timespec is game/move/free in seconds, e.g. 1200/300/20)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields := map[string]string{}
			if len(args) == 1 {
				if codec.ParseTimeSpec(args[0]).IsZero() {
					return fmt.Errorf("invalid timespec %q", args[0])
				}
				fields[codec.FieldTimeSpec] = args[0]
			}
			return printReply(current.send(common.ReqTNew, fields))
		},
	}
	joinCmd = &cobra.Command{
		Use:   "join [tid] [color]",
		Short: "Joins a table (color is red, black or none to observe)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			color := "None"
			if len(args) == 2 {
				color = codec.ParseColor(args[1]).String()
			}
			return printReply(current.send(common.ReqTJoin, map[string]string{
				codec.FieldTableID:  args[0],
				codec.FieldPlayerID: current.config.PlayerID,
				codec.FieldColor:    color,
			}))
		},
	}
	leaveCmd = &cobra.Command{
		Use:   "leave [tid]",
		Short: "Leaves a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printReply(current.send(common.ReqTLeave, tableAndSelf(args[0])))
		},
	}
	moveCmd = &cobra.Command{
		Use:   "move [tid] [move]",
		Short: "Sends a move (e.g. C2-C4)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields := tableAndSelf(args[0])
			fields[codec.FieldMove] = args[1]
			return printReply(current.send(common.ReqTMove, fields))
		},
	}
	sayCmd = &cobra.Command{
		Use:   "say [tid] [message...]",
		Short: "Sends a chat message to a table",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields := tableAndSelf(args[0])
			fields[codec.FieldMessage] = strings.Join(args[1:], " ")
			return printReply(current.send(common.ReqTMessage, fields))
		},
	}
	drawCmd = &cobra.Command{
		Use:   "draw [tid]",
		Short: "Offers or accepts a draw",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printReply(current.send(common.ReqTDraw, tableAndSelf(args[0])))
		},
	}
	resignCmd = &cobra.Command{
		Use:   "resign [tid]",
		Short: "Resigns the game at a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printReply(current.send(common.ReqTResign, tableAndSelf(args[0])))
		},
	}
)

// watch enables inbound events and waits until ctx is done or the
// connection is lost. The lobby prints the events.
func watch(ctx context.Context) error {
	events := make(chan *common.Response, 64)
	if !current.worker.Submit(common.NewListenRequest(events)) {
		return fmt.Errorf("listen request rejected, connection worker is %s", current.worker.State())
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case resp := <-events:
			if resp.Kind == common.ReqTConnectionLost {
				return fmt.Errorf("connection lost: %w", resp.Err)
			}
			if resp.Result == common.ResultNotSupported {
				Logger.Debugf("Skipped line %q", resp.Data)
			}
		}
	}
}

func tableAndSelf(tid string) map[string]string {
	return map[string]string{
		codec.FieldTableID:  tid,
		codec.FieldPlayerID: current.config.PlayerID,
	}
}

func printReply(resp *common.Response, err error) error {
	if err != nil {
		return err
	}
	fmt.Printf("code=%s, message=%s\n", resp.Code, resp.Data)
	return nil
}

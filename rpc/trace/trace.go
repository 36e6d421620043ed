package trace

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/hoxchess/hoxnet/rpc/codec"
	"github.com/lni/dragonboat/v4/logger"
	"google.golang.org/protobuf/encoding/protodelim"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

var Logger = logger.GetLogger("trace")

// Format is the encoding of a trace file
type Format string

const (
	FormatJSON  Format = "json"  // one protojson object per line
	FormatProto Format = "proto" // size delimited protobuf messages
)

// ParseFormat converts a format name
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(name)) {
	case FormatJSON, "":
		return FormatJSON, nil
	case FormatProto:
		return FormatProto, nil
	default:
		return "", fmt.Errorf("invalid trace format: %s. must be one of json, proto", name)
	}
}

// Entry is a single recorded command
type Entry struct {
	Time    time.Time
	Command codec.Command
}

// --------------------------------------------------------------------------
// Recorder
// --------------------------------------------------------------------------

// Recorder writes every decoded inbound command to a trace. It implements
// client.Recorder and is safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	out    io.Writer
	closer io.Closer
	format Format
	mo     proto.MarshalOptions
	count  int
	now    func() time.Time
}

// NewRecorder creates a recorder writing to out
func NewRecorder(out io.Writer, format Format) *Recorder {
	r := &Recorder{
		out:    out,
		format: format,
		mo:     proto.MarshalOptions{Deterministic: true},
		now:    time.Now,
	}
	if c, ok := out.(io.Closer); ok {
		r.closer = c
	}
	return r
}

// Open creates a recorder appending to the file at path
func Open(path string, format Format) (*Recorder, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace file: %w", err)
	}
	Logger.Infof("Recording inbound commands to %s (%s)", path, format)
	return NewRecorder(f, format), nil
}

// Record appends cmd to the trace
func (r *Recorder) Record(cmd codec.Command) error {
	msg, err := toStruct(Entry{Time: r.now(), Command: cmd})
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.format {
	case FormatProto:
		if _, err := protodelim.MarshalTo(r.out, msg); err != nil {
			return fmt.Errorf("failed to write trace entry: %w", err)
		}
	default:
		data, err := protojson.Marshal(msg)
		if err != nil {
			return fmt.Errorf("failed to encode trace entry: %w", err)
		}
		data = append(data, '\n')
		if _, err := r.out.Write(data); err != nil {
			return fmt.Errorf("failed to write trace entry: %w", err)
		}
	}
	r.count++
	return nil
}

// Count returns the number of recorded commands
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Close closes the underlying writer if it is closable
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closer == nil {
		return nil
	}
	Logger.Debugf("Closing trace after %d commands", r.count)
	err := r.closer.Close()
	r.closer = nil
	return err
}

// --------------------------------------------------------------------------
// Reading
// --------------------------------------------------------------------------

// ReadAll reads every entry of a trace
func ReadAll(in io.Reader, format Format) ([]Entry, error) {
	var entries []Entry
	br := bufio.NewReader(in)

	for {
		msg := &structpb.Struct{}

		switch format {
		case FormatProto:
			if err := (protodelim.UnmarshalOptions{}).UnmarshalFrom(br, msg); err != nil {
				if errors.Is(err, io.EOF) {
					return entries, nil
				}
				return entries, fmt.Errorf("failed to read trace entry %d: %w", len(entries), err)
			}
		default:
			line, err := br.ReadBytes('\n')
			if len(strings.TrimSpace(string(line))) == 0 {
				if err == io.EOF {
					return entries, nil
				}
				if err != nil {
					return entries, err
				}
				continue
			}
			if uerr := protojson.Unmarshal(line, msg); uerr != nil {
				return entries, fmt.Errorf("failed to decode trace entry %d: %w", len(entries), uerr)
			}
		}

		e, err := fromStruct(msg)
		if err != nil {
			return entries, err
		}
		entries = append(entries, e)
	}
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func toStruct(e Entry) (*structpb.Struct, error) {
	params := make(map[string]any, len(e.Command.Params))
	for k, v := range e.Command.Params {
		params[k] = v
	}

	msg, err := structpb.NewStruct(map[string]any{
		"time":   e.Time.UTC().Format(time.RFC3339Nano),
		"kind":   e.Command.Kind.String(),
		"params": params,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build trace entry: %w", err)
	}
	return msg, nil
}

func fromStruct(msg *structpb.Struct) (Entry, error) {
	fields := msg.GetFields()

	tag := fields["kind"].GetStringValue()
	kind, ok := codec.KindForTag(tag)
	if !ok {
		return Entry{}, fmt.Errorf("unknown command kind in trace: %q", tag)
	}

	ts, err := time.Parse(time.RFC3339Nano, fields["time"].GetStringValue())
	if err != nil {
		return Entry{}, fmt.Errorf("invalid time in trace entry: %w", err)
	}

	params := make(map[string]string)
	for k, v := range fields["params"].GetStructValue().GetFields() {
		params[k] = v.GetStringValue()
	}

	return Entry{Time: ts, Command: codec.Command{Kind: kind, Params: params}}, nil
}

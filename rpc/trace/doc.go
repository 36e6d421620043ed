// Package trace records the decoded inbound commands of a connection, so a
// session can be inspected or replayed later.
//
// Each entry is a google.protobuf.Struct with the fields "time", "kind" (the
// wire tag) and "params". Two encodings are supported: JSON lines written with
// protojson, and size delimited binary messages written with protodelim.
//
// Usage Example:
//
//	rec, err := trace.Open("session.trace", trace.FormatProto)
//	if err != nil {
//		return err
//	}
//	defer rec.Close()
//	worker.SetRecorder(rec)
package trace

// Package record defines the wire-level post/comment record and the line
// codec that moves it in and out of JSONL dumps. Fields the pipeline does
// not understand are carried through to the output byte-for-byte.
package record

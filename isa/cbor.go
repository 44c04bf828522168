package isa

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
)

// CachedProgram is the CBOR envelope a program cache (zkrpc.SQLiteStore's
// program table) keeps
// around a compiled artefact: the program's own stable ID alongside its
// canonical VLQ-encoded bytecode, so a cache entry can be looked up by ID
// without first decoding the bytecode payload.
//
// This is deliberately a second encoding layered on top of Program's own
// Encode/DecodeProgram rather than a replacement for it: Encode produces
// the canonical wire format the disassembler and gnark circuit sizing
// agree on, while CBOR here is only the cache's storage envelope —
// swapping cache backends (memory, SQLite, a future KV store) never
// needs to touch the canonical format.
type CachedProgram struct {
	ID      uuid.UUID `cbor:"id"`
	Method  string    `cbor:"method,omitempty"`
	Program []byte    `cbor:"program"`
}

// MarshalCache wraps p's canonical encoding (plus an optional method
// name, for a cache keyed by program+method rather than program alone)
// into a CBOR blob suitable for a cache value.
func MarshalCache(p *Program, method string) ([]byte, error) {
	cp := CachedProgram{ID: p.ID, Method: method, Program: p.Encode()}
	data, err := cbor.Marshal(cp)
	if err != nil {
		return nil, fmt.Errorf("isa: marshal cached program: %w", err)
	}
	return data, nil
}

// UnmarshalCache is the inverse of MarshalCache: it decodes the CBOR
// envelope and then the canonical bytecode payload inside it, returning
// the program's ID (as stored, since DecodeProgram does not recover it —
// see Program.ID's doc comment), the method name it was cached under,
// and the decoded Program itself.
func UnmarshalCache(data []byte) (uuid.UUID, string, *Program, error) {
	var cp CachedProgram
	if err := cbor.Unmarshal(data, &cp); err != nil {
		return uuid.UUID{}, "", nil, fmt.Errorf("isa: unmarshal cached program: %w", err)
	}
	p, err := DecodeProgram(cp.Program)
	if err != nil {
		return uuid.UUID{}, "", nil, fmt.Errorf("isa: decode cached program bytecode: %w", err)
	}
	p.ID = cp.ID
	return cp.ID, cp.Method, p, nil
}

package isa

import (
	"testing"

	"github.com/google/uuid"
)

func TestCachedProgramRoundTrip(t *testing.T) {
	p := &Program{
		ID:     uuid.New(),
		Kind:   KindCircuit,
		Input:  Tuple(Leaf(U(8)), Leaf(U(8))),
		Output: Leaf(U(8)),
		Code: []Instruction{
			{Op: OpInput},
			{Op: OpInput},
			{Op: OpAdd},
			{Op: OpOutput},
		},
	}

	data, err := MarshalCache(p, "")
	if err != nil {
		t.Fatalf("MarshalCache: %v", err)
	}

	id, method, got, err := UnmarshalCache(data)
	if err != nil {
		t.Fatalf("UnmarshalCache: %v", err)
	}
	if id != p.ID {
		t.Errorf("ID = %s, want %s", id, p.ID)
	}
	if method != "" {
		t.Errorf("Method = %q, want empty", method)
	}
	if got.Kind != p.Kind || len(got.Code) != len(p.Code) {
		t.Fatalf("program mismatch: %+v", got)
	}
}

func TestCachedProgramMethodTag(t *testing.T) {
	p := &Program{
		ID:            uuid.New(),
		Kind:          KindContract,
		Input:         Tuple(),
		Output:        Tuple(),
		StorageFields: []TypeTree{Leaf(U(64))},
		StorageNames:  []string{"counter"},
		Methods: []Method{
			{Name: "inc", Entry: "inc", Input: Leaf(U(64)), Output: Leaf(U(64)), Mutable: true},
		},
		Code: []Instruction{{Op: OpNoOperation}},
	}

	data, err := MarshalCache(p, "inc")
	if err != nil {
		t.Fatalf("MarshalCache: %v", err)
	}
	_, method, _, err := UnmarshalCache(data)
	if err != nil {
		t.Fatalf("UnmarshalCache: %v", err)
	}
	if method != "inc" {
		t.Errorf("Method = %q, want inc", method)
	}
}

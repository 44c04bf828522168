// Package zkrpc exposes the VM's debug/run/setup/prove/verify entry
// points (package vm) over HTTP, grounded on prover/service.go's
// registration-and-dispatch shape: a Store holds compiled programs and
// their Groth16 key pairs, a Handler turns HTTP requests into calls
// against package vm, and SQLiteStore is the persistent Store
// implementation, backed by modernc.org/sqlite through database/sql —
// the teacher never persists circuits to a database (prover/persist.go
// writes plain files), so this is the pack's own answer to "a contract
// RPC endpoint needs its registered programs to survive a restart".
package zkrpc

import (
	"bytes"
	"database/sql"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/zinc-lang/zinc/isa"
	"github.com/zinc-lang/zinc/vm"
)

// Store is what Handler needs to register programs and cache their
// trusted-setup keys. MemoryStore and SQLiteStore both implement it.
type Store interface {
	PutProgram(p *isa.Program) error
	GetProgram(id uuid.UUID) (*isa.Program, error)

	PutKeys(id uuid.UUID, method string, keys *vm.Keys) error
	GetKeys(id uuid.UUID, method string) (*vm.Keys, bool, error)
}

// SQLiteStore persists registered programs (as package isa's CBOR cache
// envelope) and their Groth16 key triples (constraint system, proving
// key, verifying key — each gnark's own binary WriteTo/ReadFrom format,
// the same serialization prover/persist.go writes to plain files) in a
// SQLite database opened via modernc.org/sqlite's pure-Go driver.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens (creating if necessary) a SQLite database at
// path and ensures its schema exists.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("zkrpc: open sqlite store: %w", err)
	}
	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS programs (
			id       TEXT PRIMARY KEY,
			bytecode BLOB NOT NULL
		);
		CREATE TABLE IF NOT EXISTS keys (
			program_id TEXT NOT NULL,
			method     TEXT NOT NULL,
			cs         BLOB NOT NULL,
			pk         BLOB NOT NULL,
			vk         BLOB NOT NULL,
			PRIMARY KEY (program_id, method)
		);
	`)
	if err != nil {
		return fmt.Errorf("zkrpc: migrate sqlite store: %w", err)
	}
	return nil
}

// Close closes the underlying database handle.
func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) PutProgram(p *isa.Program) error {
	data, err := isa.MarshalCache(p, "")
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`INSERT INTO programs (id, bytecode) VALUES (?, ?)
		 ON CONFLICT(id) DO UPDATE SET bytecode = excluded.bytecode`,
		p.ID.String(), data,
	)
	if err != nil {
		return fmt.Errorf("zkrpc: store program %s: %w", p.ID, err)
	}
	return nil
}

func (s *SQLiteStore) GetProgram(id uuid.UUID) (*isa.Program, error) {
	var data []byte
	row := s.db.QueryRow(`SELECT bytecode FROM programs WHERE id = ?`, id.String())
	if err := row.Scan(&data); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("zkrpc: program %s not registered", id)
		}
		return nil, fmt.Errorf("zkrpc: load program %s: %w", id, err)
	}
	_, _, p, err := isa.UnmarshalCache(data)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *SQLiteStore) PutKeys(id uuid.UUID, method string, keys *vm.Keys) error {
	csBuf, pkBuf, vkBuf, err := serializeKeys(keys)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`INSERT INTO keys (program_id, method, cs, pk, vk) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(program_id, method) DO UPDATE SET cs = excluded.cs, pk = excluded.pk, vk = excluded.vk`,
		id.String(), method, csBuf, pkBuf, vkBuf,
	)
	if err != nil {
		return fmt.Errorf("zkrpc: store keys for %s/%s: %w", id, method, err)
	}
	return nil
}

func (s *SQLiteStore) GetKeys(id uuid.UUID, method string) (*vm.Keys, bool, error) {
	var csBuf, pkBuf, vkBuf []byte
	row := s.db.QueryRow(`SELECT cs, pk, vk FROM keys WHERE program_id = ? AND method = ?`, id.String(), method)
	if err := row.Scan(&csBuf, &pkBuf, &vkBuf); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("zkrpc: load keys for %s/%s: %w", id, method, err)
	}
	keys, err := deserializeKeys(csBuf, pkBuf, vkBuf)
	if err != nil {
		return nil, false, err
	}
	return keys, true, nil
}

func serializeKeys(keys *vm.Keys) (cs, pk, vk []byte, err error) {
	var csBuf, pkBuf, vkBuf bytes.Buffer
	if _, err := keys.CS.WriteTo(&csBuf); err != nil {
		return nil, nil, nil, fmt.Errorf("zkrpc: serialize constraint system: %w", err)
	}
	if _, err := keys.ProvingKey.WriteTo(&pkBuf); err != nil {
		return nil, nil, nil, fmt.Errorf("zkrpc: serialize proving key: %w", err)
	}
	if _, err := keys.VerifyingKey.WriteTo(&vkBuf); err != nil {
		return nil, nil, nil, fmt.Errorf("zkrpc: serialize verifying key: %w", err)
	}
	return csBuf.Bytes(), pkBuf.Bytes(), vkBuf.Bytes(), nil
}

func deserializeKeys(csBuf, pkBuf, vkBuf []byte) (*vm.Keys, error) {
	cs := groth16.NewCS(ecc.BN254)
	if _, err := cs.ReadFrom(bytes.NewReader(csBuf)); err != nil {
		return nil, fmt.Errorf("zkrpc: deserialize constraint system: %w", err)
	}
	pk := groth16.NewProvingKey(ecc.BN254)
	if _, err := pk.ReadFrom(bytes.NewReader(pkBuf)); err != nil {
		return nil, fmt.Errorf("zkrpc: deserialize proving key: %w", err)
	}
	vk := groth16.NewVerifyingKey(ecc.BN254)
	if _, err := vk.ReadFrom(bytes.NewReader(vkBuf)); err != nil {
		return nil, fmt.Errorf("zkrpc: deserialize verifying key: %w", err)
	}
	return &vm.Keys{CS: cs, ProvingKey: pk, VerifyingKey: vk}, nil
}

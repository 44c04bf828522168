package zkrpc

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	gnarkwitness "github.com/consensys/gnark/backend/witness"
	"github.com/google/uuid"

	"github.com/zinc-lang/zinc/isa"
	"github.com/zinc-lang/zinc/vm"
)

// Handler is the HTTP surface over package vm's invocation entry points,
// shaped the way prover/service.go's Service wraps the Prover: a thin
// net/http.ServeMux dispatch layer, a Store for state that must outlive
// one request, and nothing else — proof generation and verification
// themselves are entirely package vm's responsibility.
type Handler struct {
	store   Store
	started time.Time
	log     *slog.Logger
}

// NewHandler builds a Handler backed by store. log, if nil, defaults to
// slog.Default().
func NewHandler(store Store, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{store: store, started: time.Now(), log: log}
}

// Mux returns the http.Handler serving every registered route.
func (h *Handler) Mux() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", h.handleHealth)
	mux.HandleFunc("POST /programs", h.handleRegister)
	mux.HandleFunc("GET /programs/{id}", h.handleGetProgram)
	mux.HandleFunc("POST /debug/{id}/{method}", h.handleDebug)
	mux.HandleFunc("POST /run/{id}/{method}", h.handleRun)
	mux.HandleFunc("POST /setup/{id}/{method}", h.handleSetup)
	mux.HandleFunc("POST /prove/{id}/{method}", h.handleProve)
	mux.HandleFunc("POST /verify/{id}/{method}", h.handleVerify)
	return mux
}

type healthResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Uptime: time.Since(h.started).String()})
}

// registerRequest carries a program's canonical bytecode (package isa's
// Program.Encode format), base64-encoded for JSON transport. A bare
// circuit has no method name; a contract registers every method
// implicitly (Setup/Prove take the method name per call).
type registerRequest struct {
	Bytecode string `json:"bytecode"`
}

type registerResponse struct {
	ID string `json:"id"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	data, err := base64.StdEncoding.DecodeString(req.Bytecode)
	if err != nil {
		httpError(w, http.StatusBadRequest, fmt.Sprintf("invalid base64 bytecode: %v", err))
		return
	}
	prog, err := isa.DecodeProgram(data)
	if err != nil {
		httpError(w, http.StatusBadRequest, fmt.Sprintf("invalid bytecode: %v", err))
		return
	}
	if prog.ID == uuid.Nil {
		prog.ID = uuid.New()
	}
	if err := h.store.PutProgram(prog); err != nil {
		httpError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.log.Info("program registered", "id", prog.ID, "kind", prog.Kind)
	writeJSON(w, http.StatusCreated, registerResponse{ID: prog.ID.String()})
}

func (h *Handler) handleGetProgram(w http.ResponseWriter, r *http.Request) {
	prog, err := h.lookupProgram(w, r)
	if err != nil {
		return
	}
	writeJSON(w, http.StatusOK, registerResponse{ID: prog.ID.String()})
}

func (h *Handler) lookupProgram(w http.ResponseWriter, r *http.Request) (*isa.Program, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httpError(w, http.StatusBadRequest, "invalid program id")
		return nil, err
	}
	prog, err := h.store.GetProgram(id)
	if err != nil {
		httpError(w, http.StatusNotFound, err.Error())
		return nil, err
	}
	return prog, nil
}

// invocationRequest is the body POST /debug, /run and /prove accept: the
// witness JSON for the circuit's declared inputs, plus (contracts only)
// the pre-invocation storage tuple.
type invocationRequest struct {
	Input   json.RawMessage `json:"input"`
	Storage json.RawMessage `json:"storage,omitempty"`
}

func (h *Handler) handleDebug(w http.ResponseWriter, r *http.Request) {
	h.runInvocation(w, r, true)
}

func (h *Handler) handleRun(w http.ResponseWriter, r *http.Request) {
	h.runInvocation(w, r, false)
}

func (h *Handler) runInvocation(w http.ResponseWriter, r *http.Request, debug bool) {
	prog, err := h.lookupProgram(w, r)
	if err != nil {
		return
	}
	method := r.PathValue("method")

	var req invocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	var result json.RawMessage
	if debug {
		var lines []string
		result, err = vm.Debug(prog, method, req.Input, req.Storage, func(s string) {
			lines = append(lines, s)
		})
		if err == nil {
			writeJSON(w, http.StatusOK, struct {
				Result json.RawMessage `json:"result"`
				Trace  []string        `json:"trace,omitempty"`
			}{Result: result, Trace: lines})
			return
		}
	} else {
		result, err = vm.Run(prog, method, req.Input, req.Storage)
	}
	if err != nil {
		httpError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Result json.RawMessage `json:"result"`
	}{Result: result})
}

type setupResponse struct {
	Constraints int `json:"constraints"`
}

func (h *Handler) handleSetup(w http.ResponseWriter, r *http.Request) {
	prog, err := h.lookupProgram(w, r)
	if err != nil {
		return
	}
	method := r.PathValue("method")

	start := time.Now()
	keys, err := vm.Setup(prog, method)
	if err != nil {
		httpError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := h.store.PutKeys(prog.ID, method, keys); err != nil {
		httpError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.log.Info("setup complete", "id", prog.ID, "method", method, "elapsed", time.Since(start))
	writeJSON(w, http.StatusOK, setupResponse{Constraints: keys.CS.GetNbConstraints()})
}

type proveResponse struct {
	Proof         string          `json:"proof"`
	PublicWitness string          `json:"public_witness"`
	Result        json.RawMessage `json:"result"`
	ProofTimeMs   int64           `json:"proof_time_ms"`
}

func (h *Handler) handleProve(w http.ResponseWriter, r *http.Request) {
	prog, err := h.lookupProgram(w, r)
	if err != nil {
		return
	}
	method := r.PathValue("method")

	keys, ok, err := h.store.GetKeys(prog.ID, method)
	if err != nil {
		httpError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !ok {
		httpError(w, http.StatusConflict, "no trusted setup on file for this program/method; call setup first")
		return
	}

	var req invocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	start := time.Now()
	pr, err := vm.Prove(prog, method, keys, req.Input, req.Storage)
	if err != nil {
		httpError(w, http.StatusBadRequest, err.Error())
		return
	}
	elapsed := time.Since(start)

	var proofBuf, witnessBuf bytes.Buffer
	if _, err := pr.Proof.WriteTo(&proofBuf); err != nil {
		httpError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if _, err := pr.PublicWitness.WriteTo(&witnessBuf); err != nil {
		httpError(w, http.StatusInternalServerError, err.Error())
		return
	}
	proofBytes, witnessBytes := proofBuf.Bytes(), witnessBuf.Bytes()

	h.log.Info("proof generated", "id", prog.ID, "method", method, "elapsed", elapsed)
	writeJSON(w, http.StatusOK, proveResponse{
		Proof:         base64.StdEncoding.EncodeToString(proofBytes),
		PublicWitness: base64.StdEncoding.EncodeToString(witnessBytes),
		Result:        pr.Result,
		ProofTimeMs:   elapsed.Milliseconds(),
	})
}

type verifyRequest struct {
	Proof         string `json:"proof"`
	PublicWitness string `json:"public_witness"`
}

type verifyResponse struct {
	Valid bool `json:"valid"`
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	prog, err := h.lookupProgram(w, r)
	if err != nil {
		return
	}
	method := r.PathValue("method")

	keys, ok, err := h.store.GetKeys(prog.ID, method)
	if err != nil {
		httpError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !ok {
		httpError(w, http.StatusConflict, "no trusted setup on file for this program/method")
		return
	}

	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	proofBytes, err := base64.StdEncoding.DecodeString(req.Proof)
	if err != nil {
		httpError(w, http.StatusBadRequest, "invalid base64 proof")
		return
	}
	witnessBytes, err := base64.StdEncoding.DecodeString(req.PublicWitness)
	if err != nil {
		httpError(w, http.StatusBadRequest, "invalid base64 public witness")
		return
	}

	proof := groth16.NewProof(ecc.BN254)
	if _, err := proof.ReadFrom(bytes.NewReader(proofBytes)); err != nil {
		httpError(w, http.StatusBadRequest, fmt.Sprintf("invalid proof encoding: %v", err))
		return
	}
	pubWitness, err := gnarkwitness.New(ecc.BN254.ScalarField())
	if err != nil {
		httpError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if _, err := pubWitness.ReadFrom(bytes.NewReader(witnessBytes)); err != nil {
		httpError(w, http.StatusBadRequest, fmt.Sprintf("invalid witness encoding: %v", err))
		return
	}

	err = vm.Verify(keys, &vm.ProofResult{Proof: proof, PublicWitness: pubWitness})
	writeJSON(w, http.StatusOK, verifyResponse{Valid: err == nil})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, struct {
		Error string `json:"error"`
	}{Error: msg})
}

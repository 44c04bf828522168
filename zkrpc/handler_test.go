package zkrpc

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/zinc-lang/zinc/codegen"
	"github.com/zinc-lang/zinc/isa"
)

func additionProgram(t *testing.T) *isa.Program {
	t.Helper()
	prog, err := codegen.Generate(&codegen.Circuit{
		Inputs: []codegen.Param{
			{Name: "a", Type: isa.Leaf(isa.U(8))},
			{Name: "b", Type: isa.Leaf(isa.U(8))},
		},
		Outputs: []isa.ScalarType{isa.U(8)},
		Body: []codegen.Stmt{
			codegen.Output(codegen.Binary(codegen.OpAdd, codegen.Var("a"), codegen.Var("b"))),
		},
	})
	if err != nil {
		t.Fatalf("codegen.Generate: %v", err)
	}
	return prog
}

func doJSON(t *testing.T, mux http.Handler, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	var out map[string]interface{}
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("decode response %q: %v", rec.Body.String(), err)
		}
	}
	return rec, out
}

func TestHandlerRegisterAndRun(t *testing.T) {
	prog := additionProgram(t)
	h := NewHandler(NewMemoryStore(), nil)
	mux := h.Mux()

	rec, resp := doJSON(t, mux, "POST", "/programs", registerRequest{
		Bytecode: base64.StdEncoding.EncodeToString(prog.Encode()),
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body %v", rec.Code, resp)
	}
	id, _ := resp["id"].(string)
	if id == "" {
		t.Fatalf("missing id in register response: %v", resp)
	}

	rec, resp = doJSON(t, mux, "POST", "/run/"+id+"/main", invocationRequest{
		Input: json.RawMessage(`{"a": 3, "b": 4}`),
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("run status = %d, body %v", rec.Code, resp)
	}
	result, ok := resp["result"].(map[string]interface{})
	if !ok {
		t.Fatalf("unexpected result shape: %v", resp)
	}
	outTuple, ok := result["output"].([]interface{})
	if !ok || len(outTuple) != 1 {
		t.Fatalf("unexpected output shape: %v", result["output"])
	}
	if outTuple[0].(float64) != 7 {
		t.Errorf("output = %v, want 7", outTuple[0])
	}
}

func TestHandlerUnknownProgram(t *testing.T) {
	h := NewHandler(NewMemoryStore(), nil)
	mux := h.Mux()

	rec, _ := doJSON(t, mux, "GET", "/programs/00000000-0000-0000-0000-000000000000", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandlerProveRequiresSetup(t *testing.T) {
	prog := additionProgram(t)
	h := NewHandler(NewMemoryStore(), nil)
	mux := h.Mux()

	_, resp := doJSON(t, mux, "POST", "/programs", registerRequest{
		Bytecode: base64.StdEncoding.EncodeToString(prog.Encode()),
	})
	id := resp["id"].(string)

	rec, _ := doJSON(t, mux, "POST", "/prove/"+id+"/main", invocationRequest{
		Input: json.RawMessage(`{"a": 1, "b": 2}`),
	})
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
}

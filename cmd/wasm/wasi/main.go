//go:build wasip1

// Command pipefold-wasm-wasi is the WASI (wasip1) entrypoint for use from any
// language that supports the WebAssembly System Interface.
//
// Protocol: single JSON object on stdin → single JSON object on stdout.
//
//	stdin:  { "chain": "<call chain>" }
//	stdout: { "canonical": "<call chain>" }          on success
//	        { "error": "<message>", "kind": "..." }  on failure (exit code 1)
//
// kind is one of SYNTAX ERROR, TYPE ERROR, or INTERNAL ERROR.
//
// Build:
//
//	GOOS=wasip1 GOARCH=wasm go build -o pipefold.wasm ./cmd/wasm/wasi/
//
// Usage with wasmtime CLI:
//
//	echo '{"chain":"filter{(element>1)}%>%map{(element+7)}"}' | wasmtime pipefold.wasm
package main

import (
	"encoding/json"
	"os"

	"github.com/serjsysoev/pipefold"
)

type request struct {
	Chain string `json:"chain"`
}

type response struct {
	Canonical string `json:"canonical,omitempty"`
	Error     string `json:"error,omitempty"`
	Kind      string `json:"kind,omitempty"`
}

func writeResponse(r response, exitCode int) {
	_ = json.NewEncoder(os.Stdout).Encode(r)
	os.Exit(exitCode)
}

func errorKind(err error) string {
	switch {
	case pipefold.IsSyntaxError(err):
		return "SYNTAX ERROR"
	case pipefold.IsTypeError(err):
		return "TYPE ERROR"
	default:
		return "INTERNAL ERROR"
	}
}

func main() {
	var req request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResponse(response{Error: "invalid request JSON: " + err.Error(), Kind: "SYNTAX ERROR"}, 1)
	}

	canonical, err := pipefold.Optimize(req.Chain)
	if err != nil {
		writeResponse(response{Error: err.Error(), Kind: errorKind(err)}, 1)
	}

	writeResponse(response{Canonical: canonical}, 0)
}

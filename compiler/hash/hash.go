// Package hash computes content fingerprints of parsed programs.
//
// The fingerprint is a SHA-256 over a canonical CBOR encoding of the
// program's AST, so two parses of the same token stream hash identically
// and any structural difference changes the hash. Nothing is written to
// disk; the encoding exists only in memory.
package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/tacklang/tack/compiler"
)

// encMode is the canonical CBOR encoding mode for deterministic output.
var encMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("hash: failed to create CBOR enc mode: %v", err))
	}
	encMode = em
}

// Program computes the SHA-256 content hash of a statement list.
func Program(stmts []compiler.Expr) ([32]byte, error) {
	root := &HNode{Kind: "program", Kids: make([]*HNode, len(stmts))}
	for i, stmt := range stmts {
		root.Kids[i] = build(stmt)
	}
	data, err := encMode.Marshal(root)
	if err != nil {
		return [32]byte{}, fmt.Errorf("hash: encode program: %w", err)
	}
	return sha256.Sum256(data), nil
}

// Fingerprint returns a short hex form of the program hash for display.
func Fingerprint(stmts []compiler.Expr) (string, error) {
	sum, err := Program(stmts)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(sum[:8]), nil
}

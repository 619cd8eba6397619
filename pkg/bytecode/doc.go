// Package bytecode defines the Tack virtual machine: the tagged runtime
// Value, the Chunk (opcode stream, per-byte line metadata and constant
// pool), a disassembler, and the stack-based fetch-decode-execute loop.
//
// Chunks are produced by the compiler package, finalized once, and executed
// as immutable data. The VM reports one of three statuses (OK, ERR,
// INF_LOOP) and never panics on malformed input.
package bytecode

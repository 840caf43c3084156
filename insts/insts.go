// Package insts provides floating-point instruction definitions and decoding
// for the Tomasulo scheduling model.
//
// Instructions are read from a text trace, one per line. Supported forms:
//   - Arithmetic: ADD.D, SUB.D, MUL.D, DIV.D with Fd, Fs, Ft operands
//   - Memory: L.D and S.D with Ft, imm(Rs) operands
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	inst, err := decoder.Decode("L.D F6, 34(R2)")
//	fmt.Printf("Op: %v, Rt: %d, Rs: %d, Imm: %d\n", inst.Op, inst.Rt, inst.Rs, inst.Imm)
package insts

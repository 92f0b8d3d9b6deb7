// Package layout maps WIT types onto the ir layout model.
//
// It computes size, alignment and field offsets with the Component Model
// canonical ABI rules and defines the resulting ir types into an ir.Definer,
// which makes it a front end for the layout oracle consumed by the bindless
// lowering.
//
// # Layout Rules
//
//   - Primitives: size equals alignment (u8=1, u32=4, u64=8, etc.)
//   - Records and tuples: fields laid out sequentially with padding for alignment
//   - Enums and flags: the smallest unsigned integer holding every case or bit
//
// Strings, lists, floats, variants, options, results and resources have no
// shape in the ir model and are rejected.
//
// # Usage
//
//	table := ir.NewTable()
//	calc := layout.NewCalculator(table)
//	id, err := calc.Define("pair", recordType)
package layout

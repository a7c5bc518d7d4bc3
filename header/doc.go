// Package header turns one C header into a Description: the ordered table
// of the functions it declares, their signatures and whether each one can be
// linked directly or only through a wrapper.
//
// The header is expanded by the system C preprocessor first, so macros,
// conditional blocks and nested includes are resolved exactly as the C
// compiler will see them. The expanded text is then read by a declaration
// parser that understands the top-level structure of C (prototypes,
// definitions, typedefs) without type-checking bodies.
//
//	ing := header.NewIngestor(cfg, runner, nil)
//	desc, err := ing.Ingest(ctx, cfg.HeaderPath())
//	for _, fn := range desc.InlineOnly() {
//		fmt.Println(fn.Signature())
//	}
package header

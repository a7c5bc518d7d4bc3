package parser

// keywords are identifiers that can never name a declared entity.
var keywords = map[string]bool{
	"auto": true, "break": true, "case": true, "char": true, "const": true,
	"continue": true, "default": true, "do": true, "double": true, "else": true,
	"enum": true, "extern": true, "float": true, "for": true, "goto": true,
	"if": true, "inline": true, "int": true, "long": true, "register": true,
	"restrict": true, "return": true, "short": true, "signed": true, "sizeof": true,
	"static": true, "struct": true, "switch": true, "typedef": true, "union": true,
	"unsigned": true, "void": true, "volatile": true, "while": true, "bool": true,
	"_Alignas": true, "_Alignof": true, "_Atomic": true, "_Bool": true, "_Complex": true,
	"_Generic": true, "_Imaginary": true, "_Noreturn": true, "_Static_assert": true,
	"_Thread_local": true, "_Float16": true, "_Float32": true, "_Float64": true,
	"_Float128": true, "_Float32x": true, "_Float64x": true, "_Decimal32": true,
	"_Decimal64": true, "_Decimal128": true,
	"__int128": true, "__restrict": true, "__restrict__": true, "__inline": true,
	"__inline__": true, "__const": true, "__const__": true, "__volatile": true,
	"__volatile__": true, "__signed": true, "__signed__": true, "__extension__": true,
	"__attribute__": true, "__attribute": true, "__asm__": true, "__asm": true, "asm": true,
	"__typeof__": true, "__typeof": true, "typeof": true, "__builtin_va_list": true,
	"__label__": true, "__auto_type": true, "__thread": true, "__declspec": true,
	"__cdecl": true, "__stdcall": true, "__fastcall": true, "__vectorcall": true,
	"_Nullable": true, "_Nonnull": true, "_Null_unspecified": true, "__complex__": true,
	"__real__": true, "__imag__": true, "static_assert": true, "alignas": true,
	"thread_local": true, "__float128": true, "__fp16": true, "__bf16": true,
}

// opaque words are followed by a parenthesized group that is not a
// declarator and not a parameter list.
var opaque = map[string]bool{
	"__attribute__": true, "__attribute": true, "__asm__": true, "__asm": true, "asm": true,
	"__declspec": true, "__typeof__": true, "__typeof": true, "typeof": true,
	"_Alignas": true, "alignas": true, "_Atomic": true, "_Static_assert": true,
	"static_assert": true, "__has_include": true,
}

// dropped words are removed from declaration specifiers.
var dropped = map[string]bool{
	"static": true, "extern": true, "inline": true, "__inline": true, "__inline__": true,
	"typedef": true, "_Noreturn": true, "__extension__": true, "register": true,
	"__cdecl": true, "__stdcall": true, "__fastcall": true, "__vectorcall": true,
}

// callingConventions maps attribute or keyword spellings to a canonical name.
var callingConventions = map[string]string{
	"stdcall": "stdcall", "__stdcall__": "stdcall", "__stdcall": "stdcall",
	"fastcall": "fastcall", "__fastcall__": "fastcall", "__fastcall": "fastcall",
	"thiscall": "thiscall", "__thiscall__": "thiscall",
	"vectorcall": "vectorcall", "__vectorcall__": "vectorcall", "__vectorcall": "vectorcall",
	"ms_abi": "ms_abi", "__ms_abi__": "ms_abi",
	"sysv_abi": "sysv_abi", "__sysv_abi__": "sysv_abi",
	"regparm": "regparm", "__regparm__": "regparm",
	"pcs": "pcs", "__pcs__": "pcs",
}

// builtinTypedefs are type names the compiler provides without a declaration.
var builtinTypedefs = []string{
	"__int128_t", "__uint128_t", "__builtin_ms_va_list", "__SVBool_t",
}

// IsKeyword reports whether s is a C keyword or compiler extension keyword.
func IsKeyword(s string) bool {
	return keywords[s]
}

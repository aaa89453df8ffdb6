package common

// SableVersion is the current Sable toolchain version as a string.
const SableVersion string = "0.1.0"

// SableModFileName is the name for Sable module files.
const SableModFileName string = "sable-mod.toml"

// SableMIRFileExt is the file extension for a textual Sable MIR bundle.
const SableMIRFileExt string = ".smir"

// LLVMFileExt is the file extension for emitted LLVM IR text files.
const LLVMFileExt string = ".ll"

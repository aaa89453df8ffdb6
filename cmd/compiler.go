package cmd

import (
	"bufio"
	"os"
	"path/filepath"

	"sablec/common"
	"sablec/constcheck"
	"sablec/depm"
	"sablec/generate"
	"sablec/mir"
	"sablec/report"
	"sablec/syntax"
)

// Compiler represents the global state of the compiler.
type Compiler struct {
	// rootAbsPath is the absolute path to the compilation root.
	rootAbsPath string

	// mod is the module being compiled.  It is nil when the compilation root
	// is a lone MIR file rather than a module directory.
	mod *depm.SableModule

	// targetName is the display name of the compilation target: the module
	// name, or the file name for a lone MIR file.
	targetName string

	// bundles is the list of parsed bundles paired with the source files they
	// were parsed from.
	bundles []*parsedBundle

	// outDir is the user specified output directory for emitted LLVM
	// modules.  Empty means the default output directory inside the module.
	outDir string
}

// parsedBundle pairs a parsed MIR bundle with its source file.
type parsedBundle struct {
	bundle *mir.Bundle
	file   *depm.SourceFile
}

// NewCompiler creates a new compiler for the module at the given path.
func NewCompiler(rootRelPath string) *Compiler {
	// calculate the absolute path to the compilation root.
	rootAbsPath, err := filepath.Abs(rootRelPath)
	if err != nil {
		report.ReportFatal("error calculating absolute path: %s", err.Error())
		return nil
	}

	return &Compiler{rootAbsPath: rootAbsPath}
}

// Check runs the analysis phase of the compiler: the compilation root is
// loaded, its source files are parsed, and every bundle has its compile-time
// constants verified.  The root may be a module directory or a lone MIR file;
// a lone file is checked with the default configuration.  It returns whether
// the target checked without errors.
func (c *Compiler) Check() bool {
	files, ok := c.loadTarget()
	if !ok {
		return false
	}

	for _, sf := range files {
		if bundle, parsedOk := c.parseFile(sf); parsedOk {
			c.bundles = append(c.bundles, &parsedBundle{bundle: bundle, file: sf})
		}
	}

	if report.AnyErrors() {
		return false
	}

	for _, pb := range c.bundles {
		pass := constcheck.NewPass(pb.bundle, &constcheck.ReporterSink{
			AbsPath:  pb.file.AbsPath,
			ReprPath: pb.file.ReprPath,
		})

		if c.mod != nil && c.mod.EvalStepLimit > 0 {
			pass.SetStepLimit(c.mod.EvalStepLimit)
		}

		pass.Run()
	}

	return !report.AnyErrors()
}

// loadTarget resolves the compilation root into the list of MIR source files
// to compile.
func (c *Compiler) loadTarget() ([]*depm.SourceFile, bool) {
	finfo, err := os.Stat(c.rootAbsPath)
	if err != nil {
		report.ReportFatal("unable to read input path `%s`: %s", c.rootAbsPath, err.Error())
		return nil, false
	}

	if finfo.IsDir() {
		mod, ok := depm.LoadModule(c.rootAbsPath)
		if !ok {
			return nil, false
		}

		c.mod = mod
		c.targetName = mod.Name
		return mod.SourceFiles, true
	}

	c.targetName = filepath.Base(c.rootAbsPath)
	return []*depm.SourceFile{{AbsPath: c.rootAbsPath, ReprPath: c.targetName}}, true
}

// parseFile parses a single MIR source file into a bundle.
func (c *Compiler) parseFile(sf *depm.SourceFile) (*mir.Bundle, bool) {
	file, err := os.Open(sf.AbsPath)
	if err != nil {
		report.ReportFatal("failed to open source file at `%s`: %s", sf.ReprPath, err.Error())
		return nil, false
	}
	defer file.Close()

	p := syntax.NewParser(sf.AbsPath, sf.ReprPath, bufio.NewReader(file))
	return p.Parse()
}

// Emit runs the generation phase of the compiler: each checked bundle is
// lowered to an LLVM module and written out as a textual IR file.  Check must
// succeed before this is run.
func (c *Compiler) Emit() {
	outDir := c.outDir
	if outDir == "" {
		root := c.rootAbsPath
		if c.mod == nil {
			root = filepath.Dir(c.rootAbsPath)
		}

		outDir = filepath.Join(root, ".sable")
	}

	if err := os.MkdirAll(outDir, 0777); err != nil {
		report.ReportFatal("failed to create output directory `%s`: %s", outDir, err.Error())
	}

	for _, pb := range c.bundles {
		g := generate.NewGenerator(pb.bundle)
		llMod := g.Generate()

		writeOutputFile(filepath.Join(outDir, pb.bundle.Name+common.LLVMFileExt), llMod.String())
	}

	report.DisplayInfoMessage("Emitted", outDir)
}

// writeOutputFile is used to quickly write an output file for the compiler.
func writeOutputFile(fpath, content string) {
	// open or create the file
	file, err := os.OpenFile(fpath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0777)
	if err != nil {
		report.ReportFatal("failed to open output file `%s`: %s", fpath, err.Error())
	}
	defer file.Close()

	// write the data
	_, err = file.WriteString(content)
	if err != nil {
		report.ReportFatal("failed to write output to file `%s`: %s", fpath, err.Error())
	}
}

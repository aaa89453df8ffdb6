package depm

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"sablec/common"
	"sablec/report"

	"github.com/pelletier/go-toml"
)

// tomlModule represents a Sable module as it is encoded in TOML.
type tomlModule struct {
	Name         string    `toml:"name"`
	SableVersion string    `toml:"sable-version"`
	Check        tomlCheck `toml:"check"`
}

// tomlCheck represents the `[check]` table of a module file.
type tomlCheck struct {
	EvalLimit int `toml:"eval-limit"`
}

// LoadModule loads and validates a module.  `abspath` is the absolute path to
// the module directory.  This function returns the deserialized module and a
// success boolean.
func LoadModule(abspath string) (*SableModule, bool) {
	buff, err := os.ReadFile(filepath.Join(abspath, common.SableModFileName))
	if err != nil {
		report.ReportFatal("unable to read module file at `%s`: %s", abspath, err.Error())
		return nil, false
	}

	tomlMod := &tomlModule{}
	if err := toml.Unmarshal(buff, tomlMod); err != nil {
		report.ReportFatal("error parsing module file at `%s`: %s", abspath, err.Error())
		return nil, false
	}

	// module root is the directory enclosing the module file
	mod := &SableModule{
		AbsPath: abspath,
		ID:      GenerateIDFromPath(abspath),
	}

	if !validateModule(mod, tomlMod) {
		return nil, false
	}

	if !collectSourceFiles(mod) {
		return nil, false
	}

	return mod, true
}

// validateModule checks that the top level module contents are valid and
// moves them over to the loaded module.
func validateModule(mod *SableModule, tomlMod *tomlModule) bool {
	if tomlMod.Name == "" {
		report.ReportModuleError(fmt.Sprintf("<module at `%s`>", mod.AbsPath), "missing module name")
		return false
	}

	if !IsValidIdentifier(tomlMod.Name) {
		report.ReportModuleError(fmt.Sprintf("<module at `%s`>", mod.AbsPath), "module name must be a valid identifier")
		return false
	}

	if tomlMod.SableVersion != common.SableVersion {
		report.ReportModuleWarning(tomlMod.Name, "version of module `%s` (v%s) does not match current sable version (v%s)",
			tomlMod.Name,
			tomlMod.SableVersion,
			common.SableVersion,
		)
	}

	if tomlMod.Check.EvalLimit < 0 {
		report.ReportModuleError(tomlMod.Name, "evaluation step limit must be positive")
		return false
	}

	mod.Name = tomlMod.Name
	mod.EvalStepLimit = tomlMod.Check.EvalLimit
	return true
}

// collectSourceFiles walks the module directory and gathers its MIR source
// files in sorted path order.
func collectSourceFiles(mod *SableModule) bool {
	err := filepath.WalkDir(mod.AbsPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() || filepath.Ext(path) != common.SableMIRFileExt {
			return nil
		}

		reprPath, err := filepath.Rel(mod.AbsPath, path)
		if err != nil {
			reprPath = path
		}

		mod.SourceFiles = append(mod.SourceFiles, &SourceFile{AbsPath: path, ReprPath: reprPath})
		return nil
	})

	if err != nil {
		report.ReportModuleError(mod.Name, "error walking module directory: %s", err.Error())
		return false
	}

	if len(mod.SourceFiles) == 0 {
		report.ReportModuleError(mod.Name, "module contains no `%s` source files", common.SableMIRFileExt)
		return false
	}

	return true
}

package cmd

import (
	"os"

	"sablec/common"
	"sablec/report"

	"github.com/ComedicChimera/olive"
)

// Execute is the main entry point for the `sablec` CLI utility.
func Execute() {
	// set up the argument parser and all its extended commands and arguments
	cli := olive.NewCLI("sablec", "sablec is a tool for checking and compiling Sable MIR modules", true)
	logLvlArg := cli.AddSelectorArg("loglevel", "ll", "the compiler log level", false, []string{"silent", "error", "warn", "verbose"})
	logLvlArg.SetDefaultValue("verbose")

	checkCmd := cli.AddSubcommand("check", "verify the compile-time constants of a module or MIR file", true)
	checkCmd.AddPrimaryArg("input-path", "the path to the module or MIR file to check", true)

	emitCmd := cli.AddSubcommand("emit", "check a module or MIR file and emit LLVM IR for it", true)
	emitCmd.AddPrimaryArg("input-path", "the path to the module or MIR file to compile", true)
	emitCmd.AddStringArg("out", "o", "the output directory for emitted LLVM modules", false)

	cli.AddSubcommand("version", "print the Sable version", false)

	// run the argument parser
	result, err := olive.ParseArgs(cli, os.Args)
	if err != nil {
		report.ReportFatal(err.Error())
	}

	initLogLevel(result.Arguments["loglevel"].(string))

	// process the inputed command line
	subcmdName, subResult, _ := result.Subcommand()
	switch subcmdName {
	case "check":
		execCheckCommand(subResult)
	case "emit":
		execEmitCommand(subResult)
	case "version":
		report.DisplayInfoMessage("Sable Version", common.SableVersion)
	}
}

// initLogLevel initializes the global reporter from the log level argument.
func initLogLevel(loglevel string) {
	switch loglevel {
	case "silent":
		report.InitReporter(report.LogLevelSilent)
	case "error":
		report.InitReporter(report.LogLevelError)
	case "warn":
		report.InitReporter(report.LogLevelWarn)
	default:
		report.InitReporter(report.LogLevelVerbose)
	}
}

// execCheckCommand executes the check subcommand and handles all errors.
func execCheckCommand(result *olive.ArgParseResult) {
	rootPath, _ := result.PrimaryArg()

	c := NewCompiler(rootPath)
	if c.Check() {
		report.DisplayInfoMessage("Checked", c.targetName)
	} else {
		os.Exit(1)
	}
}

// execEmitCommand executes the emit subcommand and handles all errors.
func execEmitCommand(result *olive.ArgParseResult) {
	rootPath, _ := result.PrimaryArg()

	c := NewCompiler(rootPath)
	if outPath, ok := result.Arguments["out"]; ok {
		c.outDir = outPath.(string)
	}

	if !c.Check() {
		os.Exit(1)
	}

	c.Emit()
}

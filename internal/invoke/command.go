package invoke

// Flags appended after the fixture path. The compiler parses them
// positionally, so their order is part of the contract.
const (
	FlagSilent = "-s"
	FlagStdout = "-stdout"
)

// BuildSubcommand is the compile-only mode used when no record exists.
const BuildSubcommand = "build"

// CaseCommand returns the command line that replays a recorded case:
//
//	<compiler> <subcommand> <fixture> -s [-stdout] <recorded argv...>
func CaseCommand(compiler, subcommand, fixture string, stdoutVariant bool, recorded []string) []string {
	argv := make([]string, 0, 6+len(recorded))
	argv = append(argv, compiler, subcommand, fixture, FlagSilent)
	if stdoutVariant {
		argv = append(argv, FlagStdout)
	}
	return append(argv, recorded...)
}

// BuildCommand returns the compile-only command line.
func BuildCommand(compiler, fixture string) []string {
	return []string{compiler, BuildSubcommand, fixture}
}

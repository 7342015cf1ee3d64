// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command dispatch for medibot.
//
// CLI: Comprehensive help and examples for all commands
package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"
	"sort"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdChat
	CmdAsk
	CmdSession
	CmdBMI
	CmdMood
	CmdCBT
	CmdSymptom
	CmdImage
	CmdSettings
	CmdSignUp
	CmdSignIn
	CmdSignOut
	CmdWhoAmI
	CmdEmergency
	CmdConsult
	CmdConfig
	CmdDoctor
	CmdVersion
	CmdHelp
	CmdUnknown
)

// commandSpec describes one command word.
type commandSpec struct {
	cmd Command
	// boolFlags are the command's flags that take no value.
	boolFlags []string
}

// commands maps every command word and alias to its spec.
var commands = map[string]commandSpec{
	"tui":       {cmd: CmdTUI},
	"chat":      {cmd: CmdChat},
	"ask":       {cmd: CmdAsk, boolFlags: []string{"raw"}},
	"session":   {cmd: CmdSession, boolFlags: []string{"yes", "y", "open"}},
	"sessions":  {cmd: CmdSession, boolFlags: []string{"yes", "y", "open"}},
	"bmi":       {cmd: CmdBMI},
	"mood":      {cmd: CmdMood},
	"cbt":       {cmd: CmdCBT},
	"symptom":   {cmd: CmdSymptom},
	"image":     {cmd: CmdImage},
	"img":       {cmd: CmdImage},
	"settings":  {cmd: CmdSettings, boolFlags: []string{"clear-avatar", "enable-2fa", "disable-2fa"}},
	"profile":   {cmd: CmdSettings, boolFlags: []string{"clear-avatar", "enable-2fa", "disable-2fa"}},
	"signup":    {cmd: CmdSignUp},
	"signin":    {cmd: CmdSignIn},
	"login":     {cmd: CmdSignIn},
	"signout":   {cmd: CmdSignOut, boolFlags: []string{"yes", "y"}},
	"logout":    {cmd: CmdSignOut, boolFlags: []string{"yes", "y"}},
	"whoami":    {cmd: CmdWhoAmI},
	"emergency": {cmd: CmdEmergency, boolFlags: []string{"call", "share-location"}},
	"sos":       {cmd: CmdEmergency, boolFlags: []string{"call", "share-location"}},
	"consult":   {cmd: CmdConsult},
	"config":    {cmd: CmdConfig},
	"doctor":    {cmd: CmdDoctor},
	"version":   {cmd: CmdVersion},
	"help":      {cmd: CmdHelp},
}

// commandWords returns every command word and alias, sorted.
func commandWords() []string {
	words := make([]string, 0, len(commands))
	for w := range commands {
		words = append(words, w)
	}
	sort.Strings(words)
	return words
}

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	ConfigPath string
	Backend    string
	Store      string
	Quiet      bool
	Verbose    bool
	JSON       bool

	// Unknown is the command word when it was not recognised.
	Unknown string

	// Flags holds the command's own arguments.
	Flags *ArgParser
}

const usageText = `medibot - medical assistant for the terminal

USAGE:
  medibot [global flags] [command]

COMMANDS:
  tui                      Chat UI (default)
  chat                     Line-editing chat (/new /sessions /load ID /delete ID
                           /image PATH /bmi W H /help /quit)
  ask QUERY                Ask one question and print the formatted answer
  session list             List archived conversations
  session show ID          Print an archived conversation
  session load ID          Make an archived conversation active
  session delete ID        Remove an archived conversation
  session clear            Archive the active conversation and start over
  session export [ID]      Export a conversation (--format md|json|html,
                           --output DIR, --open)
  bmi --weight KG --height CM
  mood --score N [--tag T]... DESCRIPTION
  cbt [--tried S] [--outcome S] CONCERN
  symptom --symptom S --severity N [--duration D] [--trigger T]...
          [--medications M] [--notes N] [--date YYYY-MM-DDTHH:MM]
  image PATH               Analyze a medical image
  settings                 Show the profile (--username NAME, --avatar PATH,
                           --clear-avatar, --enable-2fa, --disable-2fa)
  signup | signin | signout | whoami
  emergency                Emergency number (--call, --share-location)
  consult                  Consult-doctor request (prompts, or --field VALUE)
  config show|path|get KEY|set KEY VALUE
  doctor                   Check configuration, storage and the backend
  version | help

GLOBAL FLAGS:
  --config PATH            Config file (default: ~/.medibot/config.toml)
  --backend URL            Backend URL for this run
  --store file|sqlite|memory
  -q, --quiet              Less output
  -v, --verbose            Log to stderr
  --json                   Machine-readable output

EXAMPLES:
  medibot ask "I have a headache and a mild fever"
  medibot mood --score 4 --tag work --tag sleep "Tired and anxious"
  medibot session export active --format json
  medibot emergency --call

Version %s
`

// PrintUsage prints the usage text to w.
func PrintUsage(w io.Writer) {
	fmt.Fprintf(w, usageText, Version)
}

// PrintVersion prints version information to w.
func PrintVersion(w io.Writer) {
	fmt.Fprintf(w, "medibot version %s\n", Version)
	fmt.Fprintf(w, "  Git commit: %s\n", GitCommit)
	fmt.Fprintf(w, "  Build date: %s\n", BuildDate)
}

// Parse parses os.Args.
func Parse() (Command, Args) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs parses argv (without the program name) into a command and its
// arguments. Global flags may appear anywhere.
func ParseArgs(argv []string) (Command, Args) {
	remaining, args := parseGlobalFlags(argv)

	// If no remaining args, default to TUI
	if len(remaining) == 0 {
		args.Flags = NewArgParser(nil)
		return CmdTUI, args
	}

	word := strings.ToLower(remaining[0])
	switch word {
	case "-h", "--help":
		word = "help"
	case "--version":
		word = "version"
	}

	spec, ok := commands[word]
	if !ok {
		args.Unknown = remaining[0]
		args.Flags = NewArgParser(remaining[1:])
		return CmdUnknown, args
	}
	args.Flags = NewArgParser(remaining[1:], spec.boolFlags...)
	return spec.cmd, args
}

// parseGlobalFlags extracts global flags from args and returns remaining args.
func parseGlobalFlags(argv []string) ([]string, Args) {
	var remaining []string
	var args Args

	valueFlags := map[string]*string{
		"--config":  &args.ConfigPath,
		"--backend": &args.Backend,
		"--store":   &args.Store,
	}

	for i := 0; i < len(argv); i++ {
		arg := argv[i]

		if arg == "--" {
			remaining = append(remaining, argv[i:]...)
			break
		}

		switch arg {
		case "-q", "--quiet":
			args.Quiet = true
			continue
		case "-v", "--verbose":
			args.Verbose = true
			continue
		case "--json":
			args.JSON = true
			continue
		}

		name, value, hasValue := strings.Cut(arg, "=")
		if dst, ok := valueFlags[name]; ok {
			if hasValue {
				*dst = value
			} else if i+1 < len(argv) {
				i++
				*dst = argv[i]
			}
			continue
		}

		remaining = append(remaining, arg)
	}

	return remaining, args
}

// =============================================================================
// COMMAND DISPATCH
// =============================================================================

// Run executes a parsed non-TUI command. Errors are returned for the caller
// to print with DisplayError and turn into an exit code with GetExitCode.
func Run(cmd Command, args Args) error {
	configureLogging(args.Verbose)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch cmd {
	case CmdHelp:
		PrintUsage(os.Stdout)
		return nil
	case CmdVersion:
		return handleVersion(os.Stdout, args.JSON)
	case CmdUnknown:
		return unknownCommand(args.Unknown)
	case CmdConfig:
		return HandleConfig(os.Stdout, args)
	case CmdDoctor:
		return HandleDoctor(ctx, os.Stdout, args)
	case CmdTUI:
		return &UsageError{Message: "the chat UI is started by the main program"}
	}

	app, err := Open(args)
	if err != nil {
		return err
	}
	defer app.Close()

	return app.Dispatch(ctx, cmd, args.Flags)
}

// Dispatch runs cmd against an open app.
func (a *App) Dispatch(ctx context.Context, cmd Command, p *ArgParser) error {
	switch cmd {
	case CmdChat:
		return a.RunChat(ctx)
	case CmdAsk:
		return a.RunAsk(ctx, p)
	case CmdSession:
		return a.RunSession(p)
	case CmdBMI:
		return a.RunBMI(ctx, p)
	case CmdMood:
		return a.RunMood(ctx, p)
	case CmdCBT:
		return a.RunCBT(ctx, p)
	case CmdSymptom:
		return a.RunSymptom(ctx, p)
	case CmdImage:
		return a.RunImage(ctx, p)
	case CmdSettings:
		return a.RunSettings(p)
	case CmdSignUp:
		return a.RunSignUp(ctx, p)
	case CmdSignIn:
		return a.RunSignIn(ctx, p)
	case CmdSignOut:
		return a.RunSignOut(p)
	case CmdWhoAmI:
		return a.RunWhoAmI()
	case CmdEmergency:
		return a.RunEmergency(ctx, p)
	case CmdConsult:
		return a.RunConsult(p)
	default:
		return &UsageError{Message: fmt.Sprintf("command %d cannot run here", cmd)}
	}
}

// configureLogging sends log output to stderr when verbose, else drops it.
func configureLogging(verbose bool) {
	if verbose {
		log.SetOutput(os.Stderr)
		log.SetFlags(log.LstdFlags)
		return
	}
	log.SetOutput(io.Discard)
}

func unknownCommand(word string) error {
	msg := fmt.Sprintf("unknown command %q", word)
	if s := SuggestCommand(word); s != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", s)
	}
	return &UsageError{Message: msg + "; run 'medibot help' for usage"}
}

func handleVersion(w io.Writer, jsonMode bool) error {
	if jsonMode {
		return NewJSONResponse("version", VersionData{
			Version:   Version,
			GitCommit: GitCommit,
			BuildDate: BuildDate,
			GoVersion: runtime.Version(),
			Platform:  runtime.GOOS + "/" + runtime.GOARCH,
		}).Write(w)
	}
	PrintVersion(w)
	return nil
}

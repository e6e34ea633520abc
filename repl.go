package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/mrdg/hexpiano/audio"
	"github.com/mrdg/hexpiano/dub"
	"github.com/mrdg/hexpiano/midi"
)

type env struct {
	inst *audio.Instrument
	midi *midi.Input
	seed int64
}

// eval runs the semicolon separated commands in input and returns their
// output. It stops at the first failing command.
func (e *env) eval(input string) (string, error) {
	cmds, err := dub.ParseScript(input)
	if err != nil {
		return "", err
	}
	var results []string
	for _, cmd := range cmds {
		result, err := e.exec(cmd)
		if result != "" {
			results = append(results, result)
		}
		if err != nil {
			return strings.Join(results, "\n"), err
		}
	}
	return strings.Join(results, "\n"), nil
}

func (e *env) exec(command dub.Command) (string, error) {
	name := string(command.Name)
	if name == "help" {
		return usage(), nil
	}
	for _, cmd := range commands {
		if name != cmd.name {
			continue
		}
		if n := len(command.Args); n < cmd.minArgs || (cmd.maxArgs >= 0 && n > cmd.maxArgs) {
			return "", fmt.Errorf("%s: wrong number of arguments, usage: %s", cmd.name, cmd.usage)
		}
		result, err := cmd.run(e, command.Args)
		if err != nil {
			return result, fmt.Errorf("%s error: %w", cmd.name, err)
		}
		return result, nil
	}
	return "", fmt.Errorf("unknown command: %s", name)
}

func completer() *readline.PrefixCompleter {
	var items []readline.PrefixCompleterInterface
	for _, cmd := range commands {
		items = append(items, readline.PcItem(cmd.name))
	}
	items = append(items, readline.PcItem("help"))
	return readline.NewPrefixCompleter(items...)
}

func repl(env *env) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:       "> ",
		AutoComplete: completer(),
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err == io.EOF || err == readline.ErrInterrupt {
			return io.EOF
		}
		if err != nil {
			fmt.Println(err)
			continue
		}
		if len(strings.TrimSpace(line)) == 0 {
			continue
		}
		if result, err := env.eval(line); err != nil {
			fmt.Println(err)
		} else if result != "" {
			fmt.Println(result)
		}
	}
}

// readArgs copies args into slots. Trailing slots without an argument are
// left untouched, so they can hold defaults.
func readArgs(args []dub.Node, slots ...interface{}) error {
	if len(args) > len(slots) {
		return errors.New("too many arguments")
	}
	for n, arg := range args {
		dest := slots[n]
		switch p := dest.(type) {
		case *string:
			switch s := arg.(type) {
			case dub.String:
				*p = string(s)
			case dub.Identifier:
				*p = string(s)
			default:
				return fmt.Errorf("argument error: expected a string or identifier")
			}
		case *float64:
			switch n := arg.(type) {
			case dub.Int:
				*p = float64(n)
			case dub.Float:
				*p = float64(n)
			default:
				return fmt.Errorf("argument error: expected a number")
			}
		case *int:
			n, ok := arg.(dub.Int)
			if !ok {
				return fmt.Errorf("argument error: expected an integer")
			}
			*p = int(n)
		case *dub.MatchExpr:
			expr, ok := arg.(dub.MatchExpr)
			if !ok {
				return fmt.Errorf("argument error: expected a match expression")
			}
			*p = expr
		default:
			panic("readArgs: unhandled destination type: " + fmt.Sprint(p))
		}
	}
	return nil
}

// value converts a literal argument to a property value.
func value(arg dub.Node) (interface{}, error) {
	switch v := arg.(type) {
	case dub.Int:
		return int(v), nil
	case dub.Float:
		return float64(v), nil
	case dub.String:
		return string(v), nil
	case dub.Identifier:
		return string(v), nil
	default:
		return nil, fmt.Errorf("unsupported property type: %v", v)
	}
}

func words(args []dub.Node) ([]string, error) {
	out := make([]string, len(args))
	for i := range args {
		if err := readArgs(args[i:i+1], &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

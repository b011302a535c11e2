package uci

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ChizhovVadim/CounterTM/pkg/common"
)

var (
	errCommandNotFound = errors.New("command not found")
	errSearchRunning   = errors.New("search still run")
)

type Engine interface {
	Prepare()
	Clear()
	Search(ctx context.Context, searchParams common.SearchParams) common.SearchInfo
}

type Protocol struct {
	name         string
	author       string
	version      string
	options      []Option
	engine       Engine
	logger       zerolog.Logger
	out          io.Writer
	positions    []common.Position
	thinking     bool
	engineOutput chan common.SearchInfo
	cancel       context.CancelFunc
	ponderHit    chan struct{}
}

func New(name, author, version string, engine Engine, options []Option, logger zerolog.Logger) *Protocol {
	var initPosition, err = common.NewPositionFromFEN(common.InitialPositionFen)
	if err != nil {
		panic(err)
	}
	return &Protocol{
		name:      name,
		author:    author,
		version:   version,
		engine:    engine,
		options:   options,
		logger:    logger,
		out:       os.Stdout,
		positions: []common.Position{initPosition},
	}
}

func (uci *Protocol) Run(in io.Reader) {
	var commands = make(chan string)

	go func() {
		defer close(commands)
		readCommands(in, commands)
	}()

	var searchResult common.SearchInfo
	for {
		select {
		case si, ok := <-uci.engineOutput:
			if ok {
				fmt.Fprintln(uci.out, searchInfoToUci(si))
				searchResult = si
			} else {
				uci.finishSearch(searchResult)
				searchResult = common.SearchInfo{}
			}
		case commandLine, ok := <-commands:
			if !ok {
				//uci quit
				if uci.cancel != nil {
					uci.cancel()
				}
				return
			}
			var err = uci.handle(commandLine)
			if err != nil {
				uci.logger.Warn().Err(err).Str("command", commandLine).Msg("uci command failed")
			}
		}
	}
}

func readCommands(in io.Reader, commands chan<- string) {
	var scanner = bufio.NewScanner(in)
	for scanner.Scan() {
		var commandLine = scanner.Text()
		if commandLine == "quit" {
			return
		}
		if commandLine != "" {
			commands <- commandLine
		}
	}
}

func (uci *Protocol) finishSearch(si common.SearchInfo) {
	if len(si.MainLine) >= 2 {
		fmt.Fprintf(uci.out, "bestmove %v ponder %v\n", si.MainLine[0].String(), si.MainLine[1].String())
	} else if len(si.MainLine) != 0 {
		fmt.Fprintf(uci.out, "bestmove %v\n", si.MainLine[0].String())
	}
	uci.thinking = false
	uci.cancel = nil
	uci.ponderHit = nil
	uci.engineOutput = nil
}

func (uci *Protocol) handle(commandLine string) error {
	var fields = strings.Fields(commandLine)
	if len(fields) == 0 {
		return nil
	}
	var commandName = fields[0]
	fields = fields[1:]

	if uci.thinking {
		switch commandName {
		case "stop":
			uci.cancel()
			return nil
		case "ponderhit":
			if uci.ponderHit != nil {
				close(uci.ponderHit)
				uci.ponderHit = nil
			}
			return nil
		case "isready":
			fmt.Fprintln(uci.out, "readyok")
			return nil
		}
		return fmt.Errorf("%v: %w", commandName, errSearchRunning)
	}

	var h func(fields []string) error

	switch commandName {
	case "uci":
		h = uci.uciCommand
	case "setoption":
		h = uci.setOptionCommand
	case "isready":
		h = uci.isReadyCommand
	case "position":
		h = uci.positionCommand
	case "go":
		h = uci.goCommand
	case "ucinewgame":
		h = uci.uciNewGameCommand
	case "stop", "ponderhit":
		// late stop after the search already finished
		return nil
	}

	if h == nil {
		return fmt.Errorf("%v: %w", commandName, errCommandNotFound)
	}

	return h(fields)
}

func (uci *Protocol) uciCommand(fields []string) error {
	fmt.Fprintf(uci.out, "id name %s %s\n", uci.name, uci.version)
	fmt.Fprintf(uci.out, "id author %s\n", uci.author)
	for _, option := range uci.options {
		fmt.Fprintln(uci.out, option.UciString())
	}
	fmt.Fprintln(uci.out, "uciok")
	return nil
}

// setoption name <id> [value <x>]. The name may contain spaces.
func (uci *Protocol) setOptionCommand(fields []string) error {
	if len(fields) < 2 || fields[0] != "name" {
		return errors.New("invalid setoption arguments")
	}
	var valueIndex = findIndexString(fields, "value")
	var name, value string
	if valueIndex == -1 {
		name = strings.Join(fields[1:], " ")
	} else {
		name = strings.Join(fields[1:valueIndex], " ")
		value = strings.Join(fields[valueIndex+1:], " ")
	}
	for _, option := range uci.options {
		if strings.EqualFold(option.UciName(), name) {
			return option.Set(value)
		}
	}
	return fmt.Errorf("unhandled option %q", name)
}

func (uci *Protocol) isReadyCommand(fields []string) error {
	uci.engine.Prepare()
	fmt.Fprintln(uci.out, "readyok")
	return nil
}

func (uci *Protocol) positionCommand(fields []string) error {
	var args = fields
	if len(args) == 0 {
		return errors.New("invalid position arguments")
	}
	var token = args[0]
	var fen string
	var movesIndex = findIndexString(args, "moves")
	if token == "startpos" {
		fen = common.InitialPositionFen
	} else if token == "fen" {
		if movesIndex == -1 {
			fen = strings.Join(args[1:], " ")
		} else {
			fen = strings.Join(args[1:movesIndex], " ")
		}
	} else {
		return errors.New("unknown position command")
	}
	var p, err = common.NewPositionFromFEN(fen)
	if err != nil {
		return err
	}
	var positions = []common.Position{p}
	if movesIndex >= 0 && movesIndex+1 < len(args) {
		for _, smove := range args[movesIndex+1:] {
			var newPos, ok = positions[len(positions)-1].MakeMoveLAN(smove)
			if !ok {
				return fmt.Errorf("parse move failed %v", smove)
			}
			positions = append(positions, newPos)
		}
	}
	uci.positions = positions
	return nil
}

func (uci *Protocol) goCommand(fields []string) error {
	var limits, err = parseLimits(fields)
	if err != nil {
		return err
	}
	limits.StartTime = time.Now()
	var ctx, cancel = context.WithCancel(context.Background())
	uci.cancel = cancel
	uci.thinking = true
	var ponderHit chan struct{}
	if limits.Ponder {
		ponderHit = make(chan struct{})
	}
	uci.ponderHit = ponderHit
	var engineOutput = make(chan common.SearchInfo, 3)
	uci.engineOutput = engineOutput
	var positions = uci.positions
	go func() {
		defer cancel()
		var searchResult = uci.engine.Search(ctx, common.SearchParams{
			Positions: positions,
			Limits:    limits,
			PonderHit: ponderHit,
			Progress: func(si common.SearchInfo) {
				select {
				case engineOutput <- si:
				default:
				}
			},
		})
		engineOutput <- searchResult
		close(engineOutput)
	}()
	return nil
}

func (uci *Protocol) uciNewGameCommand(fields []string) error {
	uci.engine.Clear()
	return nil
}

func searchInfoToUci(si common.SearchInfo) string {
	var sb = &strings.Builder{}
	fmt.Fprintf(sb, "info depth %v", si.Depth)
	if si.Score.Mate != 0 {
		fmt.Fprintf(sb, " score mate %v", si.Score.Mate)
	} else {
		fmt.Fprintf(sb, " score cp %v", si.Score.Centipawns)
	}
	var timeMs = si.Time.Milliseconds()
	var nps = si.Nodes * 1000 / (timeMs + 1)
	fmt.Fprintf(sb, " nodes %v time %v nps %v", si.Nodes, timeMs, nps)
	if si.Hashfull != 0 {
		fmt.Fprintf(sb, " hashfull %v", si.Hashfull)
	}
	if len(si.MainLine) != 0 {
		fmt.Fprintf(sb, " pv")
		for i := range si.MainLine {
			sb.WriteString(" ")
			sb.WriteString(si.MainLine[i].String())
		}
	}
	return sb.String()
}

func parseLimits(args []string) (result common.LimitsType, err error) {
	var next = func(i int) (string, error) {
		if i+1 >= len(args) {
			return "", fmt.Errorf("go %v: missing value", args[i])
		}
		return args[i+1], nil
	}
	var parseInt = func(i int) (int64, error) {
		var s, err = next(i)
		if err != nil {
			return 0, err
		}
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("go %v: %w", args[i], err)
		}
		return v, nil
	}
	for i := 0; i < len(args); i++ {
		var v int64
		switch args[i] {
		case "ponder":
			result.Ponder = true
			continue
		case "infinite":
			result.Infinite = true
			continue
		case "wtime", "btime", "winc", "binc", "movestogo", "depth", "nodes", "mate", "movetime":
			v, err = parseInt(i)
			if err != nil {
				return common.LimitsType{}, err
			}
		default:
			continue
		}
		switch args[i] {
		case "wtime":
			result.Time[common.White] = clampClock(v)
		case "btime":
			result.Time[common.Black] = clampClock(v)
		case "winc":
			result.Inc[common.White] = v
		case "binc":
			result.Inc[common.Black] = v
		case "movestogo":
			result.MovesToGo = int(v)
		case "depth":
			result.Depth = int(v)
		case "nodes":
			result.Nodes = v
		case "mate":
			result.Mate = int(v)
		case "movetime":
			result.MoveTime = int(v)
		}
		i++
	}
	return result, nil
}

// Some GUIs send a negative clock once the flag has fallen.
func clampClock(v int64) int64 {
	if v < 0 {
		return 1
	}
	return v
}

func findIndexString(slice []string, value string) int {
	for p, v := range slice {
		if v == value {
			return p
		}
	}
	return -1
}

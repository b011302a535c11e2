package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/freeeve/pgn/v3"
	"github.com/rs/zerolog"

	"github.com/ChizhovVadim/CounterTM/internal/config"
	"github.com/ChizhovVadim/CounterTM/internal/logx"
	"github.com/ChizhovVadim/CounterTM/pkg/timeman"
	"github.com/ChizhovVadim/CounterTM/pkg/tune"
)

func main() {
	var (
		flgTC        = flag.String("tc", "60+0.6", "time control in seconds, base+inc")
		flgMovesToGo = flag.Int("movestogo", 0, "moves per period, 0 is sudden death")
		flgOverhead  = flag.Int("overhead", timeman.DefaultOptions().MoveOverhead, "move overhead in milliseconds")
		flgNodesTime = flag.Int("nodestime", 0, "nodes per millisecond")
		flgPonder    = flag.Bool("ponder", false, "ponder extension")
		flgHorizon   = flag.String("horizon", config.HorizonFixed, "moves horizon: fixed or decile")
		flgPlies     = flag.Int("plies", 160, "game length in plies")
		flgPGN       = flag.String("pgn", "", "replay the game lengths of a PGN file")
		flgLog       = flag.String("log", "info", "log level")
	)
	flag.Parse()

	var logger = logx.New(logx.ParseLevel(*flgLog))

	var tc, err = parseTimeControl(*flgTC)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse time control")
	}
	var cfg = config.Default()
	cfg.Horizon = *flgHorizon
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("bad configuration")
	}

	var s = settings{
		tc:        tc,
		movesToGo: *flgMovesToGo,
		opts: timeman.Options{
			MoveOverhead: *flgOverhead,
			NodesTime:    *flgNodesTime,
			Ponder:       *flgPonder,
		},
		horizon: func() timeman.HorizonPolicy {
			if cfg.Horizon == config.HorizonDecile {
				return timeman.NewDecileHorizon(tune.NewTable())
			}
			return timeman.FixedHorizon(timeman.MaxHorizon)
		},
	}

	if *flgPGN != "" {
		if err := replayPGN(*flgPGN, s, os.Stdout, logger); err != nil {
			logger.Fatal().Err(err).Str("file", *flgPGN).Msg("replay pgn")
		}
		return
	}

	fmt.Printf("%6v %10v %10v %10v\n", "ply", "remaining", "optimum", "maximum")
	var result = simulate(s, *flgPlies, func(st step) {
		fmt.Printf("%6v %10v %10v %10v\n", st.ply, st.remaining, st.optimum, st.maximum)
	})
	logger.Info().
		Str("tc", tc.String()).
		Int("moves", result.moves).
		Int64("remaining", result.remaining).
		Int64("lowest", result.lowest).
		Bool("flagged", result.flagged).
		Msg("simulation finished")
}

// replayPGN simulates the clock of every game in the file with the length of
// that game and its TimeControl tag when present.
func replayPGN(path string, s settings, w io.Writer, logger zerolog.Logger) error {
	var parser = pgn.Games(path)
	var games, flagged int
	for game := range parser.Games {
		games++
		var gs = s
		if tag := game.Tags["TimeControl"]; tag != "" {
			if tc, err := parseTimeControl(tag); err == nil {
				gs.tc = tc
			} else {
				logger.Debug().Err(err).Int("game", games).Msg("default time control")
			}
		}
		var result = simulate(gs, len(game.Moves), nil)
		if result.flagged {
			flagged++
		}
		fmt.Fprintf(w, "game %v plies %v tc %v remaining %v lowest %v flagged %v\n",
			games, len(game.Moves), gs.tc, result.remaining, result.lowest, result.flagged)
	}
	if err := parser.Err(); err != nil {
		return err
	}
	logger.Info().
		Int("games", games).
		Int("flagged", flagged).
		Msg("pgn replay finished")
	return nil
}

package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"

	"github.com/ChizhovVadim/CounterTM/internal/config"
	"github.com/ChizhovVadim/CounterTM/internal/logx"
	"github.com/ChizhovVadim/CounterTM/pkg/engine"
	eval "github.com/ChizhovVadim/CounterTM/pkg/eval/material"
	"github.com/ChizhovVadim/CounterTM/pkg/timeman"
	"github.com/ChizhovVadim/CounterTM/pkg/tune"
	"github.com/ChizhovVadim/CounterTM/pkg/uci"
)

/*
Counter Copyright (C) 2017-2023 Vadim Chizhov
This program is free software: you can redistribute it and/or modify it under the terms of the GNU General Public License as published by the Free Software Foundation, either version 3 of the License, or (at your option) any later version.
This program is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the GNU General Public License for more details.
You should have received a copy of the GNU General Public License along with this program. If not, see <http://www.gnu.org/licenses/>.
*/

const (
	name   = "Counter"
	author = "Vadim Chizhov"
)

var (
	versionName = "dev"
	buildDate   = "(null)"
	gitRevision = "(null)"
)

const evalCacheSize = 1 << 16

func main() {
	var cfg, err = config.Load(".env")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var flgSPSA bool
	flag.IntVar(&cfg.Hash, "hash", cfg.Hash, "transposition table size in MB")
	flag.IntVar(&cfg.Threads, "threads", cfg.Threads, "search threads")
	flag.IntVar(&cfg.MoveOverhead, "overhead", cfg.MoveOverhead, "move overhead in milliseconds")
	flag.IntVar(&cfg.NodesTime, "nodestime", cfg.NodesTime, "nodes per millisecond, 0 uses the wall clock")
	flag.BoolVar(&cfg.Ponder, "ponder", cfg.Ponder, "pondering is enabled")
	flag.StringVar(&cfg.Horizon, "horizon", cfg.Horizon, "moves horizon: fixed or decile")
	flag.BoolVar(&cfg.EvalBias, "evalbias", cfg.EvalBias, "spend more time in worse positions")
	flag.StringVar(&cfg.LogLevel, "log", cfg.LogLevel, "log level")
	flag.BoolVar(&flgSPSA, "spsa", false, "print tuning parameters for SPSA and exit")
	flag.Parse()

	var logger = logx.New(logx.ParseLevel(cfg.LogLevel))
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("bad configuration")
	}

	logger.Info().
		Str("VersionName", versionName).
		Str("BuildDate", buildDate).
		Str("GitRevision", gitRevision).
		Str("RuntimeVersion", runtime.Version()).
		Str("GOARCH", runtime.GOARCH).
		Str("GOOS", runtime.GOOS).
		Int("NumCPU", runtime.NumCPU()).
		Msg(name)

	var table = tune.NewTable()
	var horizon timeman.HorizonPolicy = timeman.FixedHorizon(timeman.MaxHorizon)
	if cfg.Horizon == config.HorizonDecile {
		horizon = timeman.NewDecileHorizon(table)
	}

	evaluator, err := eval.NewCached(eval.NewEvaluationService(), evalCacheSize)
	if err != nil {
		logger.Fatal().Err(err).Msg("create evaluation cache")
	}

	var bias timeman.BiasPolicy = timeman.NoBias{}
	if cfg.EvalBias {
		bias = timeman.NewEvalBias(table, evaluator)
	}

	if flgSPSA {
		if err := table.WriteSPSA(os.Stdout); err != nil {
			logger.Fatal().Err(err).Msg("write spsa")
		}
		return
	}

	var options = engine.NewOptions()
	options.Hash = cfg.Hash
	options.Threads = cfg.Threads
	options.MoveOverhead = cfg.MoveOverhead
	options.NodesTime = cfg.NodesTime
	options.Ponder = cfg.Ponder
	var eng = engine.NewEngine(options, timeman.New(horizon, bias), evaluator, logger)

	var protocol = uci.New(name, author, versionName, eng,
		append([]uci.Option{
			&uci.IntOption{Name: "Hash", Min: 4, Max: 1 << 16, Value: &eng.Options.Hash},
			&uci.IntOption{Name: "Threads", Min: 1, Max: runtime.NumCPU(), Value: &eng.Options.Threads},
			&uci.IntOption{Name: "Move Overhead", Min: 0, Max: 5000, Value: &eng.Options.MoveOverhead},
			&uci.IntOption{Name: "nodestime", Min: 0, Max: 10000, Value: &eng.Options.NodesTime},
			&uci.BoolOption{Name: "Ponder", Value: &eng.Options.Ponder},
		}, uci.TuneOptions(table)...),
		logger,
	)
	protocol.Run(os.Stdin)
}

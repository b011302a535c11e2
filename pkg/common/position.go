package common

import (
	"fmt"
	"math/bits"
	"strings"

	"github.com/dylhunn/dragontoothmg"
)

type Move = dragontoothmg.Move

const MoveEmpty Move = 0

const InitialPositionFen = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// Position is a dragontoothmg board plus the helpers the engine needs.
type Position struct {
	dragontoothmg.Board
}

func NewPositionFromFEN(fen string) (p Position, err error) {
	var tokens = strings.Fields(fen)
	if len(tokens) < 4 {
		return Position{}, fmt.Errorf("parse fen failed %v", fen)
	}
	// halfmove clock and fullmove number are optional in EPD-style input
	for len(tokens) < 6 {
		if len(tokens) == 4 {
			tokens = append(tokens, "0")
		} else {
			tokens = append(tokens, "1")
		}
	}
	defer func() {
		if r := recover(); r != nil {
			p = Position{}
			err = fmt.Errorf("parse fen failed %v: %v", fen, r)
		}
	}()
	p.Board = dragontoothmg.ParseFen(strings.Join(tokens[:6], " "))
	if bits.OnesCount64(p.White.Kings) != 1 || bits.OnesCount64(p.Black.Kings) != 1 {
		return Position{}, fmt.Errorf("parse fen failed %v: bad kings", fen)
	}
	return p, nil
}

func (p *Position) SideToMove() Color {
	if p.Wtomove {
		return White
	}
	return Black
}

// GamePly counts half-moves from the start of the game.
func (p *Position) GamePly() int {
	var ply = 2 * (int(p.Fullmoveno) - 1)
	if !p.Wtomove {
		ply++
	}
	return Max(ply, 0)
}

func (p *Position) Key() uint64 {
	return p.Hash()
}

func (p *Position) IsCheck() bool {
	return p.OurKingInCheck()
}

func (p *Position) Rule50() int {
	return int(p.Halfmoveclock)
}

// IsCapture reports whether the move lands on an enemy piece.
func (p *Position) IsCapture(m Move) bool {
	var them = &p.Black
	if !p.Wtomove {
		them = &p.White
	}
	return them.All&(uint64(1)<<m.To()) != 0
}

// PieceValueAt returns the material value of the piece on sq or 0.
func (p *Position) PieceValueAt(sq uint8) int {
	var bb = uint64(1) << sq
	for _, side := range [...]*dragontoothmg.Bitboards{&p.White, &p.Black} {
		if side.All&bb == 0 {
			continue
		}
		switch {
		case side.Pawns&bb != 0:
			return PawnValue
		case side.Knights&bb != 0:
			return KnightValue
		case side.Bishops&bb != 0:
			return BishopValue
		case side.Rooks&bb != 0:
			return RookValue
		case side.Queens&bb != 0:
			return QueenValue
		}
	}
	return 0
}

func (p *Position) MakeMoveLAN(lan string) (Position, bool) {
	for _, m := range p.GenerateLegalMoves() {
		if strings.EqualFold(m.String(), lan) {
			var child = *p
			child.Apply(m)
			return child, true
		}
	}
	return Position{}, false
}

const (
	PawnValue   = 100
	KnightValue = 400
	BishopValue = 400
	RookValue   = 600
	QueenValue  = 1200
)

package vm

import "github.com/StephenCrawley/krua/pkg/kerr"

// The error kinds and constructors are aliased from package kerr, which
// holds them so the compiler package can signal errors without importing
// vm (which itself needs to call compiler.Load from Eval).
type ErrKind = kerr.Kind
type Error = kerr.Error

const (
	ErrParse  = kerr.Parse
	ErrType   = kerr.Type
	ErrLength = kerr.Length
	ErrValue  = kerr.Value
	ErrRank   = kerr.Rank
	ErrNyi    = kerr.Nyi
)

var (
	ParseErr  = kerr.ParseErr
	TypeErr   = kerr.TypeErr
	LengthErr = kerr.LengthErr
	ValueErr  = kerr.ValueErr
	RankErr   = kerr.RankErr
	NyiErr    = kerr.NyiErr
	Perror    = kerr.Perror
	symName   = kerr.SymName
)

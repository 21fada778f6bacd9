package transfer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/transactionflow-billing/internal/domain/shared"
)

// Mode selects how the sender and receiver references of a transfer are interpreted
type Mode int

const (
	ModeCtoC Mode = iota // customer to customer, main account on both sides
	ModeAtoA             // explicit account to explicit account
	ModeCtoA             // sender customer's main account to an explicit account
	ModeAtoC             // explicit account to the receiver customer's main account
)

// RefKind says what a participant reference points at
type RefKind int

const (
	RefAccount  RefKind = iota // the reference is an account id
	RefCustomer                // the reference is a customer id resolved to its main account
)

type route struct {
	sender   RefKind
	receiver RefKind
}

var routes = [...]route{
	ModeCtoC: {sender: RefCustomer, receiver: RefCustomer},
	ModeAtoA: {sender: RefAccount, receiver: RefAccount},
	ModeCtoA: {sender: RefCustomer, receiver: RefAccount},
	ModeAtoC: {sender: RefAccount, receiver: RefCustomer},
}

var modeNames = [...]string{
	ModeCtoC: "CtoC",
	ModeAtoA: "AtoA",
	ModeCtoA: "CtoA",
	ModeAtoC: "AtoC",
}

// Route returns how the sender and receiver references are resolved for m
func (m Mode) Route() (sender, receiver RefKind, err error) {
	if !m.Valid() {
		return 0, 0, fmt.Errorf("%w: unknown transfer mode %d", shared.ErrIndexOutOfRange, int(m))
	}
	r := routes[m]
	return r.sender, r.receiver, nil
}

// Valid reports whether m is one of the four routing modes
func (m Mode) Valid() bool {
	return m >= ModeCtoC && int(m) < len(routes)
}

func (m Mode) String() string {
	if !m.Valid() {
		return "Mode(" + strconv.Itoa(int(m)) + ")"
	}
	return modeNames[m]
}

// ParseMode accepts a mode name such as "CtoA" (case-insensitive) or its ordinal "0".."3"
func ParseMode(s string) (Mode, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		m := Mode(n)
		if !m.Valid() {
			return 0, fmt.Errorf("%w: transfer mode %d", shared.ErrIndexOutOfRange, n)
		}
		return m, nil
	}
	for i, name := range modeNames {
		if strings.EqualFold(name, s) {
			return Mode(i), nil
		}
	}
	return 0, fmt.Errorf("%w: transfer mode %q", shared.ErrIncorrectFormat, s)
}

// MarshalText encodes the mode by name
func (m Mode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: unknown transfer mode %d", shared.ErrIndexOutOfRange, int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText decodes a mode name or ordinal
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

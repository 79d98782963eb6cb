package entity

import "github.com/arbuzhub/casino-backend/pkg/enum"

type GameKind string

var (
	GameDice       = enum.New(GameKind("dice"))
	GameDiceSeven  = enum.New(GameKind("dice_7"))
	GameDart       = enum.New(GameKind("dart"))
	GameBowling    = enum.New(GameKind("bowling"))
	GameFootball   = enum.New(GameKind("football"))
	GameBasketball = enum.New(GameKind("basketball"))
	GameSlots      = enum.New(GameKind("slots"))
)

type CurrencyKind string

var (
	CurrencyReal = enum.New(CurrencyKind("real"))
	CurrencyDemo = enum.New(CurrencyKind("demo"))
)

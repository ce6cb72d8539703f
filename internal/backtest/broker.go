package backtest

import (
	"time"
)

type OrderSide string

const (
	SideBuy  OrderSide = "BUY"
	SideSell OrderSide = "SELL"
)

type OrderStatus string

const (
	StatusCompleted OrderStatus = "Completed"
	StatusMargin    OrderStatus = "Margin"
)

type Order struct {
	Date       time.Time   `yaml:"date" json:"date"`
	Side       OrderSide   `yaml:"side" json:"side"`
	Size       float64     `yaml:"size" json:"size"`
	Price      float64     `yaml:"price" json:"price"`
	Commission float64     `yaml:"commission" json:"commission"`
	Status     OrderStatus `yaml:"status" json:"status"`
}

// Broker fills market orders at a reference price adjusted by slippage, and
// keeps a single long position.
type Broker struct {
	cash       float64
	commission float64
	slippage   float64

	position  float64
	entryCost float64
}

func NewBroker(cash, commission, slippage float64) *Broker {
	return &Broker{cash: cash, commission: commission, slippage: slippage}
}

func (b *Broker) Cash() float64     { return b.cash }
func (b *Broker) Position() float64 { return b.position }

// Value is cash plus the position marked at price.
func (b *Broker) Value(price float64) float64 {
	return b.cash + b.position*price
}

// Buy opens or adds to the position. Orders the cash cannot cover are rejected
// with StatusMargin and leave the broker untouched.
func (b *Broker) Buy(date time.Time, ref, size float64) Order {
	price := ref * (1 + b.slippage)
	notional := size * price
	fee := notional * b.commission

	order := Order{Date: date, Side: SideBuy, Size: size, Price: price, Commission: fee}
	if size <= 0 || notional+fee > b.cash {
		order.Status = StatusMargin
		return order
	}

	b.cash -= notional + fee
	b.position += size
	b.entryCost += notional + fee
	order.Status = StatusCompleted
	return order
}

// Close sells the whole position and returns the order with the net pnl of the
// round trip.
func (b *Broker) Close(date time.Time, ref float64) (Order, float64) {
	price := ref * (1 - b.slippage)
	size := b.position
	proceeds := size * price
	fee := proceeds * b.commission

	pnl := proceeds - fee - b.entryCost
	b.cash += proceeds - fee
	b.position = 0
	b.entryCost = 0

	return Order{
		Date:       date,
		Side:       SideSell,
		Size:       size,
		Price:      price,
		Commission: fee,
		Status:     StatusCompleted,
	}, pnl
}

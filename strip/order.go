package strip

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Order is the sequence in which a strip expects the color channels of each
// pixel on the wire.
type Order uint8

// Channel orders found on common strips.
const (
	OrderRGB Order = iota
	OrderRBG
	OrderGRB // WS2812, WS2812B, SK6812
	OrderGBR
	OrderBRG
	OrderBGR
)

// channels maps each order to the R/G/B index sent first, second and third.
var channels = [...][3]int{
	OrderRGB: {0, 1, 2},
	OrderRBG: {0, 2, 1},
	OrderGRB: {1, 0, 2},
	OrderGBR: {1, 2, 0},
	OrderBRG: {2, 0, 1},
	OrderBGR: {2, 1, 0},
}

var orderNames = [...]string{
	OrderRGB: "RGB",
	OrderRBG: "RBG",
	OrderGRB: "GRB",
	OrderGBR: "GBR",
	OrderBRG: "BRG",
	OrderBGR: "BGR",
}

// Channels returns the R/G/B indices in wire order.
func (o Order) Channels() [3]int {
	if int(o) >= len(channels) {
		return channels[OrderRGB]
	}
	return channels[o]
}

func (o Order) String() string {
	if int(o) >= len(orderNames) {
		return "Order(" + strconv.Itoa(int(o)) + ")"
	}
	return orderNames[o]
}

// ParseOrder parses a channel order such as "GRB". It is case insensitive.
func ParseOrder(s string) (Order, error) {
	u := strings.ToUpper(strings.TrimSpace(s))
	for i, n := range orderNames {
		if n == u {
			return Order(i), nil
		}
	}
	return OrderRGB, errors.Errorf("strip: unknown channel order %q", s)
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *Order) UnmarshalText(text []byte) error {
	v, err := ParseOrder(string(text))
	if err != nil {
		return err
	}
	*o = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (o Order) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

package target

import (
	"errors"
	"strings"
)

// ErrInvalidChoice is returned for menu input outside the recognised options.
var ErrInvalidChoice = errors.New("invalid choice")

// Choice identifies one of the two mutually exclusive install targets.
type Choice string

const (
	TunnelAgent  Choice = "1"
	BridgeClient Choice = "2"
)

// Choices lists the menu entries in display order.
var Choices = []Choice{TunnelAgent, BridgeClient}

// aliases lets flags name a target instead of its menu number.
var aliases = map[string]Choice{
	"1":                  TunnelAgent,
	"tunnel":             TunnelAgent,
	"cloudflared":        TunnelAgent,
	"2":                  BridgeClient,
	"bridge":             BridgeClient,
	"cloudbridge-client": BridgeClient,
}

// ParseChoice maps raw operator input to a Choice.
func ParseChoice(raw string) (Choice, error) {
	c, ok := aliases[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		return "", ErrInvalidChoice
	}
	return c, nil
}

// Label is the menu text for a choice.
func (c Choice) Label() string {
	switch c {
	case TunnelAgent:
		return "Cloudflare tunnel (Zero Trust)"
	case BridgeClient:
		return "CloudBridge Client"
	default:
		return "unknown"
	}
}

// Key is the config-file key for a choice.
func (c Choice) Key() string {
	switch c {
	case TunnelAgent:
		return "tunnel"
	case BridgeClient:
		return "bridge"
	default:
		return ""
	}
}

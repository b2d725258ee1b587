package snapshot

import (
	"fmt"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/nba-props/internal/domain/prop"
	"github.com/valyala/bytebufferpool"
)

// EncodePlayers serializes a player collection into the playerData text field.
func EncodePlayers(players []prop.Player) (string, error) {
	if players == nil {
		players = []prop.Player{}
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := sonic.ConfigStd.NewEncoder(buf).Encode(players); err != nil {
		return "", fmt.Errorf("encode player data: %w", err)
	}
	out := buf.B
	if n := len(out); n > 0 && out[n-1] == '\n' {
		out = out[:n-1]
	}
	return string(out), nil
}

// DecodePlayers parses the playerData text field.
func DecodePlayers(payload string) ([]prop.Player, error) {
	var players []prop.Player
	if err := sonic.UnmarshalString(payload, &players); err != nil {
		return nil, fmt.Errorf("decode player data: %w", err)
	}
	if players == nil {
		return nil, fmt.Errorf("decode player data: payload is not an array")
	}
	return players, nil
}

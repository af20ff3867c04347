// internal/bot/commands.go
package bot

import (
	"errors"
	"strings"

	"github.com/quantfeed/solswap/internal/swap"
)

const swapUsage = "Usage: /swap [output_mint] [amount] [slippage % - default 10] [input_mint - default SOL]"

var errSwapUsage = errors.New(swapUsage)

// parseSwapCommand splits the /swap argument string into a swap request.
// Validation of the values themselves belongs to the orchestrator; this only
// checks that the required words are present.
func parseSwapCommand(args string) (swap.Request, error) {
	fields := strings.Fields(args)
	if len(fields) < 2 {
		return swap.Request{}, errSwapUsage
	}
	req := swap.Request{
		OutputMint: fields[0],
		AmountText: fields[1],
	}
	if len(fields) > 2 {
		req.SlippageText = fields[2]
	}
	if len(fields) > 3 {
		req.InputMint = fields[3]
	}
	return req, nil
}

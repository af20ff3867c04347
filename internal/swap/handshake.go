// internal/swap/handshake.go
package swap

import (
	"fmt"
	"strconv"
	"strings"
)

// PendingConfirmation is the state needed to re-derive exact execution
// parameters when the user confirms a previously shown quote. There is no
// server-side session store: the integer parameters travel inside the
// confirmation button payload and the two mints inside fixed marker lines of
// the prompt itself.
type PendingConfirmation struct {
	AmountRaw   uint64
	SlippageBps int
	InputMint   string
	OutputMint  string
}

const (
	handshakeVersion = "v1"

	// Telegram caps callback data at 64 bytes, which rules the mints out of
	// the payload. They ride in the prompt footer instead.
	fromMarker = "From: "
	toMarker   = "To: "
)

// CallbackData encodes the integer half of the handshake. The encoding is
// versioned and round-trips amountRaw and slippageBps exactly.
func (p PendingConfirmation) CallbackData() string {
	return fmt.Sprintf("%s:%d:%d", handshakeVersion, p.AmountRaw, p.SlippageBps)
}

// PromptFooter renders the marker lines that carry the two mints. The
// confirmation decoder reads them back by exact prefix match.
func (p PendingConfirmation) PromptFooter() string {
	return fmt.Sprintf("%s%s\n%s%s", fromMarker, p.InputMint, toMarker, p.OutputMint)
}

// DecodeConfirmation reconstructs a PendingConfirmation from a confirmation
// action. Decoding fails closed: any missing, malformed or out-of-range field
// is KindInvalidConfirmation, never a silent default.
func DecodeConfirmation(callbackData, promptText string) (PendingConfirmation, error) {
	var p PendingConfirmation

	parts := strings.Split(callbackData, ":")
	if len(parts) != 3 {
		return p, Errorf(KindInvalidConfirmation, "malformed callback payload")
	}
	if parts[0] != handshakeVersion {
		return p, Errorf(KindInvalidConfirmation, "unsupported handshake version %q", parts[0])
	}

	amountRaw, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return p, Errorf(KindInvalidConfirmation, "bad amount in callback payload: %v", err)
	}
	slippageBps, err := strconv.Atoi(parts[2])
	if err != nil {
		return p, Errorf(KindInvalidConfirmation, "bad slippage in callback payload: %v", err)
	}
	if slippageBps < 0 || slippageBps > 10_000 {
		return p, Errorf(KindInvalidConfirmation, "slippage %d bps out of range", slippageBps)
	}

	inputMint, outputMint, err := parsePromptMints(promptText)
	if err != nil {
		return p, err
	}

	p.AmountRaw = amountRaw
	p.SlippageBps = slippageBps
	p.InputMint = inputMint
	p.OutputMint = outputMint
	return p, nil
}

func parsePromptMints(promptText string) (inputMint, outputMint string, err error) {
	for _, line := range strings.Split(promptText, "\n") {
		switch {
		case strings.HasPrefix(line, fromMarker):
			inputMint = strings.TrimSpace(strings.TrimPrefix(line, fromMarker))
		case strings.HasPrefix(line, toMarker):
			outputMint = strings.TrimSpace(strings.TrimPrefix(line, toMarker))
		}
	}
	if inputMint == "" || outputMint == "" || strings.ContainsAny(inputMint, " \t") || strings.ContainsAny(outputMint, " \t") {
		return "", "", Errorf(KindInvalidConfirmation, "token markers missing from prompt")
	}
	return inputMint, outputMint, nil
}

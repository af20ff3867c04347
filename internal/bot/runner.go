// internal/bot/runner.go
package bot

import (
	"context"
	"fmt"

	solanago "github.com/gagliardetto/solana-go"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/quantfeed/solswap/internal/market"
	"github.com/quantfeed/solswap/internal/swap"
)

const startMessage = "Welcome to the Solana swap bot!\n\n" +
	"/balance - check your wallet balance\n" +
	"/swap - quote and execute a swap\n" +
	"/info [mint] - token price and pools\n"

// Config wires the bot's collaborators.
type Config struct {
	Token        string
	Orchestrator *swap.Orchestrator
	Balances     *BalanceService
	Market       *market.Client
	Owner        solanago.PublicKey
	Logger       *zap.Logger
}

// Bot is the Telegram front end. Each update is handled in its own
// goroutine, so independent swap pipelines run concurrently; the only shared
// state is the read-only signing key behind the orchestrator.
type Bot struct {
	api      *tgbotapi.BotAPI
	orch     *swap.Orchestrator
	balances *BalanceService
	market   *market.Client
	owner    solanago.PublicKey
	logger   *zap.Logger
}

func NewBot(cfg *Config) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Telegram: %w", err)
	}
	return &Bot{
		api:      api,
		orch:     cfg.Orchestrator,
		balances: cfg.Balances,
		market:   cfg.Market,
		owner:    cfg.Owner,
		logger:   cfg.Logger.Named("bot"),
	}, nil
}

// Run consumes updates until the context is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("bot starting", zap.String("username", b.api.Self.UserName))

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 30
	updates := b.api.GetUpdatesChan(updateConfig)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			go b.dispatch(ctx, update)
		}
	}
}

func (b *Bot) dispatch(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("update handler panicked", zap.Any("panic", r))
		}
	}()

	switch {
	case update.CallbackQuery != nil:
		b.handleConfirmation(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.IsCommand():
		b.handleCommand(ctx, update.Message)
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		b.reply(msg.Chat.ID, startMessage)
	case "swap":
		b.handleSwap(ctx, msg)
	case "balance":
		b.handleBalance(ctx, msg)
	case "info":
		b.handleInfo(ctx, msg)
	}
}

func (b *Bot) handleSwap(ctx context.Context, msg *tgbotapi.Message) {
	req, err := parseSwapCommand(msg.CommandArguments())
	if err != nil {
		b.reply(msg.Chat.ID, err.Error())
		return
	}

	preview, err := b.orch.PrepareQuote(ctx, req)
	if err != nil {
		b.logger.Warn("quote failed", zap.Error(err))
		b.reply(msg.Chat.ID, errorText(err))
		return
	}

	prompt := tgbotapi.NewMessage(msg.Chat.ID, renderQuote(preview))
	prompt.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Confirm Swap", preview.Pending.CallbackData()),
		),
	)
	if _, err := b.api.Send(prompt); err != nil {
		b.logger.Error("failed to send quote prompt", zap.Error(err))
	}
}

func (b *Bot) handleConfirmation(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if cq.Message == nil {
		return
	}
	chatID := cq.Message.Chat.ID

	pending, err := swap.DecodeConfirmation(cq.Data, cq.Message.Text)
	if err != nil {
		b.logger.Warn("confirmation decode failed", zap.Error(err))
		b.answerCallback(cq.ID, "Invalid confirmation")
		b.reply(chatID, errorText(err))
		return
	}

	b.answerCallback(cq.ID, "Processing swap...")

	// Drop the keyboard so the handshake is consumed exactly once.
	edit := tgbotapi.NewEditMessageText(chatID, cq.Message.MessageID,
		cq.Message.Text+"\n\nProcessing swap transaction...")
	if _, err := b.api.Send(edit); err != nil {
		b.logger.Warn("failed to edit prompt", zap.Error(err))
	}

	result, err := b.orch.ExecuteConfirmed(ctx, pending)
	if err != nil {
		b.logger.Warn("swap execution failed", zap.Error(err))
	}
	b.reply(chatID, renderResult(result, err))
}

func (b *Bot) handleBalance(ctx context.Context, msg *tgbotapi.Message) {
	entries, err := b.balances.Fetch(ctx, b.owner)
	if err != nil {
		b.logger.Error("balance fetch failed", zap.Error(err))
		b.reply(msg.Chat.ID, "Sorry, there was an error fetching the wallet balances. Please try again later.")
		return
	}
	b.reply(msg.Chat.ID, renderBalances(entries))
}

func (b *Bot) handleInfo(ctx context.Context, msg *tgbotapi.Message) {
	mint := msg.CommandArguments()
	if mint == "" {
		b.reply(msg.Chat.ID, "Please provide a token address.")
		return
	}
	pairs, err := b.market.TokenPairs(ctx, mint)
	if err != nil {
		b.logger.Error("token info fetch failed", zap.Error(err))
		b.reply(msg.Chat.ID, "Sorry, there was an error fetching the token info.")
		return
	}
	b.reply(msg.Chat.ID, renderPairs(mint, pairs))
}

func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("failed to send message", zap.Error(err))
	}
}

func (b *Bot) answerCallback(callbackID, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		b.logger.Warn("failed to answer callback", zap.Error(err))
	}
}

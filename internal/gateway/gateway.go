// Package gateway connects chat platforms to the turn engine. Each
// adapter normalizes its platform's messages; the gateway picks the
// addressed character, runs the turn, and sends the reply back styled
// with that character's persona.
package gateway

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/cymond/educhat/internal/character"
	"github.com/cymond/educhat/internal/engine"
)

// ChatEngine runs one conversation turn.
type ChatEngine interface {
	ProcessTurn(ctx context.Context, characterName, userID, message string) (*engine.TurnResult, error)
}

// Gateway manages platform adapters and routes user messages to characters.
type Gateway struct {
	adapters map[string]ChatAdapter
	engine   ChatEngine
	registry *character.Registry
	// defaultChar answers messages that don't address a character by name.
	defaultChar string
	mu          sync.RWMutex
	logger      *zap.Logger
}

// NewGateway creates a gateway routing inbound chat to the engine.
func NewGateway(eng ChatEngine, registry *character.Registry, defaultCharacter string, logger *zap.Logger) *Gateway {
	return &Gateway{
		adapters:    make(map[string]ChatAdapter),
		engine:      eng,
		registry:    registry,
		defaultChar: defaultCharacter,
		logger:      logger,
	}
}

// Register adds an adapter and wires its messages into the engine.
func (g *Gateway) Register(adapter ChatAdapter) {
	g.mu.Lock()
	defer g.mu.Unlock()

	platform := adapter.Platform()
	g.adapters[platform] = adapter
	adapter.OnMessage(g.handleInbound)
	g.logger.Info("registered gateway adapter", zap.String("platform", platform))
}

// ConnectAll starts all registered adapters.
func (g *Gateway) ConnectAll(ctx context.Context) error {
	g.mu.RLock()
	defer g.mu.RUnlock()

	for platform, adapter := range g.adapters {
		if err := adapter.Connect(ctx); err != nil {
			g.logger.Error("adapter connect failed",
				zap.String("platform", platform), zap.Error(err))
			return fmt.Errorf("connect %s: %w", platform, err)
		}
		g.logger.Info("adapter connected", zap.String("platform", platform))
	}
	return nil
}

// handleInbound resolves the addressed character, runs the turn, and
// replies on the originating platform.
func (g *Gateway) handleInbound(msg *InboundMessage) {
	characterName, text := g.resolveCharacter(msg.Content)
	if strings.TrimSpace(text) == "" {
		return
	}

	ctx := context.Background()
	result, err := g.engine.ProcessTurn(ctx, characterName, platformUserID(msg), text)
	if err != nil {
		g.logger.Error("turn failed",
			zap.String("platform", msg.Platform),
			zap.String("character", characterName),
			zap.Error(err))
		return
	}

	out := &OutboundMessage{
		Platform:  msg.Platform,
		ChannelID: msg.ChannelID,
		Character: characterName,
		Content:   result.Response,
		ReplyTo:   msg.ReplyTo,
	}
	if err := g.Send(ctx, out); err != nil {
		g.logger.Error("reply send failed",
			zap.String("platform", msg.Platform), zap.Error(err))
	}
}

// resolveCharacter strips a leading "Name:" or "@Name" address from the
// message and returns the addressed character, falling back to the
// gateway default.
func (g *Gateway) resolveCharacter(content string) (string, string) {
	trimmed := strings.TrimSpace(content)

	for _, p := range g.registry.List() {
		for _, prefix := range []string{p.Name + ":", "@" + p.Name} {
			if len(trimmed) > len(prefix) && strings.EqualFold(trimmed[:len(prefix)], prefix) {
				return p.Name, strings.TrimSpace(trimmed[len(prefix):])
			}
		}
	}
	return g.defaultChar, trimmed
}

// platformUserID namespaces user IDs per platform so the same Discord and
// Slack user IDs never collide into one relationship.
func platformUserID(msg *InboundMessage) string {
	return msg.Platform + ":" + msg.UserID
}

// Send sends a message to a specific platform channel.
func (g *Gateway) Send(ctx context.Context, msg *OutboundMessage) error {
	g.mu.RLock()
	adapter, ok := g.adapters[msg.Platform]
	g.mu.RUnlock()

	if !ok {
		return fmt.Errorf("no adapter for platform: %s", msg.Platform)
	}
	return adapter.Send(ctx, msg)
}

// Close shuts down all adapters.
func (g *Gateway) Close() error {
	g.mu.RLock()
	defer g.mu.RUnlock()

	for platform, adapter := range g.adapters {
		if err := adapter.Close(); err != nil {
			g.logger.Error("adapter close failed",
				zap.String("platform", platform), zap.Error(err))
		}
	}
	return nil
}

// Adapters returns the list of registered platform names.
func (g *Gateway) Adapters() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	names := make([]string, 0, len(g.adapters))
	for p := range g.adapters {
		names = append(names, p)
	}
	return names
}

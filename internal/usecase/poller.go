package usecase

import (
	"context"
	"sync"
	"time"

	"gemdesk/internal/infrastructure/metrics"
	"gemdesk/pkg/logger"
)

type PollState string

const (
	PollIdle       PollState = "idle"
	PollChecking   PollState = "checking"
	PollRefreshing PollState = "refreshing"
)

// FreshnessPoller re-fetches the single active conversation on a fixed
// period. Switching the active conversation cancels the previous loop;
// in-flight fetches finish but their results are discarded.
type FreshnessPoller struct {
	conversations *ConversationUseCase
	interval      time.Duration

	mu       sync.Mutex
	activeID string
	state    PollState
	cancel   context.CancelFunc
}

func NewFreshnessPoller(conversations *ConversationUseCase, interval time.Duration) *FreshnessPoller {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &FreshnessPoller{
		conversations: conversations,
		interval:      interval,
		state:         PollIdle,
	}
}

// Watch starts polling conversationID, replacing any previous loop. The
// loop is scoped to the selection, not to any request, so it runs until the
// active conversation changes or Stop is called.
func (p *FreshnessPoller) Watch(conversationID string) {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	pollCtx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.activeID = conversationID
	p.state = PollIdle
	p.mu.Unlock()

	go p.run(pollCtx, conversationID)
}

// Stop ends the current loop, if any.
func (p *FreshnessPoller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.activeID = ""
	p.state = PollIdle
}

// Active returns the watched conversation id and the loop state.
func (p *FreshnessPoller) Active() (string, PollState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.activeID, p.state
}

func (p *FreshnessPoller) run(ctx context.Context, conversationID string) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx, conversationID)
		}
	}
}

func (p *FreshnessPoller) tick(ctx context.Context, conversationID string) {
	metrics.PollTicks.Inc()
	p.setState(conversationID, PollChecking)
	defer p.setState(conversationID, PollIdle)

	newData, err := p.conversations.PollConversation(ctx, conversationID)
	if err != nil {
		// Best effort: log and wait for the next tick.
		logger.Warn("Poll failed for conversation %s: %v", conversationID, err)
		return
	}
	if newData {
		p.setState(conversationID, PollRefreshing)
		metrics.PollRefreshes.Inc()
	}
}

func (p *FreshnessPoller) setState(conversationID string, state PollState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.activeID != conversationID {
		return
	}
	p.state = state
}

package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/IBM/sarama"
	"github.com/snake-leaderboard/internal/config"
	"github.com/snake-leaderboard/internal/domain"
)

const (
	// applyTimeout bounds how long one batch may spend in the database
	applyTimeout = 10 * time.Second

	// Consume retries back off from retryMin up to retryMax
	retryMin = time.Second
	retryMax = 30 * time.Second
)

var errGroupClosed = errors.New("consumer group closed before the first session")

// ResultHandler applies batches of submitted game results
type ResultHandler interface {
	ApplyGameResults(ctx context.Context, results []domain.GameResultMessage) int
}

// Consumer feeds game results from the results topic into a ResultHandler
type Consumer struct {
	config  *config.KafkaConfig
	results ResultHandler
	logger  *slog.Logger
	group   sarama.ConsumerGroup

	retryMin time.Duration
	retryMax time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewConsumerConfig returns the sarama settings used by the results consumer
func NewConsumerConfig() *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V3_0_0_0
	cfg.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	cfg.Consumer.Offsets.Initial = sarama.OffsetNewest
	cfg.Consumer.Return.Errors = true
	return cfg
}

// NewConsumer joins cfg.GroupID on cfg.Brokers. Nothing is consumed until Start.
func NewConsumer(cfg *config.KafkaConfig, results ResultHandler, logger *slog.Logger) (*Consumer, error) {
	group, err := sarama.NewConsumerGroup(cfg.Brokers, cfg.GroupID, NewConsumerConfig())
	if err != nil {
		return nil, fmt.Errorf("creating consumer group: %w", err)
	}
	return newConsumer(cfg, group, results, logger), nil
}

func newConsumer(cfg *config.KafkaConfig, group sarama.ConsumerGroup, results ResultHandler, logger *slog.Logger) *Consumer {
	return &Consumer{
		config:   cfg,
		results:  results,
		logger:   logger,
		group:    group,
		retryMin: retryMin,
		retryMax: retryMax,
	}
}

// Start consumes in the background and returns once the first session is
// set up. If ctx ends or cfg.StartupTimeout passes first, consumption is
// cancelled and an error is returned; Stop still has to be called to
// leave the group.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("starting Kafka consumer",
		"brokers", c.config.Brokers,
		"topic", c.config.ResultsTopic,
		"group_id", c.config.GroupID,
	)

	if c.config.StartupTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.StartupTimeout)
		defer cancel()
	}

	// Consumption outlives the startup context.
	runCtx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel

	ready := make(chan struct{})
	done := make(chan struct{})
	c.wg.Add(2)
	go func() {
		defer close(done)
		c.consume(runCtx, ready)
	}()
	go c.logErrors(runCtx)

	select {
	case <-ready:
		c.logger.Info("Kafka consumer ready")
		return nil
	case <-done:
		cancel()
		c.wg.Wait()
		return errGroupClosed
	case <-ctx.Done():
		cancel()
		c.wg.Wait()
		return fmt.Errorf("waiting for first consumer session: %w", ctx.Err())
	}
}

// consume rejoins the group after every rebalance until ctx is cancelled.
// Failed joins are retried with exponential backoff.
func (c *Consumer) consume(ctx context.Context, ready chan struct{}) {
	defer c.wg.Done()

	var once sync.Once
	signalReady := func() { once.Do(func() { close(ready) }) }

	backoff := c.retryMin
	for {
		h := newClaimHandler(c.results, c.config.BatchSize, c.config.BatchTimeout, c.logger)
		h.onSetup = signalReady

		err := c.group.Consume(ctx, []string{c.config.ResultsTopic}, h)
		if errors.Is(err, sarama.ErrClosedConsumerGroup) {
			return
		}
		if ctx.Err() != nil {
			return
		}
		if err == nil {
			backoff = c.retryMin
			continue
		}

		c.logger.Error("error from consumer", "error", err, "retry_in", backoff)
		if !sleep(ctx, backoff) {
			return
		}
		backoff = min(backoff*2, c.retryMax)
	}
}

// sleep waits for d and reports false if ctx ended first
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (c *Consumer) logErrors(ctx context.Context) {
	defer c.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-c.group.Errors():
			if !ok {
				return
			}
			c.logger.Error("consumer group error", "error", err)
		}
	}
}

// Stop cancels consumption, waits for in-flight batches and leaves the group
func (c *Consumer) Stop() error {
	c.logger.Info("stopping Kafka consumer")
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()
	return c.group.Close()
}

// claimHandler implements sarama.ConsumerGroupHandler, collecting decoded
// results and handing them over in batches
type claimHandler struct {
	results ResultHandler
	size    int
	timeout time.Duration
	logger  *slog.Logger
	onSetup func()
}

func newClaimHandler(results ResultHandler, size int, timeout time.Duration, logger *slog.Logger) *claimHandler {
	if size < 1 {
		size = 1
	}
	return &claimHandler{results: results, size: size, timeout: timeout, logger: logger}
}

func (h *claimHandler) Setup(sarama.ConsumerGroupSession) error {
	if h.onSetup != nil {
		h.onSetup()
	}
	return nil
}

func (h *claimHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

// ConsumeClaim flushes whenever the batch is full, the timeout fires or the
// claim ends. Offsets are marked as soon as a message is decoded.
func (h *claimHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	batch := make([]domain.GameResultMessage, 0, h.size)
	timer := time.NewTimer(h.timeout)
	defer timer.Stop()

	flush := func() {
		if len(batch) > 0 {
			h.apply(batch)
			batch = batch[:0]
		}
		timer.Reset(h.timeout)
	}

	for {
		select {
		case <-session.Context().Done():
			flush()
			return nil

		case <-timer.C:
			flush()

		case msg, ok := <-claim.Messages():
			if !ok {
				flush()
				return nil
			}
			session.MarkMessage(msg, "")

			result, err := decodeResult(msg.Value)
			if err != nil {
				h.logger.Warn("skipping game result message",
					"error", err,
					"partition", msg.Partition,
					"offset", msg.Offset,
				)
				continue
			}
			if batch = append(batch, result); len(batch) >= h.size {
				flush()
			}
		}
	}
}

// apply runs detached from the session context so a rebalance does not
// abort a batch halfway
func (h *claimHandler) apply(batch []domain.GameResultMessage) {
	ctx, cancel := context.WithTimeout(context.Background(), applyTimeout)
	defer cancel()

	applied := h.results.ApplyGameResults(ctx, batch)
	h.logger.Debug("applied game results", "received", len(batch), "applied", applied)
}

var errMissingGameID = errors.New("missing game_id")

// decodeResult parses one message and rejects results that could never apply
func decodeResult(data []byte) (domain.GameResultMessage, error) {
	var result domain.GameResultMessage
	if err := json.Unmarshal(data, &result); err != nil {
		return result, err
	}
	if result.GameID <= 0 {
		return result, errMissingGameID
	}
	if err := result.Validate(); err != nil {
		return result, err
	}
	return result, nil
}

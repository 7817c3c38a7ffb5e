package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/patrick-gordon/umbra-registers/internal/domain"
	"github.com/patrick-gordon/umbra-registers/internal/queue"
	"github.com/patrick-gordon/umbra-registers/internal/service"
	"go.uber.org/zap"
)

// HostEventWorker drains the multiplexed host action queue into the register
// engine. One consumer, messages applied in delivery order.
type HostEventWorker struct {
	registers *service.RegisterService
	broker    queue.Broker
	logger    *zap.SugaredLogger
	ctx       context.Context
	cancel    context.CancelFunc
}

func NewHostEventWorker(
	registers *service.RegisterService,
	broker queue.Broker,
	logger *zap.SugaredLogger,
) *HostEventWorker {
	ctx, cancel := context.WithCancel(context.Background())

	return &HostEventWorker{
		registers: registers,
		broker:    broker,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (w *HostEventWorker) Start() error {
	w.logger.Info("starting host event worker")

	return w.broker.Subscribe(w.ctx, queue.QueueHostMessages, w.handleMessage)
}

func (w *HostEventWorker) Stop() {
	w.logger.Info("stopping host event worker")
	w.cancel()
}

func (w *HostEventWorker) handleMessage(ctx context.Context, message []byte) error {
	var msg domain.HostMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		w.logger.Errorw("failed to unmarshal host message", "error", err)
		return fmt.Errorf("failed to unmarshal host message: %w", err)
	}

	w.logger.Infow("processing host message", "action", msg.Action)

	if err := w.registers.HandleHostMessage(msg); err != nil {
		w.logger.Errorw("failed to apply host message", "action", msg.Action, "error", err)
		return err
	}

	return nil
}

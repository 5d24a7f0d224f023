package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/kaikyoudou/storefront/internal/domain"
	"github.com/kaikyoudou/storefront/pkg/utils"
	"go.uber.org/zap"
)

// CheckoutService drives the three-step purchase flow:
//
//	info -> payment -> complete
//
// with an explicit back transition from payment to info. Closing the
// checkout from any step discards the draft, cancels an in-flight
// payment, and resets to the info step. Complete is terminal for the
// session; Finish clears the cart and resets the machine.
type CheckoutService interface {
	Step() domain.CheckoutStep
	Draft() domain.CheckoutDraft
	Processing() bool
	LastError() error
	SubmitInfo(draft domain.CheckoutDraft) error
	Back() error
	SubmitPayment(ctx context.Context) error
	Finish(ctx context.Context) (*domain.Receipt, error)
	Close()
	OnStepChange(fn func(domain.CheckoutStep))
}

type checkoutService struct {
	mu         sync.Mutex
	step       domain.CheckoutStep
	draft      domain.CheckoutDraft
	cart       CartService
	gateway    PaymentGateway
	validate   *validator.Validate
	logger     *zap.Logger
	processing bool
	attempt    uint64
	cancelPay  context.CancelFunc
	lastErr    error
	receipt    *domain.Receipt
	listeners  []func(domain.CheckoutStep)
}

func NewCheckoutService(cart CartService, gateway PaymentGateway, logger *zap.Logger) CheckoutService {
	return &checkoutService{
		step:     domain.StepInfo,
		cart:     cart,
		gateway:  gateway,
		validate: validator.New(),
		logger:   logger,
	}
}

func (s *checkoutService) Step() domain.CheckoutStep {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.step
}

func (s *checkoutService) Draft() domain.CheckoutDraft {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.draft
}

func (s *checkoutService) Processing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.processing
}

func (s *checkoutService) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lastErr
}

func (s *checkoutService) OnStepChange(fn func(domain.CheckoutStep)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.listeners = append(s.listeners, fn)
}

func (s *checkoutService) SubmitInfo(draft domain.CheckoutDraft) error {
	if err := s.validate.Struct(draft); err != nil {
		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) {
			return &ValidationError{Fields: utils.FormatValidationError(err)}
		}
		return err
	}

	s.mu.Lock()

	if s.step != domain.StepInfo {
		s.mu.Unlock()
		return ErrInvalidStep
	}
	if s.cart.TotalItemCount() == 0 {
		s.mu.Unlock()
		return ErrCheckoutNotEmpty
	}

	s.draft = draft
	s.step = domain.StepPayment
	listeners, step := s.listenersLocked(), s.step
	s.mu.Unlock()

	notifyStep(listeners, step)
	return nil
}

func (s *checkoutService) Back() error {
	s.mu.Lock()

	if s.step != domain.StepPayment {
		s.mu.Unlock()
		return ErrInvalidStep
	}
	if s.processing {
		s.mu.Unlock()
		return ErrPaymentInFlight
	}

	s.step = domain.StepInfo
	listeners, step := s.listenersLocked(), s.step
	s.mu.Unlock()

	notifyStep(listeners, step)
	return nil
}

// SubmitPayment starts the asynchronous settle and returns immediately.
// The step moves to complete (or back to payment with LastError set, on
// a decline) once the gateway answers. Exactly one payment may be in
// flight.
func (s *checkoutService) SubmitPayment(ctx context.Context) error {
	s.mu.Lock()

	if s.step != domain.StepPayment {
		s.mu.Unlock()
		return ErrInvalidStep
	}
	if s.processing {
		s.mu.Unlock()
		return ErrPaymentInFlight
	}

	summary := s.cart.Summary()

	payCtx, cancel := context.WithCancel(ctx)
	s.processing = true
	s.lastErr = nil
	s.cancelPay = cancel
	s.attempt++
	attempt := s.attempt
	s.mu.Unlock()

	go s.settle(payCtx, attempt, summary)
	return nil
}

func (s *checkoutService) settle(ctx context.Context, attempt uint64, summary domain.OrderSummary) {
	err := s.gateway.Authorize(ctx, summary.Total)

	s.mu.Lock()

	// The checkout may have been closed while the gateway was
	// settling; that attempt's outcome must not touch the machine.
	if s.attempt != attempt || ctx.Err() != nil {
		s.mu.Unlock()
		return
	}

	s.processing = false
	if s.cancelPay != nil {
		s.cancelPay()
		s.cancelPay = nil
	}

	if err != nil {
		s.lastErr = err
		s.logger.Warn("payment not settled", zap.Error(err))
		s.mu.Unlock()
		return
	}

	s.receipt = &domain.Receipt{
		OrderNumber: uuid.NewString(),
		Summary:     summary,
		ShipTo:      s.draft,
		PlacedAt:    time.Now(),
	}
	s.step = domain.StepComplete
	listeners, step := s.listenersLocked(), s.step
	s.logger.Info("payment settled",
		zap.String("order_number", s.receipt.OrderNumber),
		zap.Int64("amount", summary.Total),
	)
	s.mu.Unlock()

	notifyStep(listeners, step)
}

// Finish acknowledges the completed order: the cart is emptied and the
// machine resets for the next session.
func (s *checkoutService) Finish(ctx context.Context) (*domain.Receipt, error) {
	s.mu.Lock()

	if s.step != domain.StepComplete {
		s.mu.Unlock()
		return nil, ErrInvalidStep
	}

	receipt := s.receipt
	s.resetLocked()
	listeners, step := s.listenersLocked(), s.step
	s.mu.Unlock()

	if err := s.cart.Clear(ctx); err != nil {
		s.logger.Warn("clearing cart after checkout", zap.Error(err))
	}

	notifyStep(listeners, step)
	return receipt, nil
}

// Close abandons the checkout: draft and receipt are discarded, an
// in-flight payment is cancelled, and the machine resets to info.
func (s *checkoutService) Close() {
	s.mu.Lock()

	if s.cancelPay != nil {
		s.cancelPay()
	}
	s.attempt++

	changed := s.step != domain.StepInfo
	s.resetLocked()
	listeners, step := s.listenersLocked(), s.step
	s.mu.Unlock()

	if changed {
		notifyStep(listeners, step)
	}
}

func (s *checkoutService) resetLocked() {
	s.step = domain.StepInfo
	s.draft = domain.CheckoutDraft{}
	s.processing = false
	s.cancelPay = nil
	s.lastErr = nil
	s.receipt = nil
}

func (s *checkoutService) listenersLocked() []func(domain.CheckoutStep) {
	listeners := make([]func(domain.CheckoutStep), len(s.listeners))
	copy(listeners, s.listeners)
	return listeners
}

func notifyStep(listeners []func(domain.CheckoutStep), step domain.CheckoutStep) {
	for _, fn := range listeners {
		fn(step)
	}
}

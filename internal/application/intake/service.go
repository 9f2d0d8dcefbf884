package intake

import (
	"context"

	"github.com/MyDadsSoft/recoverys/internal/application/notify"
	"github.com/MyDadsSoft/recoverys/internal/domain/catalog"
	"github.com/MyDadsSoft/recoverys/internal/domain/order"
	"github.com/MyDadsSoft/recoverys/internal/domain/shared"
	"go.uber.org/zap"
)

// Service handles order submission and listing
type Service struct {
	repo     order.Repository
	catalog  *catalog.Catalog
	notifier *notify.Notifier
	logger   *zap.Logger
}

// NewService creates a new intake Service
func NewService(repo order.Repository, cat *catalog.Catalog, notifier *notify.Notifier, logger *zap.Logger) *Service {
	return &Service{
		repo:     repo,
		catalog:  cat,
		notifier: notifier,
		logger:   logger,
	}
}

// SubmitRequest carries the customer-supplied order fields
type SubmitRequest struct {
	Name            string
	Email           string
	DiscordRef      string
	PackageSelected string
	Currency        string
}

// SubmitResult is the customer-facing outcome of a successful submission
type SubmitResult struct {
	Message  string
	Price    string
	Currency catalog.Currency
}

// Submit validates and stores a new order, then hands it to the notifier.
// The order is durable (or its write failure logged) before any notification
// is attempted, so a notification failure never rolls back or fails the
// submission.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	currency := catalog.Currency(req.Currency)
	price := s.catalog.Price(req.PackageSelected, currency).StringFixed(2)

	o, err := order.New(req.Name, req.Email, req.DiscordRef, req.PackageSelected, currency, price)
	if err != nil {
		return nil, err
	}

	if !s.catalog.IsKnownPackage(req.PackageSelected) {
		// Degraded pricing, not an error: unknown packages price at zero
		s.logger.Warn("unknown package selected, priced at zero",
			zap.String("package", req.PackageSelected),
		)
	}

	if err := s.repo.Append(ctx, o); err != nil {
		if !shared.IsCode(err, "PERSISTENCE_WARNING") {
			return nil, err
		}
		// The in-memory ledger holds the order; keep serving it and report
		// success so a storage hiccup doesn't mask a completed submission.
		s.logger.Warn("order stored in memory only",
			zap.Int64("order_id", o.ID),
			zap.Error(err),
		)
	}

	s.logger.Info("order created",
		zap.Int64("order_id", o.ID),
		zap.String("package", o.PackageSelected),
		zap.String("price", o.Price),
		zap.String("currency", string(o.Currency)),
	)

	s.notifier.Dispatch(*o)

	return &SubmitResult{
		Message:  "Order received",
		Price:    price,
		Currency: currency,
	}, nil
}

// List returns all orders in creation order
func (s *Service) List(ctx context.Context) ([]order.Order, error) {
	return s.repo.List(ctx)
}

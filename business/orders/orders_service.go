package orders

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"agroMarket/domain"
	"agroMarket/pkg/logger"
	"agroMarket/pkg/metrics"

	"github.com/shopspring/decimal"
)

// CheckoutTokenTTL bounds how long a used checkout token is remembered.
const CheckoutTokenTTL = 24 * time.Hour

// PublishTimeout bounds one background publish of order events.
const PublishTimeout = 5 * time.Second

// CheckoutStore is the transactional view of the catalog and order ledger used by one checkout.
type CheckoutStore interface {
	LockProduct(ctx context.Context, id uint64) (domain.Product, error)
	DecrementStock(ctx context.Context, id uint64, quantity int) (bool, error)
	CreateOrder(ctx context.Context, order *domain.Order) error
}

type OrdersRepository interface {
	WithinTransaction(ctx context.Context, fn func(tx CheckoutStore) error) error
	FindByCustomer(ctx context.Context, customerID uint) ([]domain.CustomerOrder, error)
	FindByFarmer(ctx context.Context, farmerID uint) ([]domain.FarmerOrder, error)
	FindAll(ctx context.Context) ([]domain.AdminOrder, error)
	MarkDelivered(ctx context.Context, orderID uint64, farmerID uint) (bool, error)
	FindOwnedByFarmer(ctx context.Context, orderID uint64, farmerID uint) (domain.Order, error)
}

// TokenStore remembers checkout tokens that were already used.
type TokenStore interface {
	ClaimCheckoutToken(ctx context.Context, token string, ttl time.Duration) (bool, error)
	ReleaseCheckoutToken(ctx context.Context, token string) error
}

type EventPublisher interface {
	PublishOrderPlaced(ctx context.Context, events []domain.OrderPlacedEvent) error
}

type OrdersService struct {
	orderRepo OrdersRepository
	tokens    TokenStore
	events    EventPublisher

	publishing sync.WaitGroup
}

func NewOrdersService(orderRepo OrdersRepository, tokens TokenStore, events EventPublisher) *OrdersService {
	return &OrdersService{
		orderRepo: orderRepo,
		tokens:    tokens,
		events:    events,
	}
}

// CheckoutInput is the delivery data and one-time token submitted with the checkout form.
type CheckoutInput struct {
	Address string
	Note    string
	Token   string
}

// Checkout turns every cart line into an order inside a single transaction.
// Lines short on stock or pointing at a deleted product are skipped and reported.
// Any other failure rolls back the whole batch.
func (s *OrdersService) Checkout(ctx context.Context, customerID uint, cart domain.Cart, in CheckoutInput) (domain.CheckoutReport, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when checkout")
		return domain.CheckoutReport{}, fmt.Errorf("context error: %w", err)
	}

	if cart.IsEmpty() {
		metrics.CheckoutTotal.WithLabelValues("empty").Inc()
		return domain.CheckoutReport{}, domain.ErrEmptyCart
	}

	if in.Token != "" && s.tokens != nil {
		claimed, err := s.tokens.ClaimCheckoutToken(ctx, in.Token, CheckoutTokenTTL)
		if err != nil {
			logger.Error("failed to claim checkout token", err)
			return domain.CheckoutReport{}, err
		}
		if !claimed {
			metrics.CheckoutTotal.WithLabelValues("duplicate").Inc()
			logger.Warn("checkout token replayed", "customer_id", customerID)
			return domain.CheckoutReport{}, domain.ErrDuplicateCheckout
		}
	}

	started := time.Now()
	report, err := s.placeOrders(ctx, customerID, cart, in)
	metrics.CheckoutDuration.Observe(time.Since(started).Seconds())
	if err != nil {
		metrics.CheckoutTotal.WithLabelValues("failed").Inc()
		logger.Error("checkout rolled back", err, "customer_id", customerID)
		if in.Token != "" && s.tokens != nil {
			if relErr := s.tokens.ReleaseCheckoutToken(ctx, in.Token); relErr != nil {
				logger.Warn("failed to release checkout token", relErr)
			}
		}
		return domain.CheckoutReport{}, err
	}

	for _, res := range report.Results {
		label := string(domain.LineApplied)
		if !res.Applied() {
			label = string(res.Reason)
		}
		metrics.CheckoutLines.WithLabelValues(label).Inc()
	}

	applied := report.AppliedCount()
	switch {
	case applied == len(report.Results):
		metrics.CheckoutTotal.WithLabelValues("placed").Inc()
	case applied > 0:
		metrics.CheckoutTotal.WithLabelValues("partial").Inc()
	default:
		metrics.CheckoutTotal.WithLabelValues("none").Inc()
	}

	logger.Info("checkout committed", "customer_id", customerID, "applied", applied, "lines", len(report.Results))

	s.publish(ctx, customerID, report)

	return report, nil
}

func (s *OrdersService) placeOrders(ctx context.Context, customerID uint, cart domain.Cart, in CheckoutInput) (domain.CheckoutReport, error) {
	results := make([]domain.LineResult, len(cart.Lines))

	// rows are locked in product id order so concurrent checkouts cannot deadlock
	order := make([]int, len(cart.Lines))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return cart.Lines[order[a]].ProductID < cart.Lines[order[b]].ProductID
	})

	err := s.orderRepo.WithinTransaction(ctx, func(tx CheckoutStore) error {
		for _, idx := range order {
			res, err := placeLine(ctx, tx, customerID, cart.Lines[idx], in)
			if err != nil {
				return err
			}
			results[idx] = res
		}
		return nil
	})
	if err != nil {
		return domain.CheckoutReport{}, err
	}

	report := domain.CheckoutReport{Results: results, Total: decimal.Zero}
	for _, res := range results {
		if res.Applied() {
			report.Total = report.Total.Add(res.TotalPrice)
		}
	}

	return report, nil
}

func placeLine(ctx context.Context, tx CheckoutStore, customerID uint, line domain.CartLine, in CheckoutInput) (domain.LineResult, error) {
	res := domain.LineResult{Line: line, Outcome: domain.LineSkipped}

	product, err := tx.LockProduct(ctx, line.ProductID)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			res.Reason = domain.SkipVanished
			return res, nil
		}
		return res, err
	}
	res.ProductName = product.Name
	res.FarmerID = product.FarmerID

	if line.Quantity < 1 {
		return res, fmt.Errorf("cart line for product %d: %w", line.ProductID, domain.ErrInvalidQuantity)
	}

	ok, err := tx.DecrementStock(ctx, product.ID, line.Quantity)
	if err != nil {
		return res, err
	}
	if !ok {
		res.Reason = domain.SkipShortage
		res.Available = product.Stock
		return res, nil
	}

	total := product.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
	o := &domain.Order{
		CustomerID: customerID,
		FarmerID:   product.FarmerID,
		ProductID:  product.ID,
		Quantity:   line.Quantity,
		TotalPrice: &total,
		Address:    in.Address,
		Note:       in.Note,
		Status:     domain.OrderStatusPending,
	}
	if err := tx.CreateOrder(ctx, o); err != nil {
		return res, err
	}

	res.Outcome = domain.LineApplied
	res.Reason = ""
	res.OrderID = o.ID
	res.TotalPrice = total
	return res, nil
}

// publish sends the events for applied lines in the background. It runs on its own
// deadline detached from the request so a slow broker never holds up the checkout.
func (s *OrdersService) publish(ctx context.Context, customerID uint, report domain.CheckoutReport) {
	if s.events == nil {
		return
	}

	now := time.Now().UTC()
	var events []domain.OrderPlacedEvent
	for _, res := range report.Results {
		if !res.Applied() {
			continue
		}
		events = append(events, domain.OrderPlacedEvent{
			OrderID:    res.OrderID,
			CustomerID: customerID,
			FarmerID:   res.FarmerID,
			ProductID:  res.Line.ProductID,
			Quantity:   res.Line.Quantity,
			TotalPrice: res.TotalPrice,
			PlacedAt:   now,
		})
	}
	if len(events) == 0 {
		return
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), PublishTimeout)
	s.publishing.Add(1)
	go func() {
		defer s.publishing.Done()
		defer cancel()

		if err := s.events.PublishOrderPlaced(pubCtx, events); err != nil {
			metrics.OrderEventsFailed.Add(float64(len(events)))
			logger.Warn("failed to publish order events", err, "count", len(events))
		}
	}()
}

// Wait blocks until background event publishes have finished.
func (s *OrdersService) Wait() {
	s.publishing.Wait()
}

// MarkDelivered moves an order owned by farmerID to delivered. Repeating it is harmless.
func (s *OrdersService) MarkDelivered(ctx context.Context, orderID uint64, farmerID uint) error {
	changed, err := s.orderRepo.MarkDelivered(ctx, orderID, farmerID)
	if err != nil {
		logger.Error("failed to mark order delivered", err)
		return err
	}
	if changed {
		logger.Info("order delivered", "order_id", orderID, "farmer_id", farmerID)
		return nil
	}

	// some drivers report zero affected rows when the status was already delivered
	if _, err := s.orderRepo.FindOwnedByFarmer(ctx, orderID, farmerID); err != nil {
		logger.Warn("order not found for farmer", "order_id", orderID, "farmer_id", farmerID)
		return err
	}

	return nil
}

func (s *OrdersService) GetCustomerOrders(ctx context.Context, customerID uint) ([]domain.CustomerOrder, error) {
	rows, err := s.orderRepo.FindByCustomer(ctx, customerID)
	if err != nil {
		logger.Error("Failed to find customer orders", err)
		return nil, err
	}

	return rows, nil
}

func (s *OrdersService) GetFarmerOrders(ctx context.Context, farmerID uint) ([]domain.FarmerOrder, error) {
	rows, err := s.orderRepo.FindByFarmer(ctx, farmerID)
	if err != nil {
		logger.Error("Failed to find farmer orders", err)
		return nil, err
	}

	return rows, nil
}

func (s *OrdersService) GetAllOrders(ctx context.Context) ([]domain.AdminOrder, error) {
	rows, err := s.orderRepo.FindAll(ctx)
	if err != nil {
		logger.Error("Failed to find orders", err)
		return nil, err
	}

	return rows, nil
}

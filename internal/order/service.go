// Package order implements the purchase-order lifecycle: creation against
// the product catalog, persistence, status transitions and payment
// reconciliation.
package order

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Service struct {
	repo     Repository
	catalog  Catalog
	payments Payments
	log      *zap.Logger
	currency string
}

func NewService(repo Repository, catalog Catalog, payments Payments, log *zap.Logger, currency string) *Service {
	return &Service{
		repo:     repo,
		catalog:  catalog,
		payments: payments,
		log:      log,
		currency: currency,
	}
}

// Create validates the requested items against the catalog, computes the
// authoritative totals and persists order + items atomically. Any failure
// collapses into ErrCreateFailed; the cause is only logged.
func (s *Service) Create(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	if len(req.Items) == 0 {
		s.log.Warn("create rejected: empty item list")
		return nil, ErrCreateFailed
	}
	for _, it := range req.Items {
		if it.Quantity <= 0 {
			s.log.Warn("create rejected: non-positive quantity",
				zap.String("product_id", it.ProductID), zap.Int("quantity", it.Quantity))
			return nil, ErrCreateFailed
		}
	}

	products, err := s.validateAll(ctx, req.Items)
	if err != nil {
		s.log.Error("create rejected: catalog validation failed", zap.Error(err))
		return nil, ErrCreateFailed
	}

	// Running sums: every line item contributes independently, duplicate
	// product ids stay separate lines.
	total := decimal.Zero
	totalItems := 0
	orderID := uuid.NewString()
	items := make([]Item, 0, len(req.Items))
	for _, it := range req.Items {
		p := products[it.ProductID]
		total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
		totalItems += it.Quantity
		items = append(items, Item{
			ID:        uuid.NewString(),
			OrderID:   orderID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     p.Price,
		})
	}

	now := time.Now().UTC()
	o := &Order{
		ID:          orderID,
		Status:      StatusPending,
		TotalAmount: total,
		TotalItems:  totalItems,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, o, items); err != nil {
		s.log.Error("create rejected: persistence failed",
			zap.String("order_id", orderID), zap.Error(err))
		return nil, ErrCreateFailed
	}

	for i := range items {
		items[i].Name = products[items[i].ProductID].Name
	}
	o.Items = items

	s.log.Info("order created",
		zap.String("order_id", o.ID),
		zap.String("total_amount", o.TotalAmount.String()),
		zap.Int("total_items", o.TotalItems))
	return o, nil
}

// validateAll resolves the distinct product id set and requires every id to
// be present in the catalog's answer.
func (s *Service) validateAll(ctx context.Context, reqItems []CreateOrderItem) (map[string]Product, error) {
	seen := make(map[string]struct{}, len(reqItems))
	ids := make([]string, 0, len(reqItems))
	for _, it := range reqItems {
		if _, ok := seen[it.ProductID]; ok {
			continue
		}
		seen[it.ProductID] = struct{}{}
		ids = append(ids, it.ProductID)
	}

	products, err := s.catalog.Validate(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			return nil, fmt.Errorf("product %s not resolved by catalog", id)
		}
	}
	return byID, nil
}

// Get returns the order with its items, names enriched from the catalog.
// A catalog miss on read degrades to empty names; the stored price stays
// authoritative.
func (s *Service) Get(ctx context.Context, id string) (*Order, error) {
	o, items, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if err == ErrNotFound {
			return nil, fmt.Errorf("order %s: %w", id, ErrNotFound)
		}
		return nil, err
	}

	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	if products, err := s.catalog.Validate(ctx, ids); err != nil {
		s.log.Warn("read-time enrichment skipped",
			zap.String("order_id", id), zap.Error(err))
	} else {
		names := make(map[string]string, len(products))
		for _, p := range products {
			names[p.ID] = p.Name
		}
		for i := range items {
			items[i].Name = names[items[i].ProductID]
		}
	}
	o.Items = items
	return o, nil
}

// List returns one page of orders plus pagination metadata. No enrichment
// is performed on list results.
func (s *Service) List(ctx context.Context, q ListQuery) (*Page, error) {
	f := Filter{Status: q.Status}

	total, err := s.repo.Count(ctx, f)
	if err != nil {
		return nil, err
	}
	data, err := s.repo.List(ctx, f, q.Limit, (q.Page-1)*q.Limit)
	if err != nil {
		return nil, err
	}
	if data == nil {
		data = []Order{}
	}
	return &Page{
		Data: data,
		Meta: PageMeta{
			Total:    total,
			Page:     q.Page,
			LastPage: (total + q.Limit - 1) / q.Limit,
		},
	}, nil
}

// ChangeStatus moves the order to a new status. A same-status change is a
// no-op without a write; moves outside the transition table are rejected.
func (s *Service) ChangeStatus(ctx context.Context, id string, status Status) (*Order, error) {
	o, items, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if err == ErrNotFound {
			return nil, fmt.Errorf("order %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	o.Items = items

	if o.Status == status {
		return o, nil
	}
	if !CanTransition(o.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, status)
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	o.Status = status
	return o, nil
}

// CreatePaymentSession hands the priced order off to the payment service.
// No local state changes; the order stays PENDING until confirmation.
func (s *Service) CreatePaymentSession(ctx context.Context, o *Order) (*Session, error) {
	items := make([]SessionItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, SessionItem{
			Name:     it.Name,
			Price:    it.Price,
			Quantity: it.Quantity,
		})
	}
	session, err := s.payments.CreateSession(ctx, SessionRequest{
		OrderID:  o.ID,
		Currency: s.currency,
		Items:    items,
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("payment session created", zap.String("order_id", o.ID))
	return session, nil
}

// MarkPaid reconciles a payment confirmation into order state. Repeated
// delivery of the same confirmation is a no-op; a different charge id on an
// already-paid order is a conflict and writes nothing.
func (s *Service) MarkPaid(ctx context.Context, evt PaidEvent) (*Order, error) {
	o, items, err := s.repo.GetByID(ctx, evt.OrderID)
	if err != nil {
		if err == ErrNotFound {
			return nil, fmt.Errorf("order %s: %w", evt.OrderID, ErrNotFound)
		}
		return nil, err
	}
	o.Items = items

	if o.Paid {
		if o.PaymentChargeID == evt.ChargeID {
			s.log.Info("duplicate paid confirmation ignored",
				zap.String("order_id", o.ID), zap.String("charge_id", evt.ChargeID))
			return o, nil
		}
		return nil, fmt.Errorf("%w: order %s has charge %s, got %s",
			ErrChargeConflict, o.ID, o.PaymentChargeID, evt.ChargeID)
	}

	paidAt := time.Now().UTC()
	if err := s.repo.MarkPaid(ctx, o.ID, evt.ChargeID, evt.ReceiptURL, paidAt); err != nil {
		return nil, err
	}
	o.Status = StatusPaid
	o.Paid = true
	o.PaidAt = &paidAt
	o.PaymentChargeID = evt.ChargeID

	s.log.Info("order paid",
		zap.String("order_id", o.ID), zap.String("charge_id", evt.ChargeID))
	return o, nil
}

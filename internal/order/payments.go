package order

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	subjectSessionCreate = "payments.session.create"
	subjectOrderPaid     = "payments.order.paid"
)

type SessionItem struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

type SessionRequest struct {
	OrderID  string        `json:"orderId"`
	Currency string        `json:"currency"`
	Items    []SessionItem `json:"items"`
}

// Session is the provider-issued checkout handle. Opaque to this service.
type Session struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// PaidEvent is the asynchronous payment confirmation.
type PaidEvent struct {
	OrderID    string `json:"orderId"`
	ChargeID   string `json:"chargeId"`
	ReceiptURL string `json:"receiptUrl"`
}

// Payments opens checkout sessions with the payment service.
type Payments interface {
	CreateSession(ctx context.Context, req SessionRequest) (*Session, error)
}

// PaymentsNATS is a request/reply facade over the payment service plus the
// inbound confirmation channel.
type PaymentsNATS struct {
	nc      *nats.Conn
	timeout time.Duration
	log     *zap.Logger
}

func NewPaymentsNATS(url string, timeout time.Duration, log *zap.Logger) (*PaymentsNATS, error) {
	nc, err := nats.Connect(url,
		nats.Name("order-service"),
		nats.MaxReconnects(5),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn("nats disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("nats reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &PaymentsNATS{nc: nc, timeout: timeout, log: log}, nil
}

func (p *PaymentsNATS) CreateSession(ctx context.Context, req SessionRequest) (*Session, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	msg, err := p.nc.RequestWithContext(ctx, subjectSessionCreate, data)
	if err != nil {
		return nil, fmt.Errorf("payment session request: %w", err)
	}
	var s Session
	if err := json.Unmarshal(msg.Data, &s); err != nil {
		return nil, fmt.Errorf("payment session reply: %w", err)
	}
	return &s, nil
}

// SubscribePaid delivers payment confirmations to handler. Each event runs
// under its own bounded context.
func (p *PaymentsNATS) SubscribePaid(handler func(ctx context.Context, evt PaidEvent) error) (*nats.Subscription, error) {
	return p.nc.Subscribe(subjectOrderPaid, func(msg *nats.Msg) {
		var evt PaidEvent
		if err := json.Unmarshal(msg.Data, &evt); err != nil {
			p.log.Error("bad paid event payload", zap.Error(err))
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		defer cancel()
		if err := handler(ctx, evt); err != nil {
			p.log.Error("paid event not applied",
				zap.String("order_id", evt.OrderID),
				zap.String("charge_id", evt.ChargeID),
				zap.Error(err))
		}
	})
}

func (p *PaymentsNATS) Close() {
	if p.nc != nil && p.nc.IsConnected() {
		p.nc.Close()
	}
}

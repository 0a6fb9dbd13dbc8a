package payments

import (
	"context"
	"fmt"
	"sync"
)

// Gateway represents a connector to the external payment processor.
type Gateway interface {
	CreateOrder(ctx context.Context, req OrderRequest) (Order, error)
}

// OrderRequest asks the gateway for a pending order. Amount is in minor currency units.
type OrderRequest struct {
	Amount   int64
	Currency string
	Receipt  string
}

// Order is the gateway's pending order.
type Order struct {
	ID       string
	Amount   int64
	Currency string
	Receipt  string
	Status   string
}

// StaticGateway simulates a gateway that accepts every order. It is used in
// development when no gateway credentials are configured and in tests.
type StaticGateway struct {
	mu   sync.Mutex
	seq  int
	Last OrderRequest
}

// CreateOrder approves the request with a sequential synthetic order id.
func (g *StaticGateway) CreateOrder(_ context.Context, req OrderRequest) (Order, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	g.Last = req
	return Order{
		ID:       fmt.Sprintf("order_static%06d", g.seq),
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
		Status:   "created",
	}, nil
}

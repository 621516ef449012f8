package admin

import (
	"context"
	"fmt"

	"agroMarket/domain"
	"agroMarket/pkg/logger"

	"golang.org/x/sync/errgroup"
)

type UserLister interface {
	GetNonAdminUsers(ctx context.Context) ([]domain.User, error)
}

type ProductLister interface {
	GetAllWithOwner(ctx context.Context) ([]domain.ProductWithOwner, error)
}

type OrderLister interface {
	GetAllOrders(ctx context.Context) ([]domain.AdminOrder, error)
}

type adminService struct {
	users    UserLister
	products ProductLister
	orders   OrderLister
}

func NewAdminService(users UserLister, products ProductLister, orders OrderLister) *adminService {
	return &adminService{
		users:    users,
		products: products,
		orders:   orders,
	}
}

// Dashboard loads the three admin listings concurrently. The first failure cancels the rest.
func (s *adminService) Dashboard(ctx context.Context) (domain.AdminDashboard, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when loading admin dashboard")
		return domain.AdminDashboard{}, fmt.Errorf("context error: %w", err)
	}

	var dash domain.AdminDashboard
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		users, err := s.users.GetNonAdminUsers(gctx)
		dash.Users = users
		return err
	})
	g.Go(func() error {
		products, err := s.products.GetAllWithOwner(gctx)
		dash.Products = products
		return err
	})
	g.Go(func() error {
		orders, err := s.orders.GetAllOrders(gctx)
		dash.Orders = orders
		return err
	})

	if err := g.Wait(); err != nil {
		logger.Error("failed to load admin dashboard", err)
		return domain.AdminDashboard{}, err
	}

	return dash, nil
}

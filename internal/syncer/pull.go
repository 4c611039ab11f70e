package syncer

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/botica-pos/botica/internal/sales"
	"github.com/botica-pos/botica/internal/shared"
)

// Pull returns every entity modified strictly after since. The server clock
// is read before any table query so a row committed mid-pull is picked up by
// the next pull instead of falling between watermarks. Supplier-facing data
// and purchase costs are withheld from cashiers.
func (s *Service) Pull(ctx context.Context, caller shared.Identity, since *time.Time) (PullResponse, error) {
	started := s.now()

	serverTime, err := s.store.ServerTime(ctx)
	if err != nil {
		return PullResponse{}, err
	}

	withCost := caller.CanViewSupplierData()
	var data PullData

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		sls, err := s.store.ListSalesSince(gctx, since)
		if err != nil {
			return err
		}
		hydrated, err := s.hydrateSales(gctx, sls)
		if err != nil {
			return err
		}
		data.Sales = hydrated
		return nil
	})
	g.Go(func() error {
		mvs, err := s.store.ListMovementsSince(gctx, since)
		if err != nil {
			return err
		}
		data.StockMovements = make([]StockMovementDTO, 0, len(mvs))
		for _, m := range mvs {
			data.StockMovements = append(data.StockMovements, movementToDTO(m))
		}
		return nil
	})
	g.Go(func() error {
		ps, err := s.store.ListProductsSince(gctx, since)
		if err != nil {
			return err
		}
		data.Products = make([]ProductDTO, 0, len(ps))
		for _, p := range ps {
			data.Products = append(data.Products, productToDTO(p, withCost))
		}
		return nil
	})
	g.Go(func() error {
		bs, err := s.store.ListProductBatchesSince(gctx, since)
		if err != nil {
			return err
		}
		data.ProductBatches = make([]ProductBatchDTO, 0, len(bs))
		for _, b := range bs {
			data.ProductBatches = append(data.ProductBatches, batchToDTO(b))
		}
		return nil
	})
	g.Go(func() error {
		cps, err := s.store.ListCreditPaymentsSince(gctx, since)
		if err != nil {
			return err
		}
		data.CreditPayments = make([]CreditPaymentDTO, 0, len(cps))
		for _, p := range cps {
			data.CreditPayments = append(data.CreditPayments, creditPaymentToDTO(p))
		}
		return nil
	})
	g.Go(func() error {
		rs, err := s.store.ListStockoutReportsSince(gctx, since)
		if err != nil {
			return err
		}
		data.StockoutReports = make([]StockoutReportDTO, 0, len(rs))
		for _, r := range rs {
			data.StockoutReports = append(data.StockoutReports, stockoutToDTO(r))
		}
		return nil
	})
	g.Go(func() error {
		prs, err := s.store.ListSalePrescriptionsSince(gctx, since)
		if err != nil {
			return err
		}
		data.SalePrescriptions = make([]SalePrescriptionDTO, 0, len(prs))
		for _, p := range prs {
			data.SalePrescriptions = append(data.SalePrescriptions, prescriptionToDTO(p))
		}
		return nil
	})

	if withCost {
		g.Go(func() error {
			es, err := s.store.ListExpensesSince(gctx, since)
			if err != nil {
				return err
			}
			data.Expenses = make([]ExpenseDTO, 0, len(es))
			for _, e := range es {
				data.Expenses = append(data.Expenses, expenseToDTO(e))
			}
			return nil
		})
		g.Go(func() error {
			sups, err := s.store.ListSuppliersSince(gctx, since)
			if err != nil {
				return err
			}
			data.Suppliers = make([]SupplierDTO, 0, len(sups))
			for _, sup := range sups {
				data.Suppliers = append(data.Suppliers, supplierToDTO(sup))
			}
			return nil
		})
		g.Go(func() error {
			os, err := s.store.ListSupplierOrdersSince(gctx, since)
			if err != nil {
				return err
			}
			data.SupplierOrders = make([]SupplierOrderDTO, 0, len(os))
			for _, o := range os {
				data.SupplierOrders = append(data.SupplierOrders, supplierOrderToDTO(o))
			}
			return nil
		})
		g.Go(func() error {
			ois, err := s.store.ListSupplierOrderItemsSince(gctx, since)
			if err != nil {
				return err
			}
			data.SupplierOrderItems = make([]SupplierOrderItemDTO, 0, len(ois))
			for _, oi := range ois {
				data.SupplierOrderItems = append(data.SupplierOrderItems, supplierOrderItemToDTO(oi))
			}
			return nil
		})
		g.Go(func() error {
			srs, err := s.store.ListSupplierReturnsSince(gctx, since)
			if err != nil {
				return err
			}
			data.SupplierReturns = make([]SupplierReturnDTO, 0, len(srs))
			for _, r := range srs {
				data.SupplierReturns = append(data.SupplierReturns, supplierReturnToDTO(r))
			}
			return nil
		})
		g.Go(func() error {
			pss, err := s.store.ListProductSuppliersSince(gctx, since)
			if err != nil {
				return err
			}
			data.ProductSuppliers = make([]ProductSupplierDTO, 0, len(pss))
			for _, ps := range pss {
				data.ProductSuppliers = append(data.ProductSuppliers, productSupplierToDTO(ps))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return PullResponse{}, err
	}

	s.metrics.ObservePullDuration(time.Since(started))
	return PullResponse{Success: true, Data: data, ServerTime: serverTime}, nil
}

// hydrateSales attaches sale items to their parent sales in one query.
func (s *Service) hydrateSales(ctx context.Context, sls []sales.Sale) ([]SaleDTO, error) {
	out := make([]SaleDTO, 0, len(sls))
	if len(sls) == 0 {
		return out, nil
	}
	ids := make([]string, 0, len(sls))
	for _, sl := range sls {
		ids = append(ids, sl.ID)
	}
	items, err := s.store.ListSaleItemsForSales(ctx, ids)
	if err != nil {
		return nil, err
	}
	bySale := make(map[string][]sales.SaleItem, len(sls))
	for _, it := range items {
		bySale[it.SaleID] = append(bySale[it.SaleID], it)
	}
	for _, sl := range sls {
		sl.Items = bySale[sl.ID]
		out = append(out, saleToDTO(sl))
	}
	return out, nil
}

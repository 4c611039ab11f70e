package syncer

import (
	"github.com/botica-pos/botica/internal/catalog"
	"github.com/botica-pos/botica/internal/inventory"
	"github.com/botica-pos/botica/internal/procurement"
	"github.com/botica-pos/botica/internal/sales"
)

func (d SaleDTO) toDomain() sales.Sale {
	s := sales.Sale{
		ID:             d.ID,
		Total:          d.Total,
		PaymentMethod:  sales.PaymentMethod(d.PaymentMethod),
		PaymentStatus:  sales.PaymentStatus(d.PaymentStatus),
		AmountPaid:     d.AmountPaid,
		AmountDue:      d.AmountDue,
		DueDate:        d.DueDate,
		ModifiedAt:     d.ModifiedAt,
		ModifiedBy:     d.ModifiedBy,
		IdempotencyKey: d.IdempotencyKey,
	}
	for _, it := range d.Items {
		s.Items = append(s.Items, it.toDomain())
	}
	return s
}

func saleToDTO(s sales.Sale) SaleDTO {
	d := SaleDTO{
		ID:            s.ID,
		Total:         s.Total,
		PaymentMethod: string(s.PaymentMethod),
		PaymentStatus: string(s.PaymentStatus),
		AmountPaid:    s.AmountPaid,
		AmountDue:     s.AmountDue,
		DueDate:       s.DueDate,
		ModifiedAt:    s.ModifiedAt,
		ModifiedBy:    s.ModifiedBy,
	}
	for _, it := range s.Items {
		d.Items = append(d.Items, saleItemToDTO(it))
	}
	return d
}

func (d SaleItemDTO) toDomain() sales.SaleItem {
	return sales.SaleItem{
		ID:         d.ID,
		SaleID:     d.SaleID,
		ProductID:  d.ProductID,
		Quantity:   d.Quantity,
		UnitPrice:  d.UnitPrice,
		Subtotal:   d.Subtotal,
		ModifiedAt: d.ModifiedAt,
	}
}

func saleItemToDTO(i sales.SaleItem) SaleItemDTO {
	return SaleItemDTO{
		ID:         i.ID,
		SaleID:     i.SaleID,
		ProductID:  i.ProductID,
		Quantity:   i.Quantity,
		UnitPrice:  i.UnitPrice,
		Subtotal:   i.Subtotal,
		ModifiedAt: i.ModifiedAt,
	}
}

func (d ExpenseDTO) toDomain() sales.Expense {
	return sales.Expense{
		ID:         d.ID,
		Amount:     d.Amount,
		Category:   d.Category,
		Note:       d.Note,
		SpentAt:    d.SpentAt,
		ModifiedAt: d.ModifiedAt,
		ModifiedBy: d.ModifiedBy,
	}
}

func expenseToDTO(e sales.Expense) ExpenseDTO {
	return ExpenseDTO{
		ID:         e.ID,
		Amount:     e.Amount,
		Category:   e.Category,
		Note:       e.Note,
		SpentAt:    e.SpentAt,
		ModifiedAt: e.ModifiedAt,
		ModifiedBy: e.ModifiedBy,
	}
}

func (d StockMovementDTO) toDomain() inventory.Movement {
	return inventory.Movement{
		ID:             d.ID,
		ProductID:      d.ProductID,
		Type:           inventory.MovementType(d.Type),
		QuantityChange: d.QuantityChange,
		Reason:         d.Reason,
		CreatedAt:      d.CreatedAt,
		UserID:         d.UserID,
		IdempotencyKey: d.IdempotencyKey,
	}
}

func movementToDTO(m inventory.Movement) StockMovementDTO {
	return StockMovementDTO{
		ID:             m.ID,
		ProductID:      m.ProductID,
		Type:           string(m.Type),
		QuantityChange: m.QuantityChange,
		Reason:         m.Reason,
		CreatedAt:      m.CreatedAt,
		UserID:         m.UserID,
	}
}

func (d ProductDTO) toDomain() catalog.Product {
	return catalog.Product{
		ID:         d.ID,
		Name:       d.Name,
		Price:      d.Price,
		PriceBuy:   d.PriceBuy,
		Stock:      d.Stock,
		MinStock:   d.MinStock,
		UpdatedAt:  d.UpdatedAt,
		ModifiedBy: d.ModifiedBy,
	}
}

func productToDTO(p catalog.Product, withCost bool) ProductDTO {
	d := ProductDTO{
		ID:         p.ID,
		Name:       p.Name,
		Price:      p.Price,
		Stock:      p.Stock,
		MinStock:   p.MinStock,
		UpdatedAt:  p.UpdatedAt,
		ModifiedBy: p.ModifiedBy,
	}
	if withCost {
		d.PriceBuy = p.PriceBuy
	}
	return d
}

func (d ProductBatchDTO) toDomain() catalog.ProductBatch {
	return catalog.ProductBatch{
		ID:             d.ID,
		ProductID:      d.ProductID,
		LotNumber:      d.LotNumber,
		ExpirationDate: d.ExpirationDate,
		Quantity:       d.Quantity,
		InitialQty:     d.InitialQty,
		ReceivedDate:   d.ReceivedDate,
		UpdatedAt:      d.UpdatedAt,
	}
}

func batchToDTO(b catalog.ProductBatch) ProductBatchDTO {
	return ProductBatchDTO{
		ID:             b.ID,
		ProductID:      b.ProductID,
		LotNumber:      b.LotNumber,
		ExpirationDate: b.ExpirationDate,
		Quantity:       b.Quantity,
		InitialQty:     b.InitialQty,
		ReceivedDate:   b.ReceivedDate,
		UpdatedAt:      b.UpdatedAt,
	}
}

func (d SupplierDTO) toDomain() procurement.Supplier {
	return procurement.Supplier{
		ID:         d.ID,
		Name:       d.Name,
		Phone:      d.Phone,
		Email:      d.Email,
		ModifiedAt: d.ModifiedAt,
		ModifiedBy: d.ModifiedBy,
	}
}

func supplierToDTO(s procurement.Supplier) SupplierDTO {
	return SupplierDTO{
		ID:         s.ID,
		Name:       s.Name,
		Phone:      s.Phone,
		Email:      s.Email,
		ModifiedAt: s.ModifiedAt,
		ModifiedBy: s.ModifiedBy,
	}
}

func (d SupplierOrderDTO) toDomain() procurement.SupplierOrder {
	status := procurement.OrderStatus(d.Status)
	if status == "" {
		status = procurement.OrderDraft
	}
	return procurement.SupplierOrder{
		ID:         d.ID,
		SupplierID: d.SupplierID,
		Status:     status,
		Total:      d.Total,
		OrderedAt:  d.OrderedAt,
		ModifiedAt: d.ModifiedAt,
		ModifiedBy: d.ModifiedBy,
	}
}

func supplierOrderToDTO(o procurement.SupplierOrder) SupplierOrderDTO {
	return SupplierOrderDTO{
		ID:         o.ID,
		SupplierID: o.SupplierID,
		Status:     string(o.Status),
		Total:      o.Total,
		OrderedAt:  o.OrderedAt,
		ModifiedAt: o.ModifiedAt,
		ModifiedBy: o.ModifiedBy,
	}
}

func (d SupplierOrderItemDTO) toDomain() procurement.SupplierOrderItem {
	return procurement.SupplierOrderItem{
		ID:         d.ID,
		OrderID:    d.OrderID,
		ProductID:  d.ProductID,
		Quantity:   d.Quantity,
		UnitCost:   d.UnitCost,
		ModifiedAt: d.ModifiedAt,
	}
}

func supplierOrderItemToDTO(i procurement.SupplierOrderItem) SupplierOrderItemDTO {
	return SupplierOrderItemDTO{
		ID:         i.ID,
		OrderID:    i.OrderID,
		ProductID:  i.ProductID,
		Quantity:   i.Quantity,
		UnitCost:   i.UnitCost,
		ModifiedAt: i.ModifiedAt,
	}
}

func (d SupplierReturnDTO) toDomain() procurement.SupplierReturn {
	return procurement.SupplierReturn{
		ID:         d.ID,
		SupplierID: d.SupplierID,
		ProductID:  d.ProductID,
		BatchID:    d.BatchID,
		Quantity:   d.Quantity,
		Reason:     d.Reason,
		ReturnedAt: d.ReturnedAt,
		ModifiedAt: d.ModifiedAt,
		ModifiedBy: d.ModifiedBy,
	}
}

func supplierReturnToDTO(r procurement.SupplierReturn) SupplierReturnDTO {
	return SupplierReturnDTO{
		ID:         r.ID,
		SupplierID: r.SupplierID,
		ProductID:  r.ProductID,
		BatchID:    r.BatchID,
		Quantity:   r.Quantity,
		Reason:     r.Reason,
		ReturnedAt: r.ReturnedAt,
		ModifiedAt: r.ModifiedAt,
		ModifiedBy: r.ModifiedBy,
	}
}

func (d ProductSupplierDTO) toDomain() procurement.ProductSupplier {
	return procurement.ProductSupplier{
		ID:         d.ID,
		ProductID:  d.ProductID,
		SupplierID: d.SupplierID,
		UnitCost:   d.UnitCost,
		ModifiedAt: d.ModifiedAt,
	}
}

func productSupplierToDTO(p procurement.ProductSupplier) ProductSupplierDTO {
	return ProductSupplierDTO{
		ID:         p.ID,
		ProductID:  p.ProductID,
		SupplierID: p.SupplierID,
		UnitCost:   p.UnitCost,
		ModifiedAt: p.ModifiedAt,
	}
}

func (d CreditPaymentDTO) toDomain() sales.CreditPayment {
	return sales.CreditPayment{
		ID:         d.ID,
		SaleID:     d.SaleID,
		Amount:     d.Amount,
		PaidAt:     d.PaidAt,
		ModifiedAt: d.ModifiedAt,
		ModifiedBy: d.ModifiedBy,
	}
}

func creditPaymentToDTO(p sales.CreditPayment) CreditPaymentDTO {
	return CreditPaymentDTO{
		ID:         p.ID,
		SaleID:     p.SaleID,
		Amount:     p.Amount,
		PaidAt:     p.PaidAt,
		ModifiedAt: p.ModifiedAt,
		ModifiedBy: p.ModifiedBy,
	}
}

func (d StockoutReportDTO) toDomain() catalog.StockoutReport {
	return catalog.StockoutReport{
		ID:         d.ID,
		ProductID:  d.ProductID,
		Quantity:   d.Quantity,
		Note:       d.Note,
		ReportedAt: d.ReportedAt,
		ModifiedAt: d.ModifiedAt,
		ModifiedBy: d.ModifiedBy,
	}
}

func stockoutToDTO(r catalog.StockoutReport) StockoutReportDTO {
	return StockoutReportDTO{
		ID:         r.ID,
		ProductID:  r.ProductID,
		Quantity:   r.Quantity,
		Note:       r.Note,
		ReportedAt: r.ReportedAt,
		ModifiedAt: r.ModifiedAt,
		ModifiedBy: r.ModifiedBy,
	}
}

func (d SalePrescriptionDTO) toDomain() sales.SalePrescription {
	return sales.SalePrescription{
		ID:          d.ID,
		SaleID:      d.SaleID,
		Prescriber:  d.Prescriber,
		PatientName: d.PatientName,
		Reference:   d.Reference,
		ModifiedAt:  d.ModifiedAt,
		ModifiedBy:  d.ModifiedBy,
	}
}

func prescriptionToDTO(p sales.SalePrescription) SalePrescriptionDTO {
	return SalePrescriptionDTO{
		ID:          p.ID,
		SaleID:      p.SaleID,
		Prescriber:  p.Prescriber,
		PatientName: p.PatientName,
		Reference:   p.Reference,
		ModifiedAt:  p.ModifiedAt,
		ModifiedBy:  p.ModifiedBy,
	}
}

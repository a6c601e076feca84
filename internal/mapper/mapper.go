// Package mapper converts persistence models into API DTOs.
package mapper

import (
	"github.com/meridian-steel/shop-api/internal/domain"
	"github.com/meridian-steel/shop-api/internal/service"
)

// ToEstimateDTO converts Estimate to EstimateDTO
func ToEstimateDTO(est *domain.Estimate, breakdown *domain.TotalsBreakdown) domain.EstimateDTO {
	dto := domain.EstimateDTO{
		ID:              est.ID,
		CustomerName:    est.CustomerName,
		ContactName:     est.ContactName,
		ContactEmail:    est.ContactEmail,
		ContactPhone:    est.ContactPhone,
		Status:          est.Status,
		TaxRate:         est.TaxRate,
		TaxExempt:       est.TaxExempt,
		DiscountPercent: est.DiscountPercent,
		DiscountAmount:  est.DiscountAmount,
		TruckingCost:    est.TruckingCost,
		MinimumOverride: est.MinimumOverride,
		Notes:           est.Notes,
		PartsSubtotal:   est.PartsSubtotal,
		TaxAmount:       est.TaxAmount,
		GrandTotal:      est.GrandTotal,
		WorkOrderID:     est.WorkOrderID,
		Breakdown:       breakdown,
		CreatedAt:       est.CreatedAt,
		UpdatedAt:       est.UpdatedAt,
	}

	if len(est.Parts) > 0 {
		dto.Parts = make([]domain.PartDTO, len(est.Parts))
		for i := range est.Parts {
			dto.Parts[i] = ToPartDTO(&est.Parts[i])
		}
	}

	return dto
}

// ToPartDTO converts Part to PartDTO
func ToPartDTO(part *domain.Part) domain.PartDTO {
	return domain.PartDTO{
		ID:          part.ID,
		PartNumber:  part.PartNumber,
		PartType:    part.PartType,
		Quantity:    part.Quantity,
		Description: part.Description,

		Thickness:       part.Thickness,
		Width:           part.Width,
		Length:          part.Length,
		InsideDiameter:  part.InsideDiameter,
		OutsideDiameter: part.OutsideDiameter,

		MaterialSource:        part.MaterialSource,
		MaterialUnitCost:      part.MaterialUnitCost,
		MaterialMarkupPercent: part.MaterialMarkupPercent,
		MaterialRounding:      part.MaterialRounding,

		RollingCost: part.RollingCost,
		LaborTotal:  part.LaborTotal,

		HasDrilling:  part.HasDrilling,
		DrillingCost: part.DrillingCost,
		HasCutting:   part.HasCutting,
		CuttingCost:  part.CuttingCost,
		HasFitting:   part.HasFitting,
		FittingCost:  part.FittingCost,
		HasWelding:   part.HasWelding,
		WeldingCost:  part.WeldingCost,

		OtherServicesCost:          part.OtherServicesCost,
		OtherServicesMarkupPercent: part.OtherServicesMarkupPercent,

		MaterialTotal:      part.MaterialTotal,
		OtherServicesTotal: part.OtherServicesTotal,
		PartTotal:          part.PartTotal,

		Details: part.Details,
	}
}

// ToWorkOrderDTO converts WorkOrder to WorkOrderDTO
func ToWorkOrderDTO(wo *domain.WorkOrder) domain.WorkOrderDTO {
	dto := domain.WorkOrderDTO{
		ID:            wo.ID,
		EstimateID:    wo.EstimateID,
		DRNumber:      wo.DRNumber,
		CustomerName:  wo.CustomerName,
		Status:        wo.Status,
		PartsSubtotal: wo.PartsSubtotal,
		TaxAmount:     wo.TaxAmount,
		GrandTotal:    wo.GrandTotal,
		PromisedDate:  wo.PromisedDate,
		Notes:         wo.Notes,
		CreatedAt:     wo.CreatedAt,
		UpdatedAt:     wo.UpdatedAt,
	}

	if wo.DRNumber != nil {
		dto.DRDisplay = service.FormatNumber(domain.NumberKindDeliveryReceipt, *wo.DRNumber)
	}

	if len(wo.Parts) > 0 {
		dto.Parts = make([]domain.WorkOrderPartDTO, len(wo.Parts))
		for i := range wo.Parts {
			dto.Parts[i] = ToWorkOrderPartDTO(&wo.Parts[i])
		}
	}

	return dto
}

// ToWorkOrderPartDTO converts WorkOrderPart to WorkOrderPartDTO
func ToWorkOrderPartDTO(part *domain.WorkOrderPart) domain.WorkOrderPartDTO {
	return domain.WorkOrderPartDTO{
		ID:                 part.ID,
		PartNumber:         part.PartNumber,
		PartType:           part.PartType,
		Quantity:           part.Quantity,
		Description:        part.Description,
		Thickness:          part.Thickness,
		Width:              part.Width,
		Length:             part.Length,
		InsideDiameter:     part.InsideDiameter,
		OutsideDiameter:    part.OutsideDiameter,
		MaterialSource:     part.MaterialSource,
		MaterialTotal:      part.MaterialTotal,
		OtherServicesTotal: part.OtherServicesTotal,
		PartTotal:          part.PartTotal,
		Details:            part.Details,
	}
}

// ToPurchaseOrderDTO converts PurchaseOrder to PurchaseOrderDTO
func ToPurchaseOrderDTO(po *domain.PurchaseOrder) domain.PurchaseOrderDTO {
	dto := domain.PurchaseOrderDTO{
		ID:           po.ID,
		PONumber:     po.PONumber,
		Vendor:       po.Vendor,
		Material:     po.Material,
		Cost:         po.Cost,
		Status:       po.Status,
		EstimateID:   po.EstimateID,
		WorkOrderID:  po.WorkOrderID,
		ExpectedDate: po.ExpectedDate,
		Notes:        po.Notes,
		CreatedAt:    po.CreatedAt,
		UpdatedAt:    po.UpdatedAt,
	}

	if po.PONumber != nil {
		dto.PODisplay = service.FormatNumber(domain.NumberKindPurchaseOrder, *po.PONumber)
	}

	return dto
}

// ToNumberIssuanceDTO converts NumberIssuance to NumberIssuanceDTO
func ToNumberIssuanceDTO(iss *domain.NumberIssuance) domain.NumberIssuanceDTO {
	return domain.NumberIssuanceDTO{
		ID:         iss.ID,
		Kind:       iss.Kind,
		Number:     iss.Number,
		Display:    service.FormatNumber(iss.Kind, iss.Number),
		Status:     iss.Status,
		VoidReason: iss.VoidReason,
		VoidedAt:   iss.VoidedAt,
		CreatedAt:  iss.CreatedAt,
	}
}

// ToLaborMinimumRuleDTO converts LaborMinimumRule to LaborMinimumRuleDTO
func ToLaborMinimumRuleDTO(rule *domain.LaborMinimumRule) domain.LaborMinimumRuleDTO {
	return domain.LaborMinimumRuleDTO{
		ID:        rule.ID,
		PartType:  rule.PartType,
		Label:     rule.Label,
		MinSize:   rule.MinSize,
		MaxSize:   rule.MaxSize,
		MinWidth:  rule.MinWidth,
		MaxWidth:  rule.MaxWidth,
		Minimum:   rule.Minimum,
		IsActive:  rule.IsActive,
		CreatedAt: rule.CreatedAt,
		UpdatedAt: rule.UpdatedAt,
	}
}

// ToFileDTO converts File to FileDTO
func ToFileDTO(file *domain.File) domain.FileDTO {
	return domain.FileDTO{
		ID:          file.ID,
		Filename:    file.Filename,
		ContentType: file.ContentType,
		Size:        file.Size,
		EstimateID:  file.EstimateID,
		WorkOrderID: file.WorkOrderID,
		CreatedAt:   file.CreatedAt,
	}
}

// ToEstimateDTOs converts a slice of estimates without parts or breakdowns
func ToEstimateDTOs(ests []domain.Estimate) []domain.EstimateDTO {
	dtos := make([]domain.EstimateDTO, len(ests))
	for i := range ests {
		dtos[i] = ToEstimateDTO(&ests[i], nil)
	}
	return dtos
}

// ToWorkOrderDTOs converts a slice of work orders
func ToWorkOrderDTOs(wos []domain.WorkOrder) []domain.WorkOrderDTO {
	dtos := make([]domain.WorkOrderDTO, len(wos))
	for i := range wos {
		dtos[i] = ToWorkOrderDTO(&wos[i])
	}
	return dtos
}

// ToPurchaseOrderDTOs converts a slice of purchase orders
func ToPurchaseOrderDTOs(pos []domain.PurchaseOrder) []domain.PurchaseOrderDTO {
	dtos := make([]domain.PurchaseOrderDTO, len(pos))
	for i := range pos {
		dtos[i] = ToPurchaseOrderDTO(&pos[i])
	}
	return dtos
}

// ToNumberIssuanceDTOs converts a slice of issuances
func ToNumberIssuanceDTOs(issuances []domain.NumberIssuance) []domain.NumberIssuanceDTO {
	dtos := make([]domain.NumberIssuanceDTO, len(issuances))
	for i := range issuances {
		dtos[i] = ToNumberIssuanceDTO(&issuances[i])
	}
	return dtos
}

// ToLaborMinimumRuleDTOs converts a slice of rules
func ToLaborMinimumRuleDTOs(rules []domain.LaborMinimumRule) []domain.LaborMinimumRuleDTO {
	dtos := make([]domain.LaborMinimumRuleDTO, len(rules))
	for i := range rules {
		dtos[i] = ToLaborMinimumRuleDTO(&rules[i])
	}
	return dtos
}

// ToFileDTOs converts a slice of files
func ToFileDTOs(files []domain.File) []domain.FileDTO {
	dtos := make([]domain.FileDTO, len(files))
	for i := range files {
		dtos[i] = ToFileDTO(&files[i])
	}
	return dtos
}

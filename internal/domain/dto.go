package domain

import (
	"time"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Estimates
// ---------------------------------------------------------------------------

// CreateEstimateRequest is the payload for creating an estimate
type CreateEstimateRequest struct {
	CustomerName    string   `json:"customerName" validate:"required,max=200"`
	ContactName     string   `json:"contactName" validate:"max=200"`
	ContactEmail    string   `json:"contactEmail" validate:"omitempty,email"`
	ContactPhone    string   `json:"contactPhone" validate:"max=50"`
	TaxRate         float64  `json:"taxRate" validate:"gte=0"`
	TaxExempt       FlexBool `json:"taxExempt"`
	DiscountPercent float64  `json:"discountPercent" validate:"gte=0"`
	DiscountAmount  float64  `json:"discountAmount" validate:"gte=0"`
	TruckingCost    float64  `json:"truckingCost" validate:"gte=0"`
	MinimumOverride FlexBool `json:"minimumOverride"`
	Notes           string   `json:"notes"`
}

// UpdateEstimateRequest is the payload for updating estimate header fields.
// Pointer fields are applied only when present.
type UpdateEstimateRequest struct {
	CustomerName    *string   `json:"customerName" validate:"omitempty,max=200"`
	ContactName     *string   `json:"contactName" validate:"omitempty,max=200"`
	ContactEmail    *string   `json:"contactEmail" validate:"omitempty,email"`
	ContactPhone    *string   `json:"contactPhone" validate:"omitempty,max=50"`
	TaxRate         *float64  `json:"taxRate" validate:"omitempty,gte=0"`
	TaxExempt       *FlexBool `json:"taxExempt"`
	DiscountPercent *float64  `json:"discountPercent" validate:"omitempty,gte=0"`
	DiscountAmount  *float64  `json:"discountAmount" validate:"omitempty,gte=0"`
	TruckingCost    *float64  `json:"truckingCost" validate:"omitempty,gte=0"`
	MinimumOverride *FlexBool `json:"minimumOverride"`
	Notes           *string   `json:"notes"`
}

// EstimateDTO is the API representation of an estimate
type EstimateDTO struct {
	ID              uuid.UUID         `json:"id"`
	CustomerName    string            `json:"customerName"`
	ContactName     string            `json:"contactName,omitempty"`
	ContactEmail    string            `json:"contactEmail,omitempty"`
	ContactPhone    string            `json:"contactPhone,omitempty"`
	Status          EstimateStatus    `json:"status"`
	TaxRate         float64           `json:"taxRate"`
	TaxExempt       bool              `json:"taxExempt"`
	DiscountPercent float64           `json:"discountPercent"`
	DiscountAmount  float64           `json:"discountAmount"`
	TruckingCost    float64           `json:"truckingCost"`
	MinimumOverride bool              `json:"minimumOverride"`
	Notes           string            `json:"notes,omitempty"`
	PartsSubtotal   float64           `json:"partsSubtotal"`
	TaxAmount       float64           `json:"taxAmount"`
	GrandTotal      float64           `json:"grandTotal"`
	WorkOrderID     *uuid.UUID        `json:"workOrderId,omitempty"`
	Parts           []PartDTO         `json:"parts,omitempty"`
	Breakdown       *TotalsBreakdown  `json:"breakdown,omitempty"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

// TotalsBreakdown exposes the aggregator's intermediate figures so the PDF
// layer and the UI can show how the grand total was composed.
type TotalsBreakdown struct {
	TotalLabor       float64 `json:"totalLabor"`
	TotalMaterial    float64 `json:"totalMaterial"`
	HighestMinimum   float64 `json:"highestMinimum"`
	MinimumRuleLabel string  `json:"minimumRuleLabel,omitempty"`
	MinimumApplies   bool    `json:"minimumApplies"`
	AdjustedLabor    float64 `json:"adjustedLabor"`
	LaborDifference  float64 `json:"laborDifference"`
	ExpediteFee      float64 `json:"expediteFee"`
	EmergencyFee     float64 `json:"emergencyFee"`
	DiscountApplied  float64 `json:"discountApplied"`
}

// ---------------------------------------------------------------------------
// Parts
// ---------------------------------------------------------------------------

// PartRequest is the payload for creating or replacing a part
type PartRequest struct {
	PartType    PartType `json:"partType" validate:"required"`
	Quantity    int      `json:"quantity" validate:"gte=1"`
	Description string   `json:"description" validate:"max=500"`

	Thickness       string `json:"thickness" validate:"max=50"`
	Width           string `json:"width" validate:"max=50"`
	Length          string `json:"length" validate:"max=50"`
	InsideDiameter  string `json:"insideDiameter" validate:"max=50"`
	OutsideDiameter string `json:"outsideDiameter" validate:"max=50"`

	MaterialSource        MaterialSource `json:"materialSource" validate:"omitempty,oneof=shop customer"`
	MaterialUnitCost      float64        `json:"materialUnitCost" validate:"gte=0"`
	MaterialMarkupPercent float64        `json:"materialMarkupPercent" validate:"gte=0"`
	MaterialRounding      RoundingPolicy `json:"materialRounding" validate:"omitempty,oneof=none dollar five_dollar"`

	RollingCost float64 `json:"rollingCost" validate:"gte=0"`
	LaborTotal  float64 `json:"laborTotal" validate:"gte=0"`

	HasDrilling  FlexBool `json:"hasDrilling"`
	DrillingCost float64  `json:"drillingCost" validate:"gte=0"`
	HasCutting   FlexBool `json:"hasCutting"`
	CuttingCost  float64  `json:"cuttingCost" validate:"gte=0"`
	HasFitting   FlexBool `json:"hasFitting"`
	FittingCost  float64  `json:"fittingCost" validate:"gte=0"`
	HasWelding   FlexBool `json:"hasWelding"`
	WeldingCost  float64  `json:"weldingCost" validate:"gte=0"`

	OtherServicesCost          float64  `json:"otherServicesCost" validate:"gte=0"`
	OtherServicesMarkupPercent *float64 `json:"otherServicesMarkupPercent" validate:"omitempty,gte=0"`

	// MaterialTotal and PartTotal are honored only for each-priced part
	// types, where the caller's specialized logic computed them upstream.
	MaterialTotal float64 `json:"materialTotal" validate:"gte=0"`
	PartTotal     float64 `json:"partTotal" validate:"gte=0"`

	Details PartDetails `json:"details"`
}

// PartDTO is the API representation of a part
type PartDTO struct {
	ID          uuid.UUID `json:"id"`
	PartNumber  int       `json:"partNumber"`
	PartType    PartType  `json:"partType"`
	Quantity    int       `json:"quantity"`
	Description string    `json:"description,omitempty"`

	Thickness       string `json:"thickness,omitempty"`
	Width           string `json:"width,omitempty"`
	Length          string `json:"length,omitempty"`
	InsideDiameter  string `json:"insideDiameter,omitempty"`
	OutsideDiameter string `json:"outsideDiameter,omitempty"`

	MaterialSource        MaterialSource `json:"materialSource"`
	MaterialUnitCost      float64        `json:"materialUnitCost"`
	MaterialMarkupPercent float64        `json:"materialMarkupPercent"`
	MaterialRounding      RoundingPolicy `json:"materialRounding"`

	RollingCost float64 `json:"rollingCost"`
	LaborTotal  float64 `json:"laborTotal"`

	HasDrilling  bool    `json:"hasDrilling"`
	DrillingCost float64 `json:"drillingCost"`
	HasCutting   bool    `json:"hasCutting"`
	CuttingCost  float64 `json:"cuttingCost"`
	HasFitting   bool    `json:"hasFitting"`
	FittingCost  float64 `json:"fittingCost"`
	HasWelding   bool    `json:"hasWelding"`
	WeldingCost  float64 `json:"weldingCost"`

	OtherServicesCost          float64  `json:"otherServicesCost"`
	OtherServicesMarkupPercent *float64 `json:"otherServicesMarkupPercent,omitempty"`

	MaterialTotal      float64 `json:"materialTotal"`
	OtherServicesTotal float64 `json:"otherServicesTotal"`
	PartTotal          float64 `json:"partTotal"`

	Details PartDetails `json:"details,omitempty"`
}

// ---------------------------------------------------------------------------
// Work orders
// ---------------------------------------------------------------------------

// ConvertEstimateRequest is the payload for converting an estimate into a
// work order.
type ConvertEstimateRequest struct {
	PromisedDate *time.Time `json:"promisedDate"`
	Notes        string     `json:"notes"`
}

// WorkOrderDTO is the API representation of a work order
type WorkOrderDTO struct {
	ID            uuid.UUID          `json:"id"`
	EstimateID    uuid.UUID          `json:"estimateId"`
	DRNumber      *int               `json:"drNumber,omitempty"`
	DRDisplay     string             `json:"drDisplay,omitempty"`
	CustomerName  string             `json:"customerName"`
	Status        WorkOrderStatus    `json:"status"`
	PartsSubtotal float64            `json:"partsSubtotal"`
	TaxAmount     float64            `json:"taxAmount"`
	GrandTotal    float64            `json:"grandTotal"`
	PromisedDate  *time.Time         `json:"promisedDate,omitempty"`
	Notes         string             `json:"notes,omitempty"`
	Parts         []WorkOrderPartDTO `json:"parts,omitempty"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
}

// WorkOrderPartDTO is the API representation of a work-order part
type WorkOrderPartDTO struct {
	ID                 uuid.UUID   `json:"id"`
	PartNumber         int         `json:"partNumber"`
	PartType           PartType    `json:"partType"`
	Quantity           int         `json:"quantity"`
	Description        string      `json:"description,omitempty"`
	Thickness          string      `json:"thickness,omitempty"`
	Width              string      `json:"width,omitempty"`
	Length             string      `json:"length,omitempty"`
	InsideDiameter     string      `json:"insideDiameter,omitempty"`
	OutsideDiameter    string      `json:"outsideDiameter,omitempty"`
	MaterialSource     MaterialSource `json:"materialSource"`
	MaterialTotal      float64     `json:"materialTotal"`
	OtherServicesTotal float64     `json:"otherServicesTotal"`
	PartTotal          float64     `json:"partTotal"`
	Details            PartDetails `json:"details,omitempty"`
}

// ---------------------------------------------------------------------------
// Purchase orders & numbering
// ---------------------------------------------------------------------------

// CreatePurchaseOrderRequest is the payload for creating a purchase order.
// When CustomNumber is set the number is reserved instead of allocated.
type CreatePurchaseOrderRequest struct {
	Vendor       string     `json:"vendor" validate:"required,max=200"`
	Material     string     `json:"material" validate:"max=500"`
	Cost         float64    `json:"cost" validate:"gte=0"`
	EstimateID   *uuid.UUID `json:"estimateId"`
	WorkOrderID  *uuid.UUID `json:"workOrderId"`
	ExpectedDate *time.Time `json:"expectedDate"`
	Notes        string     `json:"notes"`
	CustomNumber *int       `json:"customNumber" validate:"omitempty,gt=0"`
}

// PurchaseOrderDTO is the API representation of a purchase order
type PurchaseOrderDTO struct {
	ID           uuid.UUID           `json:"id"`
	PONumber     *int                `json:"poNumber,omitempty"`
	PODisplay    string              `json:"poDisplay,omitempty"`
	Vendor       string              `json:"vendor"`
	Material     string              `json:"material,omitempty"`
	Cost         float64             `json:"cost"`
	Status       PurchaseOrderStatus `json:"status"`
	EstimateID   *uuid.UUID          `json:"estimateId,omitempty"`
	WorkOrderID  *uuid.UUID          `json:"workOrderId,omitempty"`
	ExpectedDate *time.Time          `json:"expectedDate,omitempty"`
	Notes        string              `json:"notes,omitempty"`
	CreatedAt    time.Time           `json:"createdAt"`
	UpdatedAt    time.Time           `json:"updatedAt"`
}

// VoidNumberRequest is the payload for voiding an issued number
type VoidNumberRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

// NumberIssuanceDTO is the API representation of an issued number
type NumberIssuanceDTO struct {
	ID         uuid.UUID      `json:"id"`
	Kind       NumberKind     `json:"kind"`
	Number     int            `json:"number"`
	Display    string         `json:"display"`
	Status     IssuanceStatus `json:"status"`
	VoidReason string         `json:"voidReason,omitempty"`
	VoidedAt   *time.Time     `json:"voidedAt,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
}

// ---------------------------------------------------------------------------
// Labor minimum rules
// ---------------------------------------------------------------------------

// LaborMinimumRuleRequest is the payload for creating or updating a rule
type LaborMinimumRuleRequest struct {
	PartType PartType `json:"partType" validate:"required"`
	Label    string   `json:"label" validate:"required,max=200"`
	MinSize  *float64 `json:"minSize" validate:"omitempty,gte=0"`
	MaxSize  *float64 `json:"maxSize" validate:"omitempty,gte=0"`
	MinWidth *float64 `json:"minWidth" validate:"omitempty,gte=0"`
	MaxWidth *float64 `json:"maxWidth" validate:"omitempty,gte=0"`
	Minimum  float64  `json:"minimum" validate:"required,gt=0"`
	IsActive *bool    `json:"isActive"`
}

// LaborMinimumRuleDTO is the API representation of a rule
type LaborMinimumRuleDTO struct {
	ID        uuid.UUID `json:"id"`
	PartType  PartType  `json:"partType"`
	Label     string    `json:"label"`
	MinSize   *float64  `json:"minSize,omitempty"`
	MaxSize   *float64  `json:"maxSize,omitempty"`
	MinWidth  *float64  `json:"minWidth,omitempty"`
	MaxWidth  *float64  `json:"maxWidth,omitempty"`
	Minimum   float64   `json:"minimum"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ---------------------------------------------------------------------------
// Files
// ---------------------------------------------------------------------------

// FileDTO is the API representation of an uploaded file
type FileDTO struct {
	ID          uuid.UUID  `json:"id"`
	Filename    string     `json:"filename"`
	ContentType string     `json:"contentType"`
	Size        int64      `json:"size"`
	EstimateID  *uuid.UUID `json:"estimateId,omitempty"`
	WorkOrderID *uuid.UUID `json:"workOrderId,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// ListResponse is a generic paginated list envelope
type ListResponse[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
}

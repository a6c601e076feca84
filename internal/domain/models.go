package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:(gen_random_uuid())"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns an ID when the database does not (e.g. sqlite in tests).
func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// PartType classifies a part on an estimate or work order.
// The set is closed: pricing logic switches exhaustively on it.
type PartType string

const (
	PartTypePlateRoll   PartType = "plate_roll"
	PartTypeAngleRoll   PartType = "angle_roll"
	PartTypeConeRoll    PartType = "cone_roll"
	PartTypeBeamRoll    PartType = "beam_roll"
	PartTypePipeRoll    PartType = "pipe_roll"
	PartTypeFabrication PartType = "fabrication_service"
	PartTypeRushService PartType = "rush_service"
	PartTypeOther       PartType = "other"
)

// PricingModel says where a part's total comes from.
type PricingModel int

const (
	// PricingModelComputed parts are priced by the generic
	// material+labor+services formula.
	PricingModelComputed PricingModel = iota
	// PricingModelCallerSupplied parts ("each-priced") arrive with partTotal
	// already computed by their own specialized logic; the calculator must
	// never overwrite it.
	PricingModelCallerSupplied
	// PricingModelSurcharge is the rush-service line item, priced by the
	// aggregator outside the per-part formula.
	PricingModelSurcharge
)

// Model returns the pricing model for the part type.
func (t PartType) Model() PricingModel {
	switch t {
	case PartTypePlateRoll, PartTypeAngleRoll, PartTypeConeRoll, PartTypeBeamRoll, PartTypePipeRoll:
		return PricingModelCallerSupplied
	case PartTypeRushService:
		return PricingModelSurcharge
	case PartTypeFabrication, PartTypeOther:
		return PricingModelComputed
	}
	return PricingModelComputed
}

// IsValid checks if the PartType is a valid enum value
func (t PartType) IsValid() bool {
	switch t {
	case PartTypePlateRoll, PartTypeAngleRoll, PartTypeConeRoll, PartTypeBeamRoll,
		PartTypePipeRoll, PartTypeFabrication, PartTypeRushService, PartTypeOther:
		return true
	}
	return false
}

// MaterialSource says who supplies the raw material for a part.
type MaterialSource string

const (
	MaterialSourceShop     MaterialSource = "shop"
	MaterialSourceCustomer MaterialSource = "customer"
)

// RoundingPolicy is the per-part material rounding applied during
// minimum-charge evaluation.
type RoundingPolicy string

const (
	RoundingNone       RoundingPolicy = "none"
	RoundingDollar     RoundingPolicy = "dollar"
	RoundingFiveDollar RoundingPolicy = "five_dollar"
)

// EstimateStatus represents the lifecycle state of an estimate
type EstimateStatus string

const (
	EstimateStatusDraft     EstimateStatus = "draft"
	EstimateStatusSent      EstimateStatus = "sent"
	EstimateStatusConverted EstimateStatus = "converted"
	EstimateStatusDeclined  EstimateStatus = "declined"
)

// Estimate is a priced quote for a customer job. It exclusively owns its
// parts; totals are recomputed synchronously on every part mutation and the
// stored values are always reproducible from the part data.
type Estimate struct {
	BaseModel
	CustomerName    string         `gorm:"type:varchar(200);not null;index;column:customer_name"`
	ContactName     string         `gorm:"type:varchar(200);column:contact_name"`
	ContactEmail    string         `gorm:"type:varchar(255);column:contact_email"`
	ContactPhone    string         `gorm:"type:varchar(50);column:contact_phone"`
	Status          EstimateStatus `gorm:"type:varchar(50);not null;default:'draft';index"`
	TaxRate         float64        `gorm:"type:decimal(6,3);not null;default:0;column:tax_rate"`
	TaxExempt       bool           `gorm:"not null;default:false;column:tax_exempt"`
	DiscountPercent float64        `gorm:"type:decimal(6,2);not null;default:0;column:discount_percent"`
	DiscountAmount  float64        `gorm:"type:decimal(15,2);not null;default:0;column:discount_amount"`
	TruckingCost    float64        `gorm:"type:decimal(15,2);not null;default:0;column:trucking_cost"`
	MinimumOverride bool           `gorm:"not null;default:false;column:minimum_override"`
	Notes           string         `gorm:"type:text"`
	PartsSubtotal   float64        `gorm:"type:decimal(15,2);not null;default:0;column:parts_subtotal"`
	TaxAmount       float64        `gorm:"type:decimal(15,2);not null;default:0;column:tax_amount"`
	GrandTotal      float64        `gorm:"type:decimal(15,2);not null;default:0;column:grand_total"`
	CreatedByID     string         `gorm:"type:varchar(100);column:created_by_id"`
	CreatedByName   string         `gorm:"type:varchar(200);column:created_by_name"`
	WorkOrderID     *uuid.UUID     `gorm:"type:uuid;index;column:work_order_id"`
	Parts           []Part         `gorm:"foreignKey:EstimateID;constraint:OnDelete:CASCADE"`
	Files           []File         `gorm:"foreignKey:EstimateID"`
}

// Part is a line item on an estimate. Size descriptor fields are free-form
// strings ("3/8\"", "1-1/2\"", "24 ga"); the pricing package parses them into
// inches on demand. For each-priced types PartTotal is caller-supplied.
type Part struct {
	BaseModel
	EstimateID *uuid.UUID `gorm:"type:uuid;index;column:estimate_id"`
	PartNumber int        `gorm:"not null;default:0;column:part_number"`
	PartType   PartType   `gorm:"type:varchar(50);not null;index;column:part_type"`
	Quantity   int        `gorm:"not null;default:1"`

	Description     string `gorm:"type:varchar(500)"`
	Thickness       string `gorm:"type:varchar(50)"`
	Width           string `gorm:"type:varchar(50)"`
	Length          string `gorm:"type:varchar(50)"`
	InsideDiameter  string `gorm:"type:varchar(50);column:inside_diameter"`
	OutsideDiameter string `gorm:"type:varchar(50);column:outside_diameter"`

	MaterialSource        MaterialSource `gorm:"type:varchar(20);not null;default:'shop';column:material_source"`
	MaterialUnitCost      float64        `gorm:"type:decimal(15,2);not null;default:0;column:material_unit_cost"`
	MaterialMarkupPercent float64        `gorm:"type:decimal(6,2);not null;default:0;column:material_markup_percent"`
	MaterialRounding      RoundingPolicy `gorm:"type:varchar(20);not null;default:'none';column:material_rounding"`

	// RollingCost is the per-line labor/rolling charge for generic parts.
	// LaborTotal is the per-unit labor figure each-priced parts carry into
	// minimum-charge evaluation.
	RollingCost float64 `gorm:"type:decimal(15,2);not null;default:0;column:rolling_cost"`
	LaborTotal  float64 `gorm:"type:decimal(15,2);not null;default:0;column:labor_total"`

	HasDrilling  bool    `gorm:"not null;default:false;column:has_drilling"`
	DrillingCost float64 `gorm:"type:decimal(15,2);not null;default:0;column:drilling_cost"`
	HasCutting   bool    `gorm:"not null;default:false;column:has_cutting"`
	CuttingCost  float64 `gorm:"type:decimal(15,2);not null;default:0;column:cutting_cost"`
	HasFitting   bool    `gorm:"not null;default:false;column:has_fitting"`
	FittingCost  float64 `gorm:"type:decimal(15,2);not null;default:0;column:fitting_cost"`
	HasWelding   bool    `gorm:"not null;default:false;column:has_welding"`
	WeldingCost  float64 `gorm:"type:decimal(15,2);not null;default:0;column:welding_cost"`

	OtherServicesCost          float64  `gorm:"type:decimal(15,2);not null;default:0;column:other_services_cost"`
	OtherServicesMarkupPercent *float64 `gorm:"type:decimal(6,2);column:other_services_markup_percent"`

	MaterialTotal      float64 `gorm:"type:decimal(15,2);not null;default:0;column:material_total"`
	OtherServicesTotal float64 `gorm:"type:decimal(15,2);not null;default:0;column:other_services_total"`
	PartTotal          float64 `gorm:"type:decimal(15,2);not null;default:0;column:part_total"`

	Details PartDetails `gorm:"type:jsonb;column:details"`
}

// LaborMinimumRule is a configurable floor under the labor total of a group
// of each-priced parts. Size/width constraints are active only when present
// and greater than zero; multiple rules may target the same part type and the
// selector picks at most one winner.
type LaborMinimumRule struct {
	BaseModel
	PartType PartType `gorm:"type:varchar(50);not null;index;column:part_type"`
	Label    string   `gorm:"type:varchar(200);not null"`
	MinSize  *float64 `gorm:"type:decimal(10,4);column:min_size"`
	MaxSize  *float64 `gorm:"type:decimal(10,4);column:max_size"`
	MinWidth *float64 `gorm:"type:decimal(10,4);column:min_width"`
	MaxWidth *float64 `gorm:"type:decimal(10,4);column:max_width"`
	Minimum  float64  `gorm:"type:decimal(15,2);not null;column:minimum"`
	IsActive bool     `gorm:"not null;default:true;column:is_active"`
}

// WorkOrderStatus represents the status of a work order
type WorkOrderStatus string

const (
	WorkOrderStatusOpen      WorkOrderStatus = "open"
	WorkOrderStatusInShop    WorkOrderStatus = "in_shop"
	WorkOrderStatusShipped   WorkOrderStatus = "shipped"
	WorkOrderStatusCompleted WorkOrderStatus = "completed"
	WorkOrderStatusCancelled WorkOrderStatus = "cancelled"
)

// WorkOrder is created from a converted estimate. Pricing fields are copied
// verbatim from the estimate at conversion time and are not recomputed.
type WorkOrder struct {
	BaseModel
	EstimateID    uuid.UUID       `gorm:"type:uuid;not null;index;column:estimate_id"`
	Estimate      *Estimate       `gorm:"foreignKey:EstimateID"`
	DRNumber      *int            `gorm:"column:dr_number;uniqueIndex"`
	CustomerName  string          `gorm:"type:varchar(200);not null;column:customer_name"`
	Status        WorkOrderStatus `gorm:"type:varchar(50);not null;default:'open';index"`
	PartsSubtotal float64         `gorm:"type:decimal(15,2);not null;default:0;column:parts_subtotal"`
	TaxAmount     float64         `gorm:"type:decimal(15,2);not null;default:0;column:tax_amount"`
	GrandTotal    float64         `gorm:"type:decimal(15,2);not null;default:0;column:grand_total"`
	PromisedDate  *time.Time      `gorm:"type:date;column:promised_date"`
	Notes         string          `gorm:"type:text"`
	Parts         []WorkOrderPart `gorm:"foreignKey:WorkOrderID;constraint:OnDelete:CASCADE"`
	Files         []File          `gorm:"foreignKey:WorkOrderID"`
}

// WorkOrderPart is a verbatim copy of an estimate part taken at conversion.
type WorkOrderPart struct {
	BaseModel
	WorkOrderID uuid.UUID `gorm:"type:uuid;not null;index;column:work_order_id"`
	SourceID    uuid.UUID `gorm:"type:uuid;column:source_id"`
	PartNumber  int       `gorm:"not null;default:0;column:part_number"`
	PartType    PartType  `gorm:"type:varchar(50);not null;column:part_type"`
	Quantity    int       `gorm:"not null;default:1"`

	Description     string `gorm:"type:varchar(500)"`
	Thickness       string `gorm:"type:varchar(50)"`
	Width           string `gorm:"type:varchar(50)"`
	Length          string `gorm:"type:varchar(50)"`
	InsideDiameter  string `gorm:"type:varchar(50);column:inside_diameter"`
	OutsideDiameter string `gorm:"type:varchar(50);column:outside_diameter"`

	MaterialSource     MaterialSource `gorm:"type:varchar(20);not null;default:'shop';column:material_source"`
	MaterialTotal      float64        `gorm:"type:decimal(15,2);not null;default:0;column:material_total"`
	OtherServicesTotal float64        `gorm:"type:decimal(15,2);not null;default:0;column:other_services_total"`
	PartTotal          float64        `gorm:"type:decimal(15,2);not null;default:0;column:part_total"`

	Details PartDetails `gorm:"type:jsonb;column:details"`
}

// PurchaseOrderStatus represents the status of a material purchase order
type PurchaseOrderStatus string

const (
	PurchaseOrderStatusOpen     PurchaseOrderStatus = "open"
	PurchaseOrderStatusReceived PurchaseOrderStatus = "received"
	PurchaseOrderStatusVoid     PurchaseOrderStatus = "void"
)

// PurchaseOrder is a material order against a vendor. PONumber comes from the
// allocator (or an explicit reservation) and is cleared when the number is
// released.
type PurchaseOrder struct {
	BaseModel
	PONumber     *int                `gorm:"column:po_number;uniqueIndex"`
	Vendor       string              `gorm:"type:varchar(200);not null"`
	Material     string              `gorm:"type:varchar(500)"`
	Cost         float64             `gorm:"type:decimal(15,2);not null;default:0"`
	Status       PurchaseOrderStatus `gorm:"type:varchar(50);not null;default:'open';index"`
	EstimateID   *uuid.UUID          `gorm:"type:uuid;index;column:estimate_id"`
	WorkOrderID  *uuid.UUID          `gorm:"type:uuid;index;column:work_order_id"`
	OrderedByID  string              `gorm:"type:varchar(100);column:ordered_by_id"`
	ExpectedDate *time.Time          `gorm:"type:date;column:expected_date"`
	Notes        string              `gorm:"type:text"`
}

// NumberKind identifies which reference-number sequence a record belongs to.
type NumberKind string

const (
	NumberKindPurchaseOrder   NumberKind = "po"
	NumberKindDeliveryReceipt NumberKind = "dr"
)

// CounterName returns the sequence_counters row name for the kind.
func (k NumberKind) CounterName() string {
	return "next_" + string(k) + "_number"
}

// IsValid checks if the NumberKind is a valid enum value
func (k NumberKind) IsValid() bool {
	return k == NumberKindPurchaseOrder || k == NumberKindDeliveryReceipt
}

// SequenceCounter holds the next value to hand out for a named sequence.
// It is a hint, not ground truth: number_issuances is authoritative.
type SequenceCounter struct {
	Name      string    `gorm:"type:varchar(50);primaryKey"`
	NextValue int       `gorm:"not null;column:next_value"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// IssuanceStatus represents the status of an issued reference number
type IssuanceStatus string

const (
	IssuanceStatusActive IssuanceStatus = "active"
	IssuanceStatusVoid   IssuanceStatus = "void"
)

// NumberIssuance is the authoritative record that a number has been handed
// out. Voided numbers stay on file and are never reused automatically;
// releasing deletes the row and makes the number eligible again.
type NumberIssuance struct {
	BaseModel
	Kind       NumberKind     `gorm:"type:varchar(10);not null;uniqueIndex:idx_issuance_kind_number"`
	Number     int            `gorm:"not null;uniqueIndex:idx_issuance_kind_number"`
	Status     IssuanceStatus `gorm:"type:varchar(20);not null;default:'active';index"`
	VoidReason string         `gorm:"type:varchar(500);column:void_reason"`
	VoidedAt   *time.Time     `gorm:"column:voided_at"`
	IssuedByID string         `gorm:"type:varchar(100);column:issued_by_id"`
}

// TableName overrides the default table name
func (NumberIssuance) TableName() string {
	return "number_issuances"
}

// File represents an uploaded drawing or document attached to an estimate or
// work order.
type File struct {
	BaseModel
	Filename    string     `gorm:"type:varchar(255);not null"`
	ContentType string     `gorm:"type:varchar(100);not null"`
	Size        int64      `gorm:"not null"`
	StoragePath string     `gorm:"type:varchar(500);not null;unique"`
	EstimateID  *uuid.UUID `gorm:"type:uuid;index;column:estimate_id"`
	WorkOrderID *uuid.UUID `gorm:"type:uuid;index;column:work_order_id"`
}

// UserRoleType represents a role a user can have
type UserRoleType string

const (
	RoleAdmin      UserRoleType = "admin"
	RoleEstimator  UserRoleType = "estimator"
	RoleShop       UserRoleType = "shop"
	RoleViewer     UserRoleType = "viewer"
	RoleAPIService UserRoleType = "api_service"
)

// User represents a user in the system
type User struct {
	ID          string         `gorm:"type:varchar(100);primaryKey" json:"id"`
	Email       string         `gorm:"type:varchar(255);not null;unique" json:"email"`
	DisplayName string         `gorm:"type:varchar(200);not null;column:name" json:"displayName"`
	Roles       pq.StringArray `gorm:"type:text[];not null" json:"roles"`
	IsActive    bool           `gorm:"not null;default:true;column:is_active" json:"isActive"`
	LastLoginAt *time.Time     `gorm:"column:last_login_at" json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt   time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

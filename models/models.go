package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Warehouse units partitioning the product catalog.
const (
	UnitITJ = "ITJ"
	UnitJVL = "JVL"
)

// Units lists the known warehouse units in display order.
var Units = []string{UnitITJ, UnitJVL}

// Return schedule statuses.
const (
	StatusScheduled = "Agendado"
	StatusReceived  = "Recebido"
	StatusStored    = "Armazenado"
	StatusCancelled = "Cancelado"
)

var ScheduleStatuses = []string{StatusScheduled, StatusReceived, StatusStored, StatusCancelled}

// User represents an authenticated app user.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           int64     `bun:"id,pk,autoincrement"`
	Username     string    `bun:"username,unique,notnull"`
	PasswordHash string    `bun:"password_hash,notnull"`
	Name         string    `bun:"name,notnull"`
	Email        string    `bun:"email,notnull"`
	Role         string    `bun:"role,notnull"`
	CreatedAt    time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt    time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// UserPermission grants one module to a non-admin user.
type UserPermission struct {
	bun.BaseModel `bun:"table:user_permissions,alias:up"`

	UserID int64  `bun:"user_id,pk"`
	Module string `bun:"module,pk"`
}

// Session is used by middleware and auth handlers.
type Session struct {
	bun.BaseModel `bun:"table:sessions,alias:s"`

	ID          string          `bun:"id,pk"`
	UserID      int64           `bun:"user_id,notnull"`
	User        User            `bun:"rel:belongs-to,join:user_id=id"`
	UserRoles   []string        `bun:"-"`
	Permissions map[string]bool `bun:"-"`
	ExpiresAt   time.Time       `bun:"expires_at,notnull"`
	CreatedAt   time.Time       `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt   time.Time       `bun:"updated_at,notnull,default:current_timestamp"`
}

// Expired returns true when the session expiry time has passed.
func (s Session) Expired() bool {
	return time.Now().After(s.ExpiresAt)
}

// AuditLog captures immutable change history for key operations.
// UserID 0 marks actions run from the CLI.
type AuditLog struct {
	bun.BaseModel `bun:"table:audit_logs,alias:al"`

	ID         int64     `bun:"id,pk,autoincrement"`
	UserID     int64     `bun:"user_id,notnull"`
	Action     string    `bun:"action,notnull"`
	EntityType string    `bun:"entity_type,notnull"`
	EntityID   string    `bun:"entity_id,notnull"`
	BeforeJSON string    `bun:"before_json"`
	AfterJSON  string    `bun:"after_json"`
	CreatedAt  time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// ImportRun records one CSV upload.
type ImportRun struct {
	bun.BaseModel `bun:"table:import_runs,alias:ir"`

	ID          int64     `bun:"id,pk,autoincrement"`
	UserID      int64     `bun:"user_id,notnull"`
	Kind        string    `bun:"kind,notnull"`
	Unit        string    `bun:"unit,notnull"`
	FileName    string    `bun:"file_name,notnull"`
	RecordCount int       `bun:"record_count,notnull"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// ExportRun records one report download.
type ExportRun struct {
	bun.BaseModel `bun:"table:export_runs,alias:er"`

	ID         int64     `bun:"id,pk,autoincrement"`
	UserID     int64     `bun:"user_id,notnull"`
	ExportType string    `bun:"export_type,notnull"`
	CreatedAt  time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// Palletization is the pallet layer layout of a product.
type Palletization struct {
	Height int `json:"height"`
	Base   int `json:"base"`
}

// Product is a catalog entry. (SKU, Unit) is the identity key.
type Product struct {
	SKU             string        `json:"sku"`
	Item            string        `json:"item"`
	Description     string        `json:"description"`
	Category        string        `json:"category"`
	NetWeight       float64       `json:"netWeight"`
	GrossWeight     float64       `json:"grossWeight"`
	Volume          float64       `json:"volume"`
	Dimensions      string        `json:"dimensions"`
	Palletization   Palletization `json:"palletization"`
	Barcode         string        `json:"barcode"`
	Packaging       string        `json:"packaging"`
	MeasurementUnit string        `json:"measurementUnit"`
	Quantity        int           `json:"quantity"`
	Classification  string        `json:"classification"`
	Unit            string        `json:"unit"`
}

// ReturnSchedule is a scheduled return shipment. ID is generated; NFD may repeat.
type ReturnSchedule struct {
	ID               string    `json:"id"`
	Date             string    `json:"date"`
	Carrier          string    `json:"carrier"`
	OutboundShipment string    `json:"outboundShipment"`
	SalesNote        string    `json:"salesNote"`
	NFD              string    `json:"nfd"`
	Client           string    `json:"client"`
	BDV              string    `json:"bdv"`
	OV               string    `json:"ov"`
	ReturnReason     string    `json:"returnReason"`
	ProductState     string    `json:"productState"`
	NFVolume         int       `json:"nfVolume"`
	Status           string    `json:"status"`
	StorageDest      string    `json:"storageDest"`
	Received         bool      `json:"received"`
	ReceivedState    string    `json:"receivedState"`
	ReceiptNotes     string    `json:"receiptNotes"`
	CreatedAt        time.Time `json:"createdAt"`
}

// ConferenceEntry records the physical check of a received schedule.
type ConferenceEntry struct {
	ID             string    `json:"id"`
	ScheduleID     string    `json:"scheduleId"`
	NFD            string    `json:"nfd"`
	Client         string    `json:"client"`
	ReceivedVolume int       `json:"receivedVolume"`
	ProductState   string    `json:"productState"`
	Notes          string    `json:"notes"`
	ConferencedBy  string    `json:"conferencedBy"`
	CreatedAt      time.Time `json:"createdAt"`
}

// StorageEntry is one SKU line of a conferenced NFD.
type StorageEntry struct {
	ID           string    `json:"id"`
	NFD          string    `json:"nfd"`
	SKU          string    `json:"sku"`
	Description  string    `json:"description"`
	Quantity     int       `json:"quantity"`
	ProductState string    `json:"productState"`
	CreatedAt    time.Time `json:"createdAt"`
}

// AllocationEntry places volumes of an NFD at one Rua 08 position.
type AllocationEntry struct {
	ID              string    `json:"id"`
	NFD             string    `json:"nfd"`
	SKU             string    `json:"sku"`
	Building        int       `json:"building"`
	Level           int       `json:"level"`
	AllocatedVolume int       `json:"allocatedVolume"`
	AllocatedBy     string    `json:"allocatedBy"`
	CreatedAt       time.Time `json:"createdAt"`
}

package migration

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Source row shapes. Column tags follow the legacy schema's camelCase
// naming; every query scans into one of these, no generic rows leak out.

type SourceUser struct {
	UID      int64  `gorm:"column:uid"`
	Username string `gorm:"column:username"`
	Password string `gorm:"column:password"`
	Role     int    `gorm:"column:role"`
	Status   int    `gorm:"column:status"`
}

type SourceDocument struct {
	DocID        int64     `gorm:"column:docid"`
	VoucherID    string    `gorm:"column:voucherId"`
	CustomerName string    `gorm:"column:customerName"`
	TruckNo      string    `gorm:"column:truckNo"`
	Date         time.Time `gorm:"column:date"`
	CreatedBy    string    `gorm:"column:createdBy"`
}

type SourceDocumentDetail struct {
	DocID          int64           `gorm:"column:docid"`
	Particular     string          `gorm:"column:particular"`
	ParticularNote string          `gorm:"column:particularNote"`
	Ply            string          `gorm:"column:ply"`
	Size           string          `gorm:"column:size"`
	UnitPrice      decimal.Decimal `gorm:"column:unitPrice"`
	Qty            int             `gorm:"column:qty"`
	Amount         decimal.Decimal `gorm:"column:amount"`
	Note           string          `gorm:"column:note"`
	Status         int             `gorm:"column:status"`
}

// Connector owns the single read-only connection to the legacy MySQL
// database for one migration invocation. The handle opens lazily on the
// first Connect and is reused until Close, which resets the connector so
// a later Connect can reopen it.
type Connector struct {
	dsn string
	db  *gorm.DB
}

func NewConnector(dsn string) *Connector {
	return &Connector{dsn: dsn}
}

func (c *Connector) Connect() error {
	if c.db != nil {
		return nil
	}
	db, err := gorm.Open(mysql.Open(c.dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	c.db = db
	return nil
}

func (c *Connector) Close() error {
	if c.db == nil {
		return nil
	}
	sqlDB, err := c.db.DB()
	c.db = nil
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (c *Connector) CountDocuments(ctx context.Context) (int64, error) {
	if c.db == nil {
		return 0, fmt.Errorf("%w: not connected", ErrSourceUnavailable)
	}
	var count int64
	err := c.db.WithContext(ctx).
		Raw(`SELECT COUNT(*) FROM documents`).Scan(&count).Error
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	return count, nil
}

func (c *Connector) Users(ctx context.Context) ([]SourceUser, error) {
	if c.db == nil {
		return nil, fmt.Errorf("%w: not connected", ErrSourceUnavailable)
	}
	var users []SourceUser
	err := c.db.WithContext(ctx).
		Raw(`SELECT uid, username, password, role, status FROM users`).
		Scan(&users).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	return users, nil
}

// DocumentPage fetches one page of document headers ordered by creation
// time ascending. The ordering is the pagination contract: offsets are
// computed against it, so it must never change.
func (c *Connector) DocumentPage(ctx context.Context, limit, offset int) ([]SourceDocument, error) {
	if c.db == nil {
		return nil, fmt.Errorf("%w: not connected", ErrSourceUnavailable)
	}
	var docs []SourceDocument
	err := c.db.WithContext(ctx).
		Raw(`SELECT docid, voucherId, customerName, truckNo, date, createdBy
			FROM documents ORDER BY createdAt ASC LIMIT ? OFFSET ?`, limit, offset).
		Scan(&docs).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	return docs, nil
}

func (c *Connector) DocumentDetails(ctx context.Context, docID int64) ([]SourceDocumentDetail, error) {
	if c.db == nil {
		return nil, fmt.Errorf("%w: not connected", ErrSourceUnavailable)
	}
	var details []SourceDocumentDetail
	err := c.db.WithContext(ctx).
		Raw(`SELECT docid, particular, particularNote, ply, size, unitPrice, qty, amount, note, status
			FROM document_details WHERE docid = ?`, docID).
		Scan(&details).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	return details, nil
}

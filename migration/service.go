package migration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mmdatafocus/vouchers_backend/models"
	"github.com/mmdatafocus/vouchers_backend/utils"
)

// systemCreatorName is the literal the legacy application stored for
// rows it generated itself. Every other creator value was typed by the
// single data-entry operator.
const systemCreatorName = "System"

// SourceStore reads the legacy MySQL database. *Connector is the real
// implementation; tests swap in fakes.
type SourceStore interface {
	Connect() error
	Close() error
	CountDocuments(ctx context.Context) (int64, error)
	Users(ctx context.Context) ([]SourceUser, error)
	DocumentPage(ctx context.Context, limit, offset int) ([]SourceDocument, error)
	DocumentDetails(ctx context.Context, docID int64) ([]SourceDocumentDetail, error)
}

// TargetStore writes the document store. *models.Store satisfies it.
type TargetStore interface {
	CreateUsers(ctx context.Context, users []models.User) (int, error)
	UserIDByLoginCode(ctx context.Context, code string) (primitive.ObjectID, error)
	FindOrCreateCustomer(ctx context.Context, name string) (primitive.ObjectID, error)
	FindOrCreateTruck(ctx context.Context, name string) (primitive.ObjectID, error)
	CreateVoucher(ctx context.Context, v *models.Voucher) error
	CreateVoucherDetail(ctx context.Context, d *models.VoucherDetail) error
}

// Service runs the one-directional legacy import. A single invocation
// migrates either the user table or one page of documents; nothing here
// is concurrent, the ordering of writes is part of the contract.
type Service struct {
	Source SourceStore
	Target TargetStore
	Logger *logrus.Logger

	// Hash re-hashes legacy plaintext or legacy-hashed passwords so no
	// legacy hash format survives into the new store.
	Hash func(password string) ([]byte, error)

	// Login codes of the two fixed accounts every migrated voucher is
	// attributed to.
	SystemLoginCode   string
	OperatorLoginCode string
}

func NewService(source SourceStore, target TargetStore, logger *logrus.Logger) *Service {
	return &Service{
		Source:            source,
		Target:            target,
		Logger:            logger,
		Hash:              utils.HashPassword,
		SystemLoginCode:   "system",
		OperatorLoginCode: "hmk",
	}
}

type UserMigrationResult struct {
	Message       string `json:"message"`
	InsertedCount int    `json:"insertedCount"`
}

// SkippedRecord identifies one source record the page could not land and
// why. Skips are reported, never retried within the run.
type SkippedRecord struct {
	Key    string `json:"key"`
	Reason string `json:"reason"`
}

type DocumentMigrationResult struct {
	Message        string          `json:"message"`
	MigratedCount  int             `json:"migratedCount"`
	CurrentPage    int             `json:"currentPage"`
	TotalPages     int             `json:"totalPages"`
	RemainingPages int             `json:"remainingPages"`
	NextPage       *int            `json:"nextPage"`
	Skipped        []SkippedRecord `json:"skipped,omitempty"`
}

// MigrateUsers copies every legacy user into the target store in one
// bulk insert, re-hashing passwords on the way. The legacy username
// doubles as the login code, so a second run trips the unique index and
// comes back as ErrDuplicateMigration.
func (s *Service) MigrateUsers(ctx context.Context, invokedBy primitive.ObjectID) (*UserMigrationResult, error) {
	if err := s.Source.Connect(); err != nil {
		return nil, err
	}
	defer s.closeSource()

	sourceUsers, err := s.Source.Users(ctx)
	if err != nil {
		return nil, err
	}
	if len(sourceUsers) == 0 {
		return &UserMigrationResult{Message: "no users found"}, nil
	}

	now := time.Now()
	users := make([]models.User, 0, len(sourceUsers))
	for _, su := range sourceUsers {
		hashed, err := s.Hash(su.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password for %q: %w", su.Username, err)
		}
		createdBy := invokedBy
		users = append(users, models.User{
			ID:          primitive.NewObjectID(),
			Name:        su.Username,
			LoginCode:   su.Username,
			Password:    string(hashed),
			CreatedByID: &createdBy,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}

	inserted, err := s.Target.CreateUsers(ctx, users)
	if err != nil {
		if errors.Is(err, models.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: %v", ErrDuplicateMigration, err)
		}
		return nil, err
	}

	s.Logger.WithFields(logrus.Fields{"module": "migration", "count": inserted}).
		Info("user migration complete")
	return &UserMigrationResult{
		Message:       fmt.Sprintf("%d users imported", inserted),
		InsertedCount: inserted,
	}, nil
}

// MigrateDocuments migrates exactly one page of document headers with
// their detail rows. Source read failures abort the run; target write
// failures skip the offending record and the page carries on.
func (s *Service) MigrateDocuments(ctx context.Context, page, rowPerPage int) (*DocumentMigrationResult, error) {
	if page < 1 {
		return nil, fmt.Errorf("page must be >= 1, got %d", page)
	}
	if rowPerPage < 1 {
		return nil, fmt.Errorf("rowPerPage must be positive, got %d", rowPerPage)
	}

	if err := s.Source.Connect(); err != nil {
		return nil, err
	}
	defer s.closeSource()

	totalCount, err := s.Source.CountDocuments(ctx)
	if err != nil {
		return nil, err
	}
	summary := Paginate(totalCount, page, rowPerPage)

	headers, err := s.Source.DocumentPage(ctx, rowPerPage, Offset(page, rowPerPage))
	if err != nil {
		return nil, err
	}

	result := &DocumentMigrationResult{
		CurrentPage:    summary.CurrentPage,
		TotalPages:     summary.TotalPages,
		RemainingPages: summary.RemainingPages,
		NextPage:       summary.NextPage,
	}
	if len(headers) == 0 {
		result.Message = "No more vouchers to migrate."
		return result, nil
	}

	log := s.Logger.WithFields(logrus.Fields{
		"module":      "migration",
		"run_id":      uuid.NewString(),
		"page":        page,
		"total_pages": summary.TotalPages,
	})
	log.Info("migrating document page")

	// One creator lookup per distinct login code per page.
	creators := make(map[string]primitive.ObjectID, 2)

	for _, doc := range headers {
		voucherID, err := s.migrateHeader(ctx, doc, creators)
		if err != nil {
			if errors.Is(err, ErrSourceUnavailable) {
				return nil, err
			}
			log.WithField("voucher", doc.VoucherID).Warn(err.Error())
			result.Skipped = append(result.Skipped, SkippedRecord{Key: doc.VoucherID, Reason: err.Error()})
			continue
		}

		details, err := s.Source.DocumentDetails(ctx, doc.DocID)
		if err != nil {
			return nil, err
		}
		if len(details) == 0 {
			// The header is already in; report the anomaly so someone
			// can chase the source row.
			log.WithField("voucher", doc.VoucherID).Warn("no detail rows in source")
			result.Skipped = append(result.Skipped, SkippedRecord{Key: doc.VoucherID, Reason: "no detail rows in source"})
			result.MigratedCount++
			continue
		}

		for _, detail := range details {
			if err := s.migrateDetail(ctx, voucherID, doc.VoucherID, detail); err != nil {
				log.WithField("voucher", doc.VoucherID).Warn(err.Error())
				result.Skipped = append(result.Skipped, SkippedRecord{
					Key:    fmt.Sprintf("%s/%s", doc.VoucherID, detail.Particular),
					Reason: err.Error(),
				})
			}
		}
		result.MigratedCount++
	}

	result.Message = fmt.Sprintf("%d vouchers imported on page %d", result.MigratedCount, page)
	log.WithFields(logrus.Fields{"migrated": result.MigratedCount, "skipped": len(result.Skipped)}).
		Info("document page done")
	return result, nil
}

func (s *Service) migrateHeader(ctx context.Context, doc SourceDocument, creators map[string]primitive.ObjectID) (primitive.ObjectID, error) {
	customerID, err := s.Target.FindOrCreateCustomer(ctx, doc.CustomerName)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("resolve customer %q: %w", doc.CustomerName, err)
	}
	truckID, err := s.Target.FindOrCreateTruck(ctx, doc.TruckNo)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("resolve truck %q: %w", doc.TruckNo, err)
	}
	creatorID, err := s.resolveCreator(ctx, doc.CreatedBy, creators)
	if err != nil {
		return primitive.NilObjectID, err
	}

	voucher := &models.Voucher{
		ID:            primitive.NewObjectID(),
		VoucherNumber: doc.VoucherID,
		Date:          doc.Date,
		Status:        models.VoucherStatusActive,
		CustomerID:    customerID,
		TruckID:       truckID,
		CreatedByID:   creatorID,
		CreatedAt:     time.Now(),
	}
	if err := s.Target.CreateVoucher(ctx, voucher); err != nil {
		return primitive.NilObjectID, fmt.Errorf("create voucher %s: %w", doc.VoucherID, err)
	}
	return voucher.ID, nil
}

func (s *Service) migrateDetail(ctx context.Context, voucherID primitive.ObjectID, voucherNumber string, detail SourceDocumentDetail) error {
	status := models.VoucherStatusDeleted
	if detail.Status == 1 {
		status = models.VoucherStatusActive
	}
	d := &models.VoucherDetail{
		ID:             primitive.NewObjectID(),
		VoucherID:      voucherID,
		Particular:     detail.Particular,
		ParticularNote: detail.ParticularNote,
		Ply:            detail.Ply,
		Size:           detail.Size,
		UnitPrice:      detail.UnitPrice.InexactFloat64(),
		Qty:            detail.Qty,
		// Amount carries over as recorded; historical rows are never
		// recomputed from price and quantity.
		Amount:    detail.Amount.InexactFloat64(),
		Note:      detail.Note,
		Status:    status,
		CreatedAt: time.Now(),
	}
	if err := s.Target.CreateVoucherDetail(ctx, d); err != nil {
		return fmt.Errorf("create detail for voucher %s: %w", voucherNumber, err)
	}
	return nil
}

// resolveCreator maps the legacy free-text creator onto the two fixed
// target accounts: "System" to the system account, anything else to the
// operator who keyed the historical vouchers in.
func (s *Service) resolveCreator(ctx context.Context, createdBy string, cache map[string]primitive.ObjectID) (primitive.ObjectID, error) {
	code := s.OperatorLoginCode
	if createdBy == systemCreatorName {
		code = s.SystemLoginCode
	} else if createdBy != s.OperatorLoginCode {
		// The legacy dataset only ever held the operator and System, so
		// an unexpected name is worth an audit trail before collapsing.
		s.Logger.WithFields(logrus.Fields{"module": "migration", "created_by": createdBy}).
			Warn("unknown creator name mapped to operator account")
	}
	if id, ok := cache[code]; ok {
		return id, nil
	}
	id, err := s.Target.UserIDByLoginCode(ctx, code)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("resolve creator account %q: %w", code, err)
	}
	cache[code] = id
	return id, nil
}

func (s *Service) closeSource() {
	if err := s.Source.Close(); err != nil {
		s.Logger.WithField("module", "migration").Warn("closing source connection: " + err.Error())
	}
}
